package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"broadcast/cfai"
	"broadcast/config"
	"broadcast/database"
	"broadcast/database/memory"
	"broadcast/handlers"
	"broadcast/logging"
	"broadcast/mailer"
	"broadcast/middleware"
	"broadcast/region"
	"broadcast/routes"
	"broadcast/services"
	"broadcast/stream"
	"broadcast/validation"
	"broadcast/websocket"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logrus.WithError(err).Fatal("configuration invalid")
	}
	log := logging.New("broadcast", cfg.Env, cfg.LogLevel)

	for _, name := range cfg.Missing() {
		log.WithField("missing", name).Warn("integration credentials not set")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store, err := openStore(ctx, cfg, log)
	if err != nil {
		log.WithError(err).Fatal("failed to open store")
	}

	regions, err := region.Load(cfg.RegionDataPath)
	if err != nil {
		log.WithError(err).Fatal("failed to load region dataset")
	}
	if cov := regions.Coverage(); len(cov.CountiesWithoutWards) > 0 {
		log.WithFields(logrus.Fields{
			"counties":       cov.Counties,
			"constituencies": cov.Constituencies,
			"wards":          cov.Wards,
			"wardless":       len(cov.CountiesWithoutWards),
		}).Warn("region dataset has counties without ward lists; set REGION_DATASET_PATH to the full IEBC file")
	}

	var relay websocket.Relay
	if cfg.RedisURL != "" {
		rr, err := websocket.NewRedisRelay(cfg.RedisURL, log)
		if err != nil {
			log.WithError(err).Fatal("failed to connect redis relay")
		}
		defer rr.Close()
		relay = rr
		log.Info("room fan-out via redis")
	}
	hub := websocket.NewManager(log, relay)
	go hub.Start(ctx)

	streamClient, err := stream.New(stream.Config{
		APIKey:      cfg.StreamAPIKey,
		APISecret:   cfg.StreamAPISecret,
		VideoKey:    cfg.StreamVideoKey,
		VideoSecret: cfg.StreamVideoSecret,
	})
	if err != nil {
		log.WithError(err).Fatal("failed to build stream client")
	}
	ai := cfai.New(cfai.Config{
		AccountID: cfg.CloudflareAccountID,
		APIToken:  cfg.CloudflareAPIToken,
		Model:     cfg.CloudflareModel,
	})

	comments := services.NewCommentService(store, store, log)
	svc := handlers.Services{
		Posts:    services.NewPostService(store, store, regions, hub, log),
		Comments: comments,
		Users:    services.NewUserService(store, streamClient, log),
		Verify: services.NewVerifyService(store, newMailer(cfg, log), services.VerifyConfig{
			From:       cfg.MailFrom(),
			AdminInbox: cfg.EmailUser,
			BaseURL:    cfg.VerifyBaseURL,
			TTL:        cfg.VerifyTokenTTL,
		}, log),
		Statuses: services.NewStatusService(store, store, log),
		Catalog:  services.NewCatalogService(store, store, store, log),
		Chat:     services.NewChatService(streamClient, ai, log),
	}

	if cfg.ReconcileInterval > 0 {
		go comments.RunReconciler(ctx, cfg.ReconcileInterval)
		log.WithField("every", cfg.ReconcileInterval.String()).Info("comment counter reconciliation enabled")
	}

	limiter := middleware.NewIPRateLimiter(cfg.ChatRatePerMinute, time.Minute)
	go limiter.RunSweeper(ctx, 5*time.Minute)

	gin.SetMode(cfg.GinMode)
	validation.Init()
	router := routes.SetupRouter(handlers.New(svc, store, log), hub, routes.Options{
		CORSOrigins:    cfg.CORSOrigins(),
		AdminJWTSecret: cfg.AdminJWTSecret,
		ChatLimiter:    limiter,
	}, log)

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.WithField("port", cfg.Port).Info("server listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Fatal("server error")
		}
	}()

	<-ctx.Done()
	log.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Error("forced shutdown")
	}
	if err := store.Close(shutdownCtx); err != nil {
		log.WithError(err).Warn("store close failed")
	}
	log.Info("server stopped")
}

func openStore(ctx context.Context, cfg *config.Config, log *logrus.Logger) (database.Store, error) {
	if cfg.StoreDriver == config.StoreMemory {
		log.Warn("using in-memory store; data is lost on exit")
		return memory.New(), nil
	}

	var (
		m   *database.Mongo
		err error
	)
	for attempt := 1; attempt <= 3; attempt++ {
		m, err = database.Connect(ctx, cfg.MongoURI, cfg.MongoDatabase, log)
		if err == nil {
			break
		}
		log.WithError(err).WithField("attempt", attempt).Warn("mongodb connection failed")
		time.Sleep(2 * time.Second)
	}
	if err != nil {
		return nil, err
	}
	m.EnsureIndexes(ctx)
	log.WithField("database", cfg.MongoDatabase).Info("mongodb connected")
	return m, nil
}

func newMailer(cfg *config.Config, log *logrus.Logger) mailer.Sender {
	switch cfg.MailProvider {
	case config.MailMailgun:
		return mailer.NewMailgun(cfg.MailgunDomain, cfg.MailgunAPIKey)
	case config.MailLog:
		return mailer.Log{Logger: log}
	default:
		return mailer.NewSMTP(cfg.SMTPHost, cfg.SMTPPort, cfg.EmailUser, cfg.EmailPass)
	}
}
