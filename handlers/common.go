// Package handlers binds HTTP requests to the domain services.
package handlers

import (
	"context"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"broadcast/apperr"
	"broadcast/middleware"
	"broadcast/services"
	"broadcast/validation"
)

const requestTimeout = 10 * time.Second

// Pinger reports whether the backing store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

type Services struct {
	Posts    *services.PostService
	Comments *services.CommentService
	Users    *services.UserService
	Verify   *services.VerifyService
	Statuses *services.StatusService
	Catalog  *services.CatalogService
	Chat     *services.ChatService
}

type Handler struct {
	svc   Services
	store Pinger
	log   *logrus.Logger
}

func New(svc Services, store Pinger, log *logrus.Logger) *Handler {
	return &Handler{svc: svc, store: store, log: log}
}

func requestCtx(c *gin.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.Request.Context(), requestTimeout)
}

// bind decodes an optional JSON body into dst. An empty body leaves dst
// zeroed so the service reports the missing fields. On failure it writes
// the 400 and returns false.
func bind(c *gin.Context, dst interface{}) bool {
	if err := c.ShouldBindJSON(dst); err != nil && !errors.Is(err, io.EOF) {
		c.JSON(http.StatusBadRequest, gin.H{"message": validation.Message(err)})
		return false
	}
	return true
}

// respondError writes err as {"message"}. Upstream failures also carry the
// provider's error text; internal failures are logged and masked.
func (h *Handler) respondError(c *gin.Context, err error) {
	body := gin.H{"message": apperr.Message(err)}

	var ae *apperr.Error
	switch apperr.KindOf(err) {
	case apperr.KindUpstream:
		if errors.As(err, &ae) && ae.Err != nil {
			body["error"] = ae.Err.Error()
		}
		h.log.WithError(err).WithFields(h.fields(c)).Warn("[http] upstream failure")
	case apperr.KindInternal:
		h.log.WithError(err).WithFields(h.fields(c)).Error("[http] request failed")
	}
	c.JSON(apperr.Status(err), body)
}

func (h *Handler) fields(c *gin.Context) logrus.Fields {
	return logrus.Fields{
		"method":     c.Request.Method,
		"path":       c.FullPath(),
		"request_id": c.GetString(middleware.RequestIDKey),
	}
}
