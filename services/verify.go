package services

import (
	"bytes"
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"html/template"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"broadcast/apperr"
	"broadcast/database"
	"broadcast/mailer"
)

var verifyMail = template.Must(template.New("verify").Parse(`<h3>Verification request</h3>
<p><b>Name:</b> {{.FirstName}} {{.LastName}}</p>
<p><b>Email:</b> {{.Email}}</p>
<p><a href="{{.Link}}">Verify this account</a></p>`))

type verifyMailData struct {
	FirstName string
	LastName  string
	Email     string
	Link      string
}

type VerifyConfig struct {
	// From is the sender address; AdminInbox receives the requests.
	From       string
	AdminInbox string
	BaseURL    string
	// TTL is how long a token stays valid. Zero means no expiry.
	TTL time.Duration
}

// VerifyService runs the admin-approved account verification flow.
type VerifyService struct {
	users database.UserStore
	mail  mailer.Sender
	cfg   VerifyConfig
	log   *logrus.Logger
	now   func() time.Time
}

func NewVerifyService(users database.UserStore, mail mailer.Sender, cfg VerifyConfig, log *logrus.Logger) *VerifyService {
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	return &VerifyService{users: users, mail: mail, cfg: cfg, log: log, now: time.Now}
}

func newVerifyToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}

// Request stores a fresh token on the user and mails the approval link to
// the admin inbox.
func (s *VerifyService) Request(ctx context.Context, email string) error {
	if email == "" {
		return apperr.Validation("Email required")
	}
	user, err := s.users.FindUserByEmail(ctx, email)
	if err != nil {
		return storeErr(err, "User not found")
	}

	token, err := newVerifyToken()
	if err != nil {
		return apperr.Internal("generate verify token", err)
	}
	user.VerifyToken = token
	user.VerifyTokenExpiry = nil
	if s.cfg.TTL > 0 {
		exp := s.now().Add(s.cfg.TTL)
		user.VerifyTokenExpiry = &exp
	}
	if err := s.users.UpdateUser(ctx, user); err != nil {
		return storeErr(err, "User not found")
	}

	var body bytes.Buffer
	err = verifyMail.Execute(&body, verifyMailData{
		FirstName: user.FirstName,
		LastName:  user.LastName,
		Email:     user.Email,
		Link:      fmt.Sprintf("%s/api/verify/%s", s.cfg.BaseURL, token),
	})
	if err != nil {
		return apperr.Internal("render verification mail", err)
	}
	msg := mailer.Message{
		From:    s.cfg.From,
		To:      s.cfg.AdminInbox,
		ReplyTo: user.Email,
		Subject: "New Verification Request",
		HTML:    body.String(),
	}
	if err := s.mail.Send(ctx, msg); err != nil {
		s.log.WithError(err).WithField("email", user.Email).Error("[verify] send failed")
		return apperr.Internal("send verification mail", err)
	}
	return nil
}

// Confirm marks the token's owner verified. Unknown and expired tokens are
// rejected the same way.
func (s *VerifyService) Confirm(ctx context.Context, token string) error {
	invalid := apperr.Validation("Invalid or expired token")
	if token == "" {
		return invalid
	}
	user, err := s.users.FindUserByVerifyToken(ctx, token)
	if errors.Is(err, database.ErrNotFound) {
		return invalid
	}
	if err != nil {
		return storeErr(err, "")
	}
	if user.VerifyTokenExpiry != nil && s.now().After(*user.VerifyTokenExpiry) {
		return invalid
	}

	user.ClearVerification()
	if err := s.users.UpdateUser(ctx, user); err != nil {
		return storeErr(err, "User not found")
	}
	return nil
}
