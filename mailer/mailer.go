// Package mailer sends transactional email over SMTP or Mailgun.
package mailer

import (
	"context"
	"errors"
	"time"

	mg "github.com/mailgun/mailgun-go/v4"
	"github.com/sirupsen/logrus"
	mail "gopkg.in/mail.v2"
)

type Message struct {
	From    string
	To      string
	ReplyTo string
	Subject string
	HTML    string
}

type Sender interface {
	Send(ctx context.Context, msg Message) error
}

var ErrNotConfigured = errors.New("mailer not configured")

// SMTP delivers through an authenticated SMTP relay.
type SMTP struct {
	Host     string
	Port     int
	Username string
	Password string
}

func NewSMTP(host string, port int, username, password string) *SMTP {
	return &SMTP{Host: host, Port: port, Username: username, Password: password}
}

func (s *SMTP) Send(ctx context.Context, msg Message) error {
	if s.Host == "" || s.Username == "" {
		return ErrNotConfigured
	}
	m := mail.NewMessage()
	m.SetHeader("From", msg.From)
	m.SetHeader("To", msg.To)
	if msg.ReplyTo != "" {
		m.SetHeader("Reply-To", msg.ReplyTo)
	}
	m.SetHeader("Subject", msg.Subject)
	m.SetBody("text/html", msg.HTML)

	d := mail.NewDialer(s.Host, s.Port, s.Username, s.Password)
	d.Timeout = 20 * time.Second
	if deadline, ok := ctx.Deadline(); ok {
		d.Timeout = time.Until(deadline)
	}
	return d.DialAndSend(m)
}

// Mailgun delivers through the Mailgun HTTP API.
type Mailgun struct {
	Domain string
	APIKey string
}

func NewMailgun(domain, apiKey string) *Mailgun {
	return &Mailgun{Domain: domain, APIKey: apiKey}
}

func (m *Mailgun) Send(ctx context.Context, msg Message) error {
	if m.Domain == "" || m.APIKey == "" {
		return ErrNotConfigured
	}
	client := mg.NewMailgun(m.Domain, m.APIKey)
	message := client.NewMessage(msg.From, msg.Subject, "", msg.To)
	message.SetHtml(msg.HTML)
	if msg.ReplyTo != "" {
		message.AddHeader("Reply-To", msg.ReplyTo)
	}

	c, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	_, _, err := client.Send(c, message)
	return err
}

// Log writes messages to the logger instead of sending them.
type Log struct {
	Logger *logrus.Logger
}

func (l Log) Send(_ context.Context, msg Message) error {
	l.Logger.WithFields(logrus.Fields{
		"to":       msg.To,
		"reply_to": msg.ReplyTo,
		"subject":  msg.Subject,
	}).Info("[mail] delivery disabled, message logged")
	return nil
}
