// Package delivery emails rendered reports as PDF attachments.
package delivery

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	gomail "gopkg.in/mail.v2"

	"github.com/jonathan/competitor-discovery/internal/config"
	"github.com/jonathan/competitor-discovery/internal/metrics"
	"github.com/jonathan/competitor-discovery/internal/observability"
	"github.com/jonathan/competitor-discovery/internal/types"
)

// Fixed message content.
const (
	Subject = "Your Competitor Report is Ready!"
	Body    = "Hi,\n\nAttached is your generated Competitor Report PDF.\n\nBest regards,\nCompetitor Discovery AI"

	defaultTimeout = 10 * time.Second
)

var (
	ErrNoRecipient   = errors.New("recipient address is required")
	ErrNoCredentials = errors.New("sender address and password are not configured")
	ErrNoDocument    = errors.New("no document to attach")
)

// Sender transmits messages. *gomail.Dialer satisfies it.
type Sender interface {
	DialAndSend(m ...*gomail.Message) error
}

// SenderFactory builds the Sender for one delivery.
type SenderFactory func(cfg config.EmailConfig) Sender

// Receipt is the outcome of a delivery. Err explains a false Sent.
type Receipt struct {
	Recipient string
	Filename  string
	Sent      bool
	Err       error
}

// Mailer sends reports over SMTP with implicit TLS on port 465.
type Mailer struct {
	cfg       config.EmailConfig
	newSender SenderFactory
	log       logrus.FieldLogger
	reporter  observability.Reporter
}

// Option customizes a Mailer.
type Option func(*Mailer)

// WithSenderFactory replaces the SMTP dialer.
func WithSenderFactory(f SenderFactory) Option {
	return func(m *Mailer) {
		m.newSender = f
	}
}

// NewMailer creates a Mailer from configuration.
func NewMailer(cfg config.EmailConfig, log logrus.FieldLogger, opts ...Option) *Mailer {
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	m := &Mailer{
		cfg:       cfg,
		newSender: dialer,
		log:       log,
		reporter:  observability.LogReporter{Log: log},
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// dialer connects with SSL when the port is 465 and never retries.
func dialer(cfg config.EmailConfig) Sender {
	d := gomail.NewDialer(cfg.SMTPServer, cfg.SMTPPort, cfg.Sender, cfg.Password)
	d.Timeout = cfg.Timeout
	d.RetryFailure = false
	return d
}

// Configured reports whether sender credentials are present.
func (m *Mailer) Configured() bool {
	return m.cfg.Sender != "" && m.cfg.Password != ""
}

// Message builds the email carrying document as filename.
func (m *Mailer) Message(recipient string, document []byte, filename string) *gomail.Message {
	msg := gomail.NewMessage()
	msg.SetHeader("From", m.cfg.Sender)
	msg.SetHeader("To", recipient)
	msg.SetHeader("Subject", Subject)
	msg.SetBody("text/plain", Body)
	msg.AttachReader(filename, bytes.NewReader(document), gomail.SetHeader(map[string][]string{
		"Content-Type": {"application/pdf"},
	}))
	return msg
}

// Send emails document to recipient. An empty filename defaults to the
// analysis report name. It makes exactly one attempt.
func (m *Mailer) Send(ctx context.Context, recipient string, document []byte, filename string) error {
	recipient = strings.TrimSpace(recipient)
	switch {
	case recipient == "":
		return ErrNoRecipient
	case !m.Configured():
		return ErrNoCredentials
	case len(document) == 0:
		return ErrNoDocument
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	if filename == "" {
		filename = types.AnalysisFilename
	}

	if err := m.newSender(m.cfg).DialAndSend(m.Message(recipient, document, filename)); err != nil {
		return fmt.Errorf("failed to send to %s via %s:%d: %w", recipient, m.cfg.SMTPServer, m.cfg.SMTPPort, err)
	}
	return nil
}

// Deliver is Send with the failure reported as "Email sending failed: ..."
// and folded into the receipt.
func (m *Mailer) Deliver(ctx context.Context, recipient string, document []byte, filename string) Receipt {
	if filename == "" {
		filename = types.AnalysisFilename
	}
	receipt := Receipt{Recipient: recipient, Filename: filename}

	log := m.log.WithFields(logrus.Fields{"recipient": recipient, "filename": filename})
	if err := m.Send(ctx, recipient, document, filename); err != nil {
		log.WithError(err).Error("email error")
		observability.ReporterFrom(ctx, m.reporter).Error(fmt.Sprintf("Email sending failed: %v", err))
		receipt.Err = err
		metrics.RecordDelivery(false)
		return receipt
	}

	log.Info("email sent")
	receipt.Sent = true
	metrics.RecordDelivery(true)
	return receipt
}
