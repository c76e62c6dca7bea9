package mailer

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	tpl "github.com/oksasatya/evcharge/pkg/mailer/templates"
)

// JSONPublisher is the subset of helpers.RabbitQueue used for enqueueing.
type JSONPublisher interface {
	PublishJSON(ctx context.Context, body any) error
}

// DirectResetMailer renders the reset email and sends it synchronously.
type DirectResetMailer struct {
	AppName string
	Sender  Sender
}

func (m *DirectResetMailer) SendPasswordReset(ctx context.Context, to, link string, expiresAt time.Time) error {
	data := tpl.NewResetPasswordData(m.AppName, to, link, expiresAt)
	subject, text, html, err := tpl.Render(tpl.ResetPassword, data)
	if err != nil {
		return fmt.Errorf("render reset email: %w", err)
	}
	return m.Sender.Send(ctx, to, subject, text, html)
}

// QueuedResetMailer enqueues the reset email for cmd/email_worker.
type QueuedResetMailer struct {
	AppName string
	Pub     JSONPublisher
}

func (m *QueuedResetMailer) SendPasswordReset(ctx context.Context, to, link string, expiresAt time.Time) error {
	job := EmailJob{
		To:        to,
		Template:  tpl.ResetPassword,
		Data:      tpl.ToMap(tpl.NewResetPasswordData(m.AppName, to, link, expiresAt)),
		ExpiresAt: &expiresAt,
	}
	return m.Pub.PublishJSON(ctx, job)
}

// LogResetMailer is used when MAIL_SEND_ENABLED=false: nothing is sent, the
// link is logged at debug level so local development can follow it.
type LogResetMailer struct {
	Logger *logrus.Logger
}

func (m *LogResetMailer) SendPasswordReset(_ context.Context, to, link string, expiresAt time.Time) error {
	m.Logger.WithFields(logrus.Fields{
		"to":         to,
		"link":       link,
		"expires_at": expiresAt.UTC().Format(time.RFC3339),
	}).Debug("mail sending disabled; reset email not sent")
	return nil
}
