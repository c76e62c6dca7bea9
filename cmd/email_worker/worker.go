package main

import (
	"context"
	"encoding/json"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/evcharge/pkg/helpers"
	"github.com/oksasatya/evcharge/pkg/mailer"
)

// A job whose send fails this many times is dropped.
const maxAttempts = 5

type outcome int

const (
	outcomeAck outcome = iota
	outcomeRetry
	outcomeDrop
)

type worker struct {
	Sender mailer.Sender
	Logger *logrus.Logger
	Now    func() time.Time
}

// handle renders and sends one queued EmailJob. Malformed, unrenderable
// and expired jobs are dropped; send failures are requeued.
func (w *worker) handle(ctx context.Context, body []byte) outcome {
	var job mailer.EmailJob
	if err := json.Unmarshal(body, &job); err != nil {
		w.Logger.WithError(err).Warn("bad message")
		return outcomeDrop
	}
	log := w.Logger.WithField("template", job.Template)
	if job.Expired(w.now()) {
		log.Info("job expired before delivery")
		return outcomeDrop
	}
	subject, text, html, err := job.Content()
	if err != nil {
		log.WithError(err).Warn("unusable job")
		return outcomeDrop
	}

	c, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()
	if err := w.Sender.Send(c, job.To, subject, text, html); err != nil {
		log.WithError(err).Warn("send failed")
		return outcomeRetry
	}
	log.Info("email sent")
	return outcomeAck
}

func (w *worker) now() time.Time {
	if w.Now != nil {
		return w.Now()
	}
	return time.Now()
}

// attemptOf reads the redelivery counter; first deliveries have none.
func attemptOf(h amqp.Table) int {
	switch v := h[helpers.AttemptHeader].(type) {
	case int32:
		return int(v)
	case int64:
		return int(v)
	case int:
		return v
	}
	return 0
}

// retryDelay backs off 2s, 4s, 8s ... capped at one minute.
func retryDelay(attempt int) time.Duration {
	if attempt < 1 {
		attempt = 1
	}
	d := time.Second << attempt
	if d > time.Minute || d <= 0 {
		return time.Minute
	}
	return d
}
