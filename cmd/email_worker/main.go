package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/oksasatya/evcharge/config"
	"github.com/oksasatya/evcharge/pkg/helpers"
	"github.com/oksasatya/evcharge/pkg/mailer"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load()
	logger := helpers.NewLogger(helpers.LoggerOptions{App: cfg.AppName + "-email-worker", Env: cfg.Env, Level: cfg.LogLevel})

	if !cfg.MailSendEnabled {
		logger.Info("MAIL_SEND_ENABLED=false; email worker disabled (no real emails will be sent)")
		return
	}
	if cfg.RabbitMQURL == "" || cfg.RabbitMQEmailQueue == "" {
		logger.Fatal("RabbitMQ not configured")
	}
	if cfg.MailgunDomain == "" || cfg.MailgunAPIKey == "" || cfg.MailgunSender == "" {
		logger.Fatal("Mailgun not configured")
	}

	q, err := helpers.DialRabbitQueue(cfg.RabbitMQURL, cfg.RabbitMQEmailQueue)
	if err != nil {
		logger.WithError(err).Fatal("amqp dial")
	}
	defer q.Close()

	// prefetch for fair dispatch across workers
	msgs, err := q.Consume(16)
	if err != nil {
		logger.WithError(err).Fatal("consume")
	}

	w := &worker{Sender: mailer.NewMailgun(cfg.MailgunDomain, cfg.MailgunAPIKey, cfg.MailgunAPIBase, cfg.MailgunSender), Logger: logger}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	done := make(chan struct{})

	go func() {
		for msg := range msgs {
			switch w.handle(ctx, msg.Body) {
			case outcomeAck:
				_ = msg.Ack(false)
			case outcomeRetry:
				attempt := attemptOf(msg.Headers) + 1
				if attempt >= maxAttempts {
					logger.WithField("attempt", attempt).Error("giving up on email job")
					_ = msg.Nack(false, false)
					continue
				}
				select {
				case <-time.After(retryDelay(attempt)):
				case <-ctx.Done():
					_ = msg.Nack(false, true)
					continue
				}
				if err := q.Republish(ctx, msg.Body, attempt); err != nil {
					logger.WithError(err).Warn("republish failed; requeueing")
					_ = msg.Nack(false, true)
					continue
				}
				_ = msg.Ack(false)
			default:
				_ = msg.Nack(false, false)
			}
		}
		close(done)
	}()

	logger.WithField("queue", cfg.RabbitMQEmailQueue).Info("email worker listening")
	<-stop
	logger.Info("shutting down...")
	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
	}
}
