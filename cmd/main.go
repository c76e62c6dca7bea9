package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/evcharge/config"
	"github.com/oksasatya/evcharge/internal/application"
	"github.com/oksasatya/evcharge/internal/container"
	rzpinfra "github.com/oksasatya/evcharge/internal/infrastructure/razorpay"
	"github.com/oksasatya/evcharge/internal/infrastructure/search"
	"github.com/oksasatya/evcharge/internal/infrastructure/storage"
	"github.com/oksasatya/evcharge/internal/infrastructure/store"
	"github.com/oksasatya/evcharge/internal/router"
	"github.com/oksasatya/evcharge/pkg/helpers"
	"github.com/oksasatya/evcharge/pkg/mailer"
	"github.com/oksasatya/evcharge/pkg/validation"
)

func main() {
	_ = godotenv.Load() // load .env if present

	cfg := config.Load()
	logger := helpers.NewLogger(helpers.LoggerOptions{App: cfg.AppName, Env: cfg.Env, Level: cfg.LogLevel})
	gin.SetMode(cfg.GinMode)
	validation.Init()

	ctx := context.Background()

	if cfg.JWTSecret == "" {
		log.Fatal("JWT_SECRET is required")
	}
	if cfg.RazorpayKeyID == "" || cfg.RazorpayKeySecret == "" {
		logger.Warn("RAZORPAY_KEY_ID/RAZORPAY_KEY_SECRET not set; orders will fail and payment verification is refused")
	}

	st, err := store.Open(ctx, cfg, logger)
	if err != nil {
		log.Fatalf("failed to open store: %v", err)
	}
	defer st.Close()

	// Redis, only for rate limiting
	rdb, err := helpers.NewRedisClient(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	if err != nil {
		logger.WithError(err).Warn("redis unavailable; rate limiting disabled")
	}
	if rdb != nil {
		defer func() { _ = rdb.Close() }()
	}

	resetMailer, closeMailer, err := buildResetMailer(cfg, logger)
	if err != nil {
		log.Fatalf("failed to init mailer: %v", err)
	}
	defer closeMailer()

	jwtm := helpers.NewJWTManager(cfg.JWTSecret, cfg.AccessTTL)
	jwtm.Issuer = cfg.AppName

	c := &container.Container{
		Config:  cfg,
		Logger:  logger,
		Redis:   rdb,
		JWT:     jwtm,
		Users:   st.Users,
		Records: st.Records,
		Mailer:  resetMailer,
		Gateway: rzpinfra.NewGateway(cfg.RazorpayKeyID, cfg.RazorpayKeySecret),
	}

	// Optional charging record index
	if addrs := cfg.ESAddrs(); len(addrs) > 0 {
		es, err := helpers.NewESClient(helpers.ESOptions{
			Addrs:      addrs,
			Username:   cfg.ElasticsearchUser,
			Password:   cfg.ElasticsearchPass,
			Timeout:    cfg.ESTimeout,
			MaxRetries: cfg.ESMaxRetries,
		})
		if err != nil {
			log.Fatalf("failed to init elasticsearch: %v", err)
		}
		c.Index = search.NewChargingIndex(es, cfg.ESChargingIndex)
	}

	// Optional receipt archive
	if cfg.GCSReceiptBucket != "" {
		gcsClient, err := helpers.NewGCSClient(ctx, cfg.GCSCredentialsJSONPath)
		if err != nil {
			log.Fatalf("failed to init GCS client: %v", err)
		}
		defer func() { _ = gcsClient.Close() }()
		c.Archive = storage.NewReceiptArchive(gcsClient, cfg.GCSReceiptBucket)
	}

	r := router.NewEngine(c)

	srv := &http.Server{Addr: ":" + cfg.Port, Handler: r, ReadHeaderTimeout: 10 * time.Second}
	go func() {
		logger.WithField("store", st.Driver).Infof("server starting on :%s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatalf("listen: %s\n", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("shutting down server")

	ctxShutdown, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctxShutdown); err != nil {
		logger.Fatalf("server forced to shutdown: %v", err)
	}
	logger.Info("server exited properly")
}

// buildResetMailer picks the reset email transport: disabled (log only),
// direct Mailgun, or the RabbitMQ queue drained by cmd/email_worker.
func buildResetMailer(cfg *config.Config, logger *logrus.Logger) (application.ResetMailer, func(), error) {
	noop := func() {}
	if !cfg.MailSendEnabled {
		logger.Warn("MAIL_SEND_ENABLED=false; reset links are only logged")
		return &mailer.LogResetMailer{Logger: logger}, noop, nil
	}
	switch cfg.MailTransport {
	case "queue":
		q, err := helpers.DialRabbitQueue(cfg.RabbitMQURL, cfg.RabbitMQEmailQueue)
		if err != nil {
			return nil, noop, err
		}
		return &mailer.QueuedResetMailer{AppName: cfg.AppName, Pub: q}, q.Close, nil
	case "direct", "":
		if cfg.MailgunDomain == "" || cfg.MailgunAPIKey == "" || cfg.MailgunSender == "" {
			return nil, noop, errors.New("mailgun not configured (MAILGUN_DOMAIN, MAILGUN_API_KEY, MAILGUN_SENDER)")
		}
		mg := mailer.NewMailgun(cfg.MailgunDomain, cfg.MailgunAPIKey, cfg.MailgunAPIBase, cfg.MailgunSender)
		return &mailer.DirectResetMailer{AppName: cfg.AppName, Sender: mg}, noop, nil
	}
	return nil, noop, errors.New("unknown MAIL_TRANSPORT " + cfg.MailTransport)
}
