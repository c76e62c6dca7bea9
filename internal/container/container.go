package container

import (
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/evcharge/config"
	"github.com/oksasatya/evcharge/internal/application"
	repo "github.com/oksasatya/evcharge/internal/domain/repository"
	"github.com/oksasatya/evcharge/pkg/helpers"
)

// Container is the set of constructed components the router wires into
// modules. cmd/main.go builds it; tests build it with fakes.
type Container struct {
	Config *config.Config
	Logger *logrus.Logger
	Redis  *redis.Client // nil disables rate limiting
	JWT    *helpers.JWTManager

	Users   repo.UserRepository
	Records repo.ChargingRecordRepository

	Mailer  application.ResetMailer
	Index   application.ChargingIndexer  // optional
	Gateway application.PaymentGateway
	Archive application.ReceiptArchiver // optional
}

// Services holds the application layer built from a Container.
type Services struct {
	Auth     *application.AuthService
	Reset    *application.PasswordResetService
	Charging *application.ChargingService
	Payment  *application.PaymentService
}

func (c *Container) Services() *Services {
	cfg := c.Config
	auth := application.NewAuthService(c.Users, c.JWT, c.Logger)
	reset := application.NewPasswordResetService(c.Users, c.Mailer, c.Logger, application.PasswordResetConfig{
		TokenTTL:            cfg.ResetTokenTTL,
		Link:                cfg.ResetLink,
		ConcealUnknownEmail: cfg.ResetConcealUnknownEmail,
	})
	charging := application.NewChargingService(c.Records, c.Index, c.Logger)
	payment := application.NewPaymentService(c.Gateway, charging, c.Archive, c.Logger, cfg.RazorpayKeySecret, cfg.PaymentCurrency)
	return &Services{Auth: auth, Reset: reset, Charging: charging, Payment: payment}
}
