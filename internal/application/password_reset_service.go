package application

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	repo "github.com/oksasatya/evcharge/internal/domain/repository"
	"github.com/oksasatya/evcharge/pkg/apperror"
	"github.com/oksasatya/evcharge/pkg/helpers"
)

var (
	ErrResetUserNotFound = apperror.NotFound("User not found")
	ErrResetTokenInvalid = apperror.InvalidToken("Invalid or expired token")
)

// ResetMailer delivers the reset link carrying the raw token.
type ResetMailer interface {
	SendPasswordReset(ctx context.Context, to, link string, expiresAt time.Time) error
}

type PasswordResetConfig struct {
	TokenTTL time.Duration
	// Link builds the front-end URL for a raw token.
	Link func(rawToken string) string
	// ConcealUnknownEmail makes RequestReset succeed silently for unknown emails.
	ConcealUnknownEmail bool
}

// PasswordResetService runs the two-step reset: issue a one-time token by
// email, then redeem it once for a new password.
type PasswordResetService struct {
	Users  repo.UserRepository
	Mailer ResetMailer
	Logger *logrus.Logger
	cfg    PasswordResetConfig

	now      func() time.Time
	newToken func() (raw, digest string, err error)
}

func NewPasswordResetService(users repo.UserRepository, mailer ResetMailer, logger *logrus.Logger, cfg PasswordResetConfig) *PasswordResetService {
	if cfg.TokenTTL <= 0 {
		cfg.TokenTTL = time.Hour
	}
	return &PasswordResetService{
		Users:    users,
		Mailer:   mailer,
		Logger:   logger,
		cfg:      cfg,
		now:      time.Now,
		newToken: helpers.NewResetToken,
	}
}

// RequestReset stores a fresh token digest on the user and mails the raw token.
// A new request replaces any pending token.
func (s *PasswordResetService) RequestReset(ctx context.Context, email string) error {
	if email == "" {
		return apperror.Validation("Email is required")
	}
	u, err := s.Users.GetByEmail(ctx, email)
	if err != nil {
		if apperror.IsNotFound(err) {
			if s.cfg.ConcealUnknownEmail {
				s.Logger.Info("password reset requested for unknown email")
				return nil
			}
			return ErrResetUserNotFound
		}
		return apperror.Internal("lookup user", err)
	}

	raw, digest, err := s.newToken()
	if err != nil {
		return apperror.Internal("generate reset token", err)
	}
	expiry := s.now().Add(s.cfg.TokenTTL)
	if err := s.Users.SetResetToken(ctx, u.ID, digest, expiry); err != nil {
		return apperror.Internal("store reset token", err)
	}

	if err := s.Mailer.SendPasswordReset(ctx, u.Email, s.cfg.Link(raw), expiry); err != nil {
		return apperror.Internal("send reset email", err)
	}
	s.Logger.WithField("user_id", u.ID).Info("password reset issued")
	return nil
}

// RedeemReset swaps the password for the user holding rawToken. The token is
// single-use: the repository matches and clears it in one atomic update.
func (s *PasswordResetService) RedeemReset(ctx context.Context, rawToken, newPassword string) error {
	if newPassword == "" {
		return apperror.Validation("Password is required")
	}
	if rawToken == "" {
		return ErrResetTokenInvalid
	}
	hash, err := hashPassword(newPassword)
	if err != nil {
		return err
	}
	u, err := s.Users.ConsumeResetToken(ctx, helpers.DigestResetToken(rawToken), s.now(), hash)
	if err != nil {
		if apperror.IsNotFound(err) {
			return ErrResetTokenInvalid
		}
		return apperror.Internal("consume reset token", err)
	}
	s.Logger.WithField("user_id", u.ID).Info("password reset redeemed")
	return nil
}
