package application

import (
	"context"
	"errors"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/oksasatya/evcharge/internal/domain/entity"
	repo "github.com/oksasatya/evcharge/internal/domain/repository"
	"github.com/oksasatya/evcharge/pkg/apperror"
	"github.com/oksasatya/evcharge/pkg/helpers"
)

var (
	ErrInvalidCredentials = apperror.Auth("Invalid credentials")
	ErrUserExists         = apperror.Conflict("User already exists")
	ErrMissingToken       = apperror.Unauthenticated("No token provided")
	ErrInvalidAccessToken = apperror.Unauthenticated("Invalid or expired token")
)

// AuthService registers users, checks credentials and issues bearer tokens.
type AuthService struct {
	Users  repo.UserRepository
	JWT    *helpers.JWTManager
	Logger *logrus.Logger
}

func NewAuthService(users repo.UserRepository, jwt *helpers.JWTManager, logger *logrus.Logger) *AuthService {
	return &AuthService{Users: users, JWT: jwt, Logger: logger}
}

type LoginResult struct {
	UserID    string
	Token     string
	ExpiresAt time.Time
}

// Register creates a user with a bcrypt-hashed password.
func (s *AuthService) Register(ctx context.Context, email, password string) error {
	if email == "" || password == "" {
		return apperror.Validation("Email and password are required")
	}
	existing, err := s.Users.GetByEmail(ctx, email)
	switch {
	case err == nil && existing != nil:
		return ErrUserExists
	case err != nil && !apperror.IsNotFound(err):
		return apperror.Internal("lookup user", err)
	}

	hash, err := hashPassword(password)
	if err != nil {
		return err
	}
	u := &entity.User{Email: email, Password: hash}
	if err := s.Users.Create(ctx, u); err != nil {
		if apperror.IsConflict(err) {
			return ErrUserExists
		}
		return apperror.Internal("create user", err)
	}
	s.Logger.WithField("user_id", u.ID).Info("user registered")
	return nil
}

// Login verifies credentials and returns a signed token. Unknown email and
// wrong password yield the same error.
func (s *AuthService) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	if email == "" || password == "" {
		return nil, apperror.Validation("Email and password required")
	}
	u, err := s.Users.GetByEmail(ctx, email)
	if err != nil {
		if apperror.IsNotFound(err) {
			helpers.CompareHashAndPassword("", password)
			return nil, ErrInvalidCredentials
		}
		return nil, apperror.Internal("lookup user", err)
	}
	if !helpers.CompareHashAndPassword(u.Password, password) {
		return nil, ErrInvalidCredentials
	}
	token, exp, err := s.JWT.GenerateAccessToken(u.ID)
	if err != nil {
		s.Logger.WithError(err).WithField("user_id", u.ID).Error("generate access token failed")
		return nil, apperror.Internal("sign token", err)
	}
	return &LoginResult{UserID: u.ID, Token: token, ExpiresAt: exp}, nil
}

// Authenticate resolves a bearer token to its user, without the password hash.
func (s *AuthService) Authenticate(ctx context.Context, token string) (*entity.User, error) {
	if token == "" {
		return nil, ErrMissingToken
	}
	claims, err := s.JWT.ParseAccessToken(token)
	if err != nil {
		return nil, ErrInvalidAccessToken
	}
	u, err := s.Users.GetByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			return nil, ErrInvalidAccessToken
		}
		return nil, apperror.Internal("lookup user", err)
	}
	return u.Public(), nil
}

func hashPassword(plain string) (string, error) {
	hash, err := helpers.HashPassword(plain)
	switch {
	case errors.Is(err, helpers.ErrPasswordTooLong):
		return "", apperror.Validation("Password must be at most 72 bytes")
	case err != nil:
		return "", apperror.Internal("hash password", err)
	}
	return hash, nil
}
