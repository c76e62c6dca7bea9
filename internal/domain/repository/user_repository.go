package repository

import (
	"context"
	"time"

	"github.com/oksasatya/evcharge/internal/domain/entity"
)

// UserRepository defines the interface for user-related database operations.
// Lookups return apperror.NotFound when no user matches; Create returns
// apperror.Conflict for a duplicate email.
type UserRepository interface {
	Create(ctx context.Context, u *entity.User) error
	GetByID(ctx context.Context, id string) (*entity.User, error)
	GetByEmail(ctx context.Context, email string) (*entity.User, error)

	// SetResetToken stores a reset digest and its expiry on the user.
	SetResetToken(ctx context.Context, userID, digest string, expiry time.Time) error

	// ConsumeResetToken atomically finds the user whose digest matches and
	// whose expiry is after now, replaces the password hash and clears both
	// reset fields. Concurrent callers with the same digest: at most one wins.
	ConsumeResetToken(ctx context.Context, digest string, now time.Time, passwordHash string) (*entity.User, error)
}
