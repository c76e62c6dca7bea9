package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/oksasatya/evcharge/internal/domain/entity"
	"github.com/oksasatya/evcharge/internal/domain/repository"
	"github.com/oksasatya/evcharge/pkg/apperror"
)

var errUserNotFound = apperror.NotFound("user not found")

const userColumns = `id, email, password_hash, COALESCE(reset_token_hash, ''), reset_token_expiry, created_at, updated_at`

type UserRepository struct {
	pool *pgxpool.Pool
}

func NewUserRepository(pool *pgxpool.Pool) *UserRepository {
	return &UserRepository{pool: pool}
}

func scanUser(row pgx.Row) (*entity.User, error) {
	u := &entity.User{}
	if err := row.Scan(&u.ID, &u.Email, &u.Password, &u.ResetTokenHash, &u.ResetTokenExpiry,
		&u.CreatedAt, &u.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, errUserNotFound
		}
		return nil, err
	}
	return u, nil
}

func (r *UserRepository) Create(ctx context.Context, u *entity.User) error {
	id := uuid.NewString()
	row := r.pool.QueryRow(ctx, `
		INSERT INTO users (id, email, password_hash)
		VALUES ($1, $2, $3)
		RETURNING id, created_at, updated_at
	`, id, u.Email, u.Password)

	if err := row.Scan(&u.ID, &u.CreatedAt, &u.UpdatedAt); err != nil {
		if isUniqueViolation(err) {
			return apperror.Conflict("email already registered")
		}
		return err
	}
	return nil
}

func (r *UserRepository) GetByID(ctx context.Context, id string) (*entity.User, error) {
	if !validID(id) {
		return nil, errUserNotFound
	}
	return scanUser(r.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id))
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*entity.User, error) {
	return scanUser(r.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE email = $1`, email))
}

func (r *UserRepository) SetResetToken(ctx context.Context, userID, digest string, expiry time.Time) error {
	if !validID(userID) {
		return errUserNotFound
	}
	res, err := r.pool.Exec(ctx, `
		UPDATE users
		SET reset_token_hash = $1, reset_token_expiry = $2, updated_at = now()
		WHERE id = $3
	`, digest, expiry, userID)
	if err != nil {
		return err
	}
	if res.RowsAffected() == 0 {
		return errUserNotFound
	}
	return nil
}

// ConsumeResetToken is a single conditional UPDATE; the row lock taken by
// the first matching statement makes concurrent redemptions see the cleared
// hash and match nothing.
func (r *UserRepository) ConsumeResetToken(ctx context.Context, digest string, now time.Time, passwordHash string) (*entity.User, error) {
	return scanUser(r.pool.QueryRow(ctx, `
		UPDATE users
		SET password_hash = $1, reset_token_hash = NULL, reset_token_expiry = NULL, updated_at = now()
		WHERE reset_token_hash = $2 AND reset_token_expiry > $3
		RETURNING `+userColumns, passwordHash, digest, now))
}

var _ repository.UserRepository = (*UserRepository)(nil)
