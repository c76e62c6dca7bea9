package entity

import (
	"time"
)

// User is the aggregate root for the credential store.
// Password holds a bcrypt hash, never the plaintext.
//
// ResetTokenHash and ResetTokenExpiry are set and cleared together; both are
// zero when no password reset is pending.
type User struct {
	ID               string
	Email            string
	Password         string
	ResetTokenHash   string
	ResetTokenExpiry *time.Time
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// ResetPending reports whether a reset token has been issued and not redeemed.
func (u *User) ResetPending() bool {
	return u.ResetTokenHash != "" && u.ResetTokenExpiry != nil
}

// Public returns a copy safe to hand to callers: no password hash, no reset fields.
func (u *User) Public() *User {
	return &User{
		ID:        u.ID,
		Email:     u.Email,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}
