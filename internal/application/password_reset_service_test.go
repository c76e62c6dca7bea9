package application

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oksasatya/evcharge/internal/domain/entity"
	"github.com/oksasatya/evcharge/pkg/apperror"
	"github.com/oksasatya/evcharge/pkg/helpers"
)

const linkBase = "https://ev.example.com/reset-password/"

func newReset(t *testing.T, conceal bool) (*PasswordResetService, *memUsers, *fakeMailer, *entity.User) {
	t.Helper()
	users := newMemUsers()
	hash, err := helpers.HashPassword("old-pw")
	require.NoError(t, err)
	u := &entity.User{Email: "ana@example.com", Password: hash}
	require.NoError(t, users.Create(context.Background(), u))

	mailer := &fakeMailer{}
	svc := NewPasswordResetService(users, mailer, nopLogger, PasswordResetConfig{
		TokenTTL:            time.Hour,
		Link:                func(raw string) string { return linkBase + raw },
		ConcealUnknownEmail: conceal,
	})
	return svc, users, mailer, u
}

func rawTokenFrom(t *testing.T, m *fakeMailer) string {
	t.Helper()
	require.NotEmpty(t, m.sent)
	link := m.sent[len(m.sent)-1].link
	require.True(t, strings.HasPrefix(link, linkBase))
	return strings.TrimPrefix(link, linkBase)
}

func TestRequestResetStoresDigestNotRawToken(t *testing.T) {
	svc, users, mailer, u := newReset(t, false)
	fixed := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return fixed }

	require.NoError(t, svc.RequestReset(context.Background(), "ana@example.com"))

	raw := rawTokenFrom(t, mailer)
	stored := users.get(u.ID)
	assert.True(t, stored.ResetPending())
	assert.Equal(t, helpers.DigestResetToken(raw), stored.ResetTokenHash)
	assert.NotEqual(t, raw, stored.ResetTokenHash)
	assert.Equal(t, fixed.Add(time.Hour), *stored.ResetTokenExpiry)
	assert.Equal(t, "ana@example.com", mailer.sent[0].to)
}

func TestRequestResetUnknownEmail(t *testing.T) {
	svc, _, mailer, _ := newReset(t, false)

	err := svc.RequestReset(context.Background(), "nobody@example.com")
	assert.ErrorIs(t, err, apperror.ErrNotFound)
	assert.Empty(t, mailer.sent)
}

func TestRequestResetUnknownEmailConcealed(t *testing.T) {
	svc, _, mailer, _ := newReset(t, true)

	assert.NoError(t, svc.RequestReset(context.Background(), "nobody@example.com"))
	assert.Empty(t, mailer.sent)
}

func TestRequestResetMailFailureIsInternal(t *testing.T) {
	svc, _, mailer, _ := newReset(t, false)
	mailer.err = errors.New("smtp timeout")

	err := svc.RequestReset(context.Background(), "ana@example.com")
	assert.Equal(t, apperror.KindInternal, apperror.KindOf(err))
}

func TestResetTokenIsSingleUse(t *testing.T) {
	svc, users, mailer, u := newReset(t, false)
	ctx := context.Background()
	require.NoError(t, svc.RequestReset(ctx, "ana@example.com"))
	raw := rawTokenFrom(t, mailer)

	require.NoError(t, svc.RedeemReset(ctx, raw, "new-pw"))

	stored := users.get(u.ID)
	assert.True(t, helpers.CompareHashAndPassword(stored.Password, "new-pw"))
	assert.False(t, stored.ResetPending())
	assert.Empty(t, stored.ResetTokenHash)
	assert.Nil(t, stored.ResetTokenExpiry)

	err := svc.RedeemReset(ctx, raw, "another-pw")
	assert.ErrorIs(t, err, apperror.ErrInvalidToken)
}

func TestResetTokenExpired(t *testing.T) {
	svc, users, mailer, u := newReset(t, false)
	ctx := context.Background()
	issued := time.Now()
	svc.now = func() time.Time { return issued }
	require.NoError(t, svc.RequestReset(ctx, "ana@example.com"))
	raw := rawTokenFrom(t, mailer)

	svc.now = func() time.Time { return issued.Add(time.Hour + time.Millisecond) }
	err := svc.RedeemReset(ctx, raw, "new-pw")

	assert.ErrorIs(t, err, apperror.ErrInvalidToken)
	assert.True(t, helpers.CompareHashAndPassword(users.get(u.ID).Password, "old-pw"))
}

func TestRedeemWrongTokenAndMissingPassword(t *testing.T) {
	svc, _, _, _ := newReset(t, false)
	ctx := context.Background()
	require.NoError(t, svc.RequestReset(ctx, "ana@example.com"))

	assert.ErrorIs(t, svc.RedeemReset(ctx, "deadbeef", "new-pw"), apperror.ErrInvalidToken)
	assert.ErrorIs(t, svc.RedeemReset(ctx, "", "new-pw"), apperror.ErrInvalidToken)
	assert.ErrorIs(t, svc.RedeemReset(ctx, "deadbeef", ""), apperror.ErrValidation)
}

func TestConcurrentRedeemOnlyOneWins(t *testing.T) {
	svc, _, mailer, _ := newReset(t, false)
	ctx := context.Background()
	require.NoError(t, svc.RequestReset(ctx, "ana@example.com"))
	raw := rawTokenFrom(t, mailer)

	const n = 4
	var wg sync.WaitGroup
	errs := make(chan error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			errs <- svc.RedeemReset(ctx, raw, "new-pw")
		}()
	}
	wg.Wait()
	close(errs)

	ok := 0
	for err := range errs {
		if err == nil {
			ok++
		} else {
			assert.ErrorIs(t, err, apperror.ErrInvalidToken)
		}
	}
	assert.Equal(t, 1, ok)
}
