package router

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/oksasatya/evcharge/internal/application"
	"github.com/oksasatya/evcharge/internal/domain/entity"
	"github.com/oksasatya/evcharge/pkg/apperror"
)

type memUsers struct {
	mu   sync.Mutex
	seq  int
	byID map[string]*entity.User
}

func (m *memUsers) Create(_ context.Context, u *entity.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, x := range m.byID {
		if x.Email == u.Email {
			return apperror.Conflict("duplicate")
		}
	}
	m.seq++
	u.ID = fmt.Sprintf("user-%d", m.seq)
	u.CreatedAt = time.Now().UTC()
	cp := *u
	m.byID[u.ID] = &cp
	return nil
}

func (m *memUsers) GetByID(_ context.Context, id string) (*entity.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if u, ok := m.byID[id]; ok {
		cp := *u
		return &cp, nil
	}
	return nil, apperror.NotFound("user not found")
}

func (m *memUsers) GetByEmail(_ context.Context, email string) (*entity.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.byID {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, apperror.NotFound("user not found")
}

func (m *memUsers) SetResetToken(_ context.Context, id, digest string, expiry time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.byID[id]
	if !ok {
		return apperror.NotFound("user not found")
	}
	u.ResetTokenHash, u.ResetTokenExpiry = digest, &expiry
	return nil
}

func (m *memUsers) ConsumeResetToken(_ context.Context, digest string, now time.Time, hash string) (*entity.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.byID {
		if u.ResetTokenHash == digest && u.ResetTokenExpiry != nil && u.ResetTokenExpiry.After(now) {
			u.Password, u.ResetTokenHash, u.ResetTokenExpiry = hash, "", nil
			cp := *u
			return &cp, nil
		}
	}
	return nil, apperror.NotFound("no token")
}

type memRecords struct {
	mu   sync.Mutex
	seq  int
	byID map[string]*entity.ChargingRecord
}

func (m *memRecords) Create(_ context.Context, r *entity.ChargingRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.seq++
	r.ID = fmt.Sprintf("rec-%d", m.seq)
	cp := *r
	m.byID[r.ID] = &cp
	return nil
}

func (m *memRecords) ListAll(_ context.Context) ([]*entity.ChargingRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*entity.ChargingRecord, 0, len(m.byID))
	for _, r := range m.byID {
		cp := *r
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (m *memRecords) GetByID(_ context.Context, id string) (*entity.ChargingRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if r, ok := m.byID[id]; ok {
		cp := *r
		return &cp, nil
	}
	return nil, apperror.NotFound("record not found")
}

func (m *memRecords) MarkPaid(_ context.Context, id string) (*entity.ChargingRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.byID[id]
	if !ok {
		return nil, apperror.NotFound("record not found")
	}
	r.IsPaid = true
	cp := *r
	return &cp, nil
}

type captureMailer struct {
	mu    sync.Mutex
	links []string
}

func (m *captureMailer) SendPasswordReset(_ context.Context, _, link string, _ time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.links = append(m.links, link)
	return nil
}

func (m *captureMailer) last() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.links) == 0 {
		return ""
	}
	return m.links[len(m.links)-1]
}

type stubGateway struct{}

func (stubGateway) CreateOrder(_ context.Context, req application.OrderRequest) (map[string]any, error) {
	return map[string]any{"id": "order_T1", "amount": req.Amount, "currency": req.Currency, "notes": req.Notes}, nil
}
