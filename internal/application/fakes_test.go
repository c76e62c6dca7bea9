package application

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/oksasatya/evcharge/internal/domain/entity"
	"github.com/oksasatya/evcharge/pkg/apperror"
	"github.com/oksasatya/evcharge/pkg/helpers"
)

type memUsers struct {
	mu    sync.Mutex
	seq   int
	byID  map[string]*entity.User
	fails error
}

func newMemUsers() *memUsers { return &memUsers{byID: map[string]*entity.User{}} }

func (m *memUsers) Create(_ context.Context, u *entity.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fails != nil {
		return m.fails
	}
	for _, x := range m.byID {
		if x.Email == u.Email {
			return apperror.Conflict("duplicate email")
		}
	}
	m.seq++
	u.ID = fmt.Sprintf("u%d", m.seq)
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
	if m.fails != nil {
		return nil, m.fails
	}
	for _, u := range m.byID {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, apperror.NotFound("user not found")
}

func (m *memUsers) SetResetToken(_ context.Context, userID, digest string, expiry time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.byID[userID]
	if !ok {
		return apperror.NotFound("user not found")
	}
	u.ResetTokenHash = digest
	u.ResetTokenExpiry = &expiry
	return nil
}

func (m *memUsers) ConsumeResetToken(_ context.Context, digest string, now time.Time, hash string) (*entity.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.byID {
		if u.ResetTokenHash == digest && u.ResetTokenExpiry != nil && u.ResetTokenExpiry.After(now) {
			u.Password = hash
			u.ResetTokenHash = ""
			u.ResetTokenExpiry = nil
			cp := *u
			return &cp, nil
		}
	}
	return nil, apperror.NotFound("no matching reset token")
}

func (m *memUsers) get(id string) *entity.User {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *m.byID[id]
	return &cp
}

type memRecords struct {
	mu   sync.Mutex
	seq  int
	byID map[string]*entity.ChargingRecord
	fail error
}

func newMemRecords() *memRecords { return &memRecords{byID: map[string]*entity.ChargingRecord{}} }

func (m *memRecords) Create(_ context.Context, r *entity.ChargingRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fail != nil {
		return m.fail
	}
	m.seq++
	r.ID = fmt.Sprintf("r%d", m.seq)
	cp := *r
	m.byID[r.ID] = &cp
	return nil
}

func (m *memRecords) ListAll(_ context.Context) ([]*entity.ChargingRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fail != nil {
		return nil, m.fail
	}
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

type sentReset struct {
	to, link string
	expires  time.Time
}

type fakeMailer struct {
	sent []sentReset
	err  error
}

func (f *fakeMailer) SendPasswordReset(_ context.Context, to, link string, expiresAt time.Time) error {
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, sentReset{to: to, link: link, expires: expiresAt})
	return nil
}

type fakeGateway struct {
	last OrderRequest
	err  error
}

func (g *fakeGateway) CreateOrder(_ context.Context, req OrderRequest) (map[string]any, error) {
	if g.err != nil {
		return nil, g.err
	}
	g.last = req
	return map[string]any{
		"id":       "order_test_1",
		"amount":   req.Amount,
		"currency": req.Currency,
		"receipt":  req.Receipt,
		"status":   "created",
	}, nil
}

type fakeIndex struct {
	indexed []string
	err     error
}

func (f *fakeIndex) Index(_ context.Context, r *entity.ChargingRecord) error {
	if f.err != nil {
		return f.err
	}
	f.indexed = append(f.indexed, r.ID)
	return nil
}

func (f *fakeIndex) SearchByVehicle(_ context.Context, vehicleID string, _ int) ([]*entity.ChargingRecord, error) {
	if f.err != nil {
		return nil, f.err
	}
	return []*entity.ChargingRecord{{ID: "r-indexed", VehicleID: vehicleID}}, nil
}

type fakeArchive struct {
	receipts []*entity.PaymentReceipt
}

func (f *fakeArchive) Archive(_ context.Context, r *entity.PaymentReceipt) (string, error) {
	f.receipts = append(f.receipts, r)
	return "gs://receipts/" + r.PaymentID + ".json", nil
}

var errStoreDown = errors.New("store down")

var testJWT = helpers.NewJWTManager("test-secret", time.Hour)

var nopLogger = helpers.NewNopLogger()
