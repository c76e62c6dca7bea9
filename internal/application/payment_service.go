package application

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/oksasatya/evcharge/internal/domain/entity"
	"github.com/oksasatya/evcharge/pkg/apperror"
)

var (
	ErrInvalidSignature     = apperror.Auth("Invalid payment signature")
	errPaymentSecretMissing = errors.New("payment key secret not configured")
)

// MaxOrderAmount is the largest order, in minor units, the gateway call accepts.
const MaxOrderAmount = 1 << 53

// OrderRequest is what the gateway needs to open an order.
// Amount is in the currency's minor unit (paise for INR).
type OrderRequest struct {
	Amount   int64
	Currency string
	Receipt  string
	Notes    map[string]string
}

// PaymentGateway creates orders with the third-party provider. The returned
// map is the provider's order object, passed through untouched.
type PaymentGateway interface {
	CreateOrder(ctx context.Context, req OrderRequest) (map[string]any, error)
}

// ReceiptArchiver stores a copy of each verified payment. Optional.
type ReceiptArchiver interface {
	Archive(ctx context.Context, r *entity.PaymentReceipt) (string, error)
}

type VerifyPaymentInput struct {
	OrderID          string
	PaymentID        string
	Signature        string
	ChargingRecordID string
}

type PaymentService struct {
	Gateway  PaymentGateway
	Charging *ChargingService
	Archive  ReceiptArchiver
	Logger   *logrus.Logger
	secret   []byte
	currency string

	now func() time.Time
}

func NewPaymentService(gateway PaymentGateway, charging *ChargingService, archive ReceiptArchiver, logger *logrus.Logger, keySecret, currency string) *PaymentService {
	if currency == "" {
		currency = "INR"
	}
	return &PaymentService{
		Gateway:  gateway,
		Charging: charging,
		Archive:  archive,
		Logger:   logger,
		secret:   []byte(keySecret),
		currency: currency,
		now:      time.Now,
	}
}

// CreateOrder opens a gateway order for amount, which the caller already
// expresses in minor units, tagged with the charging record id.
func (s *PaymentService) CreateOrder(ctx context.Context, amount float64, chargingRecordID string) (map[string]any, error) {
	if amount <= 0 || math.IsNaN(amount) || math.IsInf(amount, 0) {
		return nil, apperror.Validation("Amount must be a positive number")
	}
	if amount != math.Trunc(amount) {
		return nil, apperror.Validation("Amount must be a whole number of minor currency units")
	}
	if amount > MaxOrderAmount {
		return nil, apperror.Validation("Amount is too large")
	}
	if chargingRecordID == "" {
		return nil, apperror.Validation("chargingRecordId is required to link payment")
	}
	order, err := s.Gateway.CreateOrder(ctx, OrderRequest{
		Amount:   int64(amount),
		Currency: s.currency,
		Receipt:  fmt.Sprintf("receipt_order_%d", s.now().UnixMilli()),
		Notes:    map[string]string{"chargingRecordId": chargingRecordID},
	})
	if err != nil {
		return nil, apperror.Internal("create gateway order", err)
	}
	s.Logger.WithFields(logrus.Fields{"record_id": chargingRecordID, "amount": int64(amount)}).Info("payment order created")
	return order, nil
}

// Signature is the hex HMAC-SHA256 of "orderID|paymentID" under secret.
func Signature(secret []byte, orderID, paymentID string) string {
	mac := hmac.New(sha256.New, secret)
	mac.Write([]byte(orderID + "|" + paymentID))
	return hex.EncodeToString(mac.Sum(nil))
}

// VerifyPayment checks the gateway callback signature and, when it matches,
// marks the referenced charging record as paid.
func (s *PaymentService) VerifyPayment(ctx context.Context, in VerifyPaymentInput) (*entity.ChargingRecord, error) {
	if in.OrderID == "" || in.PaymentID == "" || in.Signature == "" || in.ChargingRecordID == "" {
		return nil, apperror.Validation("Missing required payment verification data")
	}
	// An empty key would make every signature forgeable.
	if len(s.secret) == 0 {
		return nil, apperror.Internal("verify payment", errPaymentSecretMissing)
	}
	expected := Signature(s.secret, in.OrderID, in.PaymentID)
	if !hmac.Equal([]byte(expected), []byte(in.Signature)) {
		s.Logger.WithFields(logrus.Fields{"order_id": in.OrderID, "record_id": in.ChargingRecordID}).Warn("payment signature mismatch")
		return nil, ErrInvalidSignature
	}
	rec, err := s.Charging.MarkPaid(ctx, in.ChargingRecordID)
	if err != nil {
		return nil, err
	}
	s.archive(ctx, in, rec)
	return rec, nil
}

func (s *PaymentService) archive(ctx context.Context, in VerifyPaymentInput, rec *entity.ChargingRecord) {
	if s.Archive == nil {
		return
	}
	receipt := &entity.PaymentReceipt{
		OrderID:          in.OrderID,
		PaymentID:        in.PaymentID,
		Signature:        in.Signature,
		ChargingRecordID: rec.ID,
		VehicleID:        rec.VehicleID,
		AmountCharged:    rec.AmountCharged,
		VerifiedAt:       s.now().UTC(),
	}
	uri, err := s.Archive.Archive(ctx, receipt)
	if err != nil {
		s.Logger.WithError(err).WithField("record_id", rec.ID).Warn("receipt archive failed")
		return
	}
	s.Logger.WithFields(logrus.Fields{"record_id": rec.ID, "receipt": uri}).Info("payment verified")
}
