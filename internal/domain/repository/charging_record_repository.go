package repository

import (
	"context"

	"github.com/oksasatya/evcharge/internal/domain/entity"
)

// ChargingRecordRepository persists charging sessions.
type ChargingRecordRepository interface {
	Create(ctx context.Context, r *entity.ChargingRecord) error
	// ListAll returns every record, newest CreatedAt first.
	ListAll(ctx context.Context) ([]*entity.ChargingRecord, error)
	GetByID(ctx context.Context, id string) (*entity.ChargingRecord, error)
	// MarkPaid sets IsPaid and returns the updated record; apperror.NotFound
	// when the id does not exist. Already-paid records are returned unchanged.
	MarkPaid(ctx context.Context, id string) (*entity.ChargingRecord, error)
}
