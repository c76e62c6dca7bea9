package postgres

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/oksasatya/evcharge/internal/domain/entity"
	"github.com/oksasatya/evcharge/internal/domain/repository"
	"github.com/oksasatya/evcharge/pkg/apperror"
)

var errRecordNotFound = apperror.NotFound("charging record not found")

const recordColumns = `id, vehicle_id, start_time, end_time, energy_used, amount_charged, is_paid, created_at, updated_at`

type ChargingRecordRepository struct {
	pool *pgxpool.Pool
}

func NewChargingRecordRepository(pool *pgxpool.Pool) *ChargingRecordRepository {
	return &ChargingRecordRepository{pool: pool}
}

func scanRecord(row pgx.Row) (*entity.ChargingRecord, error) {
	rec := &entity.ChargingRecord{}
	if err := row.Scan(&rec.ID, &rec.VehicleID, &rec.StartTime, &rec.EndTime, &rec.EnergyUsed,
		&rec.AmountCharged, &rec.IsPaid, &rec.CreatedAt, &rec.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, errRecordNotFound
		}
		return nil, err
	}
	return rec, nil
}

func (r *ChargingRecordRepository) Create(ctx context.Context, rec *entity.ChargingRecord) error {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO charging_records (id, vehicle_id, start_time, end_time, energy_used, amount_charged, is_paid, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id
	`, uuid.NewString(), rec.VehicleID, rec.StartTime, rec.EndTime, rec.EnergyUsed, rec.AmountCharged,
		rec.IsPaid, rec.CreatedAt, rec.UpdatedAt)
	return row.Scan(&rec.ID)
}

func (r *ChargingRecordRepository) ListAll(ctx context.Context) ([]*entity.ChargingRecord, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+recordColumns+` FROM charging_records ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]*entity.ChargingRecord, 0)
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

func (r *ChargingRecordRepository) GetByID(ctx context.Context, id string) (*entity.ChargingRecord, error) {
	if !validID(id) {
		return nil, errRecordNotFound
	}
	return scanRecord(r.pool.QueryRow(ctx, `SELECT `+recordColumns+` FROM charging_records WHERE id = $1`, id))
}

func (r *ChargingRecordRepository) MarkPaid(ctx context.Context, id string) (*entity.ChargingRecord, error) {
	if !validID(id) {
		return nil, errRecordNotFound
	}
	return scanRecord(r.pool.QueryRow(ctx, `
		UPDATE charging_records
		SET is_paid = TRUE, updated_at = CASE WHEN is_paid THEN updated_at ELSE now() END
		WHERE id = $1
		RETURNING `+recordColumns, id))
}

var _ repository.ChargingRecordRepository = (*ChargingRecordRepository)(nil)
