package application

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/oksasatya/evcharge/internal/domain/entity"
	repo "github.com/oksasatya/evcharge/internal/domain/repository"
	"github.com/oksasatya/evcharge/pkg/apperror"
)

var ErrChargingRecordNotFound = apperror.NotFound("Charging record not found")

// ChargingIndexer mirrors records into a search index. Optional.
type ChargingIndexer interface {
	Index(ctx context.Context, r *entity.ChargingRecord) error
	SearchByVehicle(ctx context.Context, vehicleID string, size int) ([]*entity.ChargingRecord, error)
}

// CreateChargingInput is the unparsed submission. Numeric fields arrive as
// text so that both JSON numbers and numeric strings are accepted; an empty
// string means the field was absent.
type CreateChargingInput struct {
	VehicleID     string
	StartTime     string
	EndTime       string
	EnergyUsed    string
	AmountCharged string
	IsPaid        bool
}

type ChargingService struct {
	Records repo.ChargingRecordRepository
	Index   ChargingIndexer
	Logger  *logrus.Logger

	now func() time.Time
}

func NewChargingService(records repo.ChargingRecordRepository, index ChargingIndexer, logger *logrus.Logger) *ChargingService {
	return &ChargingService{Records: records, Index: index, Logger: logger, now: time.Now}
}

var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02",
}

func parseTimestamp(field, v string) (time.Time, error) {
	for _, l := range timeLayouts {
		if t, err := time.Parse(l, v); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, apperror.Validation(field + " must be a valid date/time")
}

func parseNonNegative(field, v string) (float64, error) {
	f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
	if err != nil {
		return 0, apperror.Validation(field + " must be a number")
	}
	if f < 0 {
		return 0, apperror.Validation(field + " cannot be negative")
	}
	return f, nil
}

func (in CreateChargingInput) toRecord() (*entity.ChargingRecord, error) {
	if in.VehicleID == "" || in.StartTime == "" || in.EndTime == "" || in.EnergyUsed == "" || in.AmountCharged == "" {
		return nil, apperror.Validation("All fields are required")
	}
	start, err := parseTimestamp("startTime", in.StartTime)
	if err != nil {
		return nil, err
	}
	end, err := parseTimestamp("endTime", in.EndTime)
	if err != nil {
		return nil, err
	}
	energy, err := parseNonNegative("energyUsed", in.EnergyUsed)
	if err != nil {
		return nil, err
	}
	amount, err := parseNonNegative("amountCharged", in.AmountCharged)
	if err != nil {
		return nil, err
	}
	return &entity.ChargingRecord{
		VehicleID:     in.VehicleID,
		StartTime:     start,
		EndTime:       end,
		EnergyUsed:    energy,
		AmountCharged: amount,
		IsPaid:        in.IsPaid,
	}, nil
}

// Create validates and stores a charging session.
// endTime is not required to be after startTime.
func (s *ChargingService) Create(ctx context.Context, in CreateChargingInput) (*entity.ChargingRecord, error) {
	rec, err := in.toRecord()
	if err != nil {
		return nil, err
	}
	now := s.now().UTC()
	rec.CreatedAt, rec.UpdatedAt = now, now
	if err := s.Records.Create(ctx, rec); err != nil {
		return nil, apperror.Internal("create charging record", err)
	}
	s.index(ctx, rec)
	return rec, nil
}

// ListAll returns every record, newest first.
func (s *ChargingService) ListAll(ctx context.Context) ([]*entity.ChargingRecord, error) {
	recs, err := s.Records.ListAll(ctx)
	if err != nil {
		return nil, apperror.Internal("list charging records", err)
	}
	if recs == nil {
		recs = []*entity.ChargingRecord{}
	}
	return recs, nil
}

// MarkPaid flags the record as paid. Calling it on a paid record is a no-op.
func (s *ChargingService) MarkPaid(ctx context.Context, id string) (*entity.ChargingRecord, error) {
	if id == "" {
		return nil, ErrChargingRecordNotFound
	}
	rec, err := s.Records.MarkPaid(ctx, id)
	if err != nil {
		if apperror.IsNotFound(err) {
			return nil, ErrChargingRecordNotFound
		}
		return nil, apperror.Internal("mark charging record paid", err)
	}
	s.index(ctx, rec)
	return rec, nil
}

// Search looks records up by vehicle id in the search index.
func (s *ChargingService) Search(ctx context.Context, vehicleID string, size int) ([]*entity.ChargingRecord, error) {
	vehicleID = strings.TrimSpace(vehicleID)
	if vehicleID == "" {
		return nil, apperror.Validation("vehicleId is required")
	}
	if s.Index == nil {
		return []*entity.ChargingRecord{}, nil
	}
	if size <= 0 || size > 100 {
		size = 20
	}
	recs, err := s.Index.SearchByVehicle(ctx, vehicleID, size)
	if err != nil {
		return nil, apperror.Internal("search charging records", err)
	}
	if recs == nil {
		recs = []*entity.ChargingRecord{}
	}
	return recs, nil
}

func (s *ChargingService) index(ctx context.Context, rec *entity.ChargingRecord) {
	if s.Index == nil {
		return
	}
	if err := s.Index.Index(ctx, rec); err != nil {
		s.Logger.WithError(err).WithField("record_id", rec.ID).Warn("charging record index failed")
	}
}
