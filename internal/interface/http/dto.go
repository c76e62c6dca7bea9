package handlers

import (
	"bytes"
	"encoding/json"
	"errors"
	"strconv"
	"time"

	"github.com/oksasatya/evcharge/internal/domain/entity"
)

// flexNumber accepts a JSON number or a numeric string and keeps the text
// for the service to parse. null and absent both decode to "".
type flexNumber string

func (n *flexNumber) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	switch {
	case bytes.Equal(b, []byte("null")):
		*n = ""
	case len(b) > 0 && b[0] == '"':
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*n = flexNumber(s)
	default:
		var num json.Number
		if err := json.Unmarshal(b, &num); err != nil {
			return errors.New("must be a number or numeric string")
		}
		*n = flexNumber(num.String())
	}
	return nil
}

func (n flexNumber) Float() (float64, bool) {
	f, err := strconv.ParseFloat(string(n), 64)
	return f, err == nil
}

type recordJSON struct {
	ID            string    `json:"_id"`
	VehicleID     string    `json:"vehicleId"`
	StartTime     time.Time `json:"startTime"`
	EndTime       time.Time `json:"endTime"`
	EnergyUsed    float64   `json:"energyUsed"`
	AmountCharged float64   `json:"amountCharged"`
	IsPaid        bool      `json:"isPaid"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

func toRecordJSON(r *entity.ChargingRecord) recordJSON {
	return recordJSON{
		ID:            r.ID,
		VehicleID:     r.VehicleID,
		StartTime:     r.StartTime,
		EndTime:       r.EndTime,
		EnergyUsed:    r.EnergyUsed,
		AmountCharged: r.AmountCharged,
		IsPaid:        r.IsPaid,
		CreatedAt:     r.CreatedAt,
		UpdatedAt:     r.UpdatedAt,
	}
}

func toRecordList(recs []*entity.ChargingRecord) []recordJSON {
	out := make([]recordJSON, 0, len(recs))
	for _, r := range recs {
		out = append(out, toRecordJSON(r))
	}
	return out
}

type userJSON struct {
	ID        string    `json:"_id"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func toUserJSON(u *entity.User) userJSON {
	return userJSON{ID: u.ID, Email: u.Email, CreatedAt: u.CreatedAt, UpdatedAt: u.UpdatedAt}
}
