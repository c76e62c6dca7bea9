package entity

import "time"

// ChargingRecord is one logged charging session.
// EnergyUsed is in kWh, AmountCharged in major currency units.
type ChargingRecord struct {
	ID            string
	VehicleID     string
	StartTime     time.Time
	EndTime       time.Time
	EnergyUsed    float64
	AmountCharged float64
	IsPaid        bool
	CreatedAt     time.Time
	UpdatedAt     time.Time
}
