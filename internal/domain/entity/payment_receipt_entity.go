package entity

import "time"

// PaymentReceipt is the archived proof of a verified gateway payment.
type PaymentReceipt struct {
	OrderID          string    `json:"order_id"`
	PaymentID        string    `json:"payment_id"`
	Signature        string    `json:"signature"`
	ChargingRecordID string    `json:"charging_record_id"`
	VehicleID        string    `json:"vehicle_id"`
	AmountCharged    float64   `json:"amount_charged"`
	VerifiedAt       time.Time `json:"verified_at"`
}
