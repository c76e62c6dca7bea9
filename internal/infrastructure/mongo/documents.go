package mongo

import (
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/oksasatya/evcharge/internal/domain/entity"
)

type userDoc struct {
	ID               bson.ObjectID `bson:"_id,omitempty"`
	Email            string        `bson:"email"`
	Password         string        `bson:"password"`
	ResetToken       string        `bson:"resetToken,omitempty"`
	ResetTokenExpiry *time.Time    `bson:"resetTokenExpiry,omitempty"`
	CreatedAt        time.Time     `bson:"createdAt"`
	UpdatedAt        time.Time     `bson:"updatedAt"`
}

func (d *userDoc) toEntity() *entity.User {
	u := &entity.User{
		ID:             d.ID.Hex(),
		Email:          d.Email,
		Password:       d.Password,
		ResetTokenHash: d.ResetToken,
		CreatedAt:      d.CreatedAt,
		UpdatedAt:      d.UpdatedAt,
	}
	if d.ResetTokenExpiry != nil {
		t := d.ResetTokenExpiry.UTC()
		u.ResetTokenExpiry = &t
	}
	return u
}

type chargingDoc struct {
	ID            bson.ObjectID `bson:"_id,omitempty"`
	VehicleID     string        `bson:"vehicleId"`
	StartTime     time.Time     `bson:"startTime"`
	EndTime       time.Time     `bson:"endTime"`
	EnergyUsed    float64       `bson:"energyUsed"`
	AmountCharged float64       `bson:"amountCharged"`
	IsPaid        bool          `bson:"isPaid"`
	CreatedAt     time.Time     `bson:"createdAt"`
	UpdatedAt     time.Time     `bson:"updatedAt"`
}

func newChargingDoc(r *entity.ChargingRecord) *chargingDoc {
	return &chargingDoc{
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

func (d *chargingDoc) toEntity() *entity.ChargingRecord {
	return &entity.ChargingRecord{
		ID:            d.ID.Hex(),
		VehicleID:     d.VehicleID,
		StartTime:     d.StartTime.UTC(),
		EndTime:       d.EndTime.UTC(),
		EnergyUsed:    d.EnergyUsed,
		AmountCharged: d.AmountCharged,
		IsPaid:        d.IsPaid,
		CreatedAt:     d.CreatedAt.UTC(),
		UpdatedAt:     d.UpdatedAt.UTC(),
	}
}
