package main

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/joho/godotenv"

	"github.com/oksasatya/evcharge/config"
	"github.com/oksasatya/evcharge/internal/domain/entity"
	"github.com/oksasatya/evcharge/internal/infrastructure/store"
	"github.com/oksasatya/evcharge/pkg/apperror"
	"github.com/oksasatya/evcharge/pkg/helpers"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load()
	logger := helpers.NewLogger(helpers.LoggerOptions{App: cfg.AppName + "-seed", Env: cfg.Env, Level: cfg.LogLevel})
	ctx := context.Background()

	st, err := store.Open(ctx, cfg, logger)
	if err != nil {
		log.Fatalf("failed to open store: %v", err)
	}
	defer st.Close()

	email := "demo@evcharge.local"
	password := "password123"
	hash, err := helpers.HashPassword(password)
	if err != nil {
		log.Fatalf("failed to hash password: %v", err)
	}

	u := &entity.User{Email: email, Password: hash}
	switch err := st.Users.Create(ctx, u); {
	case err == nil:
		fmt.Printf("seeded user: id=%s email=%s password=%s\n", u.ID, email, password)
	case apperror.IsConflict(err):
		fmt.Printf("user %s already exists, skipped\n", email)
	default:
		log.Fatalf("failed to seed user: %v", err)
	}

	now := time.Now().UTC()
	rec := &entity.ChargingRecord{
		VehicleID:     "DEMO-EV-01",
		StartTime:     now.Add(-90 * time.Minute),
		EndTime:       now.Add(-30 * time.Minute),
		EnergyUsed:    18.5,
		AmountCharged: 240,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := st.Records.Create(ctx, rec); err != nil {
		log.Fatalf("failed to seed charging record: %v", err)
	}
	fmt.Printf("seeded charging record: id=%s vehicle=%s store=%s\n", rec.ID, rec.VehicleID, st.Driver)
}
