package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	pgmigrate "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/evcharge/config"
	repo "github.com/oksasatya/evcharge/internal/domain/repository"
	mongoinfra "github.com/oksasatya/evcharge/internal/infrastructure/mongo"
	pginfra "github.com/oksasatya/evcharge/internal/infrastructure/postgres"
)

const (
	DriverMongo    = "mongo"
	DriverPostgres = "postgres"
)

// Store is an opened persistence backend.
type Store struct {
	Driver  string
	Users   repo.UserRepository
	Records repo.ChargingRecordRepository
	closeFn func()
}

func (s *Store) Close() {
	if s != nil && s.closeFn != nil {
		s.closeFn()
	}
}

// Open connects the backend named by cfg.StoreDriver. The postgres driver
// also applies pending migrations from cfg.MigrationsDir.
func Open(ctx context.Context, cfg *config.Config, logger *logrus.Logger) (*Store, error) {
	switch cfg.StoreDriver {
	case DriverMongo, "":
		client, db, err := mongoinfra.Connect(ctx, cfg.MongoURI, cfg.MongoDatabase)
		if err != nil {
			return nil, fmt.Errorf("connect mongo: %w", err)
		}
		logger.WithField("database", cfg.MongoDatabase).Info("mongo connected")
		return &Store{
			Driver:  DriverMongo,
			Users:   mongoinfra.NewUserRepository(db),
			Records: mongoinfra.NewChargingRecordRepository(db),
			closeFn: func() { _ = client.Disconnect(context.Background()) },
		}, nil

	case DriverPostgres:
		if err := RunMigrations(cfg.PostgresDSN(), cfg.MigrationsDir, logger); err != nil {
			return nil, fmt.Errorf("migrate: %w", err)
		}
		pool, err := pginfra.NewPool(ctx, cfg)
		if err != nil {
			return nil, fmt.Errorf("connect postgres: %w", err)
		}
		logger.WithField("database", cfg.DBName).Info("postgres connected")
		return &Store{
			Driver:  DriverPostgres,
			Users:   pginfra.NewUserRepository(pool),
			Records: pginfra.NewChargingRecordRepository(pool),
			closeFn: pool.Close,
		}, nil
	}
	return nil, fmt.Errorf("unknown STORE_DRIVER %q", cfg.StoreDriver)
}

// RunMigrations applies the file migrations in dir using database/sql with
// the pgx stdlib driver.
func RunMigrations(dsn, dir string, logger *logrus.Logger) error {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return err
	}
	defer func() { _ = db.Close() }()
	driver, err := pgmigrate.WithInstance(db, &pgmigrate.Config{})
	if err != nil {
		return err
	}
	m, err := migrate.NewWithDatabaseInstance(fmt.Sprintf("file://%s", dir), "postgres", driver)
	if err != nil {
		return err
	}
	logger.Info("running migrations...")
	err = m.Up()
	if errors.Is(err, migrate.ErrNoChange) {
		logger.Info("no migrations to run")
		return nil
	}
	return err
}
