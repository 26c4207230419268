package database

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"           // postgres driver
	_ "github.com/mattn/go-sqlite3" // sqlite3 driver
	"github.com/rs/zerolog"

	"nomadx/internal/config"
	"nomadx/internal/domain"
)

var _ domain.Repository = (*DB)(nil)

// DB is the persistence gateway for every NomadX entity.
type DB struct {
	*sqlx.DB
	driver string
	path   string
	logger *zerolog.Logger
}

// Open connects to the configured driver and creates the schema.
func Open(ctx context.Context, cfg config.DatabaseConfig, logger *zerolog.Logger) (*DB, error) {
	switch cfg.Driver {
	case config.DriverPostgres:
		conn, err := sqlx.ConnectContext(ctx, "postgres", cfg.Postgres.DSN())
		if err != nil {
			return nil, fmt.Errorf("failed to connect to postgres: %w", err)
		}
		if cfg.Postgres.MaxConnections > 0 {
			conn.SetMaxOpenConns(cfg.Postgres.MaxConnections)
		}
		db := New(conn, "", logger)
		if err := db.createTables(ctx); err != nil {
			conn.Close()
			return nil, err
		}
		db.logger.Info().Str("host", cfg.Postgres.Host).Str("dbname", cfg.Postgres.DBName).Msg("Database initialized")
		return db, nil
	case config.DriverSQLite, "":
		return NewDB(ctx, cfg.Path, logger)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}
}

// NewDB opens (or creates) a sqlite database file.
func NewDB(ctx context.Context, path string, logger *zerolog.Logger) (*DB, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	conn, err := sqlx.ConnectContext(ctx, "sqlite3", path+"?_busy_timeout=5000&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// sqlite serialises writers; one connection avoids SQLITE_BUSY under load
	conn.SetMaxOpenConns(1)

	db := New(conn, path, logger)
	if err := db.createTables(ctx); err != nil {
		conn.Close()
		return nil, err
	}

	db.logger.Info().Str("path", path).Msg("Database initialized")
	return db, nil
}

// New wraps an existing connection. The schema is not touched.
func New(conn *sqlx.DB, path string, logger *zerolog.Logger) *DB {
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	return &DB{DB: conn, driver: conn.DriverName(), path: path, logger: logger}
}

// Path is the sqlite file path, empty for other drivers.
func (db *DB) Path() string {
	return db.path
}

func (db *DB) Driver() string {
	return db.driver
}

func (db *DB) createTables(ctx context.Context) error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS user_profiles (
			id TEXT PRIMARY KEY,
			email TEXT NOT NULL DEFAULT '',
			role TEXT NOT NULL,
			display_name TEXT NOT NULL DEFAULT '',
			phone TEXT NOT NULL DEFAULT '',
			created_at TIMESTAMP NOT NULL,
			updated_at TIMESTAMP NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS bookings (
			id TEXT PRIMARY KEY,
			customer_id TEXT NOT NULL DEFAULT '',
			customer_name TEXT NOT NULL DEFAULT '',
			customer_email TEXT NOT NULL DEFAULT '',
			customer_phone TEXT NOT NULL DEFAULT '',
			agency_id TEXT NOT NULL DEFAULT '',
			pickup_location TEXT NOT NULL DEFAULT '',
			dropoff_location TEXT NOT NULL DEFAULT '',
			pickup_date TIMESTAMP NULL,
			dropoff_date TIMESTAMP NULL,
			waypoints TEXT NOT NULL DEFAULT '[]',
			estimated_distance TEXT NOT NULL DEFAULT '',
			estimated_duration TEXT NOT NULL DEFAULT '',
			vehicle_type TEXT NOT NULL DEFAULT '',
			vehicle_id TEXT NOT NULL DEFAULT '',
			employee_id TEXT NOT NULL DEFAULT '',
			passengers INTEGER NOT NULL DEFAULT 1,
			notes TEXT NOT NULL DEFAULT '',
			status TEXT NOT NULL,
			created_at TIMESTAMP NOT NULL,
			updated_at TIMESTAMP NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS vehicles (
			id TEXT PRIMARY KEY,
			agency_id TEXT NOT NULL,
			type TEXT NOT NULL DEFAULT '',
			make TEXT NOT NULL DEFAULT '',
			model TEXT NOT NULL DEFAULT '',
			registration_number TEXT NOT NULL DEFAULT '',
			seating_capacity INTEGER NOT NULL,
			status TEXT NOT NULL,
			image_url TEXT NOT NULL DEFAULT '',
			created_at TIMESTAMP NOT NULL,
			updated_at TIMESTAMP NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS employees (
			id TEXT PRIMARY KEY,
			agency_id TEXT NOT NULL,
			name TEXT NOT NULL,
			role TEXT NOT NULL DEFAULT '',
			email TEXT NOT NULL DEFAULT '',
			phone TEXT NOT NULL DEFAULT '',
			avatar_url TEXT NOT NULL DEFAULT '',
			created_at TIMESTAMP NOT NULL,
			updated_at TIMESTAMP NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS reviews (
			id TEXT PRIMARY KEY,
			agency_id TEXT NOT NULL DEFAULT '',
			customer_id TEXT NOT NULL DEFAULT '',
			booking_id TEXT NOT NULL DEFAULT '',
			customer_name TEXT NOT NULL DEFAULT '',
			rating INTEGER NOT NULL,
			title TEXT NOT NULL DEFAULT '',
			comment TEXT NOT NULL,
			avatar_url TEXT NOT NULL DEFAULT '',
			review_type TEXT NOT NULL,
			created_at TIMESTAMP NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS notifications (
			id TEXT PRIMARY KEY,
			target_kind TEXT NOT NULL,
			target_id TEXT NOT NULL,
			title TEXT NOT NULL,
			description TEXT NOT NULL DEFAULT '',
			link TEXT NOT NULL DEFAULT '',
			is_read BOOLEAN NOT NULL DEFAULT FALSE,
			created_at TIMESTAMP NOT NULL
		)`,

		`CREATE INDEX IF NOT EXISTS idx_bookings_agency_id ON bookings(agency_id)`,
		`CREATE INDEX IF NOT EXISTS idx_bookings_customer_id ON bookings(customer_id)`,
		`CREATE INDEX IF NOT EXISTS idx_bookings_pickup_date ON bookings(pickup_date)`,
		`CREATE INDEX IF NOT EXISTS idx_vehicles_agency_id ON vehicles(agency_id)`,
		`CREATE INDEX IF NOT EXISTS idx_employees_agency_id ON employees(agency_id)`,
		`CREATE INDEX IF NOT EXISTS idx_reviews_agency_id ON reviews(agency_id)`,
		`CREATE INDEX IF NOT EXISTS idx_reviews_booking_id ON reviews(booking_id)`,
		`CREATE INDEX IF NOT EXISTS idx_notifications_target ON notifications(target_kind, target_id)`,
	}

	for _, query := range queries {
		if _, err := db.ExecContext(ctx, query); err != nil {
			return fmt.Errorf("failed to create tables: %w", err)
		}
	}
	return nil
}

func (db *DB) Close() error {
	return db.DB.Close()
}

func now() time.Time {
	return time.Now().UTC()
}
