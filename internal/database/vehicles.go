package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"nomadx/internal/models"
)

const vehicleColumns = `id, agency_id, type, make, model, registration_number,
	seating_capacity, status, image_url, created_at, updated_at`

type vehicleRow struct {
	ID                 string    `db:"id"`
	AgencyID           string    `db:"agency_id"`
	Type               string    `db:"type"`
	Make               string    `db:"make"`
	Model              string    `db:"model"`
	RegistrationNumber string    `db:"registration_number"`
	SeatingCapacity    int       `db:"seating_capacity"`
	Status             string    `db:"status"`
	ImageURL           string    `db:"image_url"`
	CreatedAt          time.Time `db:"created_at"`
	UpdatedAt          time.Time `db:"updated_at"`
}

func (r *vehicleRow) toModel() *models.Vehicle {
	return &models.Vehicle{
		ID:                 r.ID,
		AgencyID:           r.AgencyID,
		Type:               r.Type,
		Make:               r.Make,
		Model:              r.Model,
		RegistrationNumber: r.RegistrationNumber,
		SeatingCapacity:    r.SeatingCapacity,
		Status:             models.VehicleStatus(r.Status),
		ImageURL:           r.ImageURL,
		CreatedAt:          r.CreatedAt.UTC(),
		UpdatedAt:          r.UpdatedAt.UTC(),
	}
}

func (db *DB) CreateVehicle(ctx context.Context, v *models.Vehicle) error {
	if v.ID == "" {
		v.ID = uuid.NewString()
	}
	ts := now()
	query := db.Rebind(`INSERT INTO vehicles (` + vehicleColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	_, err := db.ExecContext(ctx, query,
		v.ID, v.AgencyID, v.Type, v.Make, v.Model, v.RegistrationNumber,
		v.SeatingCapacity, string(v.Status), v.ImageURL, ts, ts,
	)
	if err != nil {
		return fmt.Errorf("failed to create vehicle: %w", err)
	}
	v.CreatedAt = ts
	v.UpdatedAt = ts
	return nil
}

func (db *DB) GetVehicle(ctx context.Context, id string) (*models.Vehicle, error) {
	var row vehicleRow
	err := db.GetContext(ctx, &row, db.Rebind(`SELECT `+vehicleColumns+` FROM vehicles WHERE id = ?`), id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get vehicle: %w", err)
	}
	return row.toModel(), nil
}

func (db *DB) ListVehicles(ctx context.Context, q models.ListQuery) ([]*models.Vehicle, error) {
	query, args, err := db.listSQL("vehicles", `SELECT `+vehicleColumns+` FROM vehicles`, q)
	if err != nil {
		return nil, err
	}
	var rows []vehicleRow
	if err := db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("failed to list vehicles: %w", err)
	}
	vehicles := make([]*models.Vehicle, 0, len(rows))
	for i := range rows {
		vehicles = append(vehicles, rows[i].toModel())
	}
	return vehicles, nil
}

func (db *DB) UpdateVehicle(ctx context.Context, id string, patch models.VehiclePatch) error {
	var set setClause
	set.addString("type", patch.Type)
	set.addString("make", patch.Make)
	set.addString("model", patch.Model)
	set.addString("registration_number", patch.RegistrationNumber)
	if patch.SeatingCapacity != nil {
		set.add("seating_capacity", *patch.SeatingCapacity)
	}
	if patch.Status != nil {
		set.add("status", string(*patch.Status))
	}
	set.addString("image_url", patch.ImageURL)
	return db.update(ctx, "vehicles", id, set)
}

func (db *DB) DeleteVehicle(ctx context.Context, id string) error {
	return db.deleteByID(ctx, "vehicles", id)
}
