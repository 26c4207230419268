package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"nomadx/internal/models"
)

const bookingColumns = `id, customer_id, customer_name, customer_email, customer_phone, agency_id,
	pickup_location, dropoff_location, pickup_date, dropoff_date, waypoints,
	estimated_distance, estimated_duration, vehicle_type, vehicle_id, employee_id,
	passengers, notes, status, created_at, updated_at`

type bookingRow struct {
	ID                string       `db:"id"`
	CustomerID        string       `db:"customer_id"`
	CustomerName      string       `db:"customer_name"`
	CustomerEmail     string       `db:"customer_email"`
	CustomerPhone     string       `db:"customer_phone"`
	AgencyID          string       `db:"agency_id"`
	PickupLocation    string       `db:"pickup_location"`
	DropoffLocation   string       `db:"dropoff_location"`
	PickupDate        sql.NullTime `db:"pickup_date"`
	DropoffDate       sql.NullTime `db:"dropoff_date"`
	Waypoints         string       `db:"waypoints"`
	EstimatedDistance string       `db:"estimated_distance"`
	EstimatedDuration string       `db:"estimated_duration"`
	VehicleType       string       `db:"vehicle_type"`
	VehicleID         string       `db:"vehicle_id"`
	EmployeeID        string       `db:"employee_id"`
	Passengers        int          `db:"passengers"`
	Notes             string       `db:"notes"`
	Status            string       `db:"status"`
	CreatedAt         time.Time    `db:"created_at"`
	UpdatedAt         time.Time    `db:"updated_at"`
}

func (r *bookingRow) toModel() (*models.Booking, error) {
	waypoints, err := decodeWaypoints(r.Waypoints)
	if err != nil {
		return nil, fmt.Errorf("booking %s: %w", r.ID, err)
	}
	return &models.Booking{
		ID:                r.ID,
		CustomerID:        r.CustomerID,
		CustomerName:      r.CustomerName,
		CustomerEmail:     r.CustomerEmail,
		CustomerPhone:     r.CustomerPhone,
		AgencyID:          r.AgencyID,
		PickupLocation:    r.PickupLocation,
		DropoffLocation:   r.DropoffLocation,
		PickupDate:        fromNullTime(r.PickupDate),
		DropoffDate:       fromNullTime(r.DropoffDate),
		Waypoints:         waypoints,
		EstimatedDistance: r.EstimatedDistance,
		EstimatedDuration: r.EstimatedDuration,
		VehicleType:       r.VehicleType,
		VehicleID:         r.VehicleID,
		EmployeeID:        r.EmployeeID,
		Passengers:        r.Passengers,
		Notes:             r.Notes,
		Status:            models.BookingStatus(r.Status),
		CreatedAt:         r.CreatedAt.UTC(),
		UpdatedAt:         r.UpdatedAt.UTC(),
	}, nil
}

func (db *DB) CreateBooking(ctx context.Context, booking *models.Booking) error {
	if booking.ID == "" {
		booking.ID = uuid.NewString()
	}
	waypoints, err := encodeWaypoints(booking.Waypoints)
	if err != nil {
		return fmt.Errorf("failed to create booking: %w", err)
	}

	ts := now()
	query := db.Rebind(`INSERT INTO bookings (` + bookingColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	_, err = db.ExecContext(ctx, query,
		booking.ID,
		booking.CustomerID,
		booking.CustomerName,
		booking.CustomerEmail,
		booking.CustomerPhone,
		booking.AgencyID,
		booking.PickupLocation,
		booking.DropoffLocation,
		toNullTime(booking.PickupDate),
		toNullTime(booking.DropoffDate),
		waypoints,
		booking.EstimatedDistance,
		booking.EstimatedDuration,
		booking.VehicleType,
		booking.VehicleID,
		booking.EmployeeID,
		booking.Passengers,
		booking.Notes,
		string(booking.Status),
		ts,
		ts,
	)
	if err != nil {
		return fmt.Errorf("failed to create booking: %w", err)
	}

	booking.CreatedAt = ts
	booking.UpdatedAt = ts
	return nil
}

func (db *DB) GetBooking(ctx context.Context, id string) (*models.Booking, error) {
	var row bookingRow
	err := db.GetContext(ctx, &row, db.Rebind(`SELECT `+bookingColumns+` FROM bookings WHERE id = ?`), id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get booking: %w", err)
	}
	return row.toModel()
}

func (db *DB) ListBookings(ctx context.Context, q models.ListQuery) ([]*models.Booking, error) {
	query, args, err := db.listSQL("bookings", `SELECT `+bookingColumns+` FROM bookings`, q)
	if err != nil {
		return nil, err
	}

	var rows []bookingRow
	if err := db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("failed to list bookings: %w", err)
	}

	bookings := make([]*models.Booking, 0, len(rows))
	for i := range rows {
		b, err := rows[i].toModel()
		if err != nil {
			return nil, err
		}
		bookings = append(bookings, b)
	}
	return bookings, nil
}

func (db *DB) UpdateBooking(ctx context.Context, id string, patch models.BookingPatch) error {
	var set setClause
	set.addString("pickup_location", patch.PickupLocation)
	set.addString("dropoff_location", patch.DropoffLocation)
	if patch.PickupDate != nil {
		set.add("pickup_date", toNullTime(*patch.PickupDate))
	}
	if patch.DropoffDate != nil {
		set.add("dropoff_date", toNullTime(*patch.DropoffDate))
	}
	if patch.Waypoints != nil {
		waypoints, err := encodeWaypoints(*patch.Waypoints)
		if err != nil {
			return fmt.Errorf("failed to update bookings: %w", err)
		}
		set.add("waypoints", waypoints)
	}
	set.addString("estimated_distance", patch.EstimatedDistance)
	set.addString("estimated_duration", patch.EstimatedDuration)
	set.addString("vehicle_type", patch.VehicleType)
	set.addString("vehicle_id", patch.VehicleID)
	set.addString("employee_id", patch.EmployeeID)
	if patch.Passengers != nil {
		set.add("passengers", *patch.Passengers)
	}
	set.addString("notes", patch.Notes)

	return db.update(ctx, "bookings", id, set)
}

func (db *DB) UpdateBookingStatus(ctx context.Context, id string, status models.BookingStatus) error {
	var set setClause
	set.add("status", string(status))
	return db.update(ctx, "bookings", id, set)
}

func (db *DB) DeleteBooking(ctx context.Context, id string) error {
	return db.deleteByID(ctx, "bookings", id)
}

func encodeWaypoints(waypoints []models.Waypoint) (string, error) {
	if len(waypoints) == 0 {
		return "[]", nil
	}
	raw, err := json.Marshal(waypoints)
	if err != nil {
		return "", fmt.Errorf("encode waypoints: %w", err)
	}
	return string(raw), nil
}

func decodeWaypoints(raw string) ([]models.Waypoint, error) {
	if raw == "" || raw == "[]" || raw == "null" {
		return nil, nil
	}
	var waypoints []models.Waypoint
	if err := json.Unmarshal([]byte(raw), &waypoints); err != nil {
		return nil, fmt.Errorf("decode waypoints: %w", err)
	}
	return waypoints, nil
}

func toNullTime(t time.Time) sql.NullTime {
	if t.IsZero() {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: t.UTC(), Valid: true}
}

func fromNullTime(t sql.NullTime) time.Time {
	if !t.Valid {
		return time.Time{}
	}
	return t.Time.UTC()
}
