package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"nomadx/internal/models"
)

type userProfileRow struct {
	ID          string    `db:"id"`
	Email       string    `db:"email"`
	Role        string    `db:"role"`
	DisplayName string    `db:"display_name"`
	Phone       string    `db:"phone"`
	CreatedAt   time.Time `db:"created_at"`
	UpdatedAt   time.Time `db:"updated_at"`
}

// CreateUserProfile inserts the profile or refreshes its contact fields.
// An existing role is never overwritten; profile.Role is set to the stored one.
func (db *DB) CreateUserProfile(ctx context.Context, profile *models.UserProfile) error {
	ts := now()
	query := db.Rebind(`INSERT INTO user_profiles (id, email, role, display_name, phone, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			email = excluded.email,
			display_name = excluded.display_name,
			phone = excluded.phone,
			updated_at = excluded.updated_at`)

	_, err := db.ExecContext(ctx, query,
		profile.ID, profile.Email, string(profile.Role), profile.DisplayName, profile.Phone, ts, ts,
	)
	if err != nil {
		return fmt.Errorf("failed to save user profile: %w", err)
	}

	stored, err := db.GetUserProfile(ctx, profile.ID)
	if err != nil {
		return err
	}
	*profile = *stored
	return nil
}

func (db *DB) GetUserProfile(ctx context.Context, id string) (*models.UserProfile, error) {
	var row userProfileRow
	query := db.Rebind(`SELECT id, email, role, display_name, phone, created_at, updated_at
		FROM user_profiles WHERE id = ?`)
	err := db.GetContext(ctx, &row, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user profile: %w", err)
	}
	return &models.UserProfile{
		ID:          row.ID,
		Email:       row.Email,
		Role:        models.Role(row.Role),
		DisplayName: row.DisplayName,
		Phone:       row.Phone,
		CreatedAt:   row.CreatedAt.UTC(),
		UpdatedAt:   row.UpdatedAt.UTC(),
	}, nil
}

func (db *DB) GetRole(ctx context.Context, id string) (models.Role, error) {
	var role string
	err := db.GetContext(ctx, &role, db.Rebind(`SELECT role FROM user_profiles WHERE id = ?`), id)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("failed to get role: %w", err)
	}
	return models.Role(role), nil
}
