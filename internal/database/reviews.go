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

const reviewColumns = `id, agency_id, customer_id, booking_id, customer_name, rating,
	title, comment, avatar_url, review_type, created_at`

type reviewRow struct {
	ID           string    `db:"id"`
	AgencyID     string    `db:"agency_id"`
	CustomerID   string    `db:"customer_id"`
	BookingID    string    `db:"booking_id"`
	CustomerName string    `db:"customer_name"`
	Rating       int       `db:"rating"`
	Title        string    `db:"title"`
	Comment      string    `db:"comment"`
	AvatarURL    string    `db:"avatar_url"`
	ReviewType   string    `db:"review_type"`
	CreatedAt    time.Time `db:"created_at"`
}

func (r *reviewRow) toModel() *models.Review {
	return &models.Review{
		ID:           r.ID,
		AgencyID:     r.AgencyID,
		CustomerID:   r.CustomerID,
		BookingID:    r.BookingID,
		CustomerName: r.CustomerName,
		Rating:       r.Rating,
		Title:        r.Title,
		Comment:      r.Comment,
		AvatarURL:    r.AvatarURL,
		Type:         models.ReviewType(r.ReviewType),
		CreatedAt:    r.CreatedAt.UTC(),
	}
}

func (db *DB) CreateReview(ctx context.Context, r *models.Review) error {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	ts := now()
	query := db.Rebind(`INSERT INTO reviews (` + reviewColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	_, err := db.ExecContext(ctx, query,
		r.ID, r.AgencyID, r.CustomerID, r.BookingID, r.CustomerName, r.Rating,
		r.Title, r.Comment, r.AvatarURL, string(r.Type), ts,
	)
	if err != nil {
		return fmt.Errorf("failed to create review: %w", err)
	}
	r.CreatedAt = ts
	return nil
}

func (db *DB) GetReview(ctx context.Context, id string) (*models.Review, error) {
	var row reviewRow
	err := db.GetContext(ctx, &row, db.Rebind(`SELECT `+reviewColumns+` FROM reviews WHERE id = ?`), id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get review: %w", err)
	}
	return row.toModel(), nil
}

func (db *DB) ListReviews(ctx context.Context, q models.ListQuery) ([]*models.Review, error) {
	query, args, err := db.listSQL("reviews", `SELECT `+reviewColumns+` FROM reviews`, q)
	if err != nil {
		return nil, err
	}
	var rows []reviewRow
	if err := db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("failed to list reviews: %w", err)
	}
	reviews := make([]*models.Review, 0, len(rows))
	for i := range rows {
		reviews = append(reviews, rows[i].toModel())
	}
	return reviews, nil
}

func (db *DB) DeleteReview(ctx context.Context, id string) error {
	return db.deleteByID(ctx, "reviews", id)
}
