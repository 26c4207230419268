package service

import (
	"context"
	"strings"

	"github.com/rs/zerolog"

	"nomadx/internal/domain"
	"nomadx/internal/models"
	"nomadx/internal/scope"
)

type ReviewService struct {
	repo   domain.Repository
	logger *zerolog.Logger
}

func NewReviewService(repo domain.Repository, logger *zerolog.Logger) *ReviewService {
	return &ReviewService{repo: repo, logger: logger}
}

// Submit validates and stores a review. Rating and comment are checked before storage is touched.
// A customer may review each of their bookings once.
func (s *ReviewService) Submit(ctx context.Context, sess Session, r *models.Review) error {
	if r.Rating < models.MinRating || r.Rating > models.MaxRating {
		return validationError("rating must be between %d and %d", models.MinRating, models.MaxRating)
	}
	r.Comment = strings.TrimSpace(r.Comment)
	if r.Comment == "" {
		return validationError("comment is required")
	}

	switch sess.Role {
	case models.RoleCustomer:
		if err := s.prepareCustomerReview(ctx, sess, r); err != nil {
			return err
		}
	case models.RoleAgency:
		if sess.Account.ID == "" {
			return ErrForbidden
		}
		r.AgencyID = sess.Account.ID
		if r.Type == "" {
			r.Type = models.ReviewAgencyAssessment
		}
	case models.RoleAdmin:
	default:
		return ErrForbidden
	}

	if r.Type == "" {
		r.Type = models.ReviewCustomer
	}
	if !r.Type.Valid() {
		return validationError("unknown review type %q", r.Type)
	}

	if err := s.repo.CreateReview(ctx, r); err != nil {
		return err
	}
	s.logger.Info().Str("review_id", r.ID).Str("booking_id", r.BookingID).Int("rating", r.Rating).Msg("review submitted")
	return nil
}

func (s *ReviewService) prepareCustomerReview(ctx context.Context, sess Session, r *models.Review) error {
	if sess.Account.ID == "" {
		return ErrForbidden
	}
	r.CustomerID = sess.Account.ID
	r.Type = models.ReviewCustomer
	if strings.TrimSpace(r.CustomerName) == "" {
		r.CustomerName = sess.Account.DisplayName
	}
	if r.BookingID == "" {
		return nil
	}

	booking, err := s.repo.GetBooking(ctx, r.BookingID)
	if err != nil {
		return err
	}
	if booking.CustomerID != sess.Account.ID {
		return ErrForbidden
	}
	r.AgencyID = booking.AgencyID

	existing, err := s.repo.ListReviews(ctx, models.ListQuery{Filter: models.Where(models.FieldBookingID, r.BookingID)})
	if err != nil {
		return err
	}
	for _, prev := range existing {
		if prev.CustomerID == sess.Account.ID {
			return ErrAlreadyReviewed
		}
	}
	return nil
}

func (s *ReviewService) List(ctx context.Context, sess Session) ([]*models.Review, error) {
	q, ok := scope.Reviews(sess.Caller())
	if !ok {
		return []*models.Review{}, nil
	}
	return s.repo.ListReviews(ctx, q)
}

// ReviewedBookingIDs returns the set of bookings the customer has already reviewed.
func (s *ReviewService) ReviewedBookingIDs(ctx context.Context, sess Session) (map[string]bool, error) {
	reviewed := make(map[string]bool)
	if sess.Role != models.RoleCustomer || sess.Account.ID == "" {
		return reviewed, nil
	}
	reviews, err := s.repo.ListReviews(ctx, models.ListQuery{Filter: models.Where(models.FieldCustomerID, sess.Account.ID)})
	if err != nil {
		return nil, err
	}
	for _, r := range reviews {
		if r.BookingID != "" {
			reviewed[r.BookingID] = true
		}
	}
	return reviewed, nil
}

func (s *ReviewService) Delete(ctx context.Context, sess Session, id string) error {
	r, err := s.repo.GetReview(ctx, id)
	if err != nil {
		return err
	}
	if !sess.ownsAgencyRecord(r.AgencyID) {
		return ErrForbidden
	}
	return s.repo.DeleteReview(ctx, id)
}
