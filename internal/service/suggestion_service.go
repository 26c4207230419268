package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"nomadx/internal/dashboard"
	"nomadx/internal/domain"
	"nomadx/internal/metrics"
	"nomadx/internal/models"
	"nomadx/internal/scope"
	"nomadx/internal/suggest"
)

// historyLimit caps how many past bookings are described to the model.
const historyLimit = 10

type SuggestionService struct {
	repo      domain.Repository
	suggester domain.VehicleSuggester
	logger    *zerolog.Logger
}

func NewSuggestionService(repo domain.Repository, suggester domain.VehicleSuggester, logger *zerolog.Logger) *SuggestionService {
	return &SuggestionService{repo: repo, suggester: suggester, logger: logger}
}

// Suggest asks the model for a vehicle using caller-supplied descriptions.
func (s *SuggestionService) Suggest(ctx context.Context, sess Session, req models.SuggestionRequest) (*models.Suggestion, error) {
	if sess.Role != models.RoleAgency && sess.Role != models.RoleAdmin {
		return nil, ErrForbidden
	}
	if strings.TrimSpace(req.BookingDetails) == "" {
		return nil, validationError("booking details are required")
	}
	return s.suggest(ctx, req)
}

// SuggestForBooking describes a stored booking, the agency's available fleet and its
// recent history, then asks the model for a vehicle.
func (s *SuggestionService) SuggestForBooking(ctx context.Context, sess Session, bookingID string) (*models.Suggestion, error) {
	if sess.Role != models.RoleAgency && sess.Role != models.RoleAdmin {
		return nil, ErrForbidden
	}

	booking, err := s.repo.GetBooking(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if !sess.ownsAgencyRecord(booking.AgencyID) {
		return nil, ErrForbidden
	}

	agency := scope.Caller{Role: models.RoleAgency, AccountID: booking.AgencyID}
	var (
		vehicles []*models.Vehicle
		history  []*models.Booking
	)
	if q, ok := scope.Vehicles(agency); ok {
		if vehicles, err = s.repo.ListVehicles(ctx, q); err != nil {
			return nil, err
		}
	}
	if q, ok := scope.Bookings(agency); ok {
		if history, err = s.repo.ListBookings(ctx, q); err != nil {
			return nil, err
		}
	}

	return s.suggest(ctx, models.SuggestionRequest{
		BookingDetails:      describeBooking(booking),
		VehicleAvailability: describeFleet(vehicles),
		HistoricalData:      describeHistory(history, booking.ID),
	})
}

func (s *SuggestionService) suggest(ctx context.Context, req models.SuggestionRequest) (*models.Suggestion, error) {
	if s.suggester == nil {
		metrics.IncSuggestion("disabled")
		return nil, suggest.ErrDisabled
	}

	result, err := s.suggester.Suggest(ctx, req)
	if err != nil {
		if errors.Is(err, suggest.ErrDisabled) {
			metrics.IncSuggestion("disabled")
		} else {
			metrics.IncSuggestion("error")
			s.logger.Warn().Err(err).Msg("vehicle suggestion failed")
		}
		return nil, err
	}

	metrics.IncSuggestion("ok")
	return result, nil
}

func describeBooking(b *models.Booking) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Pickup: %s on %s.", b.PickupLocation, dashboard.FormatDateOr(b.PickupDate, dashboard.HumanLayout, "an unscheduled date"))
	if b.DropoffLocation != "" {
		fmt.Fprintf(&sb, " Dropoff: %s.", b.DropoffLocation)
	}
	if len(b.Waypoints) > 0 {
		stops := make([]string, 0, len(b.Waypoints))
		for _, w := range b.Waypoints {
			stops = append(stops, w.Location)
		}
		fmt.Fprintf(&sb, " Stops: %s.", strings.Join(stops, ", "))
	}
	fmt.Fprintf(&sb, " Passengers: %d.", b.Passengers)
	if b.VehicleType != "" {
		fmt.Fprintf(&sb, " Requested vehicle type: %s.", b.VehicleType)
	}
	if b.EstimatedDistance != "" {
		fmt.Fprintf(&sb, " Estimated distance: %s.", b.EstimatedDistance)
	}
	if b.Notes != "" {
		fmt.Fprintf(&sb, " Notes: %s", b.Notes)
	}
	return sb.String()
}

func describeFleet(vehicles []*models.Vehicle) string {
	var lines []string
	for _, v := range vehicles {
		if v.Status != models.VehicleAvailable {
			continue
		}
		lines = append(lines, fmt.Sprintf("%s, %s, %d seats", v.Label(), v.Type, v.SeatingCapacity))
	}
	if len(lines) == 0 {
		return "No vehicles are currently available."
	}
	return strings.Join(lines, "\n")
}

func describeHistory(bookings []*models.Booking, skipID string) string {
	var lines []string
	for _, b := range bookings {
		if b.ID == skipID || b.Status != models.StatusCompleted {
			continue
		}
		lines = append(lines, fmt.Sprintf("%d passengers, %s to %s, vehicle type %s",
			b.Passengers, b.PickupLocation, b.DropoffLocation, orDefault(b.VehicleType, "unspecified")))
		if len(lines) == historyLimit {
			break
		}
	}
	if len(lines) == 0 {
		return "No completed bookings yet."
	}
	return strings.Join(lines, "\n")
}
