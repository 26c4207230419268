package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"nomadx/internal/dashboard"
	"nomadx/internal/domain"
	"nomadx/internal/events"
	"nomadx/internal/metrics"
	"nomadx/internal/models"
	"nomadx/internal/scope"
)

const (
	bookingsEntity = "bookings"

	deniedTitle          = "Booking Denied"
	deniedLink           = "/customer/bookings"
	fallbackPickupPlace  = "your pickup location"
	fallbackScheduledFor = "the scheduled date"
)

type BookingService struct {
	repo     domain.Repository
	cache    domain.ListCache
	eventBus domain.EventPublisher
	logger   *zerolog.Logger
}

func NewBookingService(repo domain.Repository, cache domain.ListCache, eventBus domain.EventPublisher, logger *zerolog.Logger) *BookingService {
	return &BookingService{
		repo:     repo,
		cache:    cache,
		eventBus: eventBus,
		logger:   logger,
	}
}

// Create stores a new booking and returns its id. Customer identity is resolved from the
// caller: customers book for themselves, agencies record walk-ins, admins pass input through.
func (s *BookingService) Create(ctx context.Context, sess Session, in models.BookingInput) (string, error) {
	if in.Status != "" && !in.Status.Valid() {
		return "", validationError("unknown booking status %q", in.Status)
	}
	if in.Passengers < 0 {
		return "", validationError("passengers must be positive")
	}

	booking := &models.Booking{
		AgencyID:          in.AgencyID,
		PickupLocation:    strings.TrimSpace(in.PickupLocation),
		DropoffLocation:   strings.TrimSpace(in.DropoffLocation),
		PickupDate:        utc(in.PickupDate),
		DropoffDate:       utc(in.DropoffDate),
		Waypoints:         models.Stops(in.Waypoints),
		EstimatedDistance: in.EstimatedDistance,
		EstimatedDuration: in.EstimatedDuration,
		VehicleType:       in.VehicleType,
		VehicleID:         in.VehicleID,
		EmployeeID:        in.EmployeeID,
		Passengers:        in.Passengers,
		Notes:             in.Notes,
		Status:            in.Status,
	}

	switch sess.Role {
	case models.RoleCustomer:
		if sess.Account.ID == "" {
			return "", ErrForbidden
		}
		booking.CustomerID = sess.Account.ID
		booking.CustomerName = sess.Account.DisplayName
		booking.CustomerEmail = sess.Account.Email
		booking.CustomerPhone = sess.Account.PhoneNumber
	case models.RoleAgency:
		if sess.Account.ID == "" {
			return "", ErrForbidden
		}
		booking.AgencyID = sess.Account.ID
		booking.CustomerID = in.CustomerID
		booking.CustomerName = orDefault(in.CustomerName, models.WalkInCustomerName)
		booking.CustomerEmail = orDefault(in.CustomerEmail, models.NotAvailable)
		booking.CustomerPhone = orDefault(in.CustomerPhone, models.NotAvailable)
	case models.RoleAdmin:
		booking.CustomerID = in.CustomerID
		booking.CustomerName = in.CustomerName
		booking.CustomerEmail = in.CustomerEmail
		booking.CustomerPhone = in.CustomerPhone
	default:
		return "", ErrForbidden
	}

	if booking.Passengers == 0 {
		booking.Passengers = models.DefaultPassengers
	}
	if booking.Status == "" {
		booking.Status = models.StatusPending
	}

	if err := s.repo.CreateBooking(ctx, booking); err != nil {
		return "", err
	}

	s.logger.Info().
		Str("booking_id", booking.ID).
		Str("agency_id", booking.AgencyID).
		Str("role", string(sess.Role)).
		Msg("booking created")
	s.publishEvent(events.EventBookingCreated, booking, "", sess.Account.ID)

	return booking.ID, nil
}

// Get returns a booking the caller is allowed to see.
func (s *BookingService) Get(ctx context.Context, sess Session, id string) (*models.Booking, error) {
	booking, err := s.repo.GetBooking(ctx, id)
	if err != nil {
		return nil, err
	}
	if !sess.canSeeBooking(booking) {
		return nil, ErrForbidden
	}
	return booking, nil
}

// List returns the caller's scoped bookings, newest pickup first. A caller without a scope gets an empty list.
func (s *BookingService) List(ctx context.Context, sess Session) ([]*models.Booking, error) {
	q, ok := scope.Bookings(sess.Caller())
	if !ok {
		return []*models.Booking{}, nil
	}
	return cachedList(ctx, s.cache, s.logger, scopeKey(bookingsEntity, q), func() ([]*models.Booking, error) {
		return s.repo.ListBookings(ctx, q)
	})
}

func (s *BookingService) Update(ctx context.Context, sess Session, id string, patch models.BookingPatch) error {
	booking, err := s.Get(ctx, sess, id)
	if err != nil {
		return err
	}
	if sess.Role == models.RoleCustomer {
		if err := customerMayEdit(booking, patch); err != nil {
			return err
		}
	}
	if patch.Passengers != nil && *patch.Passengers < 1 {
		return validationError("passengers must be at least 1")
	}
	if patch.PickupDate != nil {
		t := utc(*patch.PickupDate)
		patch.PickupDate = &t
	}
	if patch.DropoffDate != nil {
		t := utc(*patch.DropoffDate)
		patch.DropoffDate = &t
	}

	if err := s.repo.UpdateBooking(ctx, id, patch); err != nil {
		return err
	}
	s.publishEvent(events.EventBookingUpdated, booking, "", sess.Account.ID)
	return nil
}

// customerMayEdit limits a customer to the trip details of a booking that is still
// Pending. Dispatch fields belong to the agency.
func customerMayEdit(booking *models.Booking, patch models.BookingPatch) error {
	if booking.Status != models.StatusPending {
		return ErrForbidden
	}
	if patch.VehicleID != nil || patch.EmployeeID != nil ||
		patch.EstimatedDistance != nil || patch.EstimatedDuration != nil {
		return ErrForbidden
	}
	return nil
}

// ChangeStatus is SetStatus on behalf of a caller. Customers may only cancel their own bookings.
func (s *BookingService) ChangeStatus(ctx context.Context, sess Session, id string, status models.BookingStatus) error {
	if !status.Valid() {
		return validationError("unknown booking status %q", status)
	}
	booking, err := s.Get(ctx, sess, id)
	if err != nil {
		return err
	}
	if sess.Role == models.RoleCustomer && status != models.StatusCancelled {
		return ErrForbidden
	}
	return s.applyStatus(ctx, booking, status, sess.Account.ID)
}

// SetStatus persists status unconditionally. A denial notifies the booking's customer, if any;
// a failure to do so is logged and does not undo the status change.
func (s *BookingService) SetStatus(ctx context.Context, id string, status models.BookingStatus) error {
	if !status.Valid() {
		return validationError("unknown booking status %q", status)
	}
	booking, err := s.repo.GetBooking(ctx, id)
	if err != nil {
		return err
	}
	return s.applyStatus(ctx, booking, status, "")
}

func (s *BookingService) applyStatus(ctx context.Context, booking *models.Booking, status models.BookingStatus, changedBy string) error {
	previous := booking.Status
	if !previous.CanTransitionTo(status) {
		s.logger.Warn().
			Str("booking_id", booking.ID).
			Str("from", string(previous)).
			Str("to", string(status)).
			Msg("status change outside the usual lifecycle")
	}

	if err := s.repo.UpdateBookingStatus(ctx, booking.ID, status); err != nil {
		return fmt.Errorf("update booking status: %w", err)
	}
	booking.Status = status
	metrics.IncStatusChange(string(status))

	if status == models.StatusDenied && booking.CustomerID != "" {
		s.notifyDenied(ctx, booking)
	}

	s.publishEvent(events.EventBookingStatusChanged, booking, previous, changedBy)
	return nil
}

func (s *BookingService) notifyDenied(ctx context.Context, booking *models.Booking) {
	place := booking.PickupLocation
	if place == "" {
		place = fallbackPickupPlace
	}
	when := dashboard.FormatDateOr(booking.PickupDate, dashboard.HumanLayout, fallbackScheduledFor)

	n := &models.Notification{
		Target:      models.CustomerTarget{CustomerID: booking.CustomerID},
		Title:       deniedTitle,
		Description: fmt.Sprintf("Your booking from %s on %s has been denied. Please contact the agency for more details.", place, when),
		Link:        deniedLink,
	}
	if err := s.repo.CreateNotification(ctx, n); err != nil {
		metrics.IncNotificationFailure()
		s.logger.Error().Err(err).
			Str("booking_id", booking.ID).
			Str("customer_id", booking.CustomerID).
			Msg("failed to create denial notification")
		return
	}

	if s.eventBus != nil {
		payload := events.NotificationEventPayload{
			NotificationID: n.ID,
			TargetKind:     string(n.Target.Kind()),
			TargetID:       n.Target.TargetID(),
			Title:          n.Title,
		}
		if err := s.eventBus.PublishJSON(events.EventNotificationCreated, payload); err != nil {
			s.logger.Error().Err(err).Str("notification_id", n.ID).Msg("publish event error")
		}
	}
}

// Delete removes a booking regardless of its status. Only agencies and admins may delete.
func (s *BookingService) Delete(ctx context.Context, sess Session, id string) error {
	if sess.Role != models.RoleAgency && sess.Role != models.RoleAdmin {
		return ErrForbidden
	}
	booking, err := s.Get(ctx, sess, id)
	if err != nil {
		return err
	}
	if err := s.repo.DeleteBooking(ctx, id); err != nil {
		return err
	}
	s.publishEvent(events.EventBookingDeleted, booking, "", sess.Account.ID)
	return nil
}

func (s *BookingService) publishEvent(eventType string, booking *models.Booking, previous models.BookingStatus, changedBy string) {
	if s.eventBus == nil {
		return
	}

	payload := events.BookingEventPayload{
		BookingID:      booking.ID,
		AgencyID:       booking.AgencyID,
		CustomerID:     booking.CustomerID,
		CustomerName:   booking.CustomerName,
		PickupLocation: booking.PickupLocation,
		PickupDate:     booking.PickupDate,
		Status:         string(booking.Status),
		PreviousStatus: string(previous),
		ChangedBy:      changedBy,
	}

	if err := s.eventBus.PublishJSON(eventType, payload); err != nil {
		s.logger.Error().Err(err).Str("event_type", eventType).Str("booking_id", booking.ID).Msg("publish event error")
	}
}

func utc(t time.Time) time.Time {
	if t.IsZero() {
		return t
	}
	return t.UTC()
}

func orDefault(value, fallback string) string {
	if v := strings.TrimSpace(value); v != "" {
		return v
	}
	return fallback
}
