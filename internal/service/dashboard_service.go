package service

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"nomadx/internal/dashboard"
	"nomadx/internal/domain"
	"nomadx/internal/models"
	"nomadx/internal/scope"
)

type AgencySummary struct {
	TodayBookings       int               `json:"today_bookings"`
	PendingBookings     int               `json:"pending_bookings"`
	ConfirmedBookings   int               `json:"confirmed_bookings"`
	AvailableVehicles   int               `json:"available_vehicles"`
	BusyVehicles        int               `json:"busy_vehicles"`
	Employees           int               `json:"employees"`
	AverageRating       float64           `json:"average_rating,omitempty"`
	UnreadNotifications int               `json:"unread_notifications"`
	Upcoming            []*models.Booking `json:"upcoming"`
}

type CustomerSummary struct {
	TotalBookings       int               `json:"total_bookings"`
	CompletedBookings   int               `json:"completed_bookings"`
	UnreadNotifications int               `json:"unread_notifications"`
	Upcoming            []*models.Booking `json:"upcoming"`
}

type AdminSummary struct {
	TotalBookings  int                          `json:"total_bookings"`
	ByStatus       map[models.BookingStatus]int `json:"by_status"`
	TotalVehicles  int                          `json:"total_vehicles"`
	ByVehicleState map[models.VehicleStatus]int `json:"by_vehicle_status"`
	TotalEmployees int                          `json:"total_employees"`
	TotalReviews   int                          `json:"total_reviews"`
	AverageRating  float64                      `json:"average_rating,omitempty"`
}

// activeStatuses are the bookings a dashboard lists as upcoming.
var activeStatuses = []models.BookingStatus{models.StatusPending, models.StatusConfirmed}

// DashboardService assembles the per-role summaries from scoped lists.
type DashboardService struct {
	repo   domain.Repository
	logger *zerolog.Logger
	now    func() time.Time
}

func NewDashboardService(repo domain.Repository, logger *zerolog.Logger) *DashboardService {
	return &DashboardService{repo: repo, logger: logger, now: time.Now}
}

func (s *DashboardService) Agency(ctx context.Context, sess Session) (*AgencySummary, error) {
	if sess.Role != models.RoleAgency {
		return nil, ErrForbidden
	}
	caller := sess.Caller()

	bookings, err := s.bookings(ctx, caller)
	if err != nil {
		return nil, err
	}

	now := s.now()
	summary := &AgencySummary{
		TodayBookings:     dashboard.CountToday(bookings, now),
		PendingBookings:   dashboard.CountByStatus(bookings, models.StatusPending),
		ConfirmedBookings: dashboard.CountByStatus(bookings, models.StatusConfirmed),
		Upcoming:          dashboard.Upcoming(bookings, now, activeStatuses, models.DefaultUpcomingLimit),
	}

	if q, ok := scope.Vehicles(caller); ok {
		vehicles, err := s.repo.ListVehicles(ctx, q)
		if err != nil {
			return nil, err
		}
		summary.AvailableVehicles = dashboard.AvailableVehicleCount(vehicles)
		summary.BusyVehicles = dashboard.InUseOrMaintenanceCount(vehicles)
	}

	if q, ok := scope.Employees(caller); ok {
		employees, err := s.repo.ListEmployees(ctx, q)
		if err != nil {
			return nil, err
		}
		summary.Employees = len(employees)
	}

	if q, ok := scope.Reviews(caller); ok {
		reviews, err := s.repo.ListReviews(ctx, q)
		if err != nil {
			return nil, err
		}
		summary.AverageRating, _ = dashboard.AverageRating(reviews)
	}

	summary.UnreadNotifications, err = s.unread(ctx, caller)
	if err != nil {
		return nil, err
	}
	return summary, nil
}

func (s *DashboardService) Customer(ctx context.Context, sess Session) (*CustomerSummary, error) {
	if sess.Role != models.RoleCustomer {
		return nil, ErrForbidden
	}
	caller := sess.Caller()

	bookings, err := s.bookings(ctx, caller)
	if err != nil {
		return nil, err
	}

	summary := &CustomerSummary{
		TotalBookings:     len(bookings),
		CompletedBookings: dashboard.CountByStatus(bookings, models.StatusCompleted),
		Upcoming:          dashboard.Upcoming(bookings, s.now(), activeStatuses, models.DefaultUpcomingLimit),
	}

	summary.UnreadNotifications, err = s.unread(ctx, caller)
	if err != nil {
		return nil, err
	}
	return summary, nil
}

func (s *DashboardService) Admin(ctx context.Context, sess Session) (*AdminSummary, error) {
	if !sess.IsAdmin() {
		return nil, ErrForbidden
	}
	caller := sess.Caller()

	bookings, err := s.bookings(ctx, caller)
	if err != nil {
		return nil, err
	}
	summary := &AdminSummary{
		TotalBookings: len(bookings),
		ByStatus:      make(map[models.BookingStatus]int, len(models.BookingStatuses)),
	}
	for _, status := range models.BookingStatuses {
		summary.ByStatus[status] = dashboard.CountByStatus(bookings, status)
	}

	q, _ := scope.Vehicles(caller)
	vehicles, err := s.repo.ListVehicles(ctx, q)
	if err != nil {
		return nil, err
	}
	summary.TotalVehicles = len(vehicles)
	summary.ByVehicleState = dashboard.CountByVehicleStatus(vehicles)

	q, _ = scope.Employees(caller)
	employees, err := s.repo.ListEmployees(ctx, q)
	if err != nil {
		return nil, err
	}
	summary.TotalEmployees = len(employees)

	q, _ = scope.Reviews(caller)
	reviews, err := s.repo.ListReviews(ctx, q)
	if err != nil {
		return nil, err
	}
	summary.TotalReviews = len(reviews)
	summary.AverageRating, _ = dashboard.AverageRating(reviews)

	return summary, nil
}

func (s *DashboardService) bookings(ctx context.Context, caller scope.Caller) ([]*models.Booking, error) {
	q, ok := scope.Bookings(caller)
	if !ok {
		return nil, nil
	}
	return s.repo.ListBookings(ctx, q)
}

func (s *DashboardService) unread(ctx context.Context, caller scope.Caller) (int, error) {
	target, ok := scope.Notifications(caller)
	if !ok {
		return 0, nil
	}
	list, err := s.repo.ListNotifications(ctx, target)
	if err != nil {
		return 0, err
	}
	return dashboard.UnreadCount(list), nil
}
