package service

import (
	"context"

	"github.com/stretchr/testify/mock"

	"nomadx/internal/models"
)

type mockRepo struct {
	mock.Mock
}

func (m *mockRepo) CreateBooking(ctx context.Context, b *models.Booking) error {
	return m.Called(ctx, b).Error(0)
}
func (m *mockRepo) GetBooking(ctx context.Context, id string) (*models.Booking, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Booking), args.Error(1)
}
func (m *mockRepo) ListBookings(ctx context.Context, q models.ListQuery) ([]*models.Booking, error) {
	args := m.Called(ctx, q)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Booking), args.Error(1)
}
func (m *mockRepo) UpdateBooking(ctx context.Context, id string, p models.BookingPatch) error {
	return m.Called(ctx, id, p).Error(0)
}
func (m *mockRepo) UpdateBookingStatus(ctx context.Context, id string, s models.BookingStatus) error {
	return m.Called(ctx, id, s).Error(0)
}
func (m *mockRepo) DeleteBooking(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}
func (m *mockRepo) CreateVehicle(ctx context.Context, v *models.Vehicle) error {
	return m.Called(ctx, v).Error(0)
}
func (m *mockRepo) GetVehicle(ctx context.Context, id string) (*models.Vehicle, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Vehicle), args.Error(1)
}
func (m *mockRepo) ListVehicles(ctx context.Context, q models.ListQuery) ([]*models.Vehicle, error) {
	args := m.Called(ctx, q)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Vehicle), args.Error(1)
}
func (m *mockRepo) UpdateVehicle(ctx context.Context, id string, p models.VehiclePatch) error {
	return m.Called(ctx, id, p).Error(0)
}
func (m *mockRepo) DeleteVehicle(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}
func (m *mockRepo) CreateEmployee(ctx context.Context, e *models.Employee) error {
	return m.Called(ctx, e).Error(0)
}
func (m *mockRepo) GetEmployee(ctx context.Context, id string) (*models.Employee, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Employee), args.Error(1)
}
func (m *mockRepo) ListEmployees(ctx context.Context, q models.ListQuery) ([]*models.Employee, error) {
	args := m.Called(ctx, q)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Employee), args.Error(1)
}
func (m *mockRepo) UpdateEmployee(ctx context.Context, id string, p models.EmployeePatch) error {
	return m.Called(ctx, id, p).Error(0)
}
func (m *mockRepo) DeleteEmployee(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}
func (m *mockRepo) CreateReview(ctx context.Context, r *models.Review) error {
	return m.Called(ctx, r).Error(0)
}
func (m *mockRepo) GetReview(ctx context.Context, id string) (*models.Review, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Review), args.Error(1)
}
func (m *mockRepo) ListReviews(ctx context.Context, q models.ListQuery) ([]*models.Review, error) {
	args := m.Called(ctx, q)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Review), args.Error(1)
}
func (m *mockRepo) DeleteReview(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}
func (m *mockRepo) CreateNotification(ctx context.Context, n *models.Notification) error {
	return m.Called(ctx, n).Error(0)
}
func (m *mockRepo) GetNotification(ctx context.Context, id string) (*models.Notification, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Notification), args.Error(1)
}
func (m *mockRepo) ListNotifications(ctx context.Context, t models.NotificationTarget) ([]*models.Notification, error) {
	args := m.Called(ctx, t)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Notification), args.Error(1)
}
func (m *mockRepo) MarkNotificationRead(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}
func (m *mockRepo) MarkAllNotificationsRead(ctx context.Context, t models.NotificationTarget) (int64, error) {
	args := m.Called(ctx, t)
	return args.Get(0).(int64), args.Error(1)
}
func (m *mockRepo) CreateUserProfile(ctx context.Context, p *models.UserProfile) error {
	return m.Called(ctx, p).Error(0)
}
func (m *mockRepo) GetUserProfile(ctx context.Context, id string) (*models.UserProfile, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.UserProfile), args.Error(1)
}
func (m *mockRepo) GetRole(ctx context.Context, id string) (models.Role, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(models.Role), args.Error(1)
}

type mockEventBus struct {
	mock.Mock
}

func (m *mockEventBus) PublishJSON(eventType string, payload interface{}) error {
	return m.Called(eventType, payload).Error(0)
}

type mockSuggester struct {
	mock.Mock
}

func (m *mockSuggester) Suggest(ctx context.Context, req models.SuggestionRequest) (*models.Suggestion, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Suggestion), args.Error(1)
}
