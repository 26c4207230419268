package domain

import (
	"context"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"nomadx/internal/models"
)

type BookingRepository interface {
	CreateBooking(ctx context.Context, booking *models.Booking) error
	GetBooking(ctx context.Context, id string) (*models.Booking, error)
	ListBookings(ctx context.Context, q models.ListQuery) ([]*models.Booking, error)
	UpdateBooking(ctx context.Context, id string, patch models.BookingPatch) error
	UpdateBookingStatus(ctx context.Context, id string, status models.BookingStatus) error
	DeleteBooking(ctx context.Context, id string) error
}

type VehicleRepository interface {
	CreateVehicle(ctx context.Context, vehicle *models.Vehicle) error
	GetVehicle(ctx context.Context, id string) (*models.Vehicle, error)
	ListVehicles(ctx context.Context, q models.ListQuery) ([]*models.Vehicle, error)
	UpdateVehicle(ctx context.Context, id string, patch models.VehiclePatch) error
	DeleteVehicle(ctx context.Context, id string) error
}

type EmployeeRepository interface {
	CreateEmployee(ctx context.Context, employee *models.Employee) error
	GetEmployee(ctx context.Context, id string) (*models.Employee, error)
	ListEmployees(ctx context.Context, q models.ListQuery) ([]*models.Employee, error)
	UpdateEmployee(ctx context.Context, id string, patch models.EmployeePatch) error
	DeleteEmployee(ctx context.Context, id string) error
}

type ReviewRepository interface {
	CreateReview(ctx context.Context, review *models.Review) error
	GetReview(ctx context.Context, id string) (*models.Review, error)
	ListReviews(ctx context.Context, q models.ListQuery) ([]*models.Review, error)
	DeleteReview(ctx context.Context, id string) error
}

type NotificationRepository interface {
	CreateNotification(ctx context.Context, n *models.Notification) error
	GetNotification(ctx context.Context, id string) (*models.Notification, error)
	ListNotifications(ctx context.Context, target models.NotificationTarget) ([]*models.Notification, error)
	MarkNotificationRead(ctx context.Context, id string) error
	MarkAllNotificationsRead(ctx context.Context, target models.NotificationTarget) (int64, error)
}

type UserRepository interface {
	CreateUserProfile(ctx context.Context, profile *models.UserProfile) error
	GetUserProfile(ctx context.Context, id string) (*models.UserProfile, error)
	GetRole(ctx context.Context, id string) (models.Role, error)
}

// Repository is the full persistence gateway.
type Repository interface {
	BookingRepository
	VehicleRepository
	EmployeeRepository
	ReviewRepository
	NotificationRepository
	UserRepository
}

// ListCache holds fetched lists until a mutation invalidates them.
type ListCache interface {
	Get(ctx context.Context, key string, dest any) (bool, error)
	Set(ctx context.Context, key string, value any) error
	Delete(ctx context.Context, keys ...string) error
}

type EventPublisher interface {
	PublishJSON(eventType string, payload interface{}) error
}

type VehicleSuggester interface {
	Suggest(ctx context.Context, req models.SuggestionRequest) (*models.Suggestion, error)
}

// TelegramSender is the part of the bot API used to push alerts.
type TelegramSender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}
