package service

import (
	"context"
	"strings"

	"github.com/rs/zerolog"

	"nomadx/internal/dashboard"
	"nomadx/internal/domain"
	"nomadx/internal/events"
	"nomadx/internal/models"
	"nomadx/internal/scope"
)

type NotificationService struct {
	repo     domain.NotificationRepository
	eventBus domain.EventPublisher
	logger   *zerolog.Logger
}

func NewNotificationService(repo domain.NotificationRepository, eventBus domain.EventPublisher, logger *zerolog.Logger) *NotificationService {
	return &NotificationService{repo: repo, eventBus: eventBus, logger: logger}
}

// Create posts a manual notification. Only agencies and admins may send them.
func (s *NotificationService) Create(ctx context.Context, sess Session, n *models.Notification) error {
	if sess.Role != models.RoleAgency && sess.Role != models.RoleAdmin {
		return ErrForbidden
	}
	if n.Target == nil || n.Target.TargetID() == "" {
		return validationError("notification target is required")
	}
	if strings.TrimSpace(n.Title) == "" {
		return validationError("notification title is required")
	}
	n.Read = false

	if err := s.repo.CreateNotification(ctx, n); err != nil {
		return err
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
	return nil
}

// List returns the caller's inbox, newest first.
func (s *NotificationService) List(ctx context.Context, sess Session) ([]*models.Notification, error) {
	target, ok := scope.Notifications(sess.Caller())
	if !ok {
		return []*models.Notification{}, nil
	}
	return s.repo.ListNotifications(ctx, target)
}

func (s *NotificationService) MarkRead(ctx context.Context, sess Session, id string) error {
	n, err := s.repo.GetNotification(ctx, id)
	if err != nil {
		return err
	}
	target, ok := scope.Notifications(sess.Caller())
	if !ok || target != n.Target {
		return ErrForbidden
	}
	return s.repo.MarkNotificationRead(ctx, id)
}

func (s *NotificationService) MarkAllRead(ctx context.Context, sess Session) (int64, error) {
	target, ok := scope.Notifications(sess.Caller())
	if !ok {
		return 0, nil
	}
	return s.repo.MarkAllNotificationsRead(ctx, target)
}

func (s *NotificationService) UnreadCount(ctx context.Context, sess Session) (int, error) {
	list, err := s.List(ctx, sess)
	if err != nil {
		return 0, err
	}
	return dashboard.UnreadCount(list), nil
}
