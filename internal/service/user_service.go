package service

import (
	"context"
	"strings"

	"github.com/rs/zerolog"

	"nomadx/internal/domain"
	"nomadx/internal/models"
)

type UserService struct {
	repo   domain.UserRepository
	logger *zerolog.Logger
}

func NewUserService(repo domain.UserRepository, logger *zerolog.Logger) *UserService {
	return &UserService{repo: repo, logger: logger}
}

// CreateProfile registers a user. Calling it again for the same id refreshes the contact
// fields and keeps the role chosen the first time.
func (s *UserService) CreateProfile(ctx context.Context, profile *models.UserProfile) error {
	profile.ID = strings.TrimSpace(profile.ID)
	profile.Email = strings.TrimSpace(profile.Email)
	if profile.ID == "" {
		return validationError("user id is required")
	}
	if profile.Email == "" {
		return validationError("email is required")
	}
	if !profile.Role.Valid() {
		return validationError("unknown role %q", profile.Role)
	}

	requested := profile.Role
	if err := s.repo.CreateUserProfile(ctx, profile); err != nil {
		return err
	}
	if profile.Role != requested {
		s.logger.Warn().
			Str("user_id", profile.ID).
			Str("role", string(profile.Role)).
			Str("requested_role", string(requested)).
			Msg("role change ignored for existing profile")
	}
	return nil
}

// Register is CreateProfile for a signed-in account choosing its own role. Only the
// customer and agency roles can be self-assigned; admins are created by an operator.
func (s *UserService) Register(ctx context.Context, profile *models.UserProfile) error {
	if profile.Role == models.RoleAdmin {
		s.logger.Warn().Str("user_id", profile.ID).Msg("self-assigned admin role refused")
		return ErrForbidden
	}
	return s.CreateProfile(ctx, profile)
}

func (s *UserService) GetRole(ctx context.Context, id string) (models.Role, error) {
	return s.repo.GetRole(ctx, id)
}

func (s *UserService) GetProfile(ctx context.Context, id string) (*models.UserProfile, error) {
	return s.repo.GetUserProfile(ctx, id)
}
