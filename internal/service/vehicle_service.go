package service

import (
	"context"

	"github.com/rs/zerolog"

	"nomadx/internal/domain"
	"nomadx/internal/models"
	"nomadx/internal/scope"
)

const vehiclesEntity = "vehicles"

type VehicleService struct {
	repo   domain.VehicleRepository
	cache  domain.ListCache
	logger *zerolog.Logger
}

func NewVehicleService(repo domain.VehicleRepository, cache domain.ListCache, logger *zerolog.Logger) *VehicleService {
	return &VehicleService{repo: repo, cache: cache, logger: logger}
}

func (s *VehicleService) Create(ctx context.Context, sess Session, v *models.Vehicle) error {
	switch sess.Role {
	case models.RoleAgency:
		if sess.Account.ID == "" {
			return ErrForbidden
		}
		v.AgencyID = sess.Account.ID
	case models.RoleAdmin:
		if v.AgencyID == "" {
			return validationError("agency_id is required")
		}
	default:
		return ErrForbidden
	}

	if v.Status == "" {
		v.Status = models.VehicleAvailable
	}
	if err := validateVehicle(v.SeatingCapacity, v.Status); err != nil {
		return err
	}

	if err := s.repo.CreateVehicle(ctx, v); err != nil {
		return err
	}
	s.invalidate(ctx, v.AgencyID)
	return nil
}

func (s *VehicleService) Get(ctx context.Context, sess Session, id string) (*models.Vehicle, error) {
	v, err := s.repo.GetVehicle(ctx, id)
	if err != nil {
		return nil, err
	}
	if !sess.ownsAgencyRecord(v.AgencyID) {
		return nil, ErrForbidden
	}
	return v, nil
}

// List returns the agency's fleet ordered by make and model. Customers get an empty list.
func (s *VehicleService) List(ctx context.Context, sess Session) ([]*models.Vehicle, error) {
	q, ok := scope.Vehicles(sess.Caller())
	if !ok {
		return []*models.Vehicle{}, nil
	}
	return cachedList(ctx, s.cache, s.logger, scopeKey(vehiclesEntity, q), func() ([]*models.Vehicle, error) {
		return s.repo.ListVehicles(ctx, q)
	})
}

func (s *VehicleService) Update(ctx context.Context, sess Session, id string, patch models.VehiclePatch) error {
	v, err := s.Get(ctx, sess, id)
	if err != nil {
		return err
	}

	capacity, status := v.SeatingCapacity, v.Status
	if patch.SeatingCapacity != nil {
		capacity = *patch.SeatingCapacity
	}
	if patch.Status != nil {
		status = *patch.Status
	}
	if err := validateVehicle(capacity, status); err != nil {
		return err
	}

	if err := s.repo.UpdateVehicle(ctx, id, patch); err != nil {
		return err
	}
	s.invalidate(ctx, v.AgencyID)
	return nil
}

func (s *VehicleService) Delete(ctx context.Context, sess Session, id string) error {
	v, err := s.Get(ctx, sess, id)
	if err != nil {
		return err
	}
	if err := s.repo.DeleteVehicle(ctx, id); err != nil {
		return err
	}
	s.invalidate(ctx, v.AgencyID)
	return nil
}

func (s *VehicleService) invalidate(ctx context.Context, agencyID string) {
	invalidate(ctx, s.cache, s.logger,
		scopeKey(vehiclesEntity, models.ListQuery{}),
		scopeKey(vehiclesEntity, models.ListQuery{Filter: models.Where(models.FieldAgencyID, agencyID)}),
	)
}

func validateVehicle(seatingCapacity int, status models.VehicleStatus) error {
	if seatingCapacity < 1 {
		return validationError("seating capacity must be at least 1")
	}
	if !status.Valid() {
		return validationError("unknown vehicle status %q", status)
	}
	return nil
}
