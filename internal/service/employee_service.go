package service

import (
	"context"
	"strings"

	"github.com/rs/zerolog"

	"nomadx/internal/domain"
	"nomadx/internal/models"
	"nomadx/internal/scope"
)

type EmployeeService struct {
	repo   domain.EmployeeRepository
	logger *zerolog.Logger
}

func NewEmployeeService(repo domain.EmployeeRepository, logger *zerolog.Logger) *EmployeeService {
	return &EmployeeService{repo: repo, logger: logger}
}

func (s *EmployeeService) Create(ctx context.Context, sess Session, e *models.Employee) error {
	switch sess.Role {
	case models.RoleAgency:
		if sess.Account.ID == "" {
			return ErrForbidden
		}
		e.AgencyID = sess.Account.ID
	case models.RoleAdmin:
		if e.AgencyID == "" {
			return validationError("agency_id is required")
		}
	default:
		return ErrForbidden
	}

	e.Name = strings.TrimSpace(e.Name)
	if e.Name == "" {
		return validationError("employee name is required")
	}
	return s.repo.CreateEmployee(ctx, e)
}

func (s *EmployeeService) Get(ctx context.Context, sess Session, id string) (*models.Employee, error) {
	e, err := s.repo.GetEmployee(ctx, id)
	if err != nil {
		return nil, err
	}
	if !sess.ownsAgencyRecord(e.AgencyID) {
		return nil, ErrForbidden
	}
	return e, nil
}

func (s *EmployeeService) List(ctx context.Context, sess Session) ([]*models.Employee, error) {
	q, ok := scope.Employees(sess.Caller())
	if !ok {
		return []*models.Employee{}, nil
	}
	return s.repo.ListEmployees(ctx, q)
}

func (s *EmployeeService) Update(ctx context.Context, sess Session, id string, patch models.EmployeePatch) error {
	if _, err := s.Get(ctx, sess, id); err != nil {
		return err
	}
	if patch.Name != nil {
		name := strings.TrimSpace(*patch.Name)
		if name == "" {
			return validationError("employee name is required")
		}
		patch.Name = &name
	}
	return s.repo.UpdateEmployee(ctx, id, patch)
}

func (s *EmployeeService) Delete(ctx context.Context, sess Session, id string) error {
	if _, err := s.Get(ctx, sess, id); err != nil {
		return err
	}
	return s.repo.DeleteEmployee(ctx, id)
}
