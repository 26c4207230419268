package service

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"nomadx/internal/database"
	"nomadx/internal/models"
	"nomadx/internal/repository"
)

func TestVehicleService_Create(t *testing.T) {
	ctx := context.Background()
	repo := new(mockRepo)
	logger := zerolog.Nop()
	s := NewVehicleService(repo, nil, &logger)

	repo.On("CreateVehicle", mock.Anything, mock.Anything).Return(nil)

	v := &models.Vehicle{AgencyID: "ag-9", Make: "Toyota", Model: "HiAce", SeatingCapacity: 12}
	require.NoError(t, s.Create(ctx, agencySession, v))
	assert.Equal(t, "ag-1", v.AgencyID)
	assert.Equal(t, models.VehicleAvailable, v.Status)

	assert.ErrorIs(t, s.Create(ctx, agencySession, &models.Vehicle{SeatingCapacity: 0}), ErrValidation)
	assert.ErrorIs(t, s.Create(ctx, agencySession, &models.Vehicle{SeatingCapacity: 4, Status: "Broken"}), ErrValidation)
	assert.ErrorIs(t, s.Create(ctx, customerSession, &models.Vehicle{SeatingCapacity: 4}), ErrForbidden)
	assert.ErrorIs(t, s.Create(ctx, adminSession, &models.Vehicle{SeatingCapacity: 4}), ErrValidation)
	repo.AssertNumberOfCalls(t, "CreateVehicle", 1)
}

func TestVehicleService_UpdateScope(t *testing.T) {
	ctx := context.Background()
	repo := new(mockRepo)
	logger := zerolog.Nop()
	s := NewVehicleService(repo, nil, &logger)

	repo.On("GetVehicle", mock.Anything, "v1").Return(&models.Vehicle{ID: "v1", AgencyID: "ag-1", SeatingCapacity: 4, Status: models.VehicleAvailable}, nil)
	repo.On("UpdateVehicle", mock.Anything, "v1", mock.Anything).Return(nil)

	status := models.VehicleMaintenance
	assert.ErrorIs(t, s.Update(ctx, otherAgency, "v1", models.VehiclePatch{Status: &status}), ErrForbidden)
	require.NoError(t, s.Update(ctx, agencySession, "v1", models.VehiclePatch{Status: &status}))

	zero := 0
	assert.ErrorIs(t, s.Update(ctx, agencySession, "v1", models.VehiclePatch{SeatingCapacity: &zero}), ErrValidation)
	repo.AssertNumberOfCalls(t, "UpdateVehicle", 1)
}

func TestVehicleService_ListCachedAndInvalidated(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)
	logger := zerolog.Nop()
	s := NewVehicleService(db, repository.NewMemoryListCache(time.Minute), &logger)

	require.NoError(t, s.Create(ctx, agencySession, &models.Vehicle{Make: "Toyota", Model: "HiAce", SeatingCapacity: 12}))
	list, err := s.List(ctx, agencySession)
	require.NoError(t, err)
	require.Len(t, list, 1)

	require.NoError(t, s.Create(ctx, agencySession, &models.Vehicle{Make: "Ford", Model: "Transit", SeatingCapacity: 9}))
	list, err = s.List(ctx, agencySession)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "Ford", list[0].Make)

	customerView, err := s.List(ctx, customerSession)
	require.NoError(t, err)
	assert.Empty(t, customerView)
}

func TestEmployeeService(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)
	logger := zerolog.Nop()
	s := NewEmployeeService(db, &logger)

	assert.ErrorIs(t, s.Create(ctx, agencySession, &models.Employee{Name: "  "}), ErrValidation)

	e := &models.Employee{Name: "Oleh", Role: "driver"}
	require.NoError(t, s.Create(ctx, agencySession, e))
	require.NotEmpty(t, e.ID)

	_, err := s.Get(ctx, otherAgency, e.ID)
	assert.ErrorIs(t, err, ErrForbidden)

	blank := ""
	assert.ErrorIs(t, s.Update(ctx, agencySession, e.ID, models.EmployeePatch{Name: &blank}), ErrValidation)

	name := "Oleh K."
	require.NoError(t, s.Update(ctx, agencySession, e.ID, models.EmployeePatch{Name: &name}))
	got, err := s.Get(ctx, agencySession, e.ID)
	require.NoError(t, err)
	assert.Equal(t, "Oleh K.", got.Name)

	list, err := s.List(ctx, otherAgency)
	require.NoError(t, err)
	assert.Empty(t, list)

	require.NoError(t, s.Delete(ctx, agencySession, e.ID))
	_, err = s.Get(ctx, agencySession, e.ID)
	assert.ErrorIs(t, err, database.ErrNotFound)
}

func TestNotificationService(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)
	logger := zerolog.Nop()
	bus := new(mockEventBus)
	bus.On("PublishJSON", mock.Anything, mock.Anything).Return(nil)
	s := NewNotificationService(db, bus, &logger)

	assert.ErrorIs(t, s.Create(ctx, customerSession, &models.Notification{Target: models.CustomerTarget{CustomerID: "cust-1"}, Title: "x"}), ErrForbidden)
	assert.ErrorIs(t, s.Create(ctx, agencySession, &models.Notification{Title: "x"}), ErrValidation)

	for _, title := range []string{"Pickup moved", "Driver assigned"} {
		require.NoError(t, s.Create(ctx, agencySession, &models.Notification{
			Target: models.CustomerTarget{CustomerID: "cust-1"},
			Title:  title,
		}))
	}

	inbox, err := s.List(ctx, customerSession)
	require.NoError(t, err)
	require.Len(t, inbox, 2)

	unread, err := s.UnreadCount(ctx, customerSession)
	require.NoError(t, err)
	assert.Equal(t, 2, unread)

	assert.ErrorIs(t, s.MarkRead(ctx, agencySession, inbox[0].ID), ErrForbidden)
	require.NoError(t, s.MarkRead(ctx, customerSession, inbox[0].ID))

	unread, err = s.UnreadCount(ctx, customerSession)
	require.NoError(t, err)
	assert.Equal(t, 1, unread)

	n, err := s.MarkAllRead(ctx, customerSession)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	adminInbox, err := s.List(ctx, adminSession)
	require.NoError(t, err)
	assert.Empty(t, adminInbox)
	bus.AssertNumberOfCalls(t, "PublishJSON", 2)
}

func TestUserService(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)
	logger := zerolog.Nop()
	s := NewUserService(db, &logger)

	assert.ErrorIs(t, s.CreateProfile(ctx, &models.UserProfile{ID: "u1", Email: "a@b.c", Role: "driver"}), ErrValidation)
	assert.ErrorIs(t, s.CreateProfile(ctx, &models.UserProfile{ID: "u1", Role: models.RoleCustomer}), ErrValidation)

	require.NoError(t, s.CreateProfile(ctx, &models.UserProfile{ID: "u1", Email: "a@b.c", Role: models.RoleAgency}))

	again := &models.UserProfile{ID: "u1", Email: "new@b.c", Role: models.RoleAdmin}
	require.NoError(t, s.CreateProfile(ctx, again))
	assert.Equal(t, models.RoleAgency, again.Role)

	role, err := s.GetRole(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, models.RoleAgency, role)

	profile, err := s.GetProfile(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, "new@b.c", profile.Email)

	assert.ErrorIs(t, s.Register(ctx, &models.UserProfile{ID: "u2", Email: "x@b.c", Role: models.RoleAdmin}), ErrForbidden)
	_, err = s.GetRole(ctx, "u2")
	assert.ErrorIs(t, err, database.ErrNotFound)

	require.NoError(t, s.Register(ctx, &models.UserProfile{ID: "u3", Email: "y@b.c", Role: models.RoleCustomer}))
}
