package database

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nomadx/internal/models"
)

func TestBookings_CRUD(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	pickup := time.Date(2026, 3, 15, 9, 30, 0, 0, time.UTC)
	booking := &models.Booking{
		CustomerID:      "cust-1",
		CustomerName:    "Ada",
		CustomerEmail:   "ada@example.com",
		CustomerPhone:   "+94 71 000 0000",
		AgencyID:        "agency-1",
		PickupLocation:  "Colombo Fort",
		DropoffLocation: "Kandy",
		PickupDate:      pickup,
		Passengers:      3,
		Status:          models.StatusPending,
	}
	require.NoError(t, db.CreateBooking(ctx, booking))
	require.NotEmpty(t, booking.ID)
	assert.False(t, booking.CreatedAt.IsZero())

	got, err := db.GetBooking(ctx, booking.ID)
	require.NoError(t, err)
	assert.Equal(t, "Colombo Fort", got.PickupLocation)
	assert.True(t, pickup.Equal(got.PickupDate), "pickup %v", got.PickupDate)
	assert.True(t, got.DropoffDate.IsZero(), "absent dropoff stays absent")
	assert.Equal(t, 3, got.Passengers)
	assert.Equal(t, models.StatusPending, got.Status)
	assert.Nil(t, got.Waypoints)

	t.Run("UpdateStatus", func(t *testing.T) {
		require.NoError(t, db.UpdateBookingStatus(ctx, booking.ID, models.StatusDenied))
		got, err := db.GetBooking(ctx, booking.ID)
		require.NoError(t, err)
		assert.Equal(t, models.StatusDenied, got.Status)
	})

	t.Run("Patch", func(t *testing.T) {
		notes := "child seat"
		passengers := 4
		require.NoError(t, db.UpdateBooking(ctx, booking.ID, models.BookingPatch{Notes: &notes, Passengers: &passengers}))
		got, err := db.GetBooking(ctx, booking.ID)
		require.NoError(t, err)
		assert.Equal(t, "child seat", got.Notes)
		assert.Equal(t, 4, got.Passengers)
		assert.Equal(t, "Colombo Fort", got.PickupLocation)
	})

	t.Run("ClearPickupDate", func(t *testing.T) {
		zero := time.Time{}
		require.NoError(t, db.UpdateBooking(ctx, booking.ID, models.BookingPatch{PickupDate: &zero}))
		got, err := db.GetBooking(ctx, booking.ID)
		require.NoError(t, err)
		assert.True(t, got.PickupDate.IsZero())
	})

	t.Run("Delete", func(t *testing.T) {
		require.NoError(t, db.DeleteBooking(ctx, booking.ID))
		_, err := db.GetBooking(ctx, booking.ID)
		assert.ErrorIs(t, err, ErrNotFound)
		assert.ErrorIs(t, db.DeleteBooking(ctx, booking.ID), ErrNotFound)
	})
}

func TestBookings_NotFound(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	_, err := db.GetBooking(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, db.UpdateBookingStatus(ctx, "missing", models.StatusConfirmed), ErrNotFound)
	assert.ErrorIs(t, db.UpdateBooking(ctx, "missing", models.BookingPatch{}), ErrNotFound)
}

func TestBookings_WaypointsRoundTrip(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	booking := &models.Booking{
		PickupLocation: "A",
		Waypoints:      models.Stops([]string{"Stop 1", "Stop 2", "Stop 3"}),
		Status:         models.StatusPending,
		Passengers:     1,
	}
	require.NoError(t, db.CreateBooking(ctx, booking))

	got, err := db.GetBooking(ctx, booking.ID)
	require.NoError(t, err)
	require.Len(t, got.Waypoints, 3)
	for i, want := range []string{"Stop 1", "Stop 2", "Stop 3"} {
		assert.Equal(t, want, got.Waypoints[i].Location)
		assert.True(t, got.Waypoints[i].Stopover)
	}
}

func TestBookings_ListScopedByAgency(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	base := time.Date(2026, 5, 1, 8, 0, 0, 0, time.UTC)
	for i, agency := range []string{"agency-a", "agency-b", "agency-a", "agency-b", "agency-a"} {
		require.NoError(t, db.CreateBooking(ctx, &models.Booking{
			AgencyID:   agency,
			PickupDate: base.Add(time.Duration(i) * time.Hour),
			Status:     models.StatusPending,
			Passengers: 1,
		}))
	}

	byPickupDesc := []models.Order{{Field: models.FieldPickupDate, Desc: true}}

	listA, err := db.ListBookings(ctx, models.ListQuery{Filter: models.Where(models.FieldAgencyID, "agency-a"), Order: byPickupDesc})
	require.NoError(t, err)
	listB, err := db.ListBookings(ctx, models.ListQuery{Filter: models.Where(models.FieldAgencyID, "agency-b"), Order: byPickupDesc})
	require.NoError(t, err)

	require.Len(t, listA, 3)
	require.Len(t, listB, 2)

	seen := map[string]bool{}
	for _, b := range listA {
		assert.Equal(t, "agency-a", b.AgencyID)
		seen[b.ID] = true
	}
	for _, b := range listB {
		assert.Equal(t, "agency-b", b.AgencyID)
		assert.False(t, seen[b.ID], "agency lists must be disjoint")
	}

	for i := 1; i < len(listA); i++ {
		assert.True(t, listA[i-1].PickupDate.After(listA[i].PickupDate), "pickup date descending")
	}

	all, err := db.ListBookings(ctx, models.ListQuery{Order: byPickupDesc})
	require.NoError(t, err)
	assert.Len(t, all, 5)
}

func TestBookings_ListUnknownField(t *testing.T) {
	db := setupTestDB(t)

	_, err := db.ListBookings(context.Background(), models.ListQuery{Filter: models.Where("password", "x")})
	assert.ErrorIs(t, err, ErrUnknownField)

	_, err = db.ListBookings(context.Background(), models.ListQuery{Order: []models.Order{{Field: "1; DROP TABLE bookings"}}})
	assert.ErrorIs(t, err, ErrUnknownField)
}
