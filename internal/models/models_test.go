package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBookingStatus_Transitions(t *testing.T) {
	t.Run("Offered", func(t *testing.T) {
		assert.True(t, StatusPending.CanTransitionTo(StatusConfirmed))
		assert.True(t, StatusPending.CanTransitionTo(StatusDenied))
		assert.True(t, StatusPending.CanTransitionTo(StatusCancelled))
		assert.True(t, StatusDenied.CanTransitionTo(StatusConfirmed))
		assert.True(t, StatusConfirmed.CanTransitionTo(StatusCompleted))
		assert.True(t, StatusConfirmed.CanTransitionTo(StatusCancelled))
	})

	t.Run("NotOffered", func(t *testing.T) {
		assert.False(t, StatusCompleted.CanTransitionTo(StatusPending))
		assert.False(t, StatusCancelled.CanTransitionTo(StatusConfirmed))
		assert.False(t, StatusDenied.CanTransitionTo(StatusCompleted))
		assert.False(t, StatusConfirmed.CanTransitionTo(StatusDenied))
	})

	t.Run("Terminal", func(t *testing.T) {
		assert.True(t, StatusCompleted.Terminal())
		assert.True(t, StatusCancelled.Terminal())
		assert.False(t, StatusDenied.Terminal())
		assert.False(t, StatusPending.Terminal())
	})

	t.Run("Valid", func(t *testing.T) {
		for _, s := range BookingStatuses {
			assert.True(t, s.Valid(), s)
		}
		assert.False(t, BookingStatus("pending").Valid())
		assert.False(t, BookingStatus("").Valid())
	})
}

func TestEnums(t *testing.T) {
	assert.True(t, VehicleInUse.Valid())
	assert.False(t, VehicleStatus("Broken").Valid())
	assert.True(t, RoleAgency.Valid())
	assert.False(t, Role("driver").Valid())
	assert.True(t, ReviewDriverReport.Valid())
	assert.False(t, ReviewType("").Valid())
}

func TestStops(t *testing.T) {
	stops := Stops([]string{"Stop 1", "", "Stop 2"})
	require.Len(t, stops, 2)
	assert.Equal(t, Waypoint{Location: "Stop 1", Stopover: true}, stops[0])
	assert.Equal(t, Waypoint{Location: "Stop 2", Stopover: true}, stops[1])
	assert.Nil(t, Stops(nil))
}

func TestBooking_JSONOmitsAbsentDates(t *testing.T) {
	raw, err := json.Marshal(Booking{ID: "b1", PickupDate: time.Date(2026, 11, 3, 9, 30, 0, 0, time.UTC)})
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"pickup_date":"2026-11-03T09:30:00Z"`)
	assert.NotContains(t, string(raw), "dropoff_date")

	var back Booking
	require.NoError(t, json.Unmarshal(raw, &back))
	assert.True(t, back.DropoffDate.IsZero())
}

func TestVehicleLabel(t *testing.T) {
	assert.Equal(t, "Toyota HiAce (KA-1234)", Vehicle{Make: "Toyota", Model: "HiAce", RegistrationNumber: "KA-1234"}.Label())
	assert.Equal(t, "Sprinter", Vehicle{Model: "Sprinter"}.Label())
}

func TestNotificationTarget(t *testing.T) {
	t.Run("TargetFor", func(t *testing.T) {
		target, err := TargetFor(TargetCustomer, "cust-1")
		require.NoError(t, err)
		assert.Equal(t, CustomerTarget{CustomerID: "cust-1"}, target)

		target, err = TargetFor(TargetAgency, "ag-1")
		require.NoError(t, err)
		assert.Equal(t, AgencyTarget{AgencyID: "ag-1"}, target)

		_, err = TargetFor("admin", "x")
		assert.Error(t, err)
	})

	t.Run("JSON", func(t *testing.T) {
		n := Notification{ID: "n1", Target: CustomerTarget{CustomerID: "cust-1"}, Title: "Booking Denied"}
		raw, err := json.Marshal(n)
		require.NoError(t, err)
		assert.Contains(t, string(raw), `"target_kind":"customer"`)
		assert.Contains(t, string(raw), `"target_id":"cust-1"`)

		var back Notification
		require.NoError(t, json.Unmarshal(raw, &back))
		assert.Equal(t, n.Target, back.Target)
		assert.False(t, back.Read)
	})
}

func TestSuggestion_ConfidencePercent(t *testing.T) {
	assert.Equal(t, 0, Suggestion{ConfidenceLevel: -0.2}.ConfidencePercent())
	assert.Equal(t, 87, Suggestion{ConfidenceLevel: 0.87}.ConfidencePercent())
	assert.Equal(t, 100, Suggestion{ConfidenceLevel: 1.4}.ConfidencePercent())
}
