// Package dashboard reduces fetched lists into the figures shown on each dashboard.
// Every function is pure and tolerates absent dates.
package dashboard

import (
	"errors"
	"sort"
	"time"

	"nomadx/internal/models"
)

// HumanLayout renders a date like "Jan 10, 2025, 10:00 AM".
const HumanLayout = "Jan 2, 2006, 3:04 PM"

const dayLayout = "2006-01-02"

var ErrInvalidDate = errors.New("invalid date")

func CountByStatus(bookings []*models.Booking, status models.BookingStatus) int {
	n := 0
	for _, b := range bookings {
		if b.Status == status {
			n++
		}
	}
	return n
}

// CountToday counts bookings picked up on ref's calendar day, in ref's location.
// Bookings without a pickup date are not counted.
func CountToday(bookings []*models.Booking, ref time.Time) int {
	day := ref.Format(dayLayout)
	n := 0
	for _, b := range bookings {
		if b.PickupDate.IsZero() {
			continue
		}
		if b.PickupDate.In(ref.Location()).Format(dayLayout) == day {
			n++
		}
	}
	return n
}

// Upcoming returns at most limit bookings with pickup at or after now and a status in statuses,
// earliest first.
func Upcoming(bookings []*models.Booking, now time.Time, statuses []models.BookingStatus, limit int) []*models.Booking {
	if limit <= 0 {
		return nil
	}

	allowed := make(map[models.BookingStatus]bool, len(statuses))
	for _, s := range statuses {
		allowed[s] = true
	}

	out := make([]*models.Booking, 0, len(bookings))
	for _, b := range bookings {
		if !allowed[b.Status] || b.PickupDate.IsZero() || b.PickupDate.Before(now) {
			continue
		}
		out = append(out, b)
	}

	SortByPickup(out)
	if len(out) > limit {
		out = out[:limit]
	}
	return out
}

// SortByPickup orders bookings by pickup date ascending; bookings without one go last.
// Equal keys keep their input order.
func SortByPickup(bookings []*models.Booking) {
	sort.SliceStable(bookings, func(i, j int) bool {
		a, b := bookings[i].PickupDate, bookings[j].PickupDate
		switch {
		case a.IsZero():
			return false
		case b.IsZero():
			return true
		default:
			return a.Before(b)
		}
	})
}

func AvailableVehicleCount(vehicles []*models.Vehicle) int {
	return CountByVehicleStatus(vehicles)[models.VehicleAvailable]
}

func InUseOrMaintenanceCount(vehicles []*models.Vehicle) int {
	counts := CountByVehicleStatus(vehicles)
	return counts[models.VehicleInUse] + counts[models.VehicleMaintenance]
}

func CountByVehicleStatus(vehicles []*models.Vehicle) map[models.VehicleStatus]int {
	counts := make(map[models.VehicleStatus]int, 3)
	for _, v := range vehicles {
		counts[v.Status]++
	}
	return counts
}

// AverageRating returns the mean rating, or ok=false for an empty list.
func AverageRating(reviews []*models.Review) (avg float64, ok bool) {
	if len(reviews) == 0 {
		return 0, false
	}
	sum := 0
	for _, r := range reviews {
		sum += r.Rating
	}
	return float64(sum) / float64(len(reviews)), true
}

func UnreadCount(notifications []*models.Notification) int {
	n := 0
	for _, item := range notifications {
		if !item.Read {
			n++
		}
	}
	return n
}

// FormatDate renders t with layout, failing with ErrInvalidDate when t is absent.
func FormatDate(t time.Time, layout string) (string, error) {
	if t.IsZero() {
		return "", ErrInvalidDate
	}
	return t.Format(layout), nil
}

// FormatDateOr is FormatDate with a caller-chosen placeholder for absent dates.
func FormatDateOr(t time.Time, layout, placeholder string) string {
	s, err := FormatDate(t, layout)
	if err != nil {
		return placeholder
	}
	return s
}
