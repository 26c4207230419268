package models

type BookingStatus string

const (
	StatusPending   BookingStatus = "Pending"
	StatusConfirmed BookingStatus = "Confirmed"
	StatusDenied    BookingStatus = "Denied"
	StatusCompleted BookingStatus = "Completed"
	StatusCancelled BookingStatus = "Cancelled"
)

// BookingStatuses lists every status in lifecycle order.
var BookingStatuses = []BookingStatus{
	StatusPending,
	StatusConfirmed,
	StatusDenied,
	StatusCompleted,
	StatusCancelled,
}

// bookingTransitions holds the moves the dashboards offer. Writes are not guarded by it.
var bookingTransitions = map[BookingStatus][]BookingStatus{
	StatusPending:   {StatusConfirmed, StatusDenied, StatusCancelled},
	StatusDenied:    {StatusConfirmed},
	StatusConfirmed: {StatusCompleted, StatusCancelled},
}

func (s BookingStatus) Valid() bool {
	for _, known := range BookingStatuses {
		if s == known {
			return true
		}
	}
	return false
}

// CanTransitionTo reports whether next is one of the moves offered from s.
func (s BookingStatus) CanTransitionTo(next BookingStatus) bool {
	for _, allowed := range bookingTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// Terminal reports whether no move leaves s. Denied is not terminal: it can be re-confirmed.
func (s BookingStatus) Terminal() bool {
	return len(bookingTransitions[s]) == 0
}

type VehicleStatus string

const (
	VehicleAvailable   VehicleStatus = "Available"
	VehicleInUse       VehicleStatus = "In Use"
	VehicleMaintenance VehicleStatus = "Maintenance"
)

func (s VehicleStatus) Valid() bool {
	switch s {
	case VehicleAvailable, VehicleInUse, VehicleMaintenance:
		return true
	}
	return false
}

type Role string

const (
	RoleCustomer Role = "customer"
	RoleAgency   Role = "agency"
	RoleAdmin    Role = "admin"
)

func (r Role) Valid() bool {
	switch r {
	case RoleCustomer, RoleAgency, RoleAdmin:
		return true
	}
	return false
}

type ReviewType string

const (
	ReviewCustomer         ReviewType = "customer"
	ReviewDriverReport     ReviewType = "driver_report"
	ReviewAgencyAssessment ReviewType = "agency_assessment"
)

func (t ReviewType) Valid() bool {
	switch t {
	case ReviewCustomer, ReviewDriverReport, ReviewAgencyAssessment:
		return true
	}
	return false
}

const (
	// DefaultPassengers applies when a booking is created without a passenger count.
	DefaultPassengers = 1

	WalkInCustomerName = "Walk-in Customer"
	NotAvailable       = "N/A"

	MinRating = 1
	MaxRating = 5

	// DefaultUpcomingLimit is the number of upcoming bookings shown on a dashboard.
	DefaultUpcomingLimit = 5
)
