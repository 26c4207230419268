package models

import "time"

// Waypoint is an intermediate stop on a booking's route.
type Waypoint struct {
	Location string `json:"location"`
	Stopover bool   `json:"stopover"`
}

type Booking struct {
	ID                string        `json:"id"`
	CustomerID        string        `json:"customer_id,omitempty"`
	CustomerName      string        `json:"customer_name"`
	CustomerEmail     string        `json:"customer_email"`
	CustomerPhone     string        `json:"customer_phone"`
	AgencyID          string        `json:"agency_id,omitempty"`
	PickupLocation    string        `json:"pickup_location"`
	DropoffLocation   string        `json:"dropoff_location"`
	PickupDate        time.Time     `json:"pickup_date,omitzero"`
	DropoffDate       time.Time     `json:"dropoff_date,omitzero"`
	Waypoints         []Waypoint    `json:"waypoints,omitempty"`
	EstimatedDistance string        `json:"estimated_distance,omitempty"`
	EstimatedDuration string        `json:"estimated_duration,omitempty"`
	VehicleType       string        `json:"vehicle_type,omitempty"`
	VehicleID         string        `json:"vehicle_id,omitempty"`
	EmployeeID        string        `json:"employee_id,omitempty"`
	Passengers        int           `json:"passengers"`
	Notes             string        `json:"notes,omitempty"`
	Status            BookingStatus `json:"status"`
	CreatedAt         time.Time     `json:"created_at"`
	UpdatedAt         time.Time     `json:"updated_at"`
}

// BookingInput carries everything a caller may supply when creating a booking.
// Identity fields are resolved by the booking service from the caller's account.
type BookingInput struct {
	CustomerID        string        `json:"customer_id,omitempty"`
	CustomerName      string        `json:"customer_name,omitempty"`
	CustomerEmail     string        `json:"customer_email,omitempty"`
	CustomerPhone     string        `json:"customer_phone,omitempty"`
	AgencyID          string        `json:"agency_id,omitempty"`
	PickupLocation    string        `json:"pickup_location"`
	DropoffLocation   string        `json:"dropoff_location"`
	PickupDate        time.Time     `json:"pickup_date,omitzero"`
	DropoffDate       time.Time     `json:"dropoff_date,omitzero"`
	Waypoints         []string      `json:"waypoints,omitempty"`
	EstimatedDistance string        `json:"estimated_distance,omitempty"`
	EstimatedDuration string        `json:"estimated_duration,omitempty"`
	VehicleType       string        `json:"vehicle_type,omitempty"`
	VehicleID         string        `json:"vehicle_id,omitempty"`
	EmployeeID        string        `json:"employee_id,omitempty"`
	Passengers        int           `json:"passengers,omitempty"`
	Notes             string        `json:"notes,omitempty"`
	Status            BookingStatus `json:"status,omitempty"`
}

// BookingPatch is a partial update. Nil fields are left untouched.
type BookingPatch struct {
	PickupLocation    *string     `json:"pickup_location,omitempty"`
	DropoffLocation   *string     `json:"dropoff_location,omitempty"`
	PickupDate        *time.Time  `json:"pickup_date,omitempty"`
	DropoffDate       *time.Time  `json:"dropoff_date,omitempty"`
	Waypoints         *[]Waypoint `json:"waypoints,omitempty"`
	EstimatedDistance *string     `json:"estimated_distance,omitempty"`
	EstimatedDuration *string     `json:"estimated_duration,omitempty"`
	VehicleType       *string     `json:"vehicle_type,omitempty"`
	VehicleID         *string     `json:"vehicle_id,omitempty"`
	EmployeeID        *string     `json:"employee_id,omitempty"`
	Passengers        *int        `json:"passengers,omitempty"`
	Notes             *string     `json:"notes,omitempty"`
}

// Stops converts free-text waypoint labels into route stops. Empty labels are dropped.
func Stops(labels []string) []Waypoint {
	if len(labels) == 0 {
		return nil
	}
	stops := make([]Waypoint, 0, len(labels))
	for _, label := range labels {
		if label == "" {
			continue
		}
		stops = append(stops, Waypoint{Location: label, Stopover: true})
	}
	return stops
}
