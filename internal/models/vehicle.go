package models

import "time"

type Vehicle struct {
	ID                 string        `json:"id"`
	AgencyID           string        `json:"agency_id"`
	Type               string        `json:"type"`
	Make               string        `json:"make"`
	Model              string        `json:"model"`
	RegistrationNumber string        `json:"registration_number"`
	SeatingCapacity    int           `json:"seating_capacity"`
	Status             VehicleStatus `json:"status"`
	ImageURL           string        `json:"image_url,omitempty"`
	CreatedAt          time.Time     `json:"created_at"`
	UpdatedAt          time.Time     `json:"updated_at"`
}

// Label is the human name of the vehicle used in lists and prompts.
func (v Vehicle) Label() string {
	label := v.Make
	if v.Model != "" {
		if label != "" {
			label += " "
		}
		label += v.Model
	}
	if v.RegistrationNumber != "" {
		label += " (" + v.RegistrationNumber + ")"
	}
	return label
}

type VehiclePatch struct {
	Type               *string        `json:"type,omitempty"`
	Make               *string        `json:"make,omitempty"`
	Model              *string        `json:"model,omitempty"`
	RegistrationNumber *string        `json:"registration_number,omitempty"`
	SeatingCapacity    *int           `json:"seating_capacity,omitempty"`
	Status             *VehicleStatus `json:"status,omitempty"`
	ImageURL           *string        `json:"image_url,omitempty"`
}

type Employee struct {
	ID        string    `json:"id"`
	AgencyID  string    `json:"agency_id"`
	Name      string    `json:"name"`
	Role      string    `json:"role"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone"`
	AvatarURL string    `json:"avatar_url,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type EmployeePatch struct {
	Name      *string `json:"name,omitempty"`
	Role      *string `json:"role,omitempty"`
	Email     *string `json:"email,omitempty"`
	Phone     *string `json:"phone,omitempty"`
	AvatarURL *string `json:"avatar_url,omitempty"`
}
