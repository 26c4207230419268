package models

import "time"

type Review struct {
	ID           string     `json:"id"`
	AgencyID     string     `json:"agency_id,omitempty"`
	CustomerID   string     `json:"customer_id,omitempty"`
	BookingID    string     `json:"booking_id,omitempty"`
	CustomerName string     `json:"customer_name"`
	Rating       int        `json:"rating"`
	Title        string     `json:"title,omitempty"`
	Comment      string     `json:"comment"`
	AvatarURL    string     `json:"avatar_url,omitempty"`
	Type         ReviewType `json:"review_type"`
	CreatedAt    time.Time  `json:"created_at"`
}
