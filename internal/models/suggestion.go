package models

// SuggestionRequest is the free-text context handed to the vehicle suggestion model.
type SuggestionRequest struct {
	BookingDetails      string `json:"booking_details"`
	VehicleAvailability string `json:"vehicle_availability"`
	HistoricalData      string `json:"historical_data"`
}

type Suggestion struct {
	SuggestedVehicle string  `json:"suggested_vehicle"`
	Reasoning        string  `json:"reasoning"`
	ConfidenceLevel  float64 `json:"confidence_level"`
}

// ConfidencePercent clamps the model's confidence into a 0-100 display value.
func (s Suggestion) ConfidencePercent() int {
	pct := s.ConfidenceLevel * 100
	switch {
	case pct < 0:
		return 0
	case pct > 100:
		return 100
	}
	return int(pct + 0.5)
}
