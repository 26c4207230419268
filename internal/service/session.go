package service

import (
	"nomadx/internal/models"
	"nomadx/internal/scope"
)

// Session is the authenticated caller of a service operation.
type Session struct {
	Account models.Account
	Role    models.Role
}

func (s Session) Caller() scope.Caller {
	return scope.Caller{Role: s.Role, AccountID: s.Account.ID}
}

func (s Session) IsAdmin() bool {
	return s.Role == models.RoleAdmin
}

// ownsAgencyRecord reports whether the caller may touch a record belonging to agencyID.
func (s Session) ownsAgencyRecord(agencyID string) bool {
	switch s.Role {
	case models.RoleAdmin:
		return true
	case models.RoleAgency:
		return s.Account.ID != "" && s.Account.ID == agencyID
	default:
		return false
	}
}

// canSeeBooking applies the booking list scope to a single record.
func (s Session) canSeeBooking(b *models.Booking) bool {
	switch s.Role {
	case models.RoleCustomer:
		return s.Account.ID != "" && b.CustomerID == s.Account.ID
	default:
		return s.ownsAgencyRecord(b.AgencyID)
	}
}
