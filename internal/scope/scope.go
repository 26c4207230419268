// Package scope decides which slice of the data a caller may list.
package scope

import "nomadx/internal/models"

// Caller is the signed-in identity a list is built for.
type Caller struct {
	Role      models.Role
	AccountID string
}

var (
	byPickupDesc  = []models.Order{{Field: models.FieldPickupDate, Desc: true}}
	byName        = []models.Order{{Field: models.FieldName}}
	byMakeModel   = []models.Order{{Field: models.FieldMake}, {Field: models.FieldModel}}
	byCreatedDesc = []models.Order{{Field: models.FieldCreatedAt, Desc: true}}
)

// Bookings scopes agencies to their agency id and customers to their customer id.
// ok is false when the caller must see nothing.
func Bookings(c Caller) (models.ListQuery, bool) {
	return build(c, models.FieldCustomerID, byPickupDesc)
}

// Vehicles has no customer scope.
func Vehicles(c Caller) (models.ListQuery, bool) {
	return build(c, "", byMakeModel)
}

// Employees has no customer scope.
func Employees(c Caller) (models.ListQuery, bool) {
	return build(c, "", byName)
}

func Reviews(c Caller) (models.ListQuery, bool) {
	return build(c, models.FieldCustomerID, byCreatedDesc)
}

// Notifications returns the inbox a caller reads. Admins have none.
func Notifications(c Caller) (models.NotificationTarget, bool) {
	if c.AccountID == "" {
		return nil, false
	}
	switch c.Role {
	case models.RoleAgency:
		return models.AgencyTarget{AgencyID: c.AccountID}, true
	case models.RoleCustomer:
		return models.CustomerTarget{CustomerID: c.AccountID}, true
	default:
		return nil, false
	}
}

func build(c Caller, customerField string, order []models.Order) (models.ListQuery, bool) {
	q := models.ListQuery{Order: append([]models.Order(nil), order...)}

	switch c.Role {
	case models.RoleAdmin:
		// an absent id is the normal fetch-all signal for admins
		return q, true
	case models.RoleAgency:
		if c.AccountID == "" {
			return models.ListQuery{}, false
		}
		q.Filter = models.Where(models.FieldAgencyID, c.AccountID)
		return q, true
	case models.RoleCustomer:
		if c.AccountID == "" || customerField == "" {
			return models.ListQuery{}, false
		}
		q.Filter = models.Where(customerField, c.AccountID)
		return q, true
	default:
		return models.ListQuery{}, false
	}
}
