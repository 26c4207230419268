package models

// Field names understood by the persistence gateway's list queries.
const (
	FieldAgencyID   = "agency_id"
	FieldCustomerID = "customer_id"
	FieldBookingID  = "booking_id"
	FieldPickupDate = "pickup_date"
	FieldCreatedAt  = "created_at"
	FieldName       = "name"
	FieldMake       = "make"
	FieldModel      = "model"
)

// Filter is an equality predicate on a single field.
type Filter struct {
	Field string
	Value string
}

type Order struct {
	Field string
	Desc  bool
}

// ListQuery is what the gateway needs to run a list: an optional filter and an ordering.
type ListQuery struct {
	Filter *Filter
	Order  []Order
}

// Where returns a query filtered on field == value.
func Where(field, value string) *Filter {
	return &Filter{Field: field, Value: value}
}
