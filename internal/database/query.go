package database

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"nomadx/internal/models"
)

// columns whitelists the fields each table accepts in a ListQuery.
var columns = map[string]map[string]bool{
	"bookings": {
		models.FieldAgencyID:   true,
		models.FieldCustomerID: true,
		models.FieldPickupDate: true,
		models.FieldCreatedAt:  true,
		"status":               true,
	},
	"vehicles": {
		models.FieldAgencyID:  true,
		models.FieldMake:      true,
		models.FieldModel:     true,
		models.FieldCreatedAt: true,
		"status":              true,
	},
	"employees": {
		models.FieldAgencyID:  true,
		models.FieldName:      true,
		models.FieldCreatedAt: true,
	},
	"reviews": {
		models.FieldAgencyID:   true,
		models.FieldCustomerID: true,
		models.FieldBookingID:  true,
		models.FieldCreatedAt:  true,
	},
}

// listSQL appends the filter and ordering of q to base. Placeholders are rebound for the driver.
func (db *DB) listSQL(table, base string, q models.ListQuery) (string, []interface{}, error) {
	allowed := columns[table]

	var sb strings.Builder
	sb.WriteString(base)

	var args []interface{}
	if q.Filter != nil {
		if !allowed[q.Filter.Field] {
			return "", nil, fmt.Errorf("%w: %s.%s", ErrUnknownField, table, q.Filter.Field)
		}
		sb.WriteString(" WHERE ")
		sb.WriteString(q.Filter.Field)
		sb.WriteString(" = ?")
		args = append(args, q.Filter.Value)
	}

	for i, o := range q.Order {
		if !allowed[o.Field] {
			return "", nil, fmt.Errorf("%w: %s.%s", ErrUnknownField, table, o.Field)
		}
		if i == 0 {
			sb.WriteString(" ORDER BY ")
		} else {
			sb.WriteString(", ")
		}
		sb.WriteString(o.Field)
		if o.Desc {
			sb.WriteString(" DESC")
		} else {
			sb.WriteString(" ASC")
		}
	}
	// id breaks ties so repeated lists come back in the same order
	if len(q.Order) > 0 {
		sb.WriteString(", id ASC")
	}

	return db.Rebind(sb.String()), args, nil
}

// setClause collects "col = ?" pairs for a partial update.
type setClause struct {
	cols []string
	args []interface{}
}

func (s *setClause) add(col string, value interface{}) {
	s.cols = append(s.cols, col+" = ?")
	s.args = append(s.args, value)
}

func (s *setClause) addString(col string, value *string) {
	if value != nil {
		s.add(col, *value)
	}
}

// update runs UPDATE table SET ... WHERE id = ? and maps zero affected rows to ErrNotFound.
func (db *DB) update(ctx context.Context, table, id string, set setClause) error {
	set.add("updated_at", now())
	query := db.Rebind(fmt.Sprintf("UPDATE %s SET %s WHERE id = ?", table, strings.Join(set.cols, ", ")))
	args := append(set.args, id)

	res, err := db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to update %s: %w", table, err)
	}
	return checkAffected(res, table)
}

func (db *DB) deleteByID(ctx context.Context, table, id string) error {
	res, err := db.ExecContext(ctx, db.Rebind(fmt.Sprintf("DELETE FROM %s WHERE id = ?", table)), id)
	if err != nil {
		return fmt.Errorf("failed to delete from %s: %w", table, err)
	}
	return checkAffected(res, table)
}

func checkAffected(res sql.Result, table string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows for %s: %w", table, err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
