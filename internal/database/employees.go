package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"nomadx/internal/models"
)

const employeeColumns = `id, agency_id, name, role, email, phone, avatar_url, created_at, updated_at`

type employeeRow struct {
	ID        string    `db:"id"`
	AgencyID  string    `db:"agency_id"`
	Name      string    `db:"name"`
	Role      string    `db:"role"`
	Email     string    `db:"email"`
	Phone     string    `db:"phone"`
	AvatarURL string    `db:"avatar_url"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

func (r *employeeRow) toModel() *models.Employee {
	return &models.Employee{
		ID:        r.ID,
		AgencyID:  r.AgencyID,
		Name:      r.Name,
		Role:      r.Role,
		Email:     r.Email,
		Phone:     r.Phone,
		AvatarURL: r.AvatarURL,
		CreatedAt: r.CreatedAt.UTC(),
		UpdatedAt: r.UpdatedAt.UTC(),
	}
}

func (db *DB) CreateEmployee(ctx context.Context, e *models.Employee) error {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	ts := now()
	query := db.Rebind(`INSERT INTO employees (` + employeeColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	_, err := db.ExecContext(ctx, query, e.ID, e.AgencyID, e.Name, e.Role, e.Email, e.Phone, e.AvatarURL, ts, ts)
	if err != nil {
		return fmt.Errorf("failed to create employee: %w", err)
	}
	e.CreatedAt = ts
	e.UpdatedAt = ts
	return nil
}

func (db *DB) GetEmployee(ctx context.Context, id string) (*models.Employee, error) {
	var row employeeRow
	err := db.GetContext(ctx, &row, db.Rebind(`SELECT `+employeeColumns+` FROM employees WHERE id = ?`), id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get employee: %w", err)
	}
	return row.toModel(), nil
}

func (db *DB) ListEmployees(ctx context.Context, q models.ListQuery) ([]*models.Employee, error) {
	query, args, err := db.listSQL("employees", `SELECT `+employeeColumns+` FROM employees`, q)
	if err != nil {
		return nil, err
	}
	var rows []employeeRow
	if err := db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("failed to list employees: %w", err)
	}
	employees := make([]*models.Employee, 0, len(rows))
	for i := range rows {
		employees = append(employees, rows[i].toModel())
	}
	return employees, nil
}

func (db *DB) UpdateEmployee(ctx context.Context, id string, patch models.EmployeePatch) error {
	var set setClause
	set.addString("name", patch.Name)
	set.addString("role", patch.Role)
	set.addString("email", patch.Email)
	set.addString("phone", patch.Phone)
	set.addString("avatar_url", patch.AvatarURL)
	return db.update(ctx, "employees", id, set)
}

func (db *DB) DeleteEmployee(ctx context.Context, id string) error {
	return db.deleteByID(ctx, "employees", id)
}
