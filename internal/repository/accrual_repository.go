package repository

import (
	"context"

	"github.com/spec-kit/transfer-service/internal/domain"
)

// EmployeeProfit is a per-employee aggregate of monthly accrual rows.
type EmployeeProfit struct {
	EmployeeID  int64
	Name        string
	Role        domain.EmployeeRole
	GeneralBase float64
	Personal    float64
	Total       float64
}

// PeriodTotals aggregates all accrual rows of one period.
type PeriodTotals struct {
	GeneralBase float64
	Personal    float64
	Total       float64
}

// AccrualRepository maintains the monthly profit accrual rows.
type AccrualRepository interface {
	Accrue(ctx context.Context, employeeID int64, month, year int, generalBase, personal, total float64) error
	Totals(ctx context.Context, month, year int) (PeriodTotals, error)
	PerEmployee(ctx context.Context, month, year int) ([]EmployeeProfit, error)
}

type accrualRepository struct {
	db DBTX
}

// NewAccrualRepository instantiates the repository.
func NewAccrualRepository(db DBTX) AccrualRepository {
	return &accrualRepository{db: db}
}

// Accrue adds the amounts to the (employee, month, year) row, inserting it
// with the amounts as starting totals when absent.
func (r *accrualRepository) Accrue(ctx context.Context, employeeID int64, month, year int, generalBase, personal, total float64) error {
	const query = `
        INSERT INTO monthly_accruals (employee_id, month, year, general_base, personal, total)
        VALUES ($1,$2,$3,$4,$5,$6)
        ON CONFLICT (employee_id, month, year) DO UPDATE
        SET general_base = monthly_accruals.general_base + EXCLUDED.general_base,
            personal = monthly_accruals.personal + EXCLUDED.personal,
            total = monthly_accruals.total + EXCLUDED.total`
	_, err := r.db.Exec(ctx, query, employeeID, month, year, generalBase, personal, total)
	return err
}

func (r *accrualRepository) Totals(ctx context.Context, month, year int) (PeriodTotals, error) {
	const query = `
        SELECT COALESCE(SUM(general_base), 0), COALESCE(SUM(personal), 0), COALESCE(SUM(total), 0)
        FROM monthly_accruals
        WHERE month=$1 AND year=$2`
	var totals PeriodTotals
	if err := r.db.QueryRow(ctx, query, month, year).Scan(
		&totals.GeneralBase,
		&totals.Personal,
		&totals.Total,
	); err != nil {
		return PeriodTotals{}, err
	}
	return totals, nil
}

func (r *accrualRepository) PerEmployee(ctx context.Context, month, year int) ([]EmployeeProfit, error) {
	const query = `
        SELECT e.id, e.name, e.role,
               SUM(a.general_base), SUM(a.personal), SUM(a.total)
        FROM employees e
        JOIN monthly_accruals a ON e.id = a.employee_id
        WHERE a.month=$1 AND a.year=$2
        GROUP BY e.id, e.name, e.role
        ORDER BY SUM(a.total) DESC`
	rows, err := r.db.Query(ctx, query, month, year)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []EmployeeProfit
	for rows.Next() {
		var profit EmployeeProfit
		if err := rows.Scan(
			&profit.EmployeeID,
			&profit.Name,
			&profit.Role,
			&profit.GeneralBase,
			&profit.Personal,
			&profit.Total,
		); err != nil {
			return nil, err
		}
		result = append(result, profit)
	}
	return result, rows.Err()
}
