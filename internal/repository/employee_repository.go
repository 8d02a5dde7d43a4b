package repository

import (
	"context"

	"github.com/spec-kit/transfer-service/internal/domain"
)

// EmployeeRepository handles persistence for employees.
type EmployeeRepository interface {
	Create(ctx context.Context, employee *domain.Employee) error
	GetByID(ctx context.Context, id int64) (*domain.Employee, error)
	FirstByRole(ctx context.Context, role domain.EmployeeRole) (*domain.Employee, error)
	List(ctx context.Context) ([]domain.Employee, error)
	Count(ctx context.Context) (int64, error)
}

type employeeRepository struct {
	db DBTX
}

// NewEmployeeRepository instantiates the repository.
func NewEmployeeRepository(db DBTX) EmployeeRepository {
	return &employeeRepository{db: db}
}

func (r *employeeRepository) Create(ctx context.Context, employee *domain.Employee) error {
	const query = `
        INSERT INTO employees (id, name, role, profit_percentage)
        VALUES ($1,$2,$3,$4)`
	_, err := r.db.Exec(ctx, query,
		employee.ID,
		employee.Name,
		employee.Role,
		employee.ProfitPercentage,
	)
	return err
}

func (r *employeeRepository) GetByID(ctx context.Context, id int64) (*domain.Employee, error) {
	const query = `
        SELECT id, name, role, profit_percentage
        FROM employees WHERE id=$1`

	var employee domain.Employee
	if err := r.db.QueryRow(ctx, query, id).Scan(
		&employee.ID,
		&employee.Name,
		&employee.Role,
		&employee.ProfitPercentage,
	); err != nil {
		return nil, err
	}
	return &employee, nil
}

// FirstByRole returns the first employee holding the role, by ascending id.
func (r *employeeRepository) FirstByRole(ctx context.Context, role domain.EmployeeRole) (*domain.Employee, error) {
	const query = `
        SELECT id, name, role, profit_percentage
        FROM employees WHERE role=$1 ORDER BY id ASC LIMIT 1`

	var employee domain.Employee
	if err := r.db.QueryRow(ctx, query, role).Scan(
		&employee.ID,
		&employee.Name,
		&employee.Role,
		&employee.ProfitPercentage,
	); err != nil {
		return nil, err
	}
	return &employee, nil
}

func (r *employeeRepository) List(ctx context.Context) ([]domain.Employee, error) {
	const query = `
        SELECT id, name, role, profit_percentage
        FROM employees ORDER BY id ASC`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Employee
	for rows.Next() {
		var employee domain.Employee
		if err := rows.Scan(
			&employee.ID,
			&employee.Name,
			&employee.Role,
			&employee.ProfitPercentage,
		); err != nil {
			return nil, err
		}
		result = append(result, employee)
	}
	return result, rows.Err()
}

func (r *employeeRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM employees`).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}
