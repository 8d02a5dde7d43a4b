package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/spec-kit/transfer-service/internal/auth"
	"github.com/spec-kit/transfer-service/internal/domain"
	"github.com/spec-kit/transfer-service/internal/repository"
	apperrors "github.com/spec-kit/transfer-service/pkg/util"
)

const pgUniqueViolation = "23505"

// EmployeeService handles registration and the authenticate-by-id lookup.
type EmployeeService struct {
	employees repository.EmployeeRepository
	tokens    *auth.TokenManager
}

// EmployeeDependencies bundles collaborators for the employee service.
type EmployeeDependencies struct {
	EmployeeRepo repository.EmployeeRepository
	TokenManager *auth.TokenManager
}

// EmployeeRegisterInput describes registration payload.
type EmployeeRegisterInput struct {
	ID               int64
	Name             string
	Role             domain.EmployeeRole
	ProfitPercentage float64
}

// AuthResult is the outcome of a successful authenticate-by-id.
type AuthResult struct {
	Employee  *domain.Employee
	Token     string
	ExpiresAt time.Time
}

// NewEmployeeService constructs the service.
func NewEmployeeService(deps EmployeeDependencies) *EmployeeService {
	return &EmployeeService{
		employees: deps.EmployeeRepo,
		tokens:    deps.TokenManager,
	}
}

// Register creates an employee. Records are immutable once created.
func (s *EmployeeService) Register(ctx context.Context, input EmployeeRegisterInput) (*domain.Employee, error) {
	if err := validateRegisterInput(input); err != nil {
		return nil, err
	}

	if _, err := s.employees.GetByID(ctx, input.ID); err == nil {
		return nil, apperrors.NewConflict("employee id already exists", map[string]any{"employee_id": input.ID})
	} else if !errors.Is(err, pgx.ErrNoRows) {
		return nil, apperrors.MapError(err)
	}

	employee := &domain.Employee{
		ID:               input.ID,
		Name:             strings.TrimSpace(input.Name),
		Role:             input.Role,
		ProfitPercentage: input.ProfitPercentage,
	}
	if err := s.employees.Create(ctx, employee); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
			return nil, apperrors.NewConflict("employee id already exists", map[string]any{"employee_id": input.ID})
		}
		return nil, apperrors.MapError(err)
	}
	return employee, nil
}

// Bootstrap creates the first administrator. Allowed only while no
// employees exist.
func (s *EmployeeService) Bootstrap(ctx context.Context, input EmployeeRegisterInput) (*domain.Employee, error) {
	count, err := s.employees.Count(ctx)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	if count > 0 {
		return nil, apperrors.NewConflict("employees already registered", nil)
	}
	input.Role = domain.RoleAdministrator
	return s.Register(ctx, input)
}

// AuthenticateByID looks up an employee by id and issues a session token.
// No credential is checked; an unknown id is the only failure.
func (s *EmployeeService) AuthenticateByID(ctx context.Context, id int64) (*AuthResult, error) {
	employee, err := s.employees.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("employee", map[string]any{"employee_id": id})
		}
		return nil, apperrors.MapError(err)
	}

	token, expiresAt, err := s.tokens.GenerateToken(employee)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return &AuthResult{Employee: employee, Token: token, ExpiresAt: expiresAt}, nil
}

// List returns all employees ordered by id.
func (s *EmployeeService) List(ctx context.Context) ([]domain.Employee, error) {
	employees, err := s.employees.List(ctx)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return employees, nil
}

func validateRegisterInput(input EmployeeRegisterInput) error {
	if input.ID <= 0 {
		return apperrors.NewValidationError("employee id must be positive", nil)
	}
	if strings.TrimSpace(input.Name) == "" {
		return apperrors.NewValidationError("name required", nil)
	}
	if !domain.ValidRole(input.Role) {
		return apperrors.NewValidationError("invalid role", map[string]any{"role": input.Role})
	}
	if input.ProfitPercentage < 0 || input.ProfitPercentage > 100 {
		return apperrors.NewValidationError("profit percentage must be between 0 and 100", nil)
	}
	return nil
}
