package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/transfer-service/internal/api/dto"
	"github.com/spec-kit/transfer-service/internal/domain"
	"github.com/spec-kit/transfer-service/internal/service"
	apperrors "github.com/spec-kit/transfer-service/pkg/util"
)

// EmployeesHandler manages employee registration and login endpoints.
type EmployeesHandler struct {
	service *service.EmployeeService
}

// NewEmployeesHandler constructs handler.
func NewEmployeesHandler(employeeService *service.EmployeeService) *EmployeesHandler {
	return &EmployeesHandler{service: employeeService}
}

// Login POST /auth/login.
func (h *EmployeesHandler) Login(c *fiber.Ctx) error {
	var req dto.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.EmployeeID <= 0 {
		return apperrors.NewValidationError("employee_id required", nil)
	}

	result, err := h.service.AuthenticateByID(c.Context(), req.EmployeeID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.LoginResponse{
		Token:     result.Token,
		ExpiresAt: result.ExpiresAt,
		Employee:  employeeResponse(result.Employee),
	}})
}

// Bootstrap POST /employees/bootstrap.
func (h *EmployeesHandler) Bootstrap(c *fiber.Ctx) error {
	var req dto.BootstrapAdminRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	employee, err := h.service.Bootstrap(c.Context(), service.EmployeeRegisterInput{
		ID:               req.ID,
		Name:             req.Name,
		ProfitPercentage: req.ProfitPercentage,
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": employeeResponse(employee)})
}

// Register POST /employees.
func (h *EmployeesHandler) Register(c *fiber.Ctx) error {
	var req dto.RegisterEmployeeRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	employee, err := h.service.Register(c.Context(), service.EmployeeRegisterInput{
		ID:               req.ID,
		Name:             req.Name,
		Role:             req.Role,
		ProfitPercentage: req.ProfitPercentage,
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": employeeResponse(employee)})
}

// List GET /employees.
func (h *EmployeesHandler) List(c *fiber.Ctx) error {
	employees, err := h.service.List(c.Context())
	if err != nil {
		return err
	}
	items := make([]dto.EmployeeResponse, 0, len(employees))
	for i := range employees {
		items = append(items, employeeResponse(&employees[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

func employeeResponse(employee *domain.Employee) dto.EmployeeResponse {
	return dto.EmployeeResponse{
		ID:               employee.ID,
		Name:             employee.Name,
		Role:             employee.Role,
		ProfitPercentage: employee.ProfitPercentage,
	}
}
