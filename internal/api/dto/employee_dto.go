package dto

import (
	"time"

	"github.com/spec-kit/transfer-service/internal/domain"
)

// RegisterEmployeeRequest payload.
type RegisterEmployeeRequest struct {
	ID               int64               `json:"id"`
	Name             string              `json:"name"`
	Role             domain.EmployeeRole `json:"role"`
	ProfitPercentage float64             `json:"profit_percentage"`
}

// BootstrapAdminRequest payload for the first administrator.
type BootstrapAdminRequest struct {
	ID               int64   `json:"id"`
	Name             string  `json:"name"`
	ProfitPercentage float64 `json:"profit_percentage"`
}

// EmployeeResponse representation.
type EmployeeResponse struct {
	ID               int64               `json:"id"`
	Name             string              `json:"name"`
	Role             domain.EmployeeRole `json:"role"`
	ProfitPercentage float64             `json:"profit_percentage"`
}

// LoginRequest payload for authenticate-by-id.
type LoginRequest struct {
	EmployeeID int64 `json:"employee_id"`
}

// LoginResponse carries the session token.
type LoginResponse struct {
	Token     string           `json:"token"`
	ExpiresAt time.Time        `json:"expires_at"`
	Employee  EmployeeResponse `json:"employee"`
}
