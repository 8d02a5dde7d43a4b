package domain

// EmployeeRole enumerates workflow roles.
type EmployeeRole string

const (
	RoleAdministrator EmployeeRole = "administrator"
	RoleRegistrar     EmployeeRole = "registrar"
	RoleConfirmer     EmployeeRole = "confirmer"
)

// ValidRole reports whether the role is one of the declared values.
func ValidRole(role EmployeeRole) bool {
	switch role {
	case RoleAdministrator, RoleRegistrar, RoleConfirmer:
		return true
	}
	return false
}

// Employee models a branch worker. The identifier is caller-supplied and the
// record is immutable once created.
type Employee struct {
	ID               int64
	Name             string
	Role             EmployeeRole
	ProfitPercentage float64
}
