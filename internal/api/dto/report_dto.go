package dto

import "github.com/spec-kit/transfer-service/internal/domain"

// InventoryReportResponse is the monthly capital inventory.
type InventoryReportResponse struct {
	Month         int     `json:"month"`
	Year          int     `json:"year"`
	TotalCapital  float64 `json:"total_capital"`
	GeneralProfit float64 `json:"general_profit"`
}

// EmployeeProfitResponse is one per-employee breakdown line.
type EmployeeProfitResponse struct {
	EmployeeID  int64               `json:"employee_id"`
	Name        string              `json:"name"`
	Role        domain.EmployeeRole `json:"role"`
	GeneralBase float64             `json:"general_base"`
	Personal    float64             `json:"personal"`
	Total       float64             `json:"total"`
}

// ProfitReportResponse is the monthly profit report.
type ProfitReportResponse struct {
	Month            int                      `json:"month"`
	Year             int                      `json:"year"`
	TotalGeneralBase float64                  `json:"total_general_base"`
	TotalPersonal    float64                  `json:"total_personal"`
	TotalOverall     float64                  `json:"total"`
	Employees        []EmployeeProfitResponse `json:"employees"`
}
