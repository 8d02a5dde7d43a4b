package handlers

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/transfer-service/internal/api/dto"
	"github.com/spec-kit/transfer-service/internal/service"
	apperrors "github.com/spec-kit/transfer-service/pkg/util"
)

// ReportsHandler serves the monthly read-only projections.
type ReportsHandler struct {
	service *service.ReportService
}

// NewReportsHandler constructs handler.
func NewReportsHandler(reportService *service.ReportService) *ReportsHandler {
	return &ReportsHandler{service: reportService}
}

// Inventory GET /reports/inventory.
func (h *ReportsHandler) Inventory(c *fiber.Ctx) error {
	month, year, err := parsePeriod(c)
	if err != nil {
		return err
	}
	report, err := h.service.MonthlyInventory(c.Context(), month, year)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.InventoryReportResponse{
		Month:         report.Month,
		Year:          report.Year,
		TotalCapital:  report.TotalCapital,
		GeneralProfit: report.GeneralProfit,
	}})
}

// Profit GET /reports/profit.
func (h *ReportsHandler) Profit(c *fiber.Ctx) error {
	month, year, err := parsePeriod(c)
	if err != nil {
		return err
	}
	report, err := h.service.MonthlyProfit(c.Context(), month, year)
	if err != nil {
		return err
	}

	employees := make([]dto.EmployeeProfitResponse, 0, len(report.Employees))
	for _, entry := range report.Employees {
		employees = append(employees, dto.EmployeeProfitResponse{
			EmployeeID:  entry.EmployeeID,
			Name:        entry.Name,
			Role:        entry.Role,
			GeneralBase: entry.GeneralBase,
			Personal:    entry.Personal,
			Total:       entry.Total,
		})
	}
	return c.JSON(fiber.Map{"data": dto.ProfitReportResponse{
		Month:            report.Month,
		Year:             report.Year,
		TotalGeneralBase: report.Totals.GeneralBase,
		TotalPersonal:    report.Totals.Personal,
		TotalOverall:     report.Totals.Total,
		Employees:        employees,
	}})
}

// parsePeriod reads month/year query params, defaulting to the current
// period. Unparseable values are rejected; range validation happens in the
// service.
func parsePeriod(c *fiber.Ctx) (int, int, error) {
	now := time.Now()
	month := int(now.Month())
	year := now.Year()
	if raw := c.Query("month"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			return 0, 0, apperrors.NewValidationError("month must be a number", map[string]any{"month": raw})
		}
		month = parsed
	}
	if raw := c.Query("year"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			return 0, 0, apperrors.NewValidationError("year must be a number", map[string]any{"year": raw})
		}
		year = parsed
	}
	return month, year, nil
}
