package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/transfer-service/internal/domain"
	"github.com/spec-kit/transfer-service/internal/events"
	"github.com/spec-kit/transfer-service/internal/persistence"
	"github.com/spec-kit/transfer-service/internal/repository"
	apperrors "github.com/spec-kit/transfer-service/pkg/util"
)

// InventoryReport sums delivered capital for a request-month period.
type InventoryReport struct {
	Month         int     `json:"month"`
	Year          int     `json:"year"`
	TotalCapital  float64 `json:"total_capital"`
	GeneralProfit float64 `json:"general_profit"`
}

// ProfitReport aggregates monthly accrual rows for a period.
type ProfitReport struct {
	Month     int                         `json:"month"`
	Year      int                         `json:"year"`
	Totals    repository.PeriodTotals     `json:"totals"`
	Employees []repository.EmployeeProfit `json:"employees"`
}

// ReportService provides read-only projections over the ledger. Results are
// cached in Redis for a short TTL and recomputed on a miss; an unreachable
// cache degrades to direct queries.
type ReportService struct {
	transfers repository.TransferRepository
	accruals  repository.AccrualRepository
	cache     *persistence.Redis
	cacheTTL  time.Duration
	logger    *zap.Logger
}

// ReportDependencies bundles collaborators for the report service.
type ReportDependencies struct {
	TransferRepo repository.TransferRepository
	AccrualRepo  repository.AccrualRepository
	Cache        *persistence.Redis
	CacheTTL     time.Duration
	Logger       *zap.Logger
}

// NewReportService constructs the service.
func NewReportService(deps ReportDependencies) *ReportService {
	return &ReportService{
		transfers: deps.TransferRepo,
		accruals:  deps.AccrualRepo,
		cache:     deps.Cache,
		cacheTTL:  deps.CacheTTL,
		logger:    deps.Logger,
	}
}

// MonthlyInventory totals the principal of delivered transfers whose
// request timestamp falls within the calendar month and reports the fixed
// house cut of that sum.
func (s *ReportService) MonthlyInventory(ctx context.Context, month, year int) (*InventoryReport, error) {
	if err := validatePeriod(month, year); err != nil {
		return nil, err
	}

	key := inventoryCacheKey(month, year)
	var cached InventoryReport
	if s.cacheGet(ctx, key, &cached) {
		return &cached, nil
	}

	from := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
	to := from.AddDate(0, 1, 0).Add(-time.Nanosecond)

	total, err := s.transfers.SumDeliveredByRequestPeriod(ctx, from, to)
	if err != nil {
		return nil, apperrors.MapError(err)
	}

	report := &InventoryReport{
		Month:         month,
		Year:          year,
		TotalCapital:  total,
		GeneralProfit: domain.GeneralProfit(total),
	}
	s.cacheSet(ctx, key, report)
	return report, nil
}

// MonthlyProfit aggregates accrual rows for the period, in total and per
// employee ordered by total descending. An empty period yields zero totals.
func (s *ReportService) MonthlyProfit(ctx context.Context, month, year int) (*ProfitReport, error) {
	if err := validatePeriod(month, year); err != nil {
		return nil, err
	}

	key := profitCacheKey(month, year)
	var cached ProfitReport
	if s.cacheGet(ctx, key, &cached) {
		return &cached, nil
	}

	totals, err := s.accruals.Totals(ctx, month, year)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	perEmployee, err := s.accruals.PerEmployee(ctx, month, year)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	if perEmployee == nil {
		perEmployee = []repository.EmployeeProfit{}
	}

	report := &ProfitReport{
		Month:     month,
		Year:      year,
		Totals:    totals,
		Employees: perEmployee,
	}
	s.cacheSet(ctx, key, report)
	return report, nil
}

// RegisterInvalidation drops cached reports for the affected periods
// whenever a transfer is delivered.
func (s *ReportService) RegisterInvalidation(dispatcher events.Dispatcher) {
	if dispatcher == nil {
		return
	}
	dispatcher.Subscribe(events.EventTransferDelivered, func(ctx context.Context, event events.Event) error {
		payload, ok := event.Payload.(events.TransferDeliveredPayload)
		if !ok {
			return nil
		}
		// Inventory is keyed by request month, accruals by delivery month.
		s.cacheDel(ctx,
			inventoryCacheKey(int(payload.RequestedAt.Month()), payload.RequestedAt.Year()),
			profitCacheKey(int(payload.DeliveredAt.Month()), payload.DeliveredAt.Year()),
		)
		return nil
	})
}

func (s *ReportService) cacheGet(ctx context.Context, key string, out any) bool {
	if s.cache == nil || s.cache.Client == nil || s.cacheTTL <= 0 {
		return false
	}
	raw, err := s.cache.Client.Get(ctx, key).Bytes()
	if err != nil {
		return false
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return false
	}
	return true
}

func (s *ReportService) cacheSet(ctx context.Context, key string, value any) {
	if s.cache == nil || s.cache.Client == nil || s.cacheTTL <= 0 {
		return
	}
	raw, err := json.Marshal(value)
	if err != nil {
		return
	}
	if err := s.cache.Client.Set(ctx, key, raw, s.cacheTTL).Err(); err != nil && s.logger != nil {
		s.logger.Debug("report cache set failed", zap.String("key", key), zap.Error(err))
	}
}

func (s *ReportService) cacheDel(ctx context.Context, keys ...string) {
	if s.cache == nil || s.cache.Client == nil {
		return
	}
	if err := s.cache.Client.Del(ctx, keys...).Err(); err != nil && s.logger != nil {
		s.logger.Debug("report cache invalidation failed", zap.Error(err))
	}
}

func inventoryCacheKey(month, year int) string {
	return fmt.Sprintf("reports:inventory:%04d-%02d", year, month)
}

func profitCacheKey(month, year int) string {
	return fmt.Sprintf("reports:profit:%04d-%02d", year, month)
}

func validatePeriod(month, year int) error {
	if month < 1 || month > 12 {
		return apperrors.NewValidationError("month must be between 1 and 12", map[string]any{"month": month})
	}
	if year < 1970 || year > 9999 {
		return apperrors.NewValidationError("year out of range", map[string]any{"year": year})
	}
	return nil
}
