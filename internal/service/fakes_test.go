package service

import (
	"context"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/transfer-service/internal/domain"
	"github.com/spec-kit/transfer-service/internal/events"
	"github.com/spec-kit/transfer-service/internal/repository"
)

// In-memory stand-ins for the pgx repositories, shared by the service tests.

type fakeEmployeeRepo struct {
	employees map[int64]*domain.Employee
	getErr    error
}

func newFakeEmployeeRepo(employees ...domain.Employee) *fakeEmployeeRepo {
	repo := &fakeEmployeeRepo{employees: make(map[int64]*domain.Employee)}
	for i := range employees {
		employee := employees[i]
		repo.employees[employee.ID] = &employee
	}
	return repo
}

func (r *fakeEmployeeRepo) Create(_ context.Context, employee *domain.Employee) error {
	clone := *employee
	r.employees[employee.ID] = &clone
	return nil
}

func (r *fakeEmployeeRepo) GetByID(_ context.Context, id int64) (*domain.Employee, error) {
	if r.getErr != nil {
		return nil, r.getErr
	}
	employee, ok := r.employees[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	clone := *employee
	return &clone, nil
}

func (r *fakeEmployeeRepo) FirstByRole(_ context.Context, role domain.EmployeeRole) (*domain.Employee, error) {
	ids := make([]int64, 0, len(r.employees))
	for id := range r.employees {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	for _, id := range ids {
		if r.employees[id].Role == role {
			clone := *r.employees[id]
			return &clone, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (r *fakeEmployeeRepo) List(_ context.Context) ([]domain.Employee, error) {
	ids := make([]int64, 0, len(r.employees))
	for id := range r.employees {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	result := make([]domain.Employee, 0, len(ids))
	for _, id := range ids {
		result = append(result, *r.employees[id])
	}
	return result, nil
}

func (r *fakeEmployeeRepo) Count(_ context.Context) (int64, error) {
	return int64(len(r.employees)), nil
}

type fakeTransferRepo struct {
	employees *fakeEmployeeRepo
	transfers map[int64]*domain.Transfer
	nextID    int64
}

func newFakeTransferRepo(employees *fakeEmployeeRepo) *fakeTransferRepo {
	return &fakeTransferRepo{employees: employees, transfers: make(map[int64]*domain.Transfer)}
}

func (r *fakeTransferRepo) Create(_ context.Context, transfer *domain.Transfer) error {
	r.nextID++
	transfer.ID = r.nextID
	clone := *transfer
	r.transfers[transfer.ID] = &clone
	return nil
}

func (r *fakeTransferRepo) GetByID(_ context.Context, id int64) (*domain.Transfer, error) {
	transfer, ok := r.transfers[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	clone := *transfer
	return &clone, nil
}

func (r *fakeTransferRepo) MarkDelivered(_ context.Context, id, confirmerID int64, confirmedAt time.Time) (bool, error) {
	transfer, ok := r.transfers[id]
	if !ok || transfer.Status != domain.TransferStatusRequested {
		return false, nil
	}
	transfer.Status = domain.TransferStatusDelivered
	transfer.ConfirmedAt = &confirmedAt
	transfer.ConfirmerID = &confirmerID
	return true, nil
}

func (r *fakeTransferRepo) FieldValue(_ context.Context, id int64, field domain.EditableField) (string, error) {
	transfer, ok := r.transfers[id]
	if !ok {
		return "", pgx.ErrNoRows
	}
	switch field {
	case domain.FieldSenderName:
		return transfer.SenderName, nil
	case domain.FieldRecipientName:
		return transfer.RecipientName, nil
	case domain.FieldRecipientPhone:
		return transfer.RecipientPhone, nil
	case domain.FieldAmount:
		return strconv.FormatFloat(transfer.Amount, 'f', -1, 64), nil
	}
	return "", pgx.ErrNoRows
}

func (r *fakeTransferRepo) UpdateField(_ context.Context, id int64, field domain.EditableField, value any) (bool, error) {
	transfer, ok := r.transfers[id]
	if !ok {
		return false, nil
	}
	switch field {
	case domain.FieldSenderName:
		transfer.SenderName = value.(string)
	case domain.FieldRecipientName:
		transfer.RecipientName = value.(string)
	case domain.FieldRecipientPhone:
		transfer.RecipientPhone = value.(string)
	case domain.FieldAmount:
		transfer.Amount = value.(float64)
	default:
		return false, nil
	}
	return true, nil
}

func (r *fakeTransferRepo) ListAll(ctx context.Context) ([]repository.TransferListing, error) {
	return r.listings(ctx, func(*domain.Transfer) bool { return true })
}

func (r *fakeTransferRepo) ListByRegistrar(ctx context.Context, registrarID int64) ([]repository.TransferListing, error) {
	return r.listings(ctx, func(t *domain.Transfer) bool { return t.RegistrarID == registrarID })
}

func (r *fakeTransferRepo) ListRequested(ctx context.Context) ([]repository.TransferListing, error) {
	return r.listings(ctx, func(t *domain.Transfer) bool { return t.Status == domain.TransferStatusRequested })
}

func (r *fakeTransferRepo) listings(ctx context.Context, keep func(*domain.Transfer) bool) ([]repository.TransferListing, error) {
	var result []repository.TransferListing
	for _, transfer := range r.transfers {
		if !keep(transfer) {
			continue
		}
		listing := repository.TransferListing{Transfer: *transfer}
		if registrar, err := r.employees.GetByID(ctx, transfer.RegistrarID); err == nil {
			listing.RegistrarName = registrar.Name
		}
		if transfer.ConfirmerID != nil {
			if confirmer, err := r.employees.GetByID(ctx, *transfer.ConfirmerID); err == nil {
				name := confirmer.Name
				listing.ConfirmerName = &name
			}
		}
		result = append(result, listing)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].RequestedAt.After(result[j].RequestedAt) })
	return result, nil
}

func (r *fakeTransferRepo) SumDeliveredByRequestPeriod(_ context.Context, from, to time.Time) (float64, error) {
	var total float64
	for _, transfer := range r.transfers {
		if transfer.Status != domain.TransferStatusDelivered {
			continue
		}
		if transfer.RequestedAt.Before(from) || transfer.RequestedAt.After(to) {
			continue
		}
		total += transfer.Amount
	}
	return total, nil
}

type fakeEditHistoryRepo struct {
	records []domain.EditRecord
	nextID  int64
}

func newFakeEditHistoryRepo() *fakeEditHistoryRepo {
	return &fakeEditHistoryRepo{}
}

func (r *fakeEditHistoryRepo) Append(_ context.Context, record *domain.EditRecord) error {
	r.nextID++
	record.ID = r.nextID
	r.records = append(r.records, *record)
	return nil
}

func (r *fakeEditHistoryRepo) ListByTransfer(_ context.Context, transferID int64) ([]repository.EditEntry, error) {
	var result []repository.EditEntry
	for _, record := range r.records {
		if record.TransferID == transferID {
			result = append(result, repository.EditEntry{EditRecord: record})
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].EditedAt.After(result[j].EditedAt) })
	return result, nil
}

type accrualKey struct {
	employeeID int64
	month      int
	year       int
}

type fakeAccrualRepo struct {
	employees *fakeEmployeeRepo
	rows      map[accrualKey]*domain.MonthlyAccrual
	accrueErr error
}

func newFakeAccrualRepo(employees *fakeEmployeeRepo) *fakeAccrualRepo {
	return &fakeAccrualRepo{employees: employees, rows: make(map[accrualKey]*domain.MonthlyAccrual)}
}

func (r *fakeAccrualRepo) Accrue(_ context.Context, employeeID int64, month, year int, generalBase, personal, total float64) error {
	if r.accrueErr != nil {
		return r.accrueErr
	}
	key := accrualKey{employeeID, month, year}
	row, ok := r.rows[key]
	if !ok {
		row = &domain.MonthlyAccrual{EmployeeID: employeeID, Month: month, Year: year}
		r.rows[key] = row
	}
	row.GeneralBase += generalBase
	row.Personal += personal
	row.Total += total
	return nil
}

func (r *fakeAccrualRepo) Totals(_ context.Context, month, year int) (repository.PeriodTotals, error) {
	var totals repository.PeriodTotals
	for key, row := range r.rows {
		if key.month != month || key.year != year {
			continue
		}
		totals.GeneralBase += row.GeneralBase
		totals.Personal += row.Personal
		totals.Total += row.Total
	}
	return totals, nil
}

func (r *fakeAccrualRepo) PerEmployee(ctx context.Context, month, year int) ([]repository.EmployeeProfit, error) {
	var result []repository.EmployeeProfit
	for key, row := range r.rows {
		if key.month != month || key.year != year {
			continue
		}
		profit := repository.EmployeeProfit{
			EmployeeID:  row.EmployeeID,
			GeneralBase: row.GeneralBase,
			Personal:    row.Personal,
			Total:       row.Total,
		}
		if employee, err := r.employees.GetByID(ctx, row.EmployeeID); err == nil {
			profit.Name = employee.Name
			profit.Role = employee.Role
		}
		result = append(result, profit)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Total > result[j].Total })
	return result, nil
}

// fakeUnitOfWork runs the callback against shared fakes: commit/rollback
// mechanics are covered by the real pgx implementation.
type fakeUnitOfWork struct {
	repos repository.TxRepositories
}

func (u *fakeUnitOfWork) WithinTx(ctx context.Context, fn func(ctx context.Context, r repository.TxRepositories) error) error {
	return fn(ctx, u.repos)
}

type capturedEvents struct {
	mu     sync.Mutex
	events []events.Event
}

func (c *capturedEvents) Publish(_ context.Context, event events.Event) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.events = append(c.events, event)
	return nil
}

func (c *capturedEvents) Subscribe(events.EventType, events.EventHandler) {}

func (c *capturedEvents) byType(eventType events.EventType) []events.Event {
	c.mu.Lock()
	defer c.mu.Unlock()
	var result []events.Event
	for _, event := range c.events {
		if event.Type == eventType {
			result = append(result, event)
		}
	}
	return result
}

type ledgerFixture struct {
	employees   *fakeEmployeeRepo
	transfers   *fakeTransferRepo
	editHistory *fakeEditHistoryRepo
	accruals    *fakeAccrualRepo
	uow         *fakeUnitOfWork
	dispatcher  *capturedEvents
}

func newLedgerFixture(employees ...domain.Employee) *ledgerFixture {
	employeeRepo := newFakeEmployeeRepo(employees...)
	transferRepo := newFakeTransferRepo(employeeRepo)
	historyRepo := newFakeEditHistoryRepo()
	accrualRepo := newFakeAccrualRepo(employeeRepo)
	return &ledgerFixture{
		employees:   employeeRepo,
		transfers:   transferRepo,
		editHistory: historyRepo,
		accruals:    accrualRepo,
		uow: &fakeUnitOfWork{repos: repository.TxRepositories{
			Employees:   employeeRepo,
			Transfers:   transferRepo,
			EditHistory: historyRepo,
			Accruals:    accrualRepo,
		}},
		dispatcher: &capturedEvents{},
	}
}

func (f *ledgerFixture) transferService(now func() time.Time) *TransferService {
	return NewTransferService(TransferDependencies{
		UnitOfWork:      f.uow,
		TransferRepo:    f.transfers,
		EditHistoryRepo: f.editHistory,
		Distributor:     NewProfitDistributor(),
		Dispatcher:      f.dispatcher,
		Now:             now,
	})
}
