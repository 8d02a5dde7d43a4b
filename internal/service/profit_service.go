package service

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/transfer-service/internal/domain"
	"github.com/spec-kit/transfer-service/internal/events"
	"github.com/spec-kit/transfer-service/internal/repository"
)

// ProfitDistributor accrues each involved employee's share of the house cut
// into monthly totals when a transfer is delivered. It always runs inside
// the caller's transaction so a failed distribution rolls the delivery back.
type ProfitDistributor struct{}

// NewProfitDistributor constructs the distributor.
func NewProfitDistributor() *ProfitDistributor {
	return &ProfitDistributor{}
}

// Distribute computes and accrues profit shares for a delivered transfer.
// It is a silent no-op when the transfer does not exist or is not delivered.
// The accrual period is the time of distribution, not the transfer's
// request or confirmation time.
func (p *ProfitDistributor) Distribute(ctx context.Context, r repository.TxRepositories, transferID int64, now time.Time) (*events.ProfitDistributedPayload, error) {
	transfer, err := r.Transfers.GetByID(ctx, transferID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	if transfer.Status != domain.TransferStatusDelivered {
		return nil, nil
	}

	generalProfit := domain.GeneralProfit(transfer.Amount)
	month := int(now.Month())
	year := now.Year()

	type beneficiary struct {
		employeeID int64
		percentage float64
	}

	registrarPct, err := p.percentageOf(ctx, r.Employees, transfer.RegistrarID)
	if err != nil {
		return nil, err
	}
	beneficiaries := []beneficiary{
		{transfer.RegistrarID, registrarPct},
	}
	if transfer.ConfirmerID != nil {
		confirmerPct, err := p.percentageOf(ctx, r.Employees, *transfer.ConfirmerID)
		if err != nil {
			return nil, err
		}
		beneficiaries = append(beneficiaries, beneficiary{*transfer.ConfirmerID, confirmerPct})
	}
	if admin, err := r.Employees.FirstByRole(ctx, domain.RoleAdministrator); err == nil {
		beneficiaries = append(beneficiaries, beneficiary{admin.ID, admin.ProfitPercentage})
	} else if !errors.Is(err, pgx.ErrNoRows) {
		return nil, err
	}

	payload := &events.ProfitDistributedPayload{
		GeneralProfit: generalProfit,
		Month:         month,
		Year:          year,
	}

	// Each role line accrues independently; the same employee may receive
	// multiple contributions in one distribution.
	for _, b := range beneficiaries {
		share := generalProfit * (b.percentage / 100)
		if err := r.Accruals.Accrue(ctx, b.employeeID, month, year, generalProfit, share, share); err != nil {
			return nil, err
		}
		payload.Shares = append(payload.Shares, events.ProfitShare{
			EmployeeID: b.employeeID,
			Share:      share,
		})
	}
	return payload, nil
}

// percentageOf resolves an employee's share percentage. A missing employee
// row means a 0% share; any other lookup failure aborts the distribution so
// the surrounding transaction rolls back.
func (p *ProfitDistributor) percentageOf(ctx context.Context, employees repository.EmployeeRepository, id int64) (float64, error) {
	employee, err := employees.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, nil
		}
		return 0, err
	}
	return employee.ProfitPercentage, nil
}
