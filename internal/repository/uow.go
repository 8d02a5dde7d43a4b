package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
)

// TxRepositories bundles repositories bound to one transaction.
type TxRepositories struct {
	Employees   EmployeeRepository
	Transfers   TransferRepository
	EditHistory EditHistoryRepository
	Accruals    AccrualRepository
}

// UnitOfWork scopes multi-step mutations to a single transaction with
// commit-or-rollback on every exit path.
type UnitOfWork interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context, r TxRepositories) error) error
}

type pgxUnitOfWork struct {
	pool *pgxpool.Pool
}

// NewUnitOfWork builds a pgx-backed unit of work.
func NewUnitOfWork(pool *pgxpool.Pool) UnitOfWork {
	return &pgxUnitOfWork{pool: pool}
}

func (u *pgxUnitOfWork) WithinTx(ctx context.Context, fn func(ctx context.Context, r TxRepositories) error) error {
	tx, err := u.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	repos := TxRepositories{
		Employees:   NewEmployeeRepository(tx),
		Transfers:   NewTransferRepository(tx),
		EditHistory: NewEditHistoryRepository(tx),
		Accruals:    NewAccrualRepository(tx),
	}
	if err := fn(ctx, repos); err != nil {
		return err
	}
	return tx.Commit(ctx)
}
