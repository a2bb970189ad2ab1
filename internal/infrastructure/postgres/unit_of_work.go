package postgres

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/uhicoop/loan-service/internal/domain/port"
	pgdb "github.com/uhicoop/loan-service/pkg/postgres"
)

// UnitOfWork implements port.UnitOfWork on a pgx transaction. The repository
// set handed to fn is bound to that transaction, so every read and write
// inside fn commits or rolls back as one atomic unit.
type UnitOfWork struct {
	pool *pgxpool.Pool
}

// NewUnitOfWork creates a transaction runner over the pool.
func NewUnitOfWork(pool *pgxpool.Pool) *UnitOfWork {
	return &UnitOfWork{pool: pool}
}

// WithinTx runs fn inside one database transaction.
func (u *UnitOfWork) WithinTx(ctx context.Context, fn func(ctx context.Context, repos port.Repositories) error) error {
	return pgdb.WithTransaction(ctx, u.pool, func(tx pgx.Tx) error {
		return fn(ctx, NewRepositories(tx))
	})
}

// NewRepositories binds the full repository set to one Querier, either the
// shared pool or a single transaction.
func NewRepositories(db pgdb.Querier) port.Repositories {
	return port.Repositories{
		Loans:    NewLoanRepo(db),
		Invoices: NewInvoiceRepo(db),
		Payments: NewPaymentRepo(db),
	}
}
