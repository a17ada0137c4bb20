package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jhoicas/ak-ledger/internal/application/billing"
	"github.com/jhoicas/ak-ledger/internal/application/ledger"
	"github.com/jhoicas/ak-ledger/internal/domain/repository"
)

var _ ledger.TxRunner = (*TxRunner)(nil)
var _ billing.BillingTxRunner = (*TxRunner)(nil)

// TxRunner ejecuta callbacks dentro de una transacción PostgreSQL.
type TxRunner struct {
	pool *pgxpool.Pool
}

// NewTxRunner construye el runner con el pool.
func NewTxRunner(pool *pgxpool.Pool) *TxRunner {
	return &TxRunner{pool: pool}
}

// RunLedger inicia una transacción con el repo del libro atado a ella.
func (r *TxRunner) RunLedger(ctx context.Context, fn func(ledgerRepo repository.LedgerRepository) error) error {
	return r.run(ctx, func(tx pgx.Tx) error {
		return fn(NewLedgerRepository(tx))
	})
}

// RunBilling inicia una transacción con los repos de clientes, catálogo, facturas y libro.
func (r *TxRunner) RunBilling(ctx context.Context, fn func(
	customerRepo repository.CustomerRepository,
	varietyRepo repository.VarietyRepository,
	invoiceRepo repository.InvoiceRepository,
	ledgerRepo repository.LedgerRepository,
) error) error {
	return r.run(ctx, func(tx pgx.Tx) error {
		return fn(
			NewCustomerRepository(tx),
			NewVarietyRepository(tx),
			NewInvoiceRepository(tx),
			NewLedgerRepository(tx),
		)
	})
}

// run hace Commit si fn termina sin error y Rollback en cualquier otro caso.
func (r *TxRunner) run(ctx context.Context, fn func(tx pgx.Tx) error) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := fn(tx); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}
