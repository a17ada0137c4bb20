// Package storage abre el almacenamiento configurado (PostgreSQL o memoria) y expone
// repositorios y TxRunner con las interfaces de la capa de aplicación.
package storage

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/jhoicas/ak-ledger/internal/application/billing"
	"github.com/jhoicas/ak-ledger/internal/application/ledger"
	"github.com/jhoicas/ak-ledger/internal/domain/repository"
	"github.com/jhoicas/ak-ledger/internal/infrastructure/memory"
	"github.com/jhoicas/ak-ledger/internal/infrastructure/postgres"
	"github.com/jhoicas/ak-ledger/pkg/config"
)

// TxRunner transacciones del libro y del flujo de facturación.
type TxRunner interface {
	ledger.TxRunner
	billing.BillingTxRunner
}

// Storage repositorios fuera de transacción más el runner.
type Storage struct {
	Driver    string
	Tx        TxRunner
	Customers repository.CustomerRepository
	Varieties repository.VarietyRepository
	Invoices  repository.InvoiceRepository
	Ledger    repository.LedgerRepository
	close     func()
}

// Close libera el pool si lo hay.
func (s *Storage) Close() {
	if s.close != nil {
		s.close()
	}
}

// Open conecta según cfg.Driver. Con PostgreSQL y AutoMigrate aplica las migraciones.
func Open(ctx context.Context, cfg config.DBConfig, log zerolog.Logger) (*Storage, error) {
	switch cfg.Driver {
	case config.DriverMemory:
		log.Warn().Msg("almacenamiento en memoria: los datos se pierden al reiniciar")
		return NewMemory(memory.New()), nil
	case config.DriverPostgres, "":
		pool, err := postgres.NewPool(ctx, cfg)
		if err != nil {
			return nil, fmt.Errorf("conexión a PostgreSQL: %w", err)
		}
		if cfg.AutoMigrate {
			if err := postgres.Migrate(ctx, pool, log); err != nil {
				pool.Close()
				return nil, fmt.Errorf("migraciones: %w", err)
			}
		}
		return &Storage{
			Driver:    config.DriverPostgres,
			Tx:        postgres.NewTxRunner(pool),
			Customers: postgres.NewCustomerRepository(pool),
			Varieties: postgres.NewVarietyRepository(pool),
			Invoices:  postgres.NewInvoiceRepository(pool),
			Ledger:    postgres.NewLedgerRepository(pool),
			close:     pool.Close,
		}, nil
	default:
		return nil, fmt.Errorf("driver de almacenamiento desconocido: %q", cfg.Driver)
	}
}

// NewMemory envuelve un store en memoria (tests y modo demo).
func NewMemory(store *memory.Store) *Storage {
	return &Storage{
		Driver:    config.DriverMemory,
		Tx:        store,
		Customers: store.Customers(),
		Varieties: store.Varieties(),
		Invoices:  store.Invoices(),
		Ledger:    store.Ledger(),
	}
}
