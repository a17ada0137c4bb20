package repository

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/ak-ledger/internal/domain/entity"
)

// LedgerRepository define el puerto de persistencia del libro de clientes.
// Todos los listados se ordenan por (created_at, seq) ascendente.
type LedgerRepository interface {
	// LockCustomer serializa escritores del libro del cliente hasta el fin de la transacción.
	LockCustomer(ctx context.Context, customerID string) error
	Create(ctx context.Context, entry *entity.LedgerEntry) error
	GetByID(ctx context.Context, id string) (*entity.LedgerEntry, error)
	// Last devuelve el asiento más reciente del cliente o nil si no tiene.
	Last(ctx context.Context, customerID string) (*entity.LedgerEntry, error)
	ListByCustomer(ctx context.Context, customerID string) ([]*entity.LedgerEntry, error)
	// Update reescribe los campos mutables: tipo, monto y observaciones. Nunca created_at.
	Update(ctx context.Context, entry *entity.LedgerEntry) error
	UpdateBalance(ctx context.Context, id string, balance decimal.Decimal) error
	Delete(ctx context.Context, id string) (bool, error)
	// DeleteByInvoice elimina los asientos que referencian la factura y devuelve cuántos eran.
	DeleteByInvoice(ctx context.Context, invoiceID string) (int64, error)
}
