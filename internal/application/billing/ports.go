package billing

import (
	"context"

	"github.com/jhoicas/ak-ledger/internal/application/ledger"
	"github.com/jhoicas/ak-ledger/internal/domain/entity"
	"github.com/jhoicas/ak-ledger/internal/domain/repository"
)

// BillingTxRunner ejecuta una función dentro de una transacción que incluye los repos de
// clientes, catálogo, facturas y libro. Upsert de cliente + factura + asiento se confirman juntos.
type BillingTxRunner interface {
	RunBilling(ctx context.Context, fn func(
		customerRepo repository.CustomerRepository,
		varietyRepo repository.VarietyRepository,
		invoiceRepo repository.InvoiceRepository,
		ledgerRepo repository.LedgerRepository,
	) error) error
}

// LedgerAppender integración facturación-libro.
// AppendInTx registra el asiento con el repositorio del caller (misma transacción);
// si retorna error el caller hace rollback.
type LedgerAppender interface {
	AppendInTx(ctx context.Context, ledgerRepo repository.LedgerRepository, in ledger.AppendInput) (*entity.LedgerEntry, error)
}
