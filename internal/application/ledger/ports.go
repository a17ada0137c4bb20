package ledger

import (
	"context"

	"github.com/jhoicas/ak-ledger/internal/domain/repository"
)

// TxRunner ejecuta fn dentro de una transacción con el repositorio del libro atado a ella.
// Commit si fn devuelve nil, Rollback en cualquier otro caso.
type TxRunner interface {
	RunLedger(ctx context.Context, fn func(ledgerRepo repository.LedgerRepository) error) error
}
