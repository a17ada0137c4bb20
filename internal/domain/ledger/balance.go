package ledger

import (
	"github.com/shopspring/decimal"

	"github.com/jhoicas/ak-ledger/internal/domain"
	"github.com/jhoicas/ak-ledger/internal/domain/entity"
)

// ValidEntryType indica si el tipo de asiento es INVOICE o PAYMENT.
func ValidEntryType(entryType string) bool {
	return entryType == entity.LedgerEntryInvoice || entryType == entity.LedgerEntryPayment
}

// SignedAmount +amount para INVOICE, -amount para PAYMENT.
func SignedAmount(entryType string, amount decimal.Decimal) decimal.Decimal {
	if entryType == entity.LedgerEntryPayment {
		return amount.Neg()
	}
	return amount
}

// NextBalance saldo después de aplicar un movimiento sobre el saldo previo.
func NextBalance(prior decimal.Decimal, entryType string, amount decimal.Decimal) decimal.Decimal {
	return prior.Add(SignedAmount(entryType, amount))
}

// Recompute recorre los asientos (ya ordenados ascendente) acumulando el saldo y
// reescribe Balance en cada uno. Devuelve los asientos cuyo saldo cambió.
func Recompute(entries []*entity.LedgerEntry) []*entity.LedgerEntry {
	var changed []*entity.LedgerEntry
	balance := decimal.Zero
	for _, e := range entries {
		balance = NextBalance(balance, e.EntryType, e.Amount)
		if !e.Balance.Equal(balance) {
			e.Balance = balance
			changed = append(changed, e)
		}
	}
	return changed
}

// Verify comprueba balance[i] = balance[i-1] + signed(entry[i]) con balance[-1] = 0.
// Devuelve *domain.ConsistencyError con el primer asiento roto.
func Verify(customerID string, entries []*entity.LedgerEntry) error {
	balance := decimal.Zero
	for _, e := range entries {
		balance = NextBalance(balance, e.EntryType, e.Amount)
		if !e.Balance.Equal(balance) {
			return &domain.ConsistencyError{
				CustomerID: customerID,
				EntryID:    e.ID,
				Expected:   balance,
				Stored:     e.Balance,
			}
		}
	}
	return nil
}

// CurrentBalance saldo del último asiento, o cero si no hay asientos.
func CurrentBalance(entries []*entity.LedgerEntry) decimal.Decimal {
	if len(entries) == 0 {
		return decimal.Zero
	}
	return entries[len(entries)-1].Balance
}
