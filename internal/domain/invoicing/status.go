package invoicing

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/ak-ledger/internal/domain/entity"
)

// CreditTerms condiciones de crédito solicitadas al facturar.
type CreditTerms struct {
	Enabled bool
	DueAt   *time.Time
}

// Resolution estado derivado de una factura.
type Resolution struct {
	Status string
	DueAt  *time.Time
}

// ResolveStatus deriva el estado de la factura (servicio de dominio, sin efectos).
// Precedencia: pago total > crédito > pago parcial > abierta.
// Precondición: total y paidNow no negativos; se validan antes de llamar.
func ResolveStatus(total, paidNow decimal.Decimal, credit CreditTerms) Resolution {
	switch {
	case paidNow.GreaterThanOrEqual(total):
		// El pago completo anula las condiciones de crédito.
		return Resolution{Status: entity.InvoiceStatusPaid}
	case credit.Enabled:
		return Resolution{Status: entity.InvoiceStatusCredit, DueAt: credit.DueAt}
	case paidNow.GreaterThan(decimal.Zero):
		return Resolution{Status: entity.InvoiceStatusPartial}
	default:
		return Resolution{Status: entity.InvoiceStatusOpen}
	}
}

// ResolvePaymentStatus regla reducida del endpoint de abonos: PAID si el acumulado
// cubre el total, si no CREDIT. Nunca devuelve PARTIAL ni reevalúa la fecha de vencimiento.
func ResolvePaymentStatus(total, paidAmount decimal.Decimal) string {
	if paidAmount.GreaterThanOrEqual(total) {
		return entity.InvoiceStatusPaid
	}
	return entity.InvoiceStatusCredit
}

// Apply asigna la resolución a la factura. Único punto que escribe Status y DueAt.
func (r Resolution) Apply(inv *entity.Invoice) {
	inv.Status = r.Status
	inv.DueAt = r.DueAt
}

// ApplyPayment suma el abono al pagado y reasigna el estado con la regla de abonos.
// DueAt no se modifica.
func ApplyPayment(inv *entity.Invoice, amount decimal.Decimal) {
	inv.PaidAmount = inv.PaidAmount.Add(amount)
	inv.Status = ResolvePaymentStatus(inv.Total, inv.PaidAmount)
}

// InvoiceTotal suma qty × unitPrice de las líneas sin redondeos intermedios.
func InvoiceTotal(items []*entity.InvoiceItem) decimal.Decimal {
	total := decimal.Zero
	for _, it := range items {
		total = total.Add(it.Subtotal())
	}
	return total
}

// IsCreditBearing indica si el estado genera un asiento de deuda en el libro.
func IsCreditBearing(status string) bool {
	return status == entity.InvoiceStatusCredit
}
