package entity

import "github.com/shopspring/decimal"

// InvoiceItem línea de factura. UnitPrice es el precio al momento de la venta,
// no el precio vigente de la variedad.
type InvoiceItem struct {
	ID        string
	InvoiceID string
	VarietyID string
	Qty       int
	UnitPrice decimal.Decimal
}

// Subtotal qty × unitPrice sin redondeo.
func (it *InvoiceItem) Subtotal() decimal.Decimal {
	return decimal.NewFromInt(int64(it.Qty)).Mul(it.UnitPrice)
}
