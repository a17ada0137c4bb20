package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Estados de pago de una factura. Solo el paquete domain/invoicing los asigna.
const (
	InvoiceStatusOpen    = "OPEN"
	InvoiceStatusPartial = "PARTIAL"
	InvoiceStatusPaid    = "PAID"
	InvoiceStatusCredit  = "CREDIT"
)

// Invoice representa la cabecera de una factura.
// CustName, CustPhone y CustAddress son una copia del cliente al momento de facturar.
type Invoice struct {
	ID          string
	CustomerID  string
	CustName    string
	CustPhone   string
	CustAddress string
	VarietyList string // nombres de variedades ordenados, separados por ", "
	Total       decimal.Decimal
	PaidAmount  decimal.Decimal
	Status      string
	DueAt       *time.Time // solo con Status = CREDIT
	IssuedAt    time.Time
	UpdatedAt   time.Time
}

// Balance saldo pendiente de la factura.
func (i *Invoice) Balance() decimal.Decimal {
	return i.Total.Sub(i.PaidAmount)
}
