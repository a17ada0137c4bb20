package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Tipos de asiento del libro de clientes.
const (
	LedgerEntryInvoice = "INVOICE" // aumenta la deuda
	LedgerEntryPayment = "PAYMENT" // disminuye la deuda
)

// LedgerEntry asiento del libro de un cliente.
// Amount siempre es positivo; el signo lo da EntryType.
// Balance es el saldo acumulado después de este asiento en orden (CreatedAt, Seq).
type LedgerEntry struct {
	ID         string
	CustomerID string
	InvoiceID  string // vacío si el asiento no referencia factura
	EntryType  string
	Amount     decimal.Decimal
	Balance    decimal.Decimal
	Remarks    string
	CreatedAt  time.Time // inmutable
	Seq        int64     // desempate de orden para el mismo CreatedAt
}
