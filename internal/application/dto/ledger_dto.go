package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// CreateLedgerEntryRequest body para POST /api/ledger.
type CreateLedgerEntryRequest struct {
	UserID    string          `json:"user_id" validate:"required"`
	InvoiceID string          `json:"invoice_id,omitempty"`
	EntryType string          `json:"entry_type" validate:"required,oneof=INVOICE PAYMENT"`
	Amount    decimal.Decimal `json:"amount"`
	Remarks   string          `json:"remarks,omitempty" validate:"max=255"`
}

// UpdateLedgerEntryRequest body para PUT /api/ledger/:id.
type UpdateLedgerEntryRequest struct {
	EntryType string          `json:"entry_type" validate:"required,oneof=INVOICE PAYMENT"`
	Amount    decimal.Decimal `json:"amount"`
	Remarks   string          `json:"remarks,omitempty" validate:"max=255"`
}

// LedgerEntryResponse asiento con su saldo acumulado.
type LedgerEntryResponse struct {
	ID        string          `json:"id"`
	UserID    string          `json:"user_id"`
	InvoiceID string          `json:"invoice_id,omitempty"`
	EntryType string          `json:"entry_type"`
	Amount    decimal.Decimal `json:"amount"`
	Balance   decimal.Decimal `json:"balance"`
	Remarks   string          `json:"remarks,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
}

// LedgerStatementResponse asientos del cliente, más antiguo primero.
type LedgerStatementResponse struct {
	UserID  string                `json:"user_id"`
	Balance decimal.Decimal       `json:"balance"`
	Entries []LedgerEntryResponse `json:"entries"`
}

// RecalculateResponse resumen de POST /api/ledger/customers/:id/recalculate.
type RecalculateResponse struct {
	UserID  string          `json:"user_id"`
	Entries int             `json:"entries"`
	Updated int             `json:"updated"`
	Balance decimal.Decimal `json:"balance"`
}
