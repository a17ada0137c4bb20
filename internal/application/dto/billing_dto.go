package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// InvoiceRequest body para POST /api/invoices y PUT /api/invoices/:id.
// El cliente se busca (o crea) por nombre y teléfono exactos.
type InvoiceRequest struct {
	CustName    string               `json:"cust_name" validate:"required,max=120"`
	CustPhone   string               `json:"cust_phone" validate:"required,max=40"`
	CustAddress string               `json:"cust_address" validate:"max=255"`
	Items       []InvoiceItemRequest `json:"items" validate:"required,min=1,dive"`
	PaidNow     decimal.Decimal      `json:"paid_now"`
	Credit      *CreditRequest       `json:"credit,omitempty"`
}

// InvoiceItemRequest línea de factura (variedad, cantidad, precio unitario de venta).
type InvoiceItemRequest struct {
	VarietyID string          `json:"variety_id" validate:"required"`
	Qty       int             `json:"qty" validate:"gt=0"`
	UnitPrice decimal.Decimal `json:"unit_price"`
}

// CreditRequest condiciones de crédito. DueAt en formato YYYY-MM-DD.
type CreditRequest struct {
	Enabled bool   `json:"enabled"`
	DueAt   string `json:"due_at,omitempty"`
}

// PaymentRequest body para POST /api/invoices/:id/payments.
type PaymentRequest struct {
	Amount decimal.Decimal `json:"amount"`
}

// PaymentResponse estado de la factura después del abono.
type PaymentResponse struct {
	Status     string          `json:"status"`
	PaidAmount decimal.Decimal `json:"paid_amount"`
	Total      decimal.Decimal `json:"total"`
}

// InvoiceIDResponse respuesta de creación/edición.
type InvoiceIDResponse struct {
	InvoiceID string `json:"invoice_id"`
}

// InvoiceResponse factura con detalle para GET /api/invoices/:id.
type InvoiceResponse struct {
	ID          string                `json:"id"`
	CustomerID  string                `json:"customer_id"`
	CustName    string                `json:"cust_name"`
	CustPhone   string                `json:"cust_phone"`
	CustAddress string                `json:"cust_address,omitempty"`
	VarietyList string                `json:"variety_list"`
	Total       decimal.Decimal       `json:"total"`
	PaidAmount  decimal.Decimal       `json:"paid_amount"`
	Balance     decimal.Decimal       `json:"balance"`
	Status      string                `json:"status"`
	DueAt       string                `json:"due_at,omitempty"`
	IssuedAt    time.Time             `json:"issued_at"`
	Items       []InvoiceItemResponse `json:"items"`
}

// InvoiceItemResponse línea de detalle en la respuesta.
type InvoiceItemResponse struct {
	ID        string          `json:"id"`
	VarietyID string          `json:"variety_id"`
	Qty       int             `json:"qty"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Subtotal  decimal.Decimal `json:"subtotal"`
}

// UpdateCustomerRequest actualización parcial: solo se aplican los campos presentes.
type UpdateCustomerRequest struct {
	Name    *string `json:"name" validate:"omitempty,min=1,max=120"`
	Phone   *string `json:"phone" validate:"omitempty,min=1,max=40"`
	Address *string `json:"address" validate:"omitempty,max=255"`
}

// CustomerResponse cliente en respuestas.
type CustomerResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Phone     string    `json:"phone"`
	Address   string    `json:"address,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// VarietyPurchaseResponse compras acumuladas de una variedad por el cliente.
// GET /api/customers/:id/varieties
type VarietyPurchaseResponse struct {
	VarietyID    string          `json:"variety_id"`
	Name         string          `json:"name"`
	Category     string          `json:"category"`
	TotalQty     int             `json:"total_qty"`
	TotalSpent   decimal.Decimal `json:"total_spent"`
	LastPurchase time.Time       `json:"last_purchase"`
}
