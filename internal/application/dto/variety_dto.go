package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// CreateVarietyRequest entrada para crear una variedad.
type CreateVarietyRequest struct {
	Name         string          `json:"name" validate:"required,max=120"`
	Category     string          `json:"category" validate:"required,max=80"`
	UnitPrice    decimal.Decimal `json:"unit_price"`
	Qty          int             `json:"qty" validate:"min=0"`
	ReorderLevel int             `json:"reorder_level" validate:"min=0"`
}

// UpdateVarietyRequest actualización parcial: nil = no modificar.
type UpdateVarietyRequest struct {
	Name         *string          `json:"name" validate:"omitempty,min=1,max=120"`
	Category     *string          `json:"category" validate:"omitempty,max=80"`
	UnitPrice    *decimal.Decimal `json:"unit_price"`
	Qty          *int             `json:"qty" validate:"omitempty,min=0"`
	ReorderLevel *int             `json:"reorder_level" validate:"omitempty,min=0"`
}

// StockInRequest body para POST /api/varieties/stock-in.
type StockInRequest struct {
	VarietyID string `json:"variety_id" validate:"required"`
	AddQty    int    `json:"add_qty" validate:"gt=0"`
}

// VarietyResponse salida de una variedad.
type VarietyResponse struct {
	ID           string          `json:"id"`
	Name         string          `json:"name"`
	Category     string          `json:"category"`
	UnitPrice    decimal.Decimal `json:"unit_price"`
	QtyOnHand    int             `json:"qty_on_hand"`
	ReorderLevel int             `json:"reorder_level"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
}

// ReorderSuggestionDTO variedad en o bajo su nivel de reorden.
type ReorderSuggestionDTO struct {
	VarietyID         string `json:"variety_id"`
	Name              string `json:"name"`
	Category          string `json:"category"`
	QtyOnHand         int    `json:"qty_on_hand"`
	ReorderLevel      int    `json:"reorder_level"`
	IdealStock        int    `json:"ideal_stock"`         // ReorderLevel * 1.5 redondeado hacia arriba
	SuggestedOrderQty int    `json:"suggested_order_qty"` // IdealStock - QtyOnHand
}
