package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// VarietyPurchase acumulado de compras de una variedad por un cliente, derivado de las
// líneas de sus facturas. TotalSpent usa el precio de cada línea, no el vigente.
type VarietyPurchase struct {
	VarietyID    string
	Name         string
	Category     string
	TotalQty     int
	TotalSpent   decimal.Decimal
	LastPurchase time.Time // IssuedAt de la factura más reciente con la variedad
}
