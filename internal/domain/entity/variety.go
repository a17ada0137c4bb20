package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Límites de longitud de la variedad.
const (
	VarietyNameMaxLen     = 120
	VarietyCategoryMaxLen = 80
)

// Variety producto (tela) del catálogo con su existencia.
// La facturación no descuenta QtyOnHand; solo lo modifica la entrada de stock.
type Variety struct {
	ID           string
	Name         string
	Category     string
	UnitPrice    decimal.Decimal
	QtyOnHand    int
	ReorderLevel int
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// NeedsReorder indica si la existencia está en o por debajo del nivel de reorden.
func (v *Variety) NeedsReorder() bool {
	return v.ReorderLevel > 0 && v.QtyOnHand <= v.ReorderLevel
}
