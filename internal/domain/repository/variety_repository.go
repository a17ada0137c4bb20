package repository

import (
	"context"

	"github.com/jhoicas/ak-ledger/internal/domain/entity"
)

// VarietyRepository define el puerto de persistencia para el catálogo de variedades.
// GetByID devuelve (nil, nil) si no existe.
type VarietyRepository interface {
	Create(ctx context.Context, variety *entity.Variety) error
	GetByID(ctx context.Context, id string) (*entity.Variety, error)
	Update(ctx context.Context, variety *entity.Variety) error
	// AddStock suma addQty a qty_on_hand. Devuelve false si la variedad no existe.
	AddStock(ctx context.Context, id string, addQty int) (bool, error)
	ListBelowReorder(ctx context.Context) ([]*entity.Variety, error)
	Delete(ctx context.Context, id string) (bool, error)
}
