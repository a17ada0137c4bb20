package repository

import (
	"context"

	"github.com/jhoicas/ak-ledger/internal/domain/entity"
)

// CustomerRepository define el puerto de persistencia para Customer (tabla users).
// GetByID devuelve (nil, nil) si no existe.
type CustomerRepository interface {
	// FindOrCreate busca por nombre y teléfono exactos; si no existe lo crea con los datos dados.
	FindOrCreate(ctx context.Context, customer *entity.Customer) (*entity.Customer, error)
	GetByID(ctx context.Context, id string) (*entity.Customer, error)
	Update(ctx context.Context, customer *entity.Customer) error
	// Delete devuelve false si no existía.
	Delete(ctx context.Context, id string) (bool, error)
	// VarietyHistory agrupa por variedad las líneas facturadas al cliente, la compra más
	// reciente primero. Sin facturas devuelve una lista vacía.
	VarietyHistory(ctx context.Context, customerID string) ([]*entity.VarietyPurchase, error)
}
