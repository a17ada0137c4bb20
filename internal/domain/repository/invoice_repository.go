package repository

import (
	"context"

	"github.com/jhoicas/ak-ledger/internal/domain/entity"
)

// InvoiceRepository define el puerto de persistencia para Invoice y sus líneas.
// GetByID devuelve (nil, nil) si no existe.
type InvoiceRepository interface {
	Create(ctx context.Context, invoice *entity.Invoice) error
	CreateItem(ctx context.Context, item *entity.InvoiceItem) error
	// Update reescribe cabecera completa (snapshot de cliente, totales, estado, vencimiento).
	Update(ctx context.Context, invoice *entity.Invoice) error
	GetByID(ctx context.Context, id string) (*entity.Invoice, error)
	// GetForUpdate obtiene la factura bloqueando la fila (SELECT FOR UPDATE).
	GetForUpdate(ctx context.Context, id string) (*entity.Invoice, error)
	GetItems(ctx context.Context, invoiceID string) ([]*entity.InvoiceItem, error)
	DeleteItems(ctx context.Context, invoiceID string) error
	// Delete devuelve false si la factura no existía.
	Delete(ctx context.Context, id string) (bool, error)
}
