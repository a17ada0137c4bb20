package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/ak-ledger/internal/domain"
	"github.com/jhoicas/ak-ledger/internal/domain/entity"
	"github.com/jhoicas/ak-ledger/internal/domain/repository"
)

var _ repository.InvoiceRepository = (*InvoiceRepo)(nil)

// InvoiceRepo implementación de InvoiceRepository (usable con pool o tx).
type InvoiceRepo struct {
	q Querier
}

// NewInvoiceRepository construye el adaptador. Pasar pool o tx (Querier).
func NewInvoiceRepository(q Querier) *InvoiceRepo {
	return &InvoiceRepo{q: q}
}

const invoiceColumns = `id, customer_id, cust_name, cust_phone, cust_address, variety_list,
	total, paid_amount, status, due_at, issued_at, updated_at`

func scanInvoice(row pgx.Row) (*entity.Invoice, error) {
	var inv entity.Invoice
	err := row.Scan(
		&inv.ID, &inv.CustomerID, &inv.CustName, &inv.CustPhone, &inv.CustAddress, &inv.VarietyList,
		&inv.Total, &inv.PaidAmount, &inv.Status, &inv.DueAt, &inv.IssuedAt, &inv.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &inv, nil
}

// Create persiste la cabecera de la factura.
func (r *InvoiceRepo) Create(ctx context.Context, inv *entity.Invoice) error {
	query := `
		INSERT INTO invoices (` + invoiceColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`
	_, err := r.q.Exec(ctx, query,
		inv.ID, inv.CustomerID, inv.CustName, inv.CustPhone, inv.CustAddress, inv.VarietyList,
		inv.Total, inv.PaidAmount, inv.Status, inv.DueAt, inv.IssuedAt, inv.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert invoice: %w", err)
	}
	return nil
}

// CreateItem persiste una línea de la factura.
func (r *InvoiceRepo) CreateItem(ctx context.Context, item *entity.InvoiceItem) error {
	if !validID(item.VarietyID) {
		return domain.NotFound("variedad", item.VarietyID)
	}
	query := `
		INSERT INTO invoice_items (id, invoice_id, variety_id, qty, unit_price)
		VALUES ($1, $2, $3, $4, $5)`
	_, err := r.q.Exec(ctx, query, item.ID, item.InvoiceID, item.VarietyID, item.Qty, item.UnitPrice)
	if err != nil {
		if isForeignKeyViolation(err) && violatedColumn(err, "variety_id") {
			return domain.NotFound("variedad", item.VarietyID)
		}
		return fmt.Errorf("insert invoice item: %w", err)
	}
	return nil
}

// Update reescribe la cabecera completa.
func (r *InvoiceRepo) Update(ctx context.Context, inv *entity.Invoice) error {
	query := `
		UPDATE invoices
		SET cust_name    = $2,
		    cust_phone   = $3,
		    cust_address = $4,
		    variety_list = $5,
		    total        = $6,
		    paid_amount  = $7,
		    status       = $8,
		    due_at       = $9,
		    updated_at   = $10
		WHERE id = $1`
	_, err := r.q.Exec(ctx, query,
		inv.ID, inv.CustName, inv.CustPhone, inv.CustAddress, inv.VarietyList,
		inv.Total, inv.PaidAmount, inv.Status, inv.DueAt, inv.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update invoice: %w", err)
	}
	return nil
}

// GetByID obtiene una factura por ID.
func (r *InvoiceRepo) GetByID(ctx context.Context, id string) (*entity.Invoice, error) {
	return r.get(ctx, `SELECT `+invoiceColumns+` FROM invoices WHERE id = $1`, id)
}

// GetForUpdate obtiene la factura bloqueando la fila hasta el fin de la transacción.
func (r *InvoiceRepo) GetForUpdate(ctx context.Context, id string) (*entity.Invoice, error) {
	return r.get(ctx, `SELECT `+invoiceColumns+` FROM invoices WHERE id = $1 FOR UPDATE`, id)
}

func (r *InvoiceRepo) get(ctx context.Context, query, id string) (*entity.Invoice, error) {
	if !validID(id) {
		return nil, nil
	}
	inv, err := scanInvoice(r.q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get invoice: %w", err)
	}
	return inv, nil
}

// GetItems lista las líneas de una factura.
func (r *InvoiceRepo) GetItems(ctx context.Context, invoiceID string) ([]*entity.InvoiceItem, error) {
	if !validID(invoiceID) {
		return nil, nil
	}
	rows, err := r.q.Query(ctx,
		`SELECT id, invoice_id, variety_id, qty, unit_price FROM invoice_items WHERE invoice_id = $1 ORDER BY id`,
		invoiceID,
	)
	if err != nil {
		return nil, fmt.Errorf("list invoice items: %w", err)
	}
	defer rows.Close()
	var list []*entity.InvoiceItem
	for rows.Next() {
		var it entity.InvoiceItem
		if err := rows.Scan(&it.ID, &it.InvoiceID, &it.VarietyID, &it.Qty, &it.UnitPrice); err != nil {
			return nil, fmt.Errorf("scan invoice item: %w", err)
		}
		list = append(list, &it)
	}
	return list, rows.Err()
}

// DeleteItems elimina todas las líneas de una factura.
func (r *InvoiceRepo) DeleteItems(ctx context.Context, invoiceID string) error {
	if !validID(invoiceID) {
		return nil
	}
	if _, err := r.q.Exec(ctx, `DELETE FROM invoice_items WHERE invoice_id = $1`, invoiceID); err != nil {
		return fmt.Errorf("delete invoice items: %w", err)
	}
	return nil
}

// Delete elimina la cabecera. Las líneas y asientos deben borrarse antes.
func (r *InvoiceRepo) Delete(ctx context.Context, id string) (bool, error) {
	if !validID(id) {
		return false, nil
	}
	tag, err := r.q.Exec(ctx, `DELETE FROM invoices WHERE id = $1`, id)
	if err != nil {
		return false, fmt.Errorf("delete invoice: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}
