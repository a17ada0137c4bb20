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

var _ repository.CustomerRepository = (*CustomerRepo)(nil)

// CustomerRepo implementación de CustomerRepository sobre la tabla users (usable con pool o tx).
type CustomerRepo struct {
	q Querier
}

// NewCustomerRepository construye el adaptador. Pasar pool o tx (Querier).
func NewCustomerRepository(q Querier) *CustomerRepo {
	return &CustomerRepo{q: q}
}

const customerColumns = `id, full_name, phone, address, created_at, updated_at`

// FindOrCreate inserta el cliente si no existe (nombre, teléfono) y devuelve la fila vigente.
// Dos facturas simultáneas para el mismo cliente nuevo terminan con un solo registro.
func (r *CustomerRepo) FindOrCreate(ctx context.Context, customer *entity.Customer) (*entity.Customer, error) {
	query := `
		INSERT INTO users (id, full_name, phone, address, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (full_name, phone) DO NOTHING`
	_, err := r.q.Exec(ctx, query,
		customer.ID, customer.Name, customer.Phone, customer.Address,
		customer.CreatedAt, customer.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("upsert customer: %w", err)
	}
	var c entity.Customer
	err = r.q.QueryRow(ctx,
		`SELECT `+customerColumns+` FROM users WHERE full_name = $1 AND phone = $2`,
		customer.Name, customer.Phone,
	).Scan(&c.ID, &c.Name, &c.Phone, &c.Address, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("get customer by name/phone: %w", err)
	}
	return &c, nil
}

// GetByID obtiene un cliente por ID.
func (r *CustomerRepo) GetByID(ctx context.Context, id string) (*entity.Customer, error) {
	if !validID(id) {
		return nil, nil
	}
	var c entity.Customer
	err := r.q.QueryRow(ctx, `SELECT `+customerColumns+` FROM users WHERE id = $1`, id).Scan(
		&c.ID, &c.Name, &c.Phone, &c.Address, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get customer: %w", err)
	}
	return &c, nil
}

// Update actualiza un cliente.
func (r *CustomerRepo) Update(ctx context.Context, customer *entity.Customer) error {
	query := `
		UPDATE users SET full_name = $2, phone = $3, address = $4, updated_at = $5
		WHERE id = $1`
	_, err := r.q.Exec(ctx, query,
		customer.ID, customer.Name, customer.Phone, customer.Address, customer.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("update customer: %w", err)
	}
	return nil
}

// Delete elimina un cliente por ID. Con facturas o asientos asociados devuelve ErrConflict.
func (r *CustomerRepo) Delete(ctx context.Context, id string) (bool, error) {
	if !validID(id) {
		return false, nil
	}
	tag, err := r.q.Exec(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		if isForeignKeyViolation(err) {
			return false, domain.ErrConflict
		}
		return false, fmt.Errorf("delete customer: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

// VarietyHistory agrega las líneas de las facturas del cliente por variedad.
func (r *CustomerRepo) VarietyHistory(ctx context.Context, customerID string) ([]*entity.VarietyPurchase, error) {
	if !validID(customerID) {
		return nil, nil
	}
	query := `
		SELECT v.id, v.name, v.category,
		       SUM(it.qty)::int,
		       SUM(it.qty * it.unit_price),
		       MAX(i.issued_at) AS last_purchase
		FROM invoice_items it
		JOIN invoices i ON i.id = it.invoice_id
		JOIN varieties v ON v.id = it.variety_id
		WHERE i.customer_id = $1
		GROUP BY v.id, v.name, v.category
		ORDER BY last_purchase DESC, v.name ASC`
	rows, err := r.q.Query(ctx, query, customerID)
	if err != nil {
		return nil, fmt.Errorf("customer variety history: %w", err)
	}
	defer rows.Close()
	var list []*entity.VarietyPurchase
	for rows.Next() {
		var p entity.VarietyPurchase
		if err := rows.Scan(&p.VarietyID, &p.Name, &p.Category, &p.TotalQty, &p.TotalSpent, &p.LastPurchase); err != nil {
			return nil, fmt.Errorf("scan variety purchase: %w", err)
		}
		list = append(list, &p)
	}
	return list, rows.Err()
}
