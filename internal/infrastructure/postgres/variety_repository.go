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

var _ repository.VarietyRepository = (*VarietyRepo)(nil)

// VarietyRepo implementación de VarietyRepository (usable con pool o tx).
type VarietyRepo struct {
	q Querier
}

// NewVarietyRepository construye el adaptador.
func NewVarietyRepository(q Querier) *VarietyRepo {
	return &VarietyRepo{q: q}
}

const varietyColumns = `id, name, category, unit_price, qty_on_hand, reorder_level, created_at, updated_at`

func scanVariety(row pgx.Row) (*entity.Variety, error) {
	var v entity.Variety
	err := row.Scan(&v.ID, &v.Name, &v.Category, &v.UnitPrice, &v.QtyOnHand, &v.ReorderLevel, &v.CreatedAt, &v.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &v, nil
}

// Create persiste una variedad.
func (r *VarietyRepo) Create(ctx context.Context, v *entity.Variety) error {
	query := `
		INSERT INTO varieties (` + varietyColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	_, err := r.q.Exec(ctx, query,
		v.ID, v.Name, v.Category, v.UnitPrice, v.QtyOnHand, v.ReorderLevel, v.CreatedAt, v.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert variety: %w", err)
	}
	return nil
}

// GetByID obtiene una variedad por ID.
func (r *VarietyRepo) GetByID(ctx context.Context, id string) (*entity.Variety, error) {
	if !validID(id) {
		return nil, nil
	}
	v, err := scanVariety(r.q.QueryRow(ctx, `SELECT `+varietyColumns+` FROM varieties WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get variety: %w", err)
	}
	return v, nil
}

// Update reescribe los campos editables de la variedad.
func (r *VarietyRepo) Update(ctx context.Context, v *entity.Variety) error {
	query := `
		UPDATE varieties
		SET name = $2, category = $3, unit_price = $4, qty_on_hand = $5, reorder_level = $6, updated_at = $7
		WHERE id = $1`
	_, err := r.q.Exec(ctx, query, v.ID, v.Name, v.Category, v.UnitPrice, v.QtyOnHand, v.ReorderLevel, v.UpdatedAt)
	if err != nil {
		return fmt.Errorf("update variety: %w", err)
	}
	return nil
}

// AddStock suma existencia de forma atómica.
func (r *VarietyRepo) AddStock(ctx context.Context, id string, addQty int) (bool, error) {
	if !validID(id) {
		return false, nil
	}
	tag, err := r.q.Exec(ctx,
		`UPDATE varieties SET qty_on_hand = qty_on_hand + $2, updated_at = now() WHERE id = $1`,
		id, addQty,
	)
	if err != nil {
		return false, fmt.Errorf("stock in variety: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

// ListBelowReorder lista variedades con nivel de reorden definido y existencia en o bajo él,
// la mayor brecha primero.
func (r *VarietyRepo) ListBelowReorder(ctx context.Context) ([]*entity.Variety, error) {
	query := `
		SELECT ` + varietyColumns + `
		FROM varieties
		WHERE reorder_level > 0 AND qty_on_hand <= reorder_level
		ORDER BY (qty_on_hand - reorder_level) ASC, name ASC`
	rows, err := r.q.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list low stock: %w", err)
	}
	defer rows.Close()
	var list []*entity.Variety
	for rows.Next() {
		v, err := scanVariety(rows)
		if err != nil {
			return nil, fmt.Errorf("scan variety: %w", err)
		}
		list = append(list, v)
	}
	return list, rows.Err()
}

// Delete elimina una variedad. Si alguna línea de factura la referencia devuelve ErrConflict.
func (r *VarietyRepo) Delete(ctx context.Context, id string) (bool, error) {
	if !validID(id) {
		return false, nil
	}
	tag, err := r.q.Exec(ctx, `DELETE FROM varieties WHERE id = $1`, id)
	if err != nil {
		if isForeignKeyViolation(err) {
			return false, domain.ErrConflict
		}
		return false, fmt.Errorf("delete variety: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}
