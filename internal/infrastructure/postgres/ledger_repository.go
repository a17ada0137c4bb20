package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/ak-ledger/internal/domain"
	"github.com/jhoicas/ak-ledger/internal/domain/entity"
	"github.com/jhoicas/ak-ledger/internal/domain/repository"
)

var _ repository.LedgerRepository = (*LedgerRepo)(nil)

// LedgerRepo implementación de LedgerRepository sobre customer_ledger (usable con pool o tx).
type LedgerRepo struct {
	q Querier
}

// NewLedgerRepository construye el adaptador.
func NewLedgerRepository(q Querier) *LedgerRepo {
	return &LedgerRepo{q: q}
}

const ledgerColumns = `id, seq, user_id, invoice_id, entry_type, amount, balance, remarks, created_at`

func scanLedgerEntry(row pgx.Row) (*entity.LedgerEntry, error) {
	var e entity.LedgerEntry
	var invoiceID, remarks *string
	err := row.Scan(&e.ID, &e.Seq, &e.CustomerID, &invoiceID, &e.EntryType, &e.Amount, &e.Balance, &remarks, &e.CreatedAt)
	if err != nil {
		return nil, err
	}
	e.InvoiceID = derefStr(invoiceID)
	e.Remarks = derefStr(remarks)
	return &e, nil
}

// LockCustomer toma un advisory lock transaccional por cliente. Sin transacción el lock
// se libera al terminar la sentencia, por eso solo se usa dentro de RunLedger/RunBilling.
func (r *LedgerRepo) LockCustomer(ctx context.Context, customerID string) error {
	if _, err := r.q.Exec(ctx, `SELECT pg_advisory_xact_lock(hashtext($1))`, customerID); err != nil {
		return fmt.Errorf("lock customer ledger: %w", err)
	}
	return nil
}

// Create persiste un asiento y completa Seq con el valor asignado por la base.
func (r *LedgerRepo) Create(ctx context.Context, e *entity.LedgerEntry) error {
	if !validID(e.CustomerID) {
		return domain.NotFound("cliente", e.CustomerID)
	}
	if e.InvoiceID != "" && !validID(e.InvoiceID) {
		return domain.NotFound("factura", e.InvoiceID)
	}
	query := `
		INSERT INTO customer_ledger (id, user_id, invoice_id, entry_type, amount, balance, remarks, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING seq`
	err := r.q.QueryRow(ctx, query,
		e.ID, e.CustomerID, nullIfEmpty(e.InvoiceID), e.EntryType, e.Amount, e.Balance,
		nullIfEmpty(e.Remarks), e.CreatedAt,
	).Scan(&e.Seq)
	if err != nil {
		if isForeignKeyViolation(err) {
			if violatedColumn(err, "invoice_id") {
				return domain.NotFound("factura", e.InvoiceID)
			}
			return domain.NotFound("cliente", e.CustomerID)
		}
		return fmt.Errorf("insert ledger entry: %w", err)
	}
	return nil
}

// GetByID obtiene un asiento por ID.
func (r *LedgerRepo) GetByID(ctx context.Context, id string) (*entity.LedgerEntry, error) {
	if !validID(id) {
		return nil, nil
	}
	e, err := scanLedgerEntry(r.q.QueryRow(ctx, `SELECT `+ledgerColumns+` FROM customer_ledger WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get ledger entry: %w", err)
	}
	return e, nil
}

// Last obtiene el asiento más reciente del cliente.
func (r *LedgerRepo) Last(ctx context.Context, customerID string) (*entity.LedgerEntry, error) {
	if !validID(customerID) {
		return nil, nil
	}
	query := `
		SELECT ` + ledgerColumns + `
		FROM customer_ledger
		WHERE user_id = $1
		ORDER BY created_at DESC, seq DESC
		LIMIT 1`
	e, err := scanLedgerEntry(r.q.QueryRow(ctx, query, customerID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get last ledger entry: %w", err)
	}
	return e, nil
}

// ListByCustomer lista el historial del cliente en orden cronológico.
func (r *LedgerRepo) ListByCustomer(ctx context.Context, customerID string) ([]*entity.LedgerEntry, error) {
	if !validID(customerID) {
		return nil, nil
	}
	query := `
		SELECT ` + ledgerColumns + `
		FROM customer_ledger
		WHERE user_id = $1
		ORDER BY created_at ASC, seq ASC`
	rows, err := r.q.Query(ctx, query, customerID)
	if err != nil {
		return nil, fmt.Errorf("list ledger entries: %w", err)
	}
	defer rows.Close()
	var list []*entity.LedgerEntry
	for rows.Next() {
		e, err := scanLedgerEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("scan ledger entry: %w", err)
		}
		list = append(list, e)
	}
	return list, rows.Err()
}

// Update reescribe tipo, monto y observaciones. created_at no cambia.
func (r *LedgerRepo) Update(ctx context.Context, e *entity.LedgerEntry) error {
	_, err := r.q.Exec(ctx,
		`UPDATE customer_ledger SET entry_type = $2, amount = $3, remarks = $4 WHERE id = $1`,
		e.ID, e.EntryType, e.Amount, nullIfEmpty(e.Remarks),
	)
	if err != nil {
		return fmt.Errorf("update ledger entry: %w", err)
	}
	return nil
}

// UpdateBalance persiste el saldo recalculado de un asiento.
func (r *LedgerRepo) UpdateBalance(ctx context.Context, id string, balance decimal.Decimal) error {
	if _, err := r.q.Exec(ctx, `UPDATE customer_ledger SET balance = $2 WHERE id = $1`, id, balance); err != nil {
		return fmt.Errorf("update ledger balance: %w", err)
	}
	return nil
}

// Delete elimina un asiento.
func (r *LedgerRepo) Delete(ctx context.Context, id string) (bool, error) {
	if !validID(id) {
		return false, nil
	}
	tag, err := r.q.Exec(ctx, `DELETE FROM customer_ledger WHERE id = $1`, id)
	if err != nil {
		return false, fmt.Errorf("delete ledger entry: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

// DeleteByInvoice elimina los asientos que referencian la factura.
func (r *LedgerRepo) DeleteByInvoice(ctx context.Context, invoiceID string) (int64, error) {
	if !validID(invoiceID) {
		return 0, nil
	}
	tag, err := r.q.Exec(ctx, `DELETE FROM customer_ledger WHERE invoice_id = $1`, invoiceID)
	if err != nil {
		return 0, fmt.Errorf("delete ledger entries by invoice: %w", err)
	}
	return tag.RowsAffected(), nil
}
