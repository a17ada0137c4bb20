package postgres

import (
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
)

// validID indica si id puede llegar a una columna UUID. Un id mal formado no existe:
// los repositorios responden "no encontrado" sin consultar, en vez de dejar que la base
// falle con 22P02.
func validID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}

// isUniqueViolation verifica si un error es una violación de constraint único (23505).
func isUniqueViolation(err error) bool {
	return hasCode(err, "23505")
}

// isForeignKeyViolation verifica si un error es una violación de llave foránea (23503).
func isForeignKeyViolation(err error) bool {
	return hasCode(err, "23503")
}

func hasCode(err error, code string) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == code
	}
	return strings.Contains(err.Error(), code)
}

// violatedColumn indica si la constraint violada es la de la columna dada
// (p. ej. customer_ledger_invoice_id_fkey para "invoice_id").
func violatedColumn(err error, column string) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return false
	}
	return pgErr.ColumnName == column || strings.Contains(pgErr.ConstraintName, column)
}

func nullIfEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func derefStr(p *string) string {
	if p != nil {
		return *p
	}
	return ""
}
