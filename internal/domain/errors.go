package domain

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// Errores de dominio.
var (
	ErrNotFound     = errors.New("recurso no encontrado")
	ErrInvalidInput = errors.New("entrada inválida")
	ErrDuplicate    = errors.New("recurso duplicado")
	ErrUnauthorized = errors.New("no autorizado")
	ErrConflict     = errors.New("conflicto con el estado actual")
	ErrConsistency  = errors.New("invariante del libro mayor violado")
)

// ValidationError entrada mal formada o fuera de rango. No se reintenta.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

func (e *ValidationError) Unwrap() error { return ErrInvalidInput }

// Invalid construye un ValidationError.
func Invalid(field, reason string) error {
	return &ValidationError{Field: field, Reason: reason}
}

// NotFoundError recurso referenciado inexistente (factura, asiento, cliente, variedad).
type NotFoundError struct {
	Resource string
	ID       string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %s no encontrado", e.Resource, e.ID)
}

func (e *NotFoundError) Unwrap() error { return ErrNotFound }

// NotFound construye un NotFoundError.
func NotFound(resource, id string) error {
	return &NotFoundError{Resource: resource, ID: id}
}

// ConsistencyError indica un bug del motor de saldos, no una entrada inválida:
// el saldo almacenado de un asiento no coincide con el recalculado.
type ConsistencyError struct {
	CustomerID string
	EntryID    string
	Expected   decimal.Decimal
	Stored     decimal.Decimal
}

func (e *ConsistencyError) Error() string {
	return fmt.Sprintf("cliente %s, asiento %s: saldo esperado %s, almacenado %s",
		e.CustomerID, e.EntryID, e.Expected.String(), e.Stored.String())
}

func (e *ConsistencyError) Unwrap() error { return ErrConsistency }
