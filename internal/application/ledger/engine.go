package ledger

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/ak-ledger/internal/domain"
	"github.com/jhoicas/ak-ledger/internal/domain/entity"
	domledger "github.com/jhoicas/ak-ledger/internal/domain/ledger"
	"github.com/jhoicas/ak-ledger/internal/domain/repository"
)

// Engine motor de saldos del libro de clientes.
//
// El saldo de cada asiento se guarda al escribir. Append lo calcula sobre el último
// asiento; Edit y Delete fuerzan un recálculo completo del cliente porque eliminar o
// cambiar un asiento intermedio invalida todos los saldos posteriores.
//
// Las escrituras de un mismo cliente se serializan con LockCustomer dentro de la
// transacción; clientes distintos no comparten estado.
type Engine struct {
	txRunner TxRunner
	repo     repository.LedgerRepository
	log      zerolog.Logger
	now      func() time.Time
}

// NewEngine construye el motor. repo se usa para lecturas fuera de transacción.
func NewEngine(txRunner TxRunner, repo repository.LedgerRepository, log zerolog.Logger) *Engine {
	return &Engine{
		txRunner: txRunner,
		repo:     repo,
		log:      log.With().Str("component", "ledger").Logger(),
		now:      time.Now,
	}
}

// WithClock reemplaza el reloj (tests).
func (e *Engine) WithClock(now func() time.Time) *Engine {
	e.now = now
	return e
}

// AppendInput movimiento a registrar. InvoiceID y Remarks son opcionales.
type AppendInput struct {
	CustomerID string
	EntryType  string
	Amount     decimal.Decimal
	InvoiceID  string
	Remarks    string
}

// EditInput nuevos valores de los campos mutables de un asiento.
type EditInput struct {
	EntryID   string
	EntryType string
	Amount    decimal.Decimal
	Remarks   string
}

// Statement asientos de un cliente (más antiguo primero) y su saldo actual.
type Statement struct {
	CustomerID string
	Entries    []*entity.LedgerEntry
	Balance    decimal.Decimal
}

// RecalcResult resumen de un recálculo.
type RecalcResult struct {
	CustomerID string
	Entries    int
	Updated    int
	Balance    decimal.Decimal
}

// validateMovement regla única para todo punto de entrada: tipo válido y monto > 0.
func validateMovement(entryType string, amount decimal.Decimal) error {
	if !domledger.ValidEntryType(entryType) {
		return domain.Invalid("entry_type", "debe ser INVOICE o PAYMENT")
	}
	if !amount.GreaterThan(decimal.Zero) {
		return domain.Invalid("amount", "debe ser mayor que cero")
	}
	return nil
}

// Append registra un movimiento en su propia transacción.
func (e *Engine) Append(ctx context.Context, in AppendInput) (*entity.LedgerEntry, error) {
	if in.CustomerID == "" {
		return nil, domain.Invalid("user_id", "requerido")
	}
	if err := validateMovement(in.EntryType, in.Amount); err != nil {
		return nil, err
	}
	var entry *entity.LedgerEntry
	err := e.txRunner.RunLedger(ctx, func(ledgerRepo repository.LedgerRepository) error {
		var err error
		entry, err = e.AppendInTx(ctx, ledgerRepo, in)
		return err
	})
	if err != nil {
		return nil, err
	}
	return entry, nil
}

// AppendInTx registra un movimiento usando el repositorio del caller (misma transacción).
// Lo usa el flujo de facturación para que factura y asiento se confirmen juntos.
func (e *Engine) AppendInTx(ctx context.Context, ledgerRepo repository.LedgerRepository, in AppendInput) (*entity.LedgerEntry, error) {
	if err := validateMovement(in.EntryType, in.Amount); err != nil {
		return nil, err
	}
	if err := ledgerRepo.LockCustomer(ctx, in.CustomerID); err != nil {
		return nil, err
	}
	last, err := ledgerRepo.Last(ctx, in.CustomerID)
	if err != nil {
		return nil, err
	}
	prior := decimal.Zero
	if last != nil {
		prior = last.Balance
	}
	now := e.now()
	if last != nil && now.Before(last.CreatedAt) {
		// Con reloj no monótono el asiento nuevo quedaría antes del último.
		now = last.CreatedAt
	}
	entry := &entity.LedgerEntry{
		ID:         uuid.New().String(),
		CustomerID: in.CustomerID,
		InvoiceID:  in.InvoiceID,
		EntryType:  in.EntryType,
		Amount:     in.Amount,
		Balance:    domledger.NextBalance(prior, in.EntryType, in.Amount),
		Remarks:    in.Remarks,
		CreatedAt:  now,
	}
	if err := ledgerRepo.Create(ctx, entry); err != nil {
		return nil, err
	}
	e.log.Debug().
		Str("customer_id", entry.CustomerID).
		Str("entry_id", entry.ID).
		Str("entry_type", entry.EntryType).
		Str("amount", entry.Amount.String()).
		Str("balance", entry.Balance.String()).
		Msg("asiento registrado")
	return entry, nil
}

// Recalculate reescribe todos los saldos del cliente. Idempotente.
func (e *Engine) Recalculate(ctx context.Context, customerID string) (*RecalcResult, error) {
	if customerID == "" {
		return nil, domain.Invalid("user_id", "requerido")
	}
	var res *RecalcResult
	err := e.txRunner.RunLedger(ctx, func(ledgerRepo repository.LedgerRepository) error {
		if err := ledgerRepo.LockCustomer(ctx, customerID); err != nil {
			return err
		}
		var err error
		res, err = e.recalculateInTx(ctx, ledgerRepo, customerID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return res, nil
}

// recalculateInTx requiere el lock del cliente tomado por el caller.
func (e *Engine) recalculateInTx(ctx context.Context, ledgerRepo repository.LedgerRepository, customerID string) (*RecalcResult, error) {
	entries, err := ledgerRepo.ListByCustomer(ctx, customerID)
	if err != nil {
		return nil, err
	}
	changed := domledger.Recompute(entries)
	for _, c := range changed {
		if err := ledgerRepo.UpdateBalance(ctx, c.ID, c.Balance); err != nil {
			return nil, err
		}
	}

	// Releer lo escrito: una diferencia aquí es un bug del motor o del almacenamiento.
	stored, err := ledgerRepo.ListByCustomer(ctx, customerID)
	if err != nil {
		return nil, err
	}
	if err := domledger.Verify(customerID, stored); err != nil {
		e.logConsistency(err)
		return nil, err
	}

	res := &RecalcResult{
		CustomerID: customerID,
		Entries:    len(stored),
		Updated:    len(changed),
		Balance:    domledger.CurrentBalance(stored),
	}
	e.log.Info().
		Str("customer_id", customerID).
		Int("entries", res.Entries).
		Int("updated", res.Updated).
		Str("balance", res.Balance.String()).
		Msg("saldos recalculados")
	return res, nil
}

// Edit actualiza tipo, monto y observaciones del asiento y recalcula el cliente.
// CreatedAt no cambia, el asiento conserva su posición.
func (e *Engine) Edit(ctx context.Context, in EditInput) error {
	if err := validateMovement(in.EntryType, in.Amount); err != nil {
		return err
	}
	return e.txRunner.RunLedger(ctx, func(ledgerRepo repository.LedgerRepository) error {
		entry, err := e.lockedEntry(ctx, ledgerRepo, in.EntryID)
		if err != nil {
			return err
		}
		entry.EntryType = in.EntryType
		entry.Amount = in.Amount
		entry.Remarks = in.Remarks
		if err := ledgerRepo.Update(ctx, entry); err != nil {
			return err
		}
		_, err = e.recalculateInTx(ctx, ledgerRepo, entry.CustomerID)
		return err
	})
}

// Delete elimina el asiento y recalcula el cliente.
func (e *Engine) Delete(ctx context.Context, entryID string) error {
	return e.txRunner.RunLedger(ctx, func(ledgerRepo repository.LedgerRepository) error {
		entry, err := e.lockedEntry(ctx, ledgerRepo, entryID)
		if err != nil {
			return err
		}
		ok, err := ledgerRepo.Delete(ctx, entry.ID)
		if err != nil {
			return err
		}
		if !ok {
			return domain.NotFound("asiento", entryID)
		}
		_, err = e.recalculateInTx(ctx, ledgerRepo, entry.CustomerID)
		return err
	})
}

// lockedEntry busca el asiento, toma el lock de su cliente y lo relee bajo el lock.
func (e *Engine) lockedEntry(ctx context.Context, ledgerRepo repository.LedgerRepository, entryID string) (*entity.LedgerEntry, error) {
	if entryID == "" {
		return nil, domain.Invalid("id", "requerido")
	}
	entry, err := ledgerRepo.GetByID(ctx, entryID)
	if err != nil {
		return nil, err
	}
	if entry == nil {
		return nil, domain.NotFound("asiento", entryID)
	}
	if err := ledgerRepo.LockCustomer(ctx, entry.CustomerID); err != nil {
		return nil, err
	}
	entry, err = ledgerRepo.GetByID(ctx, entryID)
	if err != nil {
		return nil, err
	}
	if entry == nil {
		return nil, domain.NotFound("asiento", entryID)
	}
	return entry, nil
}

// EntriesFor devuelve los asientos del cliente, más antiguo primero, con el saldo actual.
func (e *Engine) EntriesFor(ctx context.Context, customerID string) (*Statement, error) {
	if customerID == "" {
		return nil, domain.Invalid("user_id", "requerido")
	}
	entries, err := e.repo.ListByCustomer(ctx, customerID)
	if err != nil {
		return nil, err
	}
	return &Statement{
		CustomerID: customerID,
		Entries:    entries,
		Balance:    domledger.CurrentBalance(entries),
	}, nil
}

// Verify audita la cadena de saldos almacenada sin modificarla.
func (e *Engine) Verify(ctx context.Context, customerID string) error {
	st, err := e.EntriesFor(ctx, customerID)
	if err != nil {
		return err
	}
	if err := domledger.Verify(customerID, st.Entries); err != nil {
		e.logConsistency(err)
		return err
	}
	return nil
}

func (e *Engine) logConsistency(err error) {
	var ce *domain.ConsistencyError
	if errors.As(err, &ce) {
		e.log.Error().
			Str("customer_id", ce.CustomerID).
			Str("entry_id", ce.EntryID).
			Str("expected", ce.Expected.String()).
			Str("stored", ce.Stored.String()).
			Msg("libro inconsistente")
		return
	}
	e.log.Error().Err(err).Msg("libro inconsistente")
}
