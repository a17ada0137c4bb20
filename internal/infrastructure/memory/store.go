// Package memory implementa los repositorios y el TxRunner en memoria (tests y modo demo).
package memory

import (
	"context"
	"sync"

	"github.com/jhoicas/ak-ledger/internal/application/billing"
	"github.com/jhoicas/ak-ledger/internal/application/ledger"
	"github.com/jhoicas/ak-ledger/internal/domain/entity"
	"github.com/jhoicas/ak-ledger/internal/domain/repository"
)

var _ ledger.TxRunner = (*Store)(nil)
var _ billing.BillingTxRunner = (*Store)(nil)

// Store guarda todo el estado detrás de un único mutex. Una transacción trabaja sobre una
// copia y la publica solo si fn termina sin error; mientras tanto el mutex queda tomado,
// así que las transacciones se ejecutan de a una.
type Store struct {
	mu sync.Mutex
	st *state
}

type state struct {
	customers map[string]*entity.Customer
	varieties map[string]*entity.Variety
	invoices  map[string]*entity.Invoice
	items     map[string][]*entity.InvoiceItem // por invoice_id, en orden de alta
	ledger    map[string]*entity.LedgerEntry
	seq       int64
}

// New crea un store vacío.
func New() *Store {
	return &Store{st: newState()}
}

func newState() *state {
	return &state{
		customers: make(map[string]*entity.Customer),
		varieties: make(map[string]*entity.Variety),
		invoices:  make(map[string]*entity.Invoice),
		items:     make(map[string][]*entity.InvoiceItem),
		ledger:    make(map[string]*entity.LedgerEntry),
	}
}

func (s *state) clone() *state {
	c := newState()
	c.seq = s.seq
	for k, v := range s.customers {
		c.customers[k] = cloneCustomer(v)
	}
	for k, v := range s.varieties {
		c.varieties[k] = cloneVariety(v)
	}
	for k, v := range s.invoices {
		c.invoices[k] = cloneInvoice(v)
	}
	for k, list := range s.items {
		cp := make([]*entity.InvoiceItem, len(list))
		for i, it := range list {
			cp[i] = cloneItem(it)
		}
		c.items[k] = cp
	}
	for k, v := range s.ledger {
		c.ledger[k] = cloneEntry(v)
	}
	return c
}

// RunLedger ejecuta fn con el repo del libro sobre una copia del estado.
func (s *Store) RunLedger(ctx context.Context, fn func(ledgerRepo repository.LedgerRepository) error) error {
	return s.run(ctx, func(v view) error {
		return fn(&LedgerRepo{v})
	})
}

// RunBilling ejecuta fn con los cuatro repos sobre una copia del estado.
func (s *Store) RunBilling(ctx context.Context, fn func(
	customerRepo repository.CustomerRepository,
	varietyRepo repository.VarietyRepository,
	invoiceRepo repository.InvoiceRepository,
	ledgerRepo repository.LedgerRepository,
) error) error {
	return s.run(ctx, func(v view) error {
		return fn(&CustomerRepo{v}, &VarietyRepo{v}, &InvoiceRepo{v}, &LedgerRepo{v})
	})
}

func (s *Store) run(ctx context.Context, fn func(v view) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	work := s.st.clone()
	if err := fn(view{tx: work}); err != nil {
		return err
	}
	s.st = work
	return nil
}

// Customers repo fuera de transacción (cada llamada es atómica por sí sola).
func (s *Store) Customers() *CustomerRepo { return &CustomerRepo{view{s: s}} }

// Varieties repo fuera de transacción.
func (s *Store) Varieties() *VarietyRepo { return &VarietyRepo{view{s: s}} }

// Invoices repo fuera de transacción.
func (s *Store) Invoices() *InvoiceRepo { return &InvoiceRepo{view{s: s}} }

// Ledger repo fuera de transacción.
func (s *Store) Ledger() *LedgerRepo { return &LedgerRepo{view{s: s}} }

// view da acceso al estado: el de la transacción en curso (tx) o el publicado, bajo el mutex.
type view struct {
	s  *Store
	tx *state
}

func (v view) acquire() (*state, func()) {
	if v.tx != nil {
		return v.tx, func() {}
	}
	v.s.mu.Lock()
	return v.s.st, v.s.mu.Unlock
}

func cloneCustomer(c *entity.Customer) *entity.Customer {
	cp := *c
	return &cp
}

func cloneVariety(v *entity.Variety) *entity.Variety {
	cp := *v
	return &cp
}

func cloneInvoice(inv *entity.Invoice) *entity.Invoice {
	cp := *inv
	if inv.DueAt != nil {
		d := *inv.DueAt
		cp.DueAt = &d
	}
	return &cp
}

func cloneItem(it *entity.InvoiceItem) *entity.InvoiceItem {
	cp := *it
	return &cp
}

func cloneEntry(e *entity.LedgerEntry) *entity.LedgerEntry {
	cp := *e
	return &cp
}
