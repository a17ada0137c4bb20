package memory

import (
	"context"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/ak-ledger/internal/domain"
	"github.com/jhoicas/ak-ledger/internal/domain/entity"
	"github.com/jhoicas/ak-ledger/internal/domain/repository"
)

var (
	_ repository.CustomerRepository = (*CustomerRepo)(nil)
	_ repository.VarietyRepository  = (*VarietyRepo)(nil)
	_ repository.InvoiceRepository  = (*InvoiceRepo)(nil)
	_ repository.LedgerRepository   = (*LedgerRepo)(nil)
)

// ── Clientes ─────────────────────────────────────────────────────────────────

// CustomerRepo clientes en memoria. (nombre, teléfono) es único.
type CustomerRepo struct{ view }

func (r *CustomerRepo) FindOrCreate(_ context.Context, customer *entity.Customer) (*entity.Customer, error) {
	st, unlock := r.acquire()
	defer unlock()
	for _, c := range st.customers {
		if c.Name == customer.Name && c.Phone == customer.Phone {
			return cloneCustomer(c), nil
		}
	}
	st.customers[customer.ID] = cloneCustomer(customer)
	return cloneCustomer(customer), nil
}

func (r *CustomerRepo) GetByID(_ context.Context, id string) (*entity.Customer, error) {
	st, unlock := r.acquire()
	defer unlock()
	c, ok := st.customers[id]
	if !ok {
		return nil, nil
	}
	return cloneCustomer(c), nil
}

func (r *CustomerRepo) Update(_ context.Context, customer *entity.Customer) error {
	st, unlock := r.acquire()
	defer unlock()
	for id, c := range st.customers {
		if id != customer.ID && c.Name == customer.Name && c.Phone == customer.Phone {
			return domain.ErrDuplicate
		}
	}
	if _, ok := st.customers[customer.ID]; ok {
		st.customers[customer.ID] = cloneCustomer(customer)
	}
	return nil
}

// Delete falla con ErrConflict si el cliente tiene facturas o asientos.
func (r *CustomerRepo) Delete(_ context.Context, id string) (bool, error) {
	st, unlock := r.acquire()
	defer unlock()
	if _, ok := st.customers[id]; !ok {
		return false, nil
	}
	for _, inv := range st.invoices {
		if inv.CustomerID == id {
			return false, domain.ErrConflict
		}
	}
	for _, e := range st.ledger {
		if e.CustomerID == id {
			return false, domain.ErrConflict
		}
	}
	delete(st.customers, id)
	return true, nil
}

func (r *CustomerRepo) VarietyHistory(_ context.Context, customerID string) ([]*entity.VarietyPurchase, error) {
	st, unlock := r.acquire()
	defer unlock()
	byVariety := make(map[string]*entity.VarietyPurchase)
	for _, inv := range st.invoices {
		if inv.CustomerID != customerID {
			continue
		}
		for _, it := range st.items[inv.ID] {
			p, ok := byVariety[it.VarietyID]
			if !ok {
				p = &entity.VarietyPurchase{VarietyID: it.VarietyID}
				if v, ok := st.varieties[it.VarietyID]; ok {
					p.Name, p.Category = v.Name, v.Category
				}
				byVariety[it.VarietyID] = p
			}
			p.TotalQty += it.Qty
			p.TotalSpent = p.TotalSpent.Add(it.Subtotal())
			if inv.IssuedAt.After(p.LastPurchase) {
				p.LastPurchase = inv.IssuedAt
			}
		}
	}
	list := make([]*entity.VarietyPurchase, 0, len(byVariety))
	for _, p := range byVariety {
		list = append(list, p)
	}
	sort.Slice(list, func(i, j int) bool {
		if !list[i].LastPurchase.Equal(list[j].LastPurchase) {
			return list[i].LastPurchase.After(list[j].LastPurchase)
		}
		return list[i].Name < list[j].Name
	})
	return list, nil
}

// ── Variedades ───────────────────────────────────────────────────────────────

// VarietyRepo catálogo en memoria.
type VarietyRepo struct{ view }

func (r *VarietyRepo) Create(_ context.Context, v *entity.Variety) error {
	st, unlock := r.acquire()
	defer unlock()
	if _, ok := st.varieties[v.ID]; ok {
		return domain.ErrDuplicate
	}
	st.varieties[v.ID] = cloneVariety(v)
	return nil
}

func (r *VarietyRepo) GetByID(_ context.Context, id string) (*entity.Variety, error) {
	st, unlock := r.acquire()
	defer unlock()
	v, ok := st.varieties[id]
	if !ok {
		return nil, nil
	}
	return cloneVariety(v), nil
}

func (r *VarietyRepo) Update(_ context.Context, v *entity.Variety) error {
	st, unlock := r.acquire()
	defer unlock()
	if _, ok := st.varieties[v.ID]; ok {
		st.varieties[v.ID] = cloneVariety(v)
	}
	return nil
}

func (r *VarietyRepo) AddStock(_ context.Context, id string, addQty int) (bool, error) {
	st, unlock := r.acquire()
	defer unlock()
	v, ok := st.varieties[id]
	if !ok {
		return false, nil
	}
	v.QtyOnHand += addQty
	return true, nil
}

func (r *VarietyRepo) ListBelowReorder(_ context.Context) ([]*entity.Variety, error) {
	st, unlock := r.acquire()
	defer unlock()
	var list []*entity.Variety
	for _, v := range st.varieties {
		if v.NeedsReorder() {
			list = append(list, cloneVariety(v))
		}
	}
	sort.Slice(list, func(i, j int) bool {
		gi, gj := list[i].QtyOnHand-list[i].ReorderLevel, list[j].QtyOnHand-list[j].ReorderLevel
		if gi != gj {
			return gi < gj
		}
		return list[i].Name < list[j].Name
	})
	return list, nil
}

// Delete falla con ErrConflict si alguna línea de factura referencia la variedad.
func (r *VarietyRepo) Delete(_ context.Context, id string) (bool, error) {
	st, unlock := r.acquire()
	defer unlock()
	if _, ok := st.varieties[id]; !ok {
		return false, nil
	}
	for _, list := range st.items {
		for _, it := range list {
			if it.VarietyID == id {
				return false, domain.ErrConflict
			}
		}
	}
	delete(st.varieties, id)
	return true, nil
}

// ── Facturas ─────────────────────────────────────────────────────────────────

// InvoiceRepo facturas y líneas en memoria.
type InvoiceRepo struct{ view }

func (r *InvoiceRepo) Create(_ context.Context, inv *entity.Invoice) error {
	st, unlock := r.acquire()
	defer unlock()
	if _, ok := st.invoices[inv.ID]; ok {
		return domain.ErrDuplicate
	}
	st.invoices[inv.ID] = cloneInvoice(inv)
	return nil
}

func (r *InvoiceRepo) CreateItem(_ context.Context, item *entity.InvoiceItem) error {
	st, unlock := r.acquire()
	defer unlock()
	if _, ok := st.invoices[item.InvoiceID]; !ok {
		return domain.NotFound("factura", item.InvoiceID)
	}
	if _, ok := st.varieties[item.VarietyID]; !ok {
		return domain.NotFound("variedad", item.VarietyID)
	}
	st.items[item.InvoiceID] = append(st.items[item.InvoiceID], cloneItem(item))
	return nil
}

func (r *InvoiceRepo) Update(_ context.Context, inv *entity.Invoice) error {
	st, unlock := r.acquire()
	defer unlock()
	if _, ok := st.invoices[inv.ID]; ok {
		st.invoices[inv.ID] = cloneInvoice(inv)
	}
	return nil
}

func (r *InvoiceRepo) GetByID(_ context.Context, id string) (*entity.Invoice, error) {
	st, unlock := r.acquire()
	defer unlock()
	inv, ok := st.invoices[id]
	if !ok {
		return nil, nil
	}
	return cloneInvoice(inv), nil
}

// GetForUpdate equivale a GetByID: la transacción ya tiene el store en exclusiva.
func (r *InvoiceRepo) GetForUpdate(ctx context.Context, id string) (*entity.Invoice, error) {
	return r.GetByID(ctx, id)
}

func (r *InvoiceRepo) GetItems(_ context.Context, invoiceID string) ([]*entity.InvoiceItem, error) {
	st, unlock := r.acquire()
	defer unlock()
	list := st.items[invoiceID]
	out := make([]*entity.InvoiceItem, len(list))
	for i, it := range list {
		out[i] = cloneItem(it)
	}
	return out, nil
}

func (r *InvoiceRepo) DeleteItems(_ context.Context, invoiceID string) error {
	st, unlock := r.acquire()
	defer unlock()
	delete(st.items, invoiceID)
	return nil
}

// Delete falla con ErrConflict si aún quedan líneas o asientos que la referencian.
func (r *InvoiceRepo) Delete(_ context.Context, id string) (bool, error) {
	st, unlock := r.acquire()
	defer unlock()
	if _, ok := st.invoices[id]; !ok {
		return false, nil
	}
	if len(st.items[id]) > 0 {
		return false, domain.ErrConflict
	}
	for _, e := range st.ledger {
		if e.InvoiceID == id {
			return false, domain.ErrConflict
		}
	}
	delete(st.invoices, id)
	return true, nil
}

// ── Libro ────────────────────────────────────────────────────────────────────

// LedgerRepo libro de clientes en memoria. Seq se asigna de forma creciente al crear.
type LedgerRepo struct{ view }

// LockCustomer no hace nada: las transacciones del store ya son exclusivas.
func (r *LedgerRepo) LockCustomer(_ context.Context, _ string) error { return nil }

func (r *LedgerRepo) Create(_ context.Context, e *entity.LedgerEntry) error {
	st, unlock := r.acquire()
	defer unlock()
	if _, ok := st.ledger[e.ID]; ok {
		return domain.ErrDuplicate
	}
	if e.InvoiceID != "" {
		if _, ok := st.invoices[e.InvoiceID]; !ok {
			return domain.NotFound("factura", e.InvoiceID)
		}
	}
	st.seq++
	e.Seq = st.seq
	st.ledger[e.ID] = cloneEntry(e)
	return nil
}

func (r *LedgerRepo) GetByID(_ context.Context, id string) (*entity.LedgerEntry, error) {
	st, unlock := r.acquire()
	defer unlock()
	e, ok := st.ledger[id]
	if !ok {
		return nil, nil
	}
	return cloneEntry(e), nil
}

func (r *LedgerRepo) Last(ctx context.Context, customerID string) (*entity.LedgerEntry, error) {
	list, err := r.ListByCustomer(ctx, customerID)
	if err != nil || len(list) == 0 {
		return nil, err
	}
	return list[len(list)-1], nil
}

func (r *LedgerRepo) ListByCustomer(_ context.Context, customerID string) ([]*entity.LedgerEntry, error) {
	st, unlock := r.acquire()
	defer unlock()
	var list []*entity.LedgerEntry
	for _, e := range st.ledger {
		if e.CustomerID == customerID {
			list = append(list, cloneEntry(e))
		}
	}
	sort.Slice(list, func(i, j int) bool {
		if !list[i].CreatedAt.Equal(list[j].CreatedAt) {
			return list[i].CreatedAt.Before(list[j].CreatedAt)
		}
		return list[i].Seq < list[j].Seq
	})
	return list, nil
}

func (r *LedgerRepo) Update(_ context.Context, e *entity.LedgerEntry) error {
	st, unlock := r.acquire()
	defer unlock()
	cur, ok := st.ledger[e.ID]
	if !ok {
		return nil
	}
	cur.EntryType = e.EntryType
	cur.Amount = e.Amount
	cur.Remarks = e.Remarks
	return nil
}

func (r *LedgerRepo) UpdateBalance(_ context.Context, id string, balance decimal.Decimal) error {
	st, unlock := r.acquire()
	defer unlock()
	if cur, ok := st.ledger[id]; ok {
		cur.Balance = balance
	}
	return nil
}

func (r *LedgerRepo) Delete(_ context.Context, id string) (bool, error) {
	st, unlock := r.acquire()
	defer unlock()
	if _, ok := st.ledger[id]; !ok {
		return false, nil
	}
	delete(st.ledger, id)
	return true, nil
}

func (r *LedgerRepo) DeleteByInvoice(_ context.Context, invoiceID string) (int64, error) {
	st, unlock := r.acquire()
	defer unlock()
	var n int64
	for id, e := range st.ledger {
		if e.InvoiceID == invoiceID {
			delete(st.ledger, id)
			n++
		}
	}
	return n, nil
}

