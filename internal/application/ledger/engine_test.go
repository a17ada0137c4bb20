package ledger_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/ak-ledger/internal/application/ledger"
	"github.com/jhoicas/ak-ledger/internal/domain"
	"github.com/jhoicas/ak-ledger/internal/domain/entity"
	"github.com/jhoicas/ak-ledger/internal/domain/repository"
	"github.com/jhoicas/ak-ledger/internal/infrastructure/memory"
)

// ── Helpers ──────────────────────────────────────────────────────────────────

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

// tickingClock avanza un segundo por llamada; seguro entre goroutines.
func tickingClock() func() time.Time {
	var mu sync.Mutex
	t := time.Date(2026, 10, 1, 9, 0, 0, 0, time.UTC)
	return func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		t = t.Add(time.Second)
		return t
	}
}

func newEngine(store *memory.Store) *ledger.Engine {
	return ledger.NewEngine(store, store.Ledger(), zerolog.Nop()).WithClock(tickingClock())
}

func appendAll(t *testing.T, e *ledger.Engine, customerID string, moves ...[2]string) []*entity.LedgerEntry {
	t.Helper()
	out := make([]*entity.LedgerEntry, 0, len(moves))
	for _, m := range moves {
		entry, err := e.Append(context.Background(), ledger.AppendInput{
			CustomerID: customerID,
			EntryType:  m[0],
			Amount:     d(m[1]),
		})
		require.NoError(t, err)
		out = append(out, entry)
	}
	return out
}

func storedBalances(t *testing.T, e *ledger.Engine, customerID string) []string {
	t.Helper()
	st, err := e.EntriesFor(context.Background(), customerID)
	require.NoError(t, err)
	out := make([]string, len(st.Entries))
	for i, entry := range st.Entries {
		out[i] = entry.Balance.String()
	}
	return out
}

var (
	inv = entity.LedgerEntryInvoice
	pay = entity.LedgerEntryPayment
)

// ── Append ───────────────────────────────────────────────────────────────────

func TestAppend_RoundTrip(t *testing.T) {
	e := newEngine(memory.New())
	entries := appendAll(t, e, "c1", [2]string{inv, "500"}, [2]string{pay, "200"}, [2]string{pay, "300"})

	assert.Equal(t, "500", entries[0].Balance.String())
	assert.Equal(t, "300", entries[1].Balance.String())
	assert.Equal(t, "0", entries[2].Balance.String())
	assert.Equal(t, []string{"500", "300", "0"}, storedBalances(t, e, "c1"))
}

func TestAppend_CadaSaldoEsPrevioMasMovimiento(t *testing.T) {
	e := newEngine(memory.New())
	moves := [][2]string{{inv, "120.50"}, {inv, "79.50"}, {pay, "50"}, {pay, "200"}, {inv, "0.01"}}
	prev := decimal.Zero
	for _, m := range moves {
		entry, err := e.Append(context.Background(), ledger.AppendInput{CustomerID: "c1", EntryType: m[0], Amount: d(m[1])})
		require.NoError(t, err)
		signed := d(m[1])
		if m[0] == pay {
			signed = signed.Neg()
		}
		assert.True(t, entry.Balance.Equal(prev.Add(signed)), "saldo %s tras %v", entry.Balance, m)
		prev = entry.Balance
	}
	require.NoError(t, e.Verify(context.Background(), "c1"))
}

func TestAppend_ClientesIndependientes(t *testing.T) {
	e := newEngine(memory.New())
	appendAll(t, e, "c1", [2]string{inv, "500"})
	appendAll(t, e, "c2", [2]string{inv, "70"})
	appendAll(t, e, "c1", [2]string{pay, "100"})

	assert.Equal(t, []string{"500", "400"}, storedBalances(t, e, "c1"))
	assert.Equal(t, []string{"70"}, storedBalances(t, e, "c2"))
}

func TestAppend_Validacion(t *testing.T) {
	e := newEngine(memory.New())
	ctx := context.Background()

	tests := []struct {
		name  string
		in    ledger.AppendInput
		field string
	}{
		{"monto cero", ledger.AppendInput{CustomerID: "c1", EntryType: inv, Amount: d("0")}, "amount"},
		{"monto negativo", ledger.AppendInput{CustomerID: "c1", EntryType: pay, Amount: d("-5")}, "amount"},
		{"tipo inválido", ledger.AppendInput{CustomerID: "c1", EntryType: "REFUND", Amount: d("5")}, "entry_type"},
		{"sin cliente", ledger.AppendInput{EntryType: inv, Amount: d("5")}, "user_id"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := e.Append(ctx, tt.in)
			require.Error(t, err)
			assert.True(t, errors.Is(err, domain.ErrInvalidInput))
			var verr *domain.ValidationError
			require.True(t, errors.As(err, &verr))
			assert.Equal(t, tt.field, verr.Field)
		})
	}
	assert.Empty(t, storedBalances(t, e, "c1"))
}

func TestAppend_Concurrente(t *testing.T) {
	e := newEngine(memory.New())
	const n = 50
	var wg sync.WaitGroup
	errs := make(chan error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := e.Append(context.Background(), ledger.AppendInput{CustomerID: "c1", EntryType: inv, Amount: d("10")})
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	st, err := e.EntriesFor(context.Background(), "c1")
	require.NoError(t, err)
	assert.Len(t, st.Entries, n)
	assert.Equal(t, "500", st.Balance.String())
	require.NoError(t, e.Verify(context.Background(), "c1"))
}

// ── Recalculate / Edit / Delete ──────────────────────────────────────────────

func TestRecalculate_Idempotente(t *testing.T) {
	store := memory.New()
	e := newEngine(store)
	ctx := context.Background()
	entries := appendAll(t, e, "c1", [2]string{inv, "500"}, [2]string{pay, "200"}, [2]string{inv, "100"})

	// Saldo almacenado corrupto
	require.NoError(t, store.Ledger().UpdateBalance(ctx, entries[1].ID, d("999")))
	err := e.Verify(ctx, "c1")
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrConsistency))

	first, err := e.Recalculate(ctx, "c1")
	require.NoError(t, err)
	assert.Equal(t, 3, first.Entries)
	assert.Equal(t, 1, first.Updated)
	assert.Equal(t, "400", first.Balance.String())
	after1 := storedBalances(t, e, "c1")

	second, err := e.Recalculate(ctx, "c1")
	require.NoError(t, err)
	assert.Equal(t, 0, second.Updated)
	assert.Equal(t, after1, storedBalances(t, e, "c1"))
	assert.Equal(t, []string{"500", "300", "400"}, after1)
}

func TestRecalculate_SinAsientos(t *testing.T) {
	e := newEngine(memory.New())
	res, err := e.Recalculate(context.Background(), "nadie")
	require.NoError(t, err)
	assert.Equal(t, 0, res.Entries)
	assert.True(t, res.Balance.IsZero())
}

func TestEdit_Recalcula(t *testing.T) {
	e := newEngine(memory.New())
	ctx := context.Background()
	entries := appendAll(t, e, "c1", [2]string{inv, "500"}, [2]string{pay, "200"})
	require.Equal(t, []string{"500", "300"}, storedBalances(t, e, "c1"))

	err := e.Edit(ctx, ledger.EditInput{EntryID: entries[1].ID, EntryType: pay, Amount: d("500"), Remarks: "corrección"})
	require.NoError(t, err)
	assert.Equal(t, []string{"500", "0"}, storedBalances(t, e, "c1"))

	st, err := e.EntriesFor(ctx, "c1")
	require.NoError(t, err)
	assert.Equal(t, entries[1].ID, st.Entries[1].ID, "el asiento editado conserva su posición")
	assert.True(t, st.Entries[1].CreatedAt.Equal(entries[1].CreatedAt))
	assert.Equal(t, "corrección", st.Entries[1].Remarks)
}

func TestEdit_CambiaTipo(t *testing.T) {
	e := newEngine(memory.New())
	entries := appendAll(t, e, "c1", [2]string{inv, "500"}, [2]string{pay, "200"}, [2]string{inv, "100"})
	require.NoError(t, e.Edit(context.Background(), ledger.EditInput{EntryID: entries[1].ID, EntryType: inv, Amount: d("200")}))
	assert.Equal(t, []string{"500", "700", "800"}, storedBalances(t, e, "c1"))
}

func TestEdit_Errores(t *testing.T) {
	e := newEngine(memory.New())
	ctx := context.Background()
	entries := appendAll(t, e, "c1", [2]string{inv, "500"})

	err := e.Edit(ctx, ledger.EditInput{EntryID: "no-existe", EntryType: pay, Amount: d("1")})
	assert.True(t, errors.Is(err, domain.ErrNotFound))

	err = e.Edit(ctx, ledger.EditInput{EntryID: entries[0].ID, EntryType: pay, Amount: d("0")})
	assert.True(t, errors.Is(err, domain.ErrInvalidInput))
	assert.Equal(t, []string{"500"}, storedBalances(t, e, "c1"), "una edición rechazada no cambia nada")
}

func TestDelete_Recalcula(t *testing.T) {
	e := newEngine(memory.New())
	ctx := context.Background()
	entries := appendAll(t, e, "c1", [2]string{inv, "500"}, [2]string{pay, "200"}, [2]string{inv, "100"})
	require.Equal(t, []string{"500", "300", "400"}, storedBalances(t, e, "c1"))

	require.NoError(t, e.Delete(ctx, entries[1].ID))
	assert.Equal(t, []string{"500", "600"}, storedBalances(t, e, "c1"))

	err := e.Delete(ctx, entries[1].ID)
	assert.True(t, errors.Is(err, domain.ErrNotFound))
}

func TestDelete_UltimoAsiento(t *testing.T) {
	e := newEngine(memory.New())
	entries := appendAll(t, e, "c1", [2]string{inv, "500"})
	require.NoError(t, e.Delete(context.Background(), entries[0].ID))

	st, err := e.EntriesFor(context.Background(), "c1")
	require.NoError(t, err)
	assert.Empty(t, st.Entries)
	assert.True(t, st.Balance.IsZero())
}

// ── Consistencia ─────────────────────────────────────────────────────────────

// lossyLedgerRepo descarta las escrituras de saldo, como un almacenamiento defectuoso.
type lossyLedgerRepo struct {
	repository.LedgerRepository
}

func (lossyLedgerRepo) UpdateBalance(context.Context, string, decimal.Decimal) error { return nil }

type lossyRunner struct{ store *memory.Store }

func (r lossyRunner) RunLedger(ctx context.Context, fn func(repository.LedgerRepository) error) error {
	return r.store.RunLedger(ctx, func(repo repository.LedgerRepository) error {
		return fn(lossyLedgerRepo{repo})
	})
}

func TestRecalculate_DetectaEscrituraPerdida(t *testing.T) {
	store := memory.New()
	ctx := context.Background()
	entries := appendAll(t, newEngine(store), "c1", [2]string{inv, "500"}, [2]string{pay, "200"})
	require.NoError(t, store.Ledger().UpdateBalance(ctx, entries[1].ID, d("1")))

	e := ledger.NewEngine(lossyRunner{store}, store.Ledger(), zerolog.Nop())
	_, err := e.Recalculate(ctx, "c1")
	require.Error(t, err)
	var ce *domain.ConsistencyError
	require.True(t, errors.As(err, &ce))
	assert.Equal(t, entries[1].ID, ce.EntryID)
	assert.Equal(t, "300", ce.Expected.String())
}
