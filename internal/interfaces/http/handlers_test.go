package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/ak-ledger/internal/application/billing"
	"github.com/jhoicas/ak-ledger/internal/application/dto"
	"github.com/jhoicas/ak-ledger/internal/application/ledger"
	"github.com/jhoicas/ak-ledger/internal/application/usecase"
	"github.com/jhoicas/ak-ledger/internal/domain/entity"
	"github.com/jhoicas/ak-ledger/internal/infrastructure/memory"
	apphttp "github.com/jhoicas/ak-ledger/internal/interfaces/http"
	pkgjwt "github.com/jhoicas/ak-ledger/pkg/jwt"
)

// ──────────────────────────────────────────────────────────────────────────────
// Helpers
// ──────────────────────────────────────────────────────────────────────────────

type apiFixture struct {
	app   *fiber.App
	store *memory.Store
}

// newAPI arma la API completa sobre el almacenamiento en memoria. Con secret vacío las
// rutas /api quedan sin autenticación.
func newAPI(t *testing.T, secret string) *apiFixture {
	t.Helper()
	store := memory.New()
	engine := ledger.NewEngine(store, store.Ledger(), zerolog.Nop())
	app := fiber.New()
	apphttp.Router(app, apphttp.RouterDeps{
		InvoiceUC:  billing.NewInvoiceUseCase(store, store.Invoices(), engine, zerolog.Nop()),
		CustomerUC: billing.NewCustomerUseCase(store.Customers()),
		VarietyUC:  usecase.NewVarietyUseCase(store.Varieties()),
		Ledger:     engine,
		Log:        zerolog.Nop(),
		JWTSecret:  secret,
		JWTIssuer:  testIssuer,
	})

	for _, v := range []*entity.Variety{
		{ID: "v-silk", Name: "Silk", Category: "Tela", UnitPrice: decimal.NewFromInt(500), QtyOnHand: 10, ReorderLevel: 4},
		{ID: "v-linen", Name: "Linen", Category: "Tela", UnitPrice: decimal.NewFromInt(300), QtyOnHand: 2, ReorderLevel: 6},
	} {
		require.NoError(t, store.Varieties().Create(context.Background(), v))
	}
	return &apiFixture{app: app, store: store}
}

func (f *apiFixture) do(t *testing.T, method, path string, body interface{}, auth string) *http.Response {
	t.Helper()
	var r io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		r = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, r)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if auth != "" {
		req.Header.Set("Authorization", auth)
	}
	resp, err := f.app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func decode(t *testing.T, resp *http.Response, out interface{}) {
	t.Helper()
	defer resp.Body.Close()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
}

func creditInvoice(paidNow string) map[string]interface{} {
	return map[string]interface{}{
		"cust_name":  "Ana Pérez",
		"cust_phone": "3001234567",
		"items": []map[string]interface{}{
			{"variety_id": "v-silk", "qty": 2, "unit_price": "500"},
		},
		"paid_now": paidNow,
		"credit":   map[string]interface{}{"enabled": true, "due_at": "2026-12-01"},
	}
}

// createInvoice crea una factura y devuelve (invoice_id, customer_id).
func (f *apiFixture) createInvoice(t *testing.T, body map[string]interface{}) (string, string) {
	t.Helper()
	resp := f.do(t, http.MethodPost, "/api/invoices/", body, "")
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var created dto.InvoiceIDResponse
	decode(t, resp, &created)
	require.NotEmpty(t, created.InvoiceID)

	resp = f.do(t, http.MethodGet, "/api/invoices/"+created.InvoiceID, nil, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var inv dto.InvoiceResponse
	decode(t, resp, &inv)
	return inv.ID, inv.CustomerID
}

func (f *apiFixture) statement(t *testing.T, customerID string) dto.LedgerStatementResponse {
	t.Helper()
	resp := f.do(t, http.MethodGet, "/api/ledger/entries?user_id="+customerID, nil, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var st dto.LedgerStatementResponse
	decode(t, resp, &st)
	return st
}

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

// ──────────────────────────────────────────────────────────────────────────────
// Health
// ──────────────────────────────────────────────────────────────────────────────

func TestHealth(t *testing.T) {
	f := newAPI(t, "")
	resp := f.do(t, http.MethodGet, "/health", nil, "")
	var body map[string]string
	decode(t, resp, &body)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "ok", body["status"])
}

// ──────────────────────────────────────────────────────────────────────────────
// Facturas
// ──────────────────────────────────────────────────────────────────────────────

func TestInvoice_CreditoGeneraAsiento(t *testing.T) {
	f := newAPI(t, "")
	invoiceID, customerID := f.createInvoice(t, creditInvoice("0"))

	resp := f.do(t, http.MethodGet, "/api/invoices/"+invoiceID, nil, "")
	var inv dto.InvoiceResponse
	decode(t, resp, &inv)
	assert.Equal(t, entity.InvoiceStatusCredit, inv.Status)
	assert.True(t, dec("1000").Equal(inv.Total), "total = 2 x 500")
	assert.Equal(t, "2026-12-01", inv.DueAt)
	require.Len(t, inv.Items, 1)

	st := f.statement(t, customerID)
	require.Len(t, st.Entries, 1, "una factura a crédito genera un asiento INVOICE")
	assert.Equal(t, entity.LedgerEntryInvoice, st.Entries[0].EntryType)
	assert.Equal(t, invoiceID, st.Entries[0].InvoiceID)
	assert.True(t, dec("1000").Equal(st.Balance))
}

func TestInvoice_ValidacionDevuelveCampos(t *testing.T) {
	f := newAPI(t, "")
	body := creditInvoice("0")
	body["cust_name"] = ""

	resp := f.do(t, http.MethodPost, "/api/invoices/", body, "")
	var errBody dto.ErrorResponse
	decode(t, resp, &errBody)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "VALIDATION", errBody.Code)
	assert.Contains(t, errBody.Fields, "cust_name")
}

func TestInvoice_CuerpoInvalido(t *testing.T) {
	f := newAPI(t, "")
	req := httptest.NewRequest(http.MethodPost, "/api/invoices/", bytes.NewBufferString("{no-json"))
	req.Header.Set("Content-Type", "application/json")
	resp, err := f.app.Test(req, -1)
	require.NoError(t, err)

	var errBody dto.ErrorResponse
	decode(t, resp, &errBody)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "INVALID_BODY", errBody.Code)
}

func TestInvoice_VariedadInexistente_404(t *testing.T) {
	f := newAPI(t, "")
	body := creditInvoice("0")
	body["items"] = []map[string]interface{}{{"variety_id": "no-existe", "qty": 1, "unit_price": "10"}}

	resp := f.do(t, http.MethodPost, "/api/invoices/", body, "")
	resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestInvoice_NoEncontrada_404(t *testing.T) {
	f := newAPI(t, "")
	resp := f.do(t, http.MethodGet, "/api/invoices/no-existe", nil, "")
	var errBody dto.ErrorResponse
	decode(t, resp, &errBody)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "NOT_FOUND", errBody.Code)
}

func TestInvoice_AbonoNoTocaElLibro(t *testing.T) {
	f := newAPI(t, "")
	invoiceID, customerID := f.createInvoice(t, creditInvoice("0"))

	resp := f.do(t, http.MethodPost, "/api/invoices/"+invoiceID+"/payments", map[string]string{"amount": "400"}, "")
	var pay dto.PaymentResponse
	decode(t, resp, &pay)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, entity.InvoiceStatusCredit, pay.Status)
	assert.True(t, dec("400").Equal(pay.PaidAmount))

	resp = f.do(t, http.MethodPost, "/api/invoices/"+invoiceID+"/payments", map[string]string{"amount": "600"}, "")
	decode(t, resp, &pay)
	assert.Equal(t, entity.InvoiceStatusPaid, pay.Status)

	st := f.statement(t, customerID)
	assert.Len(t, st.Entries, 1, "el abono sobre la factura no crea asiento")
	assert.True(t, dec("1000").Equal(st.Balance))

	resp = f.do(t, http.MethodPost, "/api/invoices/"+invoiceID+"/payments", map[string]string{"amount": "0"}, "")
	resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestInvoice_EliminarBorraAsientos(t *testing.T) {
	f := newAPI(t, "")
	invoiceID, customerID := f.createInvoice(t, creditInvoice("0"))

	resp := f.do(t, http.MethodDelete, "/api/invoices/"+invoiceID, nil, "")
	resp.Body.Close()
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	st := f.statement(t, customerID)
	assert.Empty(t, st.Entries)

	resp = f.do(t, http.MethodGet, "/api/invoices/"+invoiceID, nil, "")
	resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

// ──────────────────────────────────────────────────────────────────────────────
// Libro
// ──────────────────────────────────────────────────────────────────────────────

func TestLedger_CicloCompleto(t *testing.T) {
	f := newAPI(t, "")
	_, customerID := f.createInvoice(t, creditInvoice("0"))

	resp := f.do(t, http.MethodPost, "/api/ledger/", map[string]string{
		"user_id": customerID, "entry_type": "PAYMENT", "amount": "300", "remarks": "efectivo",
	}, "")
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var payment dto.LedgerEntryResponse
	decode(t, resp, &payment)
	assert.True(t, dec("700").Equal(payment.Balance), "1000 - 300")

	resp = f.do(t, http.MethodPut, "/api/ledger/"+payment.ID, map[string]string{
		"entry_type": "PAYMENT", "amount": "1000",
	}, "")
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	st := f.statement(t, customerID)
	require.Len(t, st.Entries, 2)
	assert.True(t, dec("0").Equal(st.Balance))

	resp = f.do(t, http.MethodDelete, "/api/ledger/"+payment.ID, nil, "")
	resp.Body.Close()
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	st = f.statement(t, customerID)
	require.Len(t, st.Entries, 1)
	assert.True(t, dec("1000").Equal(st.Balance))
}

func TestLedger_Validaciones(t *testing.T) {
	f := newAPI(t, "")

	resp := f.do(t, http.MethodPost, "/api/ledger/", map[string]string{
		"user_id": "c-1", "entry_type": "REFUND", "amount": "10",
	}, "")
	var errBody dto.ErrorResponse
	decode(t, resp, &errBody)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Contains(t, errBody.Fields, "entry_type")

	resp = f.do(t, http.MethodPost, "/api/ledger/", map[string]string{
		"user_id": "c-1", "entry_type": "PAYMENT", "amount": "-5",
	}, "")
	decode(t, resp, &errBody)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Contains(t, errBody.Fields, "amount")

	resp = f.do(t, http.MethodGet, "/api/ledger/entries", nil, "")
	resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode, "user_id es obligatorio")

	resp = f.do(t, http.MethodDelete, "/api/ledger/no-existe", nil, "")
	resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestLedger_RecalcularCorrigeSaldos(t *testing.T) {
	f := newAPI(t, "")
	_, customerID := f.createInvoice(t, creditInvoice("0"))
	st := f.statement(t, customerID)
	require.Len(t, st.Entries, 1)
	require.NoError(t, f.store.Ledger().UpdateBalance(context.Background(), st.Entries[0].ID, dec("1")))

	resp := f.do(t, http.MethodPost, "/api/ledger/customers/"+customerID+"/recalculate", nil, "")
	var res dto.RecalculateResponse
	decode(t, resp, &res)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, 1, res.Entries)
	assert.Equal(t, 1, res.Updated)
	assert.True(t, dec("1000").Equal(res.Balance))

	resp = f.do(t, http.MethodPost, "/api/ledger/customers/"+customerID+"/recalculate", nil, "")
	decode(t, resp, &res)
	assert.Equal(t, 0, res.Updated, "recalcular dos veces no cambia nada")
}

// ──────────────────────────────────────────────────────────────────────────────
// Clientes y variedades
// ──────────────────────────────────────────────────────────────────────────────

func TestCustomer_EliminarConFacturas_409(t *testing.T) {
	f := newAPI(t, "")
	_, customerID := f.createInvoice(t, creditInvoice("0"))

	resp := f.do(t, http.MethodDelete, "/api/customers/"+customerID, nil, "")
	var errBody dto.ErrorResponse
	decode(t, resp, &errBody)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Equal(t, "CONFLICT", errBody.Code)
}

func TestCustomer_HistorialPorVariedad(t *testing.T) {
	f := newAPI(t, "")
	_, customerID := f.createInvoice(t, creditInvoice("0"))
	_, again := f.createInvoice(t, creditInvoice("100"))
	require.Equal(t, customerID, again, "mismo nombre y teléfono, mismo cliente")

	resp := f.do(t, http.MethodGet, "/api/customers/"+customerID+"/varieties", nil, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var hist []dto.VarietyPurchaseResponse
	decode(t, resp, &hist)
	require.Len(t, hist, 1)
	assert.Equal(t, "v-silk", hist[0].VarietyID)
	assert.Equal(t, "Silk", hist[0].Name)
	assert.Equal(t, 4, hist[0].TotalQty)
	assert.True(t, dec("2000").Equal(hist[0].TotalSpent), "2 facturas × 2 × 500")
	assert.False(t, hist[0].LastPurchase.IsZero())

	resp = f.do(t, http.MethodGet, "/api/customers/no-existe/varieties", nil, "")
	var errBody dto.ErrorResponse
	decode(t, resp, &errBody)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "NOT_FOUND", errBody.Code)
}

func TestVariety_StockBajoYEntrada(t *testing.T) {
	f := newAPI(t, "")

	resp := f.do(t, http.MethodGet, "/api/varieties/low-stock", nil, "")
	var low []dto.ReorderSuggestionDTO
	decode(t, resp, &low)
	require.Len(t, low, 1)
	assert.Equal(t, "v-linen", low[0].VarietyID)
	assert.Equal(t, 9, low[0].IdealStock)
	assert.Equal(t, 7, low[0].SuggestedOrderQty)

	resp = f.do(t, http.MethodPost, "/api/varieties/stock-in", map[string]interface{}{
		"variety_id": "v-linen", "add_qty": 8,
	}, "")
	var v dto.VarietyResponse
	decode(t, resp, &v)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, 10, v.QtyOnHand)

	resp = f.do(t, http.MethodGet, "/api/varieties/low-stock", nil, "")
	decode(t, resp, &low)
	assert.Empty(t, low)
}

// ──────────────────────────────────────────────────────────────────────────────
// Autenticación en el router
// ──────────────────────────────────────────────────────────────────────────────

func TestRouter_ConSecretExigeToken(t *testing.T) {
	f := newAPI(t, testJWTSecret)

	resp := f.do(t, http.MethodGet, "/api/varieties/v-silk", nil, "")
	resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp = f.do(t, http.MethodGet, "/health", nil, "")
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode, "health no requiere token")

	resp = f.do(t, http.MethodGet, "/api/varieties/v-silk", nil, tokenForRole(t, pkgjwt.RoleOperator))
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp = f.do(t, http.MethodPost, "/api/ledger/customers/c-1/recalculate", nil, tokenForRole(t, pkgjwt.RoleOperator))
	resp.Body.Close()
	assert.Equal(t, http.StatusForbidden, resp.StatusCode, "recalcular es solo para admin")

	resp = f.do(t, http.MethodPost, "/api/ledger/customers/c-1/recalculate", nil, tokenForRole(t, pkgjwt.RoleAdmin))
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}
