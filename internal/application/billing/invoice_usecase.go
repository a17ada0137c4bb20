package billing

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/ak-ledger/internal/application/dto"
	"github.com/jhoicas/ak-ledger/internal/application/ledger"
	"github.com/jhoicas/ak-ledger/internal/domain"
	"github.com/jhoicas/ak-ledger/internal/domain/entity"
	"github.com/jhoicas/ak-ledger/internal/domain/invoicing"
	"github.com/jhoicas/ak-ledger/internal/domain/repository"
)

// CreditInvoiceRemarks observación del asiento automático de una factura a crédito.
const CreditInvoiceRemarks = "Auto entry for credit invoice"

const dueDateLayout = "2006-01-02"

// InvoiceUseCase flujo de vida de la factura: crear, abonar, editar y eliminar.
// Cada operación que escribe corre en una sola transacción (BillingTxRunner).
type InvoiceUseCase struct {
	txRunner    BillingTxRunner
	invoiceRepo repository.InvoiceRepository
	ledger      LedgerAppender
	log         zerolog.Logger
	now         func() time.Time
}

// NewInvoiceUseCase construye el caso de uso. invoiceRepo se usa para lecturas fuera de tx.
func NewInvoiceUseCase(
	txRunner BillingTxRunner,
	invoiceRepo repository.InvoiceRepository,
	ledgerAppender LedgerAppender,
	log zerolog.Logger,
) *InvoiceUseCase {
	return &InvoiceUseCase{
		txRunner:    txRunner,
		invoiceRepo: invoiceRepo,
		ledger:      ledgerAppender,
		log:         log.With().Str("component", "billing").Logger(),
		now:         time.Now,
	}
}

// CreateInvoice busca o crea el cliente, calcula el total, resuelve el estado, guarda
// cabecera y líneas y, si la factura queda a crédito, registra en el libro un asiento
// INVOICE por el total completo (no por total - pagado).
func (uc *InvoiceUseCase) CreateInvoice(ctx context.Context, in dto.InvoiceRequest) (*dto.InvoiceResponse, error) {
	terms, err := validateInvoiceRequest(in)
	if err != nil {
		return nil, err
	}

	now := uc.now()
	var inv *entity.Invoice
	var items []*entity.InvoiceItem

	err = uc.txRunner.RunBilling(ctx, func(
		customerRepo repository.CustomerRepository,
		varietyRepo repository.VarietyRepository,
		invoiceRepo repository.InvoiceRepository,
		ledgerRepo repository.LedgerRepository,
	) error {
		// 1) Cliente por nombre + teléfono exactos
		customer, err := customerRepo.FindOrCreate(ctx, &entity.Customer{
			ID:        uuid.New().String(),
			Name:      in.CustName,
			Phone:     in.CustPhone,
			Address:   in.CustAddress,
			CreatedAt: now,
			UpdatedAt: now,
		})
		if err != nil {
			return err
		}

		// 2) Líneas y total
		invoiceID := uuid.New().String()
		var varietyList string
		items, varietyList, err = buildItems(ctx, varietyRepo, invoiceID, in.Items)
		if err != nil {
			return err
		}
		inv = &entity.Invoice{
			ID:          invoiceID,
			CustomerID:  customer.ID,
			CustName:    in.CustName,
			CustPhone:   in.CustPhone,
			CustAddress: in.CustAddress,
			VarietyList: varietyList,
			Total:       invoicing.InvoiceTotal(items),
			PaidAmount:  in.PaidNow,
			IssuedAt:    now,
			UpdatedAt:   now,
		}

		// 3) Estado
		invoicing.ResolveStatus(inv.Total, in.PaidNow, terms).Apply(inv)

		// 4) Persistencia
		if err := invoiceRepo.Create(ctx, inv); err != nil {
			return err
		}
		for _, it := range items {
			if err := invoiceRepo.CreateItem(ctx, it); err != nil {
				return err
			}
		}

		// 5) Crédito: deuda por el total en el libro del cliente
		if invoicing.IsCreditBearing(inv.Status) {
			if _, err := uc.ledger.AppendInTx(ctx, ledgerRepo, ledger.AppendInput{
				CustomerID: customer.ID,
				EntryType:  entity.LedgerEntryInvoice,
				Amount:     inv.Total,
				InvoiceID:  inv.ID,
				Remarks:    CreditInvoiceRemarks,
			}); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	uc.log.Info().
		Str("invoice_id", inv.ID).
		Str("customer_id", inv.CustomerID).
		Str("status", inv.Status).
		Str("total", inv.Total.String()).
		Msg("factura creada")
	return toInvoiceResponse(inv, items), nil
}

// RecordPayment suma un abono a la factura. El estado pasa a PAID si el pagado cubre el
// total; en otro caso queda CREDIT. Este endpoint no usa la resolución completa (sin PARTIAL).
func (uc *InvoiceUseCase) RecordPayment(ctx context.Context, invoiceID string, amount decimal.Decimal) (*dto.PaymentResponse, error) {
	if invoiceID == "" {
		return nil, domain.Invalid("id", "requerido")
	}
	if !amount.GreaterThan(decimal.Zero) {
		return nil, domain.Invalid("amount", "debe ser mayor que cero")
	}
	var inv *entity.Invoice
	err := uc.txRunner.RunBilling(ctx, func(
		_ repository.CustomerRepository,
		_ repository.VarietyRepository,
		invoiceRepo repository.InvoiceRepository,
		_ repository.LedgerRepository,
	) error {
		var err error
		inv, err = invoiceRepo.GetForUpdate(ctx, invoiceID)
		if err != nil {
			return err
		}
		if inv == nil {
			return domain.NotFound("factura", invoiceID)
		}
		invoicing.ApplyPayment(inv, amount)
		inv.UpdatedAt = uc.now()
		return invoiceRepo.Update(ctx, inv)
	})
	if err != nil {
		return nil, err
	}
	return &dto.PaymentResponse{Status: inv.Status, PaidAmount: inv.PaidAmount, Total: inv.Total}, nil
}

// EditInvoice reemplaza el snapshot de cliente y las líneas, recalcula el total y vuelve a
// resolver el estado con la precedencia completa. Los asientos ya registrados para la
// factura no se ajustan: un cambio de total debe corregirse con un asiento manual.
func (uc *InvoiceUseCase) EditInvoice(ctx context.Context, invoiceID string, in dto.InvoiceRequest) (*dto.InvoiceResponse, error) {
	if invoiceID == "" {
		return nil, domain.Invalid("id", "requerido")
	}
	terms, err := validateInvoiceRequest(in)
	if err != nil {
		return nil, err
	}
	var inv *entity.Invoice
	var items []*entity.InvoiceItem
	err = uc.txRunner.RunBilling(ctx, func(
		_ repository.CustomerRepository,
		varietyRepo repository.VarietyRepository,
		invoiceRepo repository.InvoiceRepository,
		_ repository.LedgerRepository,
	) error {
		var err error
		inv, err = invoiceRepo.GetForUpdate(ctx, invoiceID)
		if err != nil {
			return err
		}
		if inv == nil {
			return domain.NotFound("factura", invoiceID)
		}
		var varietyList string
		items, varietyList, err = buildItems(ctx, varietyRepo, inv.ID, in.Items)
		if err != nil {
			return err
		}
		if err := invoiceRepo.DeleteItems(ctx, inv.ID); err != nil {
			return err
		}
		for _, it := range items {
			if err := invoiceRepo.CreateItem(ctx, it); err != nil {
				return err
			}
		}
		inv.CustName = in.CustName
		inv.CustPhone = in.CustPhone
		inv.CustAddress = in.CustAddress
		inv.VarietyList = varietyList
		inv.Total = invoicing.InvoiceTotal(items)
		inv.PaidAmount = in.PaidNow
		inv.UpdatedAt = uc.now()
		invoicing.ResolveStatus(inv.Total, in.PaidNow, terms).Apply(inv)
		return invoiceRepo.Update(ctx, inv)
	})
	if err != nil {
		return nil, err
	}
	return toInvoiceResponse(inv, items), nil
}

// DeleteInvoice elimina en cascada los asientos que referencian la factura, sus líneas y la
// cabecera. No recalcula el libro del cliente: los saldos posteriores quedan desactualizados
// hasta el próximo recálculo.
func (uc *InvoiceUseCase) DeleteInvoice(ctx context.Context, invoiceID string) error {
	if invoiceID == "" {
		return domain.Invalid("id", "requerido")
	}
	var customerID string
	var removed int64
	err := uc.txRunner.RunBilling(ctx, func(
		_ repository.CustomerRepository,
		_ repository.VarietyRepository,
		invoiceRepo repository.InvoiceRepository,
		ledgerRepo repository.LedgerRepository,
	) error {
		inv, err := invoiceRepo.GetForUpdate(ctx, invoiceID)
		if err != nil {
			return err
		}
		if inv == nil {
			return domain.NotFound("factura", invoiceID)
		}
		customerID = inv.CustomerID
		if err := ledgerRepo.LockCustomer(ctx, customerID); err != nil {
			return err
		}
		if removed, err = ledgerRepo.DeleteByInvoice(ctx, invoiceID); err != nil {
			return err
		}
		if err := invoiceRepo.DeleteItems(ctx, invoiceID); err != nil {
			return err
		}
		ok, err := invoiceRepo.Delete(ctx, invoiceID)
		if err != nil {
			return err
		}
		if !ok {
			return domain.NotFound("factura", invoiceID)
		}
		return nil
	})
	if err != nil {
		return err
	}
	if removed > 0 {
		uc.log.Warn().
			Str("invoice_id", invoiceID).
			Str("customer_id", customerID).
			Int64("ledger_entries_removed", removed).
			Msg("factura eliminada con asientos; saldos del cliente sin recalcular")
	}
	return nil
}

// GetInvoice obtiene una factura con sus líneas.
func (uc *InvoiceUseCase) GetInvoice(ctx context.Context, invoiceID string) (*dto.InvoiceResponse, error) {
	inv, err := uc.invoiceRepo.GetByID(ctx, invoiceID)
	if err != nil {
		return nil, err
	}
	if inv == nil {
		return nil, domain.NotFound("factura", invoiceID)
	}
	items, err := uc.invoiceRepo.GetItems(ctx, invoiceID)
	if err != nil {
		return nil, err
	}
	return toInvoiceResponse(inv, items), nil
}

// validateInvoiceRequest valida la entrada y devuelve las condiciones de crédito.
func validateInvoiceRequest(in dto.InvoiceRequest) (invoicing.CreditTerms, error) {
	var terms invoicing.CreditTerms
	if strings.TrimSpace(in.CustName) == "" {
		return terms, domain.Invalid("cust_name", "requerido")
	}
	if strings.TrimSpace(in.CustPhone) == "" {
		return terms, domain.Invalid("cust_phone", "requerido")
	}
	if len(in.Items) == 0 {
		return terms, domain.Invalid("items", "la factura debe tener al menos una línea")
	}
	for _, it := range in.Items {
		if it.VarietyID == "" {
			return terms, domain.Invalid("items.variety_id", "requerido")
		}
		if it.Qty <= 0 {
			return terms, domain.Invalid("items.qty", "debe ser un entero positivo")
		}
		if it.UnitPrice.LessThan(decimal.Zero) {
			return terms, domain.Invalid("items.unit_price", "no puede ser negativo")
		}
	}
	if in.PaidNow.LessThan(decimal.Zero) {
		return terms, domain.Invalid("paid_now", "no puede ser negativo")
	}
	if in.Credit != nil && in.Credit.Enabled {
		terms.Enabled = true
		if in.Credit.DueAt != "" {
			due, err := time.Parse(dueDateLayout, in.Credit.DueAt)
			if err != nil {
				return terms, domain.Invalid("credit.due_at", "formato esperado YYYY-MM-DD")
			}
			terms.DueAt = &due
		}
	}
	return terms, nil
}

// buildItems construye las líneas y la lista ordenada de nombres de variedades.
// Una variedad inexistente es NotFound.
func buildItems(ctx context.Context, varietyRepo repository.VarietyRepository, invoiceID string, in []dto.InvoiceItemRequest) ([]*entity.InvoiceItem, string, error) {
	items := make([]*entity.InvoiceItem, 0, len(in))
	names := make([]string, 0, len(in))
	for _, it := range in {
		v, err := varietyRepo.GetByID(ctx, it.VarietyID)
		if err != nil {
			return nil, "", err
		}
		if v == nil {
			return nil, "", domain.NotFound("variedad", it.VarietyID)
		}
		names = append(names, v.Name)
		items = append(items, &entity.InvoiceItem{
			ID:        uuid.New().String(),
			InvoiceID: invoiceID,
			VarietyID: it.VarietyID,
			Qty:       it.Qty,
			UnitPrice: it.UnitPrice,
		})
	}
	sort.Strings(names)
	return items, strings.Join(names, ", "), nil
}

func toInvoiceResponse(inv *entity.Invoice, items []*entity.InvoiceItem) *dto.InvoiceResponse {
	resp := &dto.InvoiceResponse{
		ID:          inv.ID,
		CustomerID:  inv.CustomerID,
		CustName:    inv.CustName,
		CustPhone:   inv.CustPhone,
		CustAddress: inv.CustAddress,
		VarietyList: inv.VarietyList,
		Total:       inv.Total,
		PaidAmount:  inv.PaidAmount,
		Balance:     inv.Balance(),
		Status:      inv.Status,
		IssuedAt:    inv.IssuedAt,
		Items:       make([]dto.InvoiceItemResponse, 0, len(items)),
	}
	if inv.DueAt != nil {
		resp.DueAt = inv.DueAt.Format(dueDateLayout)
	}
	for _, it := range items {
		resp.Items = append(resp.Items, dto.InvoiceItemResponse{
			ID:        it.ID,
			VarietyID: it.VarietyID,
			Qty:       it.Qty,
			UnitPrice: it.UnitPrice,
			Subtotal:  it.Subtotal(),
		})
	}
	return resp
}
