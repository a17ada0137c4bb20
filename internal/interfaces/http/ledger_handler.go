package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/jhoicas/ak-ledger/internal/application/dto"
	"github.com/jhoicas/ak-ledger/internal/application/ledger"
	"github.com/jhoicas/ak-ledger/internal/domain/entity"
)

// LedgerHandler expone el motor de saldos.
type LedgerHandler struct {
	engine *ledger.Engine
	log    zerolog.Logger
}

// NewLedgerHandler construye el handler.
func NewLedgerHandler(engine *ledger.Engine, log zerolog.Logger) *LedgerHandler {
	return &LedgerHandler{engine: engine, log: log}
}

// Create registra un movimiento manual.
// POST /api/ledger
func (h *LedgerHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateLedgerEntryRequest
	if err := c.BodyParser(&in); err != nil {
		return invalidBody(c)
	}
	if err := validate.Struct(in); err != nil {
		return writeError(c, h.log, err)
	}
	entry, err := h.engine.Append(c.UserContext(), ledger.AppendInput{
		CustomerID: in.UserID,
		EntryType:  in.EntryType,
		Amount:     in.Amount,
		InvoiceID:  in.InvoiceID,
		Remarks:    in.Remarks,
	})
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.Status(fiber.StatusCreated).JSON(toLedgerEntryResponse(entry))
}

// Update edita un asiento y recalcula los saldos del cliente.
// PUT /api/ledger/:id
func (h *LedgerHandler) Update(c *fiber.Ctx) error {
	var in dto.UpdateLedgerEntryRequest
	if err := c.BodyParser(&in); err != nil {
		return invalidBody(c)
	}
	if err := validate.Struct(in); err != nil {
		return writeError(c, h.log, err)
	}
	err := h.engine.Edit(c.UserContext(), ledger.EditInput{
		EntryID:   c.Params("id"),
		EntryType: in.EntryType,
		Amount:    in.Amount,
		Remarks:   in.Remarks,
	})
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(dto.MessageResponse{Message: "asiento actualizado"})
}

// Delete elimina un asiento y recalcula los saldos del cliente.
// DELETE /api/ledger/:id
func (h *LedgerHandler) Delete(c *fiber.Ctx) error {
	if err := h.engine.Delete(c.UserContext(), c.Params("id")); err != nil {
		return writeError(c, h.log, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// List devuelve los asientos del cliente, más antiguo primero, con su saldo.
// GET /api/ledger/entries?user_id=
func (h *LedgerHandler) List(c *fiber.Ctx) error {
	st, err := h.engine.EntriesFor(c.UserContext(), c.Query("user_id"))
	if err != nil {
		return writeError(c, h.log, err)
	}
	out := dto.LedgerStatementResponse{
		UserID:  st.CustomerID,
		Balance: st.Balance,
		Entries: make([]dto.LedgerEntryResponse, 0, len(st.Entries)),
	}
	for _, e := range st.Entries {
		out.Entries = append(out.Entries, *toLedgerEntryResponse(e))
	}
	return c.JSON(out)
}

// Recalculate reescribe todos los saldos del cliente.
// POST /api/ledger/customers/:id/recalculate
func (h *LedgerHandler) Recalculate(c *fiber.Ctx) error {
	res, err := h.engine.Recalculate(c.UserContext(), c.Params("id"))
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(dto.RecalculateResponse{
		UserID:  res.CustomerID,
		Entries: res.Entries,
		Updated: res.Updated,
		Balance: res.Balance,
	})
}

func toLedgerEntryResponse(e *entity.LedgerEntry) *dto.LedgerEntryResponse {
	return &dto.LedgerEntryResponse{
		ID:        e.ID,
		UserID:    e.CustomerID,
		InvoiceID: e.InvoiceID,
		EntryType: e.EntryType,
		Amount:    e.Amount,
		Balance:   e.Balance,
		Remarks:   e.Remarks,
		CreatedAt: e.CreatedAt,
	}
}
