package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/jhoicas/ak-ledger/internal/application/billing"
	"github.com/jhoicas/ak-ledger/internal/application/dto"
)

// InvoiceHandler maneja las peticiones HTTP del ciclo de vida de la factura.
type InvoiceHandler struct {
	uc  *billing.InvoiceUseCase
	log zerolog.Logger
}

// NewInvoiceHandler construye el handler.
func NewInvoiceHandler(uc *billing.InvoiceUseCase, log zerolog.Logger) *InvoiceHandler {
	return &InvoiceHandler{uc: uc, log: log}
}

// Create crea una factura y, si queda a crédito, su asiento en el libro.
// POST /api/invoices
func (h *InvoiceHandler) Create(c *fiber.Ctx) error {
	var in dto.InvoiceRequest
	if err := c.BodyParser(&in); err != nil {
		return invalidBody(c)
	}
	if err := validate.Struct(in); err != nil {
		return writeError(c, h.log, err)
	}
	inv, err := h.uc.CreateInvoice(c.UserContext(), in)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.InvoiceIDResponse{InvoiceID: inv.ID})
}

// GetByID obtiene la factura con sus líneas.
// GET /api/invoices/:id
func (h *InvoiceHandler) GetByID(c *fiber.Ctx) error {
	inv, err := h.uc.GetInvoice(c.UserContext(), c.Params("id"))
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(inv)
}

// RecordPayment registra un abono sobre la factura.
// POST /api/invoices/:id/payments
func (h *InvoiceHandler) RecordPayment(c *fiber.Ctx) error {
	var in dto.PaymentRequest
	if err := c.BodyParser(&in); err != nil {
		return invalidBody(c)
	}
	out, err := h.uc.RecordPayment(c.UserContext(), c.Params("id"), in.Amount)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(out)
}

// Update reemplaza cliente, líneas y abono de la factura.
// PUT /api/invoices/:id
func (h *InvoiceHandler) Update(c *fiber.Ctx) error {
	var in dto.InvoiceRequest
	if err := c.BodyParser(&in); err != nil {
		return invalidBody(c)
	}
	if err := validate.Struct(in); err != nil {
		return writeError(c, h.log, err)
	}
	inv, err := h.uc.EditInvoice(c.UserContext(), c.Params("id"), in)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(dto.InvoiceIDResponse{InvoiceID: inv.ID})
}

// Delete elimina la factura, sus líneas y sus asientos.
// DELETE /api/invoices/:id
func (h *InvoiceHandler) Delete(c *fiber.Ctx) error {
	if err := h.uc.DeleteInvoice(c.UserContext(), c.Params("id")); err != nil {
		return writeError(c, h.log, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
