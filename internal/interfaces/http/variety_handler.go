package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/jhoicas/ak-ledger/internal/application/dto"
	"github.com/jhoicas/ak-ledger/internal/application/usecase"
)

// VarietyHandler maneja las peticiones HTTP del catálogo.
type VarietyHandler struct {
	uc  *usecase.VarietyUseCase
	log zerolog.Logger
}

// NewVarietyHandler construye el handler.
func NewVarietyHandler(uc *usecase.VarietyUseCase, log zerolog.Logger) *VarietyHandler {
	return &VarietyHandler{uc: uc, log: log}
}

// Create POST /api/varieties
func (h *VarietyHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateVarietyRequest
	if err := c.BodyParser(&in); err != nil {
		return invalidBody(c)
	}
	if err := validate.Struct(in); err != nil {
		return writeError(c, h.log, err)
	}
	out, err := h.uc.Create(c.UserContext(), in)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// GetByID GET /api/varieties/:id
func (h *VarietyHandler) GetByID(c *fiber.Ctx) error {
	out, err := h.uc.GetByID(c.UserContext(), c.Params("id"))
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(out)
}

// Update actualización parcial. PUT /api/varieties/:id
func (h *VarietyHandler) Update(c *fiber.Ctx) error {
	var in dto.UpdateVarietyRequest
	if err := c.BodyParser(&in); err != nil {
		return invalidBody(c)
	}
	if err := validate.Struct(in); err != nil {
		return writeError(c, h.log, err)
	}
	out, err := h.uc.Update(c.UserContext(), c.Params("id"), in)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(out)
}

// Delete DELETE /api/varieties/:id
func (h *VarietyHandler) Delete(c *fiber.Ctx) error {
	if err := h.uc.Delete(c.UserContext(), c.Params("id")); err != nil {
		return writeError(c, h.log, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// StockIn entrada de mercancía. POST /api/varieties/stock-in
func (h *VarietyHandler) StockIn(c *fiber.Ctx) error {
	var in dto.StockInRequest
	if err := c.BodyParser(&in); err != nil {
		return invalidBody(c)
	}
	if err := validate.Struct(in); err != nil {
		return writeError(c, h.log, err)
	}
	out, err := h.uc.StockIn(c.UserContext(), in)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(out)
}

// LowStock sugerencias de reposición. GET /api/varieties/low-stock
func (h *VarietyHandler) LowStock(c *fiber.Ctx) error {
	out, err := h.uc.LowStock(c.UserContext())
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(out)
}
