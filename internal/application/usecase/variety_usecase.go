package usecase

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/ak-ledger/internal/application/dto"
	"github.com/jhoicas/ak-ledger/internal/domain"
	"github.com/jhoicas/ak-ledger/internal/domain/entity"
	"github.com/jhoicas/ak-ledger/internal/domain/repository"
)

// VarietyUseCase casos de uso del catálogo de variedades. La existencia solo cambia por
// alta, edición explícita o entrada de stock; la facturación no la descuenta.
type VarietyUseCase struct {
	repo repository.VarietyRepository
	now  func() time.Time
}

// NewVarietyUseCase construye el caso de uso.
func NewVarietyUseCase(repo repository.VarietyRepository) *VarietyUseCase {
	return &VarietyUseCase{repo: repo, now: time.Now}
}

// Create crea una variedad.
func (uc *VarietyUseCase) Create(ctx context.Context, in dto.CreateVarietyRequest) (*dto.VarietyResponse, error) {
	if err := validateName(in.Name); err != nil {
		return nil, err
	}
	if strings.TrimSpace(in.Category) == "" {
		return nil, domain.Invalid("category", "requerido")
	}
	if err := validateCategory(in.Category); err != nil {
		return nil, err
	}
	if in.UnitPrice.LessThan(decimal.Zero) {
		return nil, domain.Invalid("unit_price", "no puede ser negativo")
	}
	if in.Qty < 0 || in.ReorderLevel < 0 {
		return nil, domain.Invalid("qty", "no puede ser negativo")
	}
	now := uc.now()
	v := &entity.Variety{
		ID:           uuid.New().String(),
		Name:         in.Name,
		Category:     in.Category,
		UnitPrice:    in.UnitPrice,
		QtyOnHand:    in.Qty,
		ReorderLevel: in.ReorderLevel,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := uc.repo.Create(ctx, v); err != nil {
		return nil, err
	}
	return toVarietyResponse(v), nil
}

// GetByID obtiene una variedad.
func (uc *VarietyUseCase) GetByID(ctx context.Context, id string) (*dto.VarietyResponse, error) {
	v, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if v == nil {
		return nil, domain.NotFound("variedad", id)
	}
	return toVarietyResponse(v), nil
}

// Update aplica campo por campo lo presente en la solicitud. Sin campos presentes solo
// devuelve la variedad actual.
func (uc *VarietyUseCase) Update(ctx context.Context, id string, in dto.UpdateVarietyRequest) (*dto.VarietyResponse, error) {
	v, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if v == nil {
		return nil, domain.NotFound("variedad", id)
	}
	changed := false
	if in.Name != nil {
		if err := validateName(*in.Name); err != nil {
			return nil, err
		}
		v.Name = *in.Name
		changed = true
	}
	if in.Category != nil {
		if err := validateCategory(*in.Category); err != nil {
			return nil, err
		}
		v.Category = *in.Category
		changed = true
	}
	if in.UnitPrice != nil {
		if in.UnitPrice.LessThan(decimal.Zero) {
			return nil, domain.Invalid("unit_price", "no puede ser negativo")
		}
		v.UnitPrice = *in.UnitPrice
		changed = true
	}
	if in.Qty != nil {
		if *in.Qty < 0 {
			return nil, domain.Invalid("qty", "no puede ser negativo")
		}
		v.QtyOnHand = *in.Qty
		changed = true
	}
	if in.ReorderLevel != nil {
		if *in.ReorderLevel < 0 {
			return nil, domain.Invalid("reorder_level", "no puede ser negativo")
		}
		v.ReorderLevel = *in.ReorderLevel
		changed = true
	}
	if !changed {
		return toVarietyResponse(v), nil
	}
	v.UpdatedAt = uc.now()
	if err := uc.repo.Update(ctx, v); err != nil {
		return nil, err
	}
	return toVarietyResponse(v), nil
}

// StockIn suma existencia a una variedad y devuelve la variedad actualizada.
func (uc *VarietyUseCase) StockIn(ctx context.Context, in dto.StockInRequest) (*dto.VarietyResponse, error) {
	if in.VarietyID == "" {
		return nil, domain.Invalid("variety_id", "requerido")
	}
	if in.AddQty <= 0 {
		return nil, domain.Invalid("add_qty", "debe ser mayor que cero")
	}
	ok, err := uc.repo.AddStock(ctx, in.VarietyID, in.AddQty)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, domain.NotFound("variedad", in.VarietyID)
	}
	return uc.GetByID(ctx, in.VarietyID)
}

// Delete elimina una variedad.
func (uc *VarietyUseCase) Delete(ctx context.Context, id string) error {
	ok, err := uc.repo.Delete(ctx, id)
	if err != nil {
		return err
	}
	if !ok {
		return domain.NotFound("variedad", id)
	}
	return nil
}

// LowStock lista las variedades en o bajo su nivel de reorden con la cantidad sugerida
// para volver a 1.5 veces ese nivel, las más urgentes primero.
func (uc *VarietyUseCase) LowStock(ctx context.Context) ([]dto.ReorderSuggestionDTO, error) {
	list, err := uc.repo.ListBelowReorder(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]dto.ReorderSuggestionDTO, 0, len(list))
	for _, v := range list {
		if !v.NeedsReorder() {
			continue
		}
		ideal := (v.ReorderLevel*3 + 1) / 2
		out = append(out, dto.ReorderSuggestionDTO{
			VarietyID:         v.ID,
			Name:              v.Name,
			Category:          v.Category,
			QtyOnHand:         v.QtyOnHand,
			ReorderLevel:      v.ReorderLevel,
			IdealStock:        ideal,
			SuggestedOrderQty: ideal - v.QtyOnHand,
		})
	}
	return out, nil
}

func validateName(name string) error {
	if strings.TrimSpace(name) == "" {
		return domain.Invalid("name", "requerido")
	}
	if len([]rune(name)) > entity.VarietyNameMaxLen {
		return domain.Invalid("name", "máximo 120 caracteres")
	}
	return nil
}

func validateCategory(category string) error {
	if len([]rune(category)) > entity.VarietyCategoryMaxLen {
		return domain.Invalid("category", "máximo 80 caracteres")
	}
	return nil
}

func toVarietyResponse(v *entity.Variety) *dto.VarietyResponse {
	return &dto.VarietyResponse{
		ID:           v.ID,
		Name:         v.Name,
		Category:     v.Category,
		UnitPrice:    v.UnitPrice,
		QtyOnHand:    v.QtyOnHand,
		ReorderLevel: v.ReorderLevel,
		CreatedAt:    v.CreatedAt,
		UpdatedAt:    v.UpdatedAt,
	}
}
