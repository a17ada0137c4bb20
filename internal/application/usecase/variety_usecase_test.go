package usecase_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/ak-ledger/internal/application/dto"
	"github.com/jhoicas/ak-ledger/internal/application/usecase"
	"github.com/jhoicas/ak-ledger/internal/domain"
	"github.com/jhoicas/ak-ledger/internal/infrastructure/memory"
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func newVarietyUC() *usecase.VarietyUseCase {
	return usecase.NewVarietyUseCase(memory.New().Varieties())
}

func create(t *testing.T, uc *usecase.VarietyUseCase, name string, qty, reorder int) *dto.VarietyResponse {
	t.Helper()
	v, err := uc.Create(context.Background(), dto.CreateVarietyRequest{
		Name: name, Category: "Algodón", UnitPrice: d("12.50"), Qty: qty, ReorderLevel: reorder,
	})
	require.NoError(t, err)
	return v
}

func TestVarietyUseCase_Create(t *testing.T) {
	uc := newVarietyUC()
	v := create(t, uc, "Popelina", 40, 10)
	assert.NotEmpty(t, v.ID)
	assert.Equal(t, 40, v.QtyOnHand)

	got, err := uc.GetByID(context.Background(), v.ID)
	require.NoError(t, err)
	assert.Equal(t, "Popelina", got.Name)
}

func TestVarietyUseCase_CreateValidacion(t *testing.T) {
	uc := newVarietyUC()
	tests := []struct {
		name  string
		in    dto.CreateVarietyRequest
		field string
	}{
		{"sin nombre", dto.CreateVarietyRequest{Category: "A"}, "name"},
		{"nombre largo", dto.CreateVarietyRequest{Name: strings.Repeat("x", 121), Category: "A"}, "name"},
		{"sin categoría", dto.CreateVarietyRequest{Name: "Lino"}, "category"},
		{"categoría larga", dto.CreateVarietyRequest{Name: "Lino", Category: strings.Repeat("c", 81)}, "category"},
		{"precio negativo", dto.CreateVarietyRequest{Name: "Lino", Category: "A", UnitPrice: d("-1")}, "unit_price"},
		{"cantidad negativa", dto.CreateVarietyRequest{Name: "Lino", Category: "A", Qty: -1}, "qty"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := uc.Create(context.Background(), tt.in)
			var verr *domain.ValidationError
			require.True(t, errors.As(err, &verr), "err = %v", err)
			assert.Equal(t, tt.field, verr.Field)
		})
	}
}

func TestVarietyUseCase_UpdateParcial(t *testing.T) {
	uc := newVarietyUC()
	ctx := context.Background()
	v := create(t, uc, "Popelina", 40, 10)

	price := d("15")
	out, err := uc.Update(ctx, v.ID, dto.UpdateVarietyRequest{UnitPrice: &price})
	require.NoError(t, err)
	assert.Equal(t, "15", out.UnitPrice.String())
	assert.Equal(t, "Popelina", out.Name, "los campos ausentes se conservan")
	assert.Equal(t, 40, out.QtyOnHand)

	same, err := uc.Update(ctx, v.ID, dto.UpdateVarietyRequest{})
	require.NoError(t, err)
	assert.Equal(t, out.UpdatedAt, same.UpdatedAt, "sin campos no hay escritura")

	neg := -3
	_, err = uc.Update(ctx, v.ID, dto.UpdateVarietyRequest{Qty: &neg})
	assert.True(t, errors.Is(err, domain.ErrInvalidInput))

	_, err = uc.Update(ctx, "no-existe", dto.UpdateVarietyRequest{UnitPrice: &price})
	assert.True(t, errors.Is(err, domain.ErrNotFound))
}

func TestVarietyUseCase_StockIn(t *testing.T) {
	uc := newVarietyUC()
	ctx := context.Background()
	v := create(t, uc, "Popelina", 4, 10)

	out, err := uc.StockIn(ctx, dto.StockInRequest{VarietyID: v.ID, AddQty: 6})
	require.NoError(t, err)
	assert.Equal(t, 10, out.QtyOnHand)

	_, err = uc.StockIn(ctx, dto.StockInRequest{VarietyID: v.ID, AddQty: 0})
	assert.True(t, errors.Is(err, domain.ErrInvalidInput))
	_, err = uc.StockIn(ctx, dto.StockInRequest{VarietyID: "no-existe", AddQty: 1})
	assert.True(t, errors.Is(err, domain.ErrNotFound))
}

func TestVarietyUseCase_LowStock(t *testing.T) {
	uc := newVarietyUC()
	ctx := context.Background()
	create(t, uc, "Holgada", 50, 10)
	create(t, uc, "Justa", 10, 10)
	create(t, uc, "Agotada", 0, 3)
	create(t, uc, "Sin nivel", 0, 0)

	list, err := uc.LowStock(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)

	assert.Equal(t, "Agotada", list[0].Name, "la mayor brecha primero")
	assert.Equal(t, 5, list[0].IdealStock)
	assert.Equal(t, 5, list[0].SuggestedOrderQty)

	assert.Equal(t, "Justa", list[1].Name)
	assert.Equal(t, 15, list[1].IdealStock)
	assert.Equal(t, 5, list[1].SuggestedOrderQty)
}

func TestVarietyUseCase_Delete(t *testing.T) {
	uc := newVarietyUC()
	ctx := context.Background()
	v := create(t, uc, "Popelina", 1, 0)

	require.NoError(t, uc.Delete(ctx, v.ID))
	assert.True(t, errors.Is(uc.Delete(ctx, v.ID), domain.ErrNotFound))
	_, err := uc.GetByID(ctx, v.ID)
	assert.True(t, errors.Is(err, domain.ErrNotFound))
}
