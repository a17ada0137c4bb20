package billing

import (
	"context"
	"strings"
	"time"

	"github.com/jhoicas/ak-ledger/internal/application/dto"
	"github.com/jhoicas/ak-ledger/internal/domain"
	"github.com/jhoicas/ak-ledger/internal/domain/entity"
	"github.com/jhoicas/ak-ledger/internal/domain/repository"
)

// CustomerUseCase casos de uso para clientes. La alta ocurre al facturar (FindOrCreate).
type CustomerUseCase struct {
	repo repository.CustomerRepository
}

// NewCustomerUseCase construye el caso de uso.
func NewCustomerUseCase(repo repository.CustomerRepository) *CustomerUseCase {
	return &CustomerUseCase{repo: repo}
}

// GetByID obtiene un cliente.
func (uc *CustomerUseCase) GetByID(ctx context.Context, id string) (*dto.CustomerResponse, error) {
	c, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, domain.NotFound("cliente", id)
	}
	return toCustomerResponse(c), nil
}

// Update aplica los campos presentes en la solicitud; los ausentes conservan su valor.
// Las facturas ya emitidas conservan su copia del cliente.
func (uc *CustomerUseCase) Update(ctx context.Context, id string, in dto.UpdateCustomerRequest) (*dto.CustomerResponse, error) {
	c, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, domain.NotFound("cliente", id)
	}
	if in.Name != nil {
		if strings.TrimSpace(*in.Name) == "" {
			return nil, domain.Invalid("name", "no puede quedar vacío")
		}
		c.Name = *in.Name
	}
	if in.Phone != nil {
		if strings.TrimSpace(*in.Phone) == "" {
			return nil, domain.Invalid("phone", "no puede quedar vacío")
		}
		c.Phone = *in.Phone
	}
	if in.Address != nil {
		c.Address = *in.Address
	}
	c.UpdatedAt = time.Now()
	if err := uc.repo.Update(ctx, c); err != nil {
		return nil, err
	}
	return toCustomerResponse(c), nil
}

// Delete elimina un cliente.
func (uc *CustomerUseCase) Delete(ctx context.Context, id string) error {
	ok, err := uc.repo.Delete(ctx, id)
	if err != nil {
		return err
	}
	if !ok {
		return domain.NotFound("cliente", id)
	}
	return nil
}

// VarietyHistory lista lo que el cliente ha comprado por variedad, lo más reciente primero.
func (uc *CustomerUseCase) VarietyHistory(ctx context.Context, id string) ([]dto.VarietyPurchaseResponse, error) {
	c, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, domain.NotFound("cliente", id)
	}
	list, err := uc.repo.VarietyHistory(ctx, id)
	if err != nil {
		return nil, err
	}
	out := make([]dto.VarietyPurchaseResponse, 0, len(list))
	for _, p := range list {
		out = append(out, dto.VarietyPurchaseResponse{
			VarietyID:    p.VarietyID,
			Name:         p.Name,
			Category:     p.Category,
			TotalQty:     p.TotalQty,
			TotalSpent:   p.TotalSpent,
			LastPurchase: p.LastPurchase,
		})
	}
	return out, nil
}

func toCustomerResponse(c *entity.Customer) *dto.CustomerResponse {
	return &dto.CustomerResponse{
		ID:        c.ID,
		Name:      c.Name,
		Phone:     c.Phone,
		Address:   c.Address,
		CreatedAt: c.CreatedAt,
	}
}
