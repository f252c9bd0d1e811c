package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/tu-usuario/stock-control/internal/application/dto"
	"github.com/tu-usuario/stock-control/internal/domain"
	"github.com/tu-usuario/stock-control/internal/domain/entity"
	"github.com/tu-usuario/stock-control/internal/domain/repository"
)

// ProductUseCase casos de uso CRUD para productos.
// CurrentStock solo cambia vía movimientos; aquí solo se fija el stock inicial.
type ProductUseCase struct {
	repo repository.ProductRepository
}

// NewProductUseCase construye el caso de uso.
func NewProductUseCase(repo repository.ProductRepository) *ProductUseCase {
	return &ProductUseCase{repo: repo}
}

// Create crea un nuevo producto con su stock semilla.
func (uc *ProductUseCase) Create(ctx context.Context, in dto.CreateProductRequest) (*dto.ProductResponse, error) {
	if in.CurrentStock < 0 || in.MinStock < 0 || in.MaxStock < in.MinStock {
		return nil, domain.ErrInvalidInput
	}
	existing, _ := uc.repo.GetByCode(ctx, in.Code)
	if existing != nil {
		return nil, domain.ErrDuplicate
	}
	if in.Unit == "" {
		in.Unit = "unidades"
	}
	if in.MaxStock == 0 {
		in.MaxStock = 1000
	}
	if in.CurrentStock > in.MaxStock {
		return nil, domain.ErrInvalidInput
	}
	now := time.Now()
	product := &entity.Product{
		ID:           uuid.New().String(),
		Code:         in.Code,
		Name:         in.Name,
		Description:  in.Description,
		CurrentStock: in.CurrentStock,
		MinStock:     in.MinStock,
		MaxStock:     in.MaxStock,
		Unit:         in.Unit,
		Price:        in.Price,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := uc.repo.Create(ctx, product); err != nil {
		return nil, err
	}
	return toProductResponse(product), nil
}

// GetByID obtiene un producto por ID. Devuelve nil si no existe.
func (uc *ProductUseCase) GetByID(ctx context.Context, id string) (*dto.ProductResponse, error) {
	product, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, nil
	}
	return toProductResponse(product), nil
}

// Update actualiza metadatos y límites de stock. No permite modificar CurrentStock.
func (uc *ProductUseCase) Update(ctx context.Context, id string, in dto.UpdateProductRequest) (*dto.ProductResponse, error) {
	product, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, nil
	}
	if in.Name != nil {
		product.Name = *in.Name
	}
	if in.Description != nil {
		product.Description = *in.Description
	}
	if in.MinStock != nil {
		product.MinStock = *in.MinStock
	}
	if in.MaxStock != nil {
		product.MaxStock = *in.MaxStock
	}
	if in.Unit != nil {
		product.Unit = *in.Unit
	}
	if in.Price != nil {
		product.Price = *in.Price
	}
	if product.MinStock < 0 || product.MaxStock < product.MinStock {
		return nil, domain.ErrInvalidInput
	}
	product.UpdatedAt = time.Now()
	if err := uc.repo.Update(ctx, product); err != nil {
		return nil, err
	}
	return toProductResponse(product), nil
}

// List lista productos con paginación y filtros, más el total sin paginar.
func (uc *ProductUseCase) List(ctx context.Context, filter repository.ProductFilter) (*dto.ProductListResponse, error) {
	list, total, err := uc.repo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	items := make([]dto.ProductResponse, 0, len(list))
	for _, p := range list {
		items = append(items, *toProductResponse(p))
	}
	return &dto.ProductListResponse{
		Items: items,
		Total: total,
		Page:  dto.PageResponse{Limit: filter.Limit, Offset: filter.Offset},
	}, nil
}

// Delete elimina un producto por ID.
func (uc *ProductUseCase) Delete(ctx context.Context, id string) error {
	return uc.repo.Delete(ctx, id)
}

// Páginas internas del recorrido de Status.
const statusPageSize = 100

// Status agrega el estado del inventario completo: conteos por estado de
// stock, unidades totales y la lista de productos que requieren reposición.
// Recorre el catálogo por páginas para no cargar tablas grandes de una vez.
func (uc *ProductUseCase) Status(ctx context.Context) (*dto.InventoryStatusResponse, error) {
	out := &dto.InventoryStatusResponse{Alerts: []dto.ProductResponse{}}
	offset := 0
	for {
		list, total, err := uc.repo.List(ctx, repository.ProductFilter{Limit: statusPageSize, Offset: offset})
		if err != nil {
			return nil, err
		}
		out.TotalProducts = total
		for _, p := range list {
			out.TotalUnits += p.CurrentStock
			if p.NeedsReorder() {
				out.NeedsReorder++
				out.Alerts = append(out.Alerts, *toProductResponse(p))
			}
			if p.IsStockLow() {
				out.LowStock++
			}
			if p.IsStockHigh() {
				out.HighStock++
			}
		}
		offset += len(list)
		if len(list) == 0 || offset >= total {
			return out, nil
		}
	}
}

func toProductResponse(p *entity.Product) *dto.ProductResponse {
	if p == nil {
		return nil
	}
	return &dto.ProductResponse{
		ID:              p.ID,
		Code:            p.Code,
		Name:            p.Name,
		Description:     p.Description,
		CurrentStock:    p.CurrentStock,
		MinStock:        p.MinStock,
		MaxStock:        p.MaxStock,
		Unit:            p.Unit,
		Price:           p.Price,
		StockPercentage: p.StockPercentage(),
		NeedsReorder:    p.NeedsReorder(),
		IsStockLow:      p.IsStockLow(),
		IsStockHigh:     p.IsStockHigh(),
		CreatedAt:       p.CreatedAt,
		UpdatedAt:       p.UpdatedAt,
	}
}
