package repository

import (
	"context"

	"github.com/tu-usuario/stock-control/internal/domain/entity"
)

// ProductFilter filtros para el listado paginado de productos.
type ProductFilter struct {
	Search   string // busca en code, name y description
	MinStock *int64
	MaxStock *int64
	Limit    int
	Offset   int
}

// ProductRepository define el puerto de persistencia para Product (DIP).
type ProductRepository interface {
	Create(ctx context.Context, product *entity.Product) error
	GetByID(ctx context.Context, id string) (*entity.Product, error)
	GetByCode(ctx context.Context, code string) (*entity.Product, error)
	// GetByIDForUpdate bloquea la fila del producto (SELECT FOR UPDATE).
	// Solo tiene sentido dentro de una transacción.
	GetByIDForUpdate(ctx context.Context, id string) (*entity.Product, error)
	Update(ctx context.Context, product *entity.Product) error
	// UpdateStock actualiza solo current_stock (usado por el motor de movimientos).
	UpdateStock(ctx context.Context, productID string, quantity int64) error
	// List devuelve la página ordenada por code y el total de filas que
	// cumplen el filtro (sin paginar).
	List(ctx context.Context, filter ProductFilter) ([]*entity.Product, int, error)
	Delete(ctx context.Context, id string) error
}
