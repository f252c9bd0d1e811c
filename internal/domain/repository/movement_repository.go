package repository

import (
	"context"

	"github.com/tu-usuario/stock-control/internal/domain/entity"
)

// MovementRepository define el puerto de persistencia para movimientos.
// La tabla es append-only: no hay Update ni Delete.
type MovementRepository interface {
	Create(ctx context.Context, movement *entity.Movement) error
	GetByID(ctx context.Context, id string) (*entity.Movement, error)
	// List devuelve movimientos ordenados del más reciente al más antiguo.
	// productID vacío lista todos los productos.
	List(ctx context.Context, productID string, limit, offset int) ([]*entity.Movement, error)
}
