package entity

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/tu-usuario/stock-control/internal/domain"
)

// Product representa un producto del inventario.
// CurrentStock solo se muta vía movimientos (RegisterMovementUseCase);
// el resto de campos son metadatos editables por CRUD.
type Product struct {
	ID           string
	Code         string // código único (SKU)
	Name         string
	Description  string
	CurrentStock int64 // invariante: >= 0 en todo estado confirmado
	MinStock     int64 // umbral de alerta, no bloquea salidas
	MaxStock     int64 // tope físico de almacenamiento
	Unit         string
	Price        decimal.Decimal
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// ApplyDelta aplica un delta firmado al stock actual validando los límites.
// No persiste: es lógica de dominio pura, el caso de uso decide la transacción.
func (p *Product) ApplyDelta(delta int64) error {
	next := p.CurrentStock + delta
	if next < 0 {
		return domain.ErrInsufficientStock
	}
	if next > p.MaxStock {
		return domain.ErrStockExceedsMax
	}
	p.CurrentStock = next
	return nil
}

// NeedsReorder indica si el stock cayó al punto de reorden (MinStock).
func (p *Product) NeedsReorder() bool {
	return p.CurrentStock <= p.MinStock
}

// IsStockLow indica stock en o por debajo del mínimo más un 20% de margen.
func (p *Product) IsStockLow() bool {
	return p.CurrentStock <= p.MinStock+p.MinStock/5
}

// IsStockHigh indica stock en o por encima del 90% del máximo.
func (p *Product) IsStockHigh() bool {
	return p.MaxStock > 0 && p.CurrentStock*10 >= p.MaxStock*9
}

// StockPercentage devuelve el stock actual como porcentaje del máximo.
func (p *Product) StockPercentage() float64 {
	if p.MaxStock == 0 {
		return 0
	}
	return float64(p.CurrentStock) / float64(p.MaxStock) * 100
}
