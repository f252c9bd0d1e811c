package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// CreateProductRequest entrada para crear un producto.
type CreateProductRequest struct {
	Code         string          `json:"code" validate:"required,min=1,max=50"`
	Name         string          `json:"name" validate:"required,min=1,max=255"`
	Description  string          `json:"description"`
	CurrentStock int64           `json:"current_stock" validate:"min=0"`
	MinStock     int64           `json:"min_stock" validate:"min=0"`
	MaxStock     int64           `json:"max_stock" validate:"min=0"`
	Unit         string          `json:"unit"`
	Price        decimal.Decimal `json:"price"`
}

// UpdateProductRequest entrada para actualizar un producto.
// CurrentStock no se puede modificar aquí: se maneja vía movimientos.
type UpdateProductRequest struct {
	Name        *string          `json:"name" validate:"omitempty,min=1,max=255"`
	Description *string          `json:"description"`
	MinStock    *int64           `json:"min_stock" validate:"omitempty,min=0"`
	MaxStock    *int64           `json:"max_stock" validate:"omitempty,min=0"`
	Unit        *string          `json:"unit"`
	Price       *decimal.Decimal `json:"price"`
}

// ProductResponse salida de un producto con indicadores derivados de stock.
type ProductResponse struct {
	ID              string          `json:"id"`
	Code            string          `json:"code"`
	Name            string          `json:"name"`
	Description     string          `json:"description"`
	CurrentStock    int64           `json:"current_stock"`
	MinStock        int64           `json:"min_stock"`
	MaxStock        int64           `json:"max_stock"`
	Unit            string          `json:"unit"`
	Price           decimal.Decimal `json:"price"`
	StockPercentage float64         `json:"stock_percentage"`
	NeedsReorder    bool            `json:"needs_reorder"`
	IsStockLow      bool            `json:"is_stock_low"`
	IsStockHigh     bool            `json:"is_stock_high"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

// ProductListResponse lista paginada de productos con total sin paginar.
type ProductListResponse struct {
	Items []ProductResponse `json:"items"`
	Total int               `json:"total"`
	Page  PageResponse      `json:"page"`
}
