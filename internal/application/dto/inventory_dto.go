package dto

import "time"

// RegisterMovementRequest body para POST /api/inventory/movements.
// QuantityDelta es firmado: positivo para IN, negativo para OUT; el tipo
// debe ser consistente con el signo.
type RegisterMovementRequest struct {
	ProductID     string `json:"product_id"`
	QuantityDelta int64  `json:"quantity_delta"`
	Type          string `json:"type"`
	Reason        string `json:"reason"`
}

// MovementResponse salida de un movimiento registrado.
type MovementResponse struct {
	ID            string    `json:"id"`
	ProductID     string    `json:"product_id"`
	ProductCode   string    `json:"product_code,omitempty"`
	ProductName   string    `json:"product_name,omitempty"`
	Type          string    `json:"type"`
	QuantityDelta int64     `json:"quantity_delta"`
	PreviousStock int64     `json:"previous_stock"`
	NewStock      int64     `json:"new_stock"`
	Reason        string    `json:"reason"`
	CreatedBy     string    `json:"created_by"`
	CreatedAt     time.Time `json:"created_at"`
}

// MovementListResponse lista paginada de movimientos (auditoría).
type MovementListResponse struct {
	Items []MovementResponse `json:"items"`
	Page  PageResponse       `json:"page"`
}

// InventoryStatusResponse resumen agregado del inventario: conteos por estado
// de stock y los productos que requieren reposición.
type InventoryStatusResponse struct {
	TotalProducts int               `json:"total_products"`
	TotalUnits    int64             `json:"total_units"`
	NeedsReorder  int               `json:"needs_reorder"`
	LowStock      int               `json:"low_stock"`
	HighStock     int               `json:"high_stock"`
	Alerts        []ProductResponse `json:"alerts"`
}
