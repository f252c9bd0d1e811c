package entity

import "time"

// Tipos de movimiento de inventario.
const (
	MovementTypeIN  = "IN"  // entrada: delta positivo
	MovementTypeOUT = "OUT" // salida: delta negativo
)

// Movement es el registro inmutable de auditoría de un cambio de stock.
// Se crea exactamente una vez por movimiento aceptado; nunca se actualiza ni borra.
type Movement struct {
	ID            string
	ProductID     string
	Type          string
	QuantityDelta int64 // firmado: positivo entrada, negativo salida
	PreviousStock int64
	NewStock      int64 // stock resultante al confirmar este movimiento
	Reason        string
	CreatedBy     string // ID del usuario que registró el movimiento
	CreatedAt     time.Time
}
