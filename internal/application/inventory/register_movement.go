package inventory

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/tu-usuario/stock-control/internal/application/dto"
	"github.com/tu-usuario/stock-control/internal/domain"
	"github.com/tu-usuario/stock-control/internal/domain/entity"
	"github.com/tu-usuario/stock-control/internal/domain/repository"
	"github.com/tu-usuario/stock-control/pkg/backoff"
	"github.com/tu-usuario/stock-control/pkg/logger"
)

// Parámetros del reintento ante conflictos de serialización (40001/40P01).
const (
	maxAttempts  = 3
	retryBase    = 10 * time.Millisecond
	retryMaxWait = 100 * time.Millisecond
)

// RegisterMovementUseCase registra movimientos de inventario de forma transaccional:
// bloqueo de fila (SELECT FOR UPDATE), validación de límites de stock, fila de
// auditoría y Commit/Rollback, con reintento acotado ante conflictos.
type RegisterMovementUseCase struct {
	txRunner    TxRunner
	productRepo repository.ProductRepository
	userRepo    repository.UserRepository
	log         *logger.Logger
}

// NewRegisterMovementUseCase construye el caso de uso.
func NewRegisterMovementUseCase(
	txRunner TxRunner,
	productRepo repository.ProductRepository,
	userRepo repository.UserRepository,
	log *logger.Logger,
) *RegisterMovementUseCase {
	return &RegisterMovementUseCase{
		txRunner:    txRunner,
		productRepo: productRepo,
		userRepo:    userRepo,
		log:         log,
	}
}

// MovementInput entrada para registrar un movimiento de inventario.
// QuantityDelta firmado: IN exige delta > 0, OUT exige delta < 0.
type MovementInput struct {
	UserID        string
	ProductID     string
	QuantityDelta int64
	Type          string
	Reason        string
}

// RegisterMovement valida la entrada, verifica usuario y producto, y aplica el
// movimiento dentro de una transacción. Ante un conflicto de serialización
// reintenta la operación completa hasta maxAttempts veces con backoff; si los
// reintentos se agotan devuelve domain.ErrConflict.
func (uc *RegisterMovementUseCase) RegisterMovement(ctx context.Context, input MovementInput) (*dto.MovementResponse, error) {
	if err := validateInput(input); err != nil {
		return nil, err
	}

	// Verificar que el usuario exista y esté activo (antes de abrir transacción)
	user, err := uc.userRepo.GetByID(ctx, input.UserID)
	if err != nil {
		return nil, err
	}
	if user == nil || !user.IsActive() {
		return nil, domain.ErrUserNotFound
	}

	// Verificación rápida de existencia; la lectura autoritativa es la que
	// bloquea la fila dentro de la transacción.
	product, err := uc.productRepo.GetByID(ctx, input.ProductID)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, domain.ErrNotFound
	}

	var resp *dto.MovementResponse
	for attempt := 0; attempt < maxAttempts; attempt++ {
		resp, err = uc.runMovementTx(ctx, input)
		if err == nil {
			uc.log.Info().
				Str("product_id", input.ProductID).
				Str("type", input.Type).
				Int64("delta", input.QuantityDelta).
				Int64("new_stock", resp.NewStock).
				Msg("movimiento registrado")
			return resp, nil
		}
		if !errors.Is(err, domain.ErrConflict) {
			return nil, err
		}
		// Conflicto de serialización: esperar y reintentar la operación completa
		wait := backoff.Exponential(retryBase, retryMaxWait, attempt, backoff.DefaultJitter)
		uc.log.Warn().
			Str("product_id", input.ProductID).
			Int("attempt", attempt+1).
			Dur("wait", wait).
			Msg("conflicto de concurrencia, reintentando movimiento")
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(wait):
		}
	}
	return nil, domain.ErrConflict
}

// runMovementTx ejecuta un intento del movimiento: bloquea la fila del
// producto, aplica el delta, persiste stock y auditoría, y confirma.
func (uc *RegisterMovementUseCase) runMovementTx(ctx context.Context, input MovementInput) (*dto.MovementResponse, error) {
	var resp dto.MovementResponse
	err := uc.txRunner.Run(ctx, func(
		productRepo repository.ProductRepository,
		movRepo repository.MovementRepository,
	) error {
		product, err := productRepo.GetByIDForUpdate(ctx, input.ProductID)
		if err != nil {
			return err
		}
		if product == nil {
			return domain.ErrNotFound
		}

		previous := product.CurrentStock
		if err := product.ApplyDelta(input.QuantityDelta); err != nil {
			// Rollback implícito: ni producto ni movimiento se escriben
			return err
		}
		if err := productRepo.UpdateStock(ctx, product.ID, product.CurrentStock); err != nil {
			return err
		}

		movement := &entity.Movement{
			ID:            uuid.New().String(),
			ProductID:     product.ID,
			Type:          input.Type,
			QuantityDelta: input.QuantityDelta,
			PreviousStock: previous,
			NewStock:      product.CurrentStock,
			Reason:        strings.TrimSpace(input.Reason),
			CreatedBy:     input.UserID,
			CreatedAt:     time.Now(),
		}
		if err := movRepo.Create(ctx, movement); err != nil {
			return err
		}

		resp = dto.MovementResponse{
			ID:            movement.ID,
			ProductID:     product.ID,
			ProductCode:   product.Code,
			ProductName:   product.Name,
			Type:          movement.Type,
			QuantityDelta: movement.QuantityDelta,
			PreviousStock: movement.PreviousStock,
			NewStock:      movement.NewStock,
			Reason:        movement.Reason,
			CreatedBy:     movement.CreatedBy,
			CreatedAt:     movement.CreatedAt,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &resp, nil
}

// validateInput valida formato y consistencia tipo/signo antes de tocar la BD.
// Incluye el formato UUID de los IDs: un ID malformado jamás llega a una query.
func validateInput(input MovementInput) error {
	if _, err := uuid.Parse(input.ProductID); err != nil {
		return domain.ErrInvalidInput
	}
	if _, err := uuid.Parse(input.UserID); err != nil {
		return domain.ErrInvalidInput
	}
	if input.QuantityDelta == 0 {
		return domain.ErrInvalidInput
	}
	switch input.Type {
	case entity.MovementTypeIN:
		if input.QuantityDelta < 0 {
			return domain.ErrInvalidInput
		}
	case entity.MovementTypeOUT:
		if input.QuantityDelta > 0 {
			return domain.ErrInvalidInput
		}
	default:
		return domain.ErrInvalidInput
	}
	if len(strings.TrimSpace(input.Reason)) < 3 {
		return domain.ErrInvalidInput
	}
	return nil
}
