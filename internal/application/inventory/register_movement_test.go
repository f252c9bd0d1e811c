package inventory_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tu-usuario/stock-control/internal/application/inventory"
	"github.com/tu-usuario/stock-control/internal/domain"
	"github.com/tu-usuario/stock-control/internal/domain/entity"
	"github.com/tu-usuario/stock-control/internal/domain/repository"
	"github.com/tu-usuario/stock-control/pkg/logger"
)

// ──────────────────────────────────────────────────────────────────────────────
// Fakes en memoria
//
// memStore emula la base de datos; memTxRunner emula la transacción con
// FOR UPDATE serializando cada Run con un mutex y aplicando los cambios
// sobre una copia staged que solo se confirma si fn no retorna error
// (semántica Commit/Rollback).
// ──────────────────────────────────────────────────────────────────────────────

type memStore struct {
	mu        sync.Mutex
	products  map[string]*entity.Product
	movements []*entity.Movement
	users     map[string]*entity.User
}

func newMemStore() *memStore {
	return &memStore{
		products: make(map[string]*entity.Product),
		users:    make(map[string]*entity.User),
	}
}

func cloneProduct(p *entity.Product) *entity.Product {
	cp := *p
	return &cp
}

// memProductRepo opera sobre el store (fuera de tx) o sobre la copia staged (dentro).
type memProductRepo struct {
	store  *memStore
	staged map[string]*entity.Product
	inTx   bool
}

func (r *memProductRepo) lock() func() {
	if r.inTx {
		// Dentro de la tx el mutex ya lo tiene el runner
		return func() {}
	}
	r.store.mu.Lock()
	return r.store.mu.Unlock
}

func (r *memProductRepo) products() map[string]*entity.Product {
	if r.inTx {
		return r.staged
	}
	return r.store.products
}

func (r *memProductRepo) Create(_ context.Context, p *entity.Product) error {
	defer r.lock()()
	r.products()[p.ID] = cloneProduct(p)
	return nil
}

func (r *memProductRepo) GetByID(_ context.Context, id string) (*entity.Product, error) {
	defer r.lock()()
	p, ok := r.products()[id]
	if !ok {
		return nil, nil
	}
	return cloneProduct(p), nil
}

func (r *memProductRepo) GetByCode(_ context.Context, code string) (*entity.Product, error) {
	defer r.lock()()
	for _, p := range r.products() {
		if p.Code == code {
			return cloneProduct(p), nil
		}
	}
	return nil, nil
}

func (r *memProductRepo) GetByIDForUpdate(ctx context.Context, id string) (*entity.Product, error) {
	return r.GetByID(ctx, id)
}

func (r *memProductRepo) Update(_ context.Context, p *entity.Product) error {
	defer r.lock()()
	r.products()[p.ID] = cloneProduct(p)
	return nil
}

func (r *memProductRepo) UpdateStock(_ context.Context, productID string, quantity int64) error {
	defer r.lock()()
	p, ok := r.products()[productID]
	if !ok {
		return domain.ErrNotFound
	}
	p.CurrentStock = quantity
	return nil
}

func (r *memProductRepo) List(_ context.Context, _ repository.ProductFilter) ([]*entity.Product, int, error) {
	return nil, 0, nil
}

func (r *memProductRepo) Delete(_ context.Context, id string) error {
	defer r.lock()()
	delete(r.products(), id)
	return nil
}

// memMovementRepo acumula en un slice propio; el runner lo vuelca al store en commit.
type memMovementRepo struct {
	created []*entity.Movement
}

func (r *memMovementRepo) Create(_ context.Context, m *entity.Movement) error {
	cp := *m
	r.created = append(r.created, &cp)
	return nil
}

func (r *memMovementRepo) GetByID(_ context.Context, id string) (*entity.Movement, error) {
	for _, m := range r.created {
		if m.ID == id {
			cp := *m
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *memMovementRepo) List(_ context.Context, _ string, _, _ int) ([]*entity.Movement, error) {
	return r.created, nil
}

type memUserRepo struct {
	store *memStore
}

func (r *memUserRepo) Create(_ context.Context, u *entity.User) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	r.store.users[u.ID] = u
	return nil
}

func (r *memUserRepo) GetByID(_ context.Context, id string) (*entity.User, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	u, ok := r.store.users[id]
	if !ok {
		return nil, nil
	}
	return u, nil
}

func (r *memUserRepo) FindByEmail(_ context.Context, email string) (*entity.User, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	for _, u := range r.store.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, nil
}

// memTxRunner serializa las transacciones (equivalente al FOR UPDATE sobre la
// fila del producto) y aplica semántica commit/rollback sobre copias staged.
type memTxRunner struct {
	store *memStore
	// failFirst inyecta conflictos de serialización en los primeros N intentos
	failFirst int
	attempts  int
}

func (t *memTxRunner) Run(_ context.Context, fn func(
	productRepo repository.ProductRepository,
	movRepo repository.MovementRepository,
) error) error {
	t.store.mu.Lock()
	defer t.store.mu.Unlock()

	t.attempts++
	if t.attempts <= t.failFirst {
		return fmt.Errorf("could not serialize access: %w", domain.ErrConflict)
	}

	staged := make(map[string]*entity.Product, len(t.store.products))
	for id, p := range t.store.products {
		staged[id] = cloneProduct(p)
	}
	productRepo := &memProductRepo{store: t.store, staged: staged, inTx: true}
	movRepo := &memMovementRepo{}

	if err := fn(productRepo, movRepo); err != nil {
		// Rollback: se descartan staged y movimientos
		return err
	}
	t.store.products = staged
	t.store.movements = append(t.store.movements, movRepo.created...)
	return nil
}

// ──────────────────────────────────────────────────────────────────────────────
// Fixture
// ──────────────────────────────────────────────────────────────────────────────

const (
	testProductID = "11111111-1111-1111-1111-111111111111"
	testOperator  = "22222222-2222-2222-2222-222222222222"
)

type fixture struct {
	store *memStore
	tx    *memTxRunner
	uc    *inventory.RegisterMovementUseCase
}

func newFixture(t *testing.T, seedStock, maxStock int64) *fixture {
	t.Helper()
	store := newMemStore()
	store.products[testProductID] = &entity.Product{
		ID:           testProductID,
		Code:         "LAP-001",
		Name:         "Laptop 14\"",
		CurrentStock: seedStock,
		MinStock:     2,
		MaxStock:     maxStock,
		Unit:         "unidades",
	}
	store.users[testOperator] = &entity.User{
		ID:     testOperator,
		Email:  "operator@test.local",
		Role:   entity.RoleOperator,
		Status: "active",
	}
	tx := &memTxRunner{store: store}
	log := logger.New(logger.Config{Env: "production", Level: "error"})
	uc := inventory.NewRegisterMovementUseCase(
		tx,
		&memProductRepo{store: store},
		&memUserRepo{store: store},
		log,
	)
	return &fixture{store: store, tx: tx, uc: uc}
}

func outMovement(delta int64) inventory.MovementInput {
	return inventory.MovementInput{
		UserID:        testOperator,
		ProductID:     testProductID,
		QuantityDelta: delta,
		Type:          entity.MovementTypeOUT,
		Reason:        "venta mostrador",
	}
}

func inMovement(delta int64) inventory.MovementInput {
	return inventory.MovementInput{
		UserID:        testOperator,
		ProductID:     testProductID,
		QuantityDelta: delta,
		Type:          entity.MovementTypeIN,
		Reason:        "reposición proveedor",
	}
}

// ──────────────────────────────────────────────────────────────────────────────
// Validación de entrada
// ──────────────────────────────────────────────────────────────────────────────

func TestRegisterMovement_ValidacionEntrada(t *testing.T) {
	f := newFixture(t, 10, 100)

	cases := []struct {
		name  string
		input inventory.MovementInput
	}{
		{"delta cero", inventory.MovementInput{UserID: testOperator, ProductID: testProductID, QuantityDelta: 0, Type: entity.MovementTypeIN, Reason: "ajuste"}},
		{"IN con delta negativo", inventory.MovementInput{UserID: testOperator, ProductID: testProductID, QuantityDelta: -5, Type: entity.MovementTypeIN, Reason: "ajuste"}},
		{"OUT con delta positivo", inventory.MovementInput{UserID: testOperator, ProductID: testProductID, QuantityDelta: 5, Type: entity.MovementTypeOUT, Reason: "ajuste"}},
		{"tipo desconocido", inventory.MovementInput{UserID: testOperator, ProductID: testProductID, QuantityDelta: 5, Type: "ADJUST", Reason: "ajuste"}},
		{"razón muy corta", inventory.MovementInput{UserID: testOperator, ProductID: testProductID, QuantityDelta: 5, Type: entity.MovementTypeIN, Reason: "ok"}},
		{"razón solo espacios", inventory.MovementInput{UserID: testOperator, ProductID: testProductID, QuantityDelta: 5, Type: entity.MovementTypeIN, Reason: "      "}},
		{"sin product_id", inventory.MovementInput{UserID: testOperator, QuantityDelta: 5, Type: entity.MovementTypeIN, Reason: "ajuste"}},
		{"product_id no es UUID", inventory.MovementInput{UserID: testOperator, ProductID: "laptop-14", QuantityDelta: 5, Type: entity.MovementTypeIN, Reason: "ajuste"}},
		{"user_id no es UUID", inventory.MovementInput{UserID: "operador-1", ProductID: testProductID, QuantityDelta: 5, Type: entity.MovementTypeIN, Reason: "ajuste"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := f.uc.RegisterMovement(context.Background(), tc.input)
			assert.ErrorIs(t, err, domain.ErrInvalidInput)
		})
	}

	assert.Empty(t, f.store.movements,
		"entradas inválidas no deben generar filas de auditoría")
	assert.Zero(t, f.tx.attempts,
		"entradas inválidas se rechazan antes de abrir transacción alguna")
}

// ──────────────────────────────────────────────────────────────────────────────
// Casos de negocio
// ──────────────────────────────────────────────────────────────────────────────

// Salida válida seguida de una salida que dejaría el stock en negativo:
// la primera confirma, la segunda se rechaza sin tocar stock ni auditoría.
func TestRegisterMovement_SalidaYRechazoStockNegativo(t *testing.T) {
	f := newFixture(t, 10, 100)

	resp, err := f.uc.RegisterMovement(context.Background(), outMovement(-4))
	require.NoError(t, err)
	assert.Equal(t, int64(10), resp.PreviousStock)
	assert.Equal(t, int64(6), resp.NewStock)
	assert.Equal(t, entity.MovementTypeOUT, resp.Type)
	assert.Equal(t, testOperator, resp.CreatedBy)

	_, err = f.uc.RegisterMovement(context.Background(), outMovement(-10))
	assert.ErrorIs(t, err, domain.ErrInsufficientStock,
		"una salida mayor al stock disponible debe rechazarse")

	assert.Equal(t, int64(6), f.store.products[testProductID].CurrentStock,
		"el rechazo no debe modificar el stock")
	assert.Len(t, f.store.movements, 1,
		"el rechazo no debe dejar fila de auditoría")
}

// El rechazo es idempotente: reintentar el mismo movimiento rechazado vuelve
// a fallar con el mismo error y sin efectos.
func TestRegisterMovement_RechazoIdempotente(t *testing.T) {
	f := newFixture(t, 3, 100)

	for i := 0; i < 3; i++ {
		_, err := f.uc.RegisterMovement(context.Background(), outMovement(-5))
		assert.ErrorIs(t, err, domain.ErrInsufficientStock)
	}
	assert.Equal(t, int64(3), f.store.products[testProductID].CurrentStock)
	assert.Empty(t, f.store.movements)
}

func TestRegisterMovement_EntradaSuperaMaximo(t *testing.T) {
	f := newFixture(t, 95, 100)

	_, err := f.uc.RegisterMovement(context.Background(), inMovement(10))
	assert.ErrorIs(t, err, domain.ErrStockExceedsMax,
		"una entrada que supere max_stock debe rechazarse")
	assert.Equal(t, int64(95), f.store.products[testProductID].CurrentStock)

	// Hasta el tope exacto sí se permite
	resp, err := f.uc.RegisterMovement(context.Background(), inMovement(5))
	require.NoError(t, err)
	assert.Equal(t, int64(100), resp.NewStock)
}

func TestRegisterMovement_ProductoInexistente(t *testing.T) {
	f := newFixture(t, 10, 100)

	input := outMovement(-1)
	input.ProductID = "99999999-9999-9999-9999-999999999999"
	_, err := f.uc.RegisterMovement(context.Background(), input)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestRegisterMovement_UsuarioInactivo(t *testing.T) {
	f := newFixture(t, 10, 100)
	f.store.users[testOperator].Status = "inactive"

	_, err := f.uc.RegisterMovement(context.Background(), outMovement(-1))
	assert.ErrorIs(t, err, domain.ErrUserNotFound)
}

// ──────────────────────────────────────────────────────────────────────────────
// Concurrencia
// ──────────────────────────────────────────────────────────────────────────────

// Dos salidas concurrentes (-3 y -4) sobre stock 5: exactamente una debe
// confirmar y la otra rechazarse por stock insuficiente. El stock final es
// coherente con el movimiento aceptado y hay exactamente una fila de auditoría.
func TestRegisterMovement_ConcurrenciaUnaSolaAcepta(t *testing.T) {
	f := newFixture(t, 5, 100)

	deltas := []int64{-3, -4}
	errs := make([]error, len(deltas))

	var wg sync.WaitGroup
	for i, d := range deltas {
		wg.Add(1)
		go func(i int, d int64) {
			defer wg.Done()
			_, errs[i] = f.uc.RegisterMovement(context.Background(), outMovement(d))
		}(i, d)
	}
	wg.Wait()

	accepted := make([]int64, 0, 2)
	for i, err := range errs {
		if err == nil {
			accepted = append(accepted, deltas[i])
		} else {
			assert.ErrorIs(t, err, domain.ErrInsufficientStock,
				"el movimiento perdedor debe rechazarse por stock insuficiente")
		}
	}
	require.Len(t, accepted, 1, "exactamente un movimiento debe confirmar")

	finalStock := f.store.products[testProductID].CurrentStock
	assert.Equal(t, 5+accepted[0], finalStock,
		"el stock final debe reflejar solo el movimiento aceptado")
	assert.GreaterOrEqual(t, finalStock, int64(0))
	require.Len(t, f.store.movements, 1)
	assert.Equal(t, accepted[0], f.store.movements[0].QuantityDelta)
}

// Muchas salidas concurrentes de 1 unidad sobre stock N: nunca se acepta más
// de N y el stock jamás queda negativo.
func TestRegisterMovement_ConcurrenciaNoSobrevende(t *testing.T) {
	const seed = 7
	const workers = 20
	f := newFixture(t, seed, 100)

	var wg sync.WaitGroup
	var acceptedCount int32
	var mu sync.Mutex

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.uc.RegisterMovement(context.Background(), outMovement(-1))
			if err == nil {
				mu.Lock()
				acceptedCount++
				mu.Unlock()
			} else {
				assert.ErrorIs(t, err, domain.ErrInsufficientStock)
			}
		}()
	}
	wg.Wait()

	assert.EqualValues(t, seed, acceptedCount,
		"deben aceptarse exactamente tantas salidas como unidades había")
	assert.EqualValues(t, 0, f.store.products[testProductID].CurrentStock)
	assert.Len(t, f.store.movements, seed)
}

// ──────────────────────────────────────────────────────────────────────────────
// Auditoría
// ──────────────────────────────────────────────────────────────────────────────

// El stock final siempre es reconstruible: semilla + suma de deltas aceptados.
// Además la cadena previous/new de cada movimiento es internamente consistente.
func TestRegisterMovement_AuditoriaReconstruyeStock(t *testing.T) {
	const seed = 20
	f := newFixture(t, seed, 100)

	script := []inventory.MovementInput{
		outMovement(-5),
		inMovement(12),
		outMovement(-8),
		outMovement(-30), // rechazado: dejaría stock negativo
		inMovement(3),
	}
	for _, in := range script {
		_, _ = f.uc.RegisterMovement(context.Background(), in)
	}

	var sum int64
	for _, m := range f.store.movements {
		sum += m.QuantityDelta
		assert.Equal(t, m.PreviousStock+m.QuantityDelta, m.NewStock,
			"cada fila de auditoría debe ser internamente consistente")
		assert.GreaterOrEqual(t, m.NewStock, int64(0))
		assert.NotEmpty(t, m.ID)
		assert.Equal(t, testOperator, m.CreatedBy)
	}
	assert.Len(t, f.store.movements, 4, "el movimiento rechazado no audita")
	assert.Equal(t, seed+sum, f.store.products[testProductID].CurrentStock,
		"semilla + suma de deltas aceptados debe igualar el stock final")
}

// ──────────────────────────────────────────────────────────────────────────────
// Reintentos ante conflictos de serialización
// ──────────────────────────────────────────────────────────────────────────────

func TestRegisterMovement_ReintentaTrasConflicto(t *testing.T) {
	f := newFixture(t, 10, 100)
	f.tx.failFirst = 2 // los dos primeros intentos fallan con 40001 emulado

	resp, err := f.uc.RegisterMovement(context.Background(), outMovement(-4))
	require.NoError(t, err, "el tercer intento debe confirmar")
	assert.Equal(t, int64(6), resp.NewStock)
	assert.Equal(t, 3, f.tx.attempts)
}

func TestRegisterMovement_ConflictoAgotaReintentos(t *testing.T) {
	f := newFixture(t, 10, 100)
	f.tx.failFirst = 10 // conflicto permanente

	_, err := f.uc.RegisterMovement(context.Background(), outMovement(-4))
	assert.ErrorIs(t, err, domain.ErrConflict,
		"agotados los reintentos debe aflorar el conflicto")
	assert.Equal(t, 3, f.tx.attempts, "debe intentar exactamente maxAttempts veces")
	assert.Equal(t, int64(10), f.store.products[testProductID].CurrentStock)
	assert.Empty(t, f.store.movements)
}

func TestRegisterMovement_ContextoCanceladoDuranteEspera(t *testing.T) {
	f := newFixture(t, 10, 100)
	f.tx.failFirst = 10

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := f.uc.RegisterMovement(ctx, outMovement(-4))
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.Canceled) || errors.Is(err, domain.ErrConflict),
		"con contexto cancelado no debe quedarse esperando el backoff")
	assert.Empty(t, f.store.movements)
}
