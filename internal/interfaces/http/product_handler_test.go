package http_test

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"sort"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tu-usuario/stock-control/internal/application/dto"
	"github.com/tu-usuario/stock-control/internal/application/usecase"
	"github.com/tu-usuario/stock-control/internal/domain"
	"github.com/tu-usuario/stock-control/internal/domain/entity"
	"github.com/tu-usuario/stock-control/internal/domain/repository"
	apphttp "github.com/tu-usuario/stock-control/internal/interfaces/http"
)

// fakeProductRepo implementa repository.ProductRepository en memoria con la
// misma semántica de List que la implementación SQL: filtro, orden por code,
// total sin paginar y página LIMIT/OFFSET. deleteErr permite emular el rechazo
// de la base de datos al borrar (violación de FK).
type fakeProductRepo struct {
	products  []*entity.Product
	deleteErr error
}

func (r *fakeProductRepo) Create(_ context.Context, p *entity.Product) error {
	r.products = append(r.products, p)
	return nil
}

func (r *fakeProductRepo) GetByID(_ context.Context, id string) (*entity.Product, error) {
	for _, p := range r.products {
		if p.ID == id {
			return p, nil
		}
	}
	return nil, nil
}

func (r *fakeProductRepo) GetByCode(_ context.Context, code string) (*entity.Product, error) {
	for _, p := range r.products {
		if p.Code == code {
			return p, nil
		}
	}
	return nil, nil
}

func (r *fakeProductRepo) GetByIDForUpdate(ctx context.Context, id string) (*entity.Product, error) {
	return r.GetByID(ctx, id)
}

func (r *fakeProductRepo) Update(_ context.Context, _ *entity.Product) error { return nil }

func (r *fakeProductRepo) UpdateStock(_ context.Context, _ string, _ int64) error { return nil }

func (r *fakeProductRepo) List(_ context.Context, f repository.ProductFilter) ([]*entity.Product, int, error) {
	matched := make([]*entity.Product, 0, len(r.products))
	for _, p := range r.products {
		if f.Search != "" {
			s := strings.ToLower(f.Search)
			if !strings.Contains(strings.ToLower(p.Code), s) &&
				!strings.Contains(strings.ToLower(p.Name), s) &&
				!strings.Contains(strings.ToLower(p.Description), s) {
				continue
			}
		}
		if f.MinStock != nil && p.CurrentStock < *f.MinStock {
			continue
		}
		if f.MaxStock != nil && p.CurrentStock > *f.MaxStock {
			continue
		}
		matched = append(matched, p)
	}
	sort.Slice(matched, func(i, j int) bool { return matched[i].Code < matched[j].Code })
	total := len(matched)

	if f.Offset >= len(matched) {
		return nil, total, nil
	}
	matched = matched[f.Offset:]
	if f.Limit < len(matched) {
		matched = matched[:f.Limit]
	}
	return matched, total, nil
}

func (r *fakeProductRepo) Delete(_ context.Context, id string) error {
	if r.deleteErr != nil {
		return r.deleteErr
	}
	for i, p := range r.products {
		if p.ID == id {
			r.products = append(r.products[:i], r.products[i+1:]...)
			return nil
		}
	}
	return nil
}

// buildProductApp monta solo las rutas de productos, sin middleware de auth:
// aquí se prueba paginación y filtros, el RBAC tiene sus propios tests.
func buildProductApp(repo *fakeProductRepo) *fiber.App {
	app := fiber.New()
	h := apphttp.NewProductHandler(usecase.NewProductUseCase(repo))
	app.Get("/products", h.List)
	app.Get("/products/:id", h.GetByID)
	app.Delete("/products/:id", h.Delete)
	return app
}

// catalogID devuelve el UUID determinista del producto i del catálogo de prueba.
func catalogID(i int) string {
	return fmt.Sprintf("00000000-0000-0000-0000-0000000000%02d", i)
}

func seedCatalog(n int) *fakeProductRepo {
	repo := &fakeProductRepo{}
	for i := 1; i <= n; i++ {
		repo.products = append(repo.products, &entity.Product{
			ID:           catalogID(i),
			Code:         fmt.Sprintf("PRD-%03d", i),
			Name:         fmt.Sprintf("Producto %d", i),
			CurrentStock: int64(i * 10),
			MinStock:     5,
			MaxStock:     1000,
			Unit:         "unidades",
		})
	}
	return repo
}

func listProducts(t *testing.T, app *fiber.App, query string) (*http.Response, dto.ProductListResponse) {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/products"+query, nil)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	var body dto.ProductListResponse
	if resp.StatusCode == http.StatusOK {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	}
	return resp, body
}

// ──────────────────────────────────────────────────────────────────────────────
// Paginación
// ──────────────────────────────────────────────────────────────────────────────

func TestListProducts_PrimeraPagina(t *testing.T) {
	app := buildProductApp(seedCatalog(5))

	resp, body := listProducts(t, app, "?limit=2&offset=0")
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	require.Len(t, body.Items, 2)
	assert.Equal(t, 5, body.Total, "total debe ser el conteo sin paginar")
	assert.Equal(t, "PRD-001", body.Items[0].Code, "orden estable por code")
	assert.Equal(t, "PRD-002", body.Items[1].Code)
	assert.Equal(t, 2, body.Page.Limit)
	assert.Equal(t, 0, body.Page.Offset)
}

func TestListProducts_UltimaPaginaParcial(t *testing.T) {
	app := buildProductApp(seedCatalog(5))

	resp, body := listProducts(t, app, "?limit=2&offset=4")
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	require.Len(t, body.Items, 1, "la última página puede venir incompleta")
	assert.Equal(t, 5, body.Total)
	assert.Equal(t, "PRD-005", body.Items[0].Code)
}

func TestListProducts_OffsetMasAllaDelFinal(t *testing.T) {
	app := buildProductApp(seedCatalog(5))

	resp, body := listProducts(t, app, "?limit=10&offset=50")
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode,
		"offset más allá del final es página vacía, no error")
	assert.Empty(t, body.Items)
	assert.Equal(t, 5, body.Total)
}

func TestListProducts_LimitesInvalidosRetornan400(t *testing.T) {
	app := buildProductApp(seedCatalog(5))

	for _, query := range []string{"?limit=0", "?limit=101", "?offset=-1", "?limit=-5"} {
		t.Run(query, func(t *testing.T) {
			resp, _ := listProducts(t, app, query)
			defer resp.Body.Close()
			assert.Equal(t, http.StatusBadRequest, resp.StatusCode,
				"límites fuera de rango deben rechazarse antes de consultar")
		})
	}
}

func TestListProducts_DefaultsSinParametros(t *testing.T) {
	app := buildProductApp(seedCatalog(5))

	resp, body := listProducts(t, app, "")
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Len(t, body.Items, 5)
	assert.Equal(t, 20, body.Page.Limit, "limit por defecto es 20")
}

// ──────────────────────────────────────────────────────────────────────────────
// Filtros
// ──────────────────────────────────────────────────────────────────────────────

func TestListProducts_FiltroSearch(t *testing.T) {
	app := buildProductApp(seedCatalog(5))

	resp, body := listProducts(t, app, "?search=PRD-003")
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	require.Len(t, body.Items, 1)
	assert.Equal(t, "PRD-003", body.Items[0].Code)
	assert.Equal(t, 1, body.Total)
}

func TestListProducts_FiltroRangoDeStock(t *testing.T) {
	// Stocks sembrados: 10, 20, 30, 40, 50
	app := buildProductApp(seedCatalog(5))

	resp, body := listProducts(t, app, "?min_stock=20&max_stock=40")
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Len(t, body.Items, 3)
	assert.Equal(t, 3, body.Total)
	for _, item := range body.Items {
		assert.GreaterOrEqual(t, item.CurrentStock, int64(20))
		assert.LessOrEqual(t, item.CurrentStock, int64(40))
	}
}

// ──────────────────────────────────────────────────────────────────────────────
// GetByID
// ──────────────────────────────────────────────────────────────────────────────

func TestGetProduct_Existente(t *testing.T) {
	app := buildProductApp(seedCatalog(3))

	req := httptest.NewRequest(http.MethodGet, "/products/"+catalogID(2), nil)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var body dto.ProductResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "PRD-002", body.Code)
	assert.Equal(t, int64(20), body.CurrentStock)
}

func TestGetProduct_Inexistente_Retorna404(t *testing.T) {
	app := buildProductApp(seedCatalog(3))

	req := httptest.NewRequest(http.MethodGet, "/products/"+catalogID(99), nil)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

// Un id que no es UUID se rechaza con 400 antes de tocar la base de datos:
// así nunca llega un literal malformado a la columna UUID.
func TestGetProduct_IDMalformado_Retorna400(t *testing.T) {
	app := buildProductApp(seedCatalog(3))

	req := httptest.NewRequest(http.MethodGet, "/products/no-es-uuid", nil)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	body, _ := io.ReadAll(resp.Body)
	assert.Contains(t, string(body), "VALIDATION")
}

// ──────────────────────────────────────────────────────────────────────────────
// Delete
// ──────────────────────────────────────────────────────────────────────────────

func TestDeleteProduct_Existente_Retorna204(t *testing.T) {
	repo := seedCatalog(3)
	app := buildProductApp(repo)

	req := httptest.NewRequest(http.MethodDelete, "/products/"+catalogID(2), nil)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	assert.Len(t, repo.products, 2)
}

func TestDeleteProduct_Inexistente_Retorna404(t *testing.T) {
	app := buildProductApp(seedCatalog(3))

	req := httptest.NewRequest(http.MethodDelete, "/products/"+catalogID(99), nil)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestDeleteProduct_IDMalformado_Retorna400(t *testing.T) {
	app := buildProductApp(seedCatalog(3))

	req := httptest.NewRequest(http.MethodDelete, "/products/tampoco-uuid", nil)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

// Un producto con movimientos registrados no puede eliminarse: la FK de la
// tabla movements lo impide y la API responde 409 estructurado, no 500.
func TestDeleteProduct_ConMovimientos_Retorna409(t *testing.T) {
	repo := seedCatalog(3)
	repo.deleteErr = domain.ErrProductInUse
	app := buildProductApp(repo)

	req := httptest.NewRequest(http.MethodDelete, "/products/"+catalogID(1), nil)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	body, _ := io.ReadAll(resp.Body)
	assert.Contains(t, string(body), "PRODUCT_IN_USE")
	assert.Len(t, repo.products, 3, "el producto sigue existiendo tras el rechazo")
}
