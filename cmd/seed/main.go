// Seed de desarrollo: crea usuarios demo (uno por rol) y productos de ejemplo.
// Uso: go run ./cmd/seed
package main

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"

	"github.com/tu-usuario/stock-control/internal/domain/entity"
	"github.com/tu-usuario/stock-control/internal/infrastructure/postgres"
	"github.com/tu-usuario/stock-control/pkg/config"
	"github.com/tu-usuario/stock-control/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}
	log := logger.New(logger.Config{Env: cfg.App.Env, Level: "info"})

	ctx := context.Background()

	if err := postgres.Migrate(cfg.DB.ConnectionString(), "file://migrations"); err != nil {
		log.Fatal().Err(err).Msg("migraciones")
	}
	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a PostgreSQL")
	}
	defer pool.Close()

	userRepo := postgres.NewUserRepository(pool)
	productRepo := postgres.NewProductRepository(pool)
	now := time.Now()

	users := []struct {
		email, name, role string
	}{
		{"admin@demo.local", "Admin Demo", entity.RoleAdmin},
		{"manager@demo.local", "Manager Demo", entity.RoleManager},
		{"operator@demo.local", "Operator Demo", entity.RoleOperator},
		{"viewer@demo.local", "Viewer Demo", entity.RoleViewer},
	}
	for _, u := range users {
		existing, _ := userRepo.FindByEmail(ctx, u.email)
		if existing != nil {
			continue
		}
		hash, err := bcrypt.GenerateFromPassword([]byte("demo1234"), bcrypt.DefaultCost)
		if err != nil {
			log.Fatal().Err(err).Msg("hash de password")
		}
		err = userRepo.Create(ctx, &entity.User{
			ID:           uuid.New().String(),
			Email:        u.email,
			PasswordHash: string(hash),
			Name:         u.name,
			Role:         u.role,
			Status:       "active",
			CreatedAt:    now,
			UpdatedAt:    now,
		})
		if err != nil {
			log.Fatal().Err(err).Str("email", u.email).Msg("crear usuario")
		}
		log.Info().Str("email", u.email).Str("role", u.role).Msg("usuario creado")
	}

	products := []struct {
		code, name, unit   string
		stock, min, max    int64
		price              string
	}{
		{"LAP-001", "Laptop 14\"", "unidades", 10, 2, 50, "2500000"},
		{"MOU-001", "Mouse inalámbrico", "unidades", 40, 10, 200, "65000"},
		{"TEC-001", "Teclado mecánico", "unidades", 25, 5, 100, "180000"},
		{"MON-001", "Monitor 27\"", "unidades", 8, 2, 30, "1100000"},
		{"CAB-001", "Cable HDMI 2m", "unidades", 120, 20, 500, "25000"},
	}
	for _, p := range products {
		existing, _ := productRepo.GetByCode(ctx, p.code)
		if existing != nil {
			continue
		}
		price, _ := decimal.NewFromString(p.price)
		err := productRepo.Create(ctx, &entity.Product{
			ID:           uuid.New().String(),
			Code:         p.code,
			Name:         p.name,
			CurrentStock: p.stock,
			MinStock:     p.min,
			MaxStock:     p.max,
			Unit:         p.unit,
			Price:        price,
			CreatedAt:    now,
			UpdatedAt:    now,
		})
		if err != nil {
			log.Fatal().Err(err).Str("code", p.code).Msg("crear producto")
		}
		log.Info().Str("code", p.code).Int64("stock", p.stock).Msg("producto creado")
	}

	log.Info().Msg("seed completado")
}
