// Package main provides a CLI tool for seeding the database with initial data.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/Senanu-web/bskal-enterprise/internal/core/apperror"
	"github.com/Senanu-web/bskal-enterprise/internal/core/types"
	"github.com/Senanu-web/bskal-enterprise/internal/domain/branches"
	"github.com/Senanu-web/bskal-enterprise/internal/domain/catalog"
	"github.com/Senanu-web/bskal-enterprise/internal/domain/staff"
	"github.com/Senanu-web/bskal-enterprise/internal/infrastructure/storage/postgres"
	"github.com/Senanu-web/bskal-enterprise/pkg/logger"
)

func main() {
	log, err := logger.New(logger.Config{
		Level:       "info",
		Development: true,
	})
	if err != nil {
		fmt.Printf("failed to create logger: %v\n", err)
		os.Exit(1)
	}

	ctx := context.Background()

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		log.Fatal("DATABASE_URL environment variable is required")
	}

	pool, err := postgres.NewPool(ctx, postgres.DefaultPoolConfig(dbURL))
	if err != nil {
		log.Fatalw("failed to connect to database", "error", err)
	}
	defer pool.Close()

	log.Info("connected to database")

	txManager := postgres.NewTxManager(pool)
	auditService, err := postgres.NewAuditService(txManager)
	if err != nil {
		log.Fatalw("failed to create audit service", "error", err)
	}

	branchService := branches.NewService(postgres.NewBranchRepo(txManager), txManager, auditService)
	jwtService := staff.NewJWTService(staff.DefaultJWTConfig(getEnv("JWT_SECRET", "change-me-in-production")))
	staffService := staff.NewService(postgres.NewStaffRepo(txManager), jwtService, txManager, auditService)
	catalogService := catalog.NewService(postgres.NewProductRepo(txManager), txManager, auditService)

	branchID, err := seedBranch(ctx, branchService, log)
	if err != nil {
		log.Fatalw("failed to seed branch", "error", err)
	}

	if err := seedManager(ctx, staffService, branchID, log); err != nil {
		log.Fatalw("failed to seed manager account", "error", err)
	}

	if os.Getenv("SEED_DEMO_DATA") == "true" {
		if err := seedProducts(ctx, catalogService, log); err != nil {
			log.Fatalw("failed to seed demo products", "error", err)
		}
	}

	log.Info("seeding completed successfully")
}

func seedBranch(ctx context.Context, svc *branches.Service, log *logger.Logger) (int64, error) {
	existing, err := svc.List(ctx)
	if err != nil {
		return 0, err
	}
	if len(existing) > 0 {
		log.Infow("branch already exists, skipping", "name", existing[0].Name)
		return existing[0].ID, nil
	}

	b := &branches.Branch{
		Name:    getEnv("SEED_BRANCH_NAME", "Main Branch"),
		Address: getEnv("SEED_BRANCH_ADDRESS", "Accra"),
		Phone:   getEnv("SEED_BRANCH_PHONE", ""),
	}
	if err := svc.Create(ctx, b); err != nil {
		return 0, err
	}
	log.Infow("branch created", "id", b.ID, "name", b.Name)
	return b.ID, nil
}

func seedManager(ctx context.Context, svc *staff.Service, branchID int64, log *logger.Logger) error {
	username := getEnv("SEED_MANAGER_USERNAME", "manager")
	password := getEnv("SEED_MANAGER_PASSWORD", "manager123")

	member := &staff.Staff{
		Name:     getEnv("SEED_MANAGER_NAME", "Store Manager"),
		Username: username,
		Role:     "manager",
		BranchID: branchID,
	}
	err := svc.Create(ctx, member, password)
	if err != nil {
		if appErr, ok := apperror.AsAppError(err); ok && appErr.Code == apperror.CodeDuplicate {
			log.Infow("manager account already exists, skipping", "username", username)
			return nil
		}
		return err
	}

	log.Infow("manager account created", "id", member.ID, "username", username)
	return nil
}

func seedProducts(ctx context.Context, svc *catalog.Service, log *logger.Logger) error {
	type row struct {
		name     string
		category string
		price    float64
		cost     float64
		stock    float64
		barcode  string
	}

	rows := []row{
		{"Ideal Milk 170g", "Dairy", 8.50, 6.20, 120, "6001234500017"},
		{"Milo Tin 400g", "Beverages", 32.00, 26.50, 60, "6001234500024"},
		{"Gino Tomato Paste 210g", "Canned", 6.00, 4.10, 200, "6001234500031"},
		{"Royal Aroma Rice 5kg", "Grains", 95.00, 78.00, 45, "6001234500048"},
		{"Frytol Oil 1L", "Cooking", 38.00, 31.00, 80, "6001234500055"},
		{"Sugar (loose)", "Grains", 14.00, 11.00, 55.5, ""},
		{"Key Soap", "Household", 7.50, 5.40, 140, "6001234500079"},
		{"Voltic Water 1.5L", "Beverages", 5.00, 3.20, 300, "6001234500086"},
	}

	created := 0
	for _, r := range rows {
		existing, err := svc.List(ctx, catalog.ListFilter{Search: r.name, Limit: 1})
		if err != nil {
			return err
		}
		if len(existing) > 0 {
			continue
		}

		p := catalog.NewProduct(r.name, types.NewMoney(r.price), types.NewMoney(r.cost))
		p.Stock = types.NewQuantityFromFloat64(r.stock)
		if r.category != "" {
			category := r.category
			p.Category = &category
		}
		if r.barcode != "" {
			barcode := r.barcode
			p.Barcode = &barcode
		}
		if err := svc.Create(ctx, p); err != nil {
			return err
		}
		created++
	}

	log.Infow("demo products seeded", "created", created, "total", len(rows))
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
