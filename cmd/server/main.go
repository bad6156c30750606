// Package main is the entry point for the BSK@L Enterprise API server.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Senanu-web/bskal-enterprise/internal/core/tx"
	"github.com/Senanu-web/bskal-enterprise/internal/domain/audit"
	"github.com/Senanu-web/bskal-enterprise/internal/domain/branches"
	"github.com/Senanu-web/bskal-enterprise/internal/domain/catalog"
	"github.com/Senanu-web/bskal-enterprise/internal/domain/orders"
	"github.com/Senanu-web/bskal-enterprise/internal/domain/possync"
	"github.com/Senanu-web/bskal-enterprise/internal/domain/reports"
	"github.com/Senanu-web/bskal-enterprise/internal/domain/shifts"
	"github.com/Senanu-web/bskal-enterprise/internal/domain/staff"
	"github.com/Senanu-web/bskal-enterprise/internal/infrastructure/cache"
	v1 "github.com/Senanu-web/bskal-enterprise/internal/infrastructure/http/v1"
	"github.com/Senanu-web/bskal-enterprise/internal/infrastructure/storage/memory"
	"github.com/Senanu-web/bskal-enterprise/internal/infrastructure/storage/postgres"
	"github.com/Senanu-web/bskal-enterprise/pkg/logger"
)

// repositories is the storage-independent set of persistence ports.
type repositories struct {
	products catalog.Repository
	orders   orders.Repository
	shifts   shifts.Repository
	staff    staff.Repository
	branches branches.Repository
	reports  reports.Repository

	txManager   tx.Manager
	recorder    audit.Recorder
	auditReader audit.Reader
	pool        *postgres.Pool
}

func main() {
	log, err := logger.New(logger.Config{
		Level:       getEnv("LOG_LEVEL", "info"),
		Development: getEnv("APP_ENV", "development") == "development",
	})
	if err != nil {
		fmt.Printf("failed to initialize logger: %v\n", err)
		os.Exit(1)
	}

	ctx := context.Background()
	log.Info("starting bskal-enterprise server")

	repos, err := buildRepositories(ctx, log)
	if err != nil {
		log.Fatalw("storage initialization failed", "error", err)
	}
	if repos.pool != nil {
		defer repos.pool.Close()
	}

	// --- Report cache ---
	var reportCache reports.Cache = reports.NoopCache{}
	if addr := getEnv("REDIS_ADDR", ""); addr != "" {
		redisCache, err := cache.NewRedisReportCache(ctx, cache.Config{
			Addr:     addr,
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvInt("REDIS_DB", 0),
		})
		if err != nil {
			log.Fatalw("redis connection failed", "addr", addr, "error", err)
		}
		defer redisCache.Close()
		reportCache = redisCache
		log.Infow("report cache enabled", "addr", addr)
	}

	// --- JWT ---
	jwtSecret := getEnv("JWT_SECRET", "change-me-in-production")
	jwtService := staff.NewJWTService(staff.DefaultJWTConfig(jwtSecret))

	// --- Domain services ---
	staffService := staff.NewService(repos.staff, jwtService, repos.txManager, repos.recorder)
	catalogService := catalog.NewService(repos.products, repos.txManager, repos.recorder)
	orderService := orders.NewService(repos.orders, repos.products, repos.txManager, repos.recorder)
	shiftService := shifts.NewService(repos.shifts, repos.orders, repos.txManager, repos.recorder)
	branchService := branches.NewService(repos.branches, repos.txManager, repos.recorder)
	reportService := reports.NewService(repos.reports, reportCache)
	syncEngine := possync.NewEngine(orderService, catalogService, reportService)

	// --- Router ---
	router := v1.NewRouter(v1.RouterConfig{
		Logger:         log,
		Pool:           repos.pool,
		JWTValidator:   jwtService,
		POSToken:       getEnv("POS_SYNC_TOKEN", ""),
		StaffService:   staffService,
		CatalogService: catalogService,
		OrderService:   orderService,
		ShiftService:   shiftService,
		BranchService:  branchService,
		ReportService:  reportService,
		SyncEngine:     syncEngine,
		AuditReader:    repos.auditReader,
	})

	// --- HTTP server ---
	port := getEnv("APP_PORT", "8080")
	server := &http.Server{
		Addr:         ":" + port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Infow("server starting", "port", port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalw("server failed", "error", err)
		}
	}()

	// --- Graceful shutdown ---
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatalw("server forced to shutdown", "error", err)
	}

	log.Info("server stopped")
}

// buildRepositories connects the configured storage backend. An empty
// DATABASE_URL selects the in-memory store (dev mode, nothing survives a
// restart).
func buildRepositories(ctx context.Context, log *logger.Logger) (*repositories, error) {
	dsn := getEnv("DATABASE_URL", "")
	if dsn == "" {
		log.Warn("DATABASE_URL not set, using in-memory store")
		store := memory.NewStore()
		return &repositories{
			products:    store.Products(),
			orders:      store.Orders(),
			shifts:      store.Shifts(),
			staff:       store.Staff(),
			branches:    store.Branches(),
			reports:     store.Reports(),
			txManager:   memory.TxManager{},
			recorder:    store.Audit(),
			auditReader: store.AuditLog(),
		}, nil
	}

	pool, err := postgres.NewPool(ctx, postgres.DefaultPoolConfig(dsn))
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	log.Info("database connection established")

	txManager := postgres.NewTxManager(pool)
	auditService, err := postgres.NewAuditService(txManager)
	if err != nil {
		pool.Close()
		return nil, fmt.Errorf("audit service: %w", err)
	}

	return &repositories{
		products:    postgres.NewProductRepo(txManager),
		orders:      postgres.NewOrderRepo(txManager),
		shifts:      postgres.NewShiftRepo(txManager),
		staff:       postgres.NewStaffRepo(txManager),
		branches:    postgres.NewBranchRepo(txManager),
		reports:     postgres.NewReportRepo(txManager),
		txManager:   txManager,
		recorder:    auditService,
		auditReader: auditService,
		pool:        pool,
	}, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		var result int
		if _, err := fmt.Sscanf(value, "%d", &result); err == nil {
			return result
		}
	}
	return defaultValue
}
