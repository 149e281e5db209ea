package main

import (
	"context"
	"database/sql"
	"log"
	"net/http"
	"os"
	"time"

	"roomledger/internal/audit"
	"roomledger/internal/auth"
	billingapp "roomledger/internal/billing/application"
	billingrepo "roomledger/internal/billing/infrastructure/postgres"
	billinghttp "roomledger/internal/billing/interfaces/http"
	"roomledger/internal/observability/metrics"
	settingapp "roomledger/internal/settings/application"
	settingrepo "roomledger/internal/settings/infrastructure/postgres"
	settinghttp "roomledger/internal/settings/interfaces/http"
	tenantapp "roomledger/internal/tenants/application"
	tenantrepo "roomledger/internal/tenants/infrastructure/postgres"
	tenanthttp "roomledger/internal/tenants/interfaces/http"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func main() {
	_ = godotenv.Load()

	cfg := loadConfig()
	logger := log.New(os.Stdout, "", log.LstdFlags)

	db, err := sql.Open("pgx", cfg.DatabaseURL)
	if err != nil {
		logger.Fatalf("db open error: %v", err)
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		logger.Fatalf("db ping error: %v", err)
	}

	ctx := context.Background()

	tenantStore := tenantrepo.NewTenantRepository(db)
	billStore := billingrepo.NewBillRepository(db)
	settingStore := settingrepo.NewSettingRepository(db)
	auditRepo := audit.NewRepository(db)

	// Tenants first, bills reference them.
	if err := tenantStore.EnsureSchema(ctx); err != nil {
		logger.Fatalf("tenants schema error: %v", err)
	}
	if err := billStore.EnsureSchema(ctx); err != nil {
		logger.Fatalf("bills schema error: %v", err)
	}
	if err := settingStore.EnsureSchema(ctx); err != nil {
		logger.Fatalf("settings schema error: %v", err)
	}
	if err := auditRepo.EnsureSchema(ctx); err != nil {
		logger.Fatalf("audit schema error: %v", err)
	}

	metrics.Init(db, logger)

	settingService, err := settingapp.NewSettingService(settingStore, logger)
	if err != nil {
		logger.Fatalf("setting service error: %v", err)
	}
	seedCfg, err := settingapp.LoadSeedConfig(cfg.PricingSeedFile)
	if err != nil {
		logger.Printf("seed config: %v, using defaults", err)
	}
	if err := settingService.EnsureDefaults(ctx, seedCfg.Defaults()); err != nil {
		logger.Fatalf("settings seed error: %v", err)
	}

	tenantService, err := tenantapp.NewTenantService(tenantStore, billStore, logger)
	if err != nil {
		logger.Fatalf("tenant service error: %v", err)
	}

	billingService, err := billingapp.NewBillingService(billStore, tenantStore, settingService)
	if err != nil {
		logger.Fatalf("billing service error: %v", err)
	}
	statsService, err := billingapp.NewStatisticsService(billStore, tenantStore, billingapp.SystemClock{})
	if err != nil {
		logger.Fatalf("statistics service error: %v", err)
	}
	quickEntryService, err := billingapp.NewQuickEntryService(billStore, tenantStore, billingService, billingapp.SystemClock{})
	if err != nil {
		logger.Fatalf("quick entry service error: %v", err)
	}

	billHandler, err := billinghttp.NewBillHandler(billingService, tenantStore, auditRepo)
	if err != nil {
		logger.Fatalf("bill handler error: %v", err)
	}
	exportHandler, err := billinghttp.NewExportBillsXLSXHandler(billingService, tenantStore, auditRepo)
	if err != nil {
		logger.Fatalf("export handler error: %v", err)
	}
	statsHandler, err := billinghttp.NewStatisticsHandler(statsService, billingapp.SystemClock{})
	if err != nil {
		logger.Fatalf("statistics handler error: %v", err)
	}
	dashboardHandler, err := billinghttp.NewDashboardHandler(statsService)
	if err != nil {
		logger.Fatalf("dashboard handler error: %v", err)
	}
	quickEntryHandler, err := billinghttp.NewQuickEntryHandler(quickEntryService, auditRepo)
	if err != nil {
		logger.Fatalf("quick entry handler error: %v", err)
	}
	tenantHandler, err := tenanthttp.NewHandler(tenantService, auditRepo)
	if err != nil {
		logger.Fatalf("tenant handler error: %v", err)
	}
	settingHandler, err := settinghttp.NewHandler(settingService, auditRepo)
	if err != nil {
		logger.Fatalf("setting handler error: %v", err)
	}

	policy := auth.NewDefaultPolicy([]string{"/healthz", "/metrics"}, nil)
	authMiddleware := auth.NewMiddleware([]byte(cfg.JWTSecret), policy)

	mux := http.NewServeMux()
	mux.Handle("/api/v1/bills", billHandler)
	mux.Handle("/api/v1/bills/", billHandler)
	mux.Handle("/api/v1/exports/bills.xlsx", exportHandler)
	mux.Handle("/api/v1/statistics", statsHandler)
	mux.Handle("/api/v1/dashboard", dashboardHandler)
	mux.Handle("/api/v1/quick-entry", quickEntryHandler)
	mux.Handle("/api/v1/tenants", tenantHandler)
	mux.Handle("/api/v1/tenants/", tenantHandler)
	mux.Handle("/api/v1/settings", settingHandler)
	mux.Handle("/api/v1/settings/", settingHandler)
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	server := &http.Server{Addr: cfg.HTTPAddr, Handler: loggingMiddleware(authMiddleware.Wrap(mux), logger)}
	logger.Printf("http listening on %s", cfg.HTTPAddr)
	logger.Fatal(server.ListenAndServe())
}

type config struct {
	DatabaseURL     string
	HTTPAddr        string
	JWTSecret       string
	PricingSeedFile string
}

func loadConfig() config {
	cfg := config{
		DatabaseURL:     getenvDefault("DATABASE_URL", getenvDefault("PG_DSN", "")),
		HTTPAddr:        getenvDefault("HTTP_ADDR", ":8080"),
		JWTSecret:       getenvDefault("AUTH_JWT_SECRET", getenvDefault("JWT_SECRET", "")),
		PricingSeedFile: getenvDefault("PRICING_SEED_FILE", ""),
	}
	if cfg.DatabaseURL == "" {
		log.Fatal("DATABASE_URL or PG_DSN is required")
	}
	if cfg.JWTSecret == "" {
		log.Fatal("AUTH_JWT_SECRET is required")
	}
	return cfg
}

func getenvDefault(key, fallback string) string {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	return value
}

func loggingMiddleware(next http.Handler, logger *log.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		resp := &statusWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(resp, r)
		logger.Printf("http %s %s %d %s", r.Method, r.URL.Path, resp.status, time.Since(start))
	})
}

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(status int) {
	w.status = status
	w.ResponseWriter.WriteHeader(status)
}
