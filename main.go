package main

import (
	"encoding/json"
	stdlog "log"
	"net/http"
	"strings"
	"time"

	"github.com/patrickmn/go-cache"
	"github.com/username/tallytrace/backend/src/config"
	"github.com/username/tallytrace/backend/src/database"
	"github.com/username/tallytrace/backend/src/forecast"
	"github.com/username/tallytrace/backend/src/handlers"
	"github.com/username/tallytrace/backend/src/logger"
	"github.com/username/tallytrace/backend/src/scheduler"
	"github.com/username/tallytrace/backend/src/services"
	"golang.org/x/time/rate"
)

var limiter = rate.NewLimiter(rate.Every(100*time.Millisecond), 30)

func rateLimitMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !limiter.Allow() {
			http.Error(w, http.StatusText(http.StatusTooManyRequests), http.StatusTooManyRequests)
			logger.L.Warn("Rate limit exceeded",
				"method", r.Method,
				"path", r.URL.Path,
				"remoteAddr", r.RemoteAddr)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		allowedOrigins := map[string]bool{
			"http://localhost:3000": true,
		}

		if allowedOrigins[origin] {
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Access-Control-Allow-Methods", "POST, GET, OPTIONS, PUT, DELETE, PATCH")
			w.Header().Set("Access-Control-Allow-Headers", "Accept, Content-Type, Content-Length, Accept-Encoding, X-Entity-Id, X-Requested-With, If-None-Match")
			w.Header().Set("Access-Control-Expose-Headers", "ETag, Content-Disposition")
		} else if origin == "" {
			w.Header().Set("Access-Control-Allow-Origin", "*")
		}

		if r.Method == "OPTIONS" {
			logger.L.Debug("Handling OPTIONS preflight request", "path", r.URL.Path, "origin", origin)
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func main() {
	config.LoadConfig()
	logger.InitLogger(config.Cfg.LogLevel, config.Cfg.LogFormat)
	logger.L.Info("Tally & Trace backend server starting...")

	logger.L.Info("Initializing database...", "path", config.Cfg.DatabasePath)
	database.InitDB(config.Cfg.DatabasePath)
	logger.L.Info("Database initialized successfully.")

	logger.L.Info("Initializing report cache...")
	reportCache := cache.New(services.DefaultCacheExpiration, services.CacheCleanupInterval)
	logger.L.Info("Report cache initialized.")

	logger.L.Info("Initializing forecast engine...")
	generator := forecast.NewOccurrenceGenerator(config.Cfg.ForecastMaxIterations)
	matcher := forecast.NewActualsMatcher()
	reminderScheduler := forecast.NewReminderScheduler(generator)
	aggregator := forecast.NewSnapshotAggregator(generator, matcher, reminderScheduler, config.Cfg.ReminderLookaheadDays)
	projector := forecast.NewCashflowProjector(config.Cfg.ForecastMaxIterations)

	logger.L.Info("Initializing services and handlers...")
	emailService := services.NewEmailService()
	dashboardService := services.NewDashboardService(aggregator, projector, reminderScheduler, reportCache)
	portabilityService := services.NewPortabilityService(dashboardService)

	entityHandler := handlers.NewEntityHandler(dashboardService)
	accountHandler := handlers.NewAccountHandler(dashboardService)
	categoryHandler := handlers.NewCategoryHandler(dashboardService)
	txHandler := handlers.NewTransactionHandler(dashboardService)
	budgetEntryHandler := handlers.NewBudgetEntryHandler(dashboardService)
	allocationHandler := handlers.NewAllocationHandler(dashboardService)
	wishlistHandler := handlers.NewWishlistHandler(dashboardService)
	dashboardHandler := handlers.NewDashboardHandler(dashboardService)
	forecastHandler := handlers.NewForecastHandler(dashboardService)
	portabilityHandler := handlers.NewPortabilityHandler(portabilityService)

	if config.Cfg.DigestEnabled {
		logger.L.Info("Starting reminder digest scheduler...", "spec", config.Cfg.DigestCronSpec)
		digestScheduler := scheduler.New()
		digestJob := scheduler.NewReminderDigestJob(
			dashboardService, emailService,
			config.Cfg.DigestRecipient, config.Cfg.DigestLookahead,
		)
		if err := digestScheduler.AddJob(config.Cfg.DigestCronSpec, digestJob); err != nil {
			logger.L.Error("Failed to schedule reminder digest", "spec", config.Cfg.DigestCronSpec, "error", err)
		} else {
			digestScheduler.Start()
			defer digestScheduler.Stop()
		}
	}

	logger.L.Info("Configuring routes...")
	rootMux := http.NewServeMux()
	apiRouter := http.NewServeMux()

	apiRouter.HandleFunc("POST /api/entities", entityHandler.HandleCreateEntity)
	apiRouter.HandleFunc("GET /api/entities", entityHandler.HandleListEntities)
	apiRouter.HandleFunc("GET /api/entities/{id}", entityHandler.HandleGetEntity)
	apiRouter.HandleFunc("PUT /api/entities/{id}", entityHandler.HandleUpdateEntity)
	apiRouter.HandleFunc("DELETE /api/entities/{id}", entityHandler.HandleDeleteEntity)

	apiRouter.HandleFunc("POST /api/accounts", accountHandler.HandleCreateAccount)
	apiRouter.HandleFunc("GET /api/accounts", accountHandler.HandleListAccounts)
	apiRouter.HandleFunc("GET /api/accounts/{id}", accountHandler.HandleGetAccount)
	apiRouter.HandleFunc("PUT /api/accounts/{id}", accountHandler.HandleUpdateAccount)
	apiRouter.HandleFunc("DELETE /api/accounts/{id}", accountHandler.HandleDeleteAccount)

	apiRouter.HandleFunc("POST /api/categories", categoryHandler.HandleCreateCategory)
	apiRouter.HandleFunc("GET /api/categories", categoryHandler.HandleListCategories)
	apiRouter.HandleFunc("GET /api/categories/{id}", categoryHandler.HandleGetCategory)
	apiRouter.HandleFunc("PUT /api/categories/{id}", categoryHandler.HandleUpdateCategory)
	apiRouter.HandleFunc("DELETE /api/categories/{id}", categoryHandler.HandleDeleteCategory)

	apiRouter.HandleFunc("POST /api/transactions", txHandler.HandleCreateTransaction)
	apiRouter.HandleFunc("GET /api/transactions", txHandler.HandleListTransactions)
	apiRouter.HandleFunc("GET /api/transactions/{id}", txHandler.HandleGetTransaction)
	apiRouter.HandleFunc("PUT /api/transactions/{id}", txHandler.HandleUpdateTransaction)
	apiRouter.HandleFunc("DELETE /api/transactions/{id}", txHandler.HandleDeleteTransaction)
	apiRouter.HandleFunc("DELETE /api/transactions/all", txHandler.HandleDeleteAllTransactions)

	apiRouter.HandleFunc("POST /api/budget-entries", budgetEntryHandler.HandleCreateBudgetEntry)
	apiRouter.HandleFunc("GET /api/budget-entries", budgetEntryHandler.HandleListBudgetEntries)
	apiRouter.HandleFunc("GET /api/budget-entries/{id}", budgetEntryHandler.HandleGetBudgetEntry)
	apiRouter.HandleFunc("PUT /api/budget-entries/{id}", budgetEntryHandler.HandleUpdateBudgetEntry)
	apiRouter.HandleFunc("DELETE /api/budget-entries/{id}", budgetEntryHandler.HandleDeleteBudgetEntry)
	apiRouter.HandleFunc("POST /api/budget-entries/{id}/advance", budgetEntryHandler.HandleAdvanceBudgetEntry)

	apiRouter.HandleFunc("POST /api/allocations", allocationHandler.HandleCreateAllocation)
	apiRouter.HandleFunc("GET /api/allocations", allocationHandler.HandleListAllocations)
	apiRouter.HandleFunc("GET /api/allocations/{id}", allocationHandler.HandleGetAllocation)
	apiRouter.HandleFunc("PUT /api/allocations/{id}", allocationHandler.HandleUpdateAllocation)
	apiRouter.HandleFunc("DELETE /api/allocations/{id}", allocationHandler.HandleDeleteAllocation)
	apiRouter.HandleFunc("GET /api/allocations/goals/progress", allocationHandler.HandleGetGoalsProgress)

	apiRouter.HandleFunc("POST /api/wishlist", wishlistHandler.HandleCreateWishlistItem)
	apiRouter.HandleFunc("GET /api/wishlist", wishlistHandler.HandleListWishlistItems)
	apiRouter.HandleFunc("GET /api/wishlist/{id}", wishlistHandler.HandleGetWishlistItem)
	apiRouter.HandleFunc("PUT /api/wishlist/{id}", wishlistHandler.HandleUpdateWishlistItem)
	apiRouter.HandleFunc("DELETE /api/wishlist/{id}", wishlistHandler.HandleDeleteWishlistItem)
	apiRouter.HandleFunc("GET /api/wishlist/plan", wishlistHandler.HandleGetWishlistPlan)
	apiRouter.HandleFunc("GET /api/wishlist/next-up", wishlistHandler.HandleGetWishlistNextUp)
	apiRouter.HandleFunc("GET /api/wishlist/{id}/readiness", wishlistHandler.HandleGetWishlistReadiness)

	apiRouter.HandleFunc("GET /api/dashboard", dashboardHandler.HandleGetDashboard)
	apiRouter.HandleFunc("GET /api/dashboard/snapshot", dashboardHandler.HandleGetSnapshot)

	apiRouter.HandleFunc("GET /api/forecast/cashflow", forecastHandler.HandleGetCashflow)
	apiRouter.HandleFunc("GET /api/forecast/upcoming", forecastHandler.HandleGetUpcoming)
	apiRouter.HandleFunc("GET /api/forecast/reminders", forecastHandler.HandleGetReminders)
	apiRouter.HandleFunc("GET /api/forecast/disposable", forecastHandler.HandleGetDisposable)

	apiRouter.HandleFunc("GET /api/export/json", portabilityHandler.HandleExportJSON)
	apiRouter.HandleFunc("GET /api/export/csv", portabilityHandler.HandleExportCSV)
	apiRouter.HandleFunc("GET /api/export/zip", portabilityHandler.HandleExportZIP)
	apiRouter.HandleFunc("POST /api/import/transactions", portabilityHandler.HandleImportTransactions)

	rootMux.Handle("/api/", handlers.EntityContextMiddleware(apiRouter))

	rootMux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/" && r.Method == http.MethodGet {
			w.Header().Set("Content-Type", "application/json")
			json.NewEncoder(w).Encode(map[string]string{"message": "Tally & Trace backend is running"})
		} else {
			if !strings.HasPrefix(r.URL.Path, "/api/") {
				logger.L.Warn("Root level path not found", "method", r.Method, "path", r.URL.Path)
				http.NotFound(w, r)
			}
		}
	})

	logger.L.Info("Applying global middleware...")
	finalHandler := enableCORS(rateLimitMiddleware(rootMux))

	serverAddr := ":" + config.Cfg.Port
	server := &http.Server{
		Addr:         serverAddr,
		Handler:      finalHandler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	logger.L.Info("Server starting", "address", serverAddr)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.L.Error("Failed to start server", "error", err)
		stdlog.Fatalf("Failed to start server: %v", err)
	} else if err == http.ErrServerClosed {
		logger.L.Info("Server stopped gracefully.")
	}
}
