package main

import (
	"net/http"

	"brisa/internal/shared/config"
	"brisa/internal/shared/middleware"
)

// SetupRoutes configures all HTTP routes and returns the final handler
// with middleware applied.
func SetupRoutes(deps *Dependencies, cfg *config.Config) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/health", handleHealth)

	// Protected routes
	authMiddleware := middleware.Auth(deps.JWT)

	mux.Handle("/api/jobs", authMiddleware(http.HandlerFunc(deps.JobHandler.HandleJobs)))
	mux.Handle("/api/jobs/{id}", authMiddleware(http.HandlerFunc(deps.JobHandler.HandleJobByID)))
	mux.Handle("/api/expenses", authMiddleware(http.HandlerFunc(deps.ExpenseHandler.HandleExpenses)))
	mux.Handle("/api/expenses/{id}", authMiddleware(http.HandlerFunc(deps.ExpenseHandler.HandleExpenseByID)))
	mux.Handle("/api/transactions", authMiddleware(http.HandlerFunc(deps.TransactionHandler.HandleTransactions)))
	mux.Handle("/api/transactions/{id}", authMiddleware(http.HandlerFunc(deps.TransactionHandler.HandleTransactionByID)))
	mux.Handle("/api/categories", authMiddleware(http.HandlerFunc(deps.CategoryHandler.HandleCategories)))
	mux.Handle("/api/categories/{id}", authMiddleware(http.HandlerFunc(deps.CategoryHandler.HandleCategoryByID)))
	mux.Handle("/api/clients", authMiddleware(http.HandlerFunc(deps.ClientHandler.HandleClients)))
	mux.Handle("/api/clients/{id}", authMiddleware(http.HandlerFunc(deps.ClientHandler.HandleClientByID)))
	mux.Handle("/api/reports/summary", authMiddleware(http.HandlerFunc(deps.ReportHandler.HandleSummary)))
	mux.Handle("/api/reports/expense-chart", authMiddleware(http.HandlerFunc(deps.ReportHandler.HandleExpenseChart)))
	mux.Handle("/api/reports/balance-chart", authMiddleware(http.HandlerFunc(deps.ReportHandler.HandleBalanceChart)))
	mux.Handle("/api/notifications/register-device", authMiddleware(http.HandlerFunc(deps.NotificationHandler.HandleDevices)))

	// Global middleware, innermost first.
	handler := middleware.Logging(middleware.CORS(mux))
	if cfg.Telemetry.Enabled {
		handler = middleware.Telemetry(middleware.Tracing(handler))
	}

	return handler
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"status":"ok"}`))
}
