package server

import (
	"household-ledger/internal/config"
	"household-ledger/internal/handlers"
	"household-ledger/internal/middleware"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type routes struct {
	transactions *handlers.TransactionHandler
	categories   *handlers.CategoryHandler
	budgets      *handlers.BudgetHandler
	receipts     *handlers.ReceiptHandler
	statistics   *handlers.StatisticsHandler
	health       *handlers.HealthCheckHandler
	dev          *handlers.DevHandler
	gatherer     prometheus.Gatherer
}

func (r routes) register(e *echo.Echo, cfg *config.Config) {
	e.GET("/health", r.health.HealthCheck)
	e.GET("/metrics", echo.WrapHandler(promhttp.HandlerFor(r.gatherer, promhttp.HandlerOpts{})))

	api := e.Group("/api")
	api.GET("/health", r.health.HealthCheck)

	transactions := api.Group("/transactions")
	transactions.GET("", r.transactions.ListTransactions)
	transactions.POST("", r.transactions.CreateTransaction)
	transactions.GET("/:id", r.transactions.GetTransaction)
	transactions.PUT("/:id", r.transactions.UpdateTransaction)
	transactions.DELETE("/:id", r.transactions.DeleteTransaction)

	categories := api.Group("/categories")
	categories.GET("", r.categories.ListCategories)
	categories.POST("", r.categories.CreateCategory)
	categories.GET("/:id", r.categories.GetCategory)
	categories.PUT("/:id", r.categories.UpdateCategory)
	categories.DELETE("/:id", r.categories.DeleteCategory)

	budgets := api.Group("/budgets")
	budgets.GET("", r.budgets.ListBudgets)
	budgets.POST("", r.budgets.CreateBudget)
	budgets.GET("/:id", r.budgets.GetBudget)
	budgets.PUT("/:id", r.budgets.UpdateBudget)
	budgets.DELETE("/:id", r.budgets.DeleteBudget)

	receipt := api.Group("/receipt")
	receipt.POST("/ocr", r.receipts.ScanReceipt,
		middleware.RateLimiterWithConfig(float64(cfg.Server.RateLimitPerSecond), cfg.Server.RateLimitBurst))
	receipt.POST("/save", r.receipts.SaveReceipt)
	api.GET("/files/*", r.receipts.ServeFile)

	statistics := api.Group("/statistics")
	statistics.GET("/summary", r.statistics.Summary)
	statistics.GET("/by-category", r.statistics.ByCategory)
	statistics.GET("/by-date", r.statistics.ByDate)
	statistics.GET("/budget-status", r.statistics.BudgetStatus)
	statistics.GET("/trends", r.statistics.Trends)

	if cfg.IsDevelopment() {
		dev := api.Group("/dev")
		dev.POST("/generate-transactions", r.dev.GenerateTransactions)
	}
}
