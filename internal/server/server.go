package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"household-ledger/internal/config"
	"household-ledger/internal/handlers"
	"household-ledger/internal/messaging"
	"household-ledger/internal/middleware"
	"household-ledger/internal/repositories"
	"household-ledger/internal/services"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"
)

// bodyLimitSlack leaves room for multipart framing around a maximum-size upload
const bodyLimitSlack = 1 << 20

// Options carries everything the server needs from the outside
type Options struct {
	Config    *config.Config
	DB        *gorm.DB
	Publisher messaging.Publisher
	// Registerer receives the ledger collectors; Gatherer backs /metrics.
	// Both default to the prometheus default registry.
	Registerer prometheus.Registerer
	Gatherer   prometheus.Gatherer
	Logger     *slog.Logger
}

// Server wires repositories, services and handlers behind one echo instance
type Server struct {
	echo   *echo.Echo
	config *config.Config
	logger *slog.Logger
}

// New builds the HTTP server and registers every route
func New(opts Options) *Server {
	if opts.Registerer == nil {
		opts.Registerer = prometheus.DefaultRegisterer
	}
	if opts.Gatherer == nil {
		opts.Gatherer = prometheus.DefaultGatherer
	}
	if opts.Publisher == nil {
		opts.Publisher = messaging.NopPublisher{}
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	cfg := opts.Config

	metrics := services.NewPrometheusMetrics(opts.Registerer)

	transactionRepo := repositories.NewTransactionRepository(opts.DB)
	categoryRepo := repositories.NewCategoryRepository(opts.DB)
	budgetRepo := repositories.NewBudgetRepository(opts.DB)

	transactionService := services.NewTransactionService(transactionRepo, categoryRepo, opts.Publisher, metrics, opts.Logger)
	categoryService := services.NewCategoryService(categoryRepo, transactionRepo, metrics, opts.Logger)
	budgetService := services.NewBudgetService(budgetRepo, metrics, opts.Logger)
	statisticsService := services.NewStatisticsService(transactionRepo, budgetRepo, opts.Logger)

	fileService := services.NewFileService(cfg.Storage.UploadDir, cfg.Storage.MaxFileSize, cfg.Server.PublicBaseURL, opts.Logger)
	breaker := services.NewCircuitBreaker(services.DefaultCircuitBreakerConfig("ocr"), metrics)
	extractor := services.NewOpenAIReceiptExtractor(services.OCRConfig{
		APIKey:         cfg.OCR.APIKey,
		BaseURL:        cfg.OCR.BaseURL,
		Model:          cfg.OCR.Model,
		MaxAttempts:    cfg.OCR.MaxAttempts,
		AttemptTimeout: cfg.OCR.AttemptTimeout,
	}, breaker, metrics, opts.Logger)
	receiptService := services.NewReceiptService(fileService, extractor, services.NewCategorySuggester(), transactionService, metrics, opts.Logger)

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = handlers.NewValidator()
	e.HTTPErrorHandler = middleware.CustomHTTPErrorHandler

	e.Use(middleware.RequestID())
	e.Use(middleware.PanicRecovery())
	e.Use(middleware.SecurityHeaders())
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins: cfg.Server.CORSAllowOrigins,
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowHeaders: []string{
			echo.HeaderOrigin,
			echo.HeaderContentType,
			echo.HeaderAccept,
			middleware.TraceIDHeader,
		},
		ExposeHeaders:    []string{middleware.TraceIDHeader},
		AllowCredentials: true,
		MaxAge:           int((12 * time.Hour).Seconds()),
	}))
	e.Use(echomw.BodyLimit(fmt.Sprintf("%dK", (cfg.Storage.MaxFileSize+bodyLimitSlack)/1024)))

	routes{
		transactions: handlers.NewTransactionHandler(transactionService),
		categories:   handlers.NewCategoryHandler(categoryService),
		budgets:      handlers.NewBudgetHandler(budgetService),
		receipts:     handlers.NewReceiptHandler(receiptService, fileService),
		statistics:   handlers.NewStatisticsHandler(statisticsService),
		health:       handlers.NewHealthCheckHandler(opts.DB),
		dev: handlers.NewDevHandler(services.NewDemoDataService(
			categoryRepo,
			transactionRepo,
			services.NewTransactionGenerator(uint64(time.Now().UnixNano())),
			opts.Logger,
		)),
		gatherer: opts.Gatherer,
	}.register(e, cfg)

	return &Server{
		echo:   e,
		config: cfg,
		logger: opts.Logger,
	}
}

// Handler exposes the router, mostly for tests
func (s *Server) Handler() http.Handler {
	return s.echo
}

// Run serves until ctx is cancelled, then drains in-flight requests
func (s *Server) Run(ctx context.Context) error {
	httpServer := &http.Server{
		Addr:           s.config.Server.Address(),
		Handler:        s.echo,
		ReadTimeout:    s.config.Server.ReadTimeout,
		WriteTimeout:   s.config.Server.WriteTimeout,
		IdleTimeout:    60 * time.Second,
		MaxHeaderBytes: 1 << 16,
	}

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		s.logger.Info("Starting household ledger server",
			"address", httpServer.Addr,
			"environment", s.config.Server.Environment,
		)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-ctx.Done()
		s.logger.Info("Shutting down server", "timeout", s.config.Server.ShutdownTimeout)

		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.config.Server.ShutdownTimeout)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server shutdown: %w", err)
		}
		s.logger.Info("Server stopped gracefully")
		return nil
	})

	return g.Wait()
}
