package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"household-ledger/internal/dto"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"
)

const healthPingTimeout = 2 * time.Second

// HealthCheckHandler handles the health check endpoint
type HealthCheckHandler struct {
	db *gorm.DB
}

// NewHealthCheckHandler creates a new health check handler
func NewHealthCheckHandler(db *gorm.DB) *HealthCheckHandler {
	return &HealthCheckHandler{db: db}
}

// HealthCheck reports API and database connectivity
// @Summary Health check
// @Description Check API and database connectivity status
// @Tags Health
// @Produce json
// @Success 200 {object} dto.HealthResponse "Service is healthy"
// @Failure 503 {object} dto.HealthResponse "Database connection failed"
// @Router /health [get]
func (h *HealthCheckHandler) HealthCheck(c echo.Context) error {
	if err := h.ping(c.Request().Context()); err != nil {
		slog.Warn("Health check failed", "trace_id", getTraceID(c), "error", err)
		return c.JSON(http.StatusServiceUnavailable, dto.HealthResponse{
			Status:   "unhealthy",
			Database: "disconnected",
		})
	}

	return c.JSON(http.StatusOK, dto.HealthResponse{
		Status:   "healthy",
		Database: "connected",
	})
}

func (h *HealthCheckHandler) ping(ctx context.Context) error {
	sqlDB, err := h.db.DB()
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, healthPingTimeout)
	defer cancel()
	return sqlDB.PingContext(ctx)
}
