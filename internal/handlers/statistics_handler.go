package handlers

import (
	"net/http"
	"time"

	"household-ledger/internal/dto"
	"household-ledger/internal/errors"
	"household-ledger/internal/models"
	"household-ledger/internal/services"

	"github.com/labstack/echo/v4"
)

const (
	defaultTrendCount  = 6
	defaultDailyWindow = 30
)

// StatisticsHandler serves the dashboard aggregates
type StatisticsHandler struct {
	statisticsService services.StatisticsServiceInterface
	now               func() time.Time
}

// NewStatisticsHandler creates a new statistics handler
func NewStatisticsHandler(statisticsService services.StatisticsServiceInterface) *StatisticsHandler {
	return &StatisticsHandler{
		statisticsService: statisticsService,
		now:               time.Now,
	}
}

func sendData(c echo.Context, data interface{}) error {
	return c.JSON(http.StatusOK, dto.DataResponse{Success: true, Data: data})
}

// Summary returns today's and this month's totals
// @Summary Summary statistics
// @Tags Statistics
// @Produce json
// @Param date query string false "Reference date (YYYY-MM-DD or ISO 8601, default today)"
// @Success 200 {object} dto.DataResponse{data=dto.SummaryResponse} "Summary"
// @Failure 400 {object} errors.ErrorResponse "VALIDATION_005 - Invalid date"
// @Router /statistics/summary [get]
func (h *StatisticsHandler) Summary(c echo.Context) error {
	date, _, err := getDateParam(c, "date")
	if err != nil {
		return SendError(c, errors.ValidationInvalidDate)
	}
	reference := h.now().UTC()
	if date != nil {
		reference = *date
	}

	summary, err := h.statisticsService.Summary(c.Request().Context(), reference)
	if err != nil {
		return handleServiceError(c, err)
	}

	return sendData(c, dto.NewSummaryResponse(summary))
}

// ByCategory splits a window's totals across categories
// @Summary Statistics by category
// @Tags Statistics
// @Produce json
// @Param dateFrom query string false "Inclusive start (default start of this month)"
// @Param dateTo query string false "Inclusive end (default end of this month)"
// @Param type query string false "Transaction type" Enums(expense, income) default(expense)
// @Success 200 {object} dto.DataResponse{data=dto.CategoryStatsResponse} "Breakdown"
// @Failure 400 {object} errors.ErrorResponse "VALIDATION_001 - Invalid parameters"
// @Router /statistics/by-category [get]
func (h *StatisticsHandler) ByCategory(c echo.Context) error {
	transactionType := c.QueryParam("type")
	if transactionType == "" {
		transactionType = models.TransactionTypeExpense
	}
	if !models.IsValidTransactionType(transactionType) {
		return SendError(c, errors.ValidationGeneral, errors.WithDetails("type must be expense or income"))
	}

	monthStart, monthEnd := models.PeriodWindow(models.BudgetPeriodMonthly, h.now())
	from, to, err := parseWindow(c, monthStart, monthEnd)
	if err != nil {
		return SendError(c, errors.ValidationInvalidDate, errors.WithDetails(err.Error()))
	}

	breakdown, err := h.statisticsService.ByCategory(c.Request().Context(), from, to, transactionType)
	if err != nil {
		return handleServiceError(c, err)
	}

	return sendData(c, dto.NewCategoryStatsResponse(breakdown))
}

// ByDate returns a zero-filled time series
// @Summary Statistics by date
// @Tags Statistics
// @Produce json
// @Param period query string false "Bucket size" Enums(daily, weekly, monthly, yearly) default(daily)
// @Param dateFrom query string false "Inclusive start (default 29 days ago)"
// @Param dateTo query string false "Inclusive end (default today)"
// @Success 200 {object} dto.DataResponse{data=dto.DateStatsResponse} "Series"
// @Failure 400 {object} errors.ErrorResponse "VALIDATION_004 - Invalid period or too many buckets"
// @Router /statistics/by-date [get]
func (h *StatisticsHandler) ByDate(c echo.Context) error {
	period := c.QueryParam("period")
	if period == "" {
		period = models.StatsPeriodDaily
	}

	tomorrow := startOfDay(h.now()).AddDate(0, 0, 1)
	from, to, err := parseWindow(c, tomorrow.AddDate(0, 0, -defaultDailyWindow), tomorrow)
	if err != nil {
		return SendError(c, errors.ValidationInvalidDate, errors.WithDetails(err.Error()))
	}

	series, err := h.statisticsService.ByDate(c.Request().Context(), period, from, to)
	if err != nil {
		return handleServiceError(c, err)
	}

	return sendData(c, dto.NewDateStatsResponse(series))
}

// BudgetStatus compares each budget with its current spending
// @Summary Budget status
// @Tags Statistics
// @Produce json
// @Param period query string false "Budget period" Enums(monthly, yearly) default(monthly)
// @Param date query string false "Reference date (default today)"
// @Success 200 {object} dto.DataResponse{data=dto.BudgetStatusResponse} "Budget usage"
// @Failure 400 {object} errors.ErrorResponse "VALIDATION_004 - Invalid period"
// @Router /statistics/budget-status [get]
func (h *StatisticsHandler) BudgetStatus(c echo.Context) error {
	period := c.QueryParam("period")
	if period == "" {
		period = models.BudgetPeriodMonthly
	}

	date, _, err := getDateParam(c, "date")
	if err != nil {
		return SendError(c, errors.ValidationInvalidDate)
	}
	reference := h.now().UTC()
	if date != nil {
		reference = *date
	}

	usages, err := h.statisticsService.BudgetStatus(c.Request().Context(), period, reference)
	if err != nil {
		return handleServiceError(c, err)
	}

	return sendData(c, dto.NewBudgetStatusResponse(period, reference, usages))
}

// Trends returns trailing period totals and the latest change rates
// @Summary Trends
// @Tags Statistics
// @Produce json
// @Param period query string false "Period" Enums(monthly, yearly) default(monthly)
// @Param count query int false "Number of periods (2-24)" default(6)
// @Success 200 {object} dto.DataResponse{data=dto.TrendsResponse} "Trends"
// @Failure 400 {object} errors.ErrorResponse "VALIDATION_004 - Invalid period or count"
// @Router /statistics/trends [get]
func (h *StatisticsHandler) Trends(c echo.Context) error {
	period := c.QueryParam("period")
	if period == "" {
		period = models.StatsPeriodMonthly
	}

	count, err := getIntParam(c, "count", defaultTrendCount)
	if err != nil {
		return SendError(c, errors.ValidationGeneral, errors.WithDetails(err.Error()))
	}

	trends, err := h.statisticsService.Trends(c.Request().Context(), period, count, h.now())
	if err != nil {
		return handleServiceError(c, err)
	}

	return sendData(c, dto.NewTrendsResponse(trends))
}

// parseWindow reads dateFrom/dateTo into a half-open [from, to) window.
// A bare dateTo includes that whole day.
func parseWindow(c echo.Context, defaultFrom, defaultTo time.Time) (time.Time, time.Time, error) {
	from, to := defaultFrom, defaultTo

	dateFrom, _, err := getDateParam(c, "dateFrom")
	if err != nil {
		return from, to, err
	}
	if dateFrom != nil {
		from = *dateFrom
	}

	dateTo, dateOnly, err := getDateParam(c, "dateTo")
	if err != nil {
		return from, to, err
	}
	if dateTo != nil {
		to = *dateTo
		if dateOnly {
			to = to.AddDate(0, 0, 1)
		}
	}

	return from, to, nil
}
