package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"household-ledger/internal/models"
	"household-ledger/internal/repositories"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"
)

const (
	MaxDateBuckets = 1000
	MinTrendCount  = 2
	MaxTrendCount  = 24
)

var hundred = decimal.NewFromInt(100)

// StatisticsService aggregates transactions for the dashboard
type StatisticsService struct {
	transactionRepo repositories.TransactionRepositoryInterface
	budgetRepo      repositories.BudgetRepositoryInterface
	logger          *slog.Logger
}

// NewStatisticsService creates a new statistics service
func NewStatisticsService(
	transactionRepo repositories.TransactionRepositoryInterface,
	budgetRepo repositories.BudgetRepositoryInterface,
	logger *slog.Logger,
) StatisticsServiceInterface {
	if logger == nil {
		logger = slog.Default()
	}
	return &StatisticsService{
		transactionRepo: transactionRepo,
		budgetRepo:      budgetRepo,
		logger:          logger.With("component", "statistics_service"),
	}
}

// Summary totals the day and the month containing date, plus monthly budget usage when budgets exist
func (s *StatisticsService) Summary(ctx context.Context, date time.Time) (*models.Summary, error) {
	date = date.UTC()
	dayStart := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, time.UTC)
	monthStart, monthEnd := models.PeriodWindow(models.BudgetPeriodMonthly, date)

	var (
		dayTotals   []models.TypeTotal
		monthTotals []models.TypeTotal
		budgets     []models.Budget
		monthSpent  []models.CategorySummary
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		dayTotals, err = s.transactionRepo.SumByType(gctx, dayStart, dayStart.AddDate(0, 0, 1))
		return err
	})
	g.Go(func() error {
		var err error
		monthTotals, err = s.transactionRepo.SumByType(gctx, monthStart, monthEnd)
		return err
	})
	g.Go(func() error {
		var err error
		budgets, err = s.budgetRepo.List(gctx, models.BudgetPeriodMonthly, "")
		return err
	})
	g.Go(func() error {
		var err error
		monthSpent, err = s.transactionRepo.SumByCategory(gctx, monthStart, monthEnd, models.TransactionTypeExpense)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("failed to compute summary: %w", err)
	}

	today := flowTotals(dayTotals)
	thisMonth := flowTotals(monthTotals)

	summary := &models.Summary{
		Date:      dayStart,
		Today:     today,
		ThisMonth: thisMonth,
		NetIncome: thisMonth.Income.Sub(thisMonth.Expense).Round(2),
	}

	if len(budgets) > 0 {
		spentByCategory := spentMap(monthSpent)
		overview := &models.BudgetOverview{
			TotalBudget: decimal.Zero,
			TotalSpent:  decimal.Zero,
		}
		for _, budget := range budgets {
			overview.TotalBudget = overview.TotalBudget.Add(budget.Amount)
			overview.TotalSpent = overview.TotalSpent.Add(spentByCategory[budget.Category])
		}
		overview.UsageRate = ratio(overview.TotalSpent, overview.TotalBudget)
		overview.TotalBudget = overview.TotalBudget.Round(2)
		overview.TotalSpent = overview.TotalSpent.Round(2)
		summary.BudgetStatus = overview
	}

	return summary, nil
}

// ByCategory splits one transaction type's total across categories, largest first
func (s *StatisticsService) ByCategory(ctx context.Context, from, to time.Time, transactionType string) (*models.CategoryBreakdown, error) {
	if transactionType == "" {
		transactionType = models.TransactionTypeExpense
	}

	rows, err := s.transactionRepo.SumByCategory(ctx, from, to, transactionType)
	if err != nil {
		return nil, err
	}

	total := decimal.Zero
	for _, row := range rows {
		total = total.Add(row.TotalAmount)
	}

	items := make([]models.CategoryShare, 0, len(rows))
	for _, row := range rows {
		share := models.CategoryShare{
			Category: row.Category,
			Amount:   row.TotalAmount.Round(2),
			Count:    row.TransactionCount,
		}
		if total.IsPositive() {
			share.Percentage = row.TotalAmount.Mul(hundred).Div(total).Round(2).InexactFloat64()
		}
		items = append(items, share)
	}

	return &models.CategoryBreakdown{
		Type:     transactionType,
		DateFrom: from.UTC(),
		DateTo:   to.UTC(),
		Total:    total.Round(2),
		Items:    items,
	}, nil
}

// ByDate returns one zero-filled bucket per period unit overlapping [from, to)
func (s *StatisticsService) ByDate(ctx context.Context, period string, from, to time.Time) (*models.DateSeries, error) {
	if !models.IsValidStatsPeriod(period) {
		return nil, fmt.Errorf("%w: %s", ErrInvalidStatsPeriod, period)
	}
	from, to = from.UTC(), to.UTC()
	if !from.Before(to) {
		return nil, ErrInvalidDateRange
	}

	buckets, err := s.bucketize(ctx, period, from, to)
	if err != nil {
		return nil, err
	}

	return &models.DateSeries{
		Period:   period,
		DateFrom: from,
		DateTo:   to,
		Buckets:  buckets,
	}, nil
}

// BudgetStatus compares every budget of the period with its category's spending in the window containing date
func (s *StatisticsService) BudgetStatus(ctx context.Context, period string, date time.Time) ([]models.BudgetUsage, error) {
	if !models.IsValidBudgetPeriod(period) {
		return nil, fmt.Errorf("%w: %s", ErrInvalidStatsPeriod, period)
	}

	budgets, err := s.budgetRepo.List(ctx, period, "")
	if err != nil {
		return nil, err
	}

	usages := make([]models.BudgetUsage, 0, len(budgets))
	if len(budgets) == 0 {
		return usages, nil
	}

	windowStart, windowEnd := models.PeriodWindow(period, date)
	rows, err := s.transactionRepo.SumByCategory(ctx, windowStart, windowEnd, models.TransactionTypeExpense)
	if err != nil {
		return nil, err
	}
	spentByCategory := spentMap(rows)

	for _, budget := range budgets {
		spent := spentByCategory[budget.Category]
		usages = append(usages, models.BudgetUsage{
			Budget:       budget,
			WindowStart:  windowStart,
			WindowEnd:    windowEnd,
			Spent:        spent.Round(2),
			Remaining:    budget.Amount.Sub(spent).Round(2),
			UsageRate:    ratio(spent, budget.Amount),
			IsOverBudget: spent.GreaterThan(budget.Amount),
		})
	}

	return usages, nil
}

// Trends returns count trailing months or years ending with the one containing now,
// and the change between the last two
func (s *StatisticsService) Trends(ctx context.Context, period string, count int, now time.Time) (*models.Trends, error) {
	if period != models.StatsPeriodMonthly && period != models.StatsPeriodYearly {
		return nil, fmt.Errorf("%w: %s", ErrInvalidStatsPeriod, period)
	}
	if count < MinTrendCount || count > MaxTrendCount {
		return nil, fmt.Errorf("%w: count must be between %d and %d", ErrInvalidTrendCount, MinTrendCount, MaxTrendCount)
	}

	currentStart := bucketStart(period, now.UTC())
	to := nextBucket(period, currentStart)
	from := currentStart
	for i := 1; i < count; i++ {
		from = previousBucket(period, from)
	}

	buckets, err := s.bucketize(ctx, period, from, to)
	if err != nil {
		return nil, err
	}

	current, previous := buckets[len(buckets)-1], buckets[len(buckets)-2]
	return &models.Trends{
		Period:            period,
		Buckets:           buckets,
		ExpenseChangeRate: changeRate(current.Expense, previous.Expense),
		IncomeChangeRate:  changeRate(current.Income, previous.Income),
	}, nil
}

// bucketize sums [from, to) into zero-filled period buckets
func (s *StatisticsService) bucketize(ctx context.Context, period string, from, to time.Time) ([]models.DateBucket, error) {
	buckets := make([]models.DateBucket, 0)
	index := make(map[string]int)

	for start := bucketStart(period, from); start.Before(to); start = nextBucket(period, start) {
		if len(buckets) == MaxDateBuckets {
			return nil, fmt.Errorf("%w: more than %d", ErrTooManyBuckets, MaxDateBuckets)
		}
		key := bucketKey(period, start)
		index[key] = len(buckets)
		buckets = append(buckets, models.DateBucket{
			Key:     key,
			Start:   start,
			Expense: decimal.Zero,
			Income:  decimal.Zero,
		})
	}

	rows, err := s.transactionRepo.ListDatedAmounts(ctx, from, to)
	if err != nil {
		return nil, err
	}

	for _, row := range rows {
		i, ok := index[bucketKey(period, bucketStart(period, row.Date.UTC()))]
		if !ok {
			continue
		}
		if row.IsExpense() {
			buckets[i].Expense = buckets[i].Expense.Add(row.Amount)
		} else {
			buckets[i].Income = buckets[i].Income.Add(row.Amount)
		}
	}

	for i := range buckets {
		buckets[i].Expense = buckets[i].Expense.Round(2)
		buckets[i].Income = buckets[i].Income.Round(2)
	}

	return buckets, nil
}

func bucketStart(period string, t time.Time) time.Time {
	t = t.UTC()
	day := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)

	switch period {
	case models.StatsPeriodWeekly:
		// Weeks start on Monday
		offset := (int(day.Weekday()) + 6) % 7
		return day.AddDate(0, 0, -offset)
	case models.StatsPeriodMonthly:
		return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
	case models.StatsPeriodYearly:
		return time.Date(t.Year(), time.January, 1, 0, 0, 0, 0, time.UTC)
	default:
		return day
	}
}

func nextBucket(period string, start time.Time) time.Time {
	switch period {
	case models.StatsPeriodWeekly:
		return start.AddDate(0, 0, 7)
	case models.StatsPeriodMonthly:
		return start.AddDate(0, 1, 0)
	case models.StatsPeriodYearly:
		return start.AddDate(1, 0, 0)
	default:
		return start.AddDate(0, 0, 1)
	}
}

func previousBucket(period string, start time.Time) time.Time {
	switch period {
	case models.StatsPeriodWeekly:
		return start.AddDate(0, 0, -7)
	case models.StatsPeriodMonthly:
		return start.AddDate(0, -1, 0)
	case models.StatsPeriodYearly:
		return start.AddDate(-1, 0, 0)
	default:
		return start.AddDate(0, 0, -1)
	}
}

func bucketKey(period string, start time.Time) string {
	switch period {
	case models.StatsPeriodMonthly:
		return start.Format("2006-01")
	case models.StatsPeriodYearly:
		return start.Format("2006")
	default:
		return start.Format("2006-01-02")
	}
}

func flowTotals(totals []models.TypeTotal) models.FlowTotals {
	flow := models.FlowTotals{Expense: decimal.Zero, Income: decimal.Zero}
	for _, total := range totals {
		switch total.Type {
		case models.TransactionTypeExpense:
			flow.Expense = total.Total.Round(2)
		case models.TransactionTypeIncome:
			flow.Income = total.Total.Round(2)
		}
	}
	return flow
}

func spentMap(rows []models.CategorySummary) map[string]decimal.Decimal {
	spent := make(map[string]decimal.Decimal, len(rows))
	for _, row := range rows {
		spent[row.Category] = row.TotalAmount
	}
	return spent
}

// ratio is part/whole rounded to 4 places, 0 when whole is not positive
func ratio(part, whole decimal.Decimal) float64 {
	if !whole.IsPositive() {
		return 0
	}
	return part.Div(whole).Round(4).InexactFloat64()
}

// changeRate is (current - previous) / previous, nil when previous is zero
func changeRate(current, previous decimal.Decimal) *float64 {
	if previous.IsZero() {
		return nil
	}
	rate := current.Sub(previous).Div(previous).Round(4).InexactFloat64()
	return &rate
}
