package repositories

import (
	"context"
	"testing"

	"household-ledger/internal/database"
	"household-ledger/internal/models"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
)

// BudgetRepositorySuite defines the test suite for BudgetRepository
type BudgetRepositorySuite struct {
	suite.Suite
	db   *database.DB
	repo BudgetRepositoryInterface
	ctx  context.Context
}

func (s *BudgetRepositorySuite) SetupTest() {
	s.db = database.SetupTestDB(s.T())
	s.repo = NewBudgetRepository(s.db.DB)
	s.ctx = context.Background()
}

func (s *BudgetRepositorySuite) TearDownTest() {
	database.CleanupTestDB(s.T(), s.db)
}

func TestBudgetRepositorySuite(t *testing.T) {
	suite.Run(t, new(BudgetRepositorySuite))
}

func (s *BudgetRepositorySuite) newBudget(category, period string, amount int64) *models.Budget {
	return &models.Budget{
		Category: category,
		Period:   period,
		Amount:   decimal.NewFromInt(amount),
	}
}

func (s *BudgetRepositorySuite) TestCreateAndGetByID() {
	budget := s.newBudget("식비", models.BudgetPeriodMonthly, 300000)

	s.Require().NoError(s.repo.Create(s.ctx, budget))
	s.NotEqual(uuid.Nil, budget.ID)

	found, err := s.repo.GetByID(s.ctx, budget.ID)
	s.Require().NoError(err)
	s.Equal("식비", found.Category)
	s.True(decimal.NewFromInt(300000).Equal(found.Amount))

	_, err = s.repo.GetByID(s.ctx, uuid.New())
	s.ErrorIs(err, ErrBudgetNotFound)
}

func (s *BudgetRepositorySuite) TestCreate_DuplicateCategoryPeriod() {
	s.Require().NoError(s.repo.Create(s.ctx, s.newBudget("식비", models.BudgetPeriodMonthly, 300000)))

	err := s.repo.Create(s.ctx, s.newBudget("식비", models.BudgetPeriodMonthly, 500000))
	s.ErrorIs(err, ErrBudgetExists)

	// same category with a different period is allowed
	s.NoError(s.repo.Create(s.ctx, s.newBudget("식비", models.BudgetPeriodYearly, 3600000)))
}

func (s *BudgetRepositorySuite) TestCreate_InvalidPeriod() {
	err := s.repo.Create(s.ctx, s.newBudget("식비", "weekly", 1000))
	s.ErrorIs(err, models.ErrInvalidBudgetPeriod)
}

func (s *BudgetRepositorySuite) TestList_Filters() {
	s.Require().NoError(s.repo.Create(s.ctx, s.newBudget("식비", models.BudgetPeriodMonthly, 300000)))
	s.Require().NoError(s.repo.Create(s.ctx, s.newBudget("교통비", models.BudgetPeriodMonthly, 100000)))
	s.Require().NoError(s.repo.Create(s.ctx, s.newBudget("식비", models.BudgetPeriodYearly, 3600000)))

	all, err := s.repo.List(s.ctx, "", "")
	s.Require().NoError(err)
	s.Len(all, 3)
	s.Equal("교통비", all[0].Category)

	monthly, err := s.repo.List(s.ctx, models.BudgetPeriodMonthly, "")
	s.Require().NoError(err)
	s.Len(monthly, 2)

	food, err := s.repo.List(s.ctx, "", "식비")
	s.Require().NoError(err)
	s.Len(food, 2)

	none, err := s.repo.List(s.ctx, models.BudgetPeriodYearly, "교통비")
	s.Require().NoError(err)
	s.Empty(none)
}

func (s *BudgetRepositorySuite) TestUpdate() {
	monthly := s.newBudget("식비", models.BudgetPeriodMonthly, 300000)
	yearly := s.newBudget("식비", models.BudgetPeriodYearly, 3600000)
	s.Require().NoError(s.repo.Create(s.ctx, monthly))
	s.Require().NoError(s.repo.Create(s.ctx, yearly))

	monthly.Amount = decimal.NewFromInt(350000)
	s.Require().NoError(s.repo.Update(s.ctx, monthly))

	found, err := s.repo.GetByID(s.ctx, monthly.ID)
	s.Require().NoError(err)
	s.True(decimal.NewFromInt(350000).Equal(found.Amount))

	yearly.Period = models.BudgetPeriodMonthly
	s.ErrorIs(s.repo.Update(s.ctx, yearly), ErrBudgetExists)
}

func (s *BudgetRepositorySuite) TestDelete() {
	budget := s.newBudget("식비", models.BudgetPeriodMonthly, 300000)
	s.Require().NoError(s.repo.Create(s.ctx, budget))

	s.Require().NoError(s.repo.Delete(s.ctx, budget.ID))
	s.ErrorIs(s.repo.Delete(s.ctx, budget.ID), ErrBudgetNotFound)
}

func (s *BudgetRepositorySuite) TestExists() {
	budget := s.newBudget("식비", models.BudgetPeriodMonthly, 300000)
	s.Require().NoError(s.repo.Create(s.ctx, budget))

	exists, err := s.repo.Exists(s.ctx, "식비", models.BudgetPeriodMonthly, uuid.Nil)
	s.Require().NoError(err)
	s.True(exists)

	exists, err = s.repo.Exists(s.ctx, "식비", models.BudgetPeriodMonthly, budget.ID)
	s.Require().NoError(err)
	s.False(exists)

	exists, err = s.repo.Exists(s.ctx, "식비", models.BudgetPeriodYearly, uuid.Nil)
	s.Require().NoError(err)
	s.False(exists)
}
