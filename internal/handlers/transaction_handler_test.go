package handlers

import (
	"context"
	"net/http"
	"testing"
	"time"

	"household-ledger/internal/dto"
	"household-ledger/internal/models"
	"household-ledger/internal/services"
	"household-ledger/internal/services/service_mocks"

	"github.com/go-playground/validator/v10"
	"github.com/golang/mock/gomock"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
)

type TransactionHandlerTestSuite struct {
	suite.Suite
	ctrl        *gomock.Controller
	echo        *echo.Echo
	mockService *service_mocks.MockTransactionServiceInterface
	handler     *TransactionHandler
}

func TestTransactionHandlerSuite(t *testing.T) {
	suite.Run(t, new(TransactionHandlerTestSuite))
}

func (s *TransactionHandlerTestSuite) SetupTest() {
	s.ctrl = gomock.NewController(s.T())
	s.echo = newTestEcho()
	s.mockService = service_mocks.NewMockTransactionServiceInterface(s.ctrl)
	s.handler = NewTransactionHandler(s.mockService)
}

func (s *TransactionHandlerTestSuite) TearDownTest() {
	s.ctrl.Finish()
}

func sampleTransactions(n int) []models.Transaction {
	transactions := make([]models.Transaction, n)
	for i := range transactions {
		transactions[i] = models.Transaction{
			ID:       uuid.New(),
			Type:     models.TransactionTypeExpense,
			Date:     time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC),
			Amount:   decimal.NewFromInt(int64(1000 * (i + 1))),
			Category: "식비",
		}
	}
	return transactions
}

func (s *TransactionHandlerTestSuite) TestListTransactions_PageTwoOfFifteen() {
	c, rec := newContext(s.echo, http.MethodGet,
		"/api/transactions?page=2&limit=10&sort=amount&order=asc&dateFrom=2024-01-01&dateTo=2024-01-31&type=expense&category=%EC%8B%9D%EB%B9%84&search=%EC%BB%A4%ED%94%BC", "")

	s.mockService.EXPECT().List(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, filters models.TransactionFilters) ([]models.Transaction, int64, error) {
			s.Equal(10, filters.Limit)
			s.Equal(10, filters.Offset)
			s.Equal(models.SortByAmount, filters.SortBy)
			s.Equal(models.SortOrderAsc, filters.Order)
			s.Equal(models.TransactionTypeExpense, filters.Type)
			s.Equal("식비", filters.Category)
			s.Equal("커피", filters.Search)
			s.Require().NotNil(filters.DateFrom)
			s.Equal(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), *filters.DateFrom)
			s.Require().NotNil(filters.DateTo)
			// a bare dateTo covers the whole day
			s.Equal(time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC).Add(-time.Nanosecond), *filters.DateTo)
			return sampleTransactions(5), 15, nil
		})

	s.Require().NoError(s.handler.ListTransactions(c))
	s.Equal(http.StatusOK, rec.Code)

	var response dto.ListTransactionsResponse
	s.Require().NoError(decodeBody(rec, &response))
	s.Len(response.Items, 5)
	s.Equal(2, response.Page)
	s.Equal(10, response.Limit)
	s.Equal(int64(15), response.Total)
	s.Equal(2, response.TotalPages)
	s.Equal(1000.0, response.Items[0].Amount)
}

func (s *TransactionHandlerTestSuite) TestListTransactions_Defaults() {
	c, rec := newContext(s.echo, http.MethodGet, "/api/transactions", "")

	s.mockService.EXPECT().List(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, filters models.TransactionFilters) ([]models.Transaction, int64, error) {
			s.Equal(defaultPageLimit, filters.Limit)
			s.Zero(filters.Offset)
			s.Equal(models.SortByDate, filters.SortBy)
			s.Equal(models.SortOrderDesc, filters.Order)
			s.Nil(filters.DateFrom)
			s.Nil(filters.DateTo)
			return nil, 0, nil
		})

	s.Require().NoError(s.handler.ListTransactions(c))
	s.Equal(http.StatusOK, rec.Code)

	var response dto.ListTransactionsResponse
	s.Require().NoError(decodeBody(rec, &response))
	s.NotNil(response.Items)
	s.Empty(response.Items)
	s.Zero(response.TotalPages)
	s.Equal(1, response.Page)
}

func (s *TransactionHandlerTestSuite) TestListTransactions_LargestPageKeepsPositiveOffset() {
	c, rec := newContext(s.echo, http.MethodGet, "/api/transactions?page=107374182&limit=20", "")

	s.mockService.EXPECT().List(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, filters models.TransactionFilters) ([]models.Transaction, int64, error) {
			s.Equal(107374181*20, filters.Offset)
			return nil, 3, nil
		})

	s.Require().NoError(s.handler.ListTransactions(c))
	s.Equal(http.StatusOK, rec.Code)

	var response dto.ListTransactionsResponse
	s.Require().NoError(decodeBody(rec, &response))
	s.Empty(response.Items)
	s.Equal(107374182, response.Page)
	s.Equal(1, response.TotalPages)
}

func (s *TransactionHandlerTestSuite) TestListTransactions_InvalidParameters() {
	for _, query := range []string{
		"limit=0",
		"limit=101",
		"limit=abc",
		"page=0",
		"page=9223372036854775807",
		"page=107374183&limit=20",
		"sort=memo",
		"order=up",
		"dateFrom=2024-13-01",
		"dateTo=yesterday",
		"type=transfer",
	} {
		s.Run(query, func() {
			c, rec := newContext(s.echo, http.MethodGet, "/api/transactions?"+query, "")

			s.Require().NoError(s.handler.ListTransactions(c))
			s.Equal(http.StatusBadRequest, rec.Code)
			s.Equal("VALIDATION_001", decodeError(rec).Code)
		})
	}
}

func (s *TransactionHandlerTestSuite) TestCreateTransaction_Success() {
	body := `{"type":"expense","date":"2024-01-10","amount":4500.5,"category":" 식비 ","memo":"점심"}`
	c, rec := newContext(s.echo, http.MethodPost, "/api/transactions", body)

	s.mockService.EXPECT().Create(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, t *models.Transaction) (*models.Transaction, error) {
			s.Equal(models.TransactionTypeExpense, t.Type)
			s.Equal(time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC), t.Date)
			s.True(t.Amount.Equal(decimal.RequireFromString("4500.5")))
			s.Equal("식비", t.Category)
			s.Equal("점심", t.Memo)
			t.ID = uuid.New()
			return t, nil
		})

	s.Require().NoError(s.handler.CreateTransaction(c))
	s.Equal(http.StatusCreated, rec.Code)

	var response dto.TransactionResponse
	s.Require().NoError(decodeBody(rec, &response))
	s.NotEqual(uuid.Nil, response.ID)
	s.Equal(4500.5, response.Amount)
}

func (s *TransactionHandlerTestSuite) TestCreateTransaction_ValidationErrors() {
	testCases := []struct {
		name string
		body string
	}{
		{"zero amount", `{"type":"expense","date":"2024-01-10","amount":0,"category":"식비"}`},
		{"negative amount", `{"type":"expense","date":"2024-01-10","amount":-100,"category":"식비"}`},
		{"three decimals", `{"type":"expense","date":"2024-01-10","amount":1.005,"category":"식비"}`},
		{"bad type", `{"type":"transfer","date":"2024-01-10","amount":100,"category":"식비"}`},
		{"bad date", `{"type":"expense","date":"10/01/2024","amount":100,"category":"식비"}`},
		{"missing category", `{"type":"expense","date":"2024-01-10","amount":100}`},
	}

	for _, tc := range testCases {
		s.Run(tc.name, func() {
			c, _ := newContext(s.echo, http.MethodPost, "/api/transactions", tc.body)

			err := s.handler.CreateTransaction(c)
			s.Require().Error(err)
			s.IsType(validator.ValidationErrors{}, err)
		})
	}
}

func (s *TransactionHandlerTestSuite) TestCreateTransaction_MalformedJSON() {
	c, rec := newContext(s.echo, http.MethodPost, "/api/transactions", `{"amount":`)

	s.Require().NoError(s.handler.CreateTransaction(c))
	s.Equal(http.StatusBadRequest, rec.Code)
	s.Equal("VALIDATION_001", decodeError(rec).Code)
}

func (s *TransactionHandlerTestSuite) TestCreateTransaction_UnknownCategory() {
	body := `{"type":"expense","date":"2024-01-10","amount":100,"category":"없는카테고리"}`
	c, rec := newContext(s.echo, http.MethodPost, "/api/transactions", body)

	s.mockService.EXPECT().Create(gomock.Any(), gomock.Any()).Return(nil, services.ErrUnknownCategory)

	s.Require().NoError(s.handler.CreateTransaction(c))
	s.Equal(http.StatusBadRequest, rec.Code)
	s.Equal("CATEGORY_004", decodeError(rec).Code)
}

func (s *TransactionHandlerTestSuite) TestGetTransaction() {
	s.Run("invalid id", func() {
		c, rec := newContext(s.echo, http.MethodGet, "/api/transactions/abc", "")
		s.Require().NoError(s.handler.GetTransaction(withID(c, "abc")))
		s.Equal(http.StatusBadRequest, rec.Code)
		s.Equal("VALIDATION_007", decodeError(rec).Code)
	})

	s.Run("not found", func() {
		id := uuid.New()
		c, rec := newContext(s.echo, http.MethodGet, "/api/transactions/"+id.String(), "")
		s.mockService.EXPECT().Get(gomock.Any(), id).Return(nil, services.ErrTransactionNotFound)

		s.Require().NoError(s.handler.GetTransaction(withID(c, id.String())))
		s.Equal(http.StatusNotFound, rec.Code)
		s.Equal("TRANSACTION_001", decodeError(rec).Code)
	})

	s.Run("found", func() {
		transaction := sampleTransactions(1)[0]
		c, rec := newContext(s.echo, http.MethodGet, "/api/transactions/"+transaction.ID.String(), "")
		s.mockService.EXPECT().Get(gomock.Any(), transaction.ID).Return(&transaction, nil)

		s.Require().NoError(s.handler.GetTransaction(withID(c, transaction.ID.String())))
		s.Equal(http.StatusOK, rec.Code)
	})
}

func (s *TransactionHandlerTestSuite) TestUpdateTransaction_AmountOnly() {
	transaction := sampleTransactions(1)[0]
	c, rec := newContext(s.echo, http.MethodPut, "/api/transactions/"+transaction.ID.String(), `{"amount":5000}`)

	s.mockService.EXPECT().Update(gomock.Any(), transaction.ID, gomock.Any()).DoAndReturn(
		func(_ context.Context, _ uuid.UUID, patch models.TransactionPatch) (*models.Transaction, error) {
			s.Require().NotNil(patch.Amount)
			s.True(patch.Amount.Equal(decimal.NewFromInt(5000)))
			s.Nil(patch.Type)
			s.Nil(patch.Date)
			s.Nil(patch.Category)
			patch.Apply(&transaction)
			return &transaction, nil
		})

	s.Require().NoError(s.handler.UpdateTransaction(withID(c, transaction.ID.String())))
	s.Equal(http.StatusOK, rec.Code)

	var response dto.TransactionResponse
	s.Require().NoError(decodeBody(rec, &response))
	s.Equal(5000.0, response.Amount)
}

func (s *TransactionHandlerTestSuite) TestUpdateTransaction_NothingToUpdate() {
	id := uuid.New()
	c, rec := newContext(s.echo, http.MethodPut, "/api/transactions/"+id.String(), `{}`)

	s.mockService.EXPECT().Update(gomock.Any(), id, models.TransactionPatch{}).Return(nil, services.ErrNothingToUpdate)

	s.Require().NoError(s.handler.UpdateTransaction(withID(c, id.String())))
	s.Equal(http.StatusBadRequest, rec.Code)
	s.Equal("VALIDATION_006", decodeError(rec).Code)
}

func (s *TransactionHandlerTestSuite) TestUpdateTransaction_ZeroAmountRejected() {
	id := uuid.New()
	c, _ := newContext(s.echo, http.MethodPut, "/api/transactions/"+id.String(), `{"amount":0}`)

	err := s.handler.UpdateTransaction(withID(c, id.String()))
	s.IsType(validator.ValidationErrors{}, err)
}

func (s *TransactionHandlerTestSuite) TestDeleteTransaction() {
	id := uuid.New()
	c, rec := newContext(s.echo, http.MethodDelete, "/api/transactions/"+id.String(), "")
	s.mockService.EXPECT().Delete(gomock.Any(), id).Return(nil)

	s.Require().NoError(s.handler.DeleteTransaction(withID(c, id.String())))
	s.Equal(http.StatusOK, rec.Code)

	var response dto.DeleteResponse
	s.Require().NoError(decodeBody(rec, &response))
	s.True(response.Success)
	s.NotEmpty(response.Message)
}

func (s *TransactionHandlerTestSuite) TestDeleteTransaction_DatabaseFailureIsHidden() {
	id := uuid.New()
	c, rec := newContext(s.echo, http.MethodDelete, "/api/transactions/"+id.String(), "")
	s.mockService.EXPECT().Delete(gomock.Any(), id).Return(context.DeadlineExceeded)

	s.Require().NoError(s.handler.DeleteTransaction(withID(c, id.String())))
	s.Equal(http.StatusInternalServerError, rec.Code)

	response := decodeError(rec)
	s.Equal("SYSTEM_001", response.Code)
	s.Equal("test-trace-id", response.TraceID)
	s.NotContains(rec.Body.String(), "deadline")
}
