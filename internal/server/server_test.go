package server

import (
	"bytes"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"os"
	"strings"
	"testing"
	"time"

	"household-ledger/internal/config"
	"household-ledger/internal/database"
	"household-ledger/internal/dto"
	"household-ledger/internal/errors"
	"household-ledger/internal/middleware"
	"household-ledger/internal/models"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/suite"
)

func testConfig(uploadDir, environment string) *config.Config {
	return &config.Config{
		Server: config.ServerConfig{
			Port:               "0",
			Host:               "127.0.0.1",
			Environment:        environment,
			PublicBaseURL:      "http://localhost:8000",
			ReadTimeout:        5 * time.Second,
			WriteTimeout:       5 * time.Second,
			ShutdownTimeout:    time.Second,
			CORSAllowOrigins:   []string{"http://localhost:5173"},
			RateLimitPerSecond: 2,
			RateLimitBurst:     5,
		},
		Storage: config.StorageConfig{
			UploadDir:   uploadDir,
			MaxFileSize: 1024,
		},
		OCR: config.OCRConfig{
			Model:          "gpt-4o",
			MaxAttempts:    3,
			AttemptTimeout: time.Second,
		},
	}
}

type ServerTestSuite struct {
	suite.Suite
	db        *database.DB
	config    *config.Config
	uploadDir string
	server    *Server
}

func TestServerSuite(t *testing.T) {
	suite.Run(t, new(ServerTestSuite))
}

func (s *ServerTestSuite) SetupTest() {
	s.db = database.SetupTestDB(s.T())
	s.uploadDir = s.T().TempDir()
	s.config = testConfig(s.uploadDir, "development")
	s.server = s.newServer(s.config)
}

func (s *ServerTestSuite) newServer(cfg *config.Config) *Server {
	registry := prometheus.NewRegistry()
	return New(Options{
		Config:     cfg,
		DB:         s.db.DB,
		Registerer: registry,
		Gatherer:   registry,
	})
}

func (s *ServerTestSuite) do(method, path, body string) *httptest.ResponseRecorder {
	return s.doWith(s.server, method, path, body)
}

func (s *ServerTestSuite) doWith(server *Server, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	server.Handler().ServeHTTP(rec, req)
	return rec
}

func (s *ServerTestSuite) upload(server *Server, filename, contentType string, content []byte) *httptest.ResponseRecorder {
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename="%s"`, filename))
	header.Set("Content-Type", contentType)
	part, err := writer.CreatePart(header)
	s.Require().NoError(err)
	_, err = part.Write(content)
	s.Require().NoError(err)
	s.Require().NoError(writer.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/receipt/ocr", body)
	req.Header.Set(echo.HeaderContentType, writer.FormDataContentType())
	rec := httptest.NewRecorder()
	server.Handler().ServeHTTP(rec, req)
	return rec
}

func (s *ServerTestSuite) decodeError(rec *httptest.ResponseRecorder) errors.ErrorResponse {
	var response errors.ErrorResponse
	s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &response))
	return response
}

func (s *ServerTestSuite) TestHealthRoutes() {
	for _, path := range []string{"/health", "/api/health"} {
		rec := s.do(http.MethodGet, path, "")
		s.Equal(http.StatusOK, rec.Code, path)
		s.Contains(rec.Body.String(), `"healthy"`)
	}
}

func (s *ServerTestSuite) TestUnknownRoute() {
	req := httptest.NewRequest(http.MethodGet, "/api/nope", nil)
	req.Header.Set(middleware.TraceIDHeader, "trace-123")
	rec := httptest.NewRecorder()
	s.server.Handler().ServeHTTP(rec, req)

	s.Equal(http.StatusNotFound, rec.Code)
	response := s.decodeError(rec)
	s.Equal("SYSTEM_004", response.Code)
	s.Equal("trace-123", response.TraceID)
	s.Equal("trace-123", rec.Header().Get(middleware.TraceIDHeader))
}

func (s *ServerTestSuite) TestTransactionLifecycle() {
	database.CreateTestCategory(s.T(), s.db, "식비", models.TransactionTypeExpense)

	rec := s.do(http.MethodPost, "/api/transactions", `{"type":"expense","date":"2024-01-10","amount":4500,"category":"식비","memo":"커피"}`)
	s.Require().Equal(http.StatusCreated, rec.Code, rec.Body.String())

	var created dto.TransactionResponse
	s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &created))
	s.Equal(4500.0, created.Amount)
	path := "/api/transactions/" + created.ID.String()

	rec = s.do(http.MethodPut, path, `{"amount":5200.5}`)
	s.Require().Equal(http.StatusOK, rec.Code, rec.Body.String())
	s.Contains(rec.Body.String(), `"amount":5200.5`)

	rec = s.do(http.MethodGet, "/api/transactions?search=%EC%BB%A4%ED%94%BC", "")
	s.Require().Equal(http.StatusOK, rec.Code)
	s.Contains(rec.Body.String(), `"total":1`)

	rec = s.do(http.MethodDelete, path, "")
	s.Equal(http.StatusOK, rec.Code)

	rec = s.do(http.MethodGet, path, "")
	s.Equal(http.StatusNotFound, rec.Code)
	s.Equal("TRANSACTION_001", s.decodeError(rec).Code)
}

func (s *ServerTestSuite) TestTransactionPagination() {
	database.CreateTestCategory(s.T(), s.db, "식비", models.TransactionTypeExpense)
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 15; i++ {
		database.CreateTestTransaction(s.T(), s.db, models.TransactionTypeExpense, "식비", int64(1000+i), start.AddDate(0, 0, i))
	}

	rec := s.do(http.MethodGet, "/api/transactions?page=2&limit=10", "")
	s.Require().Equal(http.StatusOK, rec.Code)

	var response dto.ListTransactionsResponse
	s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &response))
	s.Len(response.Items, 5)
	s.Equal(int64(15), response.Total)
	s.Equal(2, response.TotalPages)
}

func (s *ServerTestSuite) TestValidationErrorsAreRendered() {
	rec := s.do(http.MethodPost, "/api/transactions", `{"type":"expense","date":"2024-01-10","amount":-1,"category":"식비"}`)

	s.Equal(http.StatusBadRequest, rec.Code)
	response := s.decodeError(rec)
	s.Equal("VALIDATION_001", response.Code)
	s.Contains(response.Detail, "amount")
}

func (s *ServerTestSuite) TestCategoryInUseCannotBeDeleted() {
	category := database.CreateTestCategory(s.T(), s.db, "교통비", models.TransactionTypeExpense)
	database.CreateTestTransaction(s.T(), s.db, models.TransactionTypeExpense, "교통비", 1250, time.Now())

	rec := s.do(http.MethodDelete, "/api/categories/"+category.ID.String(), "")
	s.Equal(http.StatusBadRequest, rec.Code)
	s.Equal("CATEGORY_003", s.decodeError(rec).Code)
}

func (s *ServerTestSuite) TestStatisticsEnvelope() {
	rec := s.do(http.MethodGet, "/api/statistics/summary?date=2024-01-10", "")
	s.Require().Equal(http.StatusOK, rec.Code)
	s.Contains(rec.Body.String(), `"success":true`)
	s.Contains(rec.Body.String(), `"date":"2024-01-10"`)
}

func (s *ServerTestSuite) TestGifUploadRejected() {
	rec := s.upload(s.server, "anim.gif", "image/gif", []byte("GIF89a"))

	s.Equal(http.StatusBadRequest, rec.Code)
	s.Equal("RECEIPT_001", s.decodeError(rec).Code)

	entries, err := os.ReadDir(s.uploadDir)
	s.Require().NoError(err)
	s.Empty(entries)
}

func (s *ServerTestSuite) TestOversizedBodyRejected() {
	rec := s.upload(s.server, "big.jpg", "image/jpeg", bytes.Repeat([]byte("x"), 2<<20))

	s.Equal(http.StatusRequestEntityTooLarge, rec.Code)
	s.Equal("RECEIPT_002", s.decodeError(rec).Code)
}

func (s *ServerTestSuite) TestOCRRouteIsRateLimited() {
	cfg := testConfig(s.uploadDir, "development")
	cfg.Server.RateLimitPerSecond = 1
	cfg.Server.RateLimitBurst = 1
	server := s.newServer(cfg)

	first := s.upload(server, "anim.gif", "image/gif", []byte("GIF89a"))
	s.Equal(http.StatusBadRequest, first.Code)

	second := s.upload(server, "anim.gif", "image/gif", []byte("GIF89a"))
	s.Equal(http.StatusTooManyRequests, second.Code)
	s.Equal("SYSTEM_006", s.decodeError(second).Code)
}

func (s *ServerTestSuite) TestCORSPreflight() {
	req := httptest.NewRequest(http.MethodOptions, "/api/transactions", nil)
	req.Header.Set(echo.HeaderOrigin, "http://localhost:5173")
	req.Header.Set(echo.HeaderAccessControlRequestMethod, http.MethodPost)
	rec := httptest.NewRecorder()
	s.server.Handler().ServeHTTP(rec, req)

	s.Equal(http.StatusNoContent, rec.Code)
	s.Equal("http://localhost:5173", rec.Header().Get(echo.HeaderAccessControlAllowOrigin))

	req = httptest.NewRequest(http.MethodOptions, "/api/transactions", nil)
	req.Header.Set(echo.HeaderOrigin, "http://evil.example")
	req.Header.Set(echo.HeaderAccessControlRequestMethod, http.MethodPost)
	rec = httptest.NewRecorder()
	s.server.Handler().ServeHTTP(rec, req)

	s.Empty(rec.Header().Get(echo.HeaderAccessControlAllowOrigin))
}

func (s *ServerTestSuite) TestDevRoutesOnlyInDevelopment() {
	database.CreateTestCategory(s.T(), s.db, "식비", models.TransactionTypeExpense)

	rec := s.do(http.MethodPost, "/api/dev/generate-transactions?count=5&days=10", "")
	s.Require().Equal(http.StatusOK, rec.Code, rec.Body.String())
	s.Contains(rec.Body.String(), `"transactions_created":5`)

	production := s.newServer(testConfig(s.uploadDir, "production"))
	rec = s.doWith(production, http.MethodPost, "/api/dev/generate-transactions", "")
	s.Equal(http.StatusNotFound, rec.Code)
}

func (s *ServerTestSuite) TestMetricsEndpoint() {
	database.CreateTestCategory(s.T(), s.db, "식비", models.TransactionTypeExpense)
	rec := s.do(http.MethodPost, "/api/transactions", `{"type":"expense","date":"2024-01-10","amount":100,"category":"식비"}`)
	s.Require().Equal(http.StatusCreated, rec.Code)

	rec = s.do(http.MethodGet, "/metrics", "")
	s.Equal(http.StatusOK, rec.Code)
	s.Contains(rec.Body.String(), `ledger_writes_total{entity="transaction",operation="create"} 1`)
}
