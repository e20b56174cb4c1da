package services

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"household-ledger/internal/services/service_mocks"

	"github.com/golang/mock/gomock"
	"github.com/sashabaranov/go-openai"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

type OCRServiceSuite struct {
	suite.Suite
	server   *httptest.Server
	requests atomic.Int32
	handler  func(w http.ResponseWriter, r *http.Request)
}

func TestOCRServiceSuite(t *testing.T) {
	suite.Run(t, new(OCRServiceSuite))
}

func (s *OCRServiceSuite) SetupTest() {
	s.requests.Store(0)
	s.handler = nil
	s.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.requests.Add(1)
		s.Equal("/v1/chat/completions", r.URL.Path)
		s.Equal("Bearer test-key", r.Header.Get("Authorization"))
		s.handler(w, r)
	}))
}

func (s *OCRServiceSuite) TearDownTest() {
	s.server.Close()
}

func (s *OCRServiceSuite) newExtractor(breaker CircuitBreakerInterface) *OpenAIReceiptExtractor {
	return NewOpenAIReceiptExtractor(OCRConfig{
		APIKey:         "test-key",
		BaseURL:        s.server.URL + "/v1",
		Model:          "gpt-4o",
		MaxAttempts:    3,
		AttemptTimeout: 5 * time.Second,
	}, breaker, nil, nil)
}

func replyWith(w http.ResponseWriter, content string) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(openai.ChatCompletionResponse{
		ID:     "chatcmpl-test",
		Object: "chat.completion",
		Model:  "gpt-4o",
		Choices: []openai.ChatCompletionChoice{
			{
				Index:        0,
				Message:      openai.ChatCompletionMessage{Role: openai.ChatMessageRoleAssistant, Content: content},
				FinishReason: openai.FinishReasonStop,
			},
		},
	})
}

func failWith(w http.ResponseWriter, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(`{"error":{"message":"upstream failure","type":"server_error"}}`))
}

func (s *OCRServiceSuite) TestExtract_ParsesFencedReply() {
	s.handler = func(w http.ResponseWriter, r *http.Request) {
		var request openai.ChatCompletionRequest
		s.Require().NoError(json.NewDecoder(r.Body).Decode(&request))
		s.Equal("gpt-4o", request.Model)
		s.Require().Len(request.Messages, 1)
		s.Require().Len(request.Messages[0].MultiContent, 2)
		s.True(strings.HasPrefix(request.Messages[0].MultiContent[1].ImageURL.URL, "data:image/png;base64,"))

		replyWith(w, "```json\n{\"date\":\"2024-01-10\",\"store\":\"스타벅스\",\"items\":[{\"name\":\"아메리카노\",\"price\":4500}],\"total\":4500,\"category\":\"식비\",\"confidence\":0.95,\"rawText\":\"스타벅스 아메리카노 4,500\"}\n```")
	}

	data, err := s.newExtractor(nil).Extract(context.Background(), []byte("png"), "image/png")
	s.Require().NoError(err)
	s.Equal("2024-01-10", data.Date)
	s.Equal("스타벅스", data.Store)
	s.Require().NotNil(data.Total)
	s.True(data.Total.Equal(decimal.NewFromInt(4500)))
	s.Require().Len(data.Items, 1)
	s.Equal("아메리카노", data.Items[0].Name)
	s.Require().NotNil(data.Category)
	s.Equal("식비", *data.Category)
	s.InDelta(0.95, data.Confidence, 1e-9)
	s.Equal(int32(1), s.requests.Load())
}

func (s *OCRServiceSuite) TestExtract_RetriesThenSucceeds() {
	s.handler = func(w http.ResponseWriter, r *http.Request) {
		if s.requests.Load() < 3 {
			failWith(w, http.StatusInternalServerError)
			return
		}
		replyWith(w, `{"total": 1000}`)
	}

	data, err := s.newExtractor(nil).Extract(context.Background(), []byte("jpg"), "image/jpeg")
	s.Require().NoError(err)
	s.Require().NotNil(data.Total)
	s.True(data.Total.Equal(decimal.NewFromInt(1000)))
	s.Equal(int32(3), s.requests.Load())
}

func (s *OCRServiceSuite) TestExtract_UnavailableAfterThreeAttempts() {
	s.handler = func(w http.ResponseWriter, r *http.Request) {
		failWith(w, http.StatusBadGateway)
	}
	breaker := NewCircuitBreaker(DefaultCircuitBreakerConfig("ocr"), nil)

	_, err := s.newExtractor(breaker).Extract(context.Background(), []byte("jpg"), "image/jpeg")
	s.ErrorIs(err, ErrOCRUnavailable)
	s.Equal(int32(3), s.requests.Load())
	s.Equal(1, breaker.GetFailureCount())
}

func (s *OCRServiceSuite) TestExtract_ReportsConsecutiveFailures() {
	s.handler = func(w http.ResponseWriter, r *http.Request) {
		failWith(w, http.StatusServiceUnavailable)
	}
	ctrl := gomock.NewController(s.T())
	breaker := service_mocks.NewMockCircuitBreakerInterface(ctrl)
	gomock.InOrder(
		breaker.EXPECT().IsOpen().Return(false),
		breaker.EXPECT().RecordFailure(),
		breaker.EXPECT().GetFailureCount().Return(4),
	)

	_, err := s.newExtractor(breaker).Extract(context.Background(), []byte("jpg"), "image/jpeg")
	s.ErrorIs(err, ErrOCRUnavailable)
	s.Equal(int32(3), s.requests.Load())
}

func (s *OCRServiceSuite) TestExtract_ParseErrorIsNotRetried() {
	s.handler = func(w http.ResponseWriter, r *http.Request) {
		replyWith(w, "영수증을 읽을 수 없습니다")
	}

	_, err := s.newExtractor(nil).Extract(context.Background(), []byte("jpg"), "image/jpeg")
	s.ErrorIs(err, ErrOCRParse)
	s.Equal(int32(1), s.requests.Load())
}

func (s *OCRServiceSuite) TestExtract_OpenBreakerSkipsProvider() {
	s.handler = func(w http.ResponseWriter, r *http.Request) {
		replyWith(w, `{"total": 1}`)
	}
	config := DefaultCircuitBreakerConfig("ocr")
	config.MaxFailures = 1
	breaker := NewCircuitBreaker(config, nil)
	breaker.RecordFailure()

	_, err := s.newExtractor(breaker).Extract(context.Background(), []byte("jpg"), "image/jpeg")
	s.ErrorIs(err, ErrOCRUnavailable)
	s.ErrorIs(err, ErrCircuitBreakerOpen)
	s.Zero(s.requests.Load())
}

func TestExtract_NotConfigured(t *testing.T) {
	extractor := NewOpenAIReceiptExtractor(OCRConfig{Model: "gpt-4o"}, nil, nil, nil)

	_, err := extractor.Extract(context.Background(), []byte("jpg"), "image/jpeg")
	assert.ErrorIs(t, err, ErrOCRNotConfigured)
	assert.ErrorIs(t, err, ErrOCRUnavailable)
}

func TestParseReceiptReply(t *testing.T) {
	t.Run("numeric string total and nulls", func(t *testing.T) {
		data, err := ParseReceiptReply(`{"date":null,"store":null,"items":[],"total":"12,300","category":null,"confidence":0.4,"rawText":""}`)
		require.NoError(t, err)
		require.NotNil(t, data.Total)
		assert.True(t, data.Total.Equal(decimal.NewFromInt(12300)))
		assert.Empty(t, data.Date)
		assert.Empty(t, data.Store)
		assert.Nil(t, data.Category)
		assert.NotNil(t, data.Items)
		assert.Contains(t, data.RawText, "12,300")
	})

	t.Run("drops unusable items and malformed date", func(t *testing.T) {
		data, err := ParseReceiptReply(`{"date":"2024/01/10","items":[{"name":"우유","price":2500},{"name":"","price":100},{"name":"빵","price":"free"}],"total":2500}`)
		require.NoError(t, err)
		assert.Empty(t, data.Date)
		require.Len(t, data.Items, 1)
		assert.Equal(t, "우유", data.Items[0].Name)
	})

	t.Run("plain fence", func(t *testing.T) {
		data, err := ParseReceiptReply("```\n{\"total\": 990.5}\n```")
		require.NoError(t, err)
		require.NotNil(t, data.Total)
		assert.True(t, data.Total.Equal(decimal.RequireFromString("990.5")))
	})

	t.Run("null total keeps what was read", func(t *testing.T) {
		data, err := ParseReceiptReply(`{"date":"2024-01-10","store":"이마트","items":[{"name":"우유","price":2500}],"total":null,"category":"식비","confidence":0.4,"rawText":"이마트 우유 2,500"}`)
		require.NoError(t, err)
		assert.Nil(t, data.Total)
		assert.Equal(t, "2024-01-10", data.Date)
		assert.Equal(t, "이마트", data.Store)
		require.Len(t, data.Items, 1)
		require.NotNil(t, data.Category)
		assert.Equal(t, "식비", *data.Category)
		assert.InDelta(t, 0.4, data.Confidence, 1e-9)
	})

	t.Run("missing total", func(t *testing.T) {
		data, err := ParseReceiptReply(`{"store":"이마트"}`)
		require.NoError(t, err)
		assert.Nil(t, data.Total)
		assert.Equal(t, "이마트", data.Store)
	})

	for name, reply := range map[string]string{
		"empty":        "   ",
		"not json":     "sorry",
		"text total":   `{"total":"알 수 없음"}`,
		"object total": `{"total":{"amount":1000}}`,
		"array":        `[1,2,3]`,
		"json null":    `null`,
	} {
		t.Run(name, func(t *testing.T) {
			_, err := ParseReceiptReply(reply)
			assert.ErrorIs(t, err, ErrOCRParse)
		})
	}
}
