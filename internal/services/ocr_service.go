package services

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"household-ledger/internal/models"

	"github.com/sashabaranov/go-openai"
	"github.com/shopspring/decimal"
)

var (
	ErrOCRUnavailable   = errors.New("receipt recognition service is unavailable")
	ErrOCRParse         = errors.New("receipt recognition returned an unusable result")
	ErrOCRNotConfigured = fmt.Errorf("%w: OPENAI_API_KEY is not set", ErrOCRUnavailable)
)

const (
	ocrMaxTokens          = 1000
	ocrTemperature        = 0.1
	defaultAttemptTimeout = 30 * time.Second
)

const receiptPrompt = `당신은 영수증을 분석하는 전문가입니다.
다음 영수증 이미지를 분석하여 JSON 형식으로 정보를 추출해주세요.

요구사항:
1. 날짜를 YYYY-MM-DD 형식으로 추출 (날짜를 찾을 수 없으면 null)
2. 상호명 추출 (상호명을 찾을 수 없으면 null)
3. 각 상품명과 가격을 배열로 추출 (상품 정보를 찾을 수 없으면 빈 배열)
4. 총액 추출 (총액을 찾을 수 없으면 null)
5. 카테고리를 추론 (가능한 경우, 예: 식비, 교통비, 쇼핑 등. 추론 불가능하면 null)
6. 신뢰도를 0-1 사이 값으로 제공 (전체적으로 얼마나 확신하는지)
7. 원본 텍스트를 rawText 필드에 포함 (가능한 한 많이 추출)

JSON 형식:
{
  "date": "YYYY-MM-DD 또는 null",
  "store": "상호명 또는 null",
  "items": [
    {"name": "상품명", "price": 금액}
  ],
  "total": 총액 또는 null,
  "category": "카테고리명 또는 null",
  "confidence": 0.0-1.0,
  "rawText": "추출된 원본 텍스트"
}

반드시 유효한 JSON 형식으로만 응답하세요. 다른 설명이나 텍스트는 포함하지 마세요.`

// chatCompleter is the part of the OpenAI client the extractor needs
type chatCompleter interface {
	CreateChatCompletion(ctx context.Context, request openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

// OCRConfig tunes the extractor
type OCRConfig struct {
	APIKey         string
	BaseURL        string
	Model          string
	MaxAttempts    int
	AttemptTimeout time.Duration
}

// OpenAIReceiptExtractor reads receipts with an OpenAI-compatible vision model
type OpenAIReceiptExtractor struct {
	client         chatCompleter
	model          string
	maxAttempts    int
	attemptTimeout time.Duration
	breaker        CircuitBreakerInterface
	metrics        MetricsRecorderInterface
	logger         *slog.Logger
}

// NewOpenAIReceiptExtractor builds an extractor. A nil client is returned as a
// configuration error on first use, so the server still starts without a key.
func NewOpenAIReceiptExtractor(cfg OCRConfig, breaker CircuitBreakerInterface, metrics MetricsRecorderInterface, logger *slog.Logger) *OpenAIReceiptExtractor {
	if logger == nil {
		logger = slog.Default()
	}
	if metrics == nil {
		metrics = NopMetrics{}
	}
	if cfg.MaxAttempts < 1 {
		cfg.MaxAttempts = 1
	}
	if cfg.AttemptTimeout <= 0 {
		cfg.AttemptTimeout = defaultAttemptTimeout
	}

	var client chatCompleter
	if cfg.APIKey != "" {
		clientConfig := openai.DefaultConfig(cfg.APIKey)
		if cfg.BaseURL != "" {
			clientConfig.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
		}
		client = openai.NewClientWithConfig(clientConfig)
	}

	return &OpenAIReceiptExtractor{
		client:         client,
		model:          cfg.Model,
		maxAttempts:    cfg.MaxAttempts,
		attemptTimeout: cfg.AttemptTimeout,
		breaker:        breaker,
		metrics:        metrics,
		logger:         logger.With("component", "ocr_service"),
	}
}

// Extract sends the image to the model and parses the JSON reply.
// Provider failures are retried; an unusable reply is not.
func (e *OpenAIReceiptExtractor) Extract(ctx context.Context, image []byte, mimeType string) (*models.ReceiptData, error) {
	if e.client == nil {
		e.metrics.IncrementCounter(MetricOCRRequest, map[string]string{"status": "not_configured"})
		return nil, ErrOCRNotConfigured
	}

	if e.breaker != nil && e.breaker.IsOpen() {
		e.metrics.IncrementCounter(MetricOCRRequest, map[string]string{"status": "circuit_open"})
		return nil, fmt.Errorf("%w: %w", ErrOCRUnavailable, ErrCircuitBreakerOpen)
	}

	start := time.Now()
	defer func() {
		e.metrics.RecordProcessingTime(MetricOCRDuration, time.Since(start))
	}()

	request := e.buildRequest(image, mimeType)

	var lastErr error
	for attempt := 1; attempt <= e.maxAttempts; attempt++ {
		reply, err := e.complete(ctx, request)
		if err == nil {
			e.metrics.IncrementCounter(MetricOCRAttempt, map[string]string{"outcome": "success"})
			if e.breaker != nil {
				e.breaker.RecordSuccess()
			}

			data, parseErr := ParseReceiptReply(reply)
			if parseErr != nil {
				e.logger.ErrorContext(ctx, "Failed to parse OCR reply", "error", parseErr, "reply", truncateText(reply, 500))
				e.metrics.IncrementCounter(MetricOCRRequest, map[string]string{"status": "parse_error"})
				return nil, parseErr
			}

			e.logger.InfoContext(ctx, "Receipt recognized", "attempt", attempt, "confidence", data.Confidence)
			e.metrics.IncrementCounter(MetricOCRRequest, map[string]string{"status": "success"})
			return data, nil
		}

		lastErr = err
		e.metrics.IncrementCounter(MetricOCRAttempt, map[string]string{"outcome": "failure"})
		e.logger.WarnContext(ctx, "OCR attempt failed", "attempt", attempt, "max_attempts", e.maxAttempts, "error", err)

		if ctx.Err() != nil {
			e.metrics.IncrementCounter(MetricOCRRequest, map[string]string{"status": "cancelled"})
			return nil, fmt.Errorf("receipt recognition cancelled: %w", ctx.Err())
		}
	}

	failures := 0
	if e.breaker != nil {
		e.breaker.RecordFailure()
		failures = e.breaker.GetFailureCount()
	}
	e.metrics.IncrementCounter(MetricOCRRequest, map[string]string{"status": "unavailable"})
	e.logger.ErrorContext(ctx, "OCR failed after all attempts",
		"attempts", e.maxAttempts,
		"consecutive_failures", failures,
		"error", lastErr)

	return nil, fmt.Errorf("%w: %v", ErrOCRUnavailable, lastErr)
}

func (e *OpenAIReceiptExtractor) buildRequest(image []byte, mimeType string) openai.ChatCompletionRequest {
	dataURL := fmt.Sprintf("data:%s;base64,%s", mimeType, base64.StdEncoding.EncodeToString(image))

	return openai.ChatCompletionRequest{
		Model:       e.model,
		MaxTokens:   ocrMaxTokens,
		Temperature: ocrTemperature,
		Messages: []openai.ChatCompletionMessage{
			{
				Role: openai.ChatMessageRoleUser,
				MultiContent: []openai.ChatMessagePart{
					{
						Type: openai.ChatMessagePartTypeText,
						Text: receiptPrompt,
					},
					{
						Type: openai.ChatMessagePartTypeImageURL,
						ImageURL: &openai.ChatMessageImageURL{
							URL:    dataURL,
							Detail: openai.ImageURLDetailAuto,
						},
					},
				},
			},
		},
	}
}

// complete runs one attempt bounded by the per-attempt timeout
func (e *OpenAIReceiptExtractor) complete(ctx context.Context, request openai.ChatCompletionRequest) (string, error) {
	attemptCtx, cancel := context.WithTimeout(ctx, e.attemptTimeout)
	defer cancel()

	response, err := e.client.CreateChatCompletion(attemptCtx, request)
	if err != nil {
		return "", err
	}
	if len(response.Choices) == 0 {
		return "", nil
	}
	return response.Choices[0].Message.Content, nil
}

// ParseReceiptReply turns the model's reply into ReceiptData.
// The reply must be a JSON object. A missing or null total is kept as nil so the
// user can fill it in; a total that is present but not numeric is rejected.
func ParseReceiptReply(reply string) (*models.ReceiptData, error) {
	text := stripCodeFence(reply)
	if text == "" {
		return nil, fmt.Errorf("%w: empty reply", ErrOCRParse)
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal([]byte(text), &fields); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrOCRParse, err)
	}
	if fields == nil {
		return nil, fmt.Errorf("%w: reply is not a JSON object", ErrOCRParse)
	}

	var total *decimal.Decimal
	if raw, present := fields["total"]; present && strings.TrimSpace(string(raw)) != "null" {
		value, ok := jsonDecimal(raw)
		if !ok {
			return nil, fmt.Errorf("%w: total is not a number", ErrOCRParse)
		}
		total = &value
	}

	data := &models.ReceiptData{
		Date:    jsonDate(fields["date"]),
		Store:   strings.TrimSpace(jsonString(fields["store"])),
		Items:   jsonItems(fields["items"]),
		Total:   total,
		RawText: jsonString(fields["rawText"]),
	}

	if category := strings.TrimSpace(jsonString(fields["category"])); category != "" {
		data.Category = &category
	}

	var confidence float64
	if err := json.Unmarshal(fields["confidence"], &confidence); err == nil {
		data.Confidence = confidence
	}

	if data.RawText == "" {
		data.RawText = reply
	}

	return data, nil
}

func stripCodeFence(reply string) string {
	text := strings.TrimSpace(reply)
	switch {
	case strings.HasPrefix(text, "```json"):
		text = text[len("```json"):]
	case strings.HasPrefix(text, "```"):
		text = text[len("```"):]
	}
	text = strings.TrimSuffix(strings.TrimSpace(text), "```")
	return strings.TrimSpace(text)
}

func jsonString(raw json.RawMessage) string {
	var s string
	if len(raw) == 0 || json.Unmarshal(raw, &s) != nil {
		return ""
	}
	return s
}

// jsonDecimal accepts a JSON number or a numeric string
func jsonDecimal(raw json.RawMessage) (decimal.Decimal, bool) {
	if len(raw) == 0 || string(raw) == "null" {
		return decimal.Zero, false
	}

	var number json.Number
	if err := json.Unmarshal(raw, &number); err == nil {
		if d, err := decimal.NewFromString(number.String()); err == nil {
			return d, true
		}
		return decimal.Zero, false
	}

	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return decimal.Zero, false
	}
	s = strings.ReplaceAll(strings.TrimSpace(s), ",", "")
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, false
	}
	return d, true
}

func jsonDate(raw json.RawMessage) string {
	s := strings.TrimSpace(jsonString(raw))
	if _, err := time.Parse("2006-01-02", s); err != nil {
		return ""
	}
	return s
}

func jsonItems(raw json.RawMessage) []models.ReceiptItem {
	items := []models.ReceiptItem{}

	var entries []map[string]json.RawMessage
	if len(raw) == 0 || json.Unmarshal(raw, &entries) != nil {
		return items
	}

	for _, entry := range entries {
		name := strings.TrimSpace(jsonString(entry["name"]))
		if name == "" {
			continue
		}
		price, ok := jsonDecimal(entry["price"])
		if !ok {
			continue
		}
		items = append(items, models.ReceiptItem{Name: name, Price: price})
	}

	return items
}

func truncateText(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit])
}
