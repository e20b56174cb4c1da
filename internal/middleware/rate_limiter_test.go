package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func okHandler(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

func doRequest(e *echo.Echo, handler echo.HandlerFunc, remoteAddr string) (*httptest.ResponseRecorder, error) {
	req := httptest.NewRequest(http.MethodPost, "/api/receipt/ocr", nil)
	req.RemoteAddr = remoteAddr
	rec := httptest.NewRecorder()
	err := handler(e.NewContext(req, rec))
	return rec, err
}

func TestRateLimiter(t *testing.T) {
	e := echo.New()
	handler := RateLimiter()(okHandler)

	// Test that requests within limit are allowed
	for i := 0; i < 5; i++ {
		rec, err := doRequest(e, handler, "192.168.1.100:12345")
		assert.NoError(t, err)
		assert.Equal(t, http.StatusOK, rec.Code, "request %d should succeed", i)
	}

	// Make many requests to exceed rate limit
	rateLimited := false
	for i := 0; i < 20; i++ {
		rec, err := doRequest(e, handler, "192.168.1.100:12345")
		// Rate limiter uses SendError which sends response and returns nil
		if err == nil && rec.Code == http.StatusTooManyRequests {
			rateLimited = true
			break
		}
	}

	assert.True(t, rateLimited, "Should be rate limited after many requests")
}

func TestRateLimiterWithConfig(t *testing.T) {
	e := echo.New()
	handler := RateLimiterWithConfig(2, 4)(okHandler)

	// Should allow initial burst
	for i := 0; i < 4; i++ {
		rec, err := doRequest(e, handler, "192.168.1.2:12345")
		assert.NoError(t, err)
		assert.Equal(t, http.StatusOK, rec.Code)
	}

	// Next request should be rate limited
	rec, err := doRequest(e, handler, "192.168.1.2:12345")
	assert.NoError(t, err)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "SYSTEM_006", body["code"])
}

func TestRateLimiterInstancesAreIndependent(t *testing.T) {
	e := echo.New()
	first := RateLimiterWithConfig(1, 1)(okHandler)
	second := RateLimiterWithConfig(1, 1)(okHandler)

	rec, _ := doRequest(e, first, "10.0.0.1:1")
	assert.Equal(t, http.StatusOK, rec.Code)
	rec, _ = doRequest(e, first, "10.0.0.1:1")
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)

	// exhausting one limiter leaves the other untouched
	rec, _ = doRequest(e, second, "10.0.0.1:1")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRateLimiterDifferentIPs(t *testing.T) {
	e := echo.New()
	handler := RateLimiter()(okHandler)

	// Different IPs should have independent rate limits
	ips := []string{"192.168.1.1:1234", "192.168.1.2:1234", "192.168.1.3:1234"}

	for _, ip := range ips {
		for i := 0; i < 5; i++ {
			rec, err := doRequest(e, handler, ip)
			assert.NoError(t, err, "Request %d for IP %s should succeed", i, ip)
			assert.Equal(t, http.StatusOK, rec.Code)
		}
	}
}

func TestGetIP(t *testing.T) {
	tests := []struct {
		name       string
		headers    map[string]string
		remoteAddr string
		expected   string
	}{
		{
			name: "X-Forwarded-For header",
			headers: map[string]string{
				"X-Forwarded-For": "192.168.1.1",
			},
			remoteAddr: "127.0.0.1:12345",
			expected:   "192.168.1.1",
		},
		{
			name: "X-Forwarded-For chain uses client address",
			headers: map[string]string{
				"X-Forwarded-For": "203.0.113.7, 10.0.0.2, 10.0.0.3",
			},
			remoteAddr: "127.0.0.1:12345",
			expected:   "203.0.113.7",
		},
		{
			name: "X-Real-IP header",
			headers: map[string]string{
				"X-Real-IP": "192.168.1.2",
			},
			remoteAddr: "127.0.0.1:12345",
			expected:   "192.168.1.2",
		},
		{
			name: "X-Forwarded-For takes precedence",
			headers: map[string]string{
				"X-Forwarded-For": "192.168.1.1",
				"X-Real-IP":       "192.168.1.2",
			},
			remoteAddr: "127.0.0.1:12345",
			expected:   "192.168.1.1",
		},
		{
			name:       "Falls back to RealIP",
			headers:    map[string]string{},
			remoteAddr: "192.168.1.3:12345",
			expected:   "192.168.1.3",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := echo.New()
			req := httptest.NewRequest(http.MethodGet, "/test", nil)
			for k, v := range tt.headers {
				req.Header.Set(k, v)
			}
			req.RemoteAddr = tt.remoteAddr

			c := e.NewContext(req, httptest.NewRecorder())
			assert.Equal(t, tt.expected, getIP(c))
		})
	}
}

func TestVisitorSweep(t *testing.T) {
	now := time.Now()
	store := &visitorStore{
		visitors: map[string]*visitor{
			"old_ip": {lastSeen: now.Add(-5 * time.Minute)},
			"new_ip": {lastSeen: now},
		},
	}

	store.sweep(now)

	_, oldExists := store.visitors["old_ip"]
	_, newExists := store.visitors["new_ip"]
	assert.False(t, oldExists, "Old visitor should not exist")
	assert.True(t, newExists, "New visitor should still exist")
}

func TestRateLimiterConcurrency(t *testing.T) {
	e := echo.New()
	handler := RateLimiter()(okHandler)

	var wg sync.WaitGroup
	var mu sync.Mutex
	successCount := 0
	rateLimitCount := 0

	// Simulate concurrent requests from same IP
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()

			rec, err := doRequest(e, handler, "192.168.1.100:12345")

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				return
			}
			switch rec.Code {
			case http.StatusOK:
				successCount++
			case http.StatusTooManyRequests:
				rateLimitCount++
			}
		}()
	}

	wg.Wait()

	// Some requests should succeed, some should be rate limited
	assert.Greater(t, successCount, 0, "Some requests should succeed")
	assert.Greater(t, rateLimitCount, 0, "Some requests should be rate limited")
	assert.Equal(t, 20, successCount+rateLimitCount, "All requests should be accounted for")
}
