package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"household-ledger/internal/messaging"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/suite"
)

type RequestIDTestSuite struct {
	suite.Suite
	echo *echo.Echo
}

func (s *RequestIDTestSuite) SetupTest() {
	s.echo = echo.New()
}

func TestRequestIDTestSuite(t *testing.T) {
	suite.Run(t, new(RequestIDTestSuite))
}

// serve runs RequestID with the given inbound header and returns what the handler saw
func (s *RequestIDTestSuite) serve(header string) (echoID, requestCtxID string, rec *httptest.ResponseRecorder) {
	req := httptest.NewRequest(http.MethodPost, "/api/transactions", nil)
	if header != "" {
		req.Header.Set(TraceIDHeader, header)
	}
	rec = httptest.NewRecorder()
	c := s.echo.NewContext(req, rec)

	handler := RequestID()(func(c echo.Context) error {
		echoID = GetTraceID(c)
		requestCtxID = messaging.TraceIDFromContext(c.Request().Context())
		return c.NoContent(http.StatusCreated)
	})
	s.Require().NoError(handler(c))
	return echoID, requestCtxID, rec
}

func (s *RequestIDTestSuite) TestGeneratesUUIDWhenMissing() {
	echoID, ctxID, rec := s.serve("")

	s.Regexp(`^[0-9a-f]{8}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{12}$`, echoID)
	s.Equal(echoID, ctxID)
	s.Equal(echoID, rec.Header().Get(TraceIDHeader))
}

func (s *RequestIDTestSuite) TestReusesWellFormedClientID() {
	echoID, ctxID, rec := s.serve("web-7f3a.9_b")

	s.Equal("web-7f3a.9_b", echoID)
	s.Equal("web-7f3a.9_b", ctxID)
	s.Equal("web-7f3a.9_b", rec.Header().Get(TraceIDHeader))
}

func (s *RequestIDTestSuite) TestReplacesMalformedClientID() {
	for _, header := range []string{
		"has space",
		"line\nbreak",
		"<script>",
		strings.Repeat("a", 65),
	} {
		echoID, _, rec := s.serve(header)
		s.NotEqual(header, echoID)
		s.Len(echoID, 36)
		s.Equal(echoID, rec.Header().Get(TraceIDHeader))
	}
}

func (s *RequestIDTestSuite) TestGetTraceID_EmptyWithoutMiddleware() {
	c := s.echo.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), httptest.NewRecorder())
	s.Empty(GetTraceID(c))
}
