package middleware

import (
	"strings"

	"github.com/labstack/echo/v4"
)

// FilesPathPrefix is where stored receipt images are served from
const FilesPathPrefix = "/api/files/"

// SecurityHeaders adds security headers to responses.
// Receipt images are immutable once stored, so they get a private cache
// lifetime and may be embedded by the web client on another origin.
func SecurityHeaders() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			h := c.Response().Header()

			// Prevent MIME type sniffing of uploaded images
			h.Set("X-Content-Type-Options", "nosniff")
			h.Set("X-Frame-Options", "DENY")
			h.Set("X-XSS-Protection", "1; mode=block")
			h.Set("Strict-Transport-Security", "max-age=31536000; includeSubDomains")
			h.Set("Content-Security-Policy", "default-src 'self'")
			h.Set("Referrer-Policy", "strict-origin-when-cross-origin")
			h.Set("Permissions-Policy", "geolocation=(), microphone=(), camera=()")

			if strings.HasPrefix(c.Request().URL.Path, FilesPathPrefix) {
				h.Set("Cross-Origin-Resource-Policy", "cross-origin")
				h.Set("Cache-Control", "private, max-age=86400, immutable")
			} else {
				// ledger data changes on every write
				h.Set("Cache-Control", "no-store, no-cache, must-revalidate, private")
				h.Set("Pragma", "no-cache")
				h.Set("Expires", "0")
			}

			return next(c)
		}
	}
}
