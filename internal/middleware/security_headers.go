package middleware

import "github.com/gin-gonic/gin"

// SecurityHeadersMiddleware sets response headers for a JSON-only API.
// Responses carrying credentials or sensor data are never cached.
func SecurityHeadersMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		headers := c.Writer.Header()

		headers.Set("X-Content-Type-Options", "nosniff")
		headers.Set("X-Frame-Options", "DENY")
		headers.Set("Referrer-Policy", "no-referrer")
		headers.Set("Content-Security-Policy", "default-src 'none'; frame-ancestors 'none'")

		if c.Request.TLS != nil {
			headers.Set("Strict-Transport-Security", "max-age=31536000; includeSubDomains")
		}
		if c.Request.Method != "GET" || c.GetHeader("Authorization") != "" {
			headers.Set("Cache-Control", "no-store")
		}

		c.Next()
	}
}
