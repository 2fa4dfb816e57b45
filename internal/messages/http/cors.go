package http

import (
	"net/url"
	"strings"

	"github.com/gin-gonic/gin"
)

// fallbackOrigin is returned for unrecognized origins. Credentials are never
// allowed, so echoing a fixed development origin is harmless.
const fallbackOrigin = "http://localhost:3000"

var allowedOrigins = map[string]bool{
	"https://mylg.studio":     true,
	"https://www.mylg.studio": true,
	"http://localhost:3000":   true,
	"http://localhost:5173":   true,
}

// AllowOrigin resolves the Access-Control-Allow-Origin value for a request
// origin: the fixed allow-list plus any subdomain of mylg.studio, with the
// localhost fallback for everything else.
func AllowOrigin(origin string) string {
	if allowedOrigins[origin] {
		return origin
	}
	if u, err := url.Parse(origin); err == nil && u.Scheme == "https" {
		if strings.HasSuffix(u.Hostname(), ".mylg.studio") {
			return origin
		}
	}
	return fallbackOrigin
}

// CORSMiddleware applies the message API's origin policy to every response.
func CORSMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		h := c.Writer.Header()
		h.Set("Access-Control-Allow-Origin", AllowOrigin(c.GetHeader("Origin")))
		h.Set("Access-Control-Allow-Methods", "GET,DELETE,OPTIONS")
		h.Set("Access-Control-Allow-Headers", "Content-Type,Authorization")
		h.Add("Vary", "Origin")
		c.Next()
	}
}
