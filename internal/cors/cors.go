// Package cors implements the cross-origin access policy for the API.
//
// The allow-list is operator-configured; any localhost origin is always
// allowed as a development convenience. Browsers treat the literal
// "null" allow-origin as a rejection, which is exactly what we want for
// origins outside the list.
package cors

import (
	"net/http"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
)

var localhostOrigin = regexp.MustCompile(`^https?://(localhost|127\.0\.0\.1)(:\d+)?$`)

type Policy struct {
	AllowedOrigins []string
	AllowedMethods []string
	AllowedHeaders []string
	MaxAge         time.Duration
}

// NewPolicy builds the policy for this API's endpoints.
// Methods are limited to the verbs the endpoints actually support.
func NewPolicy(allowedOrigins []string) Policy {
	return Policy{
		AllowedOrigins: allowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type", "Authorization", "X-Request-Id"},
		MaxAge:         time.Hour,
	}
}

// AllowOrigin resolves the Access-Control-Allow-Origin value for a request.
//
//	no Origin header      -> "*"    (non-browser caller)
//	localhost, any port   -> echoed (dev convenience)
//	origin in allow-list  -> echoed
//	anything else         -> "null" (browsers reject this)
func (p Policy) AllowOrigin(origin string) string {
	if origin == "" {
		return "*"
	}
	if localhostOrigin.MatchString(origin) {
		return origin
	}
	for _, allowed := range p.AllowedOrigins {
		if origin == allowed {
			return origin
		}
	}
	return "null"
}

// AllowHeaders returns the union of the fixed default header set and
// whatever the browser's preflight requested.
func (p Policy) AllowHeaders(requested string) string {
	out := make([]string, 0, len(p.AllowedHeaders)+4)
	seen := make(map[string]bool, len(p.AllowedHeaders)+4)
	add := func(h string) {
		h = strings.TrimSpace(h)
		if h == "" {
			return
		}
		k := strings.ToLower(h)
		if seen[k] {
			return
		}
		seen[k] = true
		out = append(out, h)
	}
	for _, h := range p.AllowedHeaders {
		add(h)
	}
	for _, h := range strings.Split(requested, ",") {
		add(h)
	}
	return strings.Join(out, ", ")
}

// Middleware applies the policy headers to every response, including
// error paths, and short-circuits preflight requests with 204.
// It must be registered before any middleware that can abort or panic.
func Middleware(p Policy) gin.HandlerFunc {
	methods := strings.Join(p.AllowedMethods, ", ")
	maxAge := strconv.Itoa(int(p.MaxAge.Seconds()))

	return func(c *gin.Context) {
		origin := c.GetHeader("Origin")
		allow := p.AllowOrigin(origin)

		h := c.Writer.Header()
		h.Set("Access-Control-Allow-Origin", allow)
		h.Add("Vary", "Origin")
		if allow != "*" && allow != "null" {
			// Credentials only make sense for an exact origin echo.
			h.Set("Access-Control-Allow-Credentials", "true")
		}
		h.Set("Access-Control-Allow-Methods", methods)
		h.Set("Access-Control-Allow-Headers", p.AllowHeaders(c.GetHeader("Access-Control-Request-Headers")))
		h.Set("Access-Control-Max-Age", maxAge)

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}
