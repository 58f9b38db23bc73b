package server

import (
	"net/http"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/masingita/countrybot/api"
	"github.com/masingita/countrybot/auth"
	"github.com/masingita/countrybot/constants"
	"github.com/masingita/countrybot/logging"
	"github.com/masingita/countrybot/metrics"
	"github.com/rs/zerolog/log"
	"golang.org/x/text/language"
)

const contentSecurityPolicy = "default-src 'self'; script-src 'self' 'wasm-unsafe-eval'; " +
	"style-src 'self' 'unsafe-inline'; img-src 'self' data: https:; frame-ancestors 'none';"

const localeCookieMaxAge = 365 * 24 * time.Hour

// requestLoggingMiddleware logs HTTP requests using zerolog and records
// request metrics by route template
func requestLoggingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		query := c.Request.URL.RawQuery

		c.Next()

		latency := time.Since(start)
		status := c.Writer.Status()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		metrics.RecordHTTPRequest(c.Request.Method, route, status, latency.Seconds())

		log.Debug().Ctx(c.Request.Context()).
			Int("status", status).
			Str("method", c.Request.Method).
			Str("path", path).
			Str("query", query).
			Dur("latency", latency).
			Str("client_ip", c.ClientIP()).
			Msg("HTTP request")
	}
}

func secureHeadersMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		h := c.Writer.Header()
		h.Set("Content-Security-Policy", contentSecurityPolicy)
		h.Set("Referrer-Policy", "strict-origin-when-cross-origin")
		h.Set("X-Frame-Options", "DENY")
		h.Set("X-Content-Type-Options", "nosniff")
		c.Next()
	}
}

// corsMiddleware allows credentialed cross origin requests from the
// configured origins only
func corsMiddleware(allowedOrigins []string) gin.HandlerFunc {
	allowed := make([]string, len(allowedOrigins))
	for i, o := range allowedOrigins {
		allowed[i] = normalizeOrigin(o)
	}

	return func(c *gin.Context) {
		origin := c.GetHeader("Origin")
		if origin == "" || !slices.Contains(allowed, normalizeOrigin(origin)) {
			c.Next()
			return
		}

		h := c.Writer.Header()
		h.Set("Access-Control-Allow-Origin", origin)
		h.Set("Access-Control-Allow-Credentials", "true")
		h.Set("Access-Control-Expose-Headers", constants.CSRFHeader)
		h.Add("Vary", "Origin")

		if c.Request.Method == http.MethodOptions && c.GetHeader("Access-Control-Request-Method") != "" {
			h.Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
			h.Set("Access-Control-Allow-Headers", "Authorization, Content-Type, "+constants.CSRFHeader)
			h.Set("Access-Control-Max-Age", strconv.Itoa(3600))
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}

func normalizeOrigin(origin string) string {
	return strings.TrimRight(strings.ToLower(strings.TrimSpace(origin)), "/")
}

// localeMiddleware resolves the request locale from ?lang=, which also
// persists it in a cookie, then from the cookie, then the default language
func localeMiddleware(defaultLanguage string) gin.HandlerFunc {
	fallback := canonicalLocale(defaultLanguage)
	if fallback == "" {
		fallback = "en"
	}

	return func(c *gin.Context) {
		locale := ""
		if lang := canonicalLocale(c.Query(constants.LocaleParam)); lang != "" {
			locale = lang
			c.SetSameSite(http.SameSiteLaxMode)
			c.SetCookie(constants.LocaleCookie, locale, int(localeCookieMaxAge.Seconds()), "/", "", api.IsSecure(c.Request), false)
		} else if cookie, err := c.Cookie(constants.LocaleCookie); err == nil {
			locale = canonicalLocale(cookie)
		}
		if locale == "" {
			locale = fallback
		}

		c.Header("Content-Language", locale)
		c.Request = c.Request.WithContext(logging.ContextWithStr(c.Request.Context(), "locale", locale))
		c.Next()
	}
}

// canonicalLocale returns the BCP 47 form of tag, empty when it is not a
// valid language tag
func canonicalLocale(tag string) string {
	if tag == "" {
		return ""
	}
	t, err := language.Parse(tag)
	if err != nil {
		return ""
	}
	return t.String()
}

// csrfMiddleware issues a script readable XSRF-TOKEN cookie and requires
// unsafe API requests to echo it in the X-XSRF-TOKEN header. Admin routes
// use basic auth and are exempt.
func csrfMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		token, _ := c.Cookie(constants.CSRFCookie)
		if token == "" {
			fresh, err := auth.GenerateToken()
			if err != nil {
				log.Error().Ctx(c.Request.Context()).Err(err).Msg("Failed to generate CSRF token")
				c.AbortWithStatusJSON(http.StatusInternalServerError, api.ErrorResponse{Error: "Internal error"})
				return
			}
			c.SetSameSite(http.SameSiteLaxMode)
			c.SetCookie(constants.CSRFCookie, fresh, 0, "/", "", api.IsSecure(c.Request), false)
		}

		if requiresCSRF(c.Request) && !auth.TokensMatch(c.GetHeader(constants.CSRFHeader), token) {
			log.Warn().Ctx(c.Request.Context()).Str("path", c.Request.URL.Path).Msg("Rejected request without valid CSRF token")
			c.AbortWithStatusJSON(http.StatusForbidden, api.ErrorResponse{Error: "Invalid CSRF token"})
			return
		}
		c.Next()
	}
}

func requiresCSRF(r *http.Request) bool {
	switch r.Method {
	case http.MethodGet, http.MethodHead, http.MethodOptions, http.MethodTrace:
		return false
	}
	path := r.URL.Path
	return strings.HasPrefix(path, "/api/") && !strings.HasPrefix(path, "/api/admin/") && path != "/api/admin"
}
