// Package server assembles the HTTP engine: API routes, browser application
// fallback, security middleware and the prometheus endpoint.
package server

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/masingita/countrybot/api"
	"github.com/masingita/countrybot/routes"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Options configures NewRouter
type Options struct {
	// Routes resolves page paths to views. Defaults to routes.Default().
	Routes routes.Table
	// Frontend serves the page shell and static resources
	Frontend        http.Handler
	AllowedOrigins  []string
	DefaultLanguage string
	// ChatRateLimit is the number of chat messages allowed per session per
	// minute. Zero disables limiting.
	ChatRateLimit int
}

// NewRouter builds the gin engine. The API handlers must be initialized with
// api.Init beforehand.
func NewRouter(opts Options) *gin.Engine {
	if opts.Routes == nil {
		opts.Routes = routes.Default()
	}
	if opts.Frontend == nil {
		opts.Frontend = http.NotFoundHandler()
	}

	var limiters *limiterSet
	if opts.ChatRateLimit > 0 {
		limiters = newLimiterSet(opts.ChatRateLimit, time.Minute)
	}

	router := gin.New()

	// Global middleware, also run for NoRoute
	router.Use(gin.Recovery())
	router.Use(requestLoggingMiddleware())
	router.Use(secureHeadersMiddleware())
	router.Use(corsMiddleware(opts.AllowedOrigins))
	router.Use(localeMiddleware(opts.DefaultLanguage))
	router.Use(csrfMiddleware())

	api.RegisterRoutes(router.Group("/api"), chatRateLimitMiddleware(limiters))

	// Prometheus metrics endpoint
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// Browser application for everything else (must be last)
	router.NoRoute(frontendHandler(opts.Routes, opts.Frontend))

	return router
}
