package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/masingita/countrybot/config"
	"github.com/masingita/countrybot/db"
	"github.com/masingita/countrybot/logging"
	"github.com/rs/zerolog/log"
)

// HealthCheckResponse represents the response from the healthcheck endpoint
type HealthCheckResponse struct {
	Status   string            `json:"status"`
	Uptime   string            `json:"uptime"`
	Services map[string]string `json:"services"`
}

// InfoResponse describes the running service
type InfoResponse struct {
	Name            string `json:"name"`
	Version         string `json:"version"`
	DefaultLanguage string `json:"default_language"`
	Locale          string `json:"locale"`
}

// HealthCheckHandler returns the health status of the service
// GET /api/healthcheck
func HealthCheckHandler(c *gin.Context) {
	ctx := c.Request.Context()

	response := HealthCheckResponse{
		Status:   "ok",
		Uptime:   time.Since(startTime).Round(time.Second).String(),
		Services: map[string]string{"store": chat.StoreKind()},
	}

	if chat.StoreKind() == "postgres" {
		if err := db.Ping(ctx); err != nil {
			log.Warn().Ctx(ctx).Err(err).Msg("Database healthcheck failed")
			response.Status = "degraded"
			response.Services["database"] = "unavailable"
		} else {
			response.Services["database"] = "ok"
		}
	}

	c.JSON(http.StatusOK, response)
}

// InfoHandler returns the service name, version and language settings
// GET /api/info
func InfoHandler(c *gin.Context) {
	locale, ok := logging.StrFromContext(c.Request.Context(), "locale")
	if !ok {
		locale = config.DefaultLanguage
	}
	c.JSON(http.StatusOK, InfoResponse{
		Name:            "countrybot",
		Version:         Version,
		DefaultLanguage: config.DefaultLanguage,
		Locale:          locale,
	})
}
