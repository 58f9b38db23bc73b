package api

import (
	"context"
	"net/http"
	"runtime"

	"github.com/gin-gonic/gin"
	"github.com/masingita/countrybot/db"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog/log"
)

// StatsResponse represents the parsed metrics for operators
type StatsResponse struct {
	Memory   MemoryStats   `json:"memory"`
	Runtime  RuntimeStats  `json:"runtime"`
	Database DatabaseStats `json:"database"`
	Chat     ChatStats     `json:"chat"`
}

// MemoryStats contains memory usage information
type MemoryStats struct {
	ResidentMB float64 `json:"resident_mb"`
	HeapMB     float64 `json:"heap_mb"`
}

// RuntimeStats contains Go runtime information
type RuntimeStats struct {
	Goroutines int `json:"goroutines"`
}

// DatabaseStats contains database pool information
type DatabaseStats struct {
	ActiveConns int32 `json:"active_conns"`
	MaxConns    int32 `json:"max_conns"`
	IdleConns   int32 `json:"idle_conns"`
}

// ChatStats contains chat activity counters
type ChatStats struct {
	MessagesHandled   int64 `json:"messages_handled"`
	CountriesSelected int64 `json:"countries_selected"`
	RateLimited       int64 `json:"rate_limited"`
}

// AdminStatsHandler returns runtime and chat statistics
// GET /api/admin/stats
func AdminStatsHandler(c *gin.Context) {
	ctx := c.Request.Context()

	c.JSON(http.StatusOK, StatsResponse{
		Memory:   getMemoryStats(ctx),
		Runtime:  RuntimeStats{Goroutines: runtime.NumGoroutine()},
		Database: getDatabaseStats(),
		Chat: ChatStats{
			MessagesHandled:   counterTotal(ctx, "countrybot_chat_messages_handled_count"),
			CountriesSelected: counterTotal(ctx, "countrybot_chat_countries_selected_count"),
			RateLimited:       counterTotal(ctx, "countrybot_chat_rate_limited_count"),
		},
	})
}

func getMemoryStats(ctx context.Context) MemoryStats {
	var mem runtime.MemStats
	runtime.ReadMemStats(&mem)
	stats := MemoryStats{HeapMB: float64(mem.HeapAlloc) / (1024 * 1024)}

	mfs, err := prometheus.DefaultGatherer.Gather()
	if err != nil {
		log.Error().Ctx(ctx).Err(err).Msg("Failed to gather prometheus metrics")
		return stats
	}
	for _, mf := range mfs {
		if mf.GetName() == "process_resident_memory_bytes" {
			for _, m := range mf.GetMetric() {
				stats.ResidentMB = m.GetGauge().GetValue() / (1024 * 1024)
			}
		}
	}
	return stats
}

func getDatabaseStats() DatabaseStats {
	stats := db.PoolStats()
	if stats == nil {
		return DatabaseStats{}
	}
	return DatabaseStats{
		ActiveConns: stats.TotalConns(),
		MaxConns:    stats.MaxConns(),
		IdleConns:   stats.IdleConns(),
	}
}

// counterTotal sums all label combinations of a counter
func counterTotal(ctx context.Context, name string) int64 {
	mfs, err := prometheus.DefaultGatherer.Gather()
	if err != nil {
		log.Error().Ctx(ctx).Err(err).Str("metric", name).Msg("Failed to gather prometheus metrics")
		return 0
	}

	var total int64
	for _, mf := range mfs {
		if mf.GetName() == name {
			for _, m := range mf.GetMetric() {
				total += int64(m.GetCounter().GetValue())
			}
		}
	}
	return total
}
