package chatbot

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"
)

// DefaultRetention is how long conversations are kept without updates
const DefaultRetention = 30 * 24 * time.Hour

// RunRetention deletes conversations not updated within maxAge once
// immediately and then every interval, until ctx is done
func RunRetention(ctx context.Context, store Store, maxAge, interval time.Duration) {
	if maxAge <= 0 {
		maxAge = DefaultRetention
	}
	if interval <= 0 {
		interval = time.Hour
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		cleanupConversations(ctx, store, maxAge)
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

func cleanupConversations(ctx context.Context, store Store, maxAge time.Duration) {
	count, err := deleteOlderThan(ctx, store, maxAge, time.Now())
	if err != nil {
		return
	}
	if count > 0 {
		log.Info().Ctx(ctx).Int64("removed_count", count).Msg("Cleaned up old conversations")
	}
}
