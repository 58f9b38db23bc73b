package api

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/masingita/countrybot/auth"
	"github.com/masingita/countrybot/chatbot"
	"github.com/masingita/countrybot/config"
	"github.com/rs/zerolog/log"
)

// AdminConversationsResponse is a filtered list of stored conversations
type AdminConversationsResponse struct {
	Conversations []chatbot.Conversation `json:"conversations"`
	Count         int                    `json:"count"`
}

// DeleteConversationsResponse reports a retention run
type DeleteConversationsResponse struct {
	Deleted   int64  `json:"deleted"`
	OlderThan string `json:"older_than"`
}

// AdminAuthMiddleware requires the configured admin basic auth credentials
func AdminAuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		user, password, ok := c.Request.BasicAuth()
		if !ok || !auth.CredentialsMatch(user, password, config.AdminUser, config.AdminPassword) {
			log.Warn().Ctx(c.Request.Context()).Str("user", user).Msg("Rejected admin request")
			c.Header("WWW-Authenticate", `Basic realm="countrybot admin"`)
			c.AbortWithStatusJSON(http.StatusUnauthorized, ErrorResponse{Error: "Admin access required"})
			return
		}
		c.Next()
	}
}

// AdminConversationsHandler lists conversations filtered by ?user_id=,
// ?country= or a ?from=&to= RFC3339 range
// GET /api/admin/conversations
func AdminConversationsHandler(c *gin.Context) {
	ctx := c.Request.Context()

	var (
		conversations []chatbot.Conversation
		err           error
	)
	switch {
	case c.Query("user_id") != "":
		conversations, err = chat.ByUser(ctx, c.Query("user_id"))
	case c.Query("country") != "":
		conversations, err = chat.BySelectedCountry(ctx, c.Query("country"))
	case c.Query("from") != "" || c.Query("to") != "":
		from, to, parseErr := parseRange(c.Query("from"), c.Query("to"))
		if parseErr != nil {
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: parseErr.Error()})
			return
		}
		conversations, err = chat.UpdatedBetween(ctx, from, to)
	default:
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "One of user_id, country, from or to is required"})
		return
	}

	if errors.Is(err, chatbot.ErrInvalidRange) {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	}
	if err != nil {
		log.Error().Ctx(ctx).Err(err).Msg("Failed to fetch conversations")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Failed to fetch conversations"})
		return
	}

	c.JSON(http.StatusOK, AdminConversationsResponse{Conversations: conversations, Count: len(conversations)})
}

// AdminDeleteConversationsHandler deletes conversations not updated within
// ?older_than= (a duration such as 720h or 30d, default the retention period)
// DELETE /api/admin/conversations
func AdminDeleteConversationsHandler(c *gin.Context) {
	ctx := c.Request.Context()

	maxAge := time.Duration(config.RetentionDays) * 24 * time.Hour
	if maxAge <= 0 {
		maxAge = chatbot.DefaultRetention
	}
	if v := c.Query("older_than"); v != "" {
		d, err := ParseAge(v)
		if err != nil {
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
			return
		}
		maxAge = d
	}

	count, err := chat.DeleteOlderThan(ctx, maxAge)
	if err != nil {
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Failed to delete conversations"})
		return
	}

	log.Info().Ctx(ctx).Int64("deleted_count", count).Dur("older_than", maxAge).Msg("Deleted old conversations")
	c.JSON(http.StatusOK, DeleteConversationsResponse{Deleted: count, OlderThan: maxAge.String()})
}

// ParseAge parses a positive duration, accepting a whole number of days
// with a "d" suffix in addition to time.ParseDuration syntax
func ParseAge(s string) (time.Duration, error) {
	var d time.Duration
	if days, ok := strings.CutSuffix(s, "d"); ok {
		n, err := strconv.Atoi(days)
		if err != nil {
			return 0, fmt.Errorf("invalid age %q", s)
		}
		d = time.Duration(n) * 24 * time.Hour
	} else {
		var err error
		if d, err = time.ParseDuration(s); err != nil {
			return 0, fmt.Errorf("invalid age %q", s)
		}
	}
	if d <= 0 {
		return 0, fmt.Errorf("age must be positive, got %q", s)
	}
	return d, nil
}

// parseRange parses optional RFC3339 bounds; a missing from is the zero time
// and a missing to is now
func parseRange(fromStr, toStr string) (from, to time.Time, err error) {
	to = time.Now()
	if fromStr != "" {
		if from, err = time.Parse(time.RFC3339, fromStr); err != nil {
			return from, to, fmt.Errorf("invalid from time %q", fromStr)
		}
	}
	if toStr != "" {
		if to, err = time.Parse(time.RFC3339, toStr); err != nil {
			return from, to, fmt.Errorf("invalid to time %q", toStr)
		}
	}
	return from, to, nil
}
