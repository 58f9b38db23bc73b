package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/masingita/countrybot/constants"
	"github.com/masingita/countrybot/logging"
	"github.com/rs/zerolog/log"
)

const (
	sessionIDKey = "session_id"
	visitorIDKey = "visitor_id"
)

// SessionMiddleware makes sure every API request carries a session cookie
// and a visitor cookie, issuing new ones when they are missing or malformed
func SessionMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		sessionID, ok := validCookie(c, constants.SessionCookie)
		if !ok {
			sessionID = startSession(c)
		}
		visitorID, ok := validCookie(c, constants.VisitorCookie)
		if !ok {
			visitorID = newID()
			setCookie(c, constants.VisitorCookie, visitorID, int(constants.VisitorCookieMaxAge.Seconds()))
		}

		c.Set(sessionIDKey, sessionID)
		c.Set(visitorIDKey, visitorID)

		ctx := logging.ContextWithStr(c.Request.Context(), sessionIDKey, sessionID)
		ctx = logging.ContextWithStr(ctx, visitorIDKey, visitorID)
		c.Request = c.Request.WithContext(ctx)

		c.Next()
	}
}

// SessionID returns the conversation session of the request
func SessionID(c *gin.Context) string {
	return c.GetString(sessionIDKey)
}

// VisitorID returns the long lived visitor id of the request
func VisitorID(c *gin.Context) string {
	return c.GetString(visitorIDKey)
}

// startSession issues a fresh session cookie and returns its id
func startSession(c *gin.Context) string {
	sessionID := newID()
	setCookie(c, constants.SessionCookie, sessionID, 0)
	c.Set(sessionIDKey, sessionID)
	return sessionID
}

func validCookie(c *gin.Context, name string) (string, bool) {
	value, err := c.Cookie(name)
	if err != nil {
		return "", false
	}
	if _, err := uuid.Parse(value); err != nil {
		log.Debug().Ctx(c.Request.Context()).Str("cookie", name).Msg("Ignoring malformed cookie")
		return "", false
	}
	return value, true
}

func newID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}

// setCookie sets a root path HttpOnly SameSite=Lax cookie, Secure when the request
// arrived over TLS
func setCookie(c *gin.Context, name, value string, maxAge int) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(name, value, maxAge, "/", "", IsSecure(c.Request), true)
}

// IsSecure reports whether the client connection is HTTPS, directly or
// behind a proxy
func IsSecure(r *http.Request) bool {
	return r.TLS != nil || r.Header.Get("X-Forwarded-Proto") == "https"
}
