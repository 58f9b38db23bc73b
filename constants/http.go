package constants

import "time"

const (
	SessionCookie = "COUNTRYBOT_SESSION"
	VisitorCookie = "COUNTRYBOT_VISITOR"
	LocaleCookie  = "LOCALE"
	CSRFCookie    = "XSRF-TOKEN"

	CSRFHeader  = "X-XSRF-TOKEN"
	LocaleParam = "lang"

	VisitorCookieMaxAge = 365 * 24 * time.Hour
)
