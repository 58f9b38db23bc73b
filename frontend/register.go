// Package frontend contains the browser application: the page components and
// their registration with go-app from the route table.
package frontend

import (
	"github.com/masingita/countrybot/routes"
	"github.com/maxence-charriere/go-app/v10/pkg/app"
)

type registration struct {
	pattern string
	view    routes.View
}

// registrations lists the go-app routes for table, in table order. Every
// route is registered by its pattern, so exact routes also accept their case
// and trailing slash variants.
func registrations(table routes.Table) []registration {
	out := make([]registration, 0, len(table))
	for _, r := range table {
		out = append(out, registration{pattern: r.Pattern(), view: r.View})
	}
	return out
}

// Register registers every route of table with go-app. It must run in the
// server process as well as in the browser: the server only prerenders
// pages for registered paths.
func Register(table routes.Table) {
	for _, reg := range registrations(table) {
		app.RouteWithRegexp(reg.pattern, componentFactory(reg.view))
	}
}

func componentFactory(view routes.View) func() app.Composer {
	return func() app.Composer {
		return NewComponent(view)
	}
}

// NewComponent returns a fresh component for view. Unknown views get the
// NotFound page.
func NewComponent(view routes.View) app.Composer {
	switch view {
	case routes.Home:
		return &Home{}
	case routes.Chat:
		return &Chat{}
	default:
		return &NotFound{}
	}
}
