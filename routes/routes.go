// Package routes holds the page route table shared by the browser application
// and the HTTP server.
//
// A table is an ordered list of routes. Matching walks the list and selects
// the first route that accepts the path: exact routes accept only their own
// path, prefix routes accept their path and anything below it at a segment
// boundary, and a route with an empty path accepts everything.
package routes

import (
	"regexp"
	"strings"
)

// View identifies a page level view
type View string

const (
	Home     View = "home"
	Chat     View = "chat"
	NotFound View = "not_found"
)

// Route maps a path pattern to a view. An empty Path is a catch-all.
type Route struct {
	Path  string
	Exact bool
	View  View
}

// Table is an ordered route list; the first match wins.
type Table []Route

// Default returns the application's route table.
func Default() Table {
	return Table{
		{Path: "/", Exact: true, View: Home},
		{Path: "/chat", View: Chat},
		{View: NotFound},
	}
}

// Match returns the view of the first route accepting path, or NotFound when
// no route does.
func (t Table) Match(path string) View {
	p := normalize(path)
	for _, r := range t {
		if r.matches(p) {
			return r.View
		}
	}
	return NotFound
}

// Matches reports whether the route accepts path.
func (r Route) Matches(path string) bool {
	return r.matches(normalize(path))
}

func (r Route) matches(p string) bool {
	if r.IsCatchAll() {
		return true
	}
	base := r.base()
	if r.Exact {
		return strings.TrimSuffix(p, "/") == base
	}
	if base == "" {
		return true
	}
	return p == base || strings.HasPrefix(p, base+"/")
}

// IsCatchAll reports whether the route accepts every path.
func (r Route) IsCatchAll() bool {
	return r.Path == ""
}

// Pattern returns an anchored, case-insensitive regular expression accepting
// the same paths as Matches does after query and fragment are removed.
func (r Route) Pattern() string {
	base := r.base()
	switch {
	case r.IsCatchAll(), !r.Exact && base == "":
		return `^.*$`
	case r.Exact:
		return `(?i)^` + regexp.QuoteMeta(base) + `/?$`
	default:
		return `(?i)^` + regexp.QuoteMeta(base) + `(/.*)?$`
	}
}

// base is the lowercased route path without its trailing slash, so "/" is "".
func (r Route) base() string {
	return strings.TrimSuffix(strings.ToLower(r.Path), "/")
}

// normalize strips query and fragment, forces a leading slash and lowercases.
func normalize(path string) string {
	if i := strings.IndexAny(path, "?#"); i >= 0 {
		path = path[:i]
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return strings.ToLower(path)
}
