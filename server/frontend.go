package server

import (
	"net/http"
	"path"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/masingita/countrybot/api"
	"github.com/masingita/countrybot/metrics"
	"github.com/masingita/countrybot/routes"
)

// frontendHandler serves the browser application for every path no API
// route claims. Page loads the route table resolves to NotFound answer 404
// so crawlers and scripts see the same result as the rendered page.
func frontendHandler(table routes.Table, pages http.Handler) gin.HandlerFunc {
	return func(c *gin.Context) {
		p := c.Request.URL.Path
		if p == "/api" || strings.HasPrefix(p, "/api/") {
			c.JSON(http.StatusNotFound, api.ErrorResponse{Error: "Not found"})
			return
		}

		status := http.StatusOK
		if path.Ext(p) == "" {
			view := table.Match(p)
			if c.Request.Method == http.MethodGet {
				metrics.RecordPageView(string(view))
			}
			if view == routes.NotFound {
				status = http.StatusNotFound
			}
		}
		pages.ServeHTTP(&statusWriter{ResponseWriter: c.Writer, status: status}, c.Request)
	}
}

// statusWriter rewrites successful HTML responses to status. Responses that
// never call WriteHeader get an explicit one, since gin presets 404 on NoRoute.
type statusWriter struct {
	http.ResponseWriter
	status      int
	wroteHeader bool
}

func (w *statusWriter) WriteHeader(code int) {
	if w.wroteHeader {
		return
	}
	w.wroteHeader = true
	if code == http.StatusOK && isHTML(w.Header().Get("Content-Type")) {
		code = w.status
	}
	w.ResponseWriter.WriteHeader(code)
}

func (w *statusWriter) Write(b []byte) (int, error) {
	if !w.wroteHeader {
		if w.Header().Get("Content-Type") == "" {
			w.Header().Set("Content-Type", http.DetectContentType(b))
		}
		w.WriteHeader(http.StatusOK)
	}
	return w.ResponseWriter.Write(b)
}

func (w *statusWriter) Flush() {
	if f, ok := w.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

func isHTML(contentType string) bool {
	return strings.HasPrefix(strings.ToLower(contentType), "text/html")
}
