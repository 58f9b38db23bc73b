package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/masingita/countrybot/api"
	"github.com/masingita/countrybot/chatbot"
	"github.com/masingita/countrybot/constants"
	"github.com/masingita/countrybot/countries"
	"github.com/masingita/countrybot/frontend"
	"github.com/masingita/countrybot/routes"
)

const pageShell = "<!DOCTYPE html><html><head><title>countrybot</title></head><body></body></html>"

// fakePages stands in for the go-app handler
var fakePages = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
	switch r.URL.Path {
	case "/web/app.wasm":
		w.Header().Set("Content-Type", "application/wasm")
		w.Write([]byte{0x00, 0x61, 0x73, 0x6d})
	case "/manifest.webmanifest":
		w.Header().Set("Content-Type", "application/manifest+json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"name":"countrybot"}`))
	default:
		w.Write([]byte(pageShell))
	}
})

func newTestRouter(t *testing.T, opts Options) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	local, err := countries.LoadLocal()
	if err != nil {
		t.Fatalf("LoadLocal() error = %v", err)
	}
	countryService := countries.NewService(nil, local, time.Hour)
	api.Init(chatbot.NewService(chatbot.NewMemoryStore(), countryService), countryService)

	if opts.Frontend == nil {
		opts.Frontend = fakePages
	}
	return NewRouter(opts)
}

// browser replays cookies and echoes the CSRF token like the frontend does
type browser struct {
	t       *testing.T
	router  http.Handler
	cookies map[string]*http.Cookie
}

func newBrowser(t *testing.T, router http.Handler) *browser {
	return &browser{t: t, router: router, cookies: map[string]*http.Cookie{}}
}

func (b *browser) do(method, path, body string, csrf bool) *httptest.ResponseRecorder {
	b.t.Helper()

	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	for _, cookie := range b.cookies {
		req.AddCookie(cookie)
	}
	if token, ok := b.cookies[constants.CSRFCookie]; ok && csrf {
		req.Header.Set(constants.CSRFHeader, token.Value)
	}

	w := httptest.NewRecorder()
	b.router.ServeHTTP(w, req)
	for _, cookie := range w.Result().Cookies() {
		b.cookies[cookie.Name] = cookie
	}
	return w
}

func TestSecureHeaders(t *testing.T) {
	router := newTestRouter(t, Options{})

	for _, path := range []string{"/", "/api/healthcheck", "/missing"} {
		t.Run(path, func(t *testing.T) {
			w := httptest.NewRecorder()
			router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))

			want := map[string]string{
				"Content-Security-Policy": contentSecurityPolicy,
				"Referrer-Policy":         "strict-origin-when-cross-origin",
				"X-Frame-Options":         "DENY",
				"X-Content-Type-Options":  "nosniff",
			}
			for header, value := range want {
				if got := w.Header().Get(header); got != value {
					t.Errorf("%s = %q, want %q", header, got, value)
				}
			}
		})
	}
}

func TestCORS(t *testing.T) {
	router := newTestRouter(t, Options{AllowedOrigins: []string{"https://app.example/"}})

	t.Run("preflight from allowed origin", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodOptions, "/api/chat", nil)
		req.Header.Set("Origin", "https://APP.example")
		req.Header.Set("Access-Control-Request-Method", http.MethodPost)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		if w.Code != http.StatusNoContent {
			t.Fatalf("status = %d, want %d", w.Code, http.StatusNoContent)
		}
		want := map[string]string{
			"Access-Control-Allow-Origin":      "https://APP.example",
			"Access-Control-Allow-Credentials": "true",
			"Access-Control-Allow-Methods":     "GET, POST, PUT, DELETE, OPTIONS",
			"Access-Control-Allow-Headers":     "Authorization, Content-Type, X-XSRF-TOKEN",
			"Access-Control-Expose-Headers":    "X-XSRF-TOKEN",
			"Access-Control-Max-Age":           "3600",
		}
		for header, value := range want {
			if got := w.Header().Get(header); got != value {
				t.Errorf("%s = %q, want %q", header, got, value)
			}
		}
	})

	t.Run("simple request from allowed origin", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/healthcheck", nil)
		req.Header.Set("Origin", "https://app.example")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		if w.Code != http.StatusOK {
			t.Fatalf("status = %d, want %d", w.Code, http.StatusOK)
		}
		if got := w.Header().Get("Access-Control-Allow-Origin"); got != "https://app.example" {
			t.Errorf("Access-Control-Allow-Origin = %q", got)
		}
	})

	t.Run("other origin", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodOptions, "/api/chat", nil)
		req.Header.Set("Origin", "https://evil.example")
		req.Header.Set("Access-Control-Request-Method", http.MethodPost)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		if got := w.Header().Get("Access-Control-Allow-Origin"); got != "" {
			t.Errorf("Access-Control-Allow-Origin = %q, want none", got)
		}
	})
}

func TestCSRF(t *testing.T) {
	router := newTestRouter(t, Options{})
	b := newBrowser(t, router)

	w := b.do(http.MethodGet, "/", "", false)
	token, ok := b.cookies[constants.CSRFCookie]
	if !ok || token.Value == "" {
		t.Fatal("no CSRF cookie issued")
	}
	if token.HttpOnly {
		t.Error("CSRF cookie must be readable by scripts")
	}
	if w.Code != http.StatusOK {
		t.Fatalf("GET / status = %d", w.Code)
	}

	tests := []struct {
		name   string
		csrf   bool
		header string
		want   int
	}{
		{name: "missing header", want: http.StatusForbidden},
		{name: "wrong header", header: "not-the-token", want: http.StatusForbidden},
		{name: "matching header", csrf: true, want: http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/api/chat", strings.NewReader(`{"message":"hi"}`))
			req.Header.Set("Content-Type", "application/json")
			req.AddCookie(token)
			if tt.csrf {
				req.Header.Set(constants.CSRFHeader, token.Value)
			} else if tt.header != "" {
				req.Header.Set(constants.CSRFHeader, tt.header)
			}
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			if w.Code != tt.want {
				t.Errorf("status = %d, want %d: %s", w.Code, tt.want, w.Body.String())
			}
		})
	}
}

func TestCSRFExemptsAdmin(t *testing.T) {
	router := newTestRouter(t, Options{})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodDelete, "/api/admin/conversations", nil))

	if w.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want %d", w.Code, http.StatusUnauthorized)
	}
}

func TestRequiresCSRF(t *testing.T) {
	tests := []struct {
		method string
		path   string
		want   bool
	}{
		{http.MethodGet, "/api/chat/history", false},
		{http.MethodOptions, "/api/chat", false},
		{http.MethodPost, "/api/chat", true},
		{http.MethodPost, "/api/chat/reset", true},
		{http.MethodDelete, "/api/admin/conversations", false},
		{http.MethodPost, "/api/administrator", true},
		{http.MethodPost, "/chat", false},
	}
	for _, tt := range tests {
		if got := requiresCSRF(httptest.NewRequest(tt.method, tt.path, nil)); got != tt.want {
			t.Errorf("requiresCSRF(%s %s) = %v, want %v", tt.method, tt.path, got, tt.want)
		}
	}
}

func TestLocale(t *testing.T) {
	router := newTestRouter(t, Options{DefaultLanguage: "en"})

	tests := []struct {
		name       string
		path       string
		cookie     string
		want       string
		wantCookie string
	}{
		{name: "default", path: "/api/info", want: "en"},
		{name: "query parameter", path: "/api/info?lang=fr", want: "fr", wantCookie: "fr"},
		{name: "query parameter canonicalized", path: "/api/info?lang=en-us", want: "en-US", wantCookie: "en-US"},
		{name: "cookie", path: "/api/info", cookie: "de", want: "de"},
		{name: "query parameter wins over cookie", path: "/api/info?lang=es", cookie: "de", want: "es", wantCookie: "es"},
		{name: "invalid query parameter", path: "/api/info?lang=!!", want: "en"},
		{name: "invalid cookie", path: "/api/info", cookie: "??", want: "en"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tt.path, nil)
			if tt.cookie != "" {
				req.AddCookie(&http.Cookie{Name: constants.LocaleCookie, Value: tt.cookie})
			}
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			if got := w.Header().Get("Content-Language"); got != tt.want {
				t.Errorf("Content-Language = %q, want %q", got, tt.want)
			}

			var info api.InfoResponse
			if err := json.Unmarshal(w.Body.Bytes(), &info); err != nil {
				t.Fatalf("failed to decode %q: %v", w.Body.String(), err)
			}
			if info.Locale != tt.want {
				t.Errorf("info locale = %q, want %q", info.Locale, tt.want)
			}

			var gotCookie string
			for _, c := range w.Result().Cookies() {
				if c.Name == constants.LocaleCookie {
					gotCookie = c.Value
				}
			}
			if gotCookie != tt.wantCookie {
				t.Errorf("LOCALE cookie = %q, want %q", gotCookie, tt.wantCookie)
			}
		})
	}
}

func TestChatRateLimit(t *testing.T) {
	router := newTestRouter(t, Options{ChatRateLimit: 2})
	b := newBrowser(t, router)
	b.do(http.MethodGet, "/", "", false)

	for i := range 2 {
		if w := b.do(http.MethodPost, "/api/chat", `{"message":"hi"}`, true); w.Code != http.StatusOK {
			t.Fatalf("message %d status = %d: %s", i+1, w.Code, w.Body.String())
		}
	}

	w := b.do(http.MethodPost, "/api/chat", `{"message":"hi"}`, true)
	if w.Code != http.StatusTooManyRequests {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusTooManyRequests)
	}
	if w.Header().Get("Retry-After") == "" {
		t.Error("missing Retry-After header")
	}

	// a new session gets its own bucket
	other := newBrowser(t, router)
	other.do(http.MethodGet, "/", "", false)
	if w := other.do(http.MethodPost, "/api/chat", `{"message":"hi"}`, true); w.Code != http.StatusOK {
		t.Errorf("other session status = %d, want %d", w.Code, http.StatusOK)
	}

	// history is not limited
	if w := b.do(http.MethodGet, "/api/chat/history", "", false); w.Code != http.StatusOK {
		t.Errorf("history status = %d, want %d", w.Code, http.StatusOK)
	}
}

func TestChatWithoutRateLimit(t *testing.T) {
	router := newTestRouter(t, Options{})
	b := newBrowser(t, router)
	b.do(http.MethodGet, "/", "", false)

	for i := range 30 {
		if w := b.do(http.MethodPost, "/api/chat", `{"message":"hi"}`, true); w.Code != http.StatusOK {
			t.Fatalf("message %d status = %d", i+1, w.Code)
		}
	}
}

func TestFrontendRoutes(t *testing.T) {
	router := newTestRouter(t, Options{})

	tests := []struct {
		name        string
		path        string
		wantStatus  int
		wantType    string
		wantContain string
	}{
		{name: "home", path: "/", wantStatus: http.StatusOK, wantType: "text/html", wantContain: "<title>countrybot</title>"},
		{name: "chat", path: "/chat", wantStatus: http.StatusOK, wantType: "text/html"},
		{name: "chat subpath", path: "/chat/history", wantStatus: http.StatusOK, wantType: "text/html"},
		{name: "chat with query", path: "/chat?lang=fr", wantStatus: http.StatusOK, wantType: "text/html"},
		{name: "unknown page", path: "/about", wantStatus: http.StatusNotFound, wantType: "text/html", wantContain: "<title>countrybot</title>"},
		{name: "chat lookalike", path: "/chatroom", wantStatus: http.StatusNotFound, wantType: "text/html"},
		{name: "static resource", path: "/web/app.wasm", wantStatus: http.StatusOK, wantType: "application/wasm"},
		{name: "explicit status resource", path: "/manifest.webmanifest", wantStatus: http.StatusOK, wantType: "application/manifest+json"},
		{name: "unknown api", path: "/api/nope", wantStatus: http.StatusNotFound, wantType: "application/json", wantContain: "Not found"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, tt.path, nil))

			if w.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", w.Code, tt.wantStatus)
			}
			if got := w.Header().Get("Content-Type"); !strings.HasPrefix(got, tt.wantType) {
				t.Errorf("Content-Type = %q, want %q", got, tt.wantType)
			}
			if !strings.Contains(w.Body.String(), tt.wantContain) {
				t.Errorf("body = %q, want it to contain %q", w.Body.String(), tt.wantContain)
			}
		})
	}
}

func TestGoAppPages(t *testing.T) {
	table := routes.Default()
	frontend.Register(table)
	router := newTestRouter(t, Options{Routes: table, Frontend: frontend.Handler(frontend.Options{})})

	tests := []struct {
		path       string
		wantStatus int
		want       string
	}{
		{path: "/", wantStatus: http.StatusOK, want: "Start chatting"},
		{path: "/chat", wantStatus: http.StatusOK, want: "New conversation"},
		{path: "/chat/1", wantStatus: http.StatusOK, want: "New conversation"},
		{path: "/Chat", wantStatus: http.StatusOK, want: "New conversation"},
		{path: "/chatroom", wantStatus: http.StatusNotFound, want: "does not exist"},
		{path: "/foo", wantStatus: http.StatusNotFound, want: "does not exist"},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			w := httptest.NewRecorder()
			router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, tt.path, nil))

			if w.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", w.Code, tt.wantStatus)
			}
			if got := w.Header().Get("Content-Type"); !strings.HasPrefix(got, "text/html") {
				t.Errorf("Content-Type = %q, want text/html", got)
			}
			if !strings.Contains(w.Body.String(), tt.want) {
				t.Errorf("body does not contain %q", tt.want)
			}
		})
	}
}

func TestFrontendRespectsHandlerErrors(t *testing.T) {
	pages := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	})
	router := newTestRouter(t, Options{Frontend: pages})

	for _, path := range []string{"/", "/missing"} {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
		if w.Code != http.StatusInternalServerError {
			t.Errorf("GET %s status = %d, want %d", path, w.Code, http.StatusInternalServerError)
		}
	}
}

func TestMetricsEndpoint(t *testing.T) {
	router := newTestRouter(t, Options{})

	// generate a request so the http metrics exist
	router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/healthcheck", nil))

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusOK)
	}
	if !strings.Contains(w.Body.String(), `countrybot_http_requests_total{method="GET",path="/api/healthcheck",status_code="200"}`) {
		t.Error("request metric missing from /metrics output")
	}
}
