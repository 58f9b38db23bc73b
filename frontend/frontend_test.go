package frontend

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/masingita/countrybot/constants"
	"github.com/masingita/countrybot/routes"
)

func TestRegistrations(t *testing.T) {
	got := registrations(routes.Default())
	want := []registration{
		{pattern: `(?i)^/?$`, view: routes.Home},
		{pattern: `(?i)^/chat(/.*)?$`, view: routes.Chat},
		{pattern: `^.*$`, view: routes.NotFound},
	}
	if len(got) != len(want) {
		t.Fatalf("registrations() = %+v, want %+v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("registration %d = %+v, want %+v", i, got[i], want[i])
		}
	}
}

func TestRegisteredRoutesRender(t *testing.T) {
	Register(routes.Default())
	h := Handler(Options{})

	tests := []struct {
		path string
		want string
	}{
		{path: "/", want: "Start chatting"},
		{path: "/chat", want: "New conversation"},
		{path: "/chat/x", want: "New conversation"},
		{path: "/Chat", want: "New conversation"},
		{path: "/chatroom", want: "does not exist"},
		{path: "/foo", want: "does not exist"},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			w := httptest.NewRecorder()
			h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, tt.path, nil))

			if w.Code != http.StatusOK {
				t.Fatalf("status = %d, want %d: %s", w.Code, http.StatusOK, w.Body.String())
			}
			if !strings.Contains(w.Body.String(), tt.want) {
				t.Errorf("body does not contain %q", tt.want)
			}
		})
	}
}

func TestNewComponent(t *testing.T) {
	tests := []struct {
		view routes.View
		want string
	}{
		{routes.Home, "*frontend.Home"},
		{routes.Chat, "*frontend.Chat"},
		{routes.NotFound, "*frontend.NotFound"},
		{routes.View("unknown"), "*frontend.NotFound"},
	}
	for _, tt := range tests {
		t.Run(string(tt.view), func(t *testing.T) {
			var got string
			switch NewComponent(tt.view).(type) {
			case *Home:
				got = "*frontend.Home"
			case *Chat:
				got = "*frontend.Chat"
			case *NotFound:
				got = "*frontend.NotFound"
			}
			if got != tt.want {
				t.Errorf("NewComponent(%q) = %s, want %s", tt.view, got, tt.want)
			}
		})
	}
}

func TestComponentFactoryReturnsFreshComponents(t *testing.T) {
	factory := componentFactory(routes.Chat)
	a, b := factory(), factory()
	if a == b {
		t.Error("factory returned the same component twice")
	}
}

func TestHandlerDefaults(t *testing.T) {
	h := Handler(Options{})
	if h.Title != "Country Chatbot" || h.Description == "" || h.Name != "countrybot" {
		t.Errorf("Handler() = %+v", h)
	}
	if h := Handler(Options{Title: "Custom"}); h.Title != "Custom" {
		t.Errorf("Title = %q, want Custom", h.Title)
	}
}

func TestCookieValue(t *testing.T) {
	cookies := "LOCALE=en; XSRF-TOKEN=abc123; other=x=y"
	tests := []struct {
		name string
		want string
	}{
		{constants.CSRFCookie, "abc123"},
		{"LOCALE", "en"},
		{"other", "x=y"},
		{"missing", ""},
	}
	for _, tt := range tests {
		if got := cookieValue(cookies, tt.name); got != tt.want {
			t.Errorf("cookieValue(%q) = %q, want %q", tt.name, got, tt.want)
		}
	}
	if got := cookieValue("", constants.CSRFCookie); got != "" {
		t.Errorf("cookieValue on empty string = %q", got)
	}
}

func newTestAPIClient(t *testing.T, handler http.HandlerFunc) *apiClient {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return &apiClient{
		baseURL:    server.URL + "/api",
		httpClient: server.Client(),
		csrfToken:  func() string { return "token-1" },
	}
}

func TestAPIClientSend(t *testing.T) {
	client := newTestAPIClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/api/chat" {
			t.Errorf("request = %s %s", r.Method, r.URL.Path)
		}
		if got := r.Header.Get(constants.CSRFHeader); got != "token-1" {
			t.Errorf("CSRF header = %q, want token-1", got)
		}
		var body map[string]string
		json.NewDecoder(r.Body).Decode(&body)
		if body["message"] != "kenya" {
			t.Errorf("message = %q", body["message"])
		}
		w.Write([]byte(`{"reply":"Selected kenya.","reply_html":"<p>Selected kenya.</p>","step":"CHOOSE_OPTION"}`))
	})

	reply, err := client.send(context.Background(), "kenya")
	if err != nil {
		t.Fatalf("send() error = %v", err)
	}
	if reply.Reply != "Selected kenya." || reply.Step != "CHOOSE_OPTION" {
		t.Errorf("reply = %+v", reply)
	}
}

func TestAPIClientHistoryOmitsCSRFHeader(t *testing.T) {
	client := newTestAPIClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get(constants.CSRFHeader) != "" {
			t.Error("GET request carries a CSRF header")
		}
		w.Write([]byte(`{"session_id":"s1","messages":[{"role":"user","content":"hi"},{"role":"bot","content":"hello","html":"<p>hello</p>"}]}`))
	})

	history, err := client.history(context.Background())
	if err != nil {
		t.Fatalf("history() error = %v", err)
	}
	if len(history.Messages) != 2 || history.Messages[1].HTML != "<p>hello</p>" {
		t.Errorf("history = %+v", history)
	}
}

func TestAPIClientErrors(t *testing.T) {
	client := newTestAPIClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/api/chat" {
			w.WriteHeader(http.StatusTooManyRequests)
			w.Write([]byte(`{"error":"Too many messages"}`))
			return
		}
		w.WriteHeader(http.StatusInternalServerError)
	})

	_, err := client.send(context.Background(), "hi")
	if err == nil || !strings.Contains(err.Error(), "Too many messages") {
		t.Errorf("send() error = %v, want server message", err)
	}
	if err := client.reset(context.Background()); err == nil || !strings.Contains(err.Error(), "500") {
		t.Errorf("reset() error = %v, want status 500", err)
	}
}
