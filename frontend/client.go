package frontend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/masingita/countrybot/constants"
	"github.com/maxence-charriere/go-app/v10/pkg/app"
)

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
	HTML    string `json:"html,omitempty"`
}

type conversation struct {
	SessionID string        `json:"session_id"`
	Messages  []chatMessage `json:"messages"`
}

type chatReply struct {
	Reply     string `json:"reply"`
	ReplyHTML string `json:"reply_html"`
	Step      string `json:"step"`
}

type errorBody struct {
	Error string `json:"error"`
}

// apiClient talks to the chat API of the server that served the page
type apiClient struct {
	baseURL    string
	httpClient *http.Client
	csrfToken  func() string
}

func newBrowserClient() *apiClient {
	return &apiClient{
		baseURL:    "/api",
		httpClient: http.DefaultClient,
		csrfToken:  browserCSRFToken,
	}
}

func (c *apiClient) history(ctx context.Context) (conversation, error) {
	var out conversation
	err := c.do(ctx, http.MethodGet, "/chat/history", nil, &out)
	return out, err
}

func (c *apiClient) send(ctx context.Context, message string) (chatReply, error) {
	var out chatReply
	err := c.do(ctx, http.MethodPost, "/chat", map[string]string{"message": message}, &out)
	return out, err
}

func (c *apiClient) reset(ctx context.Context) error {
	return c.do(ctx, http.MethodPost, "/chat/reset", nil, nil)
}

func (c *apiClient) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		reader = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if method != http.MethodGet {
		if token := c.csrfToken(); token != "" {
			req.Header.Set(constants.CSRFHeader, token)
		}
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		var e errorBody
		if json.NewDecoder(resp.Body).Decode(&e) == nil && e.Error != "" {
			return fmt.Errorf("%s (status %d)", e.Error, resp.StatusCode)
		}
		return fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

func browserCSRFToken() string {
	return cookieValue(app.Window().Get("document").Get("cookie").String(), constants.CSRFCookie)
}

// cookieValue extracts a cookie from a document.cookie style string
func cookieValue(cookies, name string) string {
	for _, part := range strings.Split(cookies, ";") {
		k, v, ok := strings.Cut(strings.TrimSpace(part), "=")
		if ok && k == name {
			return v
		}
	}
	return ""
}
