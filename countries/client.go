package countries

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/masingita/countrybot/metrics"
	"github.com/rs/zerolog/log"
)

var (
	// ErrNotFound is returned when the API does not know the requested country
	ErrNotFound = errors.New("country not found")

	errRetryable = errors.New("retryable API failure")
)

// Maximum size of an API response body to read
const maxResponseSize = 4 << 20

// Client talks to a REST Countries v3.1 compatible API. Failed requests are
// retried with exponential backoff.
type Client struct {
	BaseURL    string
	HTTPClient *http.Client
	// Attempts is the total number of tries per request, at least 1
	Attempts int
	// Backoff is the delay before the first retry; it doubles on every retry
	Backoff time.Duration
}

// NewClient creates a client with the given per request timeout
func NewClient(baseURL string, timeout time.Duration, attempts int) *Client {
	return &Client{
		BaseURL:    strings.TrimRight(baseURL, "/"),
		HTTPClient: &http.Client{Timeout: timeout},
		Attempts:   attempts,
		Backoff:    time.Second,
	}
}

// ByName fetches a country by its full name
func (c *Client) ByName(ctx context.Context, name string) (*APICountry, error) {
	endpoint := c.BaseURL + "/name/" + url.PathEscape(name) + "?fullText=true"

	var result []APICountry
	if err := c.getJSON(ctx, "name", endpoint, &result); err != nil {
		return nil, err
	}
	if len(result) == 0 {
		return nil, ErrNotFound
	}
	return &result[0], nil
}

// AllNames fetches the common names of all countries, lowercased
func (c *Client) AllNames(ctx context.Context) ([]string, error) {
	endpoint := c.BaseURL + "/all?fields=name"

	var result []APICountry
	if err := c.getJSON(ctx, "all", endpoint, &result); err != nil {
		return nil, err
	}

	names := make([]string, 0, len(result))
	for _, country := range result {
		if country.Name.Common != "" {
			names = append(names, strings.ToLower(country.Name.Common))
		}
	}
	return names, nil
}

// getJSON performs a GET with retries and decodes the JSON body into out
func (c *Client) getJSON(ctx context.Context, endpointName, endpoint string, out any) error {
	attempts := max(c.Attempts, 1)
	delay := c.Backoff

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		if attempt > 1 {
			metrics.RecordCountryAPIRetry(endpointName)
			log.Debug().Ctx(ctx).Str("url", endpoint).Int("attempt", attempt).Dur("delay", delay).Msg("Retrying country API request")
			select {
			case <-ctx.Done():
				return fmt.Errorf("country API request canceled: %w", ctx.Err())
			case <-time.After(delay):
			}
			delay *= 2
		}

		start := time.Now()
		err := c.get(ctx, endpoint, out)
		metrics.RecordCountryAPIRequest(endpointName, err == nil || errors.Is(err, ErrNotFound), time.Since(start).Seconds())
		if err == nil {
			return nil
		}
		if !errors.Is(err, errRetryable) {
			return err
		}
		lastErr = err
		log.Warn().Ctx(ctx).Err(err).Str("url", endpoint).Int("attempt", attempt).Msg("Country API request failed")
	}
	return fmt.Errorf("country API request failed after %d attempts: %w", attempts, lastErr)
}

func (c *Client) get(ctx context.Context, endpoint string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	httpClient := c.HTTPClient
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	resp, err := httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return fmt.Errorf("failed to fetch %s: %w", endpoint, err)
		}
		return fmt.Errorf("%w: %v", errRetryable, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return ErrNotFound
	case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500:
		return fmt.Errorf("%w: status code %d", errRetryable, resp.StatusCode)
	case resp.StatusCode != http.StatusOK:
		return fmt.Errorf("country API returned status code %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return fmt.Errorf("%w: failed to read response: %v", errRetryable, err)
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("failed to parse country API response: %w", err)
	}
	return nil
}
