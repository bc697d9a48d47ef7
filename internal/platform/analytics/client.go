package analytics

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/yungbote/collabmarket-backend/internal/pkg/fees"
	"github.com/yungbote/collabmarket-backend/internal/pkg/httpx"
	"github.com/yungbote/collabmarket-backend/internal/pkg/logger"
)

// Client is the content/analytics collaborator consumed by the
// performance-based earning path.
type Client interface {
	PerformanceMetrics(ctx context.Context, contentID uuid.UUID, from, to time.Time) (fees.Metrics, error)
}

type client struct {
	log     *logger.Logger
	http    *http.Client
	baseURL string
	apiKey  string
}

const maxAttempts = 3

// NewClient builds the HTTP analytics client from ANALYTICS_BASE_URL and
// ANALYTICS_API_KEY.
func NewClient(log *logger.Logger) (Client, error) {
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}
	baseURL := strings.TrimRight(strings.TrimSpace(os.Getenv("ANALYTICS_BASE_URL")), "/")
	if baseURL == "" {
		return nil, fmt.Errorf("missing ANALYTICS_BASE_URL")
	}
	return &client{
		log:     log.With("client", "AnalyticsClient"),
		http:    &http.Client{Timeout: 20 * time.Second},
		baseURL: baseURL,
		apiKey:  strings.TrimSpace(os.Getenv("ANALYTICS_API_KEY")),
	}, nil
}

func (c *client) PerformanceMetrics(ctx context.Context, contentID uuid.UUID, from, to time.Time) (fees.Metrics, error) {
	endpoint := fmt.Sprintf("%s/v1/contents/%s/metrics", c.baseURL, contentID)
	q := url.Values{}
	q.Set("from", from.UTC().Format(time.RFC3339))
	q.Set("to", to.UTC().Format(time.RFC3339))

	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint+"?"+q.Encode(), nil)
		if err != nil {
			return fees.Metrics{}, err
		}
		if c.apiKey != "" {
			req.Header.Set("Authorization", "Bearer "+c.apiKey)
		}

		resp, err := c.http.Do(req)
		if err != nil {
			lastErr = err
			if !httpx.IsRetryableError(err) || attempt == maxAttempts {
				return fees.Metrics{}, fmt.Errorf("analytics request: %w", err)
			}
			time.Sleep(httpx.JitterSleep(time.Duration(attempt) * 500 * time.Millisecond))
			continue
		}

		body, readErr := io.ReadAll(resp.Body)
		_ = resp.Body.Close()
		if readErr != nil {
			return fees.Metrics{}, fmt.Errorf("analytics response: %w", readErr)
		}

		if resp.StatusCode != http.StatusOK {
			lastErr = fmt.Errorf("analytics status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
			if httpx.IsRetryableHTTPStatus(resp.StatusCode) && attempt < maxAttempts {
				time.Sleep(httpx.JitterSleep(httpx.RetryAfterDuration(resp, time.Duration(attempt)*500*time.Millisecond, 5*time.Second)))
				continue
			}
			return fees.Metrics{}, lastErr
		}

		var m fees.Metrics
		if err := json.Unmarshal(body, &m); err != nil {
			return fees.Metrics{}, fmt.Errorf("decode analytics metrics: %w", err)
		}
		return m, nil
	}
	return fees.Metrics{}, lastErr
}

// Disabled returns a client that fails every call; wired when no analytics
// endpoint is configured so callers surface a clear error instead of nil
// dereferences.
func Disabled() Client { return disabledClient{} }

type disabledClient struct{}

func (disabledClient) PerformanceMetrics(ctx context.Context, contentID uuid.UUID, from, to time.Time) (fees.Metrics, error) {
	return fees.Metrics{}, fmt.Errorf("analytics client not configured")
}
