package source

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"
)

// DefaultBaseURL is the raw-content root of the public catalog repository.
const DefaultBaseURL = "https://raw.githubusercontent.com/valorada/catalog/main/data"

// ErrUnexpectedStatus is returned when the server answers with a non-2xx status.
var ErrUnexpectedStatus = errors.New("unexpected status")

// HTTPFetcher retrieves tables over HTTP(S).
type HTTPFetcher struct {
	httpClient *http.Client
	baseURL    string
	logger     *slog.Logger
}

// NewHTTPFetcher creates a fetcher rooted at baseURL. A zero timeout means
// requests are bounded only by the caller's context.
func NewHTTPFetcher(baseURL string, timeout time.Duration, logger *slog.Logger) *HTTPFetcher {
	return &HTTPFetcher{
		httpClient: &http.Client{
			Timeout: timeout,
		},
		baseURL: baseURL,
		logger:  logger,
	}
}

// Fetch downloads the table and returns its decoded text.
func (f *HTTPFetcher) Fetch(ctx context.Context, t Table) (string, error) {
	u, err := url.JoinPath(f.baseURL, t.Path)
	if err != nil {
		return "", fmt.Errorf("build %s url: %w", t.Name, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("fetch %s: %w", t.Name, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return "", fmt.Errorf("fetch %s: %w: %d: %s", t.Name, ErrUnexpectedStatus, resp.StatusCode, body)
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read %s: %w", t.Name, err)
	}

	contentType := resp.Header.Get("Content-Type")
	f.logger.Debug("table downloaded", "table", t.Name, "url", u, "bytes", len(raw), "content_type", contentType)

	text, err := Decode(raw, contentType)
	if err != nil {
		return "", fmt.Errorf("%s: %w", t.Name, err)
	}
	return text, nil
}
