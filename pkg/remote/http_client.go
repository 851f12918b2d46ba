package remote

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// ErrNotPublished reports that the remote has no export for a table.
var ErrNotPublished = errors.New("remote: table not published")

// HTTPConfig configures the HTTP CSV client.
type HTTPConfig struct {
	BaseURL    string
	APIKey     string
	HTTPClient *http.Client
}

// HTTPClient downloads table exports from a statistics portal or mirror that
// serves <base>/<table>.csv.
type HTTPClient struct {
	baseURL string
	apiKey  string
	client  *http.Client
}

var _ CSVSource = (*HTTPClient)(nil)

// NewHTTPClient builds a client for the given portal.
func NewHTTPClient(cfg HTTPConfig) (*HTTPClient, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("remote: base url is required")
	}
	if _, err := url.Parse(cfg.BaseURL); err != nil {
		return nil, fmt.Errorf("remote: parse base url: %w", err)
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	return &HTTPClient{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:  cfg.APIKey,
		client:  httpClient,
	}, nil
}

// FetchCSV returns the body of <base>/<table>.csv. The caller closes it.
// A 404 is reported as ErrNotPublished.
func (c *HTTPClient) FetchCSV(ctx context.Context, table string) (io.ReadCloser, error) {
	if strings.TrimSpace(table) == "" {
		return nil, fmt.Errorf("remote: table name is required")
	}
	endpoint := c.baseURL + "/" + url.PathEscape(table) + ".csv"
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("remote: build request: %w", err)
	}
	req.Header.Set("Accept", "text/csv")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("remote: http request: %w", err)
	}
	if resp.StatusCode == http.StatusNotFound {
		resp.Body.Close()
		return nil, fmt.Errorf("%w: %s", ErrNotPublished, table)
	}
	if resp.StatusCode >= 300 {
		defer resp.Body.Close()
		var buf bytes.Buffer
		_, _ = buf.ReadFrom(io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("remote: remote error %d: %s", resp.StatusCode, buf.String())
	}
	return resp.Body, nil
}
