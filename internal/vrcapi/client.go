package vrcapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const userAgent = "vrcache/0.1.0 (+https://github.com/vrcache/vrcache)"

// ErrWorldNotFound signals the metadata service has no data for an
// identifier. It is the lookup-miss outcome, distinct from transport errors.
var ErrWorldNotFound = errors.New("world not found")

// World is the metadata the service returns for one world entity.
type World struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	AuthorName   string `json:"authorName"`
	Description  string `json:"description"`
	ThumbnailURL string `json:"thumbnailImageUrl"`
}

// Lookup abstracts the metadata source so the pipeline can be tested with a
// fake and wrapped with a cache.
type Lookup interface {
	GetWorld(ctx context.Context, id string) (*World, error)
}

// Client provides access to the world metadata API.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

var _ Lookup = (*Client)(nil)

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// New creates a metadata client. timeout bounds every request.
func New(baseURL string, timeout time.Duration, opts ...Option) (*Client, error) {
	baseURL = strings.TrimSpace(baseURL)
	if baseURL == "" {
		return nil, errors.New("api base url required")
	}
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	client := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
	}
	for _, opt := range opts {
		opt(client)
	}
	return client, nil
}

// GetWorld fetches metadata for one world identifier.
func (c *Client) GetWorld(ctx context.Context, id string) (*World, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, errors.New("world id must not be empty")
	}

	endpoint := c.baseURL + "/worlds/" + url.PathEscape(id)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "application/json")

	requestStart := time.Now()
	resp, err := c.httpClient.Do(req)
	latency := time.Since(requestStart)
	if err != nil {
		return nil, fmt.Errorf("execute request (latency=%v): %w", latency, err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusNotFound:
		return nil, fmt.Errorf("%w: %s", ErrWorldNotFound, id)
	default:
		return nil, fmt.Errorf("world lookup returned %d (latency=%v)", resp.StatusCode, latency)
	}

	var world World
	if err := json.NewDecoder(resp.Body).Decode(&world); err != nil {
		return nil, fmt.Errorf("decode world response: %w", err)
	}
	if strings.TrimSpace(world.ID) == "" {
		return nil, fmt.Errorf("%w: response carried no id for %s", ErrWorldNotFound, id)
	}
	return &world, nil
}
