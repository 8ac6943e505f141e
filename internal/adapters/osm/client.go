// Package osm talks to the public OpenStreetMap services: Nominatim for
// geocoding and Overpass for street networks and amenities.
package osm

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	overpass "github.com/MeKo-Christian/go-overpass"

	"github.com/samirrijal/fifteenmap/internal/core/domain"
)

// Config locates the services and identifies this client to them.
type Config struct {
	NominatimURL string
	OverpassURL  string
	UserAgent    string // required by the Nominatim usage policy
	Timeout      time.Duration
}

// Client implements ports.Geocoder, ports.NetworkFetcher and ports.AmenityFetcher.
type Client struct {
	cfg  Config
	http *http.Client
	op   *overpass.Client
}

// NewClient creates a client. A zero Timeout means 60 seconds.
func NewClient(cfg Config) *Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 60 * time.Second
	}
	cfg.NominatimURL = strings.TrimRight(cfg.NominatimURL, "/")
	transport := &http.Transport{
		MaxIdleConns:        10,
		MaxIdleConnsPerHost: 10,
		IdleConnTimeout:     30 * time.Second,
	}

	// failures surface as retrieval errors; retries belong to the caller
	op := overpass.NewWithRetry(cfg.OverpassURL, 1, &http.Client{
		Timeout:   cfg.Timeout,
		Transport: &userAgentTransport{userAgent: cfg.UserAgent, base: transport},
	}, overpass.RetryConfig{})

	return &Client{
		cfg:  cfg,
		http: &http.Client{Timeout: cfg.Timeout, Transport: transport},
		op:   &op,
	}
}

// postOverpass sends an Overpass QL query and returns the raw body.
func (c *Client) postOverpass(ctx context.Context, query string) (io.ReadCloser, error) {
	form := url.Values{"data": []string{query}}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.OverpassURL, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("User-Agent", c.cfg.UserAgent)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, domain.NewRetrievalError("overpass", err)
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, domain.NewRetrievalError("overpass", fmt.Errorf("status %d", resp.StatusCode))
	}
	return resp.Body, nil
}

// CheckUpstreams pings the Nominatim and Overpass status endpoints.
func (c *Client) CheckUpstreams(ctx context.Context) map[string]error {
	return map[string]error{
		"nominatim": c.ping(ctx, c.cfg.NominatimURL+"/status"),
		"overpass":  c.ping(ctx, overpassStatusURL(c.cfg.OverpassURL)),
	}
}

// overpassStatusURL maps .../api/interpreter to .../api/status.
func overpassStatusURL(interpreter string) string {
	if i := strings.LastIndex(interpreter, "/"); i >= 0 {
		return interpreter[:i] + "/status"
	}
	return interpreter
}

func (c *Client) ping(ctx context.Context, target string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return err
	}
	req.Header.Set("User-Agent", c.cfg.UserAgent)

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("status %d", resp.StatusCode)
	}
	return nil
}

// userAgentTransport sets the User-Agent on requests built by go-overpass.
type userAgentTransport struct {
	userAgent string
	base      http.RoundTripper
}

func (t *userAgentTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	req = req.Clone(req.Context())
	req.Header.Set("User-Agent", t.userAgent)
	return t.base.RoundTrip(req)
}
