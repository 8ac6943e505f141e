package osm

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/samirrijal/fifteenmap/internal/core/domain"
)

type nominatimResult struct {
	Lat         string `json:"lat"`
	Lon         string `json:"lon"`
	DisplayName string `json:"display_name"`
}

// Geocode resolves address with Nominatim. No match is a resolution failure;
// transport problems are retrieval failures.
func (c *Client) Geocode(ctx context.Context, address string) (*domain.Place, error) {
	q := url.Values{}
	q.Set("q", address)
	q.Set("format", "jsonv2")
	q.Set("limit", "1")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.cfg.NominatimURL+"/search?"+q.Encode(), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", c.cfg.UserAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, domain.NewRetrievalError("nominatim", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, domain.NewRetrievalError("nominatim", fmt.Errorf("status %d", resp.StatusCode))
	}

	var results []nominatimResult
	if err := json.NewDecoder(resp.Body).Decode(&results); err != nil {
		return nil, domain.NewRetrievalError("nominatim", fmt.Errorf("decode: %w", err))
	}
	if len(results) == 0 {
		return nil, fmt.Errorf("geocode %q: %w", address, domain.ErrAddressNotFound)
	}

	lat, err := strconv.ParseFloat(results[0].Lat, 64)
	if err != nil {
		return nil, domain.NewRetrievalError("nominatim", fmt.Errorf("lat %q: %w", results[0].Lat, err))
	}
	lon, err := strconv.ParseFloat(results[0].Lon, 64)
	if err != nil {
		return nil, domain.NewRetrievalError("nominatim", fmt.Errorf("lon %q: %w", results[0].Lon, err))
	}

	return &domain.Place{
		Query:       address,
		DisplayName: results[0].DisplayName,
		Location:    domain.GeoPoint{Lat: lat, Lon: lon},
	}, nil
}
