package places

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/example/venue-discovery/internal/models"
)

// Provider is the external places API consumed by the discovery
// handlers. A provider failure is absorbed by the caller as an empty
// result list, never surfaced as an exception to the client.
type Provider interface {
	Search(ctx context.Context, origin models.Coordinate, radiusMeters float64, category string) ([]models.Venue, error)
}

// HTTPProvider queries an HTTP places endpoint that accepts
// lat/lon/radius/category query parameters and returns a JSON element
// list.
type HTTPProvider struct {
	Endpoint string
	Client   *http.Client
}

func NewHTTPProvider(endpoint string) *HTTPProvider {
	return &HTTPProvider{Endpoint: endpoint, Client: &http.Client{Timeout: 3 * time.Second}}
}

func (p *HTTPProvider) Search(ctx context.Context, origin models.Coordinate, radiusMeters float64, category string) ([]models.Venue, error) {
	q := url.Values{}
	q.Set("lat", fmt.Sprintf("%.6f", origin.Lat))
	q.Set("lon", fmt.Sprintf("%.6f", origin.Lon))
	q.Set("radius", fmt.Sprintf("%.0f", radiusMeters))
	if category != "" {
		q.Set("category", category)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.Endpoint+"?"+q.Encode(), nil)
	if err != nil {
		return nil, err
	}
	resp, err := p.Client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("places provider status %d", resp.StatusCode)
	}
	var out struct {
		Elements []struct {
			ID       string   `json:"id"`
			Name     string   `json:"name"`
			Category string   `json:"category"`
			Lat      *float64 `json:"lat"`
			Lon      *float64 `json:"lon"`
			Address  string   `json:"address"`
			Rating   float64  `json:"rating"`
		} `json:"elements"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, err
	}
	venues := make([]models.Venue, 0, len(out.Elements))
	for _, e := range out.Elements {
		v := models.Venue{ID: e.ID, Name: e.Name, Category: e.Category, Address: e.Address, Rating: e.Rating}
		if e.Lat != nil && e.Lon != nil {
			v.Loc = &models.Coordinate{Lat: *e.Lat, Lon: *e.Lon}
		}
		venues = append(venues, v)
	}
	return venues, nil
}

// GeoProvider serves searches from a self-hosted venue index instead of
// a third-party API.
type GeoProvider struct {
	Geo   geoIndex
	Limit int
}

type geoIndex interface {
	Nearby(lat, lon, radiusMeters float64, limit int) []models.Venue
}

func (p *GeoProvider) Search(ctx context.Context, origin models.Coordinate, radiusMeters float64, category string) ([]models.Venue, error) {
	limit := p.Limit
	if limit <= 0 {
		limit = 50
	}
	venues := p.Geo.Nearby(origin.Lat, origin.Lon, radiusMeters, limit)
	if category == "" {
		return venues, nil
	}
	filtered := venues[:0]
	for _, v := range venues {
		if v.Category == category {
			filtered = append(filtered, v)
		}
	}
	return filtered, nil
}
