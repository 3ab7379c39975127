package location

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"coleta/internal/model"
)

// DefaultIPLookupURL is the IP geolocation endpoint used by IPLookup.
const DefaultIPLookupURL = "http://ip-api.com/json/?fields=status,message,lat,lon"

// Source produces the current position once.
type Source interface {
	Locate(ctx context.Context) (model.Coordinate, error)
}

// Fixed is a Source that always returns the configured coordinate.
type Fixed model.Coordinate

// Locate returns the fixed coordinate.
func (f Fixed) Locate(ctx context.Context) (model.Coordinate, error) {
	c := model.Coordinate(f)
	if !c.Resolved() {
		return model.Coordinate{}, ErrUnresolved
	}
	return c, nil
}

// Unavailable is a Source for hosts without any location method.
type Unavailable struct{}

// Locate always fails with ErrUnavailable.
func (Unavailable) Locate(ctx context.Context) (model.Coordinate, error) {
	return model.Coordinate{}, ErrUnavailable
}

// IPLookup approximates the position from the host's public IP address.
type IPLookup struct {
	url        string
	httpClient *http.Client
}

// NewIPLookup creates an IPLookup against url, or DefaultIPLookupURL when empty.
func NewIPLookup(url string) *IPLookup {
	if url == "" {
		url = DefaultIPLookupURL
	}
	return &IPLookup{
		url:        url,
		httpClient: &http.Client{Timeout: 5 * time.Second},
	}
}

type ipLookupResponse struct {
	Status  string  `json:"status"`
	Message string  `json:"message"`
	Lat     float64 `json:"lat"`
	Lon     float64 `json:"lon"`
}

// Locate queries the geolocation endpoint.
func (l *IPLookup) Locate(ctx context.Context) (model.Coordinate, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, l.url, nil)
	if err != nil {
		return model.Coordinate{}, fmt.Errorf("request creation failed: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := l.httpClient.Do(req)
	if err != nil {
		return model.Coordinate{}, fmt.Errorf("network error: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return model.Coordinate{}, fmt.Errorf("ip lookup error: status %d", resp.StatusCode)
	}

	var result ipLookupResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return model.Coordinate{}, fmt.Errorf("JSON decode error: %w", err)
	}
	if result.Status != "" && result.Status != "success" {
		return model.Coordinate{}, fmt.Errorf("ip lookup failed: %s", result.Message)
	}

	c := model.Coordinate{Latitude: result.Lat, Longitude: result.Lon}
	if !c.Resolved() {
		return model.Coordinate{}, ErrUnresolved
	}
	return c, nil
}

// Provider performs the single-shot acquisition for a granted session.
type Provider struct {
	source Source
	logger *slog.Logger
}

// NewProvider creates a provider over source. A nil source behaves as Unavailable.
func NewProvider(source Source, logger *slog.Logger) *Provider {
	if source == nil {
		source = Unavailable{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Provider{source: source, logger: logger}
}

// Locate acquires the position once. It does not retry or stream updates.
func (p *Provider) Locate(ctx context.Context) (model.Coordinate, error) {
	c, err := p.source.Locate(ctx)
	if err != nil {
		p.logger.WarnContext(ctx, "location acquisition failed", slog.Any("error", err))
		return model.Coordinate{}, err
	}
	p.logger.DebugContext(ctx, "location acquired",
		slog.Float64("lat", c.Latitude),
		slog.Float64("lon", c.Longitude),
	)
	return c, nil
}
