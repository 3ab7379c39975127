package api

import (
	"context"
	"encoding/json"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"coleta/internal/model"
)

// DefaultBaseURL is the backend address used when none is configured.
const DefaultBaseURL = "http://localhost:3333"

// StatusError is returned for non-2xx responses.
type StatusError struct {
	Method     string
	Path       string
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("API error: %s %s: status %d", e.Method, e.Path, e.StatusCode)
}

// Client wraps the collection-point backend.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *slog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithLogger sets the logger used for request tracing.
func WithLogger(l *slog.Logger) Option {
	return func(c *Client) { c.logger = l }
}

// NewClient creates a new backend client rooted at baseURL.
func NewClient(baseURL string, opts ...Option) *Client {
	if strings.TrimSpace(baseURL) == "" {
		baseURL = DefaultBaseURL
	}
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 10 * time.Second},
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseURL returns the backend root.
func (c *Client) BaseURL() string { return c.baseURL }

// FetchItems lists every material category.
func (c *Client) FetchItems(ctx context.Context) ([]model.Item, error) {
	var raw []itemResponse
	if err := c.getJSON(ctx, "/items", nil, &raw); err != nil {
		return nil, err
	}

	items := make([]model.Item, 0, len(raw))
	for _, it := range raw {
		items = append(items, model.Item{
			ID:       it.ID,
			Title:    it.Title,
			ImageURL: it.ImageURL,
		})
	}
	return items, nil
}

// QueryPoints lists points in region that collect any of itemIDs.
// itemIDs is sent verbatim as a comma-separated list.
func (c *Client) QueryPoints(ctx context.Context, region model.RegionQuery, itemIDs []int64) ([]model.PointSummary, error) {
	params := url.Values{}
	params.Set("city", region.City)
	params.Set("uf", region.UF)
	params.Set("items", joinIDs(itemIDs))

	var raw []pointResponse
	if err := c.getJSON(ctx, "/points", params, &raw); err != nil {
		return nil, err
	}

	points := make([]model.PointSummary, 0, len(raw))
	for _, p := range raw {
		points = append(points, model.PointSummary{
			ID:        p.ID,
			Name:      p.Name,
			Image:     p.Image,
			ImageURL:  p.ImageURL,
			Latitude:  float64(p.Latitude),
			Longitude: float64(p.Longitude),
		})
	}
	return points, nil
}

// FetchDetail fetches the full record of one point.
func (c *Client) FetchDetail(ctx context.Context, id int64) (model.PointDetail, error) {
	var raw detailResponse
	if err := c.getJSON(ctx, fmt.Sprintf("/points/%d", id), nil, &raw); err != nil {
		return model.PointDetail{}, err
	}
	if raw.Point == nil {
		return model.PointDetail{}, fmt.Errorf("point %d: response has no point record", id)
	}

	detail := model.PointDetail{
		ID:       id,
		Name:     raw.Point.Name,
		Image:    raw.Point.Image,
		ImageURL: raw.Point.ImageURL,
		Email:    raw.Point.Email,
		WhatsApp: raw.Point.WhatsApp,
		City:     raw.Point.City,
		UF:       raw.Point.UF,
		Items:    make([]model.DetailItem, 0, len(raw.Items)),
	}
	for _, it := range raw.Items {
		detail.Items = append(detail.Items, model.DetailItem{Title: it.Title})
	}
	return detail, nil
}

// FetchImage downloads and decodes a PNG, JPEG or GIF image.
func (c *Client) FetchImage(ctx context.Context, imageURL string) (image.Image, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, imageURL, nil)
	if err != nil {
		return nil, fmt.Errorf("request creation failed: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("network error: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &StatusError{Method: http.MethodGet, Path: req.URL.Path, StatusCode: resp.StatusCode}
	}

	img, _, err := image.Decode(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("image decode error: %w", err)
	}
	return img, nil
}

func (c *Client) getJSON(ctx context.Context, path string, params url.Values, out any) error {
	reqURL := c.baseURL + path
	if len(params) > 0 {
		reqURL += "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return fmt.Errorf("request creation failed: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("network error: %w", err)
	}
	defer resp.Body.Close()

	c.logger.DebugContext(ctx, "api request",
		slog.String("path", path),
		slog.String("query", params.Encode()),
		slog.Int("status", resp.StatusCode),
		slog.Duration("latency", time.Since(start)),
	)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &StatusError{Method: http.MethodGet, Path: path, StatusCode: resp.StatusCode}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("JSON decode error: %w", err)
	}
	return nil
}

func joinIDs(ids []int64) string {
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = strconv.FormatInt(id, 10)
	}
	return strings.Join(parts, ",")
}

// API response types

type itemResponse struct {
	ID       int64  `json:"id"`
	Title    string `json:"title"`
	ImageURL string `json:"image_url"`
}

type pointResponse struct {
	ID        int64       `json:"id"`
	Name      string      `json:"name"`
	Image     string      `json:"image"`
	ImageURL  string      `json:"image_url"`
	Latitude  flexFloat64 `json:"latitude"`
	Longitude flexFloat64 `json:"longitude"`
}

type detailResponse struct {
	Point *struct {
		Image    string `json:"image"`
		Name     string `json:"name"`
		ImageURL string `json:"image_url"`
		Email    string `json:"email"`
		WhatsApp string `json:"whatsapp"`
		City     string `json:"city"`
		UF       string `json:"uf"`
	} `json:"point"`
	Items []struct {
		Title string `json:"title"`
	} `json:"items"`
}

// flexFloat64 accepts both JSON numbers and numeric strings.
type flexFloat64 float64

func (f *flexFloat64) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(data), `"`)
	if s == "" || s == "null" {
		*f = 0
		return nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return fmt.Errorf("invalid coordinate %q: %w", s, err)
	}
	*f = flexFloat64(v)
	return nil
}
