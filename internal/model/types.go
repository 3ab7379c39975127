package model

import (
	"strings"
	"time"

	"github.com/paulmach/orb"
)

// Item represents a material category usable as a discovery filter.
type Item struct {
	ID       int64
	Title    string
	ImageURL string
}

// PointSummary represents a collection point as returned by a region query.
type PointSummary struct {
	ID        int64
	Name      string
	Image     string
	ImageURL  string
	Latitude  float64
	Longitude float64
}

// Coordinate returns the point's position.
func (p PointSummary) Coordinate() Coordinate {
	return Coordinate{Latitude: p.Latitude, Longitude: p.Longitude}
}

// DetailItem is an item title attached to a point detail.
type DetailItem struct {
	Title string
}

// PointDetail represents the full record of a single collection point.
type PointDetail struct {
	ID       int64
	Name     string
	Image    string
	ImageURL string
	Email    string
	WhatsApp string
	City     string
	UF       string
	Items    []DetailItem
}

// ItemTitles returns the titles of the point's items in order.
func (d PointDetail) ItemTitles() []string {
	titles := make([]string, 0, len(d.Items))
	for _, it := range d.Items {
		titles = append(titles, it.Title)
	}
	return titles
}

// RegionQuery identifies the administrative region a discovery session searches.
type RegionQuery struct {
	UF   string
	City string
}

// Normalize trims both fields and upper-cases the state code.
func (r RegionQuery) Normalize() RegionQuery {
	return RegionQuery{
		UF:   strings.ToUpper(strings.TrimSpace(r.UF)),
		City: strings.TrimSpace(r.City),
	}
}

// String renders the region as "City/UF".
func (r RegionQuery) String() string {
	if r.UF == "" {
		return r.City
	}
	return r.City + "/" + r.UF
}

// RecentRegion is a previously searched region stored locally.
type RecentRegion struct {
	Region RegionQuery
	Uses   int
	UsedAt time.Time
}

// Coordinate is a WGS84 position. The zero value (0,0) means "not yet resolved".
type Coordinate struct {
	Latitude  float64
	Longitude float64
}

// Resolved reports whether c is a real position rather than the (0,0) sentinel.
func (c Coordinate) Resolved() bool {
	return c.Latitude != 0 || c.Longitude != 0
}

// Point converts c to an orb point (lon, lat order).
func (c Coordinate) Point() orb.Point {
	return orb.Point{c.Longitude, c.Latitude}
}
