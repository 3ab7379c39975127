// Package mapview projects collection points onto a character grid around the
// user's position.
package mapview

import (
	"math"
	"sort"
	"strings"

	"coleta/internal/model"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geo"
)

const (
	// DefaultDelta is the span in degrees shown on both axes.
	DefaultDelta = 0.014
	MinDelta     = 0.002
	MaxDelta     = 1.0
)

const (
	MarkerPoint    = '●'
	MarkerSelected = '◉'
	MarkerUser     = '+'
	emptyCell      = '·'
)

// Viewport is the visible square of the map.
type Viewport struct {
	Center orb.Point
	Delta  float64
}

// NewViewport centers a viewport on c with the default span.
func NewViewport(c model.Coordinate) Viewport {
	return Viewport{Center: c.Point(), Delta: DefaultDelta}
}

// Bound returns the geographic rectangle covered by the viewport.
func (v Viewport) Bound() orb.Bound {
	half := v.delta() / 2
	return orb.Bound{
		Min: orb.Point{v.Center.Lon() - half, v.Center.Lat() - half},
		Max: orb.Point{v.Center.Lon() + half, v.Center.Lat() + half},
	}
}

// Zoom scales the span by factor. Values below 1 zoom in.
func (v Viewport) Zoom(factor float64) Viewport {
	if factor <= 0 {
		return v
	}
	v.Delta = math.Min(MaxDelta, math.Max(MinDelta, v.delta()*factor))
	return v
}

// Project maps p onto a width x height grid. ok is false when p is outside the viewport.
func (v Viewport) Project(p orb.Point, width, height int) (x, y int, ok bool) {
	if width <= 0 || height <= 0 {
		return 0, 0, false
	}
	b := v.Bound()
	if !b.Contains(p) {
		return 0, 0, false
	}
	d := v.delta()
	x = int(math.Round((p.Lon() - b.Min.Lon()) / d * float64(width-1)))
	y = int(math.Round((b.Max.Lat() - p.Lat()) / d * float64(height-1)))
	return x, y, true
}

// Render draws points and the user position. The point with selectedID gets
// the selected marker.
func (v Viewport) Render(points []model.PointSummary, selectedID int64, width, height int) string {
	if width <= 0 || height <= 0 {
		return ""
	}
	grid := make([][]rune, height)
	for i := range grid {
		grid[i] = []rune(strings.Repeat(string(emptyCell), width))
	}

	if x, y, ok := v.Project(v.Center, width, height); ok {
		grid[y][x] = MarkerUser
	}
	for _, p := range points {
		x, y, ok := v.Project(p.Coordinate().Point(), width, height)
		if !ok {
			continue
		}
		if grid[y][x] == MarkerSelected {
			continue
		}
		if p.ID == selectedID {
			grid[y][x] = MarkerSelected
		} else {
			grid[y][x] = MarkerPoint
		}
	}

	lines := make([]string, height)
	for i, row := range grid {
		lines[i] = string(row)
	}
	return strings.Join(lines, "\n")
}

// Visible counts the points inside the viewport.
func (v Viewport) Visible(points []model.PointSummary) int {
	b := v.Bound()
	n := 0
	for _, p := range points {
		if b.Contains(p.Coordinate().Point()) {
			n++
		}
	}
	return n
}

func (v Viewport) delta() float64 {
	if v.Delta <= 0 {
		return DefaultDelta
	}
	return v.Delta
}

// Distance returns the great-circle distance between a and b in meters.
func Distance(a, b orb.Point) float64 {
	return geo.DistanceHaversine(a, b)
}

// SortByDistance orders points nearest first from origin. The input is not modified.
func SortByDistance(points []model.PointSummary, origin orb.Point) []model.PointSummary {
	out := append([]model.PointSummary(nil), points...)
	sort.SliceStable(out, func(i, j int) bool {
		return Distance(origin, out[i].Coordinate().Point()) < Distance(origin, out[j].Coordinate().Point())
	})
	return out
}
