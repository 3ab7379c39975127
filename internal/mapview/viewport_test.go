package mapview

import (
	"strings"
	"testing"

	"coleta/internal/model"

	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var center = model.Coordinate{Latitude: -18.91, Longitude: -48.27}

func TestNewViewportUsesDefaultDelta(t *testing.T) {
	v := NewViewport(center)
	assert.Equal(t, DefaultDelta, v.Delta)
	assert.Equal(t, center.Point(), v.Center)

	b := v.Bound()
	assert.InDelta(t, -48.277, b.Min.Lon(), 1e-9)
	assert.InDelta(t, -18.903, b.Max.Lat(), 1e-9)
}

func TestProject(t *testing.T) {
	v := NewViewport(center)

	x, y, ok := v.Project(v.Center, 15, 15)
	require.True(t, ok)
	assert.Equal(t, 7, x)
	assert.Equal(t, 7, y)

	x, y, ok = v.Project(orb.Point{center.Longitude + 0.006, center.Latitude}, 15, 15)
	require.True(t, ok)
	assert.Equal(t, 13, x)
	assert.Equal(t, 7, y)

	// North is up.
	_, y, ok = v.Project(orb.Point{center.Longitude, center.Latitude + 0.006}, 15, 15)
	require.True(t, ok)
	assert.Equal(t, 1, y)

	_, _, ok = v.Project(orb.Point{center.Longitude + 0.01, center.Latitude}, 15, 15)
	assert.False(t, ok)

	_, _, ok = v.Project(v.Center, 0, 10)
	assert.False(t, ok)
}

func TestRenderMarkers(t *testing.T) {
	v := NewViewport(center)
	points := []model.PointSummary{
		{ID: 1, Latitude: center.Latitude, Longitude: center.Longitude + 0.006},
		{ID: 2, Latitude: center.Latitude + 0.006, Longitude: center.Longitude},
		{ID: 3, Latitude: 10, Longitude: 10},
	}

	out := v.Render(points, 2, 15, 15)
	lines := strings.Split(out, "\n")
	require.Len(t, lines, 15)

	assert.Equal(t, MarkerUser, []rune(lines[7])[7])
	assert.Equal(t, MarkerPoint, []rune(lines[7])[13])
	assert.Equal(t, MarkerSelected, []rune(lines[1])[7])
	assert.Equal(t, 2, v.Visible(points))
}

func TestRenderEmptyGrid(t *testing.T) {
	assert.Empty(t, NewViewport(center).Render(nil, 0, 0, 0))
}

func TestZoomClamps(t *testing.T) {
	v := NewViewport(center)
	assert.InDelta(t, DefaultDelta/2, v.Zoom(0.5).Delta, 1e-12)
	assert.Equal(t, MinDelta, v.Zoom(0.0001).Delta)
	assert.Equal(t, MaxDelta, v.Zoom(1000).Delta)
	assert.Equal(t, v, v.Zoom(-1))
}

func TestDistance(t *testing.T) {
	d := Distance(orb.Point{0, 0}, orb.Point{0, 1})
	assert.InDelta(t, 111250, d, 200)
}

func TestSortByDistance(t *testing.T) {
	points := []model.PointSummary{
		{ID: 1, Latitude: center.Latitude + 0.05, Longitude: center.Longitude},
		{ID: 2, Latitude: center.Latitude + 0.001, Longitude: center.Longitude},
		{ID: 3, Latitude: center.Latitude + 0.01, Longitude: center.Longitude},
	}
	sorted := SortByDistance(points, center.Point())

	ids := []int64{sorted[0].ID, sorted[1].ID, sorted[2].ID}
	assert.Equal(t, []int64{2, 3, 1}, ids)
	assert.Equal(t, int64(1), points[0].ID)
}
