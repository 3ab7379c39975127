package discovery

import (
	"context"
	"errors"
	"sync"
	"testing"

	"coleta/internal/filter"
	"coleta/internal/location"
	"coleta/internal/model"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeCatalog struct {
	items []model.Item
	err   error
	calls int
}

func (f *fakeCatalog) FetchItems(ctx context.Context) ([]model.Item, error) {
	f.calls++
	return f.items, f.err
}

type pointCall struct {
	region model.RegionQuery
	items  []int64
}

type fakeFetcher struct {
	mu    sync.Mutex
	calls []pointCall
	err   error
}

func (f *fakeFetcher) QueryPoints(ctx context.Context, region model.RegionQuery, itemIDs []int64) ([]model.PointSummary, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, pointCall{region: region, items: append([]int64(nil), itemIDs...)})
	if f.err != nil {
		return nil, f.err
	}
	// One point per requested item so results identify their query.
	points := make([]model.PointSummary, 0, len(itemIDs))
	for _, id := range itemIDs {
		points = append(points, model.PointSummary{ID: id * 100, Name: "point", Latitude: -18.9, Longitude: -48.2})
	}
	return points, nil
}

func (f *fakeFetcher) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

type fakeLocator struct {
	coord model.Coordinate
	err   error
	calls int
}

func (f *fakeLocator) Locate(ctx context.Context) (model.Coordinate, error) {
	f.calls++
	return f.coord, f.err
}

var region = model.RegionQuery{UF: "MG", City: "Uberlandia"}

func runCmd(cmd tea.Cmd) []tea.Msg {
	if cmd == nil {
		return nil
	}
	msg := cmd()
	if batch, ok := msg.(tea.BatchMsg); ok {
		var out []tea.Msg
		for _, c := range batch {
			out = append(out, runCmd(c)...)
		}
		return out
	}
	return []tea.Msg{msg}
}

func apply(t *testing.T, c Controller, msgs []tea.Msg) Controller {
	t.Helper()
	for _, msg := range msgs {
		var cmd tea.Cmd
		c, cmd = c.Update(msg)
		assert.Nil(t, cmd)
	}
	return c
}

func newController(catalog Catalog, fetcher PointFetcher, locator Locator) Controller {
	return New(Config{
		Region:  region,
		Catalog: catalog,
		Queries: NewQueryService(fetcher, nil, nil),
		Locator: locator,
	})
}

func pointIDs(points []model.PointSummary) []int64 {
	ids := make([]int64, 0, len(points))
	for _, p := range points {
		ids = append(ids, p.ID)
	}
	return ids
}

func TestQueryServiceEffectiveItems(t *testing.T) {
	s := NewQueryService(&fakeFetcher{}, nil, nil)
	assert.Equal(t, []int64{1, 2, 3, 4, 5, 6}, s.EffectiveItems(filter.Selection{}))
	assert.Equal(t, []int64{3}, s.EffectiveItems(filter.NewSelection(3)))

	custom := NewQueryService(&fakeFetcher{}, []int64{9, 8}, nil)
	assert.Equal(t, []int64{9, 8}, custom.EffectiveItems(filter.Selection{}))
}

func TestQueryServiceSendsFallbackOrSelection(t *testing.T) {
	fetcher := &fakeFetcher{}
	s := NewQueryService(fetcher, nil, nil)

	_, err := s.Query(context.Background(), region, filter.Selection{})
	require.NoError(t, err)
	_, err = s.Query(context.Background(), region, filter.NewSelection(3))
	require.NoError(t, err)

	require.Len(t, fetcher.calls, 2)
	assert.Equal(t, []int64{1, 2, 3, 4, 5, 6}, fetcher.calls[0].items)
	assert.Equal(t, []int64{3}, fetcher.calls[1].items)
	assert.Equal(t, region, fetcher.calls[1].region)
}

func TestQueryServiceWrapsErrors(t *testing.T) {
	boom := errors.New("boom")
	s := NewQueryService(&fakeFetcher{err: boom}, nil, nil)
	_, err := s.Query(context.Background(), region, filter.Selection{})
	assert.ErrorIs(t, err, boom)
}

func TestStartLoadsItemsAndFallbackPoints(t *testing.T) {
	catalog := &fakeCatalog{items: []model.Item{{ID: 1, Title: "Lâmpadas"}, {ID: 2, Title: "Pilhas"}}}
	fetcher := &fakeFetcher{}
	c := newController(catalog, fetcher, &fakeLocator{})

	c, cmd := c.Start()
	v := c.View()
	assert.True(t, v.Loading)
	assert.Equal(t, location.Requesting, v.Location)
	assert.True(t, v.PermissionPending)
	assert.False(t, v.MapReady())

	c = apply(t, c, runCmd(cmd))
	v = c.View()
	assert.Equal(t, 1, catalog.calls)
	assert.Len(t, v.Items, 2)
	assert.False(t, v.Loading)
	assert.Equal(t, []int64{100, 200, 300, 400, 500, 600}, pointIDs(v.Points))
	require.Len(t, fetcher.calls, 1)
	assert.Equal(t, []int64{1, 2, 3, 4, 5, 6}, fetcher.calls[0].items)
}

func TestToggleIssuesOneQueryPerChange(t *testing.T) {
	fetcher := &fakeFetcher{}
	c := newController(&fakeCatalog{}, fetcher, &fakeLocator{})

	c, cmd := c.Start()
	c = apply(t, c, runCmd(cmd))
	require.Equal(t, 1, fetcher.callCount())

	c, cmd = c.Toggle(4)
	c = apply(t, c, runCmd(cmd))
	assert.Equal(t, []int64{400}, pointIDs(c.View().Points))

	c, cmd = c.Toggle(4)
	c = apply(t, c, runCmd(cmd))
	assert.True(t, c.View().Selected.Empty())

	// Start plus one request per toggle.
	require.Equal(t, 3, fetcher.callCount())
	assert.Equal(t, []int64{4}, fetcher.calls[1].items)
	assert.Equal(t, []int64{1, 2, 3, 4, 5, 6}, fetcher.calls[2].items)
	assert.Equal(t, []int64{100, 200, 300, 400, 500, 600}, pointIDs(c.View().Points))
}

func TestLastRequestWins(t *testing.T) {
	fetcher := &fakeFetcher{}
	c := newController(&fakeCatalog{}, fetcher, &fakeLocator{})
	c, _ = c.Start()

	c, q1 := c.Toggle(3)
	c, q2 := c.Toggle(5)

	// Q2 completes first, then the slower Q1.
	c = apply(t, c, runCmd(q2))
	c = apply(t, c, runCmd(q1))

	v := c.View()
	assert.Equal(t, []int64{3, 5}, v.Selected.IDs())
	assert.Equal(t, []int64{300, 500}, pointIDs(v.Points))
	assert.False(t, v.Loading)
}

func TestStaleResultNeverClearsLoading(t *testing.T) {
	c := newController(&fakeCatalog{}, &fakeFetcher{}, &fakeLocator{})
	c, start := c.Start()
	c, _ = c.Toggle(2)

	c = apply(t, c, runCmd(start))
	assert.True(t, c.View().Loading)
}

type ctxRecorder struct {
	fakeFetcher
	errs []error
}

func (f *ctxRecorder) QueryPoints(ctx context.Context, region model.RegionQuery, itemIDs []int64) ([]model.PointSummary, error) {
	f.errs = append(f.errs, ctx.Err())
	return f.fakeFetcher.QueryPoints(ctx, region, itemIDs)
}

func TestSupersededQueryIsCanceled(t *testing.T) {
	fetcher := &ctxRecorder{}
	c := newController(&fakeCatalog{}, fetcher, &fakeLocator{})
	c, first := c.Start()
	c, second := c.Toggle(1)

	runCmd(first)
	runCmd(second)

	require.Len(t, fetcher.errs, 2)
	assert.ErrorIs(t, fetcher.errs[0], context.Canceled)
	assert.NoError(t, fetcher.errs[1])
}

func TestQueryFailureKeepsLastGoodPoints(t *testing.T) {
	fetcher := &fakeFetcher{}
	c := newController(&fakeCatalog{}, fetcher, &fakeLocator{})
	c, cmd := c.Start()
	c = apply(t, c, runCmd(cmd))
	before := c.View().Points
	require.NotEmpty(t, before)

	fetcher.err = errors.New("connection refused")
	c, cmd = c.Toggle(2)
	c = apply(t, c, runCmd(cmd))

	v := c.View()
	assert.Equal(t, before, v.Points)
	assert.Error(t, v.Err)
	assert.False(t, v.Loading)

	fetcher.err = nil
	c, cmd = c.Toggle(2)
	c = apply(t, c, runCmd(cmd))
	assert.NoError(t, c.View().Err)
}

func TestCatalogFailureLeavesItemsEmpty(t *testing.T) {
	c := newController(&fakeCatalog{err: errors.New("timeout")}, &fakeFetcher{}, &fakeLocator{})
	c, cmd := c.Start()
	c = apply(t, c, runCmd(cmd))

	v := c.View()
	assert.Empty(t, v.Items)
	assert.True(t, v.CatalogLoaded)
	assert.ErrorContains(t, v.ItemsErr, "timeout")
	assert.Equal(t, v.ItemsErr, v.Err)
	assert.NoError(t, v.PointsErr)
	assert.NotEmpty(t, v.Points)
}

func TestPermissionGrantedResolvesPosition(t *testing.T) {
	locator := &fakeLocator{coord: model.Coordinate{Latitude: -18.91, Longitude: -48.27}}
	c := newController(&fakeCatalog{}, &fakeFetcher{}, locator)
	c, _ = c.Start()

	c, cmd := c.AnswerPermission(true)
	assert.False(t, c.View().PermissionPending)
	assert.False(t, c.View().MapReady())

	// A second answer while acquiring is ignored.
	c, again := c.AnswerPermission(true)
	assert.Nil(t, again)

	c = apply(t, c, runCmd(cmd))
	v := c.View()
	assert.Equal(t, location.Granted, v.Location)
	assert.True(t, v.MapReady())
	assert.Equal(t, locator.coord, v.Position)
	assert.Equal(t, 1, locator.calls)
}

func TestPermissionDeniedKeepsSentinel(t *testing.T) {
	locator := &fakeLocator{coord: model.Coordinate{Latitude: 1, Longitude: 1}}
	c := newController(&fakeCatalog{}, &fakeFetcher{}, locator)
	c, _ = c.Start()

	c, cmd := c.AnswerPermission(false)
	assert.Nil(t, cmd)

	v := c.View()
	assert.Equal(t, location.Denied, v.Location)
	assert.Equal(t, location.DeniedAdvisory, v.Advisory)
	assert.False(t, v.Position.Resolved())
	assert.False(t, v.MapReady())
	assert.Equal(t, 0, locator.calls)
}

func TestSentinelCoordinateNeverUnblocksMap(t *testing.T) {
	c := newController(&fakeCatalog{}, &fakeFetcher{}, &fakeLocator{})
	c, _ = c.Start()
	c, cmd := c.AnswerPermission(true)
	c = apply(t, c, runCmd(cmd))

	v := c.View()
	assert.Equal(t, location.Denied, v.Location)
	assert.False(t, v.MapReady())
	assert.NotEmpty(t, v.Advisory)
}

func TestMapDoesNotWaitForPoints(t *testing.T) {
	locator := &fakeLocator{coord: model.Coordinate{Latitude: -18.91, Longitude: -48.27}}
	c := newController(&fakeCatalog{}, &fakeFetcher{}, locator)
	c, _ = c.Start()
	c, cmd := c.AnswerPermission(true)
	c = apply(t, c, runCmd(cmd))

	v := c.View()
	assert.True(t, v.Loading)
	assert.True(t, v.MapReady())
}

func TestMessagesFromOtherSessionsAreIgnored(t *testing.T) {
	old := newController(&fakeCatalog{}, &fakeFetcher{}, &fakeLocator{})
	old, oldCmd := old.Start()

	current := newController(&fakeCatalog{}, &fakeFetcher{}, &fakeLocator{})
	current, _ = current.Start()
	require.NotEqual(t, old.Session(), current.Session())

	current = apply(t, current, runCmd(oldCmd))
	v := current.View()
	assert.Empty(t, v.Points)
	assert.True(t, v.Loading)
}

func TestSelectEmitsNavigation(t *testing.T) {
	c := newController(&fakeCatalog{}, &fakeFetcher{}, &fakeLocator{})
	msg := c.Select(42)()
	assert.Equal(t, model.PointSelectedMsg{ID: 42}, msg)
}

func TestViewIsSnapshot(t *testing.T) {
	c := newController(&fakeCatalog{items: []model.Item{{ID: 1}}}, &fakeFetcher{}, &fakeLocator{})
	c, cmd := c.Start()
	c = apply(t, c, runCmd(cmd))

	v := c.View()
	v.Points[0].Name = "changed"
	v.Items[0].Title = "changed"
	assert.Equal(t, "point", c.View().Points[0].Name)
	assert.Equal(t, "", c.View().Items[0].Title)
}

func TestRegionIsNormalized(t *testing.T) {
	c := New(Config{Region: model.RegionQuery{UF: " mg", City: "Uberlandia "}})
	assert.Equal(t, region, c.Region())
}
