// Package discovery composes the item catalog, location, filter selection and
// point queries of one discovery session into a single view snapshot.
package discovery

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"

	"coleta/internal/filter"
	"coleta/internal/location"
	"coleta/internal/model"

	tea "github.com/charmbracelet/bubbletea"
)

var sessionCounter atomic.Uint64

// Locator acquires the position once.
type Locator interface {
	Locate(ctx context.Context) (model.Coordinate, error)
}

// Config holds the collaborators of a discovery session.
type Config struct {
	Region  model.RegionQuery
	Catalog Catalog
	Queries *QueryService
	Locator Locator
	Logger  *slog.Logger
}

// View is an immutable snapshot of a discovery session for rendering.
type View struct {
	Region            model.RegionQuery
	Items             []model.Item
	Selected          filter.Selection
	EffectiveItems    []int64
	Location          location.State
	PermissionPending bool
	Position          model.Coordinate
	Advisory          string
	Points            []model.PointSummary
	Loading           bool
	CatalogLoaded     bool
	ItemsErr          error
	PointsErr         error
	// Err is the point query failure, or else the catalog failure.
	Err               error
}

// MapReady reports whether the map surface may render. Only a granted,
// resolved position unblocks it; point freshness does not matter.
func (v View) MapReady() bool {
	return v.Location == location.Granted && v.Position.Resolved()
}

// Controller is the state container of one discovery session. Like a Bubble Tea
// model it is a value: every transition returns the next controller and an
// optional command whose result re-enters through Update.
type Controller struct {
	session uint64
	region  model.RegionQuery
	catalog Catalog
	queries *QueryService
	locator Locator
	logger  *slog.Logger

	items    []model.Item
	selected filter.Selection
	location location.Session
	answered bool
	points   []model.PointSummary
	loading  bool

	catalogDone bool
	itemsErr    error
	pointsErr   error

	querySeq    int
	cancelQuery context.CancelFunc
}

// New creates a controller for cfg.Region. Call Start to begin loading.
func New(cfg Config) Controller {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	session := sessionCounter.Add(1)
	return Controller{
		session: session,
		region:  cfg.Region.Normalize(),
		catalog: cfg.Catalog,
		queries: cfg.Queries,
		locator: cfg.Locator,
		logger:  logger.With(slog.Uint64("session", session)),
	}
}

// Session returns the number tagging this controller's messages.
func (c Controller) Session() uint64 { return c.session }

// Region returns the region being searched.
func (c Controller) Region() model.RegionQuery { return c.region }

// Start fetches the catalog, opens the location permission request and issues
// the initial point query.
func (c Controller) Start() (Controller, tea.Cmd) {
	var cmds []tea.Cmd

	if c.catalog != nil {
		cmds = append(cmds, c.fetchItemsCmd())
	}

	if next, err := c.location.Request(); err == nil {
		c.location = next
	}

	c, queryCmd := c.issueQuery()
	cmds = append(cmds, queryCmd)

	c.logger.Info("discovery session started", slog.String("region", c.region.String()))
	return c, tea.Batch(cmds...)
}

// Toggle flips itemID in the selection and issues exactly one new query.
func (c Controller) Toggle(itemID int64) (Controller, tea.Cmd) {
	c.selected = c.selected.Toggle(itemID)
	return c.issueQuery()
}

// AnswerPermission resolves the pending permission prompt. Granting starts a
// single-shot acquisition; refusing ends the session's location in Denied.
func (c Controller) AnswerPermission(granted bool) (Controller, tea.Cmd) {
	if c.location.State() != location.Requesting || c.answered {
		return c, nil
	}
	c.answered = true

	if !granted {
		c.location, _ = c.location.Deny(location.DeniedAdvisory)
		c.logger.Info("location permission denied")
		return c, nil
	}
	if c.locator == nil {
		c.location, _ = c.location.Deny(locationFailureAdvisory(location.ErrUnavailable))
		return c, nil
	}
	return c, c.locateCmd()
}

// Select hands the point id to the detail screen.
func (c Controller) Select(pointID int64) tea.Cmd {
	return func() tea.Msg {
		return model.PointSelectedMsg{ID: pointID}
	}
}

// Close cancels the in-flight query. Late completions are ignored by session.
func (c Controller) Close() {
	if c.cancelQuery != nil {
		c.cancelQuery()
	}
	c.logger.Debug("discovery session closed")
}

// Update applies the completion messages of this session.
func (c Controller) Update(msg tea.Msg) (Controller, tea.Cmd) {
	switch msg := msg.(type) {
	case model.ItemsLoadedMsg:
		if msg.Session != c.session {
			return c, nil
		}
		c.catalogDone = true
		if msg.Err != nil {
			c.logger.Warn("item catalog fetch failed", slog.Any("error", msg.Err))
			c.itemsErr = msg.Err
			return c, nil
		}
		c.itemsErr = nil
		c.items = append([]model.Item(nil), msg.Items...)
		return c, nil

	case model.PointsLoadedMsg:
		if msg.Session != c.session {
			return c, nil
		}
		if msg.Seq != c.querySeq {
			c.logger.Debug("discarding superseded point query",
				slog.Int("seq", msg.Seq),
				slog.Int("current", c.querySeq),
			)
			return c, nil
		}
		c.loading = false
		if msg.Err != nil {
			c.logger.Warn("point query failed", slog.Int("seq", msg.Seq), slog.Any("error", msg.Err))
			c.pointsErr = msg.Err
			return c, nil
		}
		c.points = append([]model.PointSummary(nil), msg.Points...)
		c.pointsErr = nil
		return c, nil

	case model.LocationResolvedMsg:
		if msg.Session != c.session || c.location.State() != location.Requesting {
			return c, nil
		}
		if msg.Err != nil {
			c.location, _ = c.location.Deny(locationFailureAdvisory(msg.Err))
			return c, nil
		}
		next, err := c.location.Grant(msg.Coordinate)
		if err != nil {
			c.location, _ = c.location.Deny(locationFailureAdvisory(err))
			return c, nil
		}
		c.location = next
		return c, nil
	}
	return c, nil
}

// View returns a snapshot of the session.
func (c Controller) View() View {
	v := View{
		Region:            c.region,
		Items:             append([]model.Item(nil), c.items...),
		Selected:          c.selected,
		Location:          c.location.State(),
		PermissionPending: c.location.State() == location.Requesting && !c.answered,
		Position:          c.location.Coordinate(),
		Advisory:          c.location.Advisory(),
		Points:            append([]model.PointSummary(nil), c.points...),
		Loading:           c.loading,
		CatalogLoaded:     c.catalogDone,
		ItemsErr:          c.itemsErr,
		PointsErr:         c.pointsErr,
		Err:               c.pointsErr,
	}
	if v.Err == nil {
		v.Err = c.itemsErr
	}
	if c.queries != nil {
		v.EffectiveItems = c.queries.EffectiveItems(c.selected)
	}
	return v
}

func (c Controller) issueQuery() (Controller, tea.Cmd) {
	if c.cancelQuery != nil {
		c.cancelQuery()
	}
	c.querySeq++
	c.loading = true

	ctx, cancel := context.WithCancel(context.Background())
	c.cancelQuery = cancel

	session, seq := c.session, c.querySeq
	queries, region, selected := c.queries, c.region, c.selected
	return c, func() tea.Msg {
		defer cancel()
		if queries == nil {
			return model.PointsLoadedMsg{Session: session, Seq: seq, Err: errors.New("no point query service configured")}
		}
		points, err := queries.Query(ctx, region, selected)
		return model.PointsLoadedMsg{Session: session, Seq: seq, Points: points, Err: err}
	}
}

func (c Controller) fetchItemsCmd() tea.Cmd {
	session, catalog := c.session, c.catalog
	return func() tea.Msg {
		items, err := catalog.FetchItems(context.Background())
		if err != nil {
			err = fmt.Errorf("failed to load items: %w", err)
		}
		return model.ItemsLoadedMsg{Session: session, Items: items, Err: err}
	}
}

func (c Controller) locateCmd() tea.Cmd {
	session, locator := c.session, c.locator
	return func() tea.Msg {
		coord, err := locator.Locate(context.Background())
		return model.LocationResolvedMsg{Session: session, Coordinate: coord, Err: err}
	}
}

func locationFailureAdvisory(err error) string {
	return fmt.Sprintf("Could not determine your location: %v", err)
}
