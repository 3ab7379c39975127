package ui

import (
	"fmt"
	"strings"

	"coleta/internal/discovery"
	"coleta/internal/location"
	"coleta/internal/mapview"
	"coleta/internal/model"
	"coleta/internal/util"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

type discoveryFocus int

const (
	focusPoints discoveryFocus = iota
	focusItems
)

// DiscoveryModel is the discovery screen: item chips, map and point list.
type DiscoveryModel struct {
	ctrl    discovery.Controller
	keys    KeyMap
	spinner spinner.Model

	delta   float64
	hideMap bool

	focus      discoveryFocus
	itemCursor int
	cursor     int
	offset     int

	viewportHeight int
}

// NewDiscoveryModel wraps a discovery controller. delta is the map span.
func NewDiscoveryModel(ctrl discovery.Controller, delta float64, hideMap bool, keys KeyMap) *DiscoveryModel {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	if delta <= 0 {
		delta = mapview.DefaultDelta
	}
	return &DiscoveryModel{
		ctrl:    ctrl,
		keys:    keys,
		spinner: sp,
		delta:   delta,
		hideMap: hideMap,
	}
}

// Start begins the session.
func (m DiscoveryModel) Start() (DiscoveryModel, tea.Cmd) {
	var cmd tea.Cmd
	m.ctrl, cmd = m.ctrl.Start()
	return m, tea.Batch(cmd, m.spinner.Tick)
}

// Close ends the session.
func (m DiscoveryModel) Close() {
	m.ctrl.Close()
}

// Region returns the session's region.
func (m DiscoveryModel) Region() model.RegionQuery { return m.ctrl.Region() }

// Snapshot returns the controller view.
func (m DiscoveryModel) Snapshot() discovery.View { return m.ctrl.View() }

// Delta returns the current map span.
func (m DiscoveryModel) Delta() float64 { return m.delta }

// MapHidden reports whether the map panel is switched off.
func (m DiscoveryModel) MapHidden() bool { return m.hideMap }

// SelectedPoint returns the point under the list cursor.
func (m DiscoveryModel) SelectedPoint() (model.PointSummary, bool) {
	points := listed(m.ctrl.View())
	if m.cursor < 0 || m.cursor >= len(points) {
		return model.PointSummary{}, false
	}
	return points[m.cursor], true
}

// Update handles keys, spinner ticks and session completions.
func (m DiscoveryModel) Update(msg tea.Msg) (DiscoveryModel, tea.Cmd) {
	switch msg := msg.(type) {
	case spinner.TickMsg:
		if !m.ctrl.View().Loading {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	var cmd tea.Cmd
	m.ctrl, cmd = m.ctrl.Update(msg)
	m.clampCursor()
	return m, cmd
}

func (m DiscoveryModel) handleKey(msg tea.KeyMsg) (DiscoveryModel, tea.Cmd) {
	v := m.ctrl.View()

	if v.PermissionPending {
		switch {
		case key.Matches(msg, m.keys.Allow):
			var cmd tea.Cmd
			m.ctrl, cmd = m.ctrl.AnswerPermission(true)
			return m, tea.Batch(cmd, m.spinner.Tick)
		case key.Matches(msg, m.keys.Deny):
			var cmd tea.Cmd
			m.ctrl, cmd = m.ctrl.AnswerPermission(false)
			return m, cmd
		}
	}

	switch {
	case key.Matches(msg, m.keys.Focus):
		if m.focus == focusPoints && len(v.Items) > 0 {
			m.focus = focusItems
		} else {
			m.focus = focusPoints
		}
		return m, nil
	case key.Matches(msg, m.keys.ZoomIn):
		m.delta = mapview.Viewport{Delta: m.delta}.Zoom(0.5).Delta
		return m, nil
	case key.Matches(msg, m.keys.ZoomOut):
		m.delta = mapview.Viewport{Delta: m.delta}.Zoom(2).Delta
		return m, nil
	case key.Matches(msg, m.keys.ShowMap):
		m.hideMap = !m.hideMap
		return m, nil
	}

	if m.focus == focusItems {
		return m.handleItemKey(msg, v)
	}
	return m.handlePointKey(msg, v)
}

func (m DiscoveryModel) handleItemKey(msg tea.KeyMsg, v discovery.View) (DiscoveryModel, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Left), key.Matches(msg, m.keys.Up):
		if m.itemCursor > 0 {
			m.itemCursor--
		}
	case key.Matches(msg, m.keys.Right), key.Matches(msg, m.keys.Down):
		if m.itemCursor < len(v.Items)-1 {
			m.itemCursor++
		}
	case key.Matches(msg, m.keys.Toggle), key.Matches(msg, m.keys.Select):
		if m.itemCursor < len(v.Items) {
			var cmd tea.Cmd
			m.ctrl, cmd = m.ctrl.Toggle(v.Items[m.itemCursor].ID)
			return m, tea.Batch(cmd, m.spinner.Tick)
		}
	}
	return m, nil
}

func (m DiscoveryModel) handlePointKey(msg tea.KeyMsg, v discovery.View) (DiscoveryModel, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Down):
		if m.cursor < len(v.Points)-1 {
			m.cursor++
			if m.cursor >= m.offset+m.pageSize() {
				m.offset++
			}
		}
	case key.Matches(msg, m.keys.Up):
		if m.cursor > 0 {
			m.cursor--
			if m.cursor < m.offset {
				m.offset--
			}
		}
	case key.Matches(msg, m.keys.Top):
		m.cursor = 0
		m.offset = 0
	case key.Matches(msg, m.keys.Bottom):
		if len(v.Points) > 0 {
			m.cursor = len(v.Points) - 1
			if m.cursor >= m.pageSize() {
				m.offset = m.cursor - m.pageSize() + 1
			}
		}
	case key.Matches(msg, m.keys.Select), key.Matches(msg, m.keys.Right):
		if p, ok := m.SelectedPoint(); ok {
			return m, m.ctrl.Select(p.ID)
		}
	}
	return m, nil
}

func (m *DiscoveryModel) pageSize() int {
	if m.viewportHeight <= 0 {
		return 10
	}
	return m.viewportHeight
}

func (m *DiscoveryModel) clampCursor() {
	n := len(m.ctrl.View().Points)
	if n == 0 {
		m.cursor = 0
		m.offset = 0
		return
	}
	if m.cursor >= n {
		m.cursor = n - 1
	}
	if m.offset > m.cursor {
		m.offset = m.cursor
	}
}

// View renders the screen.
func (m *DiscoveryModel) View(width, height int) string {
	v := m.ctrl.View()

	chips := m.renderChips(v, width)
	status := m.renderStatus(v)
	bodyHeight := max(3, height-lipgloss.Height(chips)-lipgloss.Height(status)-1)

	var side string
	switch {
	case v.PermissionPending:
		side = PromptStyle.Render(
			LabelStyle.Render("Location") + "\n\n" +
				"Allow coleta to use your location to center the map?\n\n" +
				helpKey("y", "allow") + "  " + helpKey("n", "deny"),
		)
	case v.MapReady() && !m.hideMap:
		side = m.renderMap(v, width, bodyHeight)
	case v.Location == location.Denied:
		side = ErrorStyle.Render(v.Advisory)
	case v.Location == location.Requesting:
		side = HelpDescStyle.Render(m.spinner.View() + " Locating...")
	}

	var body string
	if side != "" && width >= 100 {
		sideWidth := lipgloss.Width(side)
		list := m.renderList(v, max(30, width-sideWidth-2), bodyHeight)
		body = lipgloss.JoinHorizontal(lipgloss.Top, list, "  ", side)
	} else if side != "" {
		listHeight := max(3, bodyHeight-lipgloss.Height(side))
		body = lipgloss.JoinVertical(lipgloss.Left, side, m.renderList(v, width, listHeight))
	} else {
		body = m.renderList(v, width, bodyHeight)
	}

	spacerHeight := max(0, height-lipgloss.Height(chips)-lipgloss.Height(body)-lipgloss.Height(status))
	spacer := lipgloss.NewStyle().Height(spacerHeight).Render("")
	return lipgloss.JoinVertical(lipgloss.Left, chips, body, spacer, status)
}

func (m *DiscoveryModel) renderChips(v discovery.View, width int) string {
	if len(v.Items) == 0 {
		state := "loading catalog..."
		switch {
		case v.ItemsErr != nil:
			state = "no items available (catalog failed to load)"
		case v.CatalogLoaded:
			state = "no items available"
		}
		return StatusBarStyle.Render("Items: " + HelpDescStyle.Render(state))
	}

	var chips []string
	for i, it := range v.Items {
		style := ChipStyle
		mark := "○"
		if v.Selected.Contains(it.ID) {
			style = ChipSelectedStyle
			mark = "●"
		}
		label := style.Render(mark + " " + it.Title)
		if m.focus == focusItems && i == m.itemCursor {
			label = ChipCursorStyle.Render(label)
		}
		chips = append(chips, label)
	}

	// Wrap chips onto as many lines as the width requires.
	var lines []string
	var line []string
	lineWidth := 0
	for _, c := range chips {
		w := lipgloss.Width(c) + 1
		if lineWidth+w > width-2 && len(line) > 0 {
			lines = append(lines, strings.Join(line, " "))
			line, lineWidth = nil, 0
		}
		line = append(line, c)
		lineWidth += w
	}
	if len(line) > 0 {
		lines = append(lines, strings.Join(line, " "))
	}

	hint := "no items selected: showing the default item set"
	if !v.Selected.Empty() {
		hint = fmt.Sprintf("%d selected", v.Selected.Len())
	}
	lines = append(lines, HelpDescStyle.Render(hint))
	return lipgloss.NewStyle().Padding(0, 1).Render(strings.Join(lines, "\n"))
}

func (m *DiscoveryModel) renderMap(v discovery.View, width, height int) string {
	mapWidth := max(20, min(60, width*45/100))
	mapHeight := max(6, min(height-2, mapWidth/2))

	vp := mapview.NewViewport(v.Position)
	vp.Delta = m.delta

	var selectedID int64
	if p, ok := m.SelectedPoint(); ok {
		selectedID = p.ID
	}

	grid := vp.Render(v.Points, selectedID, mapWidth, mapHeight)
	grid = strings.ReplaceAll(grid, string(mapview.MarkerPoint), MarkerStyle.Render(string(mapview.MarkerPoint)))
	grid = strings.ReplaceAll(grid, string(mapview.MarkerSelected), MarkerStyle.Bold(true).Render(string(mapview.MarkerSelected)))
	grid = strings.ReplaceAll(grid, string(mapview.MarkerUser), UserMarkerStyle.Render(string(mapview.MarkerUser)))

	caption := HelpDescStyle.Render(fmt.Sprintf("%d/%d on map  ·  span %s",
		vp.Visible(v.Points), len(v.Points), util.FormatDistance(mapview.Distance(vp.Bound().Min, vp.Bound().LeftTop()))))
	return lipgloss.JoinVertical(lipgloss.Left, MapStyle.Render(grid), caption)
}

func (m *DiscoveryModel) renderList(v discovery.View, width, height int) string {
	if len(v.Points) == 0 {
		msg := "No collection points found for " + v.Region.String() + "."
		if v.Loading {
			msg = m.spinner.View() + " Searching " + v.Region.String() + "..."
		}
		return EmptyStateStyle.Width(width).Render(msg)
	}

	showDistance := v.Position.Resolved()
	nameWidth := max(12, width-20)
	widths := []int{nameWidth}
	headers := []string{"NAME"}
	if showDistance {
		nameWidth = max(12, width-34)
		widths = []int{nameWidth, 12}
		headers = append(headers, "DISTANCE")
	}

	header := renderTableRow(headers, widths, TableHeaderStyle)
	divider := renderTableDivider(widths)

	m.viewportHeight = max(1, height-3)
	points := listed(v)
	var rows []string
	for i := m.offset; i < len(points) && i < m.offset+m.viewportHeight; i++ {
		p := points[i]
		style := NormalRowStyle
		if i == m.cursor && m.focus == focusPoints {
			style = SelectedRowStyle
		}
		cells := []string{util.TruncateString(p.Name, nameWidth-2)}
		if showDistance {
			cells = append(cells, util.FormatDistance(mapview.Distance(v.Position.Point(), p.Coordinate().Point())))
		}
		rows = append(rows, renderTableRow(cells, widths, style))
	}

	return lipgloss.JoinVertical(lipgloss.Left, header, divider, strings.Join(rows, "\n"))
}

func (m *DiscoveryModel) renderStatus(v discovery.View) string {
	parts := []string{fmt.Sprintf("%d points", len(v.Points)), v.Region.String()}
	if len(v.Points) > 0 {
		parts = append(parts, fmt.Sprintf("row %d/%d", m.cursor+1, len(v.Points)))
	}
	parts = append(parts, "location "+v.Location.String())
	if v.Position.Resolved() {
		parts = append(parts, "you "+util.FormatCoordinate(v.Position.Latitude, v.Position.Longitude))
	}
	if v.Loading {
		parts = append(parts, m.spinner.View()+" loading")
	}
	return StatusBarStyle.Render(strings.Join(parts, "  ·  "))
}

// listed orders points nearest first once the position is known.
func listed(v discovery.View) []model.PointSummary {
	if !v.Position.Resolved() {
		return v.Points
	}
	return mapview.SortByDistance(v.Points, v.Position.Point())
}

func renderTableRow(cells []string, widths []int, style lipgloss.Style) string {
	var parts []string
	for i, cell := range cells {
		if i >= len(widths) {
			continue
		}
		parts = append(parts, style.Width(widths[i]).Render(cell))
	}
	return lipgloss.JoinHorizontal(lipgloss.Left, parts...)
}

func renderTableDivider(widths []int) string {
	total := 0
	for _, w := range widths {
		total += w
	}
	return lipgloss.NewStyle().Foreground(ColorMuted).Render(strings.Repeat("─", total))
}
