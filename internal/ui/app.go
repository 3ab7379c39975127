package ui

import (
	"database/sql"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"coleta/internal/db"
	"coleta/internal/detail"
	"coleta/internal/discovery"
	"coleta/internal/model"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

const recentRegionLimit = 8

// Deps are the collaborators of the root model.
type Deps struct {
	DB       *sql.DB
	Catalog  discovery.Catalog
	Points   discovery.PointFetcher
	Locator  discovery.Locator
	Details  *detail.Service
	Photos   *detail.Photos
	Fallback []int64
	Logger   *slog.Logger

	// PrefsPath is where UI preferences persist. Empty disables persistence.
	PrefsPath string
	// Region prefills the region form; the last searched region is used when empty.
	Region model.RegionQuery
}

// Model is the root Bubble Tea model.
type Model struct {
	db       *sql.DB
	catalog  discovery.Catalog
	queries  *discovery.QueryService
	locator  discovery.Locator
	details  *detail.Service
	photos   *detail.Photos
	logger   *slog.Logger
	prefPath string

	screen model.Screen
	mode   model.Mode

	width  int
	height int

	error       string
	info        string
	showingHelp bool

	// Screen models
	regionForm  *RegionFormModel
	discovery   *DiscoveryModel
	pointDetail *PointDetailModel

	keys  KeyMap
	prefs UIPreferences
}

// New creates a new root model.
func New(deps Deps) Model {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}

	prefs := loadUIPreferences(deps.PrefsPath)
	initial := deps.Region
	if initial.UF == "" && initial.City == "" {
		initial = prefs.region()
	}

	return Model{
		db:          deps.DB,
		catalog:     deps.Catalog,
		queries:     discovery.NewQueryService(deps.Points, deps.Fallback, logger),
		locator:     deps.Locator,
		details:     deps.Details,
		photos:      deps.Photos,
		logger:      logger,
		prefPath:    deps.PrefsPath,
		screen:      model.ScreenRegion,
		mode:        model.ModeInsert,
		regionForm:  NewRegionFormModel(initial),
		pointDetail: NewPointDetailModel(detail.NewModel(deps.Details, deps.Photos, logger)),
		keys:        DefaultKeyMap(),
		prefs:       prefs,
	}
}

// Init initializes the model.
func (m Model) Init() tea.Cmd {
	return loadRegionsCmd(m.db)
}

// Update handles messages.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.pointDetail.Model = m.pointDetail.SetPhotoSize(min(48, max(16, msg.Width/3)), min(20, max(8, msg.Height/3)))
		return m, nil

	case tea.KeyMsg:
		// Handle ctrl+c globally
		if msg.String() == "ctrl+c" {
			return m.quit()
		}

		if key.Matches(msg, m.keys.Help) && m.mode == model.ModeNav {
			m.showingHelp = !m.showingHelp
			return m, nil
		}

		if m.showingHelp {
			if msg.String() == "esc" || key.Matches(msg, m.keys.Help) {
				m.showingHelp = false
			}
			return m, nil
		}

		if m.mode == model.ModeInsert {
			return m.handleInsertMode(msg)
		}
		return m.handleNavMode(msg)

	case model.ErrorMsg:
		m.error = msg.Err.Error()
		return m, nil

	case model.InfoMsg:
		m.info = msg.Text
		return m, nil

	case model.RegionsLoadedMsg:
		m.regionForm.SetRecent(msg.Regions)
		return m, nil

	case forgetRegionMsg:
		return m, forgetRegionCmd(m.db, msg.region)

	case model.RegionSubmittedMsg:
		return m.startDiscovery(msg.Region)

	case model.PointSelectedMsg:
		var cmd tea.Cmd
		m.pointDetail.Model, cmd = m.pointDetail.Open(msg.ID)
		m.screen = model.ScreenDetail
		m.error = ""
		return m, cmd

	case model.DetailLoadedMsg, model.PointImageLoadedMsg:
		var cmd tea.Cmd
		m.pointDetail.Model, cmd = m.pointDetail.Model.Update(msg)
		return m, cmd

	case model.ItemsLoadedMsg, model.PointsLoadedMsg, model.LocationResolvedMsg, spinner.TickMsg:
		if m.discovery == nil {
			return m, nil
		}
		next, cmd := m.discovery.Update(msg)
		m.discovery = &next
		return m, cmd
	}

	return m, nil
}

func (m Model) quit() (tea.Model, tea.Cmd) {
	if m.discovery != nil {
		m.discovery.Close()
	}
	return m, tea.Quit
}

func (m Model) startDiscovery(region model.RegionQuery) (tea.Model, tea.Cmd) {
	if m.discovery != nil {
		m.discovery.Close()
	}

	ctrl := discovery.New(discovery.Config{
		Region:  region,
		Catalog: m.catalog,
		Queries: m.queries,
		Locator: m.locator,
		Logger:  m.logger,
	})
	dm := NewDiscoveryModel(ctrl, m.prefs.MapDelta, m.prefs.HideMap, m.keys)
	started, cmd := dm.Start()
	m.discovery = &started

	m.screen = model.ScreenDiscovery
	m.mode = model.ModeNav
	m.error = ""
	m.info = ""

	region = ctrl.Region()
	m.prefs.LastRegion = RegionPrefs{UF: region.UF, City: region.City}
	_ = saveUIPreferences(m.prefPath, m.prefs)

	return m, tea.Batch(cmd, touchRegionCmd(m.db, region))
}

// handleInsertMode handles region form input.
func (m Model) handleInsertMode(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	newForm, cmd := m.regionForm.Update(msg)
	m.regionForm = &newForm
	return m, cmd
}

// handleNavMode handles navigation mode input.
func (m Model) handleNavMode(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch m.screen {
	case model.ScreenDiscovery:
		return m.handleDiscoveryNav(msg)
	case model.ScreenDetail:
		return m.handleDetailNav(msg)
	}
	return m, nil
}

func (m Model) handleDiscoveryNav(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.discovery == nil {
		return m, nil
	}

	switch {
	case msg.String() == "q":
		return m.quit()
	case key.Matches(msg, m.keys.Back):
		m.discovery.Close()
		m.discovery = nil
		m.screen = model.ScreenRegion
		m.mode = model.ModeInsert
		m.error = ""
		m.info = ""
		return m, loadRegionsCmd(m.db)
	}

	next, cmd := m.discovery.Update(msg)
	if next.Delta() != m.prefs.MapDelta || next.MapHidden() != m.prefs.HideMap {
		m.prefs.MapDelta = next.Delta()
		m.prefs.HideMap = next.MapHidden()
		_ = saveUIPreferences(m.prefPath, m.prefs)
	}
	m.discovery = &next
	return m, cmd
}

func (m Model) handleDetailNav(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case msg.String() == "q":
		return m.quit()
	case key.Matches(msg, m.keys.Back), key.Matches(msg, m.keys.Left):
		m.pointDetail.Model = m.pointDetail.Close()
		m.screen = model.ScreenDiscovery
		m.error = ""
		return m, nil
	}
	return m, nil
}

// View renders the UI.
func (m Model) View() string {
	if m.width == 0 || m.height == 0 {
		return ""
	}

	if m.showingHelp {
		return RenderFullHelp(m.width, m.height)
	}

	var content string
	var breadcrumbParts []string

	contentHeight := m.height - 4 // header + footer + padding
	errText := m.error

	switch m.screen {
	case model.ScreenRegion:
		breadcrumbParts = []string{"Region"}
		content = m.regionForm.View(m.width, contentHeight)
	case model.ScreenDiscovery:
		if m.discovery != nil {
			breadcrumbParts = []string{m.discovery.Region().String()}
			if err := m.discovery.Snapshot().Err; err != nil && errText == "" {
				errText = err.Error()
			}
			content = m.discovery.View(m.width, contentHeight)
		}
	case model.ScreenDetail:
		if m.discovery != nil {
			breadcrumbParts = append(breadcrumbParts, m.discovery.Region().String())
		}
		breadcrumbParts = append(breadcrumbParts, m.pointDetail.Title())
		if err := m.pointDetail.Err(); err != nil && errText == "" {
			errText = err.Error()
		}
		content = m.pointDetail.View(m.width, contentHeight)
	}

	header := renderHeader(breadcrumbParts, m.width)
	footer := RenderHelp(m.screen, m.mode, m.width)

	// Ensure content fills the available height to anchor footer at bottom
	contentStyle := lipgloss.NewStyle().
		Width(m.width).
		Height(max(0, contentHeight))
	content = contentStyle.Render(content)

	parts := []string{header}
	if errText != "" {
		parts = append(parts, ErrorStyle.Width(m.width).Render("Error: "+errText))
	}
	if m.info != "" {
		parts = append(parts, SuccessStyle.Width(m.width).Render(m.info))
	}
	parts = append(parts, content, footer)
	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

func renderHeader(breadcrumbParts []string, width int) string {
	// Left side: app name + breadcrumb
	title := HeaderStyle.Render("coleta")

	var breadcrumb string
	if len(breadcrumbParts) > 0 {
		separator := BreadcrumbStyle.Render(" › ")
		parts := make([]string, len(breadcrumbParts))
		for i, part := range breadcrumbParts {
			if i == len(breadcrumbParts)-1 {
				parts[i] = BreadcrumbActiveStyle.Render(part)
			} else {
				parts[i] = BreadcrumbStyle.Render(part)
			}
		}
		breadcrumb = separator + strings.Join(parts, separator)
	}

	left := "  " + title + breadcrumb

	// Right side: current date
	dateStr := time.Now().Format("Mon 02 Jan")
	right := BreadcrumbStyle.Render(dateStr) + "  "

	padding := width - lipgloss.Width(left) - lipgloss.Width(right)
	if padding < 0 {
		padding = 0
	}

	headerContent := left + strings.Repeat(" ", padding) + right
	return TitleStyle.Width(width).Render(headerContent)
}

// Commands

func loadRegionsCmd(database *sql.DB) tea.Cmd {
	if database == nil {
		return nil
	}
	return func() tea.Msg {
		regions, err := db.RecentRegions(database, recentRegionLimit)
		if err != nil {
			return model.ErrorMsg{Err: err}
		}
		return model.RegionsLoadedMsg{Regions: regions}
	}
}

func touchRegionCmd(database *sql.DB, region model.RegionQuery) tea.Cmd {
	if database == nil {
		return nil
	}
	return func() tea.Msg {
		if err := db.TouchRegion(database, region, time.Now()); err != nil {
			return model.ErrorMsg{Err: err}
		}
		regions, err := db.RecentRegions(database, recentRegionLimit)
		if err != nil {
			return model.ErrorMsg{Err: err}
		}
		return model.RegionsLoadedMsg{Regions: regions}
	}
}

func forgetRegionCmd(database *sql.DB, region model.RegionQuery) tea.Cmd {
	if database == nil {
		return nil
	}
	return func() tea.Msg {
		if err := db.ForgetRegion(database, region); err != nil {
			return model.ErrorMsg{Err: fmt.Errorf("failed to forget %s: %w", region, err)}
		}
		regions, err := db.RecentRegions(database, recentRegionLimit)
		if err != nil {
			return model.ErrorMsg{Err: err}
		}
		return tea.BatchMsg{
			func() tea.Msg { return model.RegionsLoadedMsg{Regions: regions} },
			func() tea.Msg { return model.InfoMsg{Text: "Removed " + region.String() + " from recent regions"} },
		}
	}
}
