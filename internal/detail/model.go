package detail

import (
	"context"
	"errors"
	"log/slog"

	"coleta/internal/model"

	tea "github.com/charmbracelet/bubbletea"
)

var errNoService = errors.New("no detail service configured")

const (
	defaultArtWidth  = 40
	defaultArtHeight = 12
)

// Model is the detail screen's state. Each Open starts a new navigation; only
// the completion issued by the latest navigation is applied.
type Model struct {
	service *Service
	photos  *Photos
	logger  *slog.Logger

	seq     int
	open    bool
	pointID int64
	detail  *model.PointDetail
	art     string
	loading bool
	err     error

	artWidth  int
	artHeight int
}

// NewModel creates a detail model. photos may be nil to skip photo rendering.
func NewModel(service *Service, photos *Photos, logger *slog.Logger) Model {
	if logger == nil {
		logger = slog.Default()
	}
	return Model{
		service:   service,
		photos:    photos,
		logger:    logger,
		artWidth:  defaultArtWidth,
		artHeight: defaultArtHeight,
	}
}

// Open navigates to point id and returns the fetch command.
func (m Model) Open(id int64) (Model, tea.Cmd) {
	m.seq++
	m.open = true
	m.pointID = id
	m.detail = nil
	m.art = ""
	m.err = nil
	m.loading = true

	seq, service := m.seq, m.service
	return m, func() tea.Msg {
		if service == nil {
			return model.DetailLoadedMsg{Seq: seq, Err: errNoService}
		}
		d, err := service.FetchDetail(context.Background(), id)
		return model.DetailLoadedMsg{Seq: seq, Detail: d, Err: err}
	}
}

// Close leaves the screen. A fetch still in flight is ignored when it lands.
func (m Model) Close() Model {
	m.seq++
	m.open = false
	m.detail = nil
	m.art = ""
	m.loading = false
	m.err = nil
	return m
}

// SetPhotoSize sets the character grid used for the photo.
func (m Model) SetPhotoSize(width, height int) Model {
	if width > 0 {
		m.artWidth = width
	}
	if height > 0 {
		m.artHeight = height
	}
	return m
}

// Update applies detail and photo completions of the current navigation.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case model.DetailLoadedMsg:
		if !m.open || msg.Seq != m.seq {
			m.logger.Debug("discarding stale point detail", slog.Int("seq", msg.Seq), slog.Int("current", m.seq))
			return m, nil
		}
		m.loading = false
		if msg.Err != nil {
			m.err = msg.Err
			return m, nil
		}
		d := msg.Detail
		d.Items = append([]model.DetailItem(nil), msg.Detail.Items...)
		m.detail = &d
		return m, m.photoCmd()

	case model.PointImageLoadedMsg:
		if !m.open || msg.Seq != m.seq {
			return m, nil
		}
		if msg.Err != nil {
			m.logger.Debug("point photo unavailable", slog.Any("error", msg.Err))
			return m, nil
		}
		m.art = msg.Art
	}
	return m, nil
}

func (m Model) photoCmd() tea.Cmd {
	if m.photos == nil || m.detail == nil || m.detail.ImageURL == "" {
		return nil
	}
	seq, photos, url := m.seq, m.photos, m.detail.ImageURL
	w, h := m.artWidth, m.artHeight
	return func() tea.Msg {
		art, err := photos.Art(context.Background(), url, w, h)
		return model.PointImageLoadedMsg{Seq: seq, Art: art, Err: err}
	}
}

// Detail returns the resolved record, or nil while loading, on failure or after Close.
func (m Model) Detail() *model.PointDetail {
	if m.detail == nil {
		return nil
	}
	d := *m.detail
	d.Items = append([]model.DetailItem(nil), m.detail.Items...)
	return &d
}

func (m Model) PointID() int64 { return m.pointID }
func (m Model) Art() string    { return m.art }
func (m Model) Loading() bool  { return m.loading }
func (m Model) Err() error     { return m.err }
