package ui

import (
	"fmt"
	"strings"

	"coleta/internal/model"
	"coleta/internal/util"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

const (
	fieldUF = iota
	fieldCity
	fieldRecent
)

// forgetRegionMsg asks the root model to delete a recent region.
type forgetRegionMsg struct {
	region model.RegionQuery
}

// RegionFormModel is the region entry screen.
type RegionFormModel struct {
	inputs       []textinput.Model
	focusedField int
	recent       []model.RecentRegion
	recentCursor int
	error        string
	keys         FormKeyMap
}

// NewRegionFormModel creates the form, prefilled with initial.
func NewRegionFormModel(initial model.RegionQuery) *RegionFormModel {
	inputs := make([]textinput.Model, 2)

	inputs[fieldUF] = textinput.New()
	inputs[fieldUF].Placeholder = "MG"
	inputs[fieldUF].CharLimit = 2
	inputs[fieldUF].Width = 4
	inputs[fieldUF].Focus()

	inputs[fieldCity] = textinput.New()
	inputs[fieldCity].Placeholder = "Uberlandia"
	inputs[fieldCity].CharLimit = 80

	initial = initial.Normalize()
	inputs[fieldUF].SetValue(initial.UF)
	inputs[fieldCity].SetValue(initial.City)

	return &RegionFormModel{
		inputs: inputs,
		keys:   DefaultFormKeyMap(),
	}
}

// SetRecent replaces the recent regions list.
func (m *RegionFormModel) SetRecent(regions []model.RecentRegion) {
	m.recent = append([]model.RecentRegion(nil), regions...)
	if m.recentCursor >= len(m.recent) {
		m.recentCursor = max(0, len(m.recent)-1)
	}
	if m.focusedField == fieldRecent && len(m.recent) == 0 {
		m.focus(fieldUF)
	}
}

// Value returns the region currently typed in.
func (m *RegionFormModel) Value() model.RegionQuery {
	return model.RegionQuery{
		UF:   m.inputs[fieldUF].Value(),
		City: m.inputs[fieldCity].Value(),
	}.Normalize()
}

// Update handles key input.
func (m RegionFormModel) Update(msg tea.KeyMsg) (RegionFormModel, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.NextField):
		m.focus((m.focusedField + 1) % m.fieldCount())
		return m, nil
	case key.Matches(msg, m.keys.PrevField):
		m.focus((m.focusedField + m.fieldCount() - 1) % m.fieldCount())
		return m, nil
	case key.Matches(msg, m.keys.Submit):
		if m.focusedField == fieldRecent && m.recentCursor < len(m.recent) {
			return m, submitRegion(m.recent[m.recentCursor].Region)
		}
		return m.submit()
	}

	if m.focusedField == fieldRecent {
		switch {
		case key.Matches(msg, m.keys.Up):
			if m.recentCursor > 0 {
				m.recentCursor--
			}
		case key.Matches(msg, m.keys.Down):
			if m.recentCursor < len(m.recent)-1 {
				m.recentCursor++
			}
		case key.Matches(msg, m.keys.Forget):
			if m.recentCursor < len(m.recent) {
				region := m.recent[m.recentCursor].Region
				return m, func() tea.Msg { return forgetRegionMsg{region: region} }
			}
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.inputs[m.focusedField], cmd = m.inputs[m.focusedField].Update(msg)
	if m.focusedField == fieldUF {
		uf := util.NormalizeUFInput(m.inputs[fieldUF].Value())
		if uf != m.inputs[fieldUF].Value() {
			m.inputs[fieldUF].SetValue(uf)
		}
	}
	m.error = ""
	return m, cmd
}

func (m RegionFormModel) submit() (RegionFormModel, tea.Cmd) {
	region := m.Value()
	if err := util.ValidateUF(region.UF); err != nil {
		m.error = err.Error()
		m.focus(fieldUF)
		return m, nil
	}
	if region.City == "" {
		m.error = "city is required"
		m.focus(fieldCity)
		return m, nil
	}
	m.error = ""
	return m, submitRegion(region)
}

func submitRegion(region model.RegionQuery) tea.Cmd {
	return func() tea.Msg {
		return model.RegionSubmittedMsg{Region: region}
	}
}

func (m *RegionFormModel) fieldCount() int {
	if len(m.recent) > 0 {
		return 3
	}
	return 2
}

func (m *RegionFormModel) focus(field int) {
	for i := range m.inputs {
		m.inputs[i].Blur()
	}
	m.focusedField = field
	if field < len(m.inputs) {
		m.inputs[field].Focus()
	}
}

// View renders the form.
func (m *RegionFormModel) View(width, height int) string {
	var fields []string

	intro := HelpDescStyle.Render("Find collection points by state and city.")
	fields = append(fields, intro)
	fields = append(fields, renderFormField("State (UF) *", m.inputs[fieldUF], m.focusedField == fieldUF))
	fields = append(fields, renderFormField("City *", m.inputs[fieldCity], m.focusedField == fieldCity))

	if m.error != "" {
		fields = append(fields, ErrorStyle.Render(m.error))
	}

	formContent := strings.Join(fields, "\n\n")
	if len(m.recent) > 0 {
		if width >= 90 {
			leftWidth := max(36, (width-14)*55/100)
			rightWidth := max(28, (width-14)-leftWidth)
			left := lipgloss.NewStyle().Width(leftWidth).Render(formContent)
			formContent = lipgloss.JoinHorizontal(lipgloss.Top, left, "  ", m.renderRecent(rightWidth))
		} else {
			formContent = lipgloss.JoinVertical(lipgloss.Left, formContent, "", m.renderRecent(width-8))
		}
	}

	return PanelStyle.
		Width(width - 4).
		Height(max(0, height-4)).
		Render(formContent)
}

func (m *RegionFormModel) renderRecent(width int) string {
	title := LabelStyle.Render("Recent Regions")
	style := BorderStyle
	if m.focusedField == fieldRecent {
		style = ActiveBorderStyle
	}

	var items []string
	for i, r := range m.recent {
		rowStyle := NormalRowStyle
		if m.focusedField == fieldRecent && i == m.recentCursor {
			rowStyle = SelectedRowStyle
		}

		left := util.TruncateString(r.Region.String(), max(10, width-22))
		right := HelpDescStyle.Render(fmt.Sprintf("%s  ×%d", util.FormatDateHuman(r.UsedAt), r.Uses))
		lineWidth := max(10, width-8)
		padding := max(0, lineWidth-lipgloss.Width(left)-lipgloss.Width(right))
		items = append(items, rowStyle.Width(lineWidth).Render(left+strings.Repeat(" ", padding)+right))
	}

	help := HelpDescStyle.Render("↑/↓ move  enter search  ctrl+d forget")
	body := lipgloss.JoinVertical(lipgloss.Left, items...)
	return style.Width(width).Render(lipgloss.JoinVertical(lipgloss.Left, title, "", body, "", help))
}

func renderFormField(label string, input textinput.Model, focused bool) string {
	style := BorderStyle
	if focused {
		style = ActiveBorderStyle
	}

	field := lipgloss.JoinVertical(
		lipgloss.Left,
		LabelStyle.Render(label),
		input.View(),
	)

	return style.Render(field)
}
