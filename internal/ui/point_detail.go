package ui

import (
	"strings"

	"coleta/internal/contact"
	"coleta/internal/detail"
	"coleta/internal/model"
	"coleta/internal/util"

	"github.com/charmbracelet/lipgloss"
)

// PointDetailModel renders the detail screen.
type PointDetailModel struct {
	detail.Model
}

// NewPointDetailModel wraps a detail model.
func NewPointDetailModel(m detail.Model) *PointDetailModel {
	return &PointDetailModel{Model: m}
}

// Title returns the breadcrumb label.
func (m *PointDetailModel) Title() string {
	if d := m.Detail(); d != nil {
		return d.Name
	}
	return "Point"
}

// View renders the resolved point. It renders nothing while the record is
// unresolved.
func (m *PointDetailModel) View(width, height int) string {
	d := m.Detail()
	if d == nil {
		return ""
	}

	shortcuts := HelpDescStyle.Render("h back")
	header := lipgloss.NewStyle().
		Width(width - 4).
		Align(lipgloss.Right).
		Render(shortcuts)

	var sections []string

	var fields []string
	fields = append(fields, LabelStyle.Render(d.Name))
	fields = append(fields, renderField("Location", d.City+", "+d.UF))
	fields = append(fields, renderField("Items", util.JoinTitles(d.ItemTitles())))
	sections = append(sections, strings.Join(fields, "\n"))

	divider := lipgloss.NewStyle().
		Foreground(ColorMuted).
		Render(strings.Repeat("─", max(0, width-8)))
	sections = append(sections, divider)

	sections = append(sections, renderContact(*d))

	content := strings.Join(sections, "\n\n")
	if art := m.Art(); art != "" {
		if width >= 100 {
			content = lipgloss.JoinHorizontal(lipgloss.Top,
				lipgloss.NewStyle().Width(width-8-lipgloss.Width(art)-2).Render(content), "  ", art)
		} else {
			content = lipgloss.JoinVertical(lipgloss.Left, content, "", art)
		}
	}

	info := PanelStyle.
		Width(width - 4).
		Render(content)

	return lipgloss.JoinVertical(lipgloss.Left, header, info)
}

func renderContact(d model.PointDetail) string {
	lines := []string{LabelStyle.Render("Contact")}
	if link := contact.WhatsAppURL(d.WhatsApp); link != "" {
		lines = append(lines, renderField("WhatsApp", d.WhatsApp), HelpDescStyle.Render("  "+link))
	} else {
		lines = append(lines, renderField("WhatsApp", ""))
	}
	if link := contact.MailtoURL(d.Email); link != "" {
		lines = append(lines, renderField("E-mail", d.Email), HelpDescStyle.Render("  "+link))
	} else {
		lines = append(lines, renderField("E-mail", ""))
	}
	return strings.Join(lines, "\n")
}

func renderField(label, value string) string {
	if value == "" {
		value = "—"
	}
	return LabelStyle.Render(label+":") + " " + NormalRowStyle.Render(value)
}
