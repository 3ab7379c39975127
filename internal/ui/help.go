package ui

import (
	"strings"

	"coleta/internal/model"

	"github.com/charmbracelet/lipgloss"
)

// RenderHelp renders context-sensitive help footer.
func RenderHelp(screen model.Screen, mode model.Mode, width int) string {
	if mode == model.ModeInsert {
		return renderFormHelp(width)
	}

	switch screen {
	case model.ScreenDiscovery:
		return renderDiscoveryHelp(width)
	case model.ScreenDetail:
		return renderDetailHelp(width)
	default:
		return renderDefaultHelp(width)
	}
}

func renderDiscoveryHelp(width int) string {
	keys := []string{
		helpKey("j/k", "navigate"),
		helpKey("enter", "details"),
		helpKey("tab", "items/points"),
		helpKey("space", "toggle item"),
		helpKey("+/-", "zoom"),
		helpKey("m", "map"),
		helpKey("b", "change region"),
		helpKey("q", "quit"),
	}
	return renderHelpLine(keys, width)
}

func renderDetailHelp(width int) string {
	keys := []string{
		helpKey("h/esc", "back"),
		helpKey("q", "quit"),
	}
	return renderHelpLine(keys, width)
}

func renderFormHelp(width int) string {
	keys := []string{
		helpKey("tab", "next field"),
		helpKey("shift+tab", "prev field"),
		helpKey("enter", "search"),
		helpKey("ctrl+c", "quit"),
	}
	return renderHelpLine(keys, width)
}

func renderDefaultHelp(width int) string {
	keys := []string{
		helpKey("j/k", "navigate"),
		helpKey("h/l", "back/select"),
		helpKey("q", "quit"),
	}
	return renderHelpLine(keys, width)
}

func helpKey(key, desc string) string {
	return HelpKeyStyle.Render(key) + " " + HelpDescStyle.Render(desc)
}

func renderHelpLine(keys []string, width int) string {
	line := strings.Join(keys, "  ")
	return FooterStyle.Width(width).Render(line)
}

// RenderFullHelp renders the full help screen.
func RenderFullHelp(width, height int) string {
	content := lipgloss.NewStyle().
		Width(width-4).
		Height(max(0, height-6)).
		Padding(1, 2)

	sections := []string{
		titleSection("Region Entry"),
		helpSection([]helpItem{
			{"tab / shift+tab", "Cycle fields and recent regions"},
			{"enter", "Search the region"},
			{"↑ / ↓", "Move in recent regions"},
			{"ctrl+d", "Forget recent region"},
		}),
		titleSection("Discovery Screen"),
		helpSection([]helpItem{
			{"y / n", "Allow or deny location"},
			{"j / ↓", "Move down"},
			{"k / ↑", "Move up"},
			{"g / G", "Jump to top / bottom"},
			{"enter / l", "Open point detail"},
			{"tab", "Switch between items and points"},
			{"space / x", "Toggle the item under the cursor"},
			{"+ / -", "Zoom map in / out"},
			{"m", "Show or hide map"},
			{"b / esc", "Back to region entry"},
		}),
		titleSection("Point Detail"),
		helpSection([]helpItem{
			{"h / b / esc", "Back to points"},
		}),
		titleSection("Anywhere"),
		helpSection([]helpItem{
			{"?", "Toggle help"},
			{"q", "Quit (outside forms)"},
			{"ctrl+c", "Quit"},
		}),
	}

	helpText := content.Render(strings.Join(sections, "\n\n"))

	return lipgloss.JoinVertical(
		lipgloss.Left,
		TitleStyle.Width(width).Render("Help"),
		helpText,
		FooterStyle.Width(width).Render(HelpKeyStyle.Render("esc")+" "+HelpDescStyle.Render("close help")),
	)
}

type helpItem struct {
	key  string
	desc string
}

func titleSection(title string) string {
	return LabelStyle.Render(title)
}

func helpSection(items []helpItem) string {
	var lines []string
	for _, item := range items {
		lines = append(lines, "  "+HelpKeyStyle.Render(item.key)+" - "+HelpDescStyle.Render(item.desc))
	}
	return strings.Join(lines, "\n")
}
