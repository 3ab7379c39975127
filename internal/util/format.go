package util

import (
	"fmt"
	"strconv"
	"strings"
	"time"
	"unicode"
)

// FormatDateHuman formats a time with humanized relative display.
// "Today", "Yesterday", "3d ago", "Jan 15", "Jan 15 '24"
func FormatDateHuman(t time.Time) string {
	if t.IsZero() {
		return "Unknown"
	}
	return formatDateHuman(t, time.Now())
}

func formatDateHuman(t, now time.Time) string {
	t = t.In(now.Location())
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	dateDay := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, now.Location())

	diff := today.Sub(dateDay)
	days := int(diff.Hours() / 24)

	switch {
	case days == 0:
		return "Today"
	case days == 1:
		return "Yesterday"
	case days > 1 && days < 7:
		return fmt.Sprintf("%dd ago", days)
	case t.Year() == now.Year():
		return t.Format("Jan 02")
	default:
		return t.Format("Jan 02 '06")
	}
}

// FormatDistance formats meters as "850 m" or "1.2 km".
func FormatDistance(meters float64) string {
	if meters < 0 {
		return "—"
	}
	if meters < 1000 {
		return fmt.Sprintf("%d m", int(meters+0.5))
	}
	s := strconv.FormatFloat(meters/1000, 'f', 1, 64)
	s = strings.TrimSuffix(s, ".0")
	return s + " km"
}

// FormatCoordinate formats a latitude/longitude pair with five decimals.
func FormatCoordinate(lat, lon float64) string {
	return fmt.Sprintf("%.5f, %.5f", lat, lon)
}

// JoinTitles joins item titles for display, or "—" when there are none.
func JoinTitles(titles []string) string {
	if len(titles) == 0 {
		return "—"
	}
	return strings.Join(titles, ", ")
}

// NormalizeUFInput upper-cases letters and keeps at most two of them.
func NormalizeUFInput(input string) string {
	var b strings.Builder
	n := 0
	for _, r := range strings.TrimSpace(input) {
		if !unicode.IsLetter(r) {
			continue
		}
		b.WriteRune(unicode.ToUpper(r))
		if n++; n == 2 {
			break
		}
	}
	return b.String()
}

// ValidateUF checks a two-letter state code.
func ValidateUF(uf string) error {
	if len([]rune(uf)) != 2 {
		return fmt.Errorf("state must have two letters")
	}
	for _, r := range uf {
		if r < 'A' || r > 'Z' {
			return fmt.Errorf("state must have two letters")
		}
	}
	return nil
}

// TruncateString truncates a string to maxLen and adds "..." if needed.
func TruncateString(s string, maxLen int) string {
	runes := []rune(s)
	if len(runes) <= maxLen {
		return s
	}
	if maxLen < 3 {
		return string(runes[:maxLen])
	}
	return string(runes[:maxLen-3]) + "..."
}
