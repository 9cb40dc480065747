package components

import (
	"fmt"
	"image/color"
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/abhisek/quizarena/internal/ui/theme"
)

// TimerBar shows a countdown draining from full to empty.
type TimerBar struct {
	Label     string
	Remaining int
	Total     int
	Width     int
}

// NewTimerBar creates a timer bar.
func NewTimerBar(label string, remaining, total, width int) TimerBar {
	return TimerBar{Label: label, Remaining: remaining, Total: total, Width: width}
}

// Fraction returns the share of time left, in [0, 1].
func (t TimerBar) Fraction() float64 {
	if t.Total <= 0 {
		return 0
	}
	return max(0, min(1, float64(t.Remaining)/float64(t.Total)))
}

func (t TimerBar) fill() color.Color {
	switch f := t.Fraction(); {
	case f <= 0.2:
		return theme.Error
	case f <= 0.5:
		return theme.Warning
	default:
		return theme.Player
	}
}

// View renders the bar followed by the remaining time as m:ss.
func (t TimerBar) View() string {
	var result string
	if t.Label != "" {
		result = theme.Body.Render(t.Label) + "  "
	}
	clock := fmt.Sprintf("  %d:%02d", t.Remaining/60, t.Remaining%60)

	barWidth := t.Width - lipgloss.Width(result) - len(clock)
	if barWidth < 4 {
		barWidth = 4
	}
	filled := int(float64(barWidth)*t.Fraction() + 0.5)
	empty := barWidth - filled

	result += lipgloss.NewStyle().Background(t.fill()).Render(strings.Repeat(" ", filled))
	result += lipgloss.NewStyle().Background(theme.Border).Render(strings.Repeat(" ", empty))
	result += theme.Muted.Render(clock)
	return result
}
