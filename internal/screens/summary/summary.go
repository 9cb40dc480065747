package summary

import (
	"fmt"
	"image/color"
	"strings"

	"charm.land/bubbles/v2/key"
	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/quizarena/internal/rewards"
	"github.com/abhisek/quizarena/internal/router"
	"github.com/abhisek/quizarena/internal/screen"
	"github.com/abhisek/quizarena/internal/session"
	"github.com/abhisek/quizarena/internal/ui/layout"
	"github.com/abhisek/quizarena/internal/ui/theme"
)

// PlayAgainMsg is delivered to the screen below the summary after it pops,
// asking for a restart with the same batch.
type PlayAgainMsg struct{}

// SummaryScreen displays a finished session and what it earned.
type SummaryScreen struct {
	summary session.Summary
	awards  []rewards.Award

	again key.Binding
	home  key.Binding
}

var _ screen.Screen = (*SummaryScreen)(nil)
var _ screen.KeyHintProvider = (*SummaryScreen)(nil)

// New creates a SummaryScreen. Awards are derived from the summary the same
// way the rewards service credits them.
func New(sum session.Summary, subscribed bool) *SummaryScreen {
	return &SummaryScreen{
		summary: sum,
		awards:  rewards.Awards(session.NewResult(sum, subscribed), sum.EndedAt),
		again:   key.NewBinding(key.WithKeys("enter", "r"), key.WithHelp("Enter", "Play again")),
		home:    key.NewBinding(key.WithKeys("esc", "q"), key.WithHelp("Esc", "Home")),
	}
}

func (s *SummaryScreen) Init() tea.Cmd {
	return nil
}

func (s *SummaryScreen) Title() string {
	return "Session Summary"
}

func (s *SummaryScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: s.again.Help().Key, Description: s.again.Help().Desc},
		{Key: s.home.Help().Key, Description: s.home.Help().Desc},
	}
}

func (s *SummaryScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	kmsg, ok := msg.(tea.KeyPressMsg)
	if !ok {
		return s, nil
	}
	switch {
	case key.Matches(kmsg, s.again):
		return s, tea.Sequence(
			func() tea.Msg { return router.PopScreenMsg{} },
			func() tea.Msg { return PlayAgainMsg{} },
		)
	case key.Matches(kmsg, s.home):
		return s, func() tea.Msg { return router.PopToRootMsg{} }
	}
	return s, nil
}

// Awards returns what the session earned.
func (s *SummaryScreen) Awards() []rewards.Award { return s.awards }

func (s *SummaryScreen) View(width, height int) string {
	sum := s.summary
	var b strings.Builder

	center := func(str string) {
		b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, str))
		b.WriteString("\n")
	}

	title, style := headline(sum)
	center(style.Render(title))
	if sum.Expired {
		center(theme.Hint.Render("Time ran out"))
	}
	b.WriteString("\n")

	if sum.Mode == session.ModeBattle {
		center(theme.PlayerScore.Render(fmt.Sprintf("You %d", sum.PlayerScore)) +
			theme.Muted.Render("  vs  ") +
			theme.RivalScore.Render(fmt.Sprintf("Rival %d", sum.OpponentScore)))
	} else {
		center(theme.PlayerScore.Render(fmt.Sprintf("Score %d", sum.PlayerScore)))
	}
	b.WriteString("\n")

	mins := int(sum.Duration.Minutes())
	secs := int(sum.Duration.Seconds()) % 60
	center(theme.Body.Render(fmt.Sprintf("Correct: %d    Wrong: %d    Skipped: %d    Accuracy: %.0f%%",
		sum.Correct, sum.Incorrect, sum.Skipped, sum.Accuracy*100)))
	center(theme.Muted.Render(fmt.Sprintf("%d questions in %d:%02d", sum.QuestionCount, mins, secs)))

	if len(s.awards) > 0 {
		divider := theme.Muted.Render(strings.Repeat("─", min(width-8, 60)))
		b.WriteString("\n")
		center(theme.Muted.Render("Rewards"))
		center(divider)
		b.WriteString("\n")
		for _, a := range s.awards {
			center(renderAward(a))
		}
	}

	return b.String()
}

func headline(sum session.Summary) (string, lipgloss.Style) {
	switch sum.Outcome {
	case session.OutcomeWin:
		return "Victory!", theme.Correct
	case session.OutcomeLoss:
		return "Defeat", theme.Incorrect
	case session.OutcomeTie:
		return "It's a tie", theme.Title
	default:
		return "Session complete!", theme.Title
	}
}

func renderAward(a rewards.Award) string {
	if !a.IsBadge() {
		return lipgloss.NewStyle().Foreground(theme.Accent).Render(fmt.Sprintf("● +%d coins", a.Coins))
	}
	line := fmt.Sprintf("%s %s %s badge: %s", a.Badge.Icon(), a.Rarity.DisplayName(), a.Badge.DisplayName(), a.Reason)
	return lipgloss.NewStyle().Foreground(rarityColor(a.Rarity)).Render(line)
}

// rarityColor returns the theme color for a badge rarity.
func rarityColor(r rewards.Rarity) color.Color {
	switch r {
	case rewards.RarityRare:
		return theme.Player
	case rewards.RarityEpic:
		return theme.Primary
	case rewards.RarityLegendary:
		return theme.Accent
	default:
		return theme.Text
	}
}
