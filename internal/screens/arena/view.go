package arena

import (
	"fmt"
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/abhisek/quizarena/internal/session"
	"github.com/abhisek/quizarena/internal/ui/components"
	"github.com/abhisek/quizarena/internal/ui/theme"
)

func (s *Screen) View(width, height int) string {
	if s.alert != nil {
		return s.alert.View(width, height)
	}

	switch s.state.Status {
	case session.StatusIdle, session.StatusLoading:
		return centered(width, height, theme.Muted.Render(fmt.Sprintf("Loading questions about %s...", s.cfg.Subject)))
	case session.StatusCountdown:
		return s.renderCountdown(width, height)
	case session.StatusQuestion, session.StatusResult:
		return s.renderQuestion(width)
	case session.StatusSummary:
		return centered(width, height, theme.Title.Render("Session complete"))
	}
	return ""
}

func centered(width, height int, content string) string {
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, content)
}

func (s *Screen) renderCountdown(width, height int) string {
	body := lipgloss.JoinVertical(lipgloss.Center,
		theme.Subtitle.Render("Get ready"),
		"",
		lipgloss.NewStyle().Foreground(theme.Accent).Bold(true).Render(fmt.Sprintf("%d", s.state.TimeRemaining)),
	)
	return centered(width, height, body)
}

// renderQuestion draws the scoreboard, the timer, the prompt and the
// options. During Result the feedback replaces the answer hint.
func (s *Screen) renderQuestion(width int) string {
	st := s.state
	inner := min(width-4, 72)

	var b strings.Builder
	b.WriteString(s.renderScoreboard(inner))
	b.WriteString("\n")
	b.WriteString(s.renderTimer(inner))
	b.WriteString("\n")
	b.WriteString(theme.Muted.Render(strings.Repeat("─", inner)))
	b.WriteString("\n\n")

	if st.Question != nil {
		b.WriteString(theme.Body.Bold(true).Width(inner).Render(st.Question.Prompt))
		b.WriteString("\n\n")
		b.WriteString(s.options.View())
	}

	if st.Status == session.StatusResult {
		b.WriteString("\n")
		b.WriteString(s.renderFeedback(inner))
	}
	if st.UsedFallback {
		b.WriteString("\n")
		b.WriteString(theme.Hint.Render("Playing the built-in question set."))
	}

	return lipgloss.PlaceHorizontal(width, lipgloss.Center, b.String())
}

func (s *Screen) renderScoreboard(inner int) string {
	st := s.state
	progress := theme.Muted.Render(fmt.Sprintf("Question %d/%d", st.CurrentIndex+1, st.QuestionCount))

	var score string
	if s.cfg.HasOpponent() {
		score = theme.PlayerScore.Render(fmt.Sprintf("You %d", st.PlayerScore)) +
			theme.Muted.Render("  vs  ") +
			theme.RivalScore.Render(fmt.Sprintf("Rival %d", st.OpponentScore))
	} else {
		score = theme.PlayerScore.Render(fmt.Sprintf("Score %d", st.PlayerScore)) +
			theme.Muted.Render(fmt.Sprintf("   ✓ %d  ✗ %d  ↷ %d", st.PlayerCorrect, st.PlayerIncorrect, st.PlayerSkipped))
	}

	gap := inner - lipgloss.Width(progress) - lipgloss.Width(score)
	if gap < 1 {
		gap = 1
	}
	return progress + strings.Repeat(" ", gap) + score
}

func (s *Screen) renderTimer(inner int) string {
	total := s.cfg.QuestionTimeLimit
	if s.cfg.Timing == session.TimingSessionWide {
		total = s.cfg.SessionTimeLimit
	}
	return components.NewTimerBar("", s.state.TimeRemaining, int(total.Seconds()), inner).View()
}

func (s *Screen) renderFeedback(inner int) string {
	st := s.state
	var lines []string

	verdict := theme.Incorrect.Render(st.Feedback)
	if correct, ok := st.LastAnswerCorrect.Bool(); ok && correct {
		verdict = theme.Correct.Render(st.Feedback)
	}
	if st.LastDelta != 0 {
		verdict += theme.Muted.Render(fmt.Sprintf("  %+d", st.LastDelta))
	}
	lines = append(lines, verdict)

	if rival, ok := st.LastOpponentCorrect.Bool(); ok {
		if rival {
			lines = append(lines, theme.RivalScore.Render("Rival got it right"))
		} else {
			lines = append(lines, theme.Muted.Render("Rival missed"))
		}
	}
	if st.Question != nil && st.Question.Explanation != "" {
		lines = append(lines, "", theme.Body.Width(inner).Render(st.Question.Explanation))
	}
	return strings.Join(lines, "\n")
}
