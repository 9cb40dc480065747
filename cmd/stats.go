package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/abhisek/quizarena/internal/rewards"
	"github.com/abhisek/quizarena/internal/session"
	"github.com/abhisek/quizarena/internal/store"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show session totals, recent sessions and the reward wallet",
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")
		modeFlag, _ := cmd.Flags().GetString("mode")

		var mode session.Mode
		if modeFlag != "" {
			m, err := session.ParseMode(modeFlag)
			if err != nil {
				return err
			}
			mode = m
		}

		s, _, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer s.Close()

		ctx := cmd.Context()
		repo := s.SessionRepo()
		totals, err := repo.Totals(ctx, mode)
		if err != nil {
			return fmt.Errorf("query totals: %w", err)
		}
		if totals.Sessions == 0 {
			fmt.Println("No sessions recorded yet.")
			return nil
		}

		fmt.Println("Totals")
		fmt.Println(strings.Repeat("─", 48))
		fmt.Printf("%-18s %d\n", "Sessions", totals.Sessions)
		fmt.Printf("%-18s %d\n", "Points earned", totals.PointsEarned)
		fmt.Printf("%-18s %d\n", "Best score", totals.BestScore)
		fmt.Printf("%-18s %d / %d / %d\n", "Right/wrong/skip", totals.QuestionsCorrect, totals.QuestionsWrong, totals.QuestionsSkipped)
		fmt.Printf("%-18s %.0f%%\n", "Accuracy", totals.Accuracy()*100)
		if mode != session.ModeSolo {
			fmt.Printf("%-18s %d / %d / %d\n", "Win/tie/loss", totals.Wins, totals.Ties, totals.Losses)
		}

		recent, err := repo.Recent(ctx, store.QueryOpts{Limit: limit})
		if err != nil {
			return fmt.Errorf("query sessions: %w", err)
		}
		fmt.Println()
		fmt.Println("Recent Sessions")
		fmt.Println(strings.Repeat("─", 84))
		fmt.Printf("%-16s  %-6s  %-18s  %7s  %7s  %5s  %-5s  %s\n",
			"Completed", "Mode", "Subject", "Score", "Rival", "Acc", "Res", "Time")
		fmt.Println(strings.Repeat("─", 84))
		for _, r := range recent {
			if mode != "" && r.Mode != mode {
				continue
			}
			rival, outcome := "-", "-"
			if r.Mode == session.ModeBattle {
				rival = fmt.Sprint(r.OpponentScore)
				outcome = string(r.Outcome)
			}
			if r.Expired {
				outcome = "time"
			}
			fmt.Printf("%-16s  %-6s  %-18s  %7d  %7s  %4.0f%%  %-5s  %ds\n",
				r.CompletedAt.Local().Format("2006-01-02 15:04"),
				r.Mode,
				truncate(subjectLabel(r.Subject, r.Topic), 18),
				r.Score,
				rival,
				r.Accuracy*100,
				outcome,
				r.DurationSeconds(),
			)
		}

		bal, err := rewards.NewService(s.RewardRepo()).Balance(ctx)
		if err != nil {
			return fmt.Errorf("query wallet: %w", err)
		}
		fmt.Println()
		fmt.Printf("Wallet: %d coins, %d badges", bal.Coins, bal.Badges)
		var parts []string
		for _, r := range rewards.AllRarities() {
			if n := bal.BadgesByRarity[string(r)]; n > 0 {
				parts = append(parts, fmt.Sprintf("%d %s", n, r.DisplayName()))
			}
		}
		if len(parts) > 0 {
			fmt.Printf(" (%s)", strings.Join(parts, ", "))
		}
		fmt.Println()
		return nil
	},
}

func subjectLabel(subject, topic string) string {
	if topic == "" {
		return subject
	}
	return subject + "/" + topic
}

func init() {
	statsCmd.Flags().IntP("limit", "n", 10, "Number of recent sessions to show")
	statsCmd.Flags().StringP("mode", "m", "", "Only count one mode (battle or solo)")
}
