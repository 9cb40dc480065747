package cmd

import (
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/abhisek/quizarena/internal/llm"
	"github.com/abhisek/quizarena/internal/store"
)

var llmCmd = &cobra.Command{
	Use:   "llm",
	Short: "Inspect question generation requests",
}

var llmListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recent LLM events",
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")
		purpose, _ := cmd.Flags().GetString("purpose")

		s, _, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer s.Close()

		events, err := s.EventRepo().QueryLLMEvents(cmd.Context(), store.QueryOpts{Limit: limit})
		if err != nil {
			return fmt.Errorf("query events: %w", err)
		}

		if len(events) == 0 {
			fmt.Println("No LLM events found.")
			return nil
		}

		fmt.Printf("%-5s  %-19s  %-12s  %-28s  %-6s  %-6s  %-7s  %s\n",
			"Seq", "Timestamp", "Purpose", "Model", "In", "Out", "Ms", "OK")
		fmt.Println(strings.Repeat("─", 100))

		for _, e := range events {
			if purpose != "" && e.Purpose != purpose {
				continue
			}
			ok := "✓"
			if !e.Success {
				ok = "✗ " + truncate(e.ErrorMessage, 40)
			}
			fmt.Printf("%-5d  %-19s  %-12s  %-28s  %-6d  %-6d  %-7d  %s\n",
				e.Sequence,
				e.Timestamp.Local().Format("2006-01-02 15:04:05"),
				e.Purpose,
				truncate(e.Model, 28),
				e.InputTokens,
				e.OutputTokens,
				e.LatencyMs,
				ok,
			)
		}
		return nil
	},
}

type modelUsage struct {
	model    string
	calls    int
	failures int
	in, out  int
	latency  int64
}

var llmStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show aggregated LLM token usage and estimated cost",
	RunE: func(cmd *cobra.Command, args []string) error {
		s, _, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer s.Close()

		events, err := s.EventRepo().QueryLLMEvents(cmd.Context(), store.QueryOpts{})
		if err != nil {
			return fmt.Errorf("query events: %w", err)
		}
		if len(events) == 0 {
			fmt.Println("No LLM usage recorded yet.")
			return nil
		}

		byModel := map[string]*modelUsage{}
		for _, e := range events {
			u := byModel[e.Model]
			if u == nil {
				u = &modelUsage{model: e.Model}
				byModel[e.Model] = u
			}
			u.calls++
			if !e.Success {
				u.failures++
			}
			u.in += e.InputTokens
			u.out += e.OutputTokens
			u.latency += e.LatencyMs
		}
		usage := make([]*modelUsage, 0, len(byModel))
		for _, u := range byModel {
			usage = append(usage, u)
		}
		sort.Slice(usage, func(i, j int) bool { return usage[i].calls > usage[j].calls })

		fmt.Println("Estimated Cost (USD)")
		fmt.Println(strings.Repeat("─", 84))
		fmt.Printf("%-28s  %6s  %6s  %10s  %10s  %8s  %10s\n",
			"Model", "Calls", "Failed", "Input", "Output", "Avg Ms", "Cost")
		fmt.Println(strings.Repeat("─", 84))

		var totalCost float64
		var unknown []string
		for _, u := range usage {
			cost := "?"
			if c, ok := llm.LookupCost(u.model); ok {
				usd := c.Cost(u.in, u.out)
				totalCost += usd
				cost = formatCost(usd)
			} else {
				unknown = append(unknown, u.model)
			}
			fmt.Printf("%-28s  %6d  %6d  %10d  %10d  %8d  %10s\n",
				truncate(u.model, 28), u.calls, u.failures, u.in, u.out, u.latency/int64(u.calls), cost)
		}

		fmt.Println(strings.Repeat("─", 84))
		label := "TOTAL"
		if len(unknown) > 0 {
			label = "TOTAL (partial)"
		}
		fmt.Printf("%-28s  %6s  %6s  %10s  %10s  %8s  %10s\n", label, "", "", "", "", "", formatCost(totalCost))
		if len(unknown) > 0 {
			fmt.Printf("\nPricing unavailable for: %s\n", strings.Join(unknown, ", "))
		}
		return nil
	},
}

var llmProvidersCmd = &cobra.Command{
	Use:   "providers",
	Short: "List supported providers and the one the environment selects",
	Run: func(cmd *cobra.Command, args []string) {
		selected := llm.ConfigFromEnv()
		if selected.Validate() != nil {
			if found, ok := llm.DiscoverConfig(); ok {
				selected = found
			}
		}
		ready := selected.Validate() == nil

		for _, p := range llm.Providers() {
			mark := " "
			if ready && p == selected.Provider {
				mark = "*"
			}
			fmt.Printf("%s %s\n", mark, p)
		}
		if ready {
			fmt.Printf("\nSelected: %s (%s)\n", selected.Provider, selected.Model())
		} else {
			fmt.Println("\nNo API key found; question generation is disabled.")
		}
	},
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max]
}

func formatCost(usd float64) string {
	if usd < 0.01 {
		return fmt.Sprintf("$%.4f", usd)
	}
	return fmt.Sprintf("$%.2f", usd)
}

func init() {
	llmListCmd.Flags().IntP("limit", "n", 20, "Number of events to show")
	llmListCmd.Flags().StringP("purpose", "p", "", "Filter by purpose (e.g. quiz-batch)")

	llmCmd.AddCommand(llmListCmd)
	llmCmd.AddCommand(llmStatsCmd)
	llmCmd.AddCommand(llmProvidersCmd)
}
