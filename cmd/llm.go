package cmd

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/benewagner/musicmapping/internal/llm"
	"github.com/benewagner/musicmapping/internal/store"
)

var llmCmd = &cobra.Command{
	Use:   "llm",
	Short: "Inspect recorded LLM requests",
}

// withEvents opens the library and hands its event log to fn.
func withEvents(cmd *cobra.Command, fn func(repo store.EventRepo) error) error {
	env, err := setup(cmd)
	if err != nil {
		return err
	}
	defer env.Close()

	st, err := env.openStore()
	if err != nil {
		return err
	}
	defer st.Close()
	return fn(st.EventRepo())
}

var llmListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recent LLM requests",
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")
		purpose, _ := cmd.Flags().GetString("purpose")

		return withEvents(cmd, func(repo store.EventRepo) error {
			events, err := repo.QueryLLMRequests(cmd.Context(), store.QueryOpts{Limit: limit})
			if err != nil {
				return fmt.Errorf("query events: %w", err)
			}

			out := cmd.OutOrStdout()
			if len(events) == 0 {
				fmt.Fprintln(out, "No LLM requests recorded.")
				return nil
			}

			fmt.Fprintf(out, "%-5s  %-19s  %-14s  %-28s  %-6s  %-6s  %-7s  %s\n",
				"ID", "Timestamp", "Purpose", "Model", "In", "Out", "Ms", "OK")
			fmt.Fprintln(out, strings.Repeat("\u2500", 100))

			for _, e := range events {
				if purpose != "" && e.Purpose != purpose {
					continue
				}
				ok := "✓"
				if !e.Success {
					ok = "✗"
				}
				fmt.Fprintf(out, "%-5d  %-19s  %-14s  %-28s  %-6d  %-6d  %-7d  %s\n",
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
		})
	},
}

var llmViewCmd = &cobra.Command{
	Use:   "view <id>",
	Short: "Show the full request and response of one LLM request",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid ID %q: %w", args[0], err)
		}

		return withEvents(cmd, func(repo store.EventRepo) error {
			e, err := repo.GetLLMRequest(cmd.Context(), id)
			if err != nil {
				return fmt.Errorf("request %d: %w", id, err)
			}

			out := cmd.OutOrStdout()
			sep := strings.Repeat("\u2500", 60)

			fmt.Fprintf(out, "ID:        %d\n", e.Sequence)
			fmt.Fprintf(out, "Time:      %s\n", e.Timestamp.Local().Format("2006-01-02 15:04:05"))
			fmt.Fprintf(out, "Provider:  %s\n", e.Provider)
			fmt.Fprintf(out, "Model:     %s\n", e.Model)
			fmt.Fprintf(out, "Purpose:   %s\n", e.Purpose)
			fmt.Fprintf(out, "Tokens:    %d in / %d out\n", e.InputTokens, e.OutputTokens)
			if cost := llm.LookupCost(e.Model); cost != nil {
				fmt.Fprintf(out, "Cost:      %s\n", formatCost(cost.Cost(e.InputTokens, e.OutputTokens)))
			}
			fmt.Fprintf(out, "Latency:   %dms\n", e.LatencyMs)
			fmt.Fprintf(out, "Success:   %v\n", e.Success)
			if e.ErrorMessage != "" {
				fmt.Fprintf(out, "Error:     %s\n", e.ErrorMessage)
			}

			for _, part := range []struct{ name, body string }{
				{"REQUEST", e.RequestBody},
				{"RESPONSE", e.ResponseBody},
			} {
				fmt.Fprintln(out)
				fmt.Fprintln(out, sep)
				fmt.Fprintln(out, part.name)
				fmt.Fprintln(out, sep)
				if part.body == "" {
					fmt.Fprintln(out, "(not captured)")
				} else {
					fmt.Fprintln(out, part.body)
				}
			}
			return nil
		})
	},
}

// modelUsage aggregates token counts for one model.
type modelUsage struct {
	Model        string
	Calls        int
	InputTokens  int
	OutputTokens int
}

// usageByModel sums events per model, most used first.
func usageByModel(events []store.LLMRequestEvent) []modelUsage {
	byModel := make(map[string]*modelUsage)
	for _, e := range events {
		u, ok := byModel[e.Model]
		if !ok {
			u = &modelUsage{Model: e.Model}
			byModel[e.Model] = u
		}
		u.Calls++
		u.InputTokens += e.InputTokens
		u.OutputTokens += e.OutputTokens
	}
	out := make([]modelUsage, 0, len(byModel))
	for _, u := range byModel {
		out = append(out, *u)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Calls != out[j].Calls {
			return out[i].Calls > out[j].Calls
		}
		return out[i].Model < out[j].Model
	})
	return out
}

var llmStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show token usage and estimated cost per model",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withEvents(cmd, func(repo store.EventRepo) error {
			events, err := repo.QueryLLMRequests(cmd.Context(), store.QueryOpts{})
			if err != nil {
				return fmt.Errorf("query events: %w", err)
			}

			out := cmd.OutOrStdout()
			if len(events) == 0 {
				fmt.Fprintln(out, "No LLM usage recorded yet.")
				return nil
			}

			fmt.Fprintln(out, "Estimated Cost (USD)")
			fmt.Fprintln(out, strings.Repeat("\u2500", 72))
			fmt.Fprintf(out, "%-32s  %6s  %10s  %10s  %10s\n", "Model", "Calls", "Input", "Output", "Cost")
			fmt.Fprintln(out, strings.Repeat("\u2500", 72))

			var totalCost float64
			var unknownModels []string
			for _, mu := range usageByModel(events) {
				cost := llm.LookupCost(mu.Model)
				if cost == nil {
					unknownModels = append(unknownModels, mu.Model)
					fmt.Fprintf(out, "%-32s  %6d  %10d  %10d  %10s\n",
						truncate(mu.Model, 32), mu.Calls, mu.InputTokens, mu.OutputTokens, "?")
					continue
				}
				c := cost.Cost(mu.InputTokens, mu.OutputTokens)
				totalCost += c
				fmt.Fprintf(out, "%-32s  %6d  %10d  %10d  %10s\n",
					truncate(mu.Model, 32), mu.Calls, mu.InputTokens, mu.OutputTokens, formatCost(c))
			}

			fmt.Fprintln(out, strings.Repeat("\u2500", 72))
			label := "TOTAL"
			if len(unknownModels) > 0 {
				label = "TOTAL (partial)"
			}
			fmt.Fprintf(out, "%-32s  %6s  %10s  %10s  %10s\n", label, "", "", "", formatCost(totalCost))
			if len(unknownModels) > 0 {
				fmt.Fprintf(out, "\nPricing unavailable for: %s\n", strings.Join(unknownModels, ", "))
			}
			return nil
		})
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
	llmListCmd.Flags().IntP("limit", "n", 20, "Number of requests to show")
	llmListCmd.Flags().StringP("purpose", "p", "", "Filter by purpose (e.g. "+llm.PurposeExerciseGen+")")

	llmCmd.AddCommand(llmListCmd)
	llmCmd.AddCommand(llmViewCmd)
	llmCmd.AddCommand(llmStatsCmd)
}
