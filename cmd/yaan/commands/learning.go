// ABOUTME: CLI commands for proactive learning: summary, on/off, limits and reset
// ABOUTME: Operates on the per-user learning settings kept by the question scheduler
package commands

import (
	"fmt"
	"text/tabwriter"

	"github.com/dustin/go-humanize"
	"github.com/harper/yaan/internal/core"
	"github.com/spf13/cobra"
)

// NewLearningCmd creates the learning command group
func NewLearningCmd() *cobra.Command {
	var recent int

	cmd := &cobra.Command{
		Use:   "learning",
		Short: "Show and tune proactive learning",
		Long: `Show what the assistant has asked you and tune how often it asks.

Every now and then the assistant appends a short question to a reply to
learn more about you. Answers are recorded with the question.

Examples:
  yaan learning
  yaan learning --recent 10
  yaan learning off
  yaan learning set --per-day 3 --min-messages 10
  yaan learning reset --confirm`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := validatePositiveInt(recent, "recent"); err != nil {
				return err
			}
			return runLearningSummary(cmd, recent)
		},
	}
	cmd.Flags().IntVar(&recent, "recent", 5, "Number of recent questions to show")

	cmd.AddCommand(newLearningToggleCmd("on", true))
	cmd.AddCommand(newLearningToggleCmd("off", false))
	cmd.AddCommand(newLearningSetCmd())
	cmd.AddCommand(newLearningResetCmd())

	return cmd
}

func runLearningSummary(cmd *cobra.Command, recent int) error {
	s, err := openSession(cmd.Context())
	if err != nil {
		return err
	}
	defer s.Close()

	scheduler := s.assistant.Scheduler()
	sum, err := scheduler.Summary(cmd.Context(), recent)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if outputFormat == "json" {
		return writeJSON(out, map[string]interface{}{
			"enabled":        sum.Enabled,
			"total_asked":    sum.Stats.TotalAsked,
			"total_answered": sum.Stats.TotalAnswered,
			"answer_rate":    sum.Stats.AnswerRate(),
			"by_category":    sum.Stats.ByCategory,
			"asked_today":    sum.AskedToday,
			"max_per_day":    sum.MaxPerDay,
			"recent":         sum.Recent,
		})
	}

	fmt.Fprintln(out, core.FormatLearningSummary(sum, scheduler.Categories()))
	if len(sum.Recent) == 0 {
		return nil
	}

	fmt.Fprintln(out)
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "ASKED\tCATEGORY\tQUESTION\tANSWER\n")
	fmt.Fprintf(w, "-----\t--------\t--------\t------\n")
	for _, q := range sum.Recent {
		answer := "-"
		if q.Answered {
			answer = truncate(q.Answer, 30)
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", humanize.Time(q.AskedAt), q.Category, truncate(q.Question, 45), answer)
	}
	w.Flush()
	return nil
}

func newLearningToggleCmd(use string, enabled bool) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: fmt.Sprintf("Turn proactive questions %s", use),
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(cmd.Context())
			if err != nil {
				return err
			}
			defer s.Close()

			state, err := s.assistant.Scheduler().Toggle(cmd.Context(), &enabled)
			if err != nil {
				return err
			}
			if !quiet {
				fmt.Fprintf(cmd.OutOrStdout(), "Proactive questions: %s\n", onOff(state))
			}
			return nil
		},
	}
}

func newLearningSetCmd() *cobra.Command {
	var perDay, minMessages int

	cmd := &cobra.Command{
		Use:   "set",
		Short: "Change the daily question limit or the warm-up message count",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			perDaySet := cmd.Flags().Changed("per-day")
			minSet := cmd.Flags().Changed("min-messages")
			if !perDaySet && !minSet {
				return fmt.Errorf("nothing to set: pass --per-day and/or --min-messages")
			}

			s, err := openSession(cmd.Context())
			if err != nil {
				return err
			}
			defer s.Close()

			scheduler := s.assistant.Scheduler()
			if perDaySet {
				if err := scheduler.SetQuestionsPerDay(cmd.Context(), perDay); err != nil {
					return err
				}
			}
			if minSet {
				if err := scheduler.SetMinMessages(cmd.Context(), minMessages); err != nil {
					return err
				}
			}

			settings, err := scheduler.Settings(cmd.Context())
			if err != nil {
				return fmt.Errorf("failed to read learning settings: %w", err)
			}
			if outputFormat == "json" {
				return writeJSON(cmd.OutOrStdout(), settings)
			}
			if !quiet {
				fmt.Fprintf(cmd.OutOrStdout(), "Questions per day: %d\nMessages before first question: %d\n",
					settings.QuestionsPerDay, settings.MinMessagesBeforeQuestion)
			}
			return nil
		},
	}
	cmd.Flags().IntVar(&perDay, "per-day", 2, "Maximum questions in any 24 hours")
	cmd.Flags().IntVar(&minMessages, "min-messages", 5, "Messages in a session before the first question")

	return cmd
}

func newLearningResetCmd() *cobra.Command {
	var confirm bool

	cmd := &cobra.Command{
		Use:   "reset",
		Short: "Forget every asked question and restore default settings",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !confirm {
				fmt.Fprintln(cmd.OutOrStdout(), "This will forget every question asked and every answer given!")
				fmt.Fprintln(cmd.OutOrStdout(), "Run with --confirm to proceed")
				return nil
			}

			s, err := openSession(cmd.Context())
			if err != nil {
				return err
			}
			defer s.Close()

			if err := s.assistant.Scheduler().Reset(cmd.Context()); err != nil {
				return err
			}
			if !quiet {
				fmt.Fprintln(cmd.OutOrStdout(), "Learning history reset")
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&confirm, "confirm", false, "Confirm the reset")

	return cmd
}

func onOff(b bool) string {
	if b {
		return "on"
	}
	return "off"
}
