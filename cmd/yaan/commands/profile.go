// ABOUTME: CLI command to view or erase what the assistant has learned about the user
// ABOUTME: Shows facts, top interests and communication style
package commands

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

const profileTopInterests = 5

// NewProfileCmd creates profile command
func NewProfileCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "profile",
		Short: "View what the assistant has learned about you",
		Long: `View the learned user profile.

The profile holds facts picked up from conversation (name, location,
occupation, likes and dislikes), the topics you talk about most and how
you tend to write.

Examples:
  yaan profile
  yaan profile --format json
  yaan profile forget --confirm`,
		Args: cobra.NoArgs,
		RunE: runProfileShow,
	}

	var confirm bool
	forgetCmd := &cobra.Command{
		Use:   "forget",
		Short: "Erase everything learned about you",
		Long: `Erase the learned profile. Reminders, todos and the conversation
log are kept.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !confirm {
				fmt.Fprintln(cmd.OutOrStdout(), "This will erase everything learned about you!")
				fmt.Fprintln(cmd.OutOrStdout(), "Run with --confirm to proceed")
				return nil
			}
			s, err := openSession(cmd.Context())
			if err != nil {
				return err
			}
			defer s.Close()

			if err := s.assistant.Memory().Forget(cmd.Context()); err != nil {
				return fmt.Errorf("failed to forget profile: %w", err)
			}
			if !quiet {
				fmt.Fprintln(cmd.OutOrStdout(), "Profile erased")
			}
			return nil
		},
	}
	forgetCmd.Flags().BoolVar(&confirm, "confirm", false, "Confirm erasing the profile")
	cmd.AddCommand(forgetCmd)

	return cmd
}

func runProfileShow(cmd *cobra.Command, args []string) error {
	s, err := openSession(cmd.Context())
	if err != nil {
		return err
	}
	defer s.Close()

	profile := s.assistant.Memory().Profile()
	out := cmd.OutOrStdout()

	if outputFormat == "json" {
		return writeJSON(out, profile)
	}

	if profile.Facts.IsEmpty() && len(profile.Interests) == 0 {
		if !quiet {
			fmt.Fprintln(out, "Nothing learned yet. Try: yaan say \"my name is Alice\"")
		}
		return nil
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "FIELD\tVALUE\n")
	fmt.Fprintf(w, "-----\t-----\n")

	facts := profile.Facts
	for _, row := range []struct{ field, value string }{
		{"Name", facts.Name},
		{"Location", facts.Location},
		{"Occupation", facts.Occupation},
		{"Likes", strings.Join(facts.Likes, ", ")},
		{"Dislikes", strings.Join(facts.Dislikes, ", ")},
	} {
		if row.value != "" {
			fmt.Fprintf(w, "%s\t%s\n", row.field, truncate(row.value, 60))
		}
	}

	var topics []string
	for _, tc := range profile.Interests.Top(profileTopInterests) {
		topics = append(topics, fmt.Sprintf("%s (%d)", tc.Topic, tc.Count))
	}
	if len(topics) > 0 {
		fmt.Fprintf(w, "Interests\t%s\n", strings.Join(topics, ", "))
	}

	style := profile.Style
	fmt.Fprintf(w, "Style\t%s, %s\n", style.Formality, style.Verbosity)
	fmt.Fprintf(w, "Avg message\t%.1f words\n", style.AvgMessageLength)
	fmt.Fprintf(w, "Messages\t%d\n", profile.TotalMessages)
	w.Flush()

	return nil
}
