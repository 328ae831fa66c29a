// ABOUTME: CLI command to browse and search the conversation log
// ABOUTME: Lists recent exchanges newest first, optionally filtered by a search term
package commands

import (
	"fmt"
	"text/tabwriter"

	"github.com/harper/yaan/internal/models"
	"github.com/spf13/cobra"
)

// NewHistoryCmd creates history command
func NewHistoryCmd() *cobra.Command {
	var limit int
	var search string

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recent conversation",
		Long: `Show recent exchanges from the conversation log, newest first.

Examples:
  yaan history
  yaan history --limit 50
  yaan history --search python
  yaan history --format json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := validatePositiveInt(limit, "limit"); err != nil {
				return err
			}

			s, err := openStore()
			if err != nil {
				return err
			}
			defer s.Close()

			var exchanges []models.Exchange
			if search != "" {
				exchanges, err = s.store.SearchConversations(cmd.Context(), s.cfg.UserID, search, limit)
			} else {
				exchanges, err = s.store.RecentConversations(cmd.Context(), s.cfg.UserID, limit)
			}
			if err != nil {
				return fmt.Errorf("failed to read conversation log: %w", err)
			}

			out := cmd.OutOrStdout()
			if outputFormat == "json" {
				if exchanges == nil {
					exchanges = []models.Exchange{}
				}
				return writeJSON(out, exchanges)
			}

			if len(exchanges) == 0 {
				if !quiet {
					fmt.Fprintln(out, "No conversation found")
				}
				return nil
			}

			w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
			fmt.Fprintf(w, "WHEN\tYOU\tYAAN\n")
			fmt.Fprintf(w, "----\t---\t----\n")
			for _, ex := range exchanges {
				fmt.Fprintf(w, "%s\t%s\t%s\n",
					formatTime(ex.Timestamp),
					truncate(oneLine(ex.Input), 40),
					truncate(oneLine(ex.Response), 60))
			}
			w.Flush()

			if !quiet {
				total, err := s.store.CountConversations(cmd.Context(), s.cfg.UserID)
				if err == nil {
					fmt.Fprintf(out, "\nShowing %d of %d exchange(s)\n", len(exchanges), total)
				}
			}
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Maximum exchanges to show")
	cmd.Flags().StringVarP(&search, "search", "s", "", "Only show exchanges containing this text")

	return cmd
}
