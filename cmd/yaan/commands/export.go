// ABOUTME: CLI command to export the user's data to a file
// ABOUTME: Writes profile, settings, tasks, questions and conversation as YAML, JSON or Markdown
package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

var exportExtensions = map[string]string{
	"yaml":     "yaml",
	"json":     "json",
	"markdown": "md",
	"md":       "md",
}

// NewExportCmd creates export command
func NewExportCmd() *cobra.Command {
	var format, output string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export your data to a file",
		Long: `Export everything stored for you: the learned profile, learning
settings, reminders, todos, asked questions and the conversation log.

Examples:
  yaan export
  yaan export --as json --output backup.json
  yaan export --as markdown`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ext, ok := exportExtensions[format]
			if !ok {
				return fmt.Errorf("unsupported export format %q (use yaml, json or markdown)", format)
			}
			if output == "" {
				output = "yaan-export." + ext
			}

			s, err := openStore()
			if err != nil {
				return err
			}
			defer s.Close()

			ctx := cmd.Context()
			switch ext {
			case "yaml":
				err = s.store.ExportToYAML(ctx, s.cfg.UserID, output)
			case "json":
				err = s.store.ExportToJSON(ctx, s.cfg.UserID, output)
			default:
				err = s.store.ExportToMarkdown(ctx, s.cfg.UserID, output)
			}
			if err != nil {
				return fmt.Errorf("failed to export: %w", err)
			}

			if !quiet {
				fmt.Fprintf(cmd.OutOrStdout(), "Exported to %s\n", output)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&format, "as", "yaml", "Export format (yaml, json, markdown)")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Output file (default yaan-export.<ext>)")

	return cmd
}
