// ABOUTME: Root command for the yaan CLI with global flags
// ABOUTME: Builds the zap logger once and wires every subcommand
package commands

import (
	"errors"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	verbose      bool
	quiet        bool
	outputFormat string

	logger   = zap.NewNop()
	logLevel = zap.NewAtomicLevelAt(zap.WarnLevel)
)

const banner = `
██╗   ██╗ █████╗  █████╗ ███╗   ██╗
╚██╗ ██╔╝██╔══██╗██╔══██╗████╗  ██║
 ╚████╔╝ ███████║███████║██╔██╗ ██║
  ╚██╔╝  ██╔══██║██╔══██║██║╚██╗██║
   ██║   ██║  ██║██║  ██║██║ ╚████║
   ╚═╝   ╚═╝  ╚═╝╚═╝  ╚═╝╚═╝  ╚═══╝
`

// NewRootCmd creates the root command
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "yaan",
		Short: "A local assistant that remembers you",
		Long: banner + `
YAAN is a local conversational assistant. It keeps reminders and todos,
helps with code, learns about you as you talk, and now and then asks a
question to learn a bit more.

Everything is stored locally in SQLite. Preferences can optionally sync
through Charm.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if verbose && quiet {
				return errors.New("--verbose and --quiet are mutually exclusive")
			}
			l, err := newLogger()
			if err != nil {
				return err
			}
			logger = l
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			_ = logger.Sync()
		},
	}

	cmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
	cmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "Only print errors")
	cmd.PersistentFlags().StringVar(&outputFormat, "format", "auto", "Output format (auto, table, json)")

	cmd.AddCommand(NewChatCmd())
	cmd.AddCommand(NewSayCmd())
	cmd.AddCommand(NewRemindersCmd())
	cmd.AddCommand(NewTodosCmd())
	cmd.AddCommand(NewProfileCmd())
	cmd.AddCommand(NewLearningCmd())
	cmd.AddCommand(NewHistoryCmd())
	cmd.AddCommand(NewExportCmd())
	cmd.AddCommand(NewSyncCmd())
	cmd.AddCommand(NewMCPCmd())
	cmd.AddCommand(NewVersionCmd())

	return cmd
}

// newLogger builds the CLI logger; it writes to stderr so command output stays clean
func newLogger() (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	cfg.OutputPaths = []string{"stderr"}
	cfg.Encoding = "console"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	switch {
	case verbose:
		logLevel.SetLevel(zap.DebugLevel)
	case quiet:
		logLevel.SetLevel(zap.ErrorLevel)
	default:
		logLevel.SetLevel(zap.WarnLevel)
	}
	cfg.Level = logLevel
	return cfg.Build()
}

// applyLogLevel adopts the configured level unless --verbose or --quiet was given
func applyLogLevel(level string) {
	if verbose || quiet || level == "" {
		return
	}
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		logger.Warn("ignoring invalid log level", zap.String("level", level))
		return
	}
	logLevel.SetLevel(lvl)
}

// Execute runs the root command
func Execute() error {
	return NewRootCmd().Execute()
}
