// ABOUTME: Interactive chat REPL and one-shot say command
// ABOUTME: Both route every message through the assistant dispatcher
package commands

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/harper/yaan/internal/core"
	"github.com/spf13/cobra"
)

const prompt = "you> "

// NewChatCmd creates the interactive chat command
func NewChatCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "chat",
		Short: "Start an interactive conversation",
		Long: `Start an interactive conversation with the assistant.

Type a message and press enter. Say goodbye (or "exit") to leave.
Try "remind me to call John tomorrow at 3pm", "add todo: write docs #work",
"show my todos", "what do you know about me" or "help".`,
		Args: cobra.NoArgs,
		RunE: runChat,
	}
}

func runChat(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	s, err := openSession(ctx)
	if err != nil {
		return err
	}
	defer s.Close()

	if !quiet {
		fmt.Fprintln(cmd.OutOrStdout(), s.assistant.Memory().PersonalizedGreeting())
	}
	return chatLoop(ctx, s.assistant, cmd.InOrStdin(), cmd.OutOrStdout())
}

// chatLoop reads one message per line until farewell, EOF or cancellation
func chatLoop(ctx context.Context, assistant *core.Dispatcher, in io.Reader, out io.Writer) error {
	scanner := bufio.NewScanner(in)
	for {
		if !quiet {
			fmt.Fprint(out, prompt)
		}
		if !scanner.Scan() {
			if !quiet {
				fmt.Fprintln(out)
			}
			return scanner.Err()
		}
		if ctx.Err() != nil {
			return nil
		}

		text := strings.TrimSpace(scanner.Text())
		if text == "" {
			continue
		}

		fmt.Fprintf(out, "yaan> %s\n\n", assistant.Process(ctx, text))
		if core.Classify(text) == core.IntentFarewell {
			return nil
		}
	}
}

// NewSayCmd creates the one-shot say command
func NewSayCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "say <message>",
		Short: "Send a single message and print the reply",
		Long: `Send a single message to the assistant and print its reply.

Examples:
  yaan say "remind me to call John tomorrow at 3pm"
  yaan say show my todos
  yaan say "what is 25 + 17"`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(cmd.Context())
			if err != nil {
				return err
			}
			defer s.Close()

			fmt.Fprintln(cmd.OutOrStdout(), s.assistant.Process(cmd.Context(), strings.Join(args, " ")))
			return nil
		},
	}
}
