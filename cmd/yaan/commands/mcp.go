// ABOUTME: MCP command starts Model Context Protocol server
// ABOUTME: Lets LLM agents like Claude chat with the assistant and read its state via stdio
package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/harper/yaan/internal/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// NewMCPCmd creates the MCP command
func NewMCPCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "mcp",
		Short: "Start MCP server for LLM agents",
		Long: `Start MCP server for LLM agents

Runs YAAN as an MCP (Model Context Protocol) server, enabling LLM
agents like Claude to chat with the assistant and read the learned
profile, reminders, todos and learning progress via stdio.

Configure in Claude Desktop's config file to enable the tools.`,
		RunE: runMCP,
		Example: `  # Start MCP server (typically called by Claude Desktop)
  yaan mcp

  # Configure in claude_desktop_config.json:
  # {
  #   "mcpServers": {
  #     "yaan": {
  #       "command": "yaan",
  #       "args": ["mcp"]
  #     }
  #   }
  # }`,
	}

	return cmd
}

// runMCP starts the MCP server
func runMCP(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	s, err := openSession(ctx)
	if err != nil {
		return err
	}

	server := mcpserver.NewMCPServer("YAAN Assistant", versionInfo.Version)
	mcp.RegisterTools(server, s.assistant, logger.Named("mcp"))

	logger.Info("MCP server starting on stdio", zap.String("user", s.cfg.UserID))

	serverErr := make(chan error, 1)
	go func() {
		serverErr <- mcpserver.ServeStdio(server)
	}()

	select {
	case <-ctx.Done():
		logger.Info("shutdown signal received")
		if err := s.Close(); err != nil {
			logger.Warn("error closing storage", zap.Error(err))
		}
		logger.Info("shutdown complete")

	case err := <-serverErr:
		_ = s.Close()
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
	}

	return nil
}
