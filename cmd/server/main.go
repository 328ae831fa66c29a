// ABOUTME: Main entry point for the yaan MCP server with stdio transport
// ABOUTME: Loads config, opens storage, builds the assistant and serves its tools
package main

import (
	"context"
	"log"
	"math/rand/v2"
	"time"

	"github.com/harper/yaan/internal/charm"
	"github.com/harper/yaan/internal/config"
	"github.com/harper/yaan/internal/core"
	"github.com/harper/yaan/internal/llm"
	"github.com/harper/yaan/internal/mcp"
	"github.com/harper/yaan/internal/storage"
	"github.com/harper/yaan/internal/storage/sqlite"
	mcpserver "github.com/mark3labs/mcp-go/server"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	zcfg := zap.NewProductionConfig()
	if lvl, err := zap.ParseAtomicLevel(cfg.LogLevel); err == nil {
		zcfg.Level = lvl
	}
	logger, err := zcfg.Build()
	if err != nil {
		log.Fatalf("Failed to build logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	store, err := sqlite.NewStorageWithPath(cfg.DBPath)
	if err != nil {
		logger.Fatal("failed to initialize storage", zap.Error(err))
	}
	defer store.Close()

	var prefs storage.PreferenceStore
	if cfg.PreferenceBackend == config.BackendCharm {
		client, err := charm.NewClient(&charm.Config{Host: cfg.CharmHost, DBName: cfg.CharmDBName, AutoSync: cfg.AutoSync})
		if err != nil {
			logger.Fatal("failed to connect to Charm", zap.Error(err))
		}
		defer client.Close()
		prefs = client
	}

	var responder core.Responder
	if cfg.LLMFallback {
		client, err := llm.NewOpenAIClient(&llm.ClientConfig{
			APIKey:     cfg.OpenAIKey,
			ChatModel:  cfg.ChatModel,
			Timeout:    cfg.Timeout,
			MaxRetries: cfg.MaxRetries,
			RetryDelay: cfg.RetryDelay,
		}, logger.Named("llm"))
		if err != nil {
			logger.Fatal("failed to initialize OpenAI client", zap.Error(err))
		}
		responder = client
	}

	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	assistant, err := core.NewAssistant(context.Background(), store, prefs, core.AssistantOptions{
		UserID:       cfg.UserID,
		UserName:     cfg.UserName,
		HistoryLimit: cfg.HistoryLimit,
		Random:       rand.New(rand.NewPCG(uint64(seed), uint64(seed)>>1|1)),
		Responder:    responder,
		Logger:       logger,
		Scheduler: []core.SchedulerOption{
			core.WithInterval(cfg.QuestionInterval),
			core.WithAskProbability(cfg.AskProbability),
		},
	})
	if err != nil {
		logger.Fatal("failed to build assistant", zap.Error(err))
	}

	server := mcpserver.NewMCPServer("YAAN Assistant", "0.1.0")
	mcp.RegisterTools(server, assistant, logger.Named("mcp"))

	logger.Info("MCP server starting on stdio", zap.String("user", cfg.UserID))
	if err := mcpserver.ServeStdio(server); err != nil {
		logger.Fatal("server error", zap.Error(err))
	}
}
