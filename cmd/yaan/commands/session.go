// ABOUTME: Opens the storage, preference backend and assistant shared by CLI commands
// ABOUTME: Reads configuration once and closes everything it opened
package commands

import (
	"context"
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/harper/yaan/internal/charm"
	"github.com/harper/yaan/internal/config"
	"github.com/harper/yaan/internal/core"
	"github.com/harper/yaan/internal/llm"
	"github.com/harper/yaan/internal/storage"
	"github.com/harper/yaan/internal/storage/sqlite"
	"go.uber.org/zap"
)

// session bundles everything a command needs to talk to the assistant
type session struct {
	cfg       *config.Config
	store     *sqlite.Storage
	charm     *charm.Client
	assistant *core.Dispatcher
}

// openStore loads configuration and opens the SQLite database only
func openStore() (*session, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	applyLogLevel(cfg.LogLevel)

	store, err := sqlite.NewStorageWithPath(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}
	logger.Debug("storage opened", zap.String("path", cfg.DBPath))
	return &session{cfg: cfg, store: store}, nil
}

// openSession opens storage and builds an assistant for the configured user
func openSession(ctx context.Context) (*session, error) {
	s, err := openStore()
	if err != nil {
		return nil, err
	}

	var prefs storage.PreferenceStore
	if s.cfg.PreferenceBackend == config.BackendCharm {
		client, err := charm.NewClient(&charm.Config{
			Host:     s.cfg.CharmHost,
			DBName:   s.cfg.CharmDBName,
			AutoSync: s.cfg.AutoSync,
		})
		if err != nil {
			_ = s.Close()
			return nil, fmt.Errorf("failed to connect to Charm: %w", err)
		}
		s.charm = client
		prefs = client
	}

	var responder core.Responder
	if s.cfg.LLMFallback {
		client, err := llm.NewOpenAIClient(&llm.ClientConfig{
			APIKey:     s.cfg.OpenAIKey,
			ChatModel:  s.cfg.ChatModel,
			Timeout:    s.cfg.Timeout,
			MaxRetries: s.cfg.MaxRetries,
			RetryDelay: s.cfg.RetryDelay,
		}, logger.Named("llm"))
		if err != nil {
			_ = s.Close()
			return nil, fmt.Errorf("failed to initialize OpenAI client: %w", err)
		}
		responder = client
	}

	assistant, err := core.NewAssistant(ctx, s.store, prefs, core.AssistantOptions{
		UserID:       s.cfg.UserID,
		UserName:     s.cfg.UserName,
		HistoryLimit: s.cfg.HistoryLimit,
		Random:       newRandom(s.cfg.Seed),
		Responder:    responder,
		Logger:       logger,
		Scheduler: []core.SchedulerOption{
			core.WithInterval(s.cfg.QuestionInterval),
			core.WithAskProbability(s.cfg.AskProbability),
		},
	})
	if err != nil {
		_ = s.Close()
		return nil, err
	}
	s.assistant = assistant
	return s, nil
}

// newRandom returns a seeded source; seed 0 means a different sequence every run
func newRandom(seed int64) *rand.Rand {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return rand.New(rand.NewPCG(uint64(seed), uint64(seed)>>1|1))
}

// Close releases the database and the Charm KV if it was opened
func (s *session) Close() error {
	var firstErr error
	if s.charm != nil {
		if err := s.charm.Close(); err != nil {
			firstErr = fmt.Errorf("failed to close charm: %w", err)
		}
	}
	if err := s.store.Close(); err != nil && firstErr == nil {
		firstErr = fmt.Errorf("failed to close storage: %w", err)
	}
	return firstErr
}
