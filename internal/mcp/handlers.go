// ABOUTME: MCP tool handler implementations for the yaan server
// ABOUTME: Serializes access to one Dispatcher session and returns JSON tool results
package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/harper/yaan/internal/core"
	"github.com/harper/yaan/internal/models"
	"github.com/mark3labs/mcp-go/mcp"
	"go.uber.org/zap"
)

// Handlers contains the handler functions for all MCP tools.
// Tool calls may arrive concurrently; the Dispatcher is single-session, so calls are serialized.
type Handlers struct {
	mu        sync.Mutex
	assistant *core.Dispatcher
	logger    *zap.Logger
}

// NewHandlers creates tool handlers around one assistant session
func NewHandlers(assistant *core.Dispatcher, logger *zap.Logger) *Handlers {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handlers{assistant: assistant, logger: logger}
}

// Chat handles the chat tool
func (h *Handlers) Chat(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	message, err := request.RequireString("message")
	if err != nil {
		return mcp.NewToolResultError("message argument is required and must be a string"), nil
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	response := h.assistant.Process(ctx, message)
	result := map[string]interface{}{
		"response": response,
	}
	if q := h.assistant.PendingQuestion(); q != nil {
		result["pending_question"] = q.Text
	}
	return jsonResult(result)
}

// GetUserProfile handles the get_user_profile tool
func (h *Handlers) GetUserProfile(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	return jsonResult(map[string]interface{}{
		"profile": h.assistant.Memory().Profile(),
		"summary": h.assistant.Memory().Summary(),
	})
}

// ListReminders handles the list_reminders tool
func (h *Handlers) ListReminders(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	status, err := parseStatus(request)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	reminders, err := h.assistant.Tasks().Reminders(ctx, status)
	if err != nil {
		h.logger.Error("failed to list reminders", zap.Error(err))
		return mcp.NewToolResultError(fmt.Sprintf("failed to list reminders: %v", err)), nil
	}
	if reminders == nil {
		reminders = []models.Reminder{}
	}
	return jsonResult(map[string]interface{}{"reminders": reminders})
}

// ListTodos handles the list_todos tool
func (h *Handlers) ListTodos(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	status, err := parseStatus(request)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	todos, err := h.assistant.Tasks().Todos(ctx, status)
	if err != nil {
		h.logger.Error("failed to list todos", zap.Error(err))
		return mcp.NewToolResultError(fmt.Sprintf("failed to list todos: %v", err)), nil
	}
	if todos == nil {
		todos = []models.Todo{}
	}
	return jsonResult(map[string]interface{}{"todos": todos})
}

// LearningSummary handles the learning_summary tool
func (h *Handlers) LearningSummary(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	recent := request.GetInt("recent", 5)
	if recent < 0 {
		return mcp.NewToolResultError("recent must not be negative"), nil
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	scheduler := h.assistant.Scheduler()
	sum, err := scheduler.Summary(ctx, recent)
	if err != nil {
		h.logger.Error("failed to build learning summary", zap.Error(err))
		return mcp.NewToolResultError(fmt.Sprintf("failed to build learning summary: %v", err)), nil
	}
	return jsonResult(map[string]interface{}{
		"enabled":        sum.Enabled,
		"total_asked":    sum.Stats.TotalAsked,
		"total_answered": sum.Stats.TotalAnswered,
		"answer_rate":    sum.Stats.AnswerRate(),
		"by_category":    sum.Stats.ByCategory,
		"asked_today":    sum.AskedToday,
		"max_per_day":    sum.MaxPerDay,
		"recent":         sum.Recent,
		"report":         core.FormatLearningSummary(sum, scheduler.Categories()),
	})
}

// ForgetMe handles the forget_me tool
func (h *Handlers) ForgetMe(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if err := h.assistant.Memory().Forget(ctx); err != nil {
		h.logger.Error("failed to forget user", zap.Error(err))
		return mcp.NewToolResultError(fmt.Sprintf("failed to forget user: %v", err)), nil
	}
	return jsonResult(map[string]interface{}{"success": true})
}

func parseStatus(request mcp.CallToolRequest) (models.TaskStatus, error) {
	switch s := models.TaskStatus(request.GetString("status", string(models.StatusPending))); s {
	case models.StatusPending, models.StatusCompleted, models.StatusAll:
		return s, nil
	default:
		return "", fmt.Errorf("status must be pending, completed or all, got %q", s)
	}
}

func jsonResult(response map[string]interface{}) (*mcp.CallToolResult, error) {
	responseJSON, err := json.Marshal(response)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to marshal response: %v", err)), nil
	}
	return mcp.NewToolResultText(string(responseJSON)), nil
}
