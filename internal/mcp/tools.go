// ABOUTME: MCP tool definitions and registration for the yaan server
// ABOUTME: Exposes chat, the learned profile, tasks and proactive learning as six tools
package mcp

import (
	"github.com/harper/yaan/internal/core"
	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"
	"go.uber.org/zap"
)

var statusProperty = map[string]interface{}{
	"type":        "string",
	"description": "Which tasks to list: pending (default), completed or all",
	"enum":        []string{"pending", "completed", "all"},
	"default":     "pending",
}

// RegisterTools registers all MCP tools with the server
func RegisterTools(server *mcpserver.MCPServer, assistant *core.Dispatcher, logger *zap.Logger) *Handlers {
	handlers := NewHandlers(assistant, logger)

	// 1. chat - run one conversation turn
	server.AddTool(mcp.Tool{
		Name:        "chat",
		Description: "Send a message to the assistant. Handles reminders, todos, coding help and small talk, learns about the user, and may append a proactive question.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"message": map[string]interface{}{
					"type":        "string",
					"description": "User message",
				},
			},
			Required: []string{"message"},
		},
	}, handlers.Chat)

	// 2. get_user_profile - what has been learned so far
	server.AddTool(mcp.Tool{
		Name:        "get_user_profile",
		Description: "Get the learned user profile: facts, interests, communication style and message count.",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, handlers.GetUserProfile)

	// 3. list_reminders
	server.AddTool(mcp.Tool{
		Name:        "list_reminders",
		Description: "List reminders ordered by due date and time.",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{"status": statusProperty},
		},
	}, handlers.ListReminders)

	// 4. list_todos
	server.AddTool(mcp.Tool{
		Name:        "list_todos",
		Description: "List todos ordered by priority, then creation time.",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{"status": statusProperty},
		},
	}, handlers.ListTodos)

	// 5. learning_summary
	server.AddTool(mcp.Tool{
		Name:        "learning_summary",
		Description: "Report proactive learning progress: questions asked and answered, per category, and today's count against the daily limit.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"recent": map[string]interface{}{
					"type":        "number",
					"description": "How many recent questions to include (default: 5)",
					"default":     5,
				},
			},
		},
	}, handlers.LearningSummary)

	// 6. forget_me
	server.AddTool(mcp.Tool{
		Name:        "forget_me",
		Description: "Erase everything learned about the user. Tasks and the conversation log are kept.",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, handlers.ForgetMe)

	return handlers
}
