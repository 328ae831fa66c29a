// ABOUTME: Conversation turn types shared by the dispatcher and the conversation log
// ABOUTME: ConversationTurn is the in-memory history entry, Exchange is the persisted pair
package models

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Role identifies who produced a conversation turn
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// ConversationTurn is one entry of the dispatcher's rolling history
type ConversationTurn struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// Exchange is a persisted (input, response) pair from the append-only conversation log
type Exchange struct {
	TurnID    string    `json:"turn_id" yaml:"turn_id"`
	UserID    string    `json:"user_id" yaml:"user_id"`
	Input     string    `json:"input" yaml:"input"`
	Response  string    `json:"response" yaml:"response"`
	Timestamp time.Time `json:"timestamp" yaml:"timestamp"`
}

// NewExchange creates an Exchange with a generated turn id
func NewExchange(userID, input, response string) (*Exchange, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, errors.New("user id cannot be empty")
	}
	return &Exchange{
		TurnID:    generateTurnID(),
		UserID:    userID,
		Input:     input,
		Response:  response,
		Timestamp: time.Now().UTC(),
	}, nil
}

// generateTurnID generates a unique turn identifier
func generateTurnID() string {
	return fmt.Sprintf("turn_%s_%s", time.Now().Format("20060102_150405"), uuid.New().String()[:8])
}
