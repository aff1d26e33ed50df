// Package reply defines the contract with the external reply generator.
package reply

import (
	"context"
	"time"
)

// Role identifies the author of a history message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is one prior turn handed to the generator as context.
type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// Request carries everything the generator needs for one reply.
type Request struct {
	SystemPrompt string    `json:"system_prompt"`
	History      []Message `json:"history,omitempty"`
	Message      string    `json:"message"`
}

// Result is the generator's answer plus usage metadata.
type Result struct {
	Reply          string        `json:"reply"`
	Model          string        `json:"model"`
	TokensUsed     int           `json:"tokens_used"`
	ProcessingTime time.Duration `json:"processing_time"`
}

// Generator produces assistant replies. Implementations must honor context
// cancellation; callers wrap calls in a timeout and persist nothing on
// failure.
type Generator interface {
	Generate(ctx context.Context, req Request) (*Result, error)
}
