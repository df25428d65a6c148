// Package llm abstracts the chat-completion providers used for document
// classification, metadata extraction, and coverage adjudication.
package llm

import "context"

// Provider is a chat-completion backend. Every pipeline call goes through
// Complete with JSONMode set, since all prompts in this system demand a
// structured JSON reply.
type Provider interface {
	Complete(ctx context.Context, req CompletionRequest) (*CompletionResponse, error)
	// Name identifies the backend in logs and errors.
	Name() string
}

// Role tags a conversation message.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is one turn of a conversation.
type Message struct {
	Role    Role
	Content string
}

// CompletionRequest carries the prompt and sampling parameters for one call.
// An empty Model falls back to the provider's default.
type CompletionRequest struct {
	Model       string
	Messages    []Message
	MaxTokens   int
	Temperature float64
	JSONMode    bool
}

// CompletionResponse is the provider's reply plus usage accounting.
type CompletionResponse struct {
	Content      string
	InputTokens  int
	OutputTokens int
	Model        string
	FinishReason string
}
