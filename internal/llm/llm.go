package llm

import "context"

const (
	// NoResponse is returned when the endpoint answers with zero choices.
	NoResponse = "No response received"
	// EmptyResponse is returned when the first choice has no text.
	EmptyResponse = "Empty response"

	// SystemPrompt is sent ahead of every document prompt.
	SystemPrompt = "You are a helpful assistant. Analyze the provided content and give a comprehensive response."
)

// Client is a minimal chat-completion interface to allow pluggable providers.
type Client interface {
	Complete(ctx context.Context, prompt string) (string, error)
}
