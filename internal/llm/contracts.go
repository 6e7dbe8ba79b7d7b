package llm

import "context"

// Prompt is one chat exchange: a fixed system instruction and the user content.
type Prompt struct {
	System string
	User   string
}

// Provider is one language-model backend. Complete returns the raw assistant message;
// decoding and validation happen in StructuredExtractor so every provider yields the
// same output shape.
type Provider interface {
	Name() string
	Complete(ctx context.Context, p Prompt) (string, error)
}

// ChatMessage and ChatResponse are the chat-completions wire shapes shared by the
// OpenAI-compatible providers.
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type ChatResponse struct {
	Choices []struct {
		Message ChatMessage `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
		Code    any    `json:"code"`
	} `json:"error,omitempty"`
}

// Messages renders p as a system + user message pair.
func (p Prompt) Messages() []ChatMessage {
	return []ChatMessage{
		{Role: "system", Content: p.System},
		{Role: "user", Content: p.User},
	}
}
