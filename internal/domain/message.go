package domain

// Role constants for conversation history entries.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message is a single turn of caller-supplied conversation history.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// CompletionRequest is handed to a CompletionProvider for one turn.
// History is read-only and may be nil.
type CompletionRequest struct {
	Model        string    `json:"model,omitempty"`
	SystemPrompt string    `json:"system_prompt,omitempty"`
	UserText     string    `json:"user_text"`
	History      []Message `json:"history,omitempty"`
}

// CompletionOutcome is the normalized result of a provider call.
// TokensUsed is nil when the backend did not report usage.
type CompletionOutcome struct {
	ReplyText  string `json:"reply_text"`
	TokensUsed *int   `json:"tokens_used,omitempty"`
}
