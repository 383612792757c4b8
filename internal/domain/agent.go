package domain

// Agent is a named assistant persona: a backend model identifier plus the
// system prompt that defines its behavior.
type Agent struct {
	ID           string   `json:"id"`
	Name         string   `json:"name"`
	Description  string   `json:"description"`
	Capabilities []string `json:"capabilities"`
	Model        string   `json:"model"`
	SystemPrompt string   `json:"system_prompt"`
}
