// Package catalog holds the fixed table of agent personas served by the
// gateway. The table is seed data constructed once at startup; there is no
// mutation API, so concurrent reads need no locking.
package catalog

import "agent-gateway/internal/domain"

// Catalog is an immutable, ordered set of agents with id lookup.
type Catalog struct {
	agents []domain.Agent
	byID   map[string]int
}

// New builds the catalog from the built-in seed agents.
func New() *Catalog {
	return fromAgents(seedAgents())
}

func fromAgents(agents []domain.Agent) *Catalog {
	byID := make(map[string]int, len(agents))
	for i, a := range agents {
		byID[a.ID] = i
	}
	return &Catalog{agents: agents, byID: byID}
}

// List returns all agents in stable order. The returned slice is a copy;
// callers may not mutate catalog state through it.
func (c *Catalog) List() []domain.Agent {
	out := make([]domain.Agent, len(c.agents))
	copy(out, c.agents)
	return out
}

// Find returns the agent with the given id, or false if absent.
func (c *Catalog) Find(id string) (domain.Agent, bool) {
	i, ok := c.byID[id]
	if !ok {
		return domain.Agent{}, false
	}
	return c.agents[i], true
}

// Len returns the number of agents.
func (c *Catalog) Len() int { return len(c.agents) }

func seedAgents() []domain.Agent {
	return []domain.Agent{
		{
			ID:           "agent_001",
			Name:         "General Assistant",
			Description:  "A helpful general-purpose AI assistant",
			Capabilities: []string{"text", "conversation", "reasoning"},
			Model:        "gemini-2.0-flash",
			SystemPrompt: "You are a helpful, friendly, and knowledgeable AI assistant. Provide clear, accurate, and concise responses.",
		},
		{
			ID:           "agent_002",
			Name:         "Web3 Expert",
			Description:  "Specialized in blockchain, Web3, and cryptocurrency technologies",
			Capabilities: []string{"web3", "crypto", "blockchain", "nft"},
			Model:        "gemini-2.0-flash",
			SystemPrompt: "You are a Web3 and blockchain expert. Help users understand cryptocurrency, NFTs, smart contracts, DeFi, and related technologies. Provide accurate technical information and practical guidance.",
		},
		{
			ID:           "agent_003",
			Name:         "Voice Specialist",
			Description:  "Optimized for natural voice conversations and audio interactions",
			Capabilities: []string{"voice", "audio", "conversation"},
			Model:        "gemini-2.0-flash",
			SystemPrompt: "You are an AI assistant optimized for voice interactions. Respond in a natural, conversational tone suitable for speech. Keep responses concise and easy to understand when spoken aloud.",
		},
		{
			ID:           "agent_004",
			Name:         "Code Assistant",
			Description:  "Expert in programming, software development, and technical problem-solving",
			Capabilities: []string{"coding", "debugging", "technical"},
			Model:        "gemini-2.0-flash",
			SystemPrompt: "You are an expert programming assistant. Help users with code, debugging, architecture, and technical decisions. Provide clear explanations and working code examples.",
		},
	}
}
