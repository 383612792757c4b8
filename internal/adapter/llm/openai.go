package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"go.opentelemetry.io/otel/trace"

	"agent-gateway/internal/domain"
	"agent-gateway/internal/infra/config"
	"agent-gateway/internal/infra/tracer"
)

// OpenAIProvider implements domain.CompletionProvider for any
// OpenAI-compatible chat-completions API (Groq in the default config).
// It is the primary backend: the configured model and decoding parameters
// apply, and history roles pass through unchanged.
type OpenAIProvider struct {
	name        string
	model       string
	apiKey      string
	baseURL     string
	temperature float64
	maxTokens   int
	client      *http.Client
	logger      *slog.Logger
}

// NewOpenAIProvider creates a provider with configured timeouts.
func NewOpenAIProvider(cfg config.ProviderConfig, logger *slog.Logger) *OpenAIProvider {
	baseURL := strings.TrimRight(cfg.BaseURL, "/")
	if baseURL == "" {
		baseURL = "https://api.groq.com/openai/v1"
	}

	return &OpenAIProvider{
		name:        cfg.Name,
		model:       cfg.Model,
		apiKey:      cfg.APIKey,
		baseURL:     baseURL,
		temperature: cfg.Temperature,
		maxTokens:   cfg.MaxTokens,
		client:      NewHTTPClient(cfg),
		logger:      logger,
	}
}

// Complete implements domain.CompletionProvider.
func (p *OpenAIProvider) Complete(ctx context.Context, req domain.CompletionRequest) (*domain.CompletionOutcome, error) {
	ctx, span := tracer.StartSpan(ctx, "llm.complete",
		trace.WithAttributes(
			tracer.StringAttr("llm.provider", p.name),
			tracer.StringAttr("llm.model", p.model),
		),
	)
	defer span.End()

	body, err := json.Marshal(p.toWireRequest(req))
	if err != nil {
		tracer.RecordError(span, err)
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	headers := map[string]string{}
	if p.apiKey != "" {
		headers["Authorization"] = "Bearer " + p.apiKey
	}

	respBody, err := doJSONRequest(ctx, p.name, p.client, p.baseURL+"/chat/completions", body, headers)
	if err != nil {
		tracer.RecordError(span, err)
		return nil, err
	}

	var oaiResp openaiResponse
	if err := json.Unmarshal(respBody, &oaiResp); err != nil {
		err = decodeError(p.name, err, respBody)
		tracer.RecordError(span, err)
		return nil, err
	}

	outcome, err := fromOpenAIResponse(p.name, oaiResp, respBody)
	if err != nil {
		tracer.RecordError(span, err)
		return nil, err
	}

	setOutcomeAttrs(span, outcome)
	tracer.SetOK(span)
	logCompletionDone(p.logger, p.name, outcome)

	return outcome, nil
}

// Name implements domain.CompletionProvider.
func (p *OpenAIProvider) Name() string { return p.name }

// --- OpenAI API wire types ---

type openaiRequest struct {
	Model       string          `json:"model"`
	Messages    []openaiMessage `json:"messages"`
	MaxTokens   int             `json:"max_tokens,omitempty"`
	Temperature *float64        `json:"temperature,omitempty"`
}

type openaiMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type openaiResponse struct {
	ID      string         `json:"id"`
	Model   string         `json:"model"`
	Choices []openaiChoice `json:"choices"`
	Usage   *openaiUsage   `json:"usage,omitempty"`
}

type openaiChoice struct {
	Index        int            `json:"index"`
	Message      *openaiMessage `json:"message"`
	FinishReason string         `json:"finish_reason"`
}

type openaiUsage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// toWireRequest builds the flat message list:
// [system] ++ history (roles preserved 1:1) ++ [current user message].
func (p *OpenAIProvider) toWireRequest(req domain.CompletionRequest) openaiRequest {
	msgs := make([]openaiMessage, 0, len(req.History)+2)
	if req.SystemPrompt != "" {
		msgs = append(msgs, openaiMessage{Role: "system", Content: req.SystemPrompt})
	}
	for _, m := range req.History {
		msgs = append(msgs, openaiMessage{Role: m.Role, Content: m.Content})
	}
	msgs = append(msgs, openaiMessage{Role: domain.RoleUser, Content: req.UserText})

	oaiReq := openaiRequest{
		Model:    p.model,
		Messages: msgs,
	}
	if p.maxTokens > 0 {
		oaiReq.MaxTokens = p.maxTokens
	}
	if p.temperature > 0 {
		t := p.temperature
		oaiReq.Temperature = &t
	}
	return oaiReq
}

func fromOpenAIResponse(provider string, resp openaiResponse, raw []byte) (*domain.CompletionOutcome, error) {
	if len(resp.Choices) == 0 || resp.Choices[0].Message == nil {
		return nil, decodeError(provider, fmt.Errorf("no completion choice in response"), raw)
	}

	outcome := &domain.CompletionOutcome{
		ReplyText: resp.Choices[0].Message.Content,
	}
	// Usage is optional; its absence is not an error.
	if resp.Usage != nil {
		tokens := resp.Usage.TotalTokens
		outcome.TokensUsed = &tokens
	}
	return outcome, nil
}
