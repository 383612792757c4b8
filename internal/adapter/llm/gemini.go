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

// noReplyText is returned when Gemini answers with an empty candidate list.
// That is a valid (if unhelpful) response, not a decode failure.
const noReplyText = "Sorry, I couldn't generate a response."

// GeminiProvider implements domain.CompletionProvider for the Google Gemini
// generateContent API. It is the fallback backend: the endpoint is
// parameterized by the requested model, history roles are remapped to
// Gemini's labels, and the system prompt travels in systemInstruction.
type GeminiProvider struct {
	name    string
	model   string
	apiKey  string
	baseURL string
	client  *http.Client
	logger  *slog.Logger
}

// NewGeminiProvider creates a provider for the Google Gemini API.
func NewGeminiProvider(cfg config.ProviderConfig, logger *slog.Logger) *GeminiProvider {
	baseURL := strings.TrimRight(cfg.BaseURL, "/")
	if baseURL == "" {
		baseURL = "https://generativelanguage.googleapis.com"
	}

	return &GeminiProvider{
		name:    cfg.Name,
		model:   cfg.Model,
		apiKey:  cfg.APIKey,
		baseURL: baseURL,
		client:  NewHTTPClient(cfg),
		logger:  logger,
	}
}

// Complete implements domain.CompletionProvider.
func (p *GeminiProvider) Complete(ctx context.Context, req domain.CompletionRequest) (*domain.CompletionOutcome, error) {
	model := req.Model
	if model == "" {
		model = p.model
	}

	ctx, span := tracer.StartSpan(ctx, "llm.complete",
		trace.WithAttributes(
			tracer.StringAttr("llm.provider", p.name),
			tracer.StringAttr("llm.model", model),
		),
	)
	defer span.End()

	body, err := json.Marshal(toGeminiRequest(req))
	if err != nil {
		tracer.RecordError(span, err)
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	url := fmt.Sprintf("%s/v1beta/models/%s:generateContent", p.baseURL, model)
	headers := map[string]string{"x-goog-api-key": p.apiKey}

	respBody, err := doJSONRequest(ctx, p.name, p.client, url, body, headers)
	if err != nil {
		tracer.RecordError(span, err)
		return nil, err
	}

	var gemResp geminiResponse
	if err := json.Unmarshal(respBody, &gemResp); err != nil {
		err = decodeError(p.name, err, respBody)
		tracer.RecordError(span, err)
		return nil, err
	}

	outcome := fromGeminiResponse(gemResp)
	setOutcomeAttrs(span, outcome)
	tracer.SetOK(span)
	logCompletionDone(p.logger, p.name, outcome)

	return outcome, nil
}

// Name implements domain.CompletionProvider.
func (p *GeminiProvider) Name() string { return p.name }

// --- Gemini API wire types ---

type geminiRequest struct {
	Contents          []geminiContent `json:"contents"`
	SystemInstruction *geminiContent  `json:"system_instruction,omitempty"`
}

type geminiContent struct {
	Role  string       `json:"role,omitempty"`
	Parts []geminiPart `json:"parts"`
}

type geminiPart struct {
	Text string `json:"text"`
}

type geminiResponse struct {
	Candidates    []geminiCandidate `json:"candidates"`
	UsageMetadata *geminiUsage      `json:"usageMetadata,omitempty"`
}

type geminiCandidate struct {
	Content geminiContent `json:"content"`
}

type geminiUsage struct {
	PromptTokenCount     int `json:"promptTokenCount"`
	CandidatesTokenCount int `json:"candidatesTokenCount"`
	TotalTokenCount      int `json:"totalTokenCount"`
}

// toGeminiRequest builds the contents list. History role "assistant" maps to
// Gemini's "model"; unrecognized roles are dropped rather than failing the
// whole request. The system prompt goes in systemInstruction, never in the
// message list.
func toGeminiRequest(req domain.CompletionRequest) geminiRequest {
	gemReq := geminiRequest{}

	if req.SystemPrompt != "" {
		gemReq.SystemInstruction = &geminiContent{
			Parts: []geminiPart{{Text: req.SystemPrompt}},
		}
	}

	for _, m := range req.History {
		var role string
		switch m.Role {
		case domain.RoleUser:
			role = "user"
		case domain.RoleAssistant:
			role = "model"
		default:
			continue
		}
		gemReq.Contents = append(gemReq.Contents, geminiContent{
			Role:  role,
			Parts: []geminiPart{{Text: m.Content}},
		})
	}

	gemReq.Contents = append(gemReq.Contents, geminiContent{
		Role:  "user",
		Parts: []geminiPart{{Text: req.UserText}},
	})

	return gemReq
}

func fromGeminiResponse(resp geminiResponse) *domain.CompletionOutcome {
	outcome := &domain.CompletionOutcome{ReplyText: noReplyText}

	if len(resp.Candidates) > 0 && len(resp.Candidates[0].Content.Parts) > 0 {
		outcome.ReplyText = resp.Candidates[0].Content.Parts[0].Text
	}
	if resp.UsageMetadata != nil {
		tokens := resp.UsageMetadata.TotalTokenCount
		outcome.TokensUsed = &tokens
	}
	return outcome
}
