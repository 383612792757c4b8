package rpc

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/oklog/ulid/v2"
	"go.opentelemetry.io/otel/trace"

	"agent-gateway/internal/catalog"
	"agent-gateway/internal/domain"
	"agent-gateway/internal/infra/tracer"
)

// Method names served by the dispatcher.
const (
	MethodListAgents  = "list_agents"
	MethodProcessText = "process_text"
)

// confidenceScore is a fixed placeholder in the result contract; nothing
// computes it.
const confidenceScore = 0.95

// ListAgentsResult is the result of the list_agents method.
type ListAgentsResult struct {
	Agents []domain.Agent `json:"agents"`
}

// ProcessTextParams are the parameters of the process_text method.
type ProcessTextParams struct {
	AgentID             string           `json:"agent_id"`
	UserText            string           `json:"user_text"`
	ConversationHistory []domain.Message `json:"conversation_history,omitempty"`
}

// ProcessingMetadata describes one completed process_text call.
type ProcessingMetadata struct {
	Model            string  `json:"model"`
	TokensUsed       *int    `json:"tokens_used,omitempty"`
	ProcessingTimeMs int64   `json:"processing_time_ms"`
	Confidence       float64 `json:"confidence"`
}

// ProcessTextResult is the result of the process_text method.
type ProcessTextResult struct {
	AgentID   string             `json:"agent_id"`
	ReplyText string             `json:"reply_text"`
	Metadata  ProcessingMetadata `json:"metadata"`
}

// Dispatcher routes JSON-RPC requests to the catalog and the active
// completion provider. It holds no per-request state; everything shared is
// read-only after construction, so concurrent dispatch needs no locking.
type Dispatcher struct {
	catalog  *catalog.Catalog
	provider domain.CompletionProvider
	timeout  time.Duration // 0 = no per-request bound
	logger   *slog.Logger
	metrics  *Metrics
}

// NewDispatcher wires the dispatcher with its collaborators. The provider is
// the one resolved at startup; tests inject stubs here.
func NewDispatcher(cat *catalog.Catalog, provider domain.CompletionProvider, timeout time.Duration, logger *slog.Logger, metrics *Metrics) *Dispatcher {
	return &Dispatcher{
		catalog:  cat,
		provider: provider,
		timeout:  timeout,
		logger:   logger,
		metrics:  metrics,
	}
}

// ProviderName reports the active provider, for the status endpoint.
func (d *Dispatcher) ProviderName() string { return d.provider.Name() }

// AgentCount reports the catalog size, for the status endpoint.
func (d *Dispatcher) AgentCount() int { return d.catalog.Len() }

// Dispatch handles one JSON-RPC request and always produces a well-formed
// response envelope with the original id echoed. Business errors never
// escape as Go errors; they become JSON-RPC error objects.
func (d *Dispatcher) Dispatch(ctx context.Context, req Request) Response {
	reqID := ulid.Make().String()
	ctx, span := tracer.StartSpan(ctx, "rpc.dispatch",
		trace.WithAttributes(tracer.StringAttr("rpc.method", req.Method)),
	)
	defer span.End()

	d.metrics.RequestsTotal.Add(1)
	d.logger.Info("rpc request", "req", reqID, "method", req.Method)

	if req.Jsonrpc != Version {
		d.metrics.ClientErrorsTotal.Add(1)
		return errorResponse(req.ID, CodeInvalidRequest, "Invalid Request: jsonrpc must be '2.0'", nil)
	}

	switch req.Method {
	case MethodListAgents:
		return d.listAgents(req)
	case MethodProcessText:
		return d.processText(ctx, reqID, req)
	default:
		d.metrics.ClientErrorsTotal.Add(1)
		return errorResponse(req.ID, CodeMethodNotFound, fmt.Sprintf("Method not found: %s", req.Method), nil)
	}
}

// listAgents returns the full catalog. Cannot fail once routed.
func (d *Dispatcher) listAgents(req Request) Response {
	return resultResponse(req.ID, ListAgentsResult{Agents: d.catalog.List()})
}

func (d *Dispatcher) processText(ctx context.Context, reqID string, req Request) Response {
	if len(req.Params) == 0 {
		d.metrics.ClientErrorsTotal.Add(1)
		return errorResponse(req.ID, CodeInvalidParams, "Invalid params: agent_id and user_text are required", nil)
	}

	var params ProcessTextParams
	if err := json.Unmarshal(req.Params, &params); err != nil {
		d.metrics.ClientErrorsTotal.Add(1)
		return errorResponse(req.ID, CodeInvalidParams, fmt.Sprintf("Invalid params: %v", err), nil)
	}
	if params.AgentID == "" {
		d.metrics.ClientErrorsTotal.Add(1)
		return errorResponse(req.ID, CodeInvalidParams, "Invalid params: agent_id is required", nil)
	}
	if params.UserText == "" {
		d.metrics.ClientErrorsTotal.Add(1)
		return errorResponse(req.ID, CodeInvalidParams, "Invalid params: user_text is required", nil)
	}

	agent, ok := d.catalog.Find(params.AgentID)
	if !ok {
		d.metrics.ClientErrorsTotal.Add(1)
		return errorResponse(req.ID, CodeInvalidParams, fmt.Sprintf("Agent not found: %s", params.AgentID), nil)
	}

	if d.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, d.timeout)
		defer cancel()
	}

	start := time.Now()
	outcome, err := d.provider.Complete(ctx, domain.CompletionRequest{
		Model:        agent.Model,
		SystemPrompt: agent.SystemPrompt,
		UserText:     params.UserText,
		History:      params.ConversationHistory,
	})
	if err != nil {
		d.metrics.InternalErrorsTotal.Add(1)
		d.logger.Error("completion failed", "req", reqID, "agent", agent.ID, "error", err)
		// The message stays generic; transport/auth detail is confined to
		// the data field and logs.
		return errorResponse(req.ID, CodeInternalError, "Internal error: processing failed",
			map[string]string{"details": err.Error()})
	}

	elapsed := time.Since(start).Milliseconds()
	d.metrics.CompletionsTotal.Add(1)
	d.logger.Info("rpc done", "req", reqID, "agent", agent.ID, "elapsed_ms", elapsed)

	return resultResponse(req.ID, ProcessTextResult{
		AgentID:   params.AgentID,
		ReplyText: outcome.ReplyText,
		Metadata: ProcessingMetadata{
			Model:            agent.Model,
			TokensUsed:       outcome.TokensUsed,
			ProcessingTimeMs: elapsed,
			Confidence:       confidenceScore,
		},
	})
}
