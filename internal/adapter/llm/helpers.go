package llm

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"go.opentelemetry.io/otel/trace"

	"agent-gateway/internal/domain"
	"agent-gateway/internal/infra/tracer"
)

// maxResponseBody is the maximum response body size we read from completion APIs.
const maxResponseBody = 10 * 1024 * 1024 // 10 MB

// doJSONRequest performs a JSON POST and returns the response body, with
// failures classified per the provider error taxonomy: connection-level
// failures are ErrTransport, non-2xx statuses are ErrRemote carrying the
// status code and raw body. Callers classify schema failures as ErrDecode.
func doJSONRequest(ctx context.Context, provider string, client *http.Client, url string, body []byte, headers map[string]string) ([]byte, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, domain.NewProviderError(provider, domain.ErrTransport, fmt.Sprintf("create request: %v", err))
	}

	httpReq.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		httpReq.Header.Set(k, v)
	}

	httpResp, err := client.Do(httpReq)
	if err != nil {
		return nil, domain.NewProviderError(provider, domain.ErrTransport, fmt.Sprintf("http request: %v", err))
	}
	defer httpResp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(httpResp.Body, maxResponseBody))
	if err != nil {
		return nil, domain.NewProviderError(provider, domain.ErrTransport, fmt.Sprintf("read response: %v", err))
	}

	if httpResp.StatusCode < 200 || httpResp.StatusCode > 299 {
		perr := domain.NewProviderError(provider, domain.ErrRemote, "completion API error")
		perr.StatusCode = httpResp.StatusCode
		perr.Body = string(respBody)
		return nil, perr
	}

	return respBody, nil
}

// decodeError builds the ErrDecode classification carrying the parse failure
// and the raw body for diagnostics.
func decodeError(provider string, cause error, body []byte) error {
	perr := domain.NewProviderError(provider, domain.ErrDecode, cause.Error())
	perr.Body = string(body)
	return perr
}

// logCompletionDone logs the standard debug message after a successful call.
func logCompletionDone(logger *slog.Logger, providerName string, outcome *domain.CompletionOutcome) {
	tokens := 0
	if outcome.TokensUsed != nil {
		tokens = *outcome.TokensUsed
	}
	logger.Debug("completion done",
		"provider", providerName,
		"tokens", tokens,
	)
}

// setOutcomeAttrs adds completion attributes to a trace span.
func setOutcomeAttrs(span trace.Span, outcome *domain.CompletionOutcome) {
	if outcome.TokensUsed != nil {
		span.SetAttributes(tracer.IntAttr("llm.tokens_used", *outcome.TokensUsed))
	}
	span.SetAttributes(tracer.IntAttr("llm.reply_bytes", len(outcome.ReplyText)))
}
