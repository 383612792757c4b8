package llm

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"agent-gateway/internal/domain"
	"agent-gateway/internal/infra/config"
)

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestOpenAIProviderComplete(t *testing.T) {
	var gotReq openaiRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		if r.Header.Get("Authorization") != "Bearer test-key" {
			t.Errorf("unexpected auth: %s", r.Header.Get("Authorization"))
		}
		if r.Header.Get("Content-Type") != "application/json" {
			t.Errorf("unexpected content-type: %s", r.Header.Get("Content-Type"))
		}
		if err := json.NewDecoder(r.Body).Decode(&gotReq); err != nil {
			t.Errorf("decode request: %v", err)
		}

		resp := openaiResponse{
			ID:    "chatcmpl-123",
			Model: "llama-3.3-70b-versatile",
			Choices: []openaiChoice{
				{
					Index:        0,
					Message:      &openaiMessage{Role: "assistant", Content: "Hello! How can I help?"},
					FinishReason: "stop",
				},
			},
			Usage: &openaiUsage{PromptTokens: 10, CompletionTokens: 8, TotalTokens: 18},
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(resp)
	}))
	defer server.Close()

	provider := NewOpenAIProvider(config.ProviderConfig{
		Name:        "groq",
		BaseURL:     server.URL,
		APIKey:      "test-key",
		Model:       "llama-3.3-70b-versatile",
		Temperature: 0.7,
		MaxTokens:   1024,
	}, newTestLogger())

	outcome, err := provider.Complete(context.Background(), domain.CompletionRequest{
		SystemPrompt: "You are helpful.",
		UserText:     "Hello",
		History: []domain.Message{
			{Role: domain.RoleUser, Content: "earlier question"},
			{Role: domain.RoleAssistant, Content: "earlier answer"},
		},
	})
	if err != nil {
		t.Fatalf("Complete: %v", err)
	}

	if outcome.ReplyText != "Hello! How can I help?" {
		t.Errorf("ReplyText = %q", outcome.ReplyText)
	}
	if outcome.TokensUsed == nil || *outcome.TokensUsed != 18 {
		t.Errorf("TokensUsed = %v, want 18", outcome.TokensUsed)
	}

	// Wire shape: [system] ++ history (roles preserved) ++ [user].
	wantRoles := []string{"system", "user", "assistant", "user"}
	if len(gotReq.Messages) != len(wantRoles) {
		t.Fatalf("sent %d messages, want %d", len(gotReq.Messages), len(wantRoles))
	}
	for i, role := range wantRoles {
		if gotReq.Messages[i].Role != role {
			t.Errorf("message[%d].Role = %q, want %q", i, gotReq.Messages[i].Role, role)
		}
	}
	if gotReq.Messages[3].Content != "Hello" {
		t.Errorf("last message content = %q, want Hello", gotReq.Messages[3].Content)
	}
	if gotReq.Model != "llama-3.3-70b-versatile" {
		t.Errorf("Model = %q", gotReq.Model)
	}
	if gotReq.Temperature == nil || *gotReq.Temperature != 0.7 {
		t.Errorf("Temperature = %v, want 0.7", gotReq.Temperature)
	}
	if gotReq.MaxTokens != 1024 {
		t.Errorf("MaxTokens = %d, want 1024", gotReq.MaxTokens)
	}
}

func TestOpenAIProviderNoUsage(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `{"id":"x","choices":[{"index":0,"message":{"role":"assistant","content":"ok"}}]}`)
	}))
	defer server.Close()

	provider := NewOpenAIProvider(config.ProviderConfig{Name: "groq", BaseURL: server.URL}, newTestLogger())

	outcome, err := provider.Complete(context.Background(), domain.CompletionRequest{UserText: "hi"})
	if err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if outcome.TokensUsed != nil {
		t.Errorf("TokensUsed = %v, want nil when usage absent", outcome.TokensUsed)
	}
}

func TestOpenAIProviderMissingChoiceIsDecodeError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `{"id":"x","choices":[]}`)
	}))
	defer server.Close()

	provider := NewOpenAIProvider(config.ProviderConfig{Name: "groq", BaseURL: server.URL}, newTestLogger())

	_, err := provider.Complete(context.Background(), domain.CompletionRequest{UserText: "hi"})
	if !errors.Is(err, domain.ErrDecode) {
		t.Fatalf("err = %v, want ErrDecode", err)
	}
}

func TestOpenAIProviderMalformedJSONIsDecodeError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `{{{`)
	}))
	defer server.Close()

	provider := NewOpenAIProvider(config.ProviderConfig{Name: "groq", BaseURL: server.URL}, newTestLogger())

	_, err := provider.Complete(context.Background(), domain.CompletionRequest{UserText: "hi"})
	if !errors.Is(err, domain.ErrDecode) {
		t.Fatalf("err = %v, want ErrDecode", err)
	}
	var perr *domain.ProviderError
	if !errors.As(err, &perr) || perr.Body == "" {
		t.Errorf("decode error missing raw body: %v", err)
	}
}

func TestOpenAIProviderRemoteError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		io.WriteString(w, `{"error":"rate limited"}`)
	}))
	defer server.Close()

	provider := NewOpenAIProvider(config.ProviderConfig{Name: "groq", BaseURL: server.URL}, newTestLogger())

	_, err := provider.Complete(context.Background(), domain.CompletionRequest{UserText: "hi"})
	if !errors.Is(err, domain.ErrRemote) {
		t.Fatalf("err = %v, want ErrRemote", err)
	}
	var perr *domain.ProviderError
	if !errors.As(err, &perr) {
		t.Fatalf("err is not a ProviderError: %v", err)
	}
	if perr.StatusCode != http.StatusTooManyRequests {
		t.Errorf("StatusCode = %d, want 429", perr.StatusCode)
	}
	if perr.Body != `{"error":"rate limited"}` {
		t.Errorf("Body = %q", perr.Body)
	}
}

func TestOpenAIProviderTransportError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close() // connection refused

	provider := NewOpenAIProvider(config.ProviderConfig{Name: "groq", BaseURL: server.URL}, newTestLogger())

	_, err := provider.Complete(context.Background(), domain.CompletionRequest{UserText: "hi"})
	if !errors.Is(err, domain.ErrTransport) {
		t.Fatalf("err = %v, want ErrTransport", err)
	}
}
