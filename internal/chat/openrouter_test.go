package chat

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestOpenRouterClient_Complete_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			t.Errorf("expected path /chat/completions, got %s", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer test-key" {
			t.Errorf("expected bearer auth, got %q", got)
		}

		var req openRouterRequest
		json.NewDecoder(r.Body).Decode(&req)
		if req.Model != "meta-llama/llama-3.1-8b-instruct:free" {
			t.Errorf("unexpected model %q", req.Model)
		}
		if len(req.Messages) != 1 || req.Messages[0]["content"] != "prompt" {
			t.Errorf("unexpected messages: %v", req.Messages)
		}

		w.Write([]byte(`{"choices":[{"message":{"content":"Refined response: answer"}}],"usage":{"total_tokens":3}}`))
	}))
	defer server.Close()

	c := NewOpenRouterClient("test-key", server.URL, time.Second)

	got, err := c.Complete(context.Background(), "meta-llama/llama-3.1-8b-instruct:free", "prompt")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "answer" {
		t.Errorf("expected 'answer', got %q", got)
	}
}

func TestOpenRouterClient_Complete_EmptyChoices(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"choices":[]}`))
	}))
	defer server.Close()

	c := NewOpenRouterClient("k", server.URL, time.Second)

	_, err := c.Complete(context.Background(), "m", "p")
	if !errors.Is(err, ErrBadResponse) {
		t.Fatalf("expected ErrBadResponse, got %v", err)
	}
}

func TestOpenRouterClient_Complete_Statuses(t *testing.T) {
	tests := []struct {
		name   string
		status int
		want   error
	}{
		{"not found", http.StatusNotFound, ErrModelNotFound},
		{"rate limited", http.StatusTooManyRequests, ErrUnavailable},
		{"gateway timeout", http.StatusGatewayTimeout, ErrTimeout},
		{"unauthorized", http.StatusUnauthorized, ErrBadResponse},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(`{"error":{"message":"nope"}}`))
			}))
			defer server.Close()

			c := NewOpenRouterClient("k", server.URL, time.Second)

			_, err := c.Complete(context.Background(), "m", "p")
			if !errors.Is(err, tt.want) {
				t.Errorf("expected %v, got %v", tt.want, err)
			}
		})
	}
}

func TestOpenRouterClient_ListModels(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/models" {
			t.Errorf("expected path /models, got %s", r.URL.Path)
		}
		w.Write([]byte(`{"data":[{"id":"a/b"},{"id":"c/d"}]}`))
	}))
	defer server.Close()

	c := NewOpenRouterClient("k", server.URL+"/", time.Second)

	models, err := c.ListModels(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(models) != 2 || models[1] != "c/d" {
		t.Errorf("unexpected models: %v", models)
	}
}
