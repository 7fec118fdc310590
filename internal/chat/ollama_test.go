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

func TestOllamaClient_New(t *testing.T) {
	c := NewOllamaClient("", 0)

	if c.baseURL != DefaultOllamaURL {
		t.Errorf("expected default base URL, got %q", c.baseURL)
	}
	if c.client == nil || c.client.Timeout != DefaultTimeout {
		t.Error("expected HTTP client with default timeout")
	}

	c = NewOllamaClient("http://ollama:11434/", time.Second)
	if c.baseURL != "http://ollama:11434" {
		t.Errorf("expected trailing slash trimmed, got %q", c.baseURL)
	}
}

func TestOllamaClient_Complete_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/chat" {
			t.Errorf("expected path /api/chat, got %s", r.URL.Path)
		}

		var req ollamaChatRequest
		json.NewDecoder(r.Body).Decode(&req)

		if req.Model != "llama3.1" {
			t.Errorf("expected model 'llama3.1', got %q", req.Model)
		}
		if req.Stream {
			t.Error("expected stream=false")
		}
		if len(req.Messages) != 1 || req.Messages[0].Role != "user" || req.Messages[0].Content != "Why is the sky blue?" {
			t.Errorf("unexpected messages: %+v", req.Messages)
		}

		json.NewEncoder(w).Encode(ollamaChatResponse{
			Model:   "llama3.1",
			Message: ollamaMessage{Role: "assistant", Content: "<think>short</think>\nRayleigh scattering."},
			Done:    true,
		})
	}))
	defer server.Close()

	c := NewOllamaClient(server.URL, time.Second)

	got, err := c.Complete(context.Background(), "llama3.1", "Why is the sky blue?")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "Rayleigh scattering." {
		t.Errorf("expected cleaned answer, got %q", got)
	}
}

func TestOllamaClient_Complete_ModelNotFound(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"error":"model \"nope\" not found, try pulling it first"}`))
	}))
	defer server.Close()

	c := NewOllamaClient(server.URL, time.Second)

	_, err := c.Complete(context.Background(), "nope", "hi")
	if !errors.Is(err, ErrModelNotFound) {
		t.Fatalf("expected ErrModelNotFound, got %v", err)
	}

	var svcErr *ServiceError
	if !errors.As(err, &svcErr) {
		t.Fatal("expected *ServiceError")
	}
	if svcErr.StatusCode != http.StatusNotFound {
		t.Errorf("expected status 404, got %d", svcErr.StatusCode)
	}
	if svcErr.Err == nil || svcErr.Err.Error() != `model "nope" not found, try pulling it first` {
		t.Errorf("expected daemon error message, got %v", svcErr.Err)
	}
}

func TestOllamaClient_Complete_ServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer server.Close()

	c := NewOllamaClient(server.URL, time.Second)

	_, err := c.Complete(context.Background(), "llama3.1", "hi")
	if !errors.Is(err, ErrUnavailable) {
		t.Fatalf("expected ErrUnavailable, got %v", err)
	}
}

func TestOllamaClient_Complete_InvalidJSON(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("not json"))
	}))
	defer server.Close()

	c := NewOllamaClient(server.URL, time.Second)

	_, err := c.Complete(context.Background(), "llama3.1", "hi")
	if !errors.Is(err, ErrBadResponse) {
		t.Fatalf("expected ErrBadResponse, got %v", err)
	}
}

func TestOllamaClient_Complete_Unreachable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := server.URL
	server.Close()

	c := NewOllamaClient(url, time.Second)

	_, err := c.Complete(context.Background(), "llama3.1", "hi")
	if !errors.Is(err, ErrUnavailable) {
		t.Fatalf("expected ErrUnavailable, got %v", err)
	}
}

func TestOllamaClient_Complete_Timeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	defer server.Close()

	c := NewOllamaClient(server.URL, 50*time.Millisecond)

	_, err := c.Complete(context.Background(), "llama3.1", "hi")
	if !errors.Is(err, ErrTimeout) {
		t.Fatalf("expected ErrTimeout, got %v", err)
	}
}

func TestOllamaClient_ListModels(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/tags" {
			t.Errorf("expected path /api/tags, got %s", r.URL.Path)
		}
		w.Write([]byte(`{"models":[{"name":"llama3.1:latest"},{"name":"qwen2.5:3b"}]}`))
	}))
	defer server.Close()

	c := NewOllamaClient(server.URL, time.Second)

	models, err := c.ListModels(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(models) != 2 || models[0] != "llama3.1:latest" || models[1] != "qwen2.5:3b" {
		t.Errorf("unexpected models: %v", models)
	}
	if err := c.IsAvailable(context.Background()); err != nil {
		t.Errorf("expected available, got %v", err)
	}
}

func TestOllamaClientInterfaces(t *testing.T) {
	var _ Client = (*OllamaClient)(nil)
	var _ ModelLister = (*OllamaClient)(nil)
	var _ Checker = (*OllamaClient)(nil)
}
