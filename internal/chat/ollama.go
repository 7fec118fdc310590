package chat

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/valpere/frank/internal/postprocess"
)

const DefaultOllamaURL = "http://localhost:11434"

// OllamaClient talks to a local Ollama daemon through its /api/chat endpoint.
type OllamaClient struct {
	baseURL string
	client  *http.Client
}

type ollamaMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type ollamaChatRequest struct {
	Model    string          `json:"model"`
	Messages []ollamaMessage `json:"messages"`
	Stream   bool            `json:"stream"`
}

type ollamaChatResponse struct {
	Model   string        `json:"model"`
	Message ollamaMessage `json:"message"`
	Done    bool          `json:"done"`
}

type ollamaErrorResponse struct {
	Error string `json:"error"`
}

type ollamaTagsResponse struct {
	Models []struct {
		Name string `json:"name"`
	} `json:"models"`
}

// NewOllamaClient creates a client for the Ollama daemon at baseURL.
func NewOllamaClient(baseURL string, timeout time.Duration) *OllamaClient {
	if baseURL == "" {
		baseURL = DefaultOllamaURL
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &OllamaClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: timeout},
	}
}

func (c *OllamaClient) Name() string {
	return ProviderOllama
}

// Complete sends prompt as a single user message and returns the cleaned
// assistant reply.
func (c *OllamaClient) Complete(ctx context.Context, model, prompt string) (string, error) {
	reqBody := ollamaChatRequest{
		Model:    model,
		Messages: []ollamaMessage{{Role: "user", Content: prompt}},
		Stream:   false,
	}

	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("failed to marshal chat request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/chat", bytes.NewBuffer(jsonData))
	if err != nil {
		return "", fmt.Errorf("failed to create chat request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return "", transportError(c.Name(), model, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", statusError(c.Name(), model, resp.StatusCode, readOllamaError(resp.Body))
	}

	var chatResp ollamaChatResponse
	if err := json.NewDecoder(resp.Body).Decode(&chatResp); err != nil {
		return "", badResponse(c.Name(), model, fmt.Errorf("failed to decode chat response: %w", err))
	}

	return postprocess.Clean(chatResp.Message.Content), nil
}

// IsAvailable reports whether the daemon answers at all.
func (c *OllamaClient) IsAvailable(ctx context.Context) error {
	_, err := c.ListModels(ctx)
	return err
}

// ListModels returns the names of locally pulled models.
func (c *OllamaClient) ListModels(ctx context.Context) ([]string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/tags", nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create tags request: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, transportError(c.Name(), "", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &ServiceError{Provider: c.Name(), Kind: KindUnavailable, StatusCode: resp.StatusCode}
	}

	var tags ollamaTagsResponse
	if err := json.NewDecoder(resp.Body).Decode(&tags); err != nil {
		return nil, badResponse(c.Name(), "", fmt.Errorf("failed to decode tags response: %w", err))
	}

	names := make([]string, 0, len(tags.Models))
	for _, m := range tags.Models {
		names = append(names, m.Name)
	}
	return names, nil
}

func readOllamaError(body io.Reader) string {
	data, err := io.ReadAll(io.LimitReader(body, 4096))
	if err != nil || len(data) == 0 {
		return ""
	}
	var errResp ollamaErrorResponse
	if json.Unmarshal(data, &errResp) == nil && errResp.Error != "" {
		return errResp.Error
	}
	return strings.TrimSpace(string(data))
}
