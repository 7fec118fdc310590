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

const DefaultOpenRouterURL = "https://openrouter.ai/api/v1"

// OpenRouterClient calls the OpenRouter chat completions API.
type OpenRouterClient struct {
	apiKey  string
	baseURL string
	client  *http.Client
}

type openRouterRequest struct {
	Model     string              `json:"model"`
	Messages  []map[string]string `json:"messages"`
	MaxTokens int                 `json:"max_tokens,omitempty"`
}

type openRouterResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Usage struct {
		PromptTokens     int `json:"prompt_tokens"`
		CompletionTokens int `json:"completion_tokens"`
		TotalTokens      int `json:"total_tokens"`
	} `json:"usage"`
}

func NewOpenRouterClient(apiKey, baseURL string, timeout time.Duration) *OpenRouterClient {
	if baseURL == "" {
		baseURL = DefaultOpenRouterURL
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &OpenRouterClient{
		apiKey:  apiKey,
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: timeout},
	}
}

func (c *OpenRouterClient) Name() string {
	return ProviderOpenRouter
}

func (c *OpenRouterClient) Complete(ctx context.Context, model, prompt string) (string, error) {
	reqBody := openRouterRequest{
		Model: model,
		Messages: []map[string]string{
			{"role": "user", "content": prompt},
		},
		MaxTokens: 4096,
	}

	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewBuffer(jsonData))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	c.setHeaders(httpReq)

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return "", transportError(c.Name(), model, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return "", statusError(c.Name(), model, resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var orResp openRouterResponse
	if err := json.NewDecoder(resp.Body).Decode(&orResp); err != nil {
		return "", badResponse(c.Name(), model, fmt.Errorf("failed to decode response: %w", err))
	}

	if len(orResp.Choices) == 0 {
		return "", badResponse(c.Name(), model, fmt.Errorf("empty response from API"))
	}

	return postprocess.Clean(orResp.Choices[0].Message.Content), nil
}

// ListModels returns the model IDs OpenRouter currently routes.
func (c *OpenRouterClient) ListModels(ctx context.Context) ([]string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/models", nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	c.setHeaders(req)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, transportError(c.Name(), "", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &ServiceError{Provider: c.Name(), Kind: kindForStatus(resp.StatusCode), StatusCode: resp.StatusCode}
	}

	var list struct {
		Data []struct {
			ID string `json:"id"`
		} `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&list); err != nil {
		return nil, badResponse(c.Name(), "", fmt.Errorf("failed to decode models: %w", err))
	}

	ids := make([]string, 0, len(list.Data))
	for _, m := range list.Data {
		ids = append(ids, m.ID)
	}
	return ids, nil
}

func (c *OpenRouterClient) setHeaders(req *http.Request) {
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", c.apiKey))
	req.Header.Set("HTTP-Referer", "https://frank.local")
	req.Header.Set("X-Title", "Frank")
}
