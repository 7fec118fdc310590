package chat

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"github.com/valpere/frank/internal/postprocess"
)

// OpenAIClient calls any OpenAI-compatible chat completions endpoint through
// the official SDK. Ollama serves one at http://localhost:11434/v1.
type OpenAIClient struct {
	client openai.Client
}

// NewOpenAIClient builds the SDK client. The SDK's own retries are disabled:
// a failed completion is reported to the caller as is.
func NewOpenAIClient(cfg Config) *OpenAIClient {
	opts := []option.RequestOption{
		option.WithMaxRetries(0),
	}
	if cfg.APIKey != "" {
		opts = append(opts, option.WithAPIKey(cfg.APIKey))
	}
	if cfg.BaseURL != "" {
		base := cfg.BaseURL
		if !strings.HasSuffix(base, "/") {
			base += "/"
		}
		opts = append(opts, option.WithBaseURL(base))
	}
	if cfg.Timeout > 0 {
		opts = append(opts, option.WithRequestTimeout(cfg.Timeout))
	}

	return &OpenAIClient{client: openai.NewClient(opts...)}
}

func (c *OpenAIClient) Name() string {
	return ProviderOpenAI
}

func (c *OpenAIClient) Complete(ctx context.Context, model, prompt string) (string, error) {
	resp, err := c.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.UserMessage(prompt),
		},
		Model: openai.ChatModel(model),
	})
	if err != nil {
		return "", c.classify(model, err)
	}
	if len(resp.Choices) == 0 {
		return "", badResponse(c.Name(), model, errors.New("no choices in response"))
	}

	return postprocess.Clean(resp.Choices[0].Message.Content), nil
}

func (c *OpenAIClient) ListModels(ctx context.Context) ([]string, error) {
	page, err := c.client.Models.List(ctx)
	if err != nil {
		return nil, c.classify("", err)
	}

	ids := make([]string, 0, len(page.Data))
	for _, m := range page.Data {
		ids = append(ids, m.ID)
	}
	return ids, nil
}

func (c *OpenAIClient) classify(model string, err error) *ServiceError {
	var apiErr *openai.Error
	if errors.As(err, &apiErr) {
		msg := apiErr.Message
		if msg == "" {
			msg = fmt.Sprintf("openai api error %d", apiErr.StatusCode)
		}
		return statusError(c.Name(), model, apiErr.StatusCode, msg)
	}
	return transportError(c.Name(), model, err)
}
