package completion

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/cloudwego/eino-ext/components/model/openai"
	"github.com/cloudwego/eino/schema"

	"github.com/kacperborowieckb/schema-wizard/shared/secret"
)

// OpenAICompatible completes prompts against any /chat/completions endpoint.
type OpenAICompatible struct {
	baseURL    string
	defaultKey secret.Credential
	timeout    time.Duration
}

func NewOpenAICompatible(baseURL string, defaultKey secret.Credential, timeout time.Duration) *OpenAICompatible {
	return &OpenAICompatible{
		baseURL:    strings.TrimRight(baseURL, "/"),
		defaultKey: defaultKey,
		timeout:    timeout,
	}
}

// Complete builds a chat model per call since the key can differ per session.
func (c *OpenAICompatible) Complete(ctx context.Context, model string, cred secret.Credential, prompt string) (string, error) {
	key, err := resolveKey(cred, c.defaultKey)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUpstreamUnavailable, err)
	}

	chat, err := openai.NewChatModel(ctx, &openai.ChatModelConfig{
		BaseURL: c.baseURL,
		APIKey:  key,
		Model:   model,
		Timeout: c.timeout,
	})
	if err != nil {
		return "", fmt.Errorf("%w: create chat model: %v", ErrUpstreamUnavailable, err)
	}

	msg, err := chat.Generate(ctx, []*schema.Message{schema.UserMessage(prompt)})
	if err != nil {
		return "", fmt.Errorf("%w: llm request failed: %v", ErrUpstreamUnavailable, err)
	}
	if msg == nil {
		return "", fmt.Errorf("%w: model %s", ErrUpstreamEmptyResponse, model)
	}

	text := strings.TrimSpace(msg.Content)
	if text == "" {
		return "", fmt.Errorf("%w: model %s", ErrUpstreamEmptyResponse, model)
	}

	return text, nil
}
