package completion

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"google.golang.org/genai"

	"github.com/kacperborowieckb/schema-wizard/shared/secret"
	"github.com/kacperborowieckb/schema-wizard/utils/gemini"
)

// Gemini completes prompts with the Google Gen AI SDK.
type Gemini struct {
	defaultKey secret.Credential
	opts       gemini.Options
}

func NewGemini(defaultKey secret.Credential, timeout time.Duration) *Gemini {
	return &Gemini{
		defaultKey: defaultKey,
		opts:       gemini.Options{HTTPClient: &http.Client{Timeout: timeout}},
	}
}

// NewGeminiWithOptions is NewGemini with full control over the transport.
func NewGeminiWithOptions(defaultKey secret.Credential, opts gemini.Options) *Gemini {
	return &Gemini{defaultKey: defaultKey, opts: opts}
}

func (g *Gemini) Complete(ctx context.Context, model string, cred secret.Credential, prompt string) (string, error) {
	key, err := resolveKey(cred, g.defaultKey)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUpstreamUnavailable, err)
	}

	client, err := gemini.NewClient(ctx, key, g.opts)
	if err != nil {
		return "", fmt.Errorf("%w: create gemini client: %v", ErrUpstreamUnavailable, err)
	}

	result, err := client.Models.GenerateContent(ctx, model, genai.Text(prompt), nil)
	if err != nil {
		return "", fmt.Errorf("%w: call to gemini failed: %v", ErrUpstreamUnavailable, err)
	}

	text := strings.TrimSpace(result.Text())
	if text == "" {
		return "", fmt.Errorf("%w: gemini model %s", ErrUpstreamEmptyResponse, model)
	}

	return text, nil
}
