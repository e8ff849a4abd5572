package gemini

import (
	"context"
	"net/http"

	"google.golang.org/genai"
)

// Options tune a client. A zero value talks to the public Gemini API.
type Options struct {
	BaseURL    string
	HTTPClient *http.Client
}

// NewClient builds a Gemini API client for one api key. Keys are supplied per
// call by wizard users, so clients are not cached.
func NewClient(ctx context.Context, apiKey string, opts Options) (*genai.Client, error) {
	cfg := &genai.ClientConfig{
		APIKey:     apiKey,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: opts.HTTPClient,
	}

	if opts.BaseURL != "" {
		cfg.HTTPOptions = genai.HTTPOptions{BaseURL: opts.BaseURL}
	}

	return genai.NewClient(ctx, cfg)
}
