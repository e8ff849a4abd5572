// Package completion sends a finished prompt to a text generation provider and
// returns the raw reply. One call is one blocking round trip: no caching, no
// retry, no streaming.
package completion

import (
	"context"
	"errors"

	"github.com/kacperborowieckb/schema-wizard/shared/secret"
)

var (
	ErrUpstreamUnavailable   = errors.New("upstream unavailable")
	ErrUpstreamEmptyResponse = errors.New("upstream returned an empty response")
)

// Gateway is satisfied by any provider that turns a prompt into text.
type Gateway interface {
	Complete(ctx context.Context, model string, cred secret.Credential, prompt string) (string, error)
}

// GatewayFunc adapts a function to Gateway.
type GatewayFunc func(ctx context.Context, model string, cred secret.Credential, prompt string) (string, error)

func (f GatewayFunc) Complete(ctx context.Context, model string, cred secret.Credential, prompt string) (string, error) {
	return f(ctx, model, cred, prompt)
}

// resolveKey prefers the caller's credential over the configured default.
func resolveKey(cred, fallback secret.Credential) (string, error) {
	if !cred.IsZero() {
		return cred.Reveal(), nil
	}
	if !fallback.IsZero() {
		return fallback.Reveal(), nil
	}

	return "", errMissingCredential
}

var errMissingCredential = errors.New("no api key supplied and no default configured")
