package completion

import (
	"context"
	"fmt"
	"strings"

	"github.com/kacperborowieckb/schema-wizard/shared/secret"
)

type route struct {
	prefix  string
	gateway Gateway
}

// Router picks a provider by model id prefix. The first matching route wins.
type Router struct {
	routes   []route
	fallback Gateway
}

func NewRouter() *Router {
	return &Router{}
}

func (r *Router) Handle(prefix string, gw Gateway) *Router {
	r.routes = append(r.routes, route{prefix: prefix, gateway: gw})
	return r
}

// Fallback serves model ids no route matches.
func (r *Router) Fallback(gw Gateway) *Router {
	r.fallback = gw
	return r
}

func (r *Router) Complete(ctx context.Context, model string, cred secret.Credential, prompt string) (string, error) {
	for _, rt := range r.routes {
		if strings.HasPrefix(model, rt.prefix) {
			return rt.gateway.Complete(ctx, model, cred, prompt)
		}
	}

	if r.fallback == nil {
		return "", fmt.Errorf("%w: no provider configured for model %q", ErrUpstreamUnavailable, model)
	}

	return r.fallback.Complete(ctx, model, cred, prompt)
}
