package health

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/kacperborowieckb/schema-wizard/utils/json"
)

const checkTimeout = 2 * time.Second

type HealthStatus struct {
	Status  string            `json:"status"`
	Service string            `json:"service,omitempty"`
	Checks  map[string]string `json:"checks,omitempty"`
}

// Check probes one dependency of the service. A nil error means healthy.
type Check struct {
	Name  string
	Probe func(ctx context.Context) error
}

// Handler is a generic, simple health check handler.
// It reports "ok" if the server is running.
func Handler(w http.ResponseWriter, r *http.Request) {
	status := HealthStatus{Status: "ok"}

	err := json.WriteJSON(w, http.StatusOK, status)
	if err != nil {
		log.Printf("Error writing health check response: %v", err)
	}
}

// NewHandler reports "ok" only when every check passes, otherwise "degraded"
// with a 503 so load balancers stop routing to the instance.
func NewHandler(service string, checks ...Check) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), checkTimeout)
		defer cancel()

		status := HealthStatus{Status: "ok", Service: service}
		code := http.StatusOK

		if len(checks) > 0 {
			status.Checks = make(map[string]string, len(checks))
		}

		for _, c := range checks {
			if err := c.Probe(ctx); err != nil {
				log.Printf("Health check %s failed: %v", c.Name, err)
				status.Checks[c.Name] = err.Error()
				status.Status = "degraded"
				code = http.StatusServiceUnavailable
				continue
			}
			status.Checks[c.Name] = "ok"
		}

		if err := json.WriteJSON(w, code, status); err != nil {
			log.Printf("Error writing health check response: %v", err)
		}
	}
}
