// Package health serves liveness and readiness probes.
package health

import (
	"context"
	"encoding/json"
	"net/http"
	"sync/atomic"
	"time"

	"taskboard/internal/clock"
)

// Check is a named readiness probe.
type Check struct {
	Name  string
	Probe func(ctx context.Context) error
}

// Status is the JSON body of a probe response.
type Status struct {
	Status    string            `json:"status"`
	Checks    map[string]string `json:"checks,omitempty"`
	Timestamp string            `json:"timestamp"`
}

// Handler serves /healthz and /readyz.
type Handler struct {
	ready  atomic.Bool
	checks []Check
	clock  clock.Clock
}

// NewHandler returns a Handler running the given readiness checks.
func NewHandler(clk clock.Clock, checks ...Check) *Handler {
	return &Handler{checks: checks, clock: clk}
}

// SetReady marks the service as ready to receive traffic.
func (h *Handler) SetReady(ready bool) {
	h.ready.Store(ready)
}

// Liveness reports 200 whenever the process is alive.
func (h *Handler) Liveness(w http.ResponseWriter, _ *http.Request) {
	h.write(w, http.StatusOK, Status{Status: "ok", Timestamp: h.now()})
}

// Readiness reports 200 once the service is marked ready and every check
// passes.
func (h *Handler) Readiness(w http.ResponseWriter, r *http.Request) {
	if !h.ready.Load() {
		h.write(w, http.StatusServiceUnavailable, Status{Status: "not_ready", Timestamp: h.now()})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	results := make(map[string]string, len(h.checks))
	status, code := "ready", http.StatusOK
	for _, c := range h.checks {
		if err := c.Probe(ctx); err != nil {
			results[c.Name] = err.Error()
			status, code = "not_ready", http.StatusServiceUnavailable
		} else {
			results[c.Name] = "ok"
		}
	}

	h.write(w, code, Status{Status: status, Checks: results, Timestamp: h.now()})
}

func (h *Handler) now() string {
	return h.clock.Now().UTC().Format(time.RFC3339)
}

func (h *Handler) write(w http.ResponseWriter, code int, s Status) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(s)
}
