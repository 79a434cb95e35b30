package handlers

import (
	"net/http"
	"time"

	"github.com/osegonte/kiox/internal/domain"
	"github.com/osegonte/kiox/internal/services"
)

// HealthHandlers serves liveness and readiness probes.
type HealthHandlers struct {
	system services.SystemService
}

// HealthOption customises health handler construction.
type HealthOption func(*HealthHandlers)

// WithSystemService wires the system service used for readiness checks.
func WithSystemService(system services.SystemService) HealthOption {
	return func(h *HealthHandlers) {
		h.system = system
	}
}

// NewHealthHandlers constructs health handlers. Without a system service the
// probes degrade to static responses so the router always has something to serve.
func NewHealthHandlers(opts ...HealthOption) *HealthHandlers {
	h := &HealthHandlers{}
	for _, opt := range opts {
		if opt != nil {
			opt(h)
		}
	}
	return h
}

type healthCheckResponse struct {
	Status    string `json:"status"`
	Detail    string `json:"detail,omitempty"`
	Error     string `json:"error,omitempty"`
	LatencyMS int64  `json:"latency_ms"`
	CheckedAt string `json:"checked_at,omitempty"`
}

type healthResponse struct {
	Status      string                         `json:"status"`
	Version     string                         `json:"version,omitempty"`
	Environment string                         `json:"environment,omitempty"`
	UptimeSec   int64                          `json:"uptime_sec"`
	Checks      map[string]healthCheckResponse `json:"checks,omitempty"`
	GeneratedAt string                         `json:"generated_at,omitempty"`
}

func reportToResponse(report domain.SystemHealthReport) healthResponse {
	resp := healthResponse{
		Status:      report.Status,
		Version:     report.Version,
		Environment: report.Environment,
		UptimeSec:   int64(report.Uptime / time.Second),
		GeneratedAt: formatTime(report.GeneratedAt),
	}
	if len(report.Checks) > 0 {
		resp.Checks = make(map[string]healthCheckResponse, len(report.Checks))
		for name, check := range report.Checks {
			resp.Checks[name] = healthCheckResponse{
				Status:    check.Status,
				Detail:    check.Detail,
				Error:     check.Error,
				LatencyMS: check.Latency.Milliseconds(),
				CheckedAt: formatTime(check.CheckedAt),
			}
		}
	}
	return resp
}

// Healthz reports process liveness.
func (h *HealthHandlers) Healthz(w http.ResponseWriter, r *http.Request) {
	if h.system == nil {
		writeJSONResponse(w, http.StatusOK, healthResponse{Status: domain.HealthStatusOK})
		return
	}
	writeJSONResponse(w, http.StatusOK, reportToResponse(h.system.Liveness(r.Context())))
}

// Readyz reports dependency readiness. Degraded dependencies still return
// 200 so a slow store does not take the service out of rotation; hard
// failures return 503.
func (h *HealthHandlers) Readyz(w http.ResponseWriter, r *http.Request) {
	if h.system == nil {
		writeJSONResponse(w, http.StatusOK, healthResponse{Status: domain.HealthStatusOK})
		return
	}

	report, err := h.system.Readiness(r.Context())
	if err != nil {
		writeJSONResponse(w, http.StatusServiceUnavailable, healthResponse{Status: domain.HealthStatusError})
		return
	}

	status := http.StatusOK
	if report.Status == domain.HealthStatusError {
		status = http.StatusServiceUnavailable
	}
	writeJSONResponse(w, status, reportToResponse(report))
}
