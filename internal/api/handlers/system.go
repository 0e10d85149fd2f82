package handlers

import (
	"net/http"
	"time"

	"github.com/deftgray/clashproxy/internal/api/response"
	"github.com/deftgray/clashproxy/internal/metrics"
	"github.com/deftgray/clashproxy/internal/version"
)

// ModelReporter reports which LLM model is currently configured.
type ModelReporter interface {
	Model() string
}

// SystemHandler handles system status API requests.
type SystemHandler struct {
	model   ModelReporter
	metrics *metrics.DeckMetrics
	started time.Time
}

// NewSystemHandler creates a new SystemHandler.
func NewSystemHandler(model ModelReporter, m *metrics.DeckMetrics) *SystemHandler {
	return &SystemHandler{
		model:   model,
		metrics: m,
		started: time.Now(),
	}
}

// StatusResponse is the body of the system status endpoint.
type StatusResponse struct {
	Service       string            `json:"service"`
	Version       string            `json:"version"`
	Model         string            `json:"model"`
	UptimeSeconds int64             `json:"uptime_seconds"`
	Metrics       *metrics.Snapshot `json:"metrics"`
}

// GetStatus returns the service status and a metrics snapshot.
func (h *SystemHandler) GetStatus(w http.ResponseWriter, _ *http.Request) {
	response.Success(w, StatusResponse{
		Service:       "clashproxy-api",
		Version:       version.GetVersion(),
		Model:         h.model.Model(),
		UptimeSeconds: int64(time.Since(h.started).Seconds()),
		Metrics:       h.metrics.GetSnapshot(),
	})
}
