package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/otcheredev/hospital-dashboard/internal/gateways"
	"github.com/otcheredev/hospital-dashboard/internal/services"
	"github.com/otcheredev/hospital-dashboard/internal/session"
)

// StatusHandler serves the local health and snapshot endpoints.
type StatusHandler struct {
	sessions   *session.Controller
	dashboard  *services.DashboardService
	compliance *gateways.ComplianceGateway
}

func NewStatusHandler(sessions *session.Controller, dashboard *services.DashboardService, compliance *gateways.ComplianceGateway) *StatusHandler {
	return &StatusHandler{sessions: sessions, dashboard: dashboard, compliance: compliance}
}

type healthResponse struct {
	Status    string            `json:"status"`
	Timestamp time.Time         `json:"timestamp"`
	Services  map[string]string `json:"services"`
}

func (h *StatusHandler) Health(w http.ResponseWriter, r *http.Request) {
	response := healthResponse{
		Status:    "healthy",
		Timestamp: time.Now(),
		Services:  make(map[string]string),
	}

	// Check backend reachability
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()
	if _, err := h.compliance.GetMeta(ctx); err != nil {
		response.Services["backend"] = "unhealthy"
		response.Status = "degraded"
	} else {
		response.Services["backend"] = "healthy"
	}

	if h.sessions.Current().Authenticated() {
		response.Services["session"] = "authenticated"
	} else {
		response.Services["session"] = "anonymous"
	}

	w.Header().Set("Content-Type", "application/json")
	if response.Status != "healthy" {
		w.WriteHeader(http.StatusServiceUnavailable)
	}
	json.NewEncoder(w).Encode(response)
}

func (h *StatusHandler) Ready(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	if _, err := h.compliance.GetMeta(ctx); err != nil {
		http.Error(w, "Backend not reachable", http.StatusServiceUnavailable)
		return
	}

	w.WriteHeader(http.StatusOK)
	w.Write([]byte("OK"))
}

// Status returns the current dashboard snapshot. The session token is never
// included.
func (h *StatusHandler) Status(w http.ResponseWriter, r *http.Request) {
	snap := h.dashboard.Snapshot()
	snap.Session.Token = "" // never expose the bearer token locally

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(snap)
}
