package rest

import (
	"net/http"
	"time"

	"github.com/datum-redsoft/expense-reports/internal/transport"
)

// HealthHandler reports liveness of the BFF itself. Upstream reachability is
// not probed here; every real request surfaces its own transport error.
type HealthHandler struct {
	*transport.BaseHandler
	startedAt time.Time
}

func NewHealthHandler(base *transport.BaseHandler) *HealthHandler {
	return &HealthHandler{BaseHandler: base, startedAt: time.Now()}
}

func (h *HealthHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	h.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"status":         "ok",
		"uptime_seconds": int64(time.Since(h.startedAt).Seconds()),
	})
}

func (h *HealthHandler) Ping(w http.ResponseWriter, r *http.Request) {
	h.WriteJSON(w, http.StatusOK, map[string]string{"message": "pong"})
}
