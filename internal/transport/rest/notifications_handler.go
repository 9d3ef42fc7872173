package rest

import (
	"net/http"

	"github.com/go-chi/chi"

	"github.com/datum-redsoft/expense-reports/internal/notify"
	"github.com/datum-redsoft/expense-reports/internal/transport"
)

// NotificationsHandler exposes the process-wide notification bus so clients
// can poll active toasts and dismiss them early.
type NotificationsHandler struct {
	*transport.BaseHandler
	bus *notify.Bus
}

func NewNotificationsHandler(base *transport.BaseHandler, bus *notify.Bus) *NotificationsHandler {
	return &NotificationsHandler{BaseHandler: base, bus: bus}
}

// Active lists notifications that have not yet expired or been dismissed,
// oldest first.
func (h *NotificationsHandler) Active(w http.ResponseWriter, r *http.Request) {
	h.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"notifications": h.bus.Active(),
	})
}

// Dismiss removes one notification ahead of its expiry. Dismissing an unknown
// id is harmless.
func (h *NotificationsHandler) Dismiss(w http.ResponseWriter, r *http.Request) {
	h.bus.Dismiss(chi.URLParam(r, "id"))
	w.WriteHeader(http.StatusNoContent)
}
