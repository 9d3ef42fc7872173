package rest

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi"

	"github.com/datum-redsoft/expense-reports/internal/export"
	"github.com/datum-redsoft/expense-reports/internal/report"
	"github.com/datum-redsoft/expense-reports/internal/snapshot"
	"github.com/datum-redsoft/expense-reports/internal/transport"
)

// ReportsHandler serves the admin report views: filtered listing, per-group
// category aggregates, approval, and spreadsheet export.
type ReportsHandler struct {
	*transport.BaseHandler
	reports  *report.Service
	exporter *export.Exporter
}

func NewReportsHandler(base *transport.BaseHandler, reports *report.Service, exporter *export.Exporter) *ReportsHandler {
	return &ReportsHandler{BaseHandler: base, reports: reports, exporter: exporter}
}

// ListReports returns the card's expense groups narrowed by the status,
// period and category query filters. With offline=true the last snapshot is
// served instead of hitting the backend.
func (h *ReportsHandler) ListReports(w http.ResponseWriter, r *http.Request) {
	cardID, ok := h.cardID(w, r)
	if !ok {
		return
	}

	filter := report.Filter{
		Status:   queryOrAll(r, "status"),
		Period:   queryOrAll(r, "period"),
		Category: queryOrAll(r, "category"),
	}

	if r.URL.Query().Get("offline") == "true" {
		groups, fetchedAt, err := h.reports.OfflineReports(cardID, filter)
		if errors.Is(err, snapshot.ErrNoSnapshot) {
			h.WriteStatusError(w, http.StatusNotFound, "no snapshot for card")
			return
		}
		if err != nil {
			h.WriteError(w, err)
			return
		}
		h.WriteJSON(w, http.StatusOK, map[string]interface{}{
			"groups":    groups,
			"fetchedAt": fetchedAt,
			"offline":   true,
		})
		return
	}

	groups, err := h.reports.ListReports(r.Context(), cardID, filter)
	if err != nil {
		h.WriteError(w, err)
		return
	}

	pending, approved := report.SplitByStatus(groups)
	h.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"groups":   groups,
		"pending":  pending,
		"approved": approved,
	})
}

// GroupDetail returns one group (exact month label) plus its category
// aggregates and their percentages for the detail chart.
func (h *ReportsHandler) GroupDetail(w http.ResponseWriter, r *http.Request) {
	cardID, ok := h.cardID(w, r)
	if !ok {
		return
	}
	month := r.URL.Query().Get("month")
	if month == "" {
		h.WriteStatusError(w, http.StatusBadRequest, "month query parameter is required")
		return
	}

	group, aggregates, err := h.reports.GroupDetail(r.Context(), cardID, month)
	if err != nil {
		h.WriteError(w, err)
		return
	}

	type aggregateView struct {
		report.CategoryAggregate
		Percentage float64 `json:"percentage"`
	}
	views := make([]aggregateView, len(aggregates))
	for i, agg := range aggregates {
		views[i] = aggregateView{
			CategoryAggregate: agg,
			Percentage:        report.Percentage(agg.Value, group.Total),
		}
	}

	h.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"group":      group,
		"categories": views,
	})
}

// Approve approves the group named by the month query parameter and returns
// the re-fetched list, so the caller renders fresh state.
func (h *ReportsHandler) Approve(w http.ResponseWriter, r *http.Request) {
	cardID, ok := h.cardID(w, r)
	if !ok {
		return
	}
	month := r.URL.Query().Get("monthYear")
	if month == "" {
		h.WriteStatusError(w, http.StatusBadRequest, "monthYear query parameter is required")
		return
	}

	groups, err := h.reports.Approve(r.Context(), cardID, month)
	if err != nil {
		h.WriteError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, map[string]interface{}{"groups": groups})
}

// Export streams the approved group as an XLSX download. Card and user
// context for the summary block comes from query parameters; the admin view
// already holds them.
func (h *ReportsHandler) Export(w http.ResponseWriter, r *http.Request) {
	cardID, ok := h.cardID(w, r)
	if !ok {
		return
	}
	q := r.URL.Query()
	month := q.Get("month")
	if month == "" {
		h.WriteStatusError(w, http.StatusBadRequest, "month query parameter is required")
		return
	}

	group, _, err := h.reports.GroupDetail(r.Context(), cardID, month)
	if err != nil {
		h.WriteError(w, err)
		return
	}

	in := export.Input{
		UserName:   q.Get("userName"),
		CardNumber: q.Get("cardNumber"),
		CardHolder: q.Get("cardHolder"),
		Bank:       q.Get("bank"),
		Report:     *group,
	}

	data, err := h.exporter.Build(in)
	if err != nil {
		h.WriteError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", `attachment; filename="`+h.exporter.FileName(in)+`"`)
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(data); err != nil {
		h.Logger.Error("failed to stream workbook", "error", err)
	}
}

func (h *ReportsHandler) cardID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "cardID"), 10, 64)
	if err != nil || id <= 0 {
		h.WriteStatusError(w, http.StatusBadRequest, "cardID must be a positive integer")
		return 0, false
	}
	return id, true
}

func queryOrAll(r *http.Request, name string) string {
	if v := r.URL.Query().Get(name); v != "" {
		return v
	}
	return report.FilterAll
}
