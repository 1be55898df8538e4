package httphandler

import (
	"net/http"
)

// BlogStats returns the overview stats panel for one blog.
func (h *Handler) BlogStats(w http.ResponseWriter, r *http.Request) {
	admin := adminFrom(r.Context())

	stats, err := h.stats.Overview(r.Context(), admin.ID, r.PathValue("blogId"))
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}

	writeSourced(w, http.StatusOK, stats, stats.Source)
}

// BlogStatsSeries returns a bucketed activity series for one blog.
// ?period= is daily, weekly, or monthly (default daily).
func (h *Handler) BlogStatsSeries(w http.ResponseWriter, r *http.Request) {
	admin := adminFrom(r.Context())

	period := r.URL.Query().Get("period")
	if period == "" {
		period = "daily"
	}
	switch period {
	case "daily", "weekly", "monthly":
	default:
		writeError(w, http.StatusBadRequest, "validation", "period must be daily, weekly, or monthly")
		return
	}

	series, err := h.stats.Series(r.Context(), admin.ID, r.PathValue("blogId"), period)
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}

	writeSourced(w, http.StatusOK, series, series.Source)
}
