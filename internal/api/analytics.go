package api

import "net/http"

func (rt *Router) handleAnalytics(w http.ResponseWriter, r *http.Request) {
	params := r.URL.Query()
	view := params.Get("view")
	days := parseIntParam(params.Get("days"), 0)

	noCacheHeaders(w)

	var (
		payload any
		err     error
	)
	switch view {
	case "gaps":
		payload, err = rt.analyzer.Gaps(r.Context(), days)
	case "queries":
		payload, err = rt.analyzer.Queries(r.Context(), days)
	default:
		payload, err = rt.analyzer.Overview(r.Context(), days)
	}
	if err != nil {
		rt.log.Error("analytics query failed", "view", view, "error", err)
		writeError(w, http.StatusInternalServerError, errorBody{
			Error:   "Failed to fetch analytics",
			Details: err.Error(),
		})
		return
	}

	writeJSON(w, http.StatusOK, payload)
}
