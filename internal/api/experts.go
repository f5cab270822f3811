package api

import (
	"errors"
	"net/http"

	"github.com/ypacademy/answer_engine/internal/content"
)

func (rt *Router) handleExperts(w http.ResponseWriter, r *http.Request) {
	slug := r.URL.Query().Get("slug")

	if slug != "" {
		profile, err := rt.svc.Expert(r.Context(), slug)
		if err != nil {
			if errors.Is(err, content.ErrNotFound) {
				writeError(w, http.StatusNotFound, errorBody{Error: "Expert not found"})
				return
			}
			rt.log.Error("expert lookup failed", "slug", slug, "error", err)
			writeError(w, http.StatusInternalServerError, errorBody{
				Error:   "Failed to fetch experts",
				Details: err.Error(),
			})
			return
		}

		cacheHeaders(w, false)
		writeJSON(w, http.StatusOK, ExpertResponse{Expert: rt.expertPayload(profile)})
		return
	}

	profiles, err := rt.svc.Experts(r.Context())
	if err != nil {
		rt.log.Error("experts list failed", "error", err)
		writeError(w, http.StatusInternalServerError, errorBody{
			Error:   "Failed to fetch experts",
			Details: err.Error(),
		})
		return
	}

	payloads := make([]ExpertPayload, len(profiles))
	for i, p := range profiles {
		payloads[i] = rt.expertPayload(p)
	}

	cacheHeaders(w, false)
	writeJSON(w, http.StatusOK, ExpertsResponse{
		Experts: payloads,
		Meta: SourceMeta{
			Source: sourceName,
			Total:  len(payloads),
		},
	})
}
