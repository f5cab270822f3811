package api

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/ypacademy/answer_engine/internal/content"
	"github.com/ypacademy/answer_engine/internal/retrieval"
	"github.com/ypacademy/answer_engine/store"
)

func (rt *Router) handleDrills(w http.ResponseWriter, r *http.Request) {
	start := rt.now()
	params := r.URL.Query()

	filters := content.DrillFilters{
		Sport:      params.Get("sport"),
		Category:   params.Get("category"),
		Difficulty: params.Get("difficulty"),
		Constraint: params.Get("constraint"),
	}
	if raw := params.Get("age"); raw != "" {
		age, err := strconv.Atoi(raw)
		if err != nil || age < 0 {
			writeError(w, http.StatusBadRequest, errorBody{
				Error: "invalid age parameter: " + raw,
				Field: "age",
			})
			return
		}
		filters.AgeYears = age
	}

	limit := parseIntParam(params.Get("limit"), 0)
	cursor := params.Get("cursor")

	page, err := rt.svc.Drills(r.Context(), filters, limit, cursor)
	if err != nil {
		if errors.Is(err, retrieval.ErrBadCursor) {
			writeError(w, http.StatusBadRequest, errorBody{
				Error: "invalid cursor parameter",
				Field: "cursor",
			})
			return
		}
		rt.log.Error("drills fetch failed", "error", err)
		writeError(w, http.StatusInternalServerError, errorBody{
			Error:   "Failed to fetch drills",
			Details: err.Error(),
		})
		return
	}

	now := rt.now()
	payloads := make([]DrillPayload, len(page.Drills))
	for i, res := range page.Drills {
		payloads[i] = rt.drillPayload(res, now)
	}

	resp := DrillsResponse{
		Drills: payloads,
		Filters: DrillFiltersEcho{
			Sport:      filters.Sport,
			Category:   filters.Category,
			Age:        filters.AgeYears,
			Difficulty: filters.Difficulty,
			Constraint: filters.Constraint,
		},
		Pagination: Pagination{
			Cursor:  page.NextCursor,
			HasMore: page.HasMore,
			Total:   page.Total,
		},
		Meta: SourceMeta{
			Source:        sourceName,
			Documentation: rt.docsURL,
		},
	}

	hit := page.CacheStatus == retrieval.CacheHit
	rt.logRetrieval(r, store.RetrievalRecord{
		Query:           filterQuery(filters),
		ContentType:     "drill",
		ResultsReturned: len(payloads),
		CitedEntityIDs:  drillIDs(payloads),
		ResponseMs:      int(time.Since(start).Milliseconds()),
		CacheHit:        hit,
	})

	cacheHeaders(w, hit)
	writeJSON(w, http.StatusOK, resp)
}

// filterQuery renders a drill filter set as the query string recorded in
// the retrieval log.
func filterQuery(f content.DrillFilters) string {
	parts := []string{"drills"}
	if f.Sport != "" {
		parts = append(parts, "sport="+f.Sport)
	}
	if f.Category != "" {
		parts = append(parts, "category="+f.Category)
	}
	if f.AgeYears > 0 {
		parts = append(parts, "age="+strconv.Itoa(f.AgeYears))
	}
	if f.Difficulty != "" {
		parts = append(parts, "difficulty="+f.Difficulty)
	}
	if f.Constraint != "" {
		parts = append(parts, "constraint="+f.Constraint)
	}
	return strings.Join(parts, " ")
}

func drillIDs(payloads []DrillPayload) []string {
	ids := make([]string, len(payloads))
	for i, p := range payloads {
		ids[i] = p.ID
	}
	return ids
}
