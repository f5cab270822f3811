package api

import (
	"net/http"
	"time"

	"github.com/ypacademy/answer_engine/internal/retrieval"
	"github.com/ypacademy/answer_engine/store"
)

func (rt *Router) handleQnA(w http.ResponseWriter, r *http.Request) {
	start := rt.now()
	params := r.URL.Query()

	category := params.Get("category")
	limit := parseIntParam(params.Get("limit"), 0)

	page, err := rt.svc.QnA(r.Context(), category, limit)
	if err != nil {
		rt.log.Error("qna fetch failed", "category", category, "error", err)
		writeError(w, http.StatusInternalServerError, errorBody{
			Error:   "Failed to fetch qna",
			Details: err.Error(),
		})
		return
	}

	payloads := make([]QnAPayload, len(page.Entries))
	ids := make([]string, len(page.Entries))
	for i, res := range page.Entries {
		payloads[i] = rt.qnaPayload(res)
		ids[i] = payloads[i].ID
	}

	hit := page.CacheStatus == retrieval.CacheHit
	query := "qna"
	if category != "" {
		query = "qna category=" + category
	}
	rt.logRetrieval(r, store.RetrievalRecord{
		Query:           query,
		ContentType:     "article",
		ResultsReturned: len(payloads),
		CitedEntityIDs:  ids,
		ResponseMs:      int(time.Since(start).Milliseconds()),
		CacheHit:        hit,
	})

	cacheHeaders(w, hit)
	writeJSON(w, http.StatusOK, QnAResponse{
		QnA: payloads,
		Meta: SourceMeta{
			Source: sourceName,
			Total:  len(payloads),
		},
	})
}
