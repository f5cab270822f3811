package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/ypacademy/answer_engine/internal/content"
	"github.com/ypacademy/answer_engine/internal/retrieval"
	"github.com/ypacademy/answer_engine/policy"
	"github.com/ypacademy/answer_engine/store"
)

func (rt *Router) handleAnswer(w http.ResponseWriter, r *http.Request) {
	start := rt.now()
	params := r.URL.Query()

	query := params.Get("q")
	if query == "" {
		writeError(w, http.StatusBadRequest, errorBody{
			Error: "Missing required parameter: q",
			Field: "q",
		})
		return
	}

	typeParam := params.Get("type")
	var kind content.Kind
	if typeParam != "" && typeParam != "all" {
		parsed, ok := content.ParseKind(typeParam)
		if !ok {
			writeError(w, http.StatusBadRequest, errorBody{
				Error: "unknown type: " + typeParam,
				Field: "type",
			})
			return
		}
		kind = parsed
	}

	limit := parseIntParam(params.Get("limit"), 0)
	includeSchema := params.Get("schema") == "true"
	skipCache := params.Get("nocache") == "true"

	// Callers with their own latency budget can bound the whole request.
	budgetMS := 0
	if raw := params.Get("budget_ms"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			writeError(w, http.StatusBadRequest, errorBody{
				Error: "invalid budget_ms parameter: " + raw,
				Field: "budget_ms",
			})
			return
		}
		budgetMS = parsed
	}
	budget, err := policy.NewBudgetArbiter(r.Context(), budgetMS, rt.metrics)
	if err != nil {
		writeError(w, http.StatusBadRequest, errorBody{
			Error: "invalid budget_ms parameter",
			Field: "budget_ms",
		})
		return
	}
	defer budget.Cancel()

	result, err := rt.svc.Answer(budget.Context(), retrieval.AnswerRequest{
		Query: query,
		Kind:  kind,
		Limit: limit,
		// Schema blocks are built per request, so those responses are
		// never served from or written to the response cache.
		SkipCache: skipCache || includeSchema,
	})
	if err != nil {
		rt.log.Error("answer failed", "query", query, "budget_hit", budget.Hit(), "error", err)
		writeError(w, http.StatusInternalServerError, errorBody{
			Error:   "Search failed",
			Details: err.Error(),
		})
		return
	}

	queryTime := time.Since(start).Milliseconds()
	items := make([]AnswerItem, len(result.Results))
	for i, res := range result.Results {
		items[i] = rt.answerItem(res)
	}

	resp := AnswerResponse{
		Query:   query,
		Results: items,
		Meta: AnswerMeta{
			TotalResults:    result.TotalCandidates,
			ReturnedResults: len(items),
			QueryTime:       queryTime,
			SearchMethod:    result.SearchMethod,
			CacheStatus:     result.CacheStatus,
			EmbeddingCached: result.EmbeddingCached,
			Source:          sourceName,
			LastUpdated:     rt.now().UTC().Format(time.RFC3339),
		},
	}
	if includeSchema && len(result.Results) > 0 {
		list := rt.projector.AnswerList(query, result.Results)
		resp.StructuredData = &list
	}

	rt.logRetrieval(r, store.RetrievalRecord{
		Query:           query,
		ContentType:     contentTypeLabel(typeParam),
		ResultsReturned: len(items),
		CitedEntityIDs:  citedIDs(items),
		ResponseMs:      int(queryTime),
		CacheHit:        result.CacheStatus == retrieval.CacheHit,
	})

	cacheHeaders(w, result.CacheStatus == retrieval.CacheHit)
	writeJSON(w, http.StatusOK, resp)
}

// logRetrieval stamps the caller attribution onto rec and hands it to the
// async event logger. Requests never wait on the write.
func (rt *Router) logRetrieval(r *http.Request, rec store.RetrievalRecord) {
	if rt.events == nil {
		return
	}
	rec.Source = DetectSource(r.Header.Get("User-Agent"))
	if traceID, ok := TraceIDFromContext(r.Context()); ok {
		rec.TraceID = traceID
	}
	rt.events.LogRetrieval(rec)
}

func contentTypeLabel(typeParam string) string {
	if typeParam == "" {
		return "all"
	}
	return typeParam
}

func citedIDs(items []AnswerItem) []string {
	ids := make([]string, len(items))
	for i, item := range items {
		ids[i] = item.ID
	}
	return ids
}
