package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// RetrievalRecord is one append-only retrieval event. CitedEntityIDs lists
// the slugs of the entities included in the response.
type RetrievalRecord struct {
	ID              int64
	Query           string
	Source          string
	ContentType     string
	ResultsReturned int
	CitedEntityIDs  []string
	ResponseMs      int
	CacheHit        bool
	TraceID         string
	CreatedAt       time.Time
}

// SearchRecord is one append-only site-search event. A click is recorded as
// a SearchRecord with ResultsCount zero and the clicked entity populated.
type SearchRecord struct {
	ID                int64
	Query             string
	ResultsCount      int
	ClickedEntityID   string
	ClickedEntityType string
	Source            string
	SessionID         string
	CreatedAt         time.Time
}

// InsertRetrieval appends one retrieval event.
func (s *Store) InsertRetrieval(ctx context.Context, rec RetrievalRecord) error {
	cited, err := marshalJSON(rec.CitedEntityIDs)
	if err != nil {
		return fmt.Errorf("marshal cited entity ids: %w", err)
	}

	cacheHit := 0
	if rec.CacheHit {
		cacheHit = 1
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO retrieval_log (query, source, content_type,
			results_returned, cited_entity_ids, response_ms, cache_hit,
			trace_id, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, rec.Query, rec.Source, rec.ContentType, rec.ResultsReturned, cited,
		rec.ResponseMs, cacheHit, rec.TraceID, rec.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert retrieval: %w", err)
	}
	return nil
}

// InsertSearch appends one search or click event.
func (s *Store) InsertSearch(ctx context.Context, rec SearchRecord) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO search_log (query, results_count, clicked_entity_id,
			clicked_entity_type, source, session_id, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, rec.Query, rec.ResultsCount, rec.ClickedEntityID,
		rec.ClickedEntityType, rec.Source, rec.SessionID, rec.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert search: %w", err)
	}
	return nil
}

// RetrievalsSince returns retrieval events newer than since, oldest first.
func (s *Store) RetrievalsSince(ctx context.Context, since time.Time) ([]RetrievalRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, query, source, content_type, results_returned,
		       cited_entity_ids, response_ms, cache_hit, trace_id, created_at
		FROM retrieval_log
		WHERE created_at > ?
		ORDER BY created_at, id
	`, since)
	if err != nil {
		return nil, fmt.Errorf("retrievals since: %w", err)
	}
	defer rows.Close()

	var records []RetrievalRecord
	for rows.Next() {
		var (
			rec                           RetrievalRecord
			source, contentType, traceID  sql.NullString
			cited                         sql.NullString
			cacheHit                      int
		)
		err := rows.Scan(&rec.ID, &rec.Query, &source, &contentType,
			&rec.ResultsReturned, &cited, &rec.ResponseMs, &cacheHit,
			&traceID, &rec.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("scan retrieval: %w", err)
		}
		rec.Source = source.String
		rec.ContentType = contentType.String
		rec.TraceID = traceID.String
		rec.CitedEntityIDs = unmarshalStrings(cited.String)
		rec.CacheHit = cacheHit != 0
		records = append(records, rec)
	}
	return records, rows.Err()
}

// SearchesSince returns search/click events newer than since, oldest first.
func (s *Store) SearchesSince(ctx context.Context, since time.Time) ([]SearchRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, query, results_count, clicked_entity_id,
		       clicked_entity_type, source, session_id, created_at
		FROM search_log
		WHERE created_at > ?
		ORDER BY created_at, id
	`, since)
	if err != nil {
		return nil, fmt.Errorf("searches since: %w", err)
	}
	defer rows.Close()

	var records []SearchRecord
	for rows.Next() {
		var (
			rec                             SearchRecord
			clickedID, clickedType          sql.NullString
			source, sessionID               sql.NullString
		)
		err := rows.Scan(&rec.ID, &rec.Query, &rec.ResultsCount, &clickedID,
			&clickedType, &source, &sessionID, &rec.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("scan search: %w", err)
		}
		rec.ClickedEntityID = clickedID.String
		rec.ClickedEntityType = clickedType.String
		rec.Source = source.String
		rec.SessionID = sessionID.String
		records = append(records, rec)
	}
	return records, rows.Err()
}
