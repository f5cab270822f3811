package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/ypacademy/answer_engine/internal/content"
)

// ErrNotFound indicates a catalog lookup matched no row.
var ErrNotFound = content.ErrNotFound

// SearchDrills returns drills matching the filters, newest first. The query
// text itself is not matched here; relevance ranking happens in the caller.
func (s *Store) SearchDrills(ctx context.Context, f content.DrillFilters, limit, offset int) ([]content.Drill, error) {
	query := `
		SELECT id, slug, title, description, sport, category, age_min, age_max,
		       difficulty, duration, reps, equipment, tags, constraints, steps,
		       author_id, embedding, updated_at
		FROM drills
		WHERE 1 = 1
	`
	var args []any
	if f.Sport != "" {
		query += " AND sport = ?"
		args = append(args, f.Sport)
	}
	if f.Category != "" {
		query += " AND category = ?"
		args = append(args, f.Category)
	}
	if f.AgeYears > 0 {
		query += " AND age_min <= ? AND age_max >= ?"
		args = append(args, f.AgeYears, f.AgeYears)
	}
	if f.Difficulty != "" {
		query += " AND difficulty = ?"
		args = append(args, f.Difficulty)
	}
	if f.Constraint != "" {
		query += " AND constraints LIKE ?"
		args = append(args, `%"`+f.Constraint+`"%`)
	}
	query += " ORDER BY updated_at DESC, id LIMIT ? OFFSET ?"
	args = append(args, limit, offset)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("search drills: %w", err)
	}
	defer rows.Close()

	var drills []content.Drill
	for rows.Next() {
		d, err := scanDrill(rows)
		if err != nil {
			return nil, fmt.Errorf("scan drill: %w", err)
		}
		drills = append(drills, d)
	}
	return drills, rows.Err()
}

func scanDrill(rows *sql.Rows) (content.Drill, error) {
	var (
		d                                    content.Drill
		description, category, difficulty    sql.NullString
		duration, reps, authorID             sql.NullString
		equipment, tags, constraints         sql.NullString
		steps, embedding                     sql.NullString
	)
	err := rows.Scan(
		&d.ID, &d.Slug, &d.Title, &description, &d.Sport, &category,
		&d.AgeMin, &d.AgeMax, &difficulty, &duration, &reps,
		&equipment, &tags, &constraints, &steps, &authorID, &embedding,
		&d.UpdatedAt,
	)
	if err != nil {
		return d, err
	}
	d.Description = description.String
	d.Category = category.String
	d.Difficulty = difficulty.String
	d.Duration = duration.String
	d.Reps = reps.String
	d.AuthorID = authorID.String
	d.Equipment = unmarshalStrings(equipment.String)
	d.Tags = unmarshalStrings(tags.String)
	d.Constraints = unmarshalStrings(constraints.String)
	d.Steps = unmarshalSteps(steps.String)
	d.Embedding = unmarshalFloats(embedding.String)
	return d, nil
}

// SearchQnA returns Q&A entries, optionally narrowed to a category.
func (s *Store) SearchQnA(ctx context.Context, category string, limit, offset int) ([]content.QnA, error) {
	query := `
		SELECT id, slug, question, direct_answer, category, keywords,
		       key_takeaways, safety_note, author_id, embedding, updated_at
		FROM qna
		WHERE 1 = 1
	`
	var args []any
	if category != "" {
		query += " AND category = ?"
		args = append(args, category)
	}
	query += " ORDER BY updated_at DESC, id LIMIT ? OFFSET ?"
	args = append(args, limit, offset)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("search qna: %w", err)
	}
	defer rows.Close()

	var entries []content.QnA
	for rows.Next() {
		var (
			q                                content.QnA
			directAnswer, cat, safetyNote    sql.NullString
			keywords, takeaways              sql.NullString
			authorID, embedding              sql.NullString
		)
		err := rows.Scan(
			&q.ID, &q.Slug, &q.Question, &directAnswer, &cat,
			&keywords, &takeaways, &safetyNote, &authorID, &embedding,
			&q.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan qna: %w", err)
		}
		q.DirectAnswer = directAnswer.String
		q.Category = cat.String
		q.SafetyNote = safetyNote.String
		q.AuthorID = authorID.String
		q.Keywords = unmarshalStrings(keywords.String)
		q.KeyTakeaways = unmarshalStrings(takeaways.String)
		q.Embedding = unmarshalFloats(embedding.String)
		entries = append(entries, q)
	}
	return entries, rows.Err()
}

// ExpertBySlug returns the active expert with the given slug, or ErrNotFound.
func (s *Store) ExpertBySlug(ctx context.Context, slug string) (*content.Expert, error) {
	row := s.db.QueryRowContext(ctx, expertSelect+" WHERE slug = ? AND active = 1", slug)
	expert, err := scanExpert(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("expert by slug: %w", err)
	}
	return expert, nil
}

// ListExperts returns all active experts ordered by name.
func (s *Store) ListExperts(ctx context.Context) ([]content.Expert, error) {
	rows, err := s.db.QueryContext(ctx, expertSelect+" WHERE active = 1 ORDER BY name, id")
	if err != nil {
		return nil, fmt.Errorf("list experts: %w", err)
	}
	defer rows.Close()

	var experts []content.Expert
	for rows.Next() {
		expert, err := scanExpert(rows)
		if err != nil {
			return nil, fmt.Errorf("scan expert: %w", err)
		}
		experts = append(experts, *expert)
	}
	return experts, rows.Err()
}

// AuthorsByID fetches authors in one batch, keyed by id. Missing ids are
// simply absent from the map.
func (s *Store) AuthorsByID(ctx context.Context, ids []string) (map[string]*content.Expert, error) {
	authors := make(map[string]*content.Expert, len(ids))
	if len(ids) == 0 {
		return authors, nil
	}

	placeholders := strings.TrimRight(strings.Repeat("?,", len(ids)), ",")
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}

	rows, err := s.db.QueryContext(ctx, expertSelect+" WHERE id IN ("+placeholders+")", args...)
	if err != nil {
		return nil, fmt.Errorf("authors by id: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		expert, err := scanExpert(rows)
		if err != nil {
			return nil, fmt.Errorf("scan author: %w", err)
		}
		authors[expert.ID] = expert
	}
	return authors, rows.Err()
}

// AuthorContentCount returns how many drills and Q&A entries the author has
// published.
func (s *Store) AuthorContentCount(ctx context.Context, authorID string) (content.ContentCount, error) {
	var count content.ContentCount
	err := s.db.QueryRowContext(ctx, `
		SELECT
			(SELECT COUNT(*) FROM drills WHERE author_id = ?),
			(SELECT COUNT(*) FROM qna WHERE author_id = ?)
	`, authorID, authorID).Scan(&count.Drills, &count.Articles)
	if err != nil {
		return count, fmt.Errorf("author content count: %w", err)
	}
	return count, nil
}

// AuthorTopics returns the distinct categories the author has published in.
func (s *Store) AuthorTopics(ctx context.Context, authorID string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT DISTINCT category FROM (
			SELECT category FROM drills WHERE author_id = ? AND category != ''
			UNION
			SELECT category FROM qna WHERE author_id = ? AND category != ''
		) ORDER BY category
	`, authorID, authorID)
	if err != nil {
		return nil, fmt.Errorf("author topics: %w", err)
	}
	defer rows.Close()

	var topics []string
	for rows.Next() {
		var topic string
		if err := rows.Scan(&topic); err != nil {
			return nil, fmt.Errorf("scan topic: %w", err)
		}
		topics = append(topics, topic)
	}
	return topics, rows.Err()
}

const expertSelect = `
	SELECT id, slug, name, title, icon, credentials, bio, avatar_url,
	       instagram, twitter, wikipedia, youtube, active
	FROM authors
`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanExpert(row rowScanner) (*content.Expert, error) {
	var (
		e                               content.Expert
		title, icon, credentials, bio   sql.NullString
		avatarURL                       sql.NullString
		instagram, twitter, wiki, yt    sql.NullString
	)
	err := row.Scan(
		&e.ID, &e.Slug, &e.Name, &title, &icon, &credentials, &bio,
		&avatarURL, &instagram, &twitter, &wiki, &yt, &e.Active,
	)
	if err != nil {
		return nil, err
	}
	e.Title = title.String
	e.Icon = icon.String
	e.Credentials = unmarshalStrings(credentials.String)
	e.Bio = bio.String
	e.AvatarURL = avatarURL.String
	e.Social = content.SocialLinks{
		Instagram: instagram.String,
		Twitter:   twitter.String,
		Wikipedia: wiki.String,
		YouTube:   yt.String,
	}
	return &e, nil
}

// UpsertDrill inserts or replaces a drill record. Used by the seeding path.
func (s *Store) UpsertDrill(ctx context.Context, d content.Drill) error {
	equipment, err := marshalJSON(d.Equipment)
	if err != nil {
		return fmt.Errorf("marshal equipment: %w", err)
	}
	tags, err := marshalJSON(d.Tags)
	if err != nil {
		return fmt.Errorf("marshal tags: %w", err)
	}
	constraints, err := marshalJSON(d.Constraints)
	if err != nil {
		return fmt.Errorf("marshal constraints: %w", err)
	}
	steps, err := marshalJSON(d.Steps)
	if err != nil {
		return fmt.Errorf("marshal steps: %w", err)
	}
	embedding, err := marshalJSON(d.Embedding)
	if err != nil {
		return fmt.Errorf("marshal embedding: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO drills (id, slug, title, description, sport, category,
			age_min, age_max, difficulty, duration, reps, equipment, tags,
			constraints, steps, author_id, embedding, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			slug = excluded.slug,
			title = excluded.title,
			description = excluded.description,
			sport = excluded.sport,
			category = excluded.category,
			age_min = excluded.age_min,
			age_max = excluded.age_max,
			difficulty = excluded.difficulty,
			duration = excluded.duration,
			reps = excluded.reps,
			equipment = excluded.equipment,
			tags = excluded.tags,
			constraints = excluded.constraints,
			steps = excluded.steps,
			author_id = excluded.author_id,
			embedding = excluded.embedding,
			updated_at = excluded.updated_at
	`, d.ID, d.Slug, d.Title, d.Description, d.Sport, d.Category,
		d.AgeMin, d.AgeMax, d.Difficulty, d.Duration, d.Reps, equipment, tags,
		constraints, steps, d.AuthorID, embedding, d.UpdatedAt)
	if err != nil {
		return fmt.Errorf("upsert drill: %w", err)
	}
	return nil
}

// UpsertQnA inserts or replaces a Q&A record.
func (s *Store) UpsertQnA(ctx context.Context, q content.QnA) error {
	keywords, err := marshalJSON(q.Keywords)
	if err != nil {
		return fmt.Errorf("marshal keywords: %w", err)
	}
	takeaways, err := marshalJSON(q.KeyTakeaways)
	if err != nil {
		return fmt.Errorf("marshal key takeaways: %w", err)
	}
	embedding, err := marshalJSON(q.Embedding)
	if err != nil {
		return fmt.Errorf("marshal embedding: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO qna (id, slug, question, direct_answer, category, keywords,
			key_takeaways, safety_note, author_id, embedding, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			slug = excluded.slug,
			question = excluded.question,
			direct_answer = excluded.direct_answer,
			category = excluded.category,
			keywords = excluded.keywords,
			key_takeaways = excluded.key_takeaways,
			safety_note = excluded.safety_note,
			author_id = excluded.author_id,
			embedding = excluded.embedding,
			updated_at = excluded.updated_at
	`, q.ID, q.Slug, q.Question, q.DirectAnswer, q.Category, keywords,
		takeaways, q.SafetyNote, q.AuthorID, embedding, q.UpdatedAt)
	if err != nil {
		return fmt.Errorf("upsert qna: %w", err)
	}
	return nil
}

// UpsertAuthor inserts or replaces an author record.
func (s *Store) UpsertAuthor(ctx context.Context, e content.Expert) error {
	credentials, err := marshalJSON(e.Credentials)
	if err != nil {
		return fmt.Errorf("marshal credentials: %w", err)
	}

	active := 0
	if e.Active {
		active = 1
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO authors (id, slug, name, title, icon, credentials, bio,
			avatar_url, instagram, twitter, wikipedia, youtube, active)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			slug = excluded.slug,
			name = excluded.name,
			title = excluded.title,
			icon = excluded.icon,
			credentials = excluded.credentials,
			bio = excluded.bio,
			avatar_url = excluded.avatar_url,
			instagram = excluded.instagram,
			twitter = excluded.twitter,
			wikipedia = excluded.wikipedia,
			youtube = excluded.youtube,
			active = excluded.active
	`, e.ID, e.Slug, e.Name, e.Title, e.Icon, credentials, e.Bio,
		e.AvatarURL, e.Social.Instagram, e.Social.Twitter, e.Social.Wikipedia,
		e.Social.YouTube, active)
	if err != nil {
		return fmt.Errorf("upsert author: %w", err)
	}
	return nil
}

func unmarshalSteps(raw string) []content.Step {
	if raw == "" {
		return nil
	}
	var steps []content.Step
	if err := unmarshalInto(raw, &steps); err != nil {
		return nil
	}
	return steps
}
