package store

const schema = `
CREATE TABLE IF NOT EXISTS authors (
	id TEXT PRIMARY KEY,
	slug TEXT NOT NULL UNIQUE,
	name TEXT NOT NULL,
	title TEXT,
	icon TEXT,
	credentials TEXT,
	bio TEXT,
	avatar_url TEXT,
	instagram TEXT,
	twitter TEXT,
	wikipedia TEXT,
	youtube TEXT,
	active INTEGER DEFAULT 1
);

CREATE TABLE IF NOT EXISTS drills (
	id TEXT PRIMARY KEY,
	slug TEXT NOT NULL UNIQUE,
	title TEXT NOT NULL,
	description TEXT,
	sport TEXT NOT NULL,
	category TEXT,
	age_min INTEGER DEFAULT 0,
	age_max INTEGER DEFAULT 0,
	difficulty TEXT,
	duration TEXT,
	reps TEXT,
	equipment TEXT,
	tags TEXT,
	constraints TEXT,
	steps TEXT,
	author_id TEXT,
	embedding TEXT,
	updated_at DATETIME NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_drills_sport ON drills(sport);
CREATE INDEX IF NOT EXISTS idx_drills_category ON drills(category);
CREATE INDEX IF NOT EXISTS idx_drills_author ON drills(author_id);

CREATE TABLE IF NOT EXISTS qna (
	id TEXT PRIMARY KEY,
	slug TEXT NOT NULL UNIQUE,
	question TEXT NOT NULL,
	direct_answer TEXT,
	category TEXT,
	keywords TEXT,
	key_takeaways TEXT,
	safety_note TEXT,
	author_id TEXT,
	embedding TEXT,
	updated_at DATETIME NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_qna_category ON qna(category);
CREATE INDEX IF NOT EXISTS idx_qna_author ON qna(author_id);

CREATE TABLE IF NOT EXISTS retrieval_log (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	query TEXT NOT NULL,
	source TEXT,
	content_type TEXT,
	results_returned INTEGER NOT NULL DEFAULT 0,
	cited_entity_ids TEXT,
	response_ms INTEGER NOT NULL DEFAULT 0,
	cache_hit INTEGER NOT NULL DEFAULT 0,
	trace_id TEXT,
	created_at DATETIME NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_retrieval_created ON retrieval_log(created_at DESC);
CREATE INDEX IF NOT EXISTS idx_retrieval_query ON retrieval_log(query);

CREATE TABLE IF NOT EXISTS search_log (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	query TEXT NOT NULL,
	results_count INTEGER NOT NULL DEFAULT 0,
	clicked_entity_id TEXT,
	clicked_entity_type TEXT,
	source TEXT,
	session_id TEXT,
	created_at DATETIME NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_search_created ON search_log(created_at DESC);
`

func (s *Store) migrate() error {
	_, err := s.db.Exec(schema)
	return err
}
