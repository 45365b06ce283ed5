package store

// migration holds a single schema migration with its target version and SQL.
type migration struct {
	version int
	sql     string
}

// migrations is the ordered list of schema migrations.
// Each migration's version must be sequential starting from 1.
var migrations = []migration{
	{
		version: 1,
		sql: `
CREATE TABLE IF NOT EXISTS schema_version (
	version INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS progress (
	id         TEXT PRIMARY KEY,
	date       TEXT NOT NULL,
	category   TEXT NOT NULL CHECK(category IN ('sleep', 'mindfulness', 'focus')),
	value      REAL NOT NULL DEFAULT 0,
	start_time DATETIME,
	end_time   DATETIME,
	achieved   INTEGER NOT NULL DEFAULT 0 CHECK(achieved IN (0, 1)),
	notes      TEXT NOT NULL DEFAULT '',
	created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
	updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
	UNIQUE(date, category)
);

CREATE INDEX IF NOT EXISTS idx_progress_date ON progress(date);

CREATE TABLE IF NOT EXISTS settings (
	key   TEXT PRIMARY KEY,
	value TEXT NOT NULL
);

INSERT INTO schema_version (version) VALUES (1);
`,
	},
	{
		version: 2,
		sql: `
CREATE TABLE IF NOT EXISTS journal (
	id         TEXT PRIMARY KEY,
	date       TEXT NOT NULL,
	title      TEXT NOT NULL,
	body       TEXT NOT NULL DEFAULT '',
	mood       TEXT NOT NULL DEFAULT 'neutral',
	created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
	updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_journal_date ON journal(date);

INSERT INTO schema_version (version) VALUES (2);
`,
	},
}
