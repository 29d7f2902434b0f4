package db

// SchemaSQL is the complete schema for fresh mender installs.
//
// This is the single source of truth for the database schema. All
// repository tests load it via GetSchemaSQL() so test and production
// schemas cannot drift: if repository code references a column that is
// not defined here, tests fail immediately with "no such column".
//
// The attempts table is append-only. retry_count and requires_human
// are derived at insert time from prior rows for the same mission (see
// the sqlite adapter); they are never updated in place.
const SchemaSQL = `
-- Attempts (durable audit ledger, one row per repair try or escalation)
CREATE TABLE IF NOT EXISTS attempts (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	mission_id TEXT NOT NULL,
	session_id TEXT NOT NULL,
	visibility TEXT NOT NULL CHECK(visibility IN ('user', 'internal')) DEFAULT 'internal',
	reasoning TEXT,
	problem TEXT,
	solution TEXT,
	success INTEGER NOT NULL DEFAULT 0,
	error_message TEXT,
	retry_count INTEGER NOT NULL DEFAULT 0,
	context_blob TEXT,
	requires_human INTEGER NOT NULL DEFAULT 0,
	escalation_reason TEXT,
	created_at DATETIME DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_attempts_mission ON attempts(mission_id);
CREATE INDEX IF NOT EXISTS idx_attempts_session ON attempts(session_id);
CREATE INDEX IF NOT EXISTS idx_attempts_escalated ON attempts(requires_human);
CREATE INDEX IF NOT EXISTS idx_attempts_created ON attempts(created_at DESC);
`

// InitSchema creates the database schema
func InitSchema() error {
	db, err := GetDB()
	if err != nil {
		return err
	}

	_, err = db.Exec(SchemaSQL)
	return err
}

// GetSchemaSQL returns the authoritative schema SQL for use by tests.
// Tests should use this instead of hardcoding their own schema to prevent drift.
func GetSchemaSQL() string {
	return SchemaSQL
}
