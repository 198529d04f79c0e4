package store

// migration represents a single schema migration.
type migration struct {
	Version int
	Name    string
	SQL     string
}

// migrations is the ordered list of all schema migrations.
var migrations = []migration{
	{
		Version: 1,
		Name:    "create threads and messages",
		SQL: `
			CREATE TABLE threads (
				id          TEXT PRIMARY KEY,
				created_at  TEXT NOT NULL DEFAULT (datetime('now')),
				updated_at  TEXT NOT NULL DEFAULT (datetime('now'))
			);

			CREATE TABLE messages (
				id            INTEGER PRIMARY KEY AUTOINCREMENT,
				thread_id     TEXT NOT NULL REFERENCES threads(id) ON DELETE CASCADE,
				role          TEXT NOT NULL,
				content       TEXT NOT NULL,
				tool_calls    TEXT,
				tool_call_id  TEXT NOT NULL DEFAULT '',
				timestamp     TEXT NOT NULL DEFAULT (datetime('now'))
			);

			CREATE INDEX idx_messages_thread ON messages (thread_id, id);
		`,
	},
}
