package db

// CreateTables creates the necessary tables in the database.
func (db *DB) CreateTables() error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS users (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			name TEXT NOT NULL,
			email TEXT NOT NULL UNIQUE,
			password_hash TEXT NOT NULL DEFAULT '',
			created_at TEXT
		);

		CREATE TABLE IF NOT EXISTS stories (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			mal_id INTEGER,
			name TEXT NOT NULL,
			source TEXT NOT NULL,
			description TEXT,
			total_season INTEGER DEFAULT 0,
			total_episode INTEGER DEFAULT 0,
			total_volume INTEGER DEFAULT 0,
			total_chapter INTEGER DEFAULT 0,
			status TEXT DEFAULT 'ongoing',
			main_picture_medium TEXT,
			main_picture_large TEXT,
			created_at TEXT
		);

		CREATE TABLE IF NOT EXISTS bookmarks (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			user_id INTEGER NOT NULL,
			story_id INTEGER NOT NULL,
			status TEXT NOT NULL,
			current_season INTEGER DEFAULT 0,
			current_episode INTEGER DEFAULT 0,
			current_volume INTEGER DEFAULT 0,
			current_chapter INTEGER DEFAULT 0,
			created_at TEXT,
			updated_at TEXT,
			FOREIGN KEY (user_id) REFERENCES users (id) ON DELETE CASCADE,
			FOREIGN KEY (story_id) REFERENCES stories (id) ON DELETE CASCADE,
			UNIQUE (user_id, story_id)
		);

		CREATE TABLE IF NOT EXISTS release_checks (
			story_id INTEGER PRIMARY KEY,
			seen_total INTEGER NOT NULL,
			checked_at TEXT,
			FOREIGN KEY (story_id) REFERENCES stories (id) ON DELETE CASCADE
		);

		CREATE INDEX IF NOT EXISTS idx_bookmarks_user ON bookmarks (user_id);
		CREATE INDEX IF NOT EXISTS idx_bookmarks_story ON bookmarks (story_id);
		CREATE INDEX IF NOT EXISTS idx_stories_source ON stories (source);
	`)
	return err
}
