package db

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"amsvault/internal/store"
	"amsvault/internal/store/storetest"
)

func openTestDB(t *testing.T, opts ...Option) *DB {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "test.db")
	database, err := Open(dbPath, opts...)
	if err != nil {
		t.Fatalf("Open(): %v", err)
	}
	t.Cleanup(func() { _ = database.Close() })
	return database
}

func TestConformance(t *testing.T) {
	storetest.Run(t, func(t *testing.T, now func() time.Time) store.Store {
		return openTestDB(t, WithClock(now))
	})
}

func TestOpen_StampsSchemaVersion(t *testing.T) {
	database := openTestDB(t)

	v, err := database.SchemaVersion()
	if err != nil {
		t.Fatalf("SchemaVersion(): %v", err)
	}
	if v != store.SchemaVersion {
		t.Fatalf("SchemaVersion()=%d, want %d", v, store.SchemaVersion)
	}

	// Running the migration again is a no-op.
	if err := database.Migrate(); err != nil {
		t.Fatalf("Migrate(): %v", err)
	}
}

func TestMigrate_HashesLegacyPasswords(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "legacy.db")
	database, err := New(dbPath)
	if err != nil {
		t.Fatalf("New(): %v", err)
	}
	t.Cleanup(func() { _ = database.Close() })

	// Layout written by the first release.
	if _, err := database.Exec(`
		CREATE TABLE users (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			name TEXT NOT NULL,
			email TEXT UNIQUE NOT NULL,
			password TEXT NOT NULL,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP
		);
		CREATE TABLE stories (
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
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP
		);
		CREATE TABLE bookmarks (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			user_id INTEGER NOT NULL,
			story_id INTEGER NOT NULL,
			status TEXT NOT NULL,
			current_season INTEGER DEFAULT 0,
			current_episode INTEGER DEFAULT 0,
			current_volume INTEGER DEFAULT 0,
			current_chapter INTEGER DEFAULT 0,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			updated_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			FOREIGN KEY (user_id) REFERENCES users (id) ON DELETE CASCADE,
			FOREIGN KEY (story_id) REFERENCES stories (id) ON DELETE CASCADE,
			UNIQUE (user_id, story_id)
		);
		INSERT INTO users (name, email, password, created_at) VALUES ('Ana', 'ana@example.com', '123456', '2024-03-01 10:00:00');
		INSERT INTO stories (name, source, created_at) VALUES ('Berserk', 'manga', '2024-03-01 10:00:00');
		INSERT INTO bookmarks (user_id, story_id, status, current_chapter, created_at, updated_at)
			VALUES (1, 1, 'reading', 120, '2024-03-01 10:00:00', '2024-03-02 11:30:00');
	`); err != nil {
		t.Fatalf("seed legacy schema: %v", err)
	}

	if err := database.CreateTables(); err != nil {
		t.Fatalf("CreateTables(): %v", err)
	}
	if err := database.Migrate(); err != nil {
		t.Fatalf("Migrate(): %v", err)
	}

	hasPassword, err := database.hasColumn("users", "password")
	if err != nil {
		t.Fatalf("hasColumn(): %v", err)
	}
	if hasPassword {
		t.Fatalf("users.password still present after Migrate()")
	}

	ctx := context.Background()
	u, err := database.AuthenticateUser(ctx, "ana@example.com", "123456")
	if err != nil {
		t.Fatalf("AuthenticateUser(): %v", err)
	}
	if u == nil {
		t.Fatalf("AuthenticateUser() = nil, want migrated user")
	}

	list, err := database.GetBookmarksByUser(ctx, u.ID)
	if err != nil {
		t.Fatalf("GetBookmarksByUser(): %v", err)
	}
	if len(list) != 1 || list[0].CurrentChapter != 120 || list[0].Story.Name != "Berserk" {
		t.Fatalf("GetBookmarksByUser() = %+v, want the legacy Berserk bookmark", list)
	}
	want := time.Date(2024, 3, 2, 11, 30, 0, 0, time.UTC)
	if !list[0].UpdatedAt.Equal(want) {
		t.Fatalf("UpdatedAt=%v, want %v", list[0].UpdatedAt, want)
	}
}

func TestGetBookmarksByUser_DoesNotHoldConnectionOpen(t *testing.T) {
	database := openTestDB(t)
	ctx := context.Background()

	u, err := database.CreateUser(ctx, "Ana", "ana@example.com", "pw")
	if err != nil {
		t.Fatalf("CreateUser(): %v", err)
	}
	storyID, err := database.CreateStory(ctx, store.StoryInput{Name: "Dragon Ball Super", Source: store.SourceManga})
	if err != nil {
		t.Fatalf("CreateStory(): %v", err)
	}
	bookmarkID, err := database.CreateBookmark(ctx, store.BookmarkInput{UserID: u.ID, StoryID: storyID})
	if err != nil {
		t.Fatalf("CreateBookmark(): %v", err)
	}

	list, err := database.GetBookmarksByUser(ctx, u.ID)
	if err != nil {
		t.Fatalf("GetBookmarksByUser(): %v", err)
	}
	if len(list) != 1 {
		t.Fatalf("GetBookmarksByUser() len=%d, want 1", len(list))
	}

	chapter := 5
	done := make(chan error, 1)
	go func() {
		done <- database.UpdateBookmark(ctx, bookmarkID, store.BookmarkUpdate{CurrentChapter: &chapter})
	}()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("UpdateBookmark(): %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("UpdateBookmark() appears blocked (possible connection/rows leak)")
	}
}

func TestParseSQLiteTime(t *testing.T) {
	tests := []struct {
		in   string
		want time.Time
	}{
		{"2025-01-02T03:04:05.000000007Z", time.Date(2025, 1, 2, 3, 4, 5, 7, time.UTC)},
		{"2025-01-02 03:04:05", time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)},
		{"2025-01-02 03:04:05+02:00", time.Date(2025, 1, 2, 1, 4, 5, 0, time.UTC)},
	}
	for _, tt := range tests {
		got, err := parseSQLiteTime(tt.in)
		if err != nil {
			t.Fatalf("parseSQLiteTime(%q): %v", tt.in, err)
		}
		if !got.Equal(tt.want) {
			t.Fatalf("parseSQLiteTime(%q)=%v, want %v", tt.in, got, tt.want)
		}
	}

	if _, err := parseSQLiteTime("yesterday"); err == nil {
		t.Fatalf("parseSQLiteTime(yesterday) expected error")
	}
	if got := formatTime(time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)); got != "2025-01-02T03:04:05.000000000Z" {
		t.Fatalf("formatTime()=%q", got)
	}
}
