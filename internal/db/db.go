package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/mattn/go-sqlite3"

	"amsvault/internal/store"
)

const driverName = "sqlite3_amsvault"

func init() {
	sql.Register(driverName, &sqlite3.SQLiteDriver{
		ConnectHook: func(conn *sqlite3.SQLiteConn) error {
			// casefold(x) backs case-insensitive name search beyond ASCII.
			return conn.RegisterFunc("casefold", store.FoldName, true)
		},
	})
}

// DB wraps the sql.DB connection and implements store.Store on SQLite.
type DB struct {
	*sql.DB

	// writeMu serializes writers; reads go straight to the single connection.
	writeMu sync.Mutex
	now     func() time.Time
}

var _ store.Store = (*DB)(nil)

type Option func(*DB)

// WithClock overrides the time source used for created_at/updated_at.
func WithClock(now func() time.Time) Option {
	return func(db *DB) { db.now = now }
}

// New opens a connection to the database.
func New(path string, opts ...Option) (*DB, error) {
	conn, err := sql.Open(driverName, path+"?_foreign_keys=on&_busy_timeout=5000&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("open %s: %w: %w", path, store.ErrUnavailable, err)
	}

	conn.SetMaxOpenConns(1)

	if err = conn.Ping(); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("ping %s: %w: %w", path, store.ErrUnavailable, err)
	}

	db := &DB{DB: conn, now: time.Now}
	for _, opt := range opts {
		opt(db)
	}
	return db, nil
}

// Open opens the database and brings its schema up to date.
func Open(path string, opts ...Option) (*DB, error) {
	db, err := New(path, opts...)
	if err != nil {
		return nil, err
	}
	if err := db.CreateTables(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create tables: %w: %w", store.ErrUnavailable, err)
	}
	if err := db.Migrate(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrate: %w: %w", store.ErrUnavailable, err)
	}
	return db, nil
}

// Close closes the database connection.
func (db *DB) Close() error {
	return db.DB.Close()
}

// ClearAll wipes every table and resets the id sequences.
func (db *DB) ClearAll(ctx context.Context) error {
	db.writeMu.Lock()
	defer db.writeMu.Unlock()

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	for _, stmt := range []string{
		"DELETE FROM release_checks",
		"DELETE FROM bookmarks",
		"DELETE FROM stories",
		"DELETE FROM users",
		"DELETE FROM sqlite_sequence WHERE name IN ('users', 'stories', 'bookmarks')",
	} {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("clear all: %w", err)
		}
	}
	return tx.Commit()
}

type scanner interface {
	Scan(dest ...any) error
}

func isConstraint(err error, code sqlite3.ErrNoExtended) bool {
	var se sqlite3.Error
	return errors.As(err, &se) && se.ExtendedCode == code
}

func isUniqueViolation(err error) bool {
	return isConstraint(err, sqlite3.ErrConstraintUnique) || isConstraint(err, sqlite3.ErrConstraintPrimaryKey)
}

func isForeignKeyViolation(err error) bool {
	return isConstraint(err, sqlite3.ErrConstraintForeignKey)
}

// affectedOne maps a zero-row write to store.ErrNotFound.
func affectedOne(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return store.ErrNotFound
	}
	return nil
}
