package db

import (
	"fmt"

	"amsvault/internal/store"
)

// Migrate upgrades databases written by older releases and stamps the schema version.
// It is safe to run on every start.
func (db *DB) Migrate() error {
	db.writeMu.Lock()
	defer db.writeMu.Unlock()

	version, err := db.userVersion()
	if err != nil {
		return err
	}
	if version >= store.SchemaVersion {
		return nil
	}

	hasPasswordHash, err := db.hasColumn("users", "password_hash")
	if err != nil {
		return err
	}
	if !hasPasswordHash {
		if _, err := db.Exec("ALTER TABLE users ADD COLUMN password_hash TEXT NOT NULL DEFAULT ''"); err != nil {
			return err
		}
	}

	// Version 1 kept passwords in clear text. Hash them in place, then drop the column.
	hasPassword, err := db.hasColumn("users", "password")
	if err != nil {
		return err
	}
	if hasPassword {
		if err := db.hashLegacyPasswords(); err != nil {
			return err
		}
		if _, err := db.Exec("ALTER TABLE users DROP COLUMN password"); err != nil {
			return err
		}
	}

	// Version 1 used CURRENT_TIMESTAMP ("YYYY-MM-DD HH:MM:SS"); rewrite to the sortable layout.
	for _, col := range []struct{ table, column string }{
		{"users", "created_at"},
		{"stories", "created_at"},
		{"bookmarks", "created_at"},
		{"bookmarks", "updated_at"},
	} {
		if _, err := db.Exec(fmt.Sprintf(`
			UPDATE %[1]s
			SET %[2]s = strftime('%%Y-%%m-%%dT%%H:%%M:%%S', %[2]s) || '.000000000Z'
			WHERE %[2]s IS NOT NULL AND %[2]s NOT LIKE '%%T%%'
		`, col.table, col.column)); err != nil {
			return err
		}
	}

	_, err = db.Exec(fmt.Sprintf("PRAGMA user_version = %d", store.SchemaVersion))
	return err
}

func (db *DB) hashLegacyPasswords() error {
	type legacyUser struct {
		id       int64
		password string
	}

	rows, err := db.Query("SELECT id, COALESCE(password, '') FROM users WHERE password_hash = ''")
	if err != nil {
		return err
	}
	var pending []legacyUser
	for rows.Next() {
		var u legacyUser
		if err := rows.Scan(&u.id, &u.password); err != nil {
			_ = rows.Close()
			return err
		}
		pending = append(pending, u)
	}
	if err := rows.Err(); err != nil {
		_ = rows.Close()
		return err
	}
	_ = rows.Close()

	for _, u := range pending {
		hash, err := store.HashPassword(u.password)
		if err != nil {
			return err
		}
		if _, err := db.Exec("UPDATE users SET password_hash = ? WHERE id = ?", hash, u.id); err != nil {
			return err
		}
	}
	return nil
}

// SchemaVersion reports the version stamped by Migrate.
func (db *DB) SchemaVersion() (int, error) {
	return db.userVersion()
}

func (db *DB) userVersion() (int, error) {
	var v int
	if err := db.QueryRow("PRAGMA user_version").Scan(&v); err != nil {
		return 0, err
	}
	return v, nil
}

func (db *DB) hasColumn(tableName, columnName string) (bool, error) {
	rows, err := db.Query("PRAGMA table_info(" + tableName + ")")
	if err != nil {
		return false, err
	}
	defer func() { _ = rows.Close() }()

	for rows.Next() {
		var cid int
		var name string
		var ctype string
		var notNull int
		var dfltValue any
		var pk int
		if err := rows.Scan(&cid, &name, &ctype, &notNull, &dfltValue, &pk); err != nil {
			return false, err
		}
		if name == columnName {
			return true, nil
		}
	}
	if err := rows.Err(); err != nil {
		return false, err
	}
	return false, nil
}
