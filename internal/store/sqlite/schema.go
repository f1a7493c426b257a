package sqlite

import (
	"context"
	"fmt"

	"github.com/IrishAnn-code/HomeLibrary/internal/store"
)

// schema holds the DDL for every table, in dependency order.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		created_at DATETIME,
		updated_at DATETIME,
		username TEXT NOT NULL UNIQUE,
		email TEXT,
		password_hash TEXT NOT NULL,
		firstname TEXT,
		lastname TEXT,
		slug TEXT UNIQUE,
		tg_id INTEGER
	)`,
	`CREATE TABLE IF NOT EXISTS libraries (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		created_at DATETIME,
		updated_at DATETIME,
		name TEXT NOT NULL UNIQUE,
		slug TEXT UNIQUE,
		password_hash TEXT,
		owner_id INTEGER REFERENCES users(id) ON DELETE CASCADE
	)`,
	`CREATE TABLE IF NOT EXISTS memberships (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		created_at DATETIME,
		updated_at DATETIME,
		user_id INTEGER NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		library_id INTEGER NOT NULL REFERENCES libraries(id) ON DELETE CASCADE,
		role TEXT NOT NULL DEFAULT 'member',
		UNIQUE (user_id, library_id)
	)`,
	`CREATE TABLE IF NOT EXISTS books (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		created_at DATETIME,
		updated_at DATETIME,
		author TEXT,
		title TEXT NOT NULL,
		description TEXT,
		genre TEXT,
		color TEXT,
		lib_address TEXT,
		room TEXT,
		shelf TEXT,
		slug TEXT NOT NULL UNIQUE,
		library_id INTEGER REFERENCES libraries(id) ON DELETE CASCADE,
		user_id INTEGER REFERENCES users(id) ON DELETE CASCADE
	)`,
	`CREATE TABLE IF NOT EXISTS comments (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		created_at DATETIME,
		updated_at DATETIME,
		message TEXT NOT NULL,
		user_id INTEGER NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		book_id INTEGER NOT NULL REFERENCES books(id) ON DELETE CASCADE
	)`,
	`CREATE TABLE IF NOT EXISTS reading_statuses (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		created_at DATETIME,
		updated_at DATETIME,
		user_id INTEGER NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		book_id INTEGER NOT NULL REFERENCES books(id) ON DELETE CASCADE,
		status TEXT NOT NULL DEFAULT 'not_read',
		UNIQUE (user_id, book_id)
	)`,
	`CREATE INDEX IF NOT EXISTS ix_books_library_id ON books(library_id)`,
	`CREATE INDEX IF NOT EXISTS ix_books_user_id ON books(user_id)`,
	`CREATE INDEX IF NOT EXISTS ix_comments_book_id ON comments(book_id)`,
	`CREATE INDEX IF NOT EXISTS ix_comments_user_id ON comments(user_id)`,
	`CREATE INDEX IF NOT EXISTS ix_comments_created_at ON comments(created_at)`,
	`CREATE INDEX IF NOT EXISTS ix_memberships_user_id ON memberships(user_id)`,
	`CREATE INDEX IF NOT EXISTS ix_memberships_library_id ON memberships(library_id)`,
}

// Migrate creates all tables and indexes that do not exist yet.
func Migrate(ctx context.Context, db store.DBAdapter) error {
	for _, stmt := range schema {
		if _, err := db.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("sqlite: migrate: %w", err)
		}
	}
	return nil
}
