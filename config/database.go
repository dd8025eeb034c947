package config

import (
	"database/sql"
	"log"

	_ "github.com/mattn/go-sqlite3"
)

// JournalDSN keeps the command journal in memory only; nothing survives a restart.
const JournalDSN = "file::memory:?_foreign_keys=on"

const migrations = `
CREATE TABLE IF NOT EXISTS command_history (
	id         TEXT PRIMARY KEY,
	seq        INTEGER NOT NULL,
	source     TEXT NOT NULL,
	type       TEXT NOT NULL,
	code       TEXT NOT NULL DEFAULT '',
	text       TEXT NOT NULL DEFAULT '',
	package    TEXT NOT NULL DEFAULT '',
	success    INTEGER NOT NULL,
	target     TEXT NOT NULL DEFAULT '',
	detail     TEXT NOT NULL DEFAULT '',
	created_at INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_command_history_seq ON command_history(seq);
`

// InitDatabase opens the in-memory SQLite journal and creates its schema
func InitDatabase() (*sql.DB, error) {
	db, err := sql.Open("sqlite3", JournalDSN)
	if err != nil {
		return nil, err
	}

	// Every pooled connection to :memory: is a separate database
	db.SetMaxOpenConns(1)

	// Test connection
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, err
	}

	// Run migrations
	if _, err := db.Exec(migrations); err != nil {
		db.Close()
		return nil, err
	}

	log.Println("Command journal initialized (in-memory)")
	return db, nil
}
