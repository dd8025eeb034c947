package service

import (
	"database/sql"
	"fmt"
	"sync"

	"tvbridge/models"
)

// Journal keeps the most recent dispatched commands in SQLite
type Journal struct {
	db   *sql.DB
	size int

	mu  sync.Mutex
	seq int64
}

// NewJournal wraps an initialized database; size <= 0 disables trimming
func NewJournal(db *sql.DB, size int) *Journal {
	return &Journal{db: db, size: size}
}

// Record stores an entry and trims the journal to its size
func (j *Journal) Record(e models.HistoryEntry) error {
	j.mu.Lock()
	defer j.mu.Unlock()

	j.seq++
	success := 0
	if e.Success {
		success = 1
	}

	_, err := j.db.Exec(`INSERT INTO command_history
		(id, seq, source, type, code, text, package, success, target, detail, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		e.ID, j.seq, e.Source, e.Command.Type, e.Command.Code, e.Command.Text, e.Command.Package,
		success, e.Target, e.Detail, e.Timestamp)
	if err != nil {
		return fmt.Errorf("insert history: %w", err)
	}

	if j.size > 0 {
		if _, err := j.db.Exec(`DELETE FROM command_history WHERE seq <= ?`, j.seq-int64(j.size)); err != nil {
			return fmt.Errorf("trim history: %w", err)
		}
	}
	return nil
}

// Recent returns up to limit entries, newest first
func (j *Journal) Recent(limit int) ([]models.HistoryEntry, error) {
	if limit <= 0 {
		return []models.HistoryEntry{}, nil
	}

	rows, err := j.db.Query(`SELECT id, source, type, code, text, package, success, target, detail, created_at
		FROM command_history ORDER BY seq DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query history: %w", err)
	}
	defer rows.Close()

	entries := make([]models.HistoryEntry, 0, limit)
	for rows.Next() {
		var e models.HistoryEntry
		var success int
		if err := rows.Scan(&e.ID, &e.Source, &e.Command.Type, &e.Command.Code, &e.Command.Text,
			&e.Command.Package, &success, &e.Target, &e.Detail, &e.Timestamp); err != nil {
			return nil, fmt.Errorf("scan history: %w", err)
		}
		e.Success = success == 1
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
