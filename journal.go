package main

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

func ensureDir(path string) error {
	return os.MkdirAll(path, 0o755)
}

// decisionJournal keeps a local record of every operator decision:
// approvals, declines, and tax-setting edits. Useful when the remote
// service's own audit trail is out of reach.
type decisionJournal struct {
	db   *sql.DB
	path string
}

type decisionEntry struct {
	At            time.Time
	CorporationID int64
	Action        string
	Target        string
	Note          string
	Outcome       string
}

func openDecisionJournal() (*decisionJournal, error) {
	dir := resolveConfigDir()
	if err := ensureDir(dir); err != nil {
		return nil, err
	}
	sqlitePath := filepath.Join(dir, "decisions.sqlite")
	db, err := sql.Open("sqlite", sqlitePath)
	if err != nil {
		return nil, err
	}
	if err := migrateDecisionJournal(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &decisionJournal{db: db, path: sqlitePath}, nil
}

func migrateDecisionJournal(db *sql.DB) error {
	statements := []string{
		`PRAGMA journal_mode=WAL;`,
		`CREATE TABLE IF NOT EXISTS decisions (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
			corporation_id INTEGER NOT NULL,
			action TEXT NOT NULL,
			target TEXT NOT NULL DEFAULT '',
			note TEXT NOT NULL DEFAULT '',
			outcome TEXT NOT NULL DEFAULT ''
		);`,
	}
	for _, stmt := range statements {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("decision journal migration failed: %w", err)
		}
	}
	return nil
}

func (j *decisionJournal) Close() error {
	if j == nil || j.db == nil {
		return nil
	}
	return j.db.Close()
}

func (j *decisionJournal) Record(entry decisionEntry) error {
	if j == nil || j.db == nil {
		return nil
	}
	if entry.At.IsZero() {
		entry.At = time.Now().UTC()
	}
	_, err := j.db.Exec(
		`INSERT INTO decisions (at, corporation_id, action, target, note, outcome) VALUES (?, ?, ?, ?, ?, ?)`,
		entry.At, entry.CorporationID, entry.Action, entry.Target, entry.Note, entry.Outcome,
	)
	return err
}

func (j *decisionJournal) Recent(limit int) ([]decisionEntry, error) {
	if j == nil || j.db == nil {
		return nil, nil
	}
	if limit <= 0 {
		limit = 50
	}
	rows, err := j.db.Query(
		`SELECT at, corporation_id, action, target, note, outcome FROM decisions ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []decisionEntry
	for rows.Next() {
		var entry decisionEntry
		if err := rows.Scan(&entry.At, &entry.CorporationID, &entry.Action, &entry.Target, &entry.Note, &entry.Outcome); err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}
