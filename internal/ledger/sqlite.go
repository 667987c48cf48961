package ledger

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"mailpilot/internal/domain"

	_ "modernc.org/sqlite"
)

// SQLite is the local audit ledger: one row per suggestion, mirroring what
// goes to the spreadsheet, readable via the history CLI command.
type SQLite struct {
	db     *sql.DB
	logger *slog.Logger
}

func NewSQLite(dbPath string, logger *slog.Logger) (*SQLite, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("cannot create database directory %s: %w", dir, err)
	}

	db, err := sql.Open("sqlite", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("cannot open database: %w", err)
	}

	// Single connection: SQLite serializes writers anyway.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	s := &SQLite{db: db, logger: logger}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("database migration failed: %w", err)
	}
	return s, nil
}

func (s *SQLite) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS suggestions (
		id          INTEGER PRIMARY KEY AUTOINCREMENT,
		created_at  DATETIME NOT NULL,
		subject     TEXT NOT NULL,
		suggestion  TEXT NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_suggestions_created ON suggestions(created_at);
	`
	_, err := s.db.Exec(schema)
	return err
}

func (s *SQLite) AppendRecord(ctx context.Context, rec domain.SuggestionRecord) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO suggestions (created_at, subject, suggestion) VALUES (?, ?, ?)`,
		rec.Timestamp.UTC().Format(time.RFC3339), rec.Subject, rec.Suggestion,
	)
	if err != nil {
		return fmt.Errorf("insert suggestion: %w", err)
	}
	return nil
}

// Recent returns the newest limit records, newest first.
func (s *SQLite) Recent(ctx context.Context, limit int) ([]domain.SuggestionRecord, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT created_at, subject, suggestion FROM suggestions ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query suggestions: %w", err)
	}
	defer rows.Close()

	var records []domain.SuggestionRecord
	for rows.Next() {
		var created, subject, suggestion string
		if err := rows.Scan(&created, &subject, &suggestion); err != nil {
			return nil, fmt.Errorf("scan suggestion: %w", err)
		}
		ts, _ := time.Parse(time.RFC3339, created)
		records = append(records, domain.SuggestionRecord{
			Timestamp:  ts,
			Subject:    subject,
			Suggestion: suggestion,
		})
	}
	return records, rows.Err()
}

func (s *SQLite) Close() error {
	return s.db.Close()
}
