package findings

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS findings (
	id                TEXT PRIMARY KEY,
	title             TEXT NOT NULL,
	severity          TEXT NOT NULL,
	compliance_status TEXT NOT NULL,
	record_state      TEXT NOT NULL,
	account_id        TEXT NOT NULL,
	updated_at        TEXT NOT NULL,
	raw               TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_findings_severity ON findings(severity);
CREATE INDEX IF NOT EXISTS idx_findings_status ON findings(compliance_status);
`

// Store is the local findings archive. Findings are upserted by ID so
// repeated audit runs keep one row per check/resource pair.
type Store struct {
	db *sql.DB
}

// OpenStore opens (and if needed creates) the archive at path.
func OpenStore(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating archive directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening findings archive: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("initializing findings archive: %w", err)
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// Save upserts a batch of findings in one transaction.
func (s *Store) Save(ctx context.Context, batch []Finding) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO findings (id, title, severity, compliance_status, record_state, account_id, updated_at, raw)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			title = excluded.title,
			severity = excluded.severity,
			compliance_status = excluded.compliance_status,
			record_state = excluded.record_state,
			updated_at = excluded.updated_at,
			raw = excluded.raw`)
	if err != nil {
		return fmt.Errorf("preparing upsert: %w", err)
	}
	defer stmt.Close()

	for _, f := range batch {
		raw, err := json.Marshal(f)
		if err != nil {
			return fmt.Errorf("marshaling finding %s: %w", f.Id, err)
		}
		if _, err := stmt.ExecContext(ctx, f.Id, f.Title, f.Severity.Label,
			f.Compliance.Status, f.RecordState, f.AwsAccountId, f.UpdatedAt, string(raw)); err != nil {
			return fmt.Errorf("upserting finding %s: %w", f.Id, err)
		}
	}

	return tx.Commit()
}

// Filter narrows List results. Zero-value fields match everything.
type Filter struct {
	Severity         string
	ComplianceStatus string
}

// List returns archived findings matching the filter, newest first.
func (s *Store) List(ctx context.Context, filter Filter) ([]Finding, error) {
	query := `SELECT raw FROM findings WHERE 1=1`
	var args []any
	if filter.Severity != "" {
		query += ` AND severity = ?`
		args = append(args, filter.Severity)
	}
	if filter.ComplianceStatus != "" {
		query += ` AND compliance_status = ?`
		args = append(args, filter.ComplianceStatus)
	}
	query += ` ORDER BY updated_at DESC, id`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying findings: %w", err)
	}
	defer rows.Close()

	var out []Finding
	for rows.Next() {
		var raw string
		if err := rows.Scan(&raw); err != nil {
			return nil, fmt.Errorf("scanning finding: %w", err)
		}
		var f Finding
		if err := json.Unmarshal([]byte(raw), &f); err != nil {
			return nil, fmt.Errorf("decoding finding: %w", err)
		}
		out = append(out, f)
	}
	return out, rows.Err()
}

// Count returns the number of archived findings.
func (s *Store) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM findings`).Scan(&n); err != nil {
		return 0, fmt.Errorf("counting findings: %w", err)
	}
	return n, nil
}
