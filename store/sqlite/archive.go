/*
Package sqlite provides the SQLite-backed audit archive.

PURPOSE:
  The in-memory audit log is retention-trimmed: once it exceeds 10,000
  entries the 1,000 oldest are purged in one batch. This archive receives
  those purged entries before they leave memory, so the full paper trail
  survives in a queryable table instead of vanishing.

SCHEMA:
  audit_archive(id TEXT PRIMARY KEY, ts, action, employee_id, details,
  performed_by), indexed by timestamp and employee. Migrated on New().

DUPLICATES:
  Inserts use INSERT OR IGNORE keyed on the entry UUID. If a trim archives
  successfully but the following snapshot save fails, the same entries can
  be re-offered after a reload; the archive stays exactly-once.

CONCURRENCY:
  The ledger store calls Archive under its write lock, so calls are already
  serialized. The mutex here only guards direct readers (Count/Entries)
  against a concurrent archive batch.

SEE ALSO:
  - ledger/audit.go: retention thresholds and the AuditArchiver contract
*/
package sqlite

import (
	"database/sql"
	"fmt"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/warp/payroll-ledger/ledger"
)

// Archive stores trimmed audit entries in a SQLite database.
type Archive struct {
	db *sql.DB
	mu sync.Mutex
}

// NewArchive opens (creating if needed) the archive database at dbPath.
// Use ":memory:" for an in-memory archive.
func NewArchive(dbPath string) (*Archive, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open audit archive: %w", err)
	}
	a := &Archive{db: db}
	if err := a.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate audit archive: %w", err)
	}
	return a, nil
}

func (a *Archive) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS audit_archive (
		id           TEXT PRIMARY KEY,
		ts           TEXT NOT NULL,
		action       TEXT NOT NULL,
		employee_id  INTEGER NOT NULL,
		details      TEXT NOT NULL DEFAULT '',
		performed_by TEXT NOT NULL DEFAULT ''
	);
	CREATE INDEX IF NOT EXISTS idx_audit_archive_ts ON audit_archive(ts);
	CREATE INDEX IF NOT EXISTS idx_audit_archive_employee ON audit_archive(employee_id);
	`
	_, err := a.db.Exec(schema)
	return err
}

// Close closes the underlying database.
func (a *Archive) Close() error {
	return a.db.Close()
}

// Archive inserts a batch of purged audit entries in one transaction.
// Entries already present (by UUID) are skipped.
func (a *Archive) Archive(entries []ledger.AuditEntry) error {
	if len(entries) == 0 {
		return nil
	}
	a.mu.Lock()
	defer a.mu.Unlock()

	tx, err := a.db.Begin()
	if err != nil {
		return fmt.Errorf("begin archive batch: %w", err)
	}
	stmt, err := tx.Prepare(`
		INSERT OR IGNORE INTO audit_archive (id, ts, action, employee_id, details, performed_by)
		VALUES (?, ?, ?, ?, ?, ?)`)
	if err != nil {
		tx.Rollback()
		return fmt.Errorf("prepare archive insert: %w", err)
	}
	defer stmt.Close()

	for _, e := range entries {
		if _, err := stmt.Exec(e.ID, e.Timestamp.UTC().Format(time.RFC3339Nano),
			e.Action, e.EmployeeID, e.Details, e.PerformedBy); err != nil {
			tx.Rollback()
			return fmt.Errorf("archive entry %s: %w", e.ID, err)
		}
	}
	return tx.Commit()
}

// Count returns the number of archived entries.
func (a *Archive) Count() (int, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	var n int
	err := a.db.QueryRow(`SELECT COUNT(*) FROM audit_archive`).Scan(&n)
	return n, err
}

// EntriesForEmployee returns archived entries for one employee, newest
// first, capped at limit (0 = no cap).
func (a *Archive) EntriesForEmployee(employeeID int64, limit int) ([]ledger.AuditEntry, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	query := `SELECT id, ts, action, employee_id, details, performed_by
		FROM audit_archive WHERE employee_id = ? ORDER BY ts DESC`
	args := []any{employeeID}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := a.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []ledger.AuditEntry
	for rows.Next() {
		var e ledger.AuditEntry
		var ts string
		if err := rows.Scan(&e.ID, &ts, &e.Action, &e.EmployeeID, &e.Details, &e.PerformedBy); err != nil {
			return nil, err
		}
		if e.Timestamp, err = time.Parse(time.RFC3339Nano, ts); err != nil {
			return nil, fmt.Errorf("archived timestamp %q: %w", ts, err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
