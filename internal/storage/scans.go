package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	tracerr "warntrace/internal/errors"
	"warntrace/internal/issues"
)

// createdLayout is fixed-width so created_at sorts lexically.
const createdLayout = "2006-01-02T15:04:05.000000000Z07:00"

// ErrScanNotFound is returned when a scan ID is unknown or the store is empty.
var ErrScanNotFound = errors.New("scan not found")

// Scan is one stored issue collection.
type Scan struct {
	ID            string            `json:"id"`
	Label         string            `json:"label,omitempty"`
	CreatedAt     time.Time         `json:"createdAt"`
	IssueCount    int               `json:"issueCount"`
	Fingerprinted int               `json:"fingerprinted"`
	Issues        issues.Collection `json:"issues,omitempty"`
}

// SaveScan stores a collection under a new scan ID.
func (db *DB) SaveScan(ctx context.Context, label string, in issues.Collection) (*Scan, error) {
	scan := &Scan{
		ID:            uuid.New().String(),
		Label:         label,
		CreatedAt:     time.Now().UTC(),
		IssueCount:    len(in),
		Fingerprinted: in.CountMatchable(),
		Issues:        in.Clone(),
	}

	err := db.WithTx(ctx, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO scans (id, label, created_at, issue_count, fingerprinted)
			VALUES (?, ?, ?, ?, ?)
		`, scan.ID, scan.Label, scan.CreatedAt.Format(createdLayout), scan.IssueCount, scan.Fingerprinted)
		if err != nil {
			return fmt.Errorf("failed to insert scan: %w", err)
		}

		stmt, err := tx.PrepareContext(ctx, `
			INSERT INTO scan_issues (
				scan_id, seq, file_name, package_name, module_name, category, type,
				line, message, severity, fingerprint, scope_error
			) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		`)
		if err != nil {
			return fmt.Errorf("failed to prepare issue insert: %w", err)
		}
		defer stmt.Close()

		for i, issue := range in {
			_, err := stmt.ExecContext(ctx,
				scan.ID, i, issue.FileName, issue.PackageName, issue.ModuleName, issue.Category, issue.Type,
				issue.Line, issue.Message, string(issue.Severity), issue.Fingerprint, string(issue.ScopeError),
			)
			if err != nil {
				return fmt.Errorf("failed to insert issue %d: %w", i, err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	db.logger.Debug("Scan saved", "id", scan.ID, "issues", scan.IssueCount, "fingerprinted", scan.Fingerprinted)
	return scan, nil
}

// LatestScan loads the most recently saved scan with its issues.
func (db *DB) LatestScan(ctx context.Context) (*Scan, error) {
	var id string
	err := db.conn.QueryRowContext(ctx,
		"SELECT id FROM scans ORDER BY created_at DESC, rowid DESC LIMIT 1",
	).Scan(&id)
	if err == sql.ErrNoRows {
		return nil, ErrScanNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query latest scan: %w", err)
	}
	return db.LoadScan(ctx, id)
}

// LoadScan loads a scan and its issues in saved order.
func (db *DB) LoadScan(ctx context.Context, id string) (*Scan, error) {
	scan, err := scanRow(db.conn.QueryRowContext(ctx,
		"SELECT id, label, created_at, issue_count, fingerprinted FROM scans WHERE id = ?", id))
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("%w: %s", ErrScanNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load scan: %w", err)
	}

	rows, err := db.conn.QueryContext(ctx, `
		SELECT file_name, package_name, module_name, category, type,
			line, message, severity, fingerprint, scope_error
		FROM scan_issues WHERE scan_id = ? ORDER BY seq
	`, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load scan issues: %w", err)
	}
	defer rows.Close()

	scan.Issues = make(issues.Collection, 0, scan.IssueCount)
	for rows.Next() {
		var (
			issue      issues.Issue
			severity   string
			scopeError string
		)
		if err := rows.Scan(
			&issue.FileName, &issue.PackageName, &issue.ModuleName, &issue.Category, &issue.Type,
			&issue.Line, &issue.Message, &severity, &issue.Fingerprint, &scopeError,
		); err != nil {
			return nil, fmt.Errorf("failed to scan issue row: %w", err)
		}
		issue.Severity = issues.Severity(severity)
		issue.ScopeError = tracerr.ErrorCode(scopeError)
		scan.Issues = append(scan.Issues, issue)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return scan, nil
}

// ListScans returns scan headers, newest first. limit <= 0 lists all.
func (db *DB) ListScans(ctx context.Context, limit int) ([]Scan, error) {
	query := "SELECT id, label, created_at, issue_count, fingerprinted FROM scans ORDER BY created_at DESC, rowid DESC"
	args := []interface{}{}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := db.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list scans: %w", err)
	}
	defer rows.Close()

	var scans []Scan
	for rows.Next() {
		s, err := scanRow(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}
		scans = append(scans, *s)
	}
	return scans, rows.Err()
}

// Prune deletes all but the keep newest scans and returns how many were removed.
func (db *DB) Prune(ctx context.Context, keep int) (int, error) {
	if keep < 0 {
		keep = 0
	}
	var removed int64
	err := db.WithTx(ctx, func(tx *sql.Tx) error {
		const stale = `SELECT id FROM scans WHERE id NOT IN (
			SELECT id FROM scans ORDER BY created_at DESC, rowid DESC LIMIT ?
		)`
		// foreign_keys is per connection, so issues are removed explicitly.
		if _, err := tx.ExecContext(ctx, "DELETE FROM scan_issues WHERE scan_id IN ("+stale+")", keep); err != nil {
			return fmt.Errorf("failed to prune scan issues: %w", err)
		}
		res, err := tx.ExecContext(ctx, "DELETE FROM scans WHERE id IN ("+stale+")", keep)
		if err != nil {
			return fmt.Errorf("failed to prune scans: %w", err)
		}
		removed, err = res.RowsAffected()
		return err
	})
	if err != nil {
		return 0, err
	}
	if removed > 0 {
		db.logger.Info("Pruned scans", "removed", removed, "kept", keep)
	}
	return int(removed), nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanRow(r rowScanner) (*Scan, error) {
	var (
		s       Scan
		created string
	)
	if err := r.Scan(&s.ID, &s.Label, &created, &s.IssueCount, &s.Fingerprinted); err != nil {
		return nil, err
	}
	t, err := time.Parse(createdLayout, created)
	if err != nil {
		return nil, fmt.Errorf("invalid created_at %q: %w", created, err)
	}
	s.CreatedAt = t
	return &s, nil
}
