package mysql

import (
	"context"
	"database/sql"
	"time"

	"github.com/iliyamo/smart-parking/internal/model"
)

// AuditRepo appends and reads the administrative audit trail.  The
// table is append-only; corrections are expressed as new entries,
// never as rewrites.
type AuditRepo struct {
	db *sql.DB
}

// NewAuditRepo returns a new AuditRepo bound to the given database.
func NewAuditRepo(db *sql.DB) *AuditRepo { return &AuditRepo{db: db} }

const auditColumns = `id, admin_username, action, description, details, timestamp`

func scanAudit(row interface{ Scan(...any) error }) (*model.AuditLog, error) {
	var e model.AuditLog
	var details sql.NullString
	err := row.Scan(&e.ID, &e.AdminUsername, &e.Action, &e.Description, &details, &e.Timestamp)
	if err != nil {
		return nil, err
	}
	e.Details = stringPtr(details)
	return &e, nil
}

// Append inserts a new audit entry and returns it with the generated
// ID and timestamp populated.
func (r *AuditRepo) Append(ctx context.Context, entry *model.AuditLog) (*model.AuditLog, error) {
	const q = `INSERT INTO audit_logs (admin_username, action, description, details, timestamp) VALUES (?, ?, ?, ?, ?)`
	ts := entry.Timestamp
	if ts.IsZero() {
		ts = time.Now().UTC()
	}
	res, err := r.db.ExecContext(ctx, q, entry.AdminUsername, entry.Action, entry.Description, nullString(entry.Details), ts.UTC())
	if err != nil {
		return nil, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}
	const sel = `SELECT ` + auditColumns + ` FROM audit_logs WHERE id = ?`
	return scanAudit(r.db.QueryRowContext(ctx, sel, id))
}

// FindByAdmin returns the entries written by one actor, newest first.
func (r *AuditRepo) FindByAdmin(ctx context.Context, username string) ([]model.AuditLog, error) {
	const q = `SELECT ` + auditColumns + ` FROM audit_logs WHERE admin_username = ? ORDER BY timestamp DESC, id DESC`
	return r.queryList(ctx, q, username)
}

// FindBetween returns the entries whose timestamp falls in [from, to),
// newest first.
func (r *AuditRepo) FindBetween(ctx context.Context, from, to time.Time) ([]model.AuditLog, error) {
	const q = `SELECT ` + auditColumns + ` FROM audit_logs WHERE timestamp >= ? AND timestamp < ? ORDER BY timestamp DESC, id DESC`
	return r.queryList(ctx, q, from.UTC(), to.UTC())
}

// FindAll returns every entry, newest first.
func (r *AuditRepo) FindAll(ctx context.Context) ([]model.AuditLog, error) {
	const q = `SELECT ` + auditColumns + ` FROM audit_logs ORDER BY timestamp DESC, id DESC`
	return r.queryList(ctx, q)
}

func (r *AuditRepo) queryList(ctx context.Context, q string, args ...any) ([]model.AuditLog, error) {
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	entries := make([]model.AuditLog, 0)
	for rows.Next() {
		e, err := scanAudit(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, *e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return entries, nil
}
