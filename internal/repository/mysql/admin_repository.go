package mysql

import (
	"context"
	"database/sql"
	"errors"

	"github.com/iliyamo/smart-parking/internal/model"
	"github.com/iliyamo/smart-parking/internal/repository"
)

// AdminRepo stores operator accounts.  Passwords are only ever
// stored as bcrypt hashes computed by the auth handler.
type AdminRepo struct {
	db *sql.DB
}

// NewAdminRepo returns a new AdminRepo bound to the given database.
func NewAdminRepo(db *sql.DB) *AdminRepo { return &AdminRepo{db: db} }

// Create inserts a new admin account.  A duplicate username yields
// repository.ErrUsernameExists.
func (r *AdminRepo) Create(ctx context.Context, admin *model.Admin) (*model.Admin, error) {
	const q = `INSERT INTO admins (username, password_hash, email, role, active) VALUES (?, ?, ?, ?, TRUE)`
	res, err := r.db.ExecContext(ctx, q, admin.Username, admin.PasswordHash, admin.Email, admin.Role)
	if err != nil {
		if isDuplicate(err) {
			return nil, repository.ErrUsernameExists
		}
		return nil, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}
	const sel = `SELECT id, username, password_hash, email, role, active, created_at FROM admins WHERE id = ?`
	var a model.Admin
	if err := r.db.QueryRowContext(ctx, sel, id).Scan(&a.ID, &a.Username, &a.PasswordHash, &a.Email, &a.Role, &a.Active, &a.CreatedAt); err != nil {
		return nil, err
	}
	return &a, nil
}

// FindByUsername returns the account with the given username, or
// repository.ErrNotFound.
func (r *AdminRepo) FindByUsername(ctx context.Context, username string) (*model.Admin, error) {
	const q = `SELECT id, username, password_hash, email, role, active, created_at FROM admins WHERE username = ?`
	var a model.Admin
	err := r.db.QueryRowContext(ctx, q, username).Scan(&a.ID, &a.Username, &a.PasswordHash, &a.Email, &a.Role, &a.Active, &a.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &a, nil
}
