package mysql

import (
	"context"
	"database/sql"
	"errors"

	"github.com/iliyamo/smart-parking/internal/model"
	"github.com/iliyamo/smart-parking/internal/repository"
)

// FloorRepo provides CRUD operations for facility floors.  Floors
// are identified externally by their floor number, which carries a
// unique key in the schema.
type FloorRepo struct {
	db *sql.DB
}

// NewFloorRepo returns a new FloorRepo bound to the given database.
func NewFloorRepo(db *sql.DB) *FloorRepo { return &FloorRepo{db: db} }

// Create inserts a new floor and returns it with the generated ID
// and timestamp populated.  A duplicate floor number yields
// repository.ErrDuplicateFloor.
func (r *FloorRepo) Create(ctx context.Context, floor *model.Floor) (*model.Floor, error) {
	const q = `INSERT INTO floors (floor_number, description) VALUES (?, ?)`
	res, err := r.db.ExecContext(ctx, q, floor.FloorNumber, floor.Description)
	if err != nil {
		if isDuplicate(err) {
			return nil, repository.ErrDuplicateFloor
		}
		return nil, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}
	return r.findByID(ctx, id)
}

// FindByNumber returns the floor with the given floor number, or
// repository.ErrNotFound.
func (r *FloorRepo) FindByNumber(ctx context.Context, floorNumber int) (*model.Floor, error) {
	const q = `SELECT id, floor_number, description, created_at FROM floors WHERE floor_number = ?`
	var f model.Floor
	err := r.db.QueryRowContext(ctx, q, floorNumber).Scan(&f.ID, &f.FloorNumber, &f.Description, &f.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &f, nil
}

// FindAll returns every floor ordered by floor number ascending.
func (r *FloorRepo) FindAll(ctx context.Context) ([]model.Floor, error) {
	const q = `SELECT id, floor_number, description, created_at FROM floors ORDER BY floor_number ASC`
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	floors := make([]model.Floor, 0)
	for rows.Next() {
		var f model.Floor
		if err := rows.Scan(&f.ID, &f.FloorNumber, &f.Description, &f.CreatedAt); err != nil {
			return nil, err
		}
		floors = append(floors, f)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return floors, nil
}

func (r *FloorRepo) findByID(ctx context.Context, id int64) (*model.Floor, error) {
	const q = `SELECT id, floor_number, description, created_at FROM floors WHERE id = ?`
	var f model.Floor
	err := r.db.QueryRowContext(ctx, q, id).Scan(&f.ID, &f.FloorNumber, &f.Description, &f.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &f, nil
}
