package mysql

import (
	"context"
	"database/sql"
	"errors"

	"github.com/iliyamo/smart-parking/internal/model"
	"github.com/iliyamo/smart-parking/internal/repository"
)

// SlotRepo provides CRUD operations for the slot catalog.  The
// is_occupied and parked_plate columns it manages are a display
// cache; the occupancy ledger in parking_records is authoritative
// and the reconciliation layer heals any drift between the two.
type SlotRepo struct {
	db *sql.DB
}

// NewSlotRepo returns a new SlotRepo bound to the given database.
func NewSlotRepo(db *sql.DB) *SlotRepo { return &SlotRepo{db: db} }

const slotColumns = `id, floor_number, slot_number, vehicle_type, is_occupied, parked_plate, created_at, updated_at`

func scanSlot(row interface{ Scan(...any) error }) (*model.ParkingSlot, error) {
	var s model.ParkingSlot
	var plate sql.NullString
	err := row.Scan(&s.ID, &s.FloorNumber, &s.SlotNumber, &s.VehicleType, &s.IsOccupied, &plate, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		return nil, err
	}
	s.ParkedPlate = stringPtr(plate)
	return &s, nil
}

// Create inserts a new slot.  Duplicate (floor, slot number) pairs
// yield repository.ErrDuplicateSlot.  New slots always start free.
func (r *SlotRepo) Create(ctx context.Context, slot *model.ParkingSlot) (*model.ParkingSlot, error) {
	const q = `INSERT INTO parking_slots (floor_number, slot_number, vehicle_type, is_occupied) VALUES (?, ?, ?, FALSE)`
	res, err := r.db.ExecContext(ctx, q, slot.FloorNumber, slot.SlotNumber, slot.VehicleType)
	if err != nil {
		if isDuplicate(err) {
			return nil, repository.ErrDuplicateSlot
		}
		return nil, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}
	return r.FindByID(ctx, id)
}

// FindByID returns the slot with the given primary key, or
// repository.ErrNotFound.
func (r *SlotRepo) FindByID(ctx context.Context, id int64) (*model.ParkingSlot, error) {
	const q = `SELECT ` + slotColumns + ` FROM parking_slots WHERE id = ?`
	s, err := scanSlot(r.db.QueryRowContext(ctx, q, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, repository.ErrNotFound
	}
	return s, err
}

// FindBySlot locates a slot by number.  A nil floorNumber returns
// the lowest-floor slot carrying that number, which is the natural
// reading on a single-floor site.
func (r *SlotRepo) FindBySlot(ctx context.Context, floorNumber *int, slotNumber int) (*model.ParkingSlot, error) {
	if floorNumber != nil {
		const q = `SELECT ` + slotColumns + ` FROM parking_slots WHERE floor_number = ? AND slot_number = ?`
		s, err := scanSlot(r.db.QueryRowContext(ctx, q, *floorNumber, slotNumber))
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return s, err
	}
	const q = `SELECT ` + slotColumns + ` FROM parking_slots WHERE slot_number = ? ORDER BY floor_number ASC LIMIT 1`
	s, err := scanSlot(r.db.QueryRowContext(ctx, q, slotNumber))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, repository.ErrNotFound
	}
	return s, err
}

// FindAll returns every slot ordered by (floor, slot number)
// ascending.  This ordering is what the allocation scan and the
// public board rely on, so it must stay deterministic.
func (r *SlotRepo) FindAll(ctx context.Context) ([]model.ParkingSlot, error) {
	const q = `SELECT ` + slotColumns + ` FROM parking_slots ORDER BY floor_number ASC, slot_number ASC`
	return r.queryList(ctx, q)
}

// FindByFloor returns the slots of one floor ordered by slot number.
func (r *SlotRepo) FindByFloor(ctx context.Context, floorNumber int) ([]model.ParkingSlot, error) {
	const q = `SELECT ` + slotColumns + ` FROM parking_slots WHERE floor_number = ? ORDER BY slot_number ASC`
	return r.queryList(ctx, q, floorNumber)
}

// UpdateOccupancy rewrites the cached occupancy flag and plate for a
// slot.  It is called by the reconciliation layer after ledger
// mutations and by the mark-available override; nothing else should
// touch these columns.
func (r *SlotRepo) UpdateOccupancy(ctx context.Context, id int64, occupied bool, plate *string) error {
	const q = `UPDATE parking_slots SET is_occupied = ?, parked_plate = ? WHERE id = ?`
	res, err := r.db.ExecContext(ctx, q, occupied, nullString(plate), id)
	if err != nil {
		return err
	}
	// RowsAffected is zero both when the slot is missing and when the
	// cache already holds the target values, so check existence
	// explicitly only on the zero path.
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		if _, err := r.FindByID(ctx, id); err != nil {
			return err
		}
	}
	return nil
}

// Delete removes a slot from the catalog.  The caller must first
// verify that the slot has no open ledger record.
func (r *SlotRepo) Delete(ctx context.Context, id int64) error {
	const q = `DELETE FROM parking_slots WHERE id = ?`
	res, err := r.db.ExecContext(ctx, q, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *SlotRepo) queryList(ctx context.Context, q string, args ...any) ([]model.ParkingSlot, error) {
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	slots := make([]model.ParkingSlot, 0)
	for rows.Next() {
		s, err := scanSlot(rows)
		if err != nil {
			return nil, err
		}
		slots = append(slots, *s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return slots, nil
}
