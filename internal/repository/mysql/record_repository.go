package mysql

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/iliyamo/smart-parking/internal/model"
	"github.com/iliyamo/smart-parking/internal/repository"
)

// RecordRepo provides operations over the occupancy ledger.  A row
// with a NULL exit_time is an open record; the uq_open_slot unique
// key over (floor_number, slot_number, open_marker) guarantees at
// most one open record per physical slot, so Open never needs a
// read-before-write check.  Close, Reassign and UpdatePlate run in
// transactions with SELECT ... FOR UPDATE so that concurrent
// mutations of the same record serialize instead of racing.
type RecordRepo struct {
	db *sql.DB
}

// NewRecordRepo returns a new RecordRepo bound to the given database.
func NewRecordRepo(db *sql.DB) *RecordRepo { return &RecordRepo{db: db} }

const recordColumns = `id, license_plate, vehicle_type, slot_number, floor_number, entry_time, exit_time, duration_minutes, billable_hours, charge`

func scanRecord(row interface{ Scan(...any) error }) (*model.ParkingRecord, error) {
	var rec model.ParkingRecord
	var exit sql.NullTime
	err := row.Scan(
		&rec.ID, &rec.LicensePlate, &rec.VehicleType, &rec.SlotNumber, &rec.FloorNumber,
		&rec.EntryTime, &exit, &rec.DurationMinutes, &rec.BillableHours, &rec.Charge,
	)
	if err != nil {
		return nil, err
	}
	if exit.Valid {
		t := exit.Time
		rec.ExitTime = &t
	}
	return &rec, nil
}

// Open inserts a new open record for the record's (floor, slot).
// The database's unique key rejects a second open record for the
// same slot, which surfaces here as repository.ErrSlotOccupied.
// Under concurrency exactly one caller wins and the rest receive
// the sentinel.
func (r *RecordRepo) Open(ctx context.Context, rec *model.ParkingRecord) (*model.ParkingRecord, error) {
	const q = `INSERT INTO parking_records (license_plate, vehicle_type, slot_number, floor_number, entry_time) VALUES (?, ?, ?, ?, ?)`
	res, err := r.db.ExecContext(ctx, q, rec.LicensePlate, rec.VehicleType, rec.SlotNumber, rec.FloorNumber, rec.EntryTime.UTC())
	if err != nil {
		if isDuplicate(err) {
			return nil, repository.ErrSlotOccupied
		}
		return nil, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}
	return r.FindByID(ctx, id)
}

// FindByID returns the record with the given primary key, or
// repository.ErrNotFound.
func (r *RecordRepo) FindByID(ctx context.Context, id int64) (*model.ParkingRecord, error) {
	const q = `SELECT ` + recordColumns + ` FROM parking_records WHERE id = ?`
	rec, err := scanRecord(r.db.QueryRowContext(ctx, q, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, repository.ErrNotFound
	}
	return rec, err
}

// FindOpenBySlot returns the open record for a slot, or
// repository.ErrNoOpenRecord.  A nil floorNumber matches any floor.
func (r *RecordRepo) FindOpenBySlot(ctx context.Context, floorNumber *int, slotNumber int) (*model.ParkingRecord, error) {
	var rec *model.ParkingRecord
	var err error
	if floorNumber != nil {
		const q = `SELECT ` + recordColumns + ` FROM parking_records WHERE floor_number = ? AND slot_number = ? AND exit_time IS NULL`
		rec, err = scanRecord(r.db.QueryRowContext(ctx, q, *floorNumber, slotNumber))
	} else {
		const q = `SELECT ` + recordColumns + ` FROM parking_records WHERE slot_number = ? AND exit_time IS NULL ORDER BY floor_number ASC LIMIT 1`
		rec, err = scanRecord(r.db.QueryRowContext(ctx, q, slotNumber))
	}
	if errors.Is(err, sql.ErrNoRows) {
		return nil, repository.ErrNoOpenRecord
	}
	return rec, err
}

// FindOpenByPlate returns the open record for a license plate, or
// repository.ErrNoOpenRecord.
func (r *RecordRepo) FindOpenByPlate(ctx context.Context, plate string) (*model.ParkingRecord, error) {
	const q = `SELECT ` + recordColumns + ` FROM parking_records WHERE license_plate = ? AND exit_time IS NULL ORDER BY entry_time ASC LIMIT 1`
	rec, err := scanRecord(r.db.QueryRowContext(ctx, q, plate))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, repository.ErrNoOpenRecord
	}
	return rec, err
}

// FindOpen returns every open record, most recent entries first.
func (r *RecordRepo) FindOpen(ctx context.Context) ([]model.ParkingRecord, error) {
	const q = `SELECT ` + recordColumns + ` FROM parking_records WHERE exit_time IS NULL ORDER BY entry_time DESC`
	return r.queryList(ctx, q)
}

// Close stamps the exit on an open record along with the computed
// duration and charge.  The row is locked for the duration of the
// transaction; a record that already carries an exit time yields
// repository.ErrAlreadyClosed and is never rewritten.
func (r *RecordRepo) Close(ctx context.Context, id int64, exitTime time.Time, durationMinutes int64, billableHours int, charge float64) (*model.ParkingRecord, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()
	const sel = `SELECT exit_time FROM parking_records WHERE id = ? FOR UPDATE`
	var exit sql.NullTime
	err = tx.QueryRowContext(ctx, sel, id).Scan(&exit)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if exit.Valid {
		return nil, repository.ErrAlreadyClosed
	}
	const upd = `UPDATE parking_records SET exit_time = ?, duration_minutes = ?, billable_hours = ?, charge = ? WHERE id = ?`
	if _, err := tx.ExecContext(ctx, upd, exitTime.UTC(), durationMinutes, billableHours, charge, id); err != nil {
		return nil, err
	}
	const sel2 = `SELECT ` + recordColumns + ` FROM parking_records WHERE id = ?`
	rec, err := scanRecord(tx.QueryRowContext(ctx, sel2, id))
	if err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	committed = true
	return rec, nil
}

// Reassign moves an open record to another slot.  The record row is
// locked first; if the destination already has an open record the
// unique key rejects the update and repository.ErrTargetOccupied is
// returned.
func (r *RecordRepo) Reassign(ctx context.Context, id int64, newFloorNumber, newSlotNumber int) (*model.ParkingRecord, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()
	const sel = `SELECT exit_time FROM parking_records WHERE id = ? FOR UPDATE`
	var exit sql.NullTime
	err = tx.QueryRowContext(ctx, sel, id).Scan(&exit)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if exit.Valid {
		return nil, repository.ErrRecordClosed
	}
	const upd = `UPDATE parking_records SET floor_number = ?, slot_number = ? WHERE id = ?`
	if _, err := tx.ExecContext(ctx, upd, newFloorNumber, newSlotNumber, id); err != nil {
		if isDuplicate(err) {
			return nil, repository.ErrTargetOccupied
		}
		return nil, err
	}
	const sel2 = `SELECT ` + recordColumns + ` FROM parking_records WHERE id = ?`
	rec, err := scanRecord(tx.QueryRowContext(ctx, sel2, id))
	if err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	committed = true
	return rec, nil
}

// UpdatePlate corrects the license plate of an open record.  Closed
// records are immutable billing history and yield
// repository.ErrRecordClosed.
func (r *RecordRepo) UpdatePlate(ctx context.Context, id int64, plate string) (*model.ParkingRecord, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()
	const sel = `SELECT exit_time FROM parking_records WHERE id = ? FOR UPDATE`
	var exit sql.NullTime
	err = tx.QueryRowContext(ctx, sel, id).Scan(&exit)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if exit.Valid {
		return nil, repository.ErrRecordClosed
	}
	const upd = `UPDATE parking_records SET license_plate = ? WHERE id = ?`
	if _, err := tx.ExecContext(ctx, upd, plate, id); err != nil {
		return nil, err
	}
	const sel2 = `SELECT ` + recordColumns + ` FROM parking_records WHERE id = ?`
	rec, err := scanRecord(tx.QueryRowContext(ctx, sel2, id))
	if err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	committed = true
	return rec, nil
}

// FindByPlate returns every record for a license plate, open or
// closed, newest entries first.  It powers the vehicle history view.
func (r *RecordRepo) FindByPlate(ctx context.Context, plate string) ([]model.ParkingRecord, error) {
	const q = `SELECT ` + recordColumns + ` FROM parking_records WHERE license_plate = ? ORDER BY entry_time DESC`
	return r.queryList(ctx, q, plate)
}

// FindClosedBetween returns closed records whose exit time falls in
// [from, to), newest first.
func (r *RecordRepo) FindClosedBetween(ctx context.Context, from, to time.Time) ([]model.ParkingRecord, error) {
	const q = `SELECT ` + recordColumns + ` FROM parking_records WHERE exit_time IS NOT NULL AND exit_time >= ? AND exit_time < ? ORDER BY exit_time DESC`
	return r.queryList(ctx, q, from.UTC(), to.UTC())
}

// FindClosedBySlot returns up to limit closed records for a slot
// number, newest first.  It powers the per-slot history view.
func (r *RecordRepo) FindClosedBySlot(ctx context.Context, slotNumber int, limit int) ([]model.ParkingRecord, error) {
	const q = `SELECT ` + recordColumns + ` FROM parking_records WHERE slot_number = ? AND exit_time IS NOT NULL ORDER BY exit_time DESC LIMIT ?`
	return r.queryList(ctx, q, slotNumber, limit)
}

// CountEnteredBetween counts records whose entry time falls in [from, to).
func (r *RecordRepo) CountEnteredBetween(ctx context.Context, from, to time.Time) (int, error) {
	const q = `SELECT COUNT(*) FROM parking_records WHERE entry_time >= ? AND entry_time < ?`
	var n int
	if err := r.db.QueryRowContext(ctx, q, from.UTC(), to.UTC()).Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}

// RevenueBetween sums the charge of records closed in [from, to).
func (r *RecordRepo) RevenueBetween(ctx context.Context, from, to time.Time) (float64, error) {
	const q = `SELECT COALESCE(SUM(charge), 0) FROM parking_records WHERE exit_time IS NOT NULL AND exit_time >= ? AND exit_time < ?`
	var total float64
	if err := r.db.QueryRowContext(ctx, q, from.UTC(), to.UTC()).Scan(&total); err != nil {
		return 0, err
	}
	return total, nil
}

func (r *RecordRepo) queryList(ctx context.Context, q string, args ...any) ([]model.ParkingRecord, error) {
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	records := make([]model.ParkingRecord, 0)
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, *rec)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return records, nil
}
