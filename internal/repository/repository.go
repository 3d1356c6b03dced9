// Package repository declares the storage contracts of the parking
// facility together with the sentinel errors shared by all
// implementations.  Two implementations exist: mysql (production)
// and memory (tests and local development).  Higher layers depend
// only on these interfaces.
package repository

import (
	"context"
	"errors"
	"time"

	"github.com/iliyamo/smart-parking/internal/model"
)

// ErrNotFound is returned when a floor, slot, record or admin does
// not exist.  Handlers translate it into an HTTP 404 response.
var ErrNotFound = errors.New("not found")

// ErrDuplicateFloor is returned when creating a floor whose number
// is already taken.
var ErrDuplicateFloor = errors.New("floor already exists")

// ErrDuplicateSlot is returned when creating a slot whose
// (floor, slot number) pair is already taken.
var ErrDuplicateSlot = errors.New("slot already exists")

// ErrSlotOccupied is returned when opening a parking record for a
// slot that already has an open record, or when deleting such a
// slot.  This is the storage-level guarantee that at most one open
// record exists per slot; callers must treat it as definitive and
// never retry.
var ErrSlotOccupied = errors.New("slot already occupied")

// ErrTargetOccupied is returned by Reassign when the destination
// slot already has an open record.
var ErrTargetOccupied = errors.New("target slot already occupied")

// ErrNoOpenRecord is returned when an operation expects an open
// parking record for a slot and none exists.
var ErrNoOpenRecord = errors.New("no open parking record for slot")

// ErrAlreadyClosed is returned by Close when the record has an exit
// time already.  Closed records are immutable.
var ErrAlreadyClosed = errors.New("parking record already closed")

// ErrRecordClosed is returned by Reassign and UpdatePlate when the
// record is no longer open.
var ErrRecordClosed = errors.New("parking record is not open")

// ErrUsernameExists is returned when registering an admin whose
// username is already taken.
var ErrUsernameExists = errors.New("username already exists")

// FloorRepository persists facility floors.
type FloorRepository interface {
	Create(ctx context.Context, floor *model.Floor) (*model.Floor, error)
	FindByNumber(ctx context.Context, floorNumber int) (*model.Floor, error)
	// FindAll returns every floor ordered by floor number ascending.
	FindAll(ctx context.Context) ([]model.Floor, error)
}

// SlotRepository persists the slot catalog including the cached
// occupancy fields owned by the reconciliation layer.
type SlotRepository interface {
	Create(ctx context.Context, slot *model.ParkingSlot) (*model.ParkingSlot, error)
	FindByID(ctx context.Context, id int64) (*model.ParkingSlot, error)
	// FindBySlot locates a slot by number.  When floorNumber is nil the
	// lowest-floor slot with that number is returned, which collapses to
	// the obvious behavior on single-floor sites.
	FindBySlot(ctx context.Context, floorNumber *int, slotNumber int) (*model.ParkingSlot, error)
	// FindAll returns every slot ordered by (floor, slot number) ascending.
	FindAll(ctx context.Context) ([]model.ParkingSlot, error)
	// FindByFloor returns the slots of one floor ordered by slot number.
	FindByFloor(ctx context.Context, floorNumber int) ([]model.ParkingSlot, error)
	// UpdateOccupancy rewrites the cached occupancy flag and plate.  Only
	// the reconciliation layer and the mark-available override call this.
	UpdateOccupancy(ctx context.Context, id int64, occupied bool, plate *string) error
	Delete(ctx context.Context, id int64) error
}

// RecordRepository persists the occupancy ledger.  Open must be
// backed by a uniqueness guarantee over (floor, slot, open) so that
// two concurrent opens for the same slot cannot both succeed, and
// the mutating calls must be atomic read-modify-writes.
type RecordRepository interface {
	// Open inserts a new open record.  Returns ErrSlotOccupied when an
	// open record already exists for the record's (floor, slot).
	Open(ctx context.Context, rec *model.ParkingRecord) (*model.ParkingRecord, error)
	FindByID(ctx context.Context, id int64) (*model.ParkingRecord, error)
	// FindOpenBySlot returns the open record for a slot, or
	// ErrNoOpenRecord.  A nil floorNumber matches any floor.
	FindOpenBySlot(ctx context.Context, floorNumber *int, slotNumber int) (*model.ParkingRecord, error)
	// FindOpenByPlate returns the open record for a license plate, or
	// ErrNoOpenRecord.
	FindOpenByPlate(ctx context.Context, plate string) (*model.ParkingRecord, error)
	// FindOpen returns every open record ordered by entry time descending.
	FindOpen(ctx context.Context) ([]model.ParkingRecord, error)
	// Close stamps the exit on an open record.  Returns ErrAlreadyClosed
	// when the record has an exit time, ErrNotFound when it is missing.
	// This is the only mutation path for exits.
	Close(ctx context.Context, id int64, exitTime time.Time, durationMinutes int64, billableHours int, charge float64) (*model.ParkingRecord, error)
	// Reassign moves an open record to another slot.  Returns
	// ErrRecordClosed when the record is closed and ErrTargetOccupied when
	// the destination already has an open record.
	Reassign(ctx context.Context, id int64, newFloorNumber, newSlotNumber int) (*model.ParkingRecord, error)
	// UpdatePlate corrects the license plate of an open record.  Returns
	// ErrRecordClosed when the record is closed.
	UpdatePlate(ctx context.Context, id int64, plate string) (*model.ParkingRecord, error)
	// FindByPlate returns every record for a license plate, open or
	// closed, newest entries first.
	FindByPlate(ctx context.Context, plate string) ([]model.ParkingRecord, error)
	// FindClosedBetween returns closed records whose exit time falls in
	// [from, to), newest first.
	FindClosedBetween(ctx context.Context, from, to time.Time) ([]model.ParkingRecord, error)
	// FindClosedBySlot returns up to limit closed records for a slot
	// number, newest first.
	FindClosedBySlot(ctx context.Context, slotNumber int, limit int) ([]model.ParkingRecord, error)
	// CountEnteredBetween counts records whose entry time falls in [from, to).
	CountEnteredBetween(ctx context.Context, from, to time.Time) (int, error)
	// RevenueBetween sums the charge of records closed in [from, to).
	RevenueBetween(ctx context.Context, from, to time.Time) (float64, error)
}

// RateRepository persists the administrative rate table.
type RateRepository interface {
	// Upsert creates or updates the rate row for a vehicle class.
	Upsert(ctx context.Context, vehicleType string, hourlyRate float64) (*model.ParkingCharge, error)
	// FindActiveByType returns the active rate for a class, or ErrNotFound.
	FindActiveByType(ctx context.Context, vehicleType string) (*model.ParkingCharge, error)
	FindAll(ctx context.Context) ([]model.ParkingCharge, error)
}

// AuditRepository persists the append-only audit trail.  There is no
// update or delete: entries are immutable once written.
type AuditRepository interface {
	Append(ctx context.Context, entry *model.AuditLog) (*model.AuditLog, error)
	// FindByAdmin returns entries for one actor, newest first.
	FindByAdmin(ctx context.Context, username string) ([]model.AuditLog, error)
	// FindBetween returns entries in [from, to), newest first.
	FindBetween(ctx context.Context, from, to time.Time) ([]model.AuditLog, error)
	// FindAll returns every entry, newest first.
	FindAll(ctx context.Context) ([]model.AuditLog, error)
}

// AdminRepository persists operator accounts for the auth layer.
type AdminRepository interface {
	Create(ctx context.Context, admin *model.Admin) (*model.Admin, error)
	FindByUsername(ctx context.Context, username string) (*model.Admin, error)
}
