package memory

import (
	"context"
	"time"

	"github.com/iliyamo/smart-parking/internal/model"
	"github.com/iliyamo/smart-parking/internal/repository"
)

// The repository interfaces overlap in method names (Create, FindAll,
// FindByID), so the Store exposes uniquely named methods and these
// thin views bind them to the individual interfaces.  Every view
// shares the Store's lock and data.

// FloorRepo adapts a Store to repository.FloorRepository.
type FloorRepo struct{ s *Store }

// NewFloorRepo returns the floor view of a Store.
func NewFloorRepo(s *Store) *FloorRepo { return &FloorRepo{s: s} }

func (r *FloorRepo) Create(ctx context.Context, floor *model.Floor) (*model.Floor, error) {
	return r.s.CreateFloor(ctx, floor)
}

func (r *FloorRepo) FindByNumber(ctx context.Context, floorNumber int) (*model.Floor, error) {
	return r.s.FindFloorByNumber(ctx, floorNumber)
}

func (r *FloorRepo) FindAll(ctx context.Context) ([]model.Floor, error) {
	return r.s.FindAllFloors(ctx)
}

// SlotRepo adapts a Store to repository.SlotRepository.
type SlotRepo struct{ s *Store }

// NewSlotRepo returns the slot view of a Store.
func NewSlotRepo(s *Store) *SlotRepo { return &SlotRepo{s: s} }

func (r *SlotRepo) Create(ctx context.Context, slot *model.ParkingSlot) (*model.ParkingSlot, error) {
	return r.s.CreateSlot(ctx, slot)
}

func (r *SlotRepo) FindByID(ctx context.Context, id int64) (*model.ParkingSlot, error) {
	return r.s.FindSlotByID(ctx, id)
}

func (r *SlotRepo) FindBySlot(ctx context.Context, floorNumber *int, slotNumber int) (*model.ParkingSlot, error) {
	return r.s.FindBySlot(ctx, floorNumber, slotNumber)
}

func (r *SlotRepo) FindAll(ctx context.Context) ([]model.ParkingSlot, error) {
	return r.s.FindAllSlots(ctx)
}

func (r *SlotRepo) FindByFloor(ctx context.Context, floorNumber int) ([]model.ParkingSlot, error) {
	return r.s.FindByFloor(ctx, floorNumber)
}

func (r *SlotRepo) UpdateOccupancy(ctx context.Context, id int64, occupied bool, plate *string) error {
	return r.s.UpdateOccupancy(ctx, id, occupied, plate)
}

func (r *SlotRepo) Delete(ctx context.Context, id int64) error {
	return r.s.DeleteSlot(ctx, id)
}

// RecordRepo adapts a Store to repository.RecordRepository.
type RecordRepo struct{ s *Store }

// NewRecordRepo returns the ledger view of a Store.
func NewRecordRepo(s *Store) *RecordRepo { return &RecordRepo{s: s} }

func (r *RecordRepo) Open(ctx context.Context, rec *model.ParkingRecord) (*model.ParkingRecord, error) {
	return r.s.Open(ctx, rec)
}

func (r *RecordRepo) FindByID(ctx context.Context, id int64) (*model.ParkingRecord, error) {
	return r.s.FindRecordByID(ctx, id)
}

func (r *RecordRepo) FindOpenBySlot(ctx context.Context, floorNumber *int, slotNumber int) (*model.ParkingRecord, error) {
	return r.s.FindOpenBySlot(ctx, floorNumber, slotNumber)
}

func (r *RecordRepo) FindOpenByPlate(ctx context.Context, plate string) (*model.ParkingRecord, error) {
	return r.s.FindOpenByPlate(ctx, plate)
}

func (r *RecordRepo) FindOpen(ctx context.Context) ([]model.ParkingRecord, error) {
	return r.s.FindOpen(ctx)
}

func (r *RecordRepo) Close(ctx context.Context, id int64, exitTime time.Time, durationMinutes int64, billableHours int, charge float64) (*model.ParkingRecord, error) {
	return r.s.Close(ctx, id, exitTime, durationMinutes, billableHours, charge)
}

func (r *RecordRepo) Reassign(ctx context.Context, id int64, newFloorNumber, newSlotNumber int) (*model.ParkingRecord, error) {
	return r.s.Reassign(ctx, id, newFloorNumber, newSlotNumber)
}

func (r *RecordRepo) UpdatePlate(ctx context.Context, id int64, plate string) (*model.ParkingRecord, error) {
	return r.s.UpdatePlate(ctx, id, plate)
}

func (r *RecordRepo) FindByPlate(ctx context.Context, plate string) ([]model.ParkingRecord, error) {
	return r.s.FindByPlate(ctx, plate)
}

func (r *RecordRepo) FindClosedBetween(ctx context.Context, from, to time.Time) ([]model.ParkingRecord, error) {
	return r.s.FindClosedBetween(ctx, from, to)
}

func (r *RecordRepo) FindClosedBySlot(ctx context.Context, slotNumber int, limit int) ([]model.ParkingRecord, error) {
	return r.s.FindClosedBySlot(ctx, slotNumber, limit)
}

func (r *RecordRepo) CountEnteredBetween(ctx context.Context, from, to time.Time) (int, error) {
	return r.s.CountEnteredBetween(ctx, from, to)
}

func (r *RecordRepo) RevenueBetween(ctx context.Context, from, to time.Time) (float64, error) {
	return r.s.RevenueBetween(ctx, from, to)
}

// RateRepo adapts a Store to repository.RateRepository.
type RateRepo struct{ s *Store }

// NewRateRepo returns the rate-table view of a Store.
func NewRateRepo(s *Store) *RateRepo { return &RateRepo{s: s} }

func (r *RateRepo) Upsert(ctx context.Context, vehicleType string, hourlyRate float64) (*model.ParkingCharge, error) {
	return r.s.Upsert(ctx, vehicleType, hourlyRate)
}

func (r *RateRepo) FindActiveByType(ctx context.Context, vehicleType string) (*model.ParkingCharge, error) {
	return r.s.FindActiveByType(ctx, vehicleType)
}

func (r *RateRepo) FindAll(ctx context.Context) ([]model.ParkingCharge, error) {
	return r.s.FindAllRates(ctx)
}

// AuditRepo adapts a Store to repository.AuditRepository.
type AuditRepo struct{ s *Store }

// NewAuditRepo returns the audit-trail view of a Store.
func NewAuditRepo(s *Store) *AuditRepo { return &AuditRepo{s: s} }

func (r *AuditRepo) Append(ctx context.Context, entry *model.AuditLog) (*model.AuditLog, error) {
	return r.s.Append(ctx, entry)
}

func (r *AuditRepo) FindByAdmin(ctx context.Context, username string) ([]model.AuditLog, error) {
	return r.s.FindByAdmin(ctx, username)
}

func (r *AuditRepo) FindBetween(ctx context.Context, from, to time.Time) ([]model.AuditLog, error) {
	return r.s.FindBetween(ctx, from, to)
}

func (r *AuditRepo) FindAll(ctx context.Context) ([]model.AuditLog, error) {
	return r.s.FindAllAudits(ctx)
}

// AdminRepo adapts a Store to repository.AdminRepository.
type AdminRepo struct{ s *Store }

// NewAdminRepo returns the account view of a Store.
func NewAdminRepo(s *Store) *AdminRepo { return &AdminRepo{s: s} }

func (r *AdminRepo) Create(ctx context.Context, admin *model.Admin) (*model.Admin, error) {
	return r.s.CreateAdmin(ctx, admin)
}

func (r *AdminRepo) FindByUsername(ctx context.Context, username string) (*model.Admin, error) {
	return r.s.FindAdminByUsername(ctx, username)
}

var (
	_ repository.FloorRepository  = (*FloorRepo)(nil)
	_ repository.SlotRepository   = (*SlotRepo)(nil)
	_ repository.RecordRepository = (*RecordRepo)(nil)
	_ repository.RateRepository   = (*RateRepo)(nil)
	_ repository.AuditRepository  = (*AuditRepo)(nil)
	_ repository.AdminRepository  = (*AdminRepo)(nil)
)
