package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/iliyamo/smart-parking/internal/model"
	"github.com/iliyamo/smart-parking/internal/repository"
)

// AuditPublisher pushes audit events onto the message bus after they
// are durably stored.  Publishing is best effort; the database row is
// the record of truth.
type AuditPublisher interface {
	PublishAudit(entry *model.AuditLog)
}

// AdminService implements the operator workflow: catalog management,
// the rate table, override corrections and the audit trail.  Every
// override writes exactly one audit entry on success and none on
// failure.
type AdminService struct {
	floors  repository.FloorRepository
	slots   repository.SlotRepository
	records repository.RecordRepository
	rates   repository.RateRepository
	audits  repository.AuditRepository
	billing *Billing
	rec     *Reconciler
	pub     AuditPublisher

	now func() time.Time
}

// NewAdminService wires an AdminService over the given repositories.
// pub may be nil when no message bus is configured.
func NewAdminService(floors repository.FloorRepository, slots repository.SlotRepository, records repository.RecordRepository, rates repository.RateRepository, audits repository.AuditRepository, billing *Billing, rec *Reconciler, pub AuditPublisher) *AdminService {
	return &AdminService{
		floors:  floors,
		slots:   slots,
		records: records,
		rates:   rates,
		audits:  audits,
		billing: billing,
		rec:     rec,
		pub:     pub,
		now:     func() time.Time { return time.Now().UTC() },
	}
}

// CreateFloor adds a floor to the facility.  Floors are numbered
// from 1.
func (s *AdminService) CreateFloor(ctx context.Context, actor string, floorNumber int, description string) (*model.Floor, error) {
	if floorNumber < 1 {
		return nil, ErrInvalidNumber
	}
	floor, err := s.floors.Create(ctx, &model.Floor{FloorNumber: floorNumber, Description: description})
	if err != nil {
		return nil, err
	}
	s.logAction(ctx, actor, model.AuditCreateFloor,
		fmt.Sprintf("created floor %d", floorNumber),
		map[string]any{"floor_number": floorNumber, "description": description})
	return floor, nil
}

// Floors lists every floor.
func (s *AdminService) Floors(ctx context.Context) ([]model.Floor, error) {
	return s.floors.FindAll(ctx)
}

// AddSlots provisions count slots of one vehicle class on a floor,
// numbered consecutively from startNumber.  It stops at the first
// collision so a partial batch is visible to the caller as an error
// plus however many slots were created before it.
func (s *AdminService) AddSlots(ctx context.Context, actor string, floorNumber int, vehicleType string, startNumber, count int) ([]model.ParkingSlot, error) {
	if floorNumber < 1 || startNumber < 1 || count <= 0 {
		return nil, ErrInvalidNumber
	}
	vehicleType, err := normalizeClass(vehicleType)
	if err != nil {
		return nil, err
	}
	if _, err := s.floors.FindByNumber(ctx, floorNumber); err != nil {
		return nil, err
	}
	created := make([]model.ParkingSlot, 0, count)
	for i := 0; i < count; i++ {
		slot, err := s.slots.Create(ctx, &model.ParkingSlot{
			FloorNumber: floorNumber,
			SlotNumber:  startNumber + i,
			VehicleType: vehicleType,
		})
		if err != nil {
			return created, err
		}
		created = append(created, *slot)
	}
	s.logAction(ctx, actor, model.AuditAddSlots,
		fmt.Sprintf("added %d %s slots %d-%d on floor %d", count, vehicleType, startNumber, startNumber+count-1, floorNumber),
		map[string]any{"floor_number": floorNumber, "vehicle_type": vehicleType, "start": startNumber, "count": count})
	return created, nil
}

// DeleteSlot removes a slot from the catalog.  A slot with an open
// ledger record cannot be deleted.
func (s *AdminService) DeleteSlot(ctx context.Context, actor string, floorNumber *int, slotNumber int) error {
	slot, err := s.slots.FindBySlot(ctx, floorNumber, slotNumber)
	if err != nil {
		return err
	}
	if _, err := s.records.FindOpenBySlot(ctx, &slot.FloorNumber, slot.SlotNumber); err == nil {
		return repository.ErrSlotOccupied
	} else if !errors.Is(err, repository.ErrNoOpenRecord) {
		return err
	}
	if err := s.slots.Delete(ctx, slot.ID); err != nil {
		return err
	}
	s.logAction(ctx, actor, model.AuditDeleteSlot,
		fmt.Sprintf("deleted slot %d on floor %d", slot.SlotNumber, slot.FloorNumber),
		map[string]any{"floor_number": slot.FloorNumber, "slot_number": slot.SlotNumber})
	return nil
}

// UpdateRate sets the hourly rate for a vehicle class.  The new rate
// applies to exits from this point on; closed records keep the
// amounts they were billed.
func (s *AdminService) UpdateRate(ctx context.Context, actor string, vehicleType string, hourlyRate float64) (*model.ParkingCharge, error) {
	vehicleType, err := normalizeClass(vehicleType)
	if err != nil {
		return nil, err
	}
	if hourlyRate <= 0 {
		return nil, fmt.Errorf("hourly rate must be positive")
	}
	charge, err := s.rates.Upsert(ctx, vehicleType, hourlyRate)
	if err != nil {
		return nil, err
	}
	s.logAction(ctx, actor, model.AuditUpdateCharge,
		fmt.Sprintf("set %s hourly rate to %.2f", vehicleType, hourlyRate),
		map[string]any{"vehicle_type": vehicleType, "hourly_rate": hourlyRate})
	return charge, nil
}

// Rates lists the configured rate table.
func (s *AdminService) Rates(ctx context.Context) ([]model.ParkingCharge, error) {
	return s.rates.FindAll(ctx)
}

// ForceExit closes the open record for a slot on an operator's
// authority, billing it exactly like a normal exit.  The only
// difference from a regular exit is the audit entry.
func (s *AdminService) ForceExit(ctx context.Context, actor string, floorNumber *int, slotNumber int) (*model.ParkingRecord, error) {
	open, err := s.records.FindOpenBySlot(ctx, floorNumber, slotNumber)
	if err != nil {
		return nil, err
	}
	exit := s.now()
	minutes := int64(exit.Sub(open.EntryTime).Minutes())
	hours, amount, err := s.billing.Charge(ctx, open.VehicleType, minutes)
	if err != nil {
		return nil, err
	}
	closed, err := s.records.Close(ctx, open.ID, exit, minutes, hours, amount)
	if err != nil {
		return nil, err
	}
	if slot, err := s.slots.FindBySlot(ctx, &closed.FloorNumber, closed.SlotNumber); err == nil {
		s.rec.Sync(ctx, slot, nil)
	}
	s.logAction(ctx, actor, model.AuditForceExit,
		fmt.Sprintf("forced exit of %s from slot %d on floor %d", closed.LicensePlate, closed.SlotNumber, closed.FloorNumber),
		map[string]any{
			"record_id":     closed.ID,
			"license_plate": closed.LicensePlate,
			"floor_number":  closed.FloorNumber,
			"slot_number":   closed.SlotNumber,
			"charge":        closed.Charge,
		})
	return closed, nil
}

// MarkSlotAvailable clears a slot's cached occupancy.  It touches
// only the cache: when the ledger still shows a vehicle in the slot
// the call fails with ErrVehicleStillPresent and the operator must
// use ForceExit instead.  Marking an already-clean slot succeeds and
// still writes an audit entry.
func (s *AdminService) MarkSlotAvailable(ctx context.Context, actor string, floorNumber *int, slotNumber int) error {
	slot, err := s.slots.FindBySlot(ctx, floorNumber, slotNumber)
	if err != nil {
		return err
	}
	if _, err := s.records.FindOpenBySlot(ctx, &slot.FloorNumber, slot.SlotNumber); err == nil {
		return ErrVehicleStillPresent
	} else if !errors.Is(err, repository.ErrNoOpenRecord) {
		return err
	}
	if err := s.slots.UpdateOccupancy(ctx, slot.ID, false, nil); err != nil {
		return err
	}
	s.logAction(ctx, actor, model.AuditMarkSlotAvailable,
		fmt.Sprintf("marked slot %d on floor %d available", slot.SlotNumber, slot.FloorNumber),
		map[string]any{"floor_number": slot.FloorNumber, "slot_number": slot.SlotNumber})
	return nil
}

// ChangeSlot moves a parked vehicle's open record to another slot.
// Entry time, class and billing are untouched; only the location
// changes.  The destination must exist and must be free in the
// ledger.
func (s *AdminService) ChangeSlot(ctx context.Context, actor string, floorNumber *int, slotNumber int, newFloorNumber *int, newSlotNumber int) (*model.ParkingRecord, error) {
	open, err := s.records.FindOpenBySlot(ctx, floorNumber, slotNumber)
	if err != nil {
		return nil, err
	}
	target, err := s.slots.FindBySlot(ctx, newFloorNumber, newSlotNumber)
	if err != nil {
		return nil, err
	}
	moved, err := s.records.Reassign(ctx, open.ID, target.FloorNumber, target.SlotNumber)
	if err != nil {
		return nil, err
	}
	if src, err := s.slots.FindBySlot(ctx, &open.FloorNumber, open.SlotNumber); err == nil {
		s.rec.Sync(ctx, src, nil)
	}
	s.rec.Sync(ctx, target, moved)
	s.logAction(ctx, actor, model.AuditChangeSlot,
		fmt.Sprintf("moved %s from slot %d/%d to slot %d/%d", moved.LicensePlate, open.FloorNumber, open.SlotNumber, moved.FloorNumber, moved.SlotNumber),
		map[string]any{
			"record_id":     moved.ID,
			"license_plate": moved.LicensePlate,
			"from_floor":    open.FloorNumber,
			"from_slot":     open.SlotNumber,
			"to_floor":      moved.FloorNumber,
			"to_slot":       moved.SlotNumber,
		})
	return moved, nil
}

// UpdateLicensePlate corrects the plate on a slot's open record.
// Closed records are immutable history and cannot be corrected.
func (s *AdminService) UpdateLicensePlate(ctx context.Context, actor string, floorNumber *int, slotNumber int, newPlate string) (*model.ParkingRecord, error) {
	newPlate = NormalizePlate(newPlate)
	if newPlate == "" {
		return nil, ErrInvalidPlate
	}
	open, err := s.records.FindOpenBySlot(ctx, floorNumber, slotNumber)
	if err != nil {
		return nil, err
	}
	oldPlate := open.LicensePlate
	updated, err := s.records.UpdatePlate(ctx, open.ID, newPlate)
	if err != nil {
		return nil, err
	}
	if slot, err := s.slots.FindBySlot(ctx, &updated.FloorNumber, updated.SlotNumber); err == nil {
		s.rec.Sync(ctx, slot, updated)
	}
	s.logAction(ctx, actor, model.AuditUpdatePlate,
		fmt.Sprintf("corrected plate %s to %s on slot %d/%d", oldPlate, newPlate, updated.FloorNumber, updated.SlotNumber),
		map[string]any{
			"record_id": updated.ID,
			"old_plate": oldPlate,
			"new_plate": newPlate,
		})
	return updated, nil
}

// AuditLogs returns the full audit trail, newest first.
func (s *AdminService) AuditLogs(ctx context.Context) ([]model.AuditLog, error) {
	return s.audits.FindAll(ctx)
}

// AuditLogsByAdmin returns one actor's entries, newest first.
func (s *AdminService) AuditLogsByAdmin(ctx context.Context, username string) ([]model.AuditLog, error) {
	return s.audits.FindByAdmin(ctx, username)
}

// AuditLogsBetween returns entries in [from, to), newest first.
func (s *AdminService) AuditLogsBetween(ctx context.Context, from, to time.Time) ([]model.AuditLog, error) {
	return s.audits.FindBetween(ctx, from, to)
}

// SlotHistory returns up to limit closed visits for a slot number,
// newest first.
func (s *AdminService) SlotHistory(ctx context.Context, slotNumber, limit int) ([]model.ParkingRecord, error) {
	if limit <= 0 {
		limit = 50
	}
	return s.records.FindClosedBySlot(ctx, slotNumber, limit)
}

// RecordsHistory returns closed visits whose exit fell in [from, to),
// newest first, optionally narrowed to one vehicle class and one
// slot number.  An empty vehicleType or nil slotNumber means no
// filter on that field.
func (s *AdminService) RecordsHistory(ctx context.Context, from, to time.Time, vehicleType string, slotNumber *int) ([]model.ParkingRecord, error) {
	if vehicleType != "" {
		vt, err := normalizeClass(vehicleType)
		if err != nil {
			return nil, err
		}
		vehicleType = vt
	}
	records, err := s.records.FindClosedBetween(ctx, from, to)
	if err != nil {
		return nil, err
	}
	out := make([]model.ParkingRecord, 0, len(records))
	for _, r := range records {
		if vehicleType != "" && r.VehicleType != vehicleType {
			continue
		}
		if slotNumber != nil && r.SlotNumber != *slotNumber {
			continue
		}
		out = append(out, r)
	}
	return out, nil
}

// LogAuth records a LOGIN or REGISTER entry for the auth handler.
func (s *AdminService) LogAuth(ctx context.Context, actor, action, description string) {
	s.logAction(ctx, actor, action, description, nil)
}

// logAction appends one audit entry and publishes it to the message
// bus.  A failed append is logged and swallowed so an audit hiccup
// never rolls back an override that already happened.
func (s *AdminService) logAction(ctx context.Context, actor, action, description string, details map[string]any) {
	entry := &model.AuditLog{
		AdminUsername: actor,
		Action:        action,
		Description:   description,
		Timestamp:     s.now(),
	}
	if details != nil {
		raw, err := json.Marshal(details)
		if err == nil {
			d := string(raw)
			entry.Details = &d
		}
	}
	stored, err := s.audits.Append(ctx, entry)
	if err != nil {
		log.Printf("audit: append %s by %s failed: %v", action, actor, err)
		return
	}
	if s.pub != nil {
		s.pub.PublishAudit(stored)
	}
}

func normalizeClass(vehicleType string) (string, error) {
	vt := NormalizePlate(vehicleType)
	if !model.ValidVehicleClass(vt) {
		return "", ErrInvalidVehicleType
	}
	return vt, nil
}
