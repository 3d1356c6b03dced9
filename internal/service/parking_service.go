package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/iliyamo/smart-parking/internal/model"
	"github.com/iliyamo/smart-parking/internal/repository"
)

// allowedMinutes is the advisory stay length shown on the public
// slot board.  It carries no enforcement weight.
const allowedMinutes = 120

// ParkingService implements the public face of the facility: entry,
// exit, the slot board and the dashboard.  Every availability
// decision reads the occupancy ledger; the slot cache is only ever
// written through the reconciler.
//
// When strictClassMatch is set, asking for a specific slot that does
// not admit the vehicle's class or is already taken fails instead of
// silently parking the vehicle somewhere else.
type ParkingService struct {
	slots            repository.SlotRepository
	records          repository.RecordRepository
	billing          *Billing
	rec              *Reconciler
	strictClassMatch bool

	// now is swapped out by tests to control time.
	now func() time.Time
}

// NewParkingService wires a ParkingService over the given
// repositories.
func NewParkingService(slots repository.SlotRepository, records repository.RecordRepository, billing *Billing, rec *Reconciler, strictClassMatch bool) *ParkingService {
	return &ParkingService{
		slots:            slots,
		records:          records,
		billing:          billing,
		rec:              rec,
		strictClassMatch: strictClassMatch,
		now:              func() time.Time { return time.Now().UTC() },
	}
}

// NormalizePlate canonicalizes a license plate for storage and
// lookup.
func NormalizePlate(plate string) string {
	return strings.ToUpper(strings.TrimSpace(plate))
}

// ParkVehicle admits a vehicle into the first free slot of its class
// in (floor, slot number) order.  It returns the open ledger record.
func (s *ParkingService) ParkVehicle(ctx context.Context, plate, vehicleType string) (*model.ParkingRecord, error) {
	plate, vehicleType, err := s.normalize(plate, vehicleType)
	if err != nil {
		return nil, err
	}
	return s.scanAndPark(ctx, plate, vehicleType)
}

// ParkVehicleInSlot admits a vehicle, trying the requested slot
// first.  A nil floorNumber means the caller did not specify a floor.
//
// When the preferred slot does not exist the request fails outright.
// When it exists but does not admit the class, or already holds a
// vehicle, strict mode fails with ErrVehicleClassMismatch or
// repository.ErrSlotOccupied; otherwise the facility falls back to
// the ordered scan.
func (s *ParkingService) ParkVehicleInSlot(ctx context.Context, plate, vehicleType string, preferredSlot int, floorNumber *int) (*model.ParkingRecord, error) {
	plate, vehicleType, err := s.normalize(plate, vehicleType)
	if err != nil {
		return nil, err
	}
	slot, err := s.slots.FindBySlot(ctx, floorNumber, preferredSlot)
	if err != nil {
		return nil, err
	}
	if slot.VehicleType != vehicleType {
		if s.strictClassMatch {
			return nil, ErrVehicleClassMismatch
		}
		return s.scanAndPark(ctx, plate, vehicleType)
	}
	rec, err := s.openAt(ctx, slot, plate, vehicleType)
	if err == nil {
		return rec, nil
	}
	if errors.Is(err, repository.ErrSlotOccupied) && !s.strictClassMatch {
		return s.scanAndPark(ctx, plate, vehicleType)
	}
	return nil, err
}

// scanAndPark walks the catalog in (floor, slot) order and opens a
// record at the first slot of the right class the ledger shows free.
// Opening doubles as the availability check: when a concurrent entry
// wins the slot, the insert fails and the scan moves on.
func (s *ParkingService) scanAndPark(ctx context.Context, plate, vehicleType string) (*model.ParkingRecord, error) {
	slots, err := s.slots.FindAll(ctx)
	if err != nil {
		return nil, err
	}
	for i := range slots {
		if slots[i].VehicleType != vehicleType {
			continue
		}
		rec, err := s.openAt(ctx, &slots[i], plate, vehicleType)
		if err == nil {
			return rec, nil
		}
		if errors.Is(err, repository.ErrSlotOccupied) {
			continue
		}
		return nil, err
	}
	return nil, ErrNoSlotAvailable
}

func (s *ParkingService) openAt(ctx context.Context, slot *model.ParkingSlot, plate, vehicleType string) (*model.ParkingRecord, error) {
	rec, err := s.records.Open(ctx, &model.ParkingRecord{
		LicensePlate: plate,
		VehicleType:  vehicleType,
		SlotNumber:   slot.SlotNumber,
		FloorNumber:  slot.FloorNumber,
		EntryTime:    s.now(),
	})
	if err != nil {
		return nil, err
	}
	s.rec.Sync(ctx, slot, rec)
	return rec, nil
}

// ExitBySlot closes the open record for a slot, billing the stay.
// Returns repository.ErrNoOpenRecord when the slot is empty.
func (s *ParkingService) ExitBySlot(ctx context.Context, floorNumber *int, slotNumber int) (*model.ParkingRecord, error) {
	open, err := s.records.FindOpenBySlot(ctx, floorNumber, slotNumber)
	if err != nil {
		return nil, err
	}
	return s.closeRecord(ctx, open)
}

// ExitByPlate closes the open record for a license plate, billing
// the stay.  Returns repository.ErrNoOpenRecord when the vehicle is
// not in the facility.
func (s *ParkingService) ExitByPlate(ctx context.Context, plate string) (*model.ParkingRecord, error) {
	open, err := s.records.FindOpenByPlate(ctx, NormalizePlate(plate))
	if err != nil {
		return nil, err
	}
	return s.closeRecord(ctx, open)
}

// closeRecord stamps the exit and heals the slot cache.  The charge
// is computed from the same billing rules as previews, so the billed
// amount equals a preview taken at the same instant.
func (s *ParkingService) closeRecord(ctx context.Context, open *model.ParkingRecord) (*model.ParkingRecord, error) {
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
	return closed, nil
}

// ListSlots returns the slot board.  Occupancy is derived from the
// open ledger records, and any slot whose cache disagrees is healed
// on the way out.
func (s *ParkingService) ListSlots(ctx context.Context) ([]model.SlotView, error) {
	slots, err := s.slots.FindAll(ctx)
	if err != nil {
		return nil, err
	}
	return s.buildBoard(ctx, slots)
}

// ListSlotsByFloor returns the board for a single floor.  An unknown
// floor yields an empty board rather than an error.
func (s *ParkingService) ListSlotsByFloor(ctx context.Context, floorNumber int) ([]model.SlotView, error) {
	slots, err := s.slots.FindByFloor(ctx, floorNumber)
	if err != nil {
		return nil, err
	}
	return s.buildBoard(ctx, slots)
}

func (s *ParkingService) buildBoard(ctx context.Context, slots []model.ParkingSlot) ([]model.SlotView, error) {
	open, err := s.records.FindOpen(ctx)
	if err != nil {
		return nil, err
	}
	type key struct{ floor, slot int }
	openBySlot := make(map[key]*model.ParkingRecord, len(open))
	for i := range open {
		openBySlot[key{open[i].FloorNumber, open[i].SlotNumber}] = &open[i]
	}
	now := s.now()
	views := make([]model.SlotView, 0, len(slots))
	for i := range slots {
		rec := openBySlot[key{slots[i].FloorNumber, slots[i].SlotNumber}]
		s.rec.Sync(ctx, &slots[i], rec)
		v := model.SlotView{
			SlotNumber:  slots[i].SlotNumber,
			FloorNumber: slots[i].FloorNumber,
			VehicleType: slots[i].VehicleType,
			Occupied:    rec != nil,
		}
		if rec != nil {
			plate := rec.LicensePlate
			ptype := rec.VehicleType
			entry := rec.EntryTime
			minutes := int64(now.Sub(rec.EntryTime).Minutes())
			allowed := allowedMinutes
			v.LicensePlate = &plate
			v.ParkedType = &ptype
			v.EntryTime = &entry
			v.DurationMinutes = &minutes
			v.AllowedMinutes = &allowed
		}
		views = append(views, v)
	}
	return views, nil
}

// SlotDetail returns one slot's board row plus a live charge preview
// for the vehicle currently in it.
func (s *ParkingService) SlotDetail(ctx context.Context, floorNumber *int, slotNumber int) (*model.SlotDetail, error) {
	slot, err := s.slots.FindBySlot(ctx, floorNumber, slotNumber)
	if err != nil {
		return nil, err
	}
	det := &model.SlotDetail{
		SlotNumber:  slot.SlotNumber,
		FloorNumber: slot.FloorNumber,
	}
	open, err := s.records.FindOpenBySlot(ctx, &slot.FloorNumber, slot.SlotNumber)
	if errors.Is(err, repository.ErrNoOpenRecord) {
		s.rec.Sync(ctx, slot, nil)
		return det, nil
	}
	if err != nil {
		return nil, err
	}
	s.rec.Sync(ctx, slot, open)
	preview, err := s.billing.Preview(ctx, open, s.now())
	if err != nil {
		return nil, err
	}
	plate := open.LicensePlate
	vtype := open.VehicleType
	entry := open.EntryTime
	det.Occupied = true
	det.LicensePlate = &plate
	det.VehicleType = &vtype
	det.EntryTime = &entry
	det.DurationMinutes = preview.DurationMinutes
	det.CurrentCharge = preview.Amount
	det.Overdue = preview.Overdue
	return det, nil
}

// DashboardStats summarizes the facility for the current UTC day.
func (s *ParkingService) DashboardStats(ctx context.Context) (*model.DashboardStats, error) {
	slots, err := s.slots.FindAll(ctx)
	if err != nil {
		return nil, err
	}
	open, err := s.records.FindOpen(ctx)
	if err != nil {
		return nil, err
	}
	now := s.now()
	dayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	dayEnd := dayStart.Add(24 * time.Hour)
	entered, err := s.records.CountEnteredBetween(ctx, dayStart, dayEnd)
	if err != nil {
		return nil, err
	}
	revenue, err := s.records.RevenueBetween(ctx, dayStart, dayEnd)
	if err != nil {
		return nil, err
	}
	return &model.DashboardStats{
		TotalSlots:      len(slots),
		AvailableSlots:  len(slots) - len(open),
		OccupiedSlots:   len(open),
		VehiclesToday:   entered,
		TodayRevenue:    revenue,
		CurrentlyParked: len(open),
	}, nil
}

// VehicleHistory returns every visit of a license plate, newest
// first, including an open one.
func (s *ParkingService) VehicleHistory(ctx context.Context, plate string) ([]model.ParkingRecord, error) {
	return s.records.FindByPlate(ctx, NormalizePlate(plate))
}

func (s *ParkingService) normalize(plate, vehicleType string) (string, string, error) {
	plate = NormalizePlate(plate)
	vehicleType = strings.ToUpper(strings.TrimSpace(vehicleType))
	if plate == "" {
		return "", "", ErrInvalidPlate
	}
	if !model.ValidVehicleClass(vehicleType) {
		return "", "", ErrInvalidVehicleType
	}
	return plate, vehicleType, nil
}
