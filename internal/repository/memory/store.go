// Package memory implements the repository interfaces in process
// memory.  It backs the test suite and local development without a
// MySQL server.  A single mutex guards all state, which makes the
// one-open-record-per-slot check atomic the same way the database's
// unique key does in production.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/iliyamo/smart-parking/internal/model"
	"github.com/iliyamo/smart-parking/internal/repository"
)

// Store holds every table of the facility in memory.  It implements
// all of the repository interfaces so a single value can be handed
// to every service.
type Store struct {
	mu      sync.Mutex
	floors  []model.Floor
	slots   []model.ParkingSlot
	records []model.ParkingRecord
	rates   []model.ParkingCharge
	audits  []model.AuditLog
	admins  []model.Admin

	nextFloorID  int64
	nextSlotID   int64
	nextRecordID int64
	nextRateID   int64
	nextAuditID  int64
	nextAdminID  int64
}

// NewStore returns an empty Store.
func NewStore() *Store {
	return &Store{
		nextFloorID:  1,
		nextSlotID:   1,
		nextRecordID: 1,
		nextRateID:   1,
		nextAuditID:  1,
		nextAdminID:  1,
	}
}

func copyRecord(r model.ParkingRecord) *model.ParkingRecord {
	out := r
	if r.ExitTime != nil {
		t := *r.ExitTime
		out.ExitTime = &t
	}
	return &out
}

func copySlot(s model.ParkingSlot) *model.ParkingSlot {
	out := s
	if s.ParkedPlate != nil {
		p := *s.ParkedPlate
		out.ParkedPlate = &p
	}
	return &out
}

func copyAudit(e model.AuditLog) *model.AuditLog {
	out := e
	if e.Details != nil {
		d := *e.Details
		out.Details = &d
	}
	return &out
}

// --- FloorRepository ---

func (s *Store) CreateFloor(ctx context.Context, floor *model.Floor) (*model.Floor, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, f := range s.floors {
		if f.FloorNumber == floor.FloorNumber {
			return nil, repository.ErrDuplicateFloor
		}
	}
	f := *floor
	f.ID = s.nextFloorID
	s.nextFloorID++
	f.CreatedAt = time.Now().UTC()
	s.floors = append(s.floors, f)
	out := f
	return &out, nil
}

func (s *Store) FindFloorByNumber(ctx context.Context, floorNumber int) (*model.Floor, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, f := range s.floors {
		if f.FloorNumber == floorNumber {
			out := f
			return &out, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (s *Store) FindAllFloors(ctx context.Context) ([]model.Floor, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]model.Floor, len(s.floors))
	copy(out, s.floors)
	sort.Slice(out, func(i, j int) bool { return out[i].FloorNumber < out[j].FloorNumber })
	return out, nil
}

// --- SlotRepository ---

func (s *Store) CreateSlot(ctx context.Context, slot *model.ParkingSlot) (*model.ParkingSlot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.slots {
		if existing.FloorNumber == slot.FloorNumber && existing.SlotNumber == slot.SlotNumber {
			return nil, repository.ErrDuplicateSlot
		}
	}
	sl := *slot
	sl.ID = s.nextSlotID
	s.nextSlotID++
	sl.IsOccupied = false
	sl.ParkedPlate = nil
	now := time.Now().UTC()
	sl.CreatedAt = now
	sl.UpdatedAt = now
	s.slots = append(s.slots, sl)
	return copySlot(sl), nil
}

func (s *Store) FindSlotByID(ctx context.Context, id int64) (*model.ParkingSlot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, sl := range s.slots {
		if sl.ID == id {
			return copySlot(sl), nil
		}
	}
	return nil, repository.ErrNotFound
}

func (s *Store) FindBySlot(ctx context.Context, floorNumber *int, slotNumber int) (*model.ParkingSlot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var best *model.ParkingSlot
	for i := range s.slots {
		sl := s.slots[i]
		if sl.SlotNumber != slotNumber {
			continue
		}
		if floorNumber != nil {
			if sl.FloorNumber == *floorNumber {
				return copySlot(sl), nil
			}
			continue
		}
		if best == nil || sl.FloorNumber < best.FloorNumber {
			best = copySlot(sl)
		}
	}
	if best == nil {
		return nil, repository.ErrNotFound
	}
	return best, nil
}

func (s *Store) FindAllSlots(ctx context.Context) ([]model.ParkingSlot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]model.ParkingSlot, 0, len(s.slots))
	for _, sl := range s.slots {
		out = append(out, *copySlot(sl))
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].FloorNumber != out[j].FloorNumber {
			return out[i].FloorNumber < out[j].FloorNumber
		}
		return out[i].SlotNumber < out[j].SlotNumber
	})
	return out, nil
}

func (s *Store) FindByFloor(ctx context.Context, floorNumber int) ([]model.ParkingSlot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]model.ParkingSlot, 0)
	for _, sl := range s.slots {
		if sl.FloorNumber == floorNumber {
			out = append(out, *copySlot(sl))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].SlotNumber < out[j].SlotNumber })
	return out, nil
}

func (s *Store) UpdateOccupancy(ctx context.Context, id int64, occupied bool, plate *string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.slots {
		if s.slots[i].ID == id {
			s.slots[i].IsOccupied = occupied
			if plate != nil {
				p := *plate
				s.slots[i].ParkedPlate = &p
			} else {
				s.slots[i].ParkedPlate = nil
			}
			s.slots[i].UpdatedAt = time.Now().UTC()
			return nil
		}
	}
	return repository.ErrNotFound
}

func (s *Store) DeleteSlot(ctx context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.slots {
		if s.slots[i].ID == id {
			s.slots = append(s.slots[:i], s.slots[i+1:]...)
			return nil
		}
	}
	return repository.ErrNotFound
}

// --- RecordRepository ---

func (s *Store) Open(ctx context.Context, rec *model.ParkingRecord) (*model.ParkingRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	// Same invariant the database unique key enforces: at most one
	// open record per (floor, slot).  The check and the insert hold
	// the lock together so concurrent callers cannot both pass.
	for _, existing := range s.records {
		if existing.ExitTime == nil && existing.FloorNumber == rec.FloorNumber && existing.SlotNumber == rec.SlotNumber {
			return nil, repository.ErrSlotOccupied
		}
	}
	r := *rec
	r.ID = s.nextRecordID
	s.nextRecordID++
	r.ExitTime = nil
	r.EntryTime = r.EntryTime.UTC()
	s.records = append(s.records, r)
	return copyRecord(r), nil
}

func (s *Store) FindRecordByID(ctx context.Context, id int64) (*model.ParkingRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, r := range s.records {
		if r.ID == id {
			return copyRecord(r), nil
		}
	}
	return nil, repository.ErrNotFound
}

func (s *Store) FindOpenBySlot(ctx context.Context, floorNumber *int, slotNumber int) (*model.ParkingRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var best *model.ParkingRecord
	for i := range s.records {
		r := s.records[i]
		if r.ExitTime != nil || r.SlotNumber != slotNumber {
			continue
		}
		if floorNumber != nil {
			if r.FloorNumber == *floorNumber {
				return copyRecord(r), nil
			}
			continue
		}
		if best == nil || r.FloorNumber < best.FloorNumber {
			best = copyRecord(r)
		}
	}
	if best == nil {
		return nil, repository.ErrNoOpenRecord
	}
	return best, nil
}

func (s *Store) FindOpenByPlate(ctx context.Context, plate string) (*model.ParkingRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var best *model.ParkingRecord
	for i := range s.records {
		r := s.records[i]
		if r.ExitTime != nil || !strings.EqualFold(r.LicensePlate, plate) {
			continue
		}
		if best == nil || r.EntryTime.Before(best.EntryTime) {
			best = copyRecord(r)
		}
	}
	if best == nil {
		return nil, repository.ErrNoOpenRecord
	}
	return best, nil
}

func (s *Store) FindOpen(ctx context.Context) ([]model.ParkingRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]model.ParkingRecord, 0)
	for _, r := range s.records {
		if r.ExitTime == nil {
			out = append(out, *copyRecord(r))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].EntryTime.After(out[j].EntryTime) })
	return out, nil
}

func (s *Store) Close(ctx context.Context, id int64, exitTime time.Time, durationMinutes int64, billableHours int, charge float64) (*model.ParkingRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.records {
		if s.records[i].ID != id {
			continue
		}
		if s.records[i].ExitTime != nil {
			return nil, repository.ErrAlreadyClosed
		}
		t := exitTime.UTC()
		s.records[i].ExitTime = &t
		s.records[i].DurationMinutes = durationMinutes
		s.records[i].BillableHours = billableHours
		s.records[i].Charge = charge
		return copyRecord(s.records[i]), nil
	}
	return nil, repository.ErrNotFound
}

func (s *Store) Reassign(ctx context.Context, id int64, newFloorNumber, newSlotNumber int) (*model.ParkingRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	idx := -1
	for i := range s.records {
		if s.records[i].ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nil, repository.ErrNotFound
	}
	if s.records[idx].ExitTime != nil {
		return nil, repository.ErrRecordClosed
	}
	for i := range s.records {
		if i == idx {
			continue
		}
		if s.records[i].ExitTime == nil && s.records[i].FloorNumber == newFloorNumber && s.records[i].SlotNumber == newSlotNumber {
			return nil, repository.ErrTargetOccupied
		}
	}
	s.records[idx].FloorNumber = newFloorNumber
	s.records[idx].SlotNumber = newSlotNumber
	return copyRecord(s.records[idx]), nil
}

func (s *Store) UpdatePlate(ctx context.Context, id int64, plate string) (*model.ParkingRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.records {
		if s.records[i].ID != id {
			continue
		}
		if s.records[i].ExitTime != nil {
			return nil, repository.ErrRecordClosed
		}
		s.records[i].LicensePlate = plate
		return copyRecord(s.records[i]), nil
	}
	return nil, repository.ErrNotFound
}

func (s *Store) FindByPlate(ctx context.Context, plate string) ([]model.ParkingRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]model.ParkingRecord, 0)
	for _, r := range s.records {
		if strings.EqualFold(r.LicensePlate, plate) {
			out = append(out, *copyRecord(r))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].EntryTime.After(out[j].EntryTime) })
	return out, nil
}

func (s *Store) FindClosedBetween(ctx context.Context, from, to time.Time) ([]model.ParkingRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]model.ParkingRecord, 0)
	for _, r := range s.records {
		if r.ExitTime == nil {
			continue
		}
		if r.ExitTime.Before(from) || !r.ExitTime.Before(to) {
			continue
		}
		out = append(out, *copyRecord(r))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ExitTime.After(*out[j].ExitTime) })
	return out, nil
}

func (s *Store) FindClosedBySlot(ctx context.Context, slotNumber int, limit int) ([]model.ParkingRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]model.ParkingRecord, 0)
	for _, r := range s.records {
		if r.ExitTime != nil && r.SlotNumber == slotNumber {
			out = append(out, *copyRecord(r))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ExitTime.After(*out[j].ExitTime) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *Store) CountEnteredBetween(ctx context.Context, from, to time.Time) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, r := range s.records {
		if !r.EntryTime.Before(from) && r.EntryTime.Before(to) {
			n++
		}
	}
	return n, nil
}

func (s *Store) RevenueBetween(ctx context.Context, from, to time.Time) (float64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	total := 0.0
	for _, r := range s.records {
		if r.ExitTime == nil {
			continue
		}
		if r.ExitTime.Before(from) || !r.ExitTime.Before(to) {
			continue
		}
		total += r.Charge
	}
	return total, nil
}

// --- RateRepository ---

func (s *Store) Upsert(ctx context.Context, vehicleType string, hourlyRate float64) (*model.ParkingCharge, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.rates {
		if s.rates[i].VehicleType == vehicleType {
			s.rates[i].HourlyRate = hourlyRate
			s.rates[i].Active = true
			out := s.rates[i]
			return &out, nil
		}
	}
	c := model.ParkingCharge{ID: s.nextRateID, VehicleType: vehicleType, HourlyRate: hourlyRate, Active: true}
	s.nextRateID++
	s.rates = append(s.rates, c)
	out := c
	return &out, nil
}

func (s *Store) FindActiveByType(ctx context.Context, vehicleType string) (*model.ParkingCharge, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, c := range s.rates {
		if c.VehicleType == vehicleType && c.Active {
			out := c
			return &out, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (s *Store) FindAllRates(ctx context.Context) ([]model.ParkingCharge, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]model.ParkingCharge, len(s.rates))
	copy(out, s.rates)
	sort.Slice(out, func(i, j int) bool { return out[i].VehicleType < out[j].VehicleType })
	return out, nil
}

// --- AuditRepository ---

func (s *Store) Append(ctx context.Context, entry *model.AuditLog) (*model.AuditLog, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e := *copyAudit(*entry)
	e.ID = s.nextAuditID
	s.nextAuditID++
	if e.Timestamp.IsZero() {
		e.Timestamp = time.Now().UTC()
	}
	s.audits = append(s.audits, e)
	return copyAudit(e), nil
}

func (s *Store) FindByAdmin(ctx context.Context, username string) ([]model.AuditLog, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]model.AuditLog, 0)
	for _, e := range s.audits {
		if e.AdminUsername == username {
			out = append(out, *copyAudit(e))
		}
	}
	sortAuditsDesc(out)
	return out, nil
}

func (s *Store) FindBetween(ctx context.Context, from, to time.Time) ([]model.AuditLog, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]model.AuditLog, 0)
	for _, e := range s.audits {
		if !e.Timestamp.Before(from) && e.Timestamp.Before(to) {
			out = append(out, *copyAudit(e))
		}
	}
	sortAuditsDesc(out)
	return out, nil
}

func (s *Store) FindAllAudits(ctx context.Context) ([]model.AuditLog, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]model.AuditLog, 0, len(s.audits))
	for _, e := range s.audits {
		out = append(out, *copyAudit(e))
	}
	sortAuditsDesc(out)
	return out, nil
}

func sortAuditsDesc(entries []model.AuditLog) {
	sort.Slice(entries, func(i, j int) bool {
		if !entries[i].Timestamp.Equal(entries[j].Timestamp) {
			return entries[i].Timestamp.After(entries[j].Timestamp)
		}
		return entries[i].ID > entries[j].ID
	})
}

// --- AdminRepository ---

func (s *Store) CreateAdmin(ctx context.Context, admin *model.Admin) (*model.Admin, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, a := range s.admins {
		if a.Username == admin.Username {
			return nil, repository.ErrUsernameExists
		}
	}
	a := *admin
	a.ID = s.nextAdminID
	s.nextAdminID++
	a.Active = true
	a.CreatedAt = time.Now().UTC()
	s.admins = append(s.admins, a)
	out := a
	return &out, nil
}

func (s *Store) FindAdminByUsername(ctx context.Context, username string) (*model.Admin, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, a := range s.admins {
		if a.Username == username {
			out := a
			return &out, nil
		}
	}
	return nil, repository.ErrNotFound
}
