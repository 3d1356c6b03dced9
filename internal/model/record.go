package model

import "time"

// ParkingRecord is one park-to-exit lifecycle for one vehicle visit
// and the sole source of truth for slot occupancy: a slot is occupied
// exactly when an open record (ExitTime == nil) references it, and
// the storage layer guarantees at most one open record per
// (floor, slot) pair at any time.
//
// A record is created open on entry, closed exactly once on exit and
// immutable afterwards; closed records form the billing/audit history.
//
// Fields:
//  ID              – primary key identifier.
//  LicensePlate    – plate of the parked vehicle.
//  VehicleType     – class of the parked vehicle.
//  SlotNumber      – slot the vehicle occupies.
//  FloorNumber     – floor of that slot.
//  EntryTime       – when the vehicle entered.
//  ExitTime        – when the vehicle left; nil while parked.
//  DurationMinutes – elapsed minutes, set on close.
//  BillableHours   – charged hours (minimum 1, rounded up), set on close.
//  Charge          – total amount charged, set on close.
type ParkingRecord struct {
	ID              int64      // parking_records.id
	LicensePlate    string     // parking_records.license_plate
	VehicleType     string     // parking_records.vehicle_type
	SlotNumber      int        // parking_records.slot_number
	FloorNumber     int        // parking_records.floor_number
	EntryTime       time.Time  // parking_records.entry_time
	ExitTime        *time.Time // parking_records.exit_time (nullable)
	DurationMinutes int64      // parking_records.duration_minutes
	BillableHours   int        // parking_records.billable_hours
	Charge          float64    // parking_records.charge
}

// Open reports whether the vehicle is still parked.
func (r *ParkingRecord) Open() bool { return r.ExitTime == nil }
