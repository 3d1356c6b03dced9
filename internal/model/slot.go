package model

import "time"

// Vehicle classes accepted by the facility.  Slots restrict which
// class may park in them and the rate table is keyed by class.
const (
	VehicleBike     = "BIKE"
	VehicleCar      = "CAR"
	VehicleMicrobus = "MICROBUS"
	VehicleTruck    = "TRUCK"
)

// VehicleClasses lists every valid class in a stable order.
var VehicleClasses = []string{VehicleBike, VehicleCar, VehicleMicrobus, VehicleTruck}

// ValidVehicleClass reports whether s (already upper-cased) is a
// known vehicle class.
func ValidVehicleClass(s string) bool {
	for _, c := range VehicleClasses {
		if c == s {
			return true
		}
	}
	return false
}

// ParkingSlot is one physical parking space.  A slot is uniquely
// identified by its (floor number, slot number) pair and restricted
// to a single vehicle class.
//
// IsOccupied and ParkedPlate are a denormalized cache of the ledger
// state: they must always be re-derivable from the open parking
// record for this slot (or its absence) and are healed toward the
// ledger by the reconciler.  Queries that decide availability always
// consult the ledger, never these fields.
//
// Fields:
//  ID          – primary key identifier.
//  FloorNumber – floor this slot belongs to.
//  SlotNumber  – number of the slot within the floor.
//  VehicleType – class allowed to park here (BIKE, CAR, MICROBUS, TRUCK).
//  IsOccupied  – cached occupancy flag (advisory).
//  ParkedPlate – cached plate of the vehicle believed parked here (advisory).
//  CreatedAt   – creation timestamp.
//  UpdatedAt   – last update timestamp.
type ParkingSlot struct {
	ID          int64     // parking_slots.id
	FloorNumber int       // parking_slots.floor_number
	SlotNumber  int       // parking_slots.slot_number
	VehicleType string    // parking_slots.vehicle_type
	IsOccupied  bool      // parking_slots.is_occupied
	ParkedPlate *string   // parking_slots.parked_plate (nullable)
	CreatedAt   time.Time // parking_slots.created_at
	UpdatedAt   time.Time // parking_slots.updated_at
}
