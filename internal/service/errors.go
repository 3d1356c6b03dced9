package service

import "errors"

// ErrInvalidVehicleType is returned when a request names a vehicle
// class the facility does not know.
var ErrInvalidVehicleType = errors.New("invalid vehicle type")

// ErrInvalidPlate is returned when a request carries an empty
// license plate.
var ErrInvalidPlate = errors.New("invalid license plate")

// ErrInvalidNumber is returned when a floor number, slot number or
// slot count is not positive.  Floors are numbered from 1.
var ErrInvalidNumber = errors.New("floor, slot and count values must be positive")

// ErrVehicleClassMismatch is returned in strict allocation mode when
// the requested slot does not admit the vehicle's class.
var ErrVehicleClassMismatch = errors.New("slot does not admit this vehicle class")

// ErrNoSlotAvailable is returned when no free slot of the right
// class exists anywhere in the facility.
var ErrNoSlotAvailable = errors.New("no slot available for vehicle class")

// ErrVehicleStillPresent is returned by the mark-available override
// when the ledger still holds an open record for the slot.  The
// override only repairs cache drift; it never evicts a real vehicle.
var ErrVehicleStillPresent = errors.New("vehicle still present according to ledger")
