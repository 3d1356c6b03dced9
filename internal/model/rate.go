package model

// ParkingCharge holds the administratively configured hourly rate
// for one vehicle class.  At most one row exists per class.  Rows
// with Active == false are ignored by billing, which then falls back
// to the built-in default rate table.
//
// Fields:
//  ID          – primary key identifier.
//  VehicleType – vehicle class this rate applies to (unique).
//  HourlyRate  – amount charged per billable hour.
//  Active      – whether billing may use this rate.
type ParkingCharge struct {
	ID          int64   // parking_charges.id
	VehicleType string  // parking_charges.vehicle_type
	HourlyRate  float64 // parking_charges.hourly_rate
	Active      bool    // parking_charges.active
}
