package model

import "time"

// SlotView is one row of the slot board: catalog data joined with
// the ledger-derived occupancy for display.  Occupancy fields come
// from the open parking record, never from the slot cache.
type SlotView struct {
	SlotNumber      int        `json:"slot_number"`
	FloorNumber     int        `json:"floor_number"`
	VehicleType     string     `json:"vehicle_type"`
	Occupied        bool       `json:"occupied"`
	LicensePlate    *string    `json:"license_plate,omitempty"`
	ParkedType      *string    `json:"parked_vehicle_type,omitempty"`
	EntryTime       *time.Time `json:"entry_time,omitempty"`
	DurationMinutes *int64     `json:"duration_minutes,omitempty"`
	AllowedMinutes  *int       `json:"allowed_minutes,omitempty"`
}

// SlotDetail extends the board row with a live charge preview for a
// single slot, computed with the same billing rules as a real exit.
type SlotDetail struct {
	SlotNumber      int        `json:"slot_number"`
	FloorNumber     int        `json:"floor_number"`
	Occupied        bool       `json:"occupied"`
	LicensePlate    *string    `json:"license_plate,omitempty"`
	VehicleType     *string    `json:"vehicle_type,omitempty"`
	EntryTime       *time.Time `json:"entry_time,omitempty"`
	DurationMinutes int64      `json:"duration_minutes"`
	CurrentCharge   float64    `json:"current_charge"`
	Overdue         bool       `json:"overdue"`
}

// DashboardStats summarizes the facility for the admin dashboard.
type DashboardStats struct {
	TotalSlots      int     `json:"total_slots"`
	AvailableSlots  int     `json:"available_slots"`
	OccupiedSlots   int     `json:"occupied_slots"`
	VehiclesToday   int     `json:"vehicles_parked_today"`
	TodayRevenue    float64 `json:"today_revenue"`
	CurrentlyParked int     `json:"currently_parked_vehicles"`
}
