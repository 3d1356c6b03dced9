package model

import "time"

// Floor describes one level of the parking facility.  Floors are
// created administratively and identified by their floor number,
// which is unique across the facility and always >= 1.
//
// Fields:
//  ID          – primary key identifier.
//  FloorNumber – unique level number (1 = ground).
//  Description – free-text label shown on dashboards.
//  CreatedAt   – creation timestamp.
type Floor struct {
	ID          int64     // floors.id
	FloorNumber int       // floors.floor_number
	Description string    // floors.description
	CreatedAt   time.Time // floors.created_at
}
