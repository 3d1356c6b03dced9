package model

import "time"

// Audit action kinds written by the admin workflow.
const (
	AuditLogin             = "LOGIN"
	AuditRegister          = "REGISTER"
	AuditForceExit         = "FORCE_EXIT"
	AuditChangeSlot        = "CHANGE_SLOT"
	AuditUpdatePlate       = "UPDATE_LICENSE_PLATE"
	AuditMarkSlotAvailable = "MARK_SLOT_AVAILABLE"
	AuditDeleteSlot        = "DELETE_SLOT"
	AuditUpdateCharge      = "UPDATE_CHARGE"
	AuditCreateFloor       = "CREATE_FLOOR"
	AuditAddSlots          = "ADD_SLOTS"
)

// AuditLog is one append-only record of an administrative action.
// Entries are never mutated or deleted; Details carries a JSON
// payload sufficient to reconstruct the change.
//
// Fields:
//  ID            – primary key identifier.
//  AdminUsername – actor identity supplied by the auth layer.
//  Action        – action kind (see constants above).
//  Description   – human-readable summary.
//  Details       – structured JSON payload; nil when the action has none.
//  Timestamp     – when the action happened.
type AuditLog struct {
	ID            int64     // audit_logs.id
	AdminUsername string    // audit_logs.admin_username
	Action        string    // audit_logs.action
	Description   string    // audit_logs.description
	Details       *string   // audit_logs.details (nullable)
	Timestamp     time.Time // audit_logs.timestamp
}
