package model

import "time"

// Admin roles.  Operators may run day-to-day overrides; admins may
// additionally manage floors, slots and rates.
const (
	RoleAdmin    = "ADMIN"
	RoleOperator = "OPERATOR"
)

// Admin is an operator account of the administrative API.  The core
// engine never touches this type: it only receives the username as
// the actor of an override.
//
// Fields:
//  ID           – primary key identifier.
//  Username     – unique login name, also the audit actor identity.
//  PasswordHash – bcrypt hash of the password.
//  Email        – optional contact address.
//  Role         – ADMIN or OPERATOR.
//  Active       – whether the account may log in.
//  CreatedAt    – creation timestamp.
type Admin struct {
	ID           int64     // admins.id
	Username     string    // admins.username
	PasswordHash string    // admins.password_hash
	Email        string    // admins.email
	Role         string    // admins.role
	Active       bool      // admins.active
	CreatedAt    time.Time // admins.created_at
}
