// Package queue defines message payloads exchanged over the message
// broker and the background consumer that archives them.
package queue

// AuditEvent is published on the audit.logged queue after an
// administrative action is durably stored.  It carries enough
// information for downstream consumers to archive or alert on
// without querying the primary database.
type AuditEvent struct {
	EventID       string  `json:"event_id"`
	AdminUsername string  `json:"admin_username"`
	Action        string  `json:"action"`
	Description   string  `json:"description"`
	Details       *string `json:"details,omitempty"`
	LoggedAt      string  `json:"logged_at"`
}
