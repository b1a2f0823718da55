// internal/model/audit_log.go
package model

import "time"

type AuditLog struct {
	ID         string    `db:"id" json:"id"`
	UserID     *string   `db:"user_id" json:"user_id,omitempty"`
	Action     string    `db:"action" json:"action"`
	EntityType string    `db:"entity_type" json:"entity_type"`
	EntityID   string    `db:"entity_id" json:"entity_id"`
	Details    string    `db:"details" json:"details"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`

	// Filled by reads that join the acting user.
	UserName  string `db:"user_name" json:"user_name,omitempty"`
	UserEmail string `db:"user_email" json:"user_email,omitempty"`
}
