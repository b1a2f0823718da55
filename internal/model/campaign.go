// internal/model/campaign.go
package model

import "time"

type CampaignStatus string

const (
	StatusDraft     CampaignStatus = "DRAFT"
	StatusScheduled CampaignStatus = "SCHEDULED"
	StatusSent      CampaignStatus = "SENT"
)

type Campaign struct {
	ID           string         `db:"id" json:"id"`
	Name         string         `db:"name" json:"name"`
	Description  string         `db:"description" json:"description"`
	FormHTML     string         `db:"form_html" json:"form_html"`
	Status       CampaignStatus `db:"status" json:"status"`
	CreatedBy    string         `db:"created_by" json:"created_by"`
	SubjectLine  *string        `db:"subject_line" json:"subject_line,omitempty"`
	ScheduledFor *time.Time     `db:"scheduled_for" json:"scheduled_for,omitempty"`
	SentAt       *time.Time     `db:"sent_at" json:"sent_at,omitempty"`
	CreatedAt    time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt    *time.Time     `db:"updated_at" json:"updated_at,omitempty"`
}

// CanTransition reports whether a campaign may move from one status to another.
// SENT is terminal. SCHEDULED -> SCHEDULED is a reschedule.
func CanTransition(from, to CampaignStatus) bool {
	switch from {
	case StatusDraft:
		return to == StatusScheduled || to == StatusSent
	case StatusScheduled:
		return to == StatusScheduled || to == StatusSent
	default:
		return false
	}
}

// Subject is the line used in the outbound message header.
func (c *Campaign) Subject() string {
	if c.SubjectLine != nil && *c.SubjectLine != "" {
		return *c.SubjectLine
	}
	return c.Name
}
