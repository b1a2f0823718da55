// internal/model/delivery_record.go
package model

import "time"

// DeliveryRecord is a campaign_emails row. One exists only for a message the
// SMTP server accepted; the tracking fields are never written by the dispatcher.
type DeliveryRecord struct {
	ID           string     `db:"id" json:"id"`
	CampaignID   string     `db:"campaign_id" json:"campaign_id"`
	ContactID    string     `db:"contact_id" json:"contact_id"`
	SentAt       time.Time  `db:"sent_at" json:"sent_at"`
	Opened       bool       `db:"opened" json:"opened"`
	OpenedAt     *time.Time `db:"opened_at" json:"opened_at,omitempty"`
	Clicked      bool       `db:"clicked" json:"clicked"`
	ClickedAt    *time.Time `db:"clicked_at" json:"clicked_at,omitempty"`
	Bounced      bool       `db:"bounced" json:"bounced"`
	Unsubscribed bool       `db:"unsubscribed" json:"unsubscribed"`
}

// DeliveryStats aggregates the delivery rows of one campaign.
type DeliveryStats struct {
	Total   int
	Opened  int
	Clicked int
}
