package model

import "time"

// CampaignPermission shares one campaign with one user.
type CampaignPermission struct {
	CampaignID string    `db:"campaign_id" json:"campaign_id"`
	UserID     string    `db:"user_id" json:"user_id"`
	CanView    bool      `db:"can_view" json:"can_view"`
	CanEdit    bool      `db:"can_edit" json:"can_edit"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
}
