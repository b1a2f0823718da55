package model

// SystemStats are installation-wide totals.
type SystemStats struct {
	TotalUsers     int `json:"total_users"`
	TotalCampaigns int `json:"total_campaigns"`
	TotalContacts  int `json:"total_contacts"`
	TotalResponses int `json:"total_responses"`
}

// UserSummary is one row of the owner dashboard's user table.
type UserSummary struct {
	User
	CampaignsCreated int `json:"campaigns_created"`
	TotalActions     int `json:"total_actions"`
}

type OwnerDashboard struct {
	Users          []*UserSummary `json:"users"`
	RecentActivity []*AuditLog    `json:"recent_activity"`
	Stats          SystemStats    `json:"stats"`
}

type UserActivity struct {
	User     *User       `json:"user"`
	Activity []*AuditLog `json:"activity"`
}
