// internal/model/form_response.go
package model

import (
	"encoding/json"
	"time"
)

type FormResponse struct {
	ID           string          `db:"id" json:"id"`
	CampaignID   string          `db:"campaign_id" json:"campaign_id"`
	ContactEmail string          `db:"contact_email" json:"contact_email"`
	ResponseData json.RawMessage `db:"response_data" json:"response_data"`
	SubmittedAt  time.Time       `db:"submitted_at" json:"submitted_at"`
	IPAddress    string          `db:"ip_address" json:"ip_address"`
}

type CampaignAnalytics struct {
	CampaignID     string  `json:"campaign_id"`
	TotalSent      int     `json:"total_sent"`
	TotalOpened    int     `json:"total_opened"`
	TotalClicked   int     `json:"total_clicked"`
	TotalResponses int     `json:"total_responses"`
	OpenRate       float64 `json:"open_rate"`
	ClickRate      float64 `json:"click_rate"`
	ResponseRate   float64 `json:"response_rate"`
}
