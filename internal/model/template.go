package model

import "time"

// EmailTemplate is a reusable subject and body. Public templates are
// visible to every user.
type EmailTemplate struct {
	ID          string    `db:"id" json:"id"`
	Name        string    `db:"name" json:"name"`
	Subject     string    `db:"subject" json:"subject"`
	HTMLContent string    `db:"html_content" json:"html_content"`
	CreatedBy   string    `db:"created_by" json:"created_by"`
	IsPublic    bool      `db:"is_public" json:"is_public"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
}

type EmailTemplateInput struct {
	Name        string `json:"name"`
	Subject     string `json:"subject"`
	HTMLContent string `json:"html_content"`
	IsPublic    bool   `json:"is_public"`
}

// CampaignTemplate is a starting point for a campaign's form HTML.
// System templates ship with the installation and cannot be deleted.
type CampaignTemplate struct {
	ID          string    `db:"id" json:"id" yaml:"-"`
	Name        string    `db:"name" json:"name" yaml:"name"`
	Description string    `db:"description" json:"description" yaml:"description"`
	Category    string    `db:"category" json:"category" yaml:"category"`
	HTMLContent string    `db:"html_content" json:"html_content" yaml:"html_content"`
	Thumbnail   *string   `db:"thumbnail" json:"thumbnail,omitempty" yaml:"thumbnail"`
	IsSystem    bool      `db:"is_system" json:"is_system" yaml:"-"`
	CreatedBy   *string   `db:"created_by" json:"created_by,omitempty" yaml:"-"`
	CreatedAt   time.Time `db:"created_at" json:"created_at" yaml:"-"`
}

type CampaignTemplateInput struct {
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Category    string  `json:"category"`
	HTMLContent string  `json:"html_content"`
	Thumbnail   *string `json:"thumbnail"`
}
