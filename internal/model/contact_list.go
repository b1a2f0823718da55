package model

import "time"

// ContactList is a named, owner-scoped group of contacts a campaign can be sent to.
type ContactList struct {
	ID           string    `db:"id" json:"id"`
	Name         string    `db:"name" json:"name"`
	Description  string    `db:"description" json:"description"`
	CreatedBy    string    `db:"created_by" json:"created_by"`
	ContactCount int       `db:"contact_count" json:"contact_count"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}

type ContactListInput struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}
