// internal/model/contact.go
package model

import "time"

type Contact struct {
	ID         string    `db:"id" json:"id"`
	Email      string    `db:"email" json:"email"`
	FirstName  string    `db:"first_name" json:"first_name"`
	LastName   string    `db:"last_name" json:"last_name"`
	Company    string    `db:"company" json:"company"`
	Phone      string    `db:"phone" json:"phone"`
	Tags       string    `db:"tags" json:"tags"`
	Subscribed bool      `db:"subscribed" json:"subscribed"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
	UpdatedAt  time.Time `db:"updated_at" json:"updated_at"`
}

// ContactImport is one row of a bulk import. Only Email is required.
type ContactImport struct {
	Email     string `json:"email" yaml:"email"`
	FirstName string `json:"first_name" yaml:"first_name"`
	LastName  string `json:"last_name" yaml:"last_name"`
	Company   string `json:"company" yaml:"company"`
	Phone     string `json:"phone" yaml:"phone"`
}

type ImportResult struct {
	Imported int `json:"imported"`
	Skipped  int `json:"skipped"`
}
