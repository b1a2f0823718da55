// internal/model/email_config.go
package model

import "time"

const DefaultDailyLimit = 500

type EmailConfig struct {
	ID           string    `db:"id" json:"id"`
	Name         string    `db:"name" json:"name"`
	SMTPHost     string    `db:"smtp_host" json:"smtp_host"`
	SMTPPort     int       `db:"smtp_port" json:"smtp_port"`
	SMTPUser     string    `db:"smtp_user" json:"smtp_user"`
	SMTPPassword string    `db:"smtp_password" json:"-"`
	FromEmail    string    `db:"from_email" json:"from_email"`
	FromName     string    `db:"from_name" json:"from_name"`
	IsDefault    bool      `db:"is_default" json:"is_default"`
	DailyLimit   int       `db:"daily_limit" json:"daily_limit"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time `db:"updated_at" json:"updated_at"`
}
