// internal/model/user.go
package model

import "time"

type Role string

const (
	RoleOwner Role = "OWNER"
	RoleAdmin Role = "ADMIN"
	RoleUser  Role = "USER"
)

func (r Role) Valid() bool {
	return r == RoleOwner || r == RoleAdmin || r == RoleUser
}

type User struct {
	ID           string     `db:"id" json:"id"`
	Email        string     `db:"email" json:"email"`
	Name         string     `db:"name" json:"name"`
	PasswordHash string     `db:"password_hash" json:"-"`
	Role         Role       `db:"role" json:"role"`
	TwoFAEnabled bool       `db:"twofa_enabled" json:"twofa_enabled"`
	TwoFASecret  *string    `db:"twofa_secret" json:"-"`
	LastLogin    *time.Time `db:"last_login" json:"last_login,omitempty"`
	CreatedAt    time.Time  `db:"created_at" json:"created_at"`
}

// Identity is the caller of an operation. It is passed explicitly to every
// service call instead of being read from process state.
type Identity struct {
	UserID string
	Role   Role
}

// CanManage reports whether the caller may change shared settings
// such as email configurations and users.
func (i Identity) CanManage() bool {
	return i.Role == RoleOwner || i.Role == RoleAdmin
}
