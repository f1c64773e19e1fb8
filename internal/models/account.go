package models

import "time"

// Account captures a registered identity.
type Account struct {
	ID            int64     `json:"id"`
	Username      string    `json:"username"`
	Email         string    `json:"email"`
	ContactNumber string    `json:"mobile"`
	PasswordHash  string    `json:"-"`
	Role          Role      `json:"role"`
	IsActive      bool      `json:"isActive"`
	CreatedAt     time.Time `json:"createdAt"`
}

// IsAdmin reports whether the account holds the admin role.
func (a Account) IsAdmin() bool {
	return a.Role == RoleAdmin
}
