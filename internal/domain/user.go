package domain

import "time"

// Role distinguishes ordinary reporters from administrators.
type Role string

const (
	RoleCitizen Role = "CITIZEN"
	RoleAdmin   Role = "ADMIN"
)

// User is the domain model for registered citizens and administrators.
type User struct {
	ID           string
	Name         string
	Email        string
	PasswordHash string
	Role         Role
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// IsAdmin reports whether the user holds the administrator role.
func (u *User) IsAdmin() bool {
	return u != nil && u.Role == RoleAdmin
}
