package models

import "time"

// UserRole controls what a console account may do.
type UserRole string

const (
	RoleAdmin  UserRole = "admin"
	RoleViewer UserRole = "viewer"
)

// ValidUserRole checks whether s is a known role.
func ValidUserRole(s string) bool {
	return UserRole(s) == RoleAdmin || UserRole(s) == RoleViewer
}

// User is a console account. The password hash never leaves the backend.
type User struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	Role         UserRole  `json:"role"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}
