package entity

import "time"

// Role is the portal role of a user
type Role string

const (
	RoleAdmin    Role = "admin"
	RoleManager  Role = "manager"
	RoleHR       Role = "hr"
	RoleEmployee Role = "employee"
	RoleDirector Role = "director"
	RoleTraining Role = "training"
	RoleBudget   Role = "budget"
)

// IsValid returns true for a known role
func (r Role) IsValid() bool {
	switch r {
	case RoleAdmin, RoleManager, RoleHR, RoleEmployee, RoleDirector, RoleTraining, RoleBudget:
		return true
	default:
		return false
	}
}

// User is an entry of the user directory
type User struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	FirstName string    `json:"first_name"`
	LastName  string    `json:"last_name"`
	Email     string    `json:"email"`
	Role      Role      `json:"role"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
}

// FullName returns "First Last"
func (u *User) FullName() string {
	switch {
	case u.FirstName == "":
		return u.LastName
	case u.LastName == "":
		return u.FirstName
	}
	return u.FirstName + " " + u.LastName
}
