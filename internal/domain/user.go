package domain

import "time"

// Role partitions accounts in the directory.
type Role string

const (
	RoleOrdinary Role = "Ordinary"
	RoleAgent    Role = "Agent"
	RoleAdmin    Role = "Admin"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleOrdinary, RoleAgent, RoleAdmin:
		return true
	}
	return false
}

// AdminUserID identifies the synthetic administrator returned by login.
const AdminUserID = "admin"

// User is a citizen, agent or administrator account.
type User struct {
	ID           string
	Name         string
	Email        string
	PasswordHash string
	Phone        string
	Role         Role
	Department   *string
	District     *string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
