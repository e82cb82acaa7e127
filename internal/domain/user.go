package domain

import "time"

type Role string

const (
	RoleResident        Role = "resident"
	RoleBarangayAdmin   Role = "barangay_admin"
	RoleMunicipalAdmin  Role = "municipal_admin"
	RoleProvincialAdmin Role = "provincial_admin"
	RoleSuperAdmin      Role = "superadmin"
)

// IsAdmin reports whether the role may perform admin transitions in some scope.
func (r Role) IsAdmin() bool {
	switch r {
	case RoleBarangayAdmin, RoleMunicipalAdmin, RoleProvincialAdmin, RoleSuperAdmin:
		return true
	}
	return false
}

// User is the read-only profile this core consumes. Identity and session
// management live outside this service.
type User struct {
	ID             int32      `json:"id"`
	Email          string     `json:"email"`
	FirstName      string     `json:"first_name"`
	LastName       string     `json:"last_name"`
	Role           Role       `json:"role"`
	DateOfBirth    *time.Time `json:"date_of_birth,omitempty"`
	MunicipalityID *int32     `json:"municipality_id,omitempty"`
	BarangayID     *int32     `json:"barangay_id,omitempty"`
	PushToken      string     `json:"-"`
	IsVerified     bool       `json:"is_verified"`
	CreatedAt      time.Time  `json:"created_at"`
}

func (u *User) FullName() string {
	if u.LastName == "" {
		return u.FirstName
	}
	return u.FirstName + " " + u.LastName
}
