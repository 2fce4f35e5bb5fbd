package domain

import (
	"regexp"
	"time"
)

// Role enumerates the account types a school tenant can hold.
type Role string

const (
	RoleSuperAdmin  Role = "super-admin"
	RoleAdmin       Role = "admin"
	RoleSchoolAdmin Role = "school_admin"
	RoleTeacher     Role = "teacher"
	RoleStudent     Role = "student"
	RoleParent      Role = "parent"
)

// DefaultRole is assigned when registration omits the role.
const DefaultRole = RoleStudent

var roles = map[Role]struct{}{
	RoleSuperAdmin:  {},
	RoleAdmin:       {},
	RoleSchoolAdmin: {},
	RoleTeacher:     {},
	RoleStudent:     {},
	RoleParent:      {},
}

// Valid reports whether r is one of the fixed role set.
func (r Role) Valid() bool {
	_, ok := roles[r]
	return ok
}

// MinPasswordLength applies to plaintext input, never to digests.
const MinPasswordLength = 6

var emailPattern = regexp.MustCompile(`^\w+([.-]?\w+)*@\w+([.-]?\w+)*(\.\w{2,3})+$`)

// ValidEmail reports whether the address has an acceptable shape.
func ValidEmail(email string) bool {
	return emailPattern.MatchString(email)
}

// User represents an account scoped to a school tenant.
type User struct {
	ID           string    `json:"id"`
	TenantID     string    `json:"tenantId"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	Role         Role      `json:"role"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}
