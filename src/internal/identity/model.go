package identity

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type AdminUser struct {
	ID           primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	Username     string             `json:"username" bson:"username"`
	Email        string             `json:"email" bson:"email"`
	PasswordHash string             `json:"-" bson:"password_hash"`
	Role         string             `json:"role" bson:"role"`
	SubRole      string             `json:"subRole,omitempty" bson:"sub_role,omitempty"`
	Status       string             `json:"status" bson:"status"`
	LastLoginAt  *time.Time         `json:"lastLoginAt,omitempty" bson:"last_login_at,omitempty"`
	CreatedAt    time.Time          `json:"createdAt" bson:"created_at"`
	UpdatedAt    time.Time          `json:"updatedAt" bson:"updated_at"`
	DeletedAt    *time.Time         `json:"deletedAt,omitempty" bson:"deleted_at,omitempty"`
}

// Role constants
const (
	RoleAdmin = "admin"
)

// Sub-role constants for the admin portal
const (
	SubRoleSuperAdmin    = "super_admin"
	SubRoleAttorneyAdmin = "attorney_admin"
)

// Status constants
const (
	StatusActive    = "active"
	StatusInactive  = "inactive"
	StatusSuspended = "suspended"
)

// Verified is the outcome of a successful credential check, the input
// to session issuance.
type Verified struct {
	UserID  string `json:"userId"`
	Email   string `json:"email"`
	Role    string `json:"role"`
	SubRole string `json:"subRole,omitempty"`
}

// IsAdmin checks if the user carries the admin role.
func (u *AdminUser) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// IsActive checks if the user account is usable.
func (u *AdminUser) IsActive() bool {
	return u.Status == StatusActive && u.DeletedAt == nil
}
