package models

import (
	"time"

	"github.com/google/uuid"
)

const (
	RoleAdmin    = "admin"
	RoleCustomer = "customer"
)

type Role struct {
	ID        uuid.UUID `json:"id" db:"id"`
	Name      string    `json:"name" db:"name"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// Viewer identifies the authenticated caller of an operation
type Viewer struct {
	UserID uuid.UUID
	Role   string
}

// IsAdmin reports whether the viewer holds the administrator role
func (v Viewer) IsAdmin() bool {
	return v.Role == RoleAdmin
}
