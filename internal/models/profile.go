package models

import (
	"time"

	"github.com/google/uuid"
)

type Role string

const (
	RoleStaff Role = "staff"
	RoleAdmin Role = "admin"
)

// Profile is the directory record for an authenticated principal.
// Rows are created by a signup trigger in the store; the role is
// read-only from this service's perspective.
type Profile struct {
	ID          uuid.UUID `json:"id" db:"id"`
	Role        Role      `json:"role" db:"role"`
	DisplayName *string   `json:"display_name,omitempty" db:"display_name"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
}
