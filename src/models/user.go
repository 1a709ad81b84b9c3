package models

import (
	"time"

	"github.com/google/uuid"
)

// User is a marketplace account managed through the back office
type User struct {
	ID             uuid.UUID `json:"id"`
	Username       string    `json:"username"`
	Email          string    `json:"email"`
	Role           string    `json:"role"`
	IsActive       bool      `json:"is_active"`
	RegistrationIP string    `json:"registration_ip"`
	CreatedAt      time.Time `json:"created_at"`
}

// AccountRegistration is the slice of a user record the anomaly detector
// needs: which account was created from which source address
type AccountRegistration struct {
	Username  string
	Email     string
	IPAddress string
	CreatedAt time.Time
}

// UpgradeRequest is a pending request to upgrade a marketplace account to a
// provider or media role
type UpgradeRequest struct {
	ID            uuid.UUID  `json:"id"`
	UserID        uuid.UUID  `json:"user_id"`
	Username      string     `json:"username"`
	RequestedRole string     `json:"requested_role"`
	Status        string     `json:"status"`
	CreatedAt     time.Time  `json:"created_at"`
	DecidedAt     *time.Time `json:"decided_at,omitempty"`
	DecidedBy     string     `json:"decided_by,omitempty"`
}
