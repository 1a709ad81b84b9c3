package models

import (
	"time"

	"github.com/google/uuid"
)

// LoginAttempt is an append-only record of one authentication attempt.
// Attempts are never mutated and are retained for a rolling analysis window.
type LoginAttempt struct {
	ID          uuid.UUID `json:"id"`
	IPAddress   string    `json:"ip_address"`
	Username    string    `json:"username"`
	Success     bool      `json:"success"`
	AttemptedAt time.Time `json:"attempted_at"`
}
