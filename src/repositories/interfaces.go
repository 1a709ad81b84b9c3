package repositories

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/souqops/marketplace-admin/src/models"
)

// AdminRepository defines the interface for admin account data access
type AdminRepository interface {
	Create(ctx context.Context, admin *models.AdminUser) error
	GetByUsername(ctx context.Context, username string) (*models.AdminUser, error)
	List(ctx context.Context) ([]*models.AdminUser, error)
	UpdateRole(ctx context.Context, adminID uuid.UUID, role string) error
	SetActive(ctx context.Context, adminID uuid.UUID, active bool) error
	UpdateLastLogin(ctx context.Context, adminID uuid.UUID) error
}

// LoginAttemptRepository defines the interface for the append-only login
// attempt history
type LoginAttemptRepository interface {
	Record(ctx context.Context, attempt *models.LoginAttempt) error
	ListRecent(ctx context.Context, limit int) ([]*models.LoginAttempt, error)
	ListSince(ctx context.Context, since time.Time) ([]*models.LoginAttempt, error)
	Stats(ctx context.Context) (total, successful, failed int, err error)
	DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}

// BlockedIPRepository defines the interface for the blocked-IP set
type BlockedIPRepository interface {
	Upsert(ctx context.Context, block *models.BlockedIP) error
	All(ctx context.Context) ([]*models.BlockedIP, error)
	Count(ctx context.Context) (int, error)
}

// AuditRepository defines the interface for the append-only audit trail
type AuditRepository interface {
	Insert(ctx context.Context, entry *models.AuditEntry) error
	List(ctx context.Context, limit, offset int) ([]*models.AuditEntry, error)
}

// RegistrationRepository exposes the account-registration slice of the users
// table that the anomaly detector reads
type RegistrationRepository interface {
	Registrations(ctx context.Context) ([]models.AccountRegistration, error)
}
