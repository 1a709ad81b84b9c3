package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"

	"github.com/souqops/marketplace-admin/src/models"
	"github.com/souqops/marketplace-admin/src/repositories"
)

// bcryptCost is the work factor for admin password hashing
const bcryptCost = 12

// dummyPasswordHash is a cost-12 digest with no matching password. The
// unknown-user and disabled-account paths verify against it so a miss costs
// the same hashing work as a wrong password and login latency does not reveal
// whether a username exists.
var dummyPasswordHash = []byte("$2a$12$N9qo8uLOickgx2ZMRZoMyeIjZAgcfl7p92ldGxad68LJZdL17lhWy")

// AdminService handles admin account operations and authentication
type AdminService struct {
	pool     *pgxpool.Pool
	repo     repositories.AdminRepository
	attempts repositories.LoginAttemptRepository
}

// NewAdminService creates a new admin service
func NewAdminService(pool *pgxpool.Pool) *AdminService {
	return &AdminService{pool: pool}
}

// NewAdminServiceWithRepo creates a new admin service with repositories (for testing)
func NewAdminServiceWithRepo(repo repositories.AdminRepository, attempts repositories.LoginAttemptRepository) *AdminService {
	return &AdminService{repo: repo, attempts: attempts}
}

// CreateAdmin creates a new admin account with a hashed password
func (as *AdminService) CreateAdmin(ctx context.Context, username, password, role string) (*models.AdminUser, error) {
	if len(username) < 1 || len(username) > 255 {
		return nil, fmt.Errorf("%w: username must be between 1 and 255 characters", ErrValidation)
	}
	if len(password) < 8 {
		return nil, fmt.Errorf("%w: password must be at least 8 characters", ErrValidation)
	}
	if !models.IsValidRole(role) {
		return nil, fmt.Errorf("%w: unknown role %q", ErrValidation, role)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	admin := &models.AdminUser{
		ID:           uuid.New(),
		Username:     username,
		PasswordHash: string(hash),
		Role:         role,
		CreatedAt:    time.Now(),
		IsActive:     true,
	}

	// Use repository if available (for testing)
	if as.repo != nil {
		if err := as.repo.Create(ctx, admin); err != nil {
			return nil, fmt.Errorf("failed to create admin: %w", err)
		}
		return admin, nil
	}

	query := `
		INSERT INTO admin_users (id, username, password_hash, role, created_at, is_active)
		VALUES ($1, $2, $3, $4, $5, true)
	`
	if _, err := as.pool.Exec(ctx, query, admin.ID, admin.Username, admin.PasswordHash, admin.Role, admin.CreatedAt); err != nil {
		return nil, fmt.Errorf("failed to create admin: %w", err)
	}

	return admin, nil
}

// HasAdmins checks if any admin accounts exist
func (as *AdminService) HasAdmins(ctx context.Context) (bool, error) {
	var count int
	err := as.pool.QueryRow(ctx, "SELECT COUNT(*) FROM admin_users").Scan(&count)
	if err != nil {
		return false, fmt.Errorf("failed to check admin accounts: %w", err)
	}
	return count > 0, nil
}

// Authenticate verifies username and password and records the attempt with
// the caller's source IP. Unknown users, wrong passwords and disabled
// accounts all return ErrInvalidCredentials so the failure is not
// distinguishable from the outside.
func (as *AdminService) Authenticate(ctx context.Context, username, password, sourceIP string) (*models.AdminUser, error) {
	admin, err := as.getByUsername(ctx, username)
	if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		// A store outage is not a credential failure: it must not be
		// recorded as a failed attempt or it would pollute the
		// brute-force signal for this IP.
		log.Error().Err(err).Msg("credential store lookup failed")
		return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	if admin == nil || !admin.IsActive {
		_ = bcrypt.CompareHashAndPassword(dummyPasswordHash, []byte(password))
		as.recordAttempt(ctx, sourceIP, username, false)
		return nil, ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(admin.PasswordHash), []byte(password)); err != nil {
		as.recordAttempt(ctx, sourceIP, username, false)
		return nil, ErrInvalidCredentials
	}

	as.recordAttempt(ctx, sourceIP, username, true)

	now := time.Now()
	if as.repo != nil {
		if err := as.repo.UpdateLastLogin(ctx, admin.ID); err != nil {
			log.Warn().Err(err).Str("username", admin.Username).Msg("failed to update last_login")
		}
	} else {
		if _, err := as.pool.Exec(ctx, `UPDATE admin_users SET last_login = $1 WHERE id = $2`, now, admin.ID); err != nil {
			log.Warn().Err(err).Str("username", admin.Username).Msg("failed to update last_login")
		}
	}

	admin.LastLogin = &now
	return admin, nil
}

// ListAdmins returns every admin account, newest first
func (as *AdminService) ListAdmins(ctx context.Context) ([]*models.AdminUser, error) {
	if as.repo != nil {
		return as.repo.List(ctx)
	}

	rows, err := as.pool.Query(ctx, `
		SELECT id, username, password_hash, role, created_at, last_login, is_active
		FROM admin_users
		ORDER BY created_at DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list admins: %w", err)
	}
	defer rows.Close()

	var admins []*models.AdminUser
	for rows.Next() {
		admin := &models.AdminUser{}
		if err := rows.Scan(&admin.ID, &admin.Username, &admin.PasswordHash, &admin.Role,
			&admin.CreatedAt, &admin.LastLogin, &admin.IsActive); err != nil {
			return nil, fmt.Errorf("failed to scan admin: %w", err)
		}
		admins = append(admins, admin)
	}
	return admins, rows.Err()
}

// UpdateRole changes an admin account's role
func (as *AdminService) UpdateRole(ctx context.Context, adminID uuid.UUID, role string) error {
	if !models.IsValidRole(role) {
		return fmt.Errorf("%w: unknown role %q", ErrValidation, role)
	}

	if as.repo != nil {
		return as.repo.UpdateRole(ctx, adminID, role)
	}

	tag, err := as.pool.Exec(ctx, `UPDATE admin_users SET role = $1 WHERE id = $2`, role, adminID)
	if err != nil {
		return fmt.Errorf("failed to update role: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// Deactivate disables an admin account without deleting it
func (as *AdminService) Deactivate(ctx context.Context, adminID uuid.UUID) error {
	if as.repo != nil {
		return as.repo.SetActive(ctx, adminID, false)
	}

	tag, err := as.pool.Exec(ctx, `UPDATE admin_users SET is_active = false WHERE id = $1`, adminID)
	if err != nil {
		return fmt.Errorf("failed to deactivate admin: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (as *AdminService) getByUsername(ctx context.Context, username string) (*models.AdminUser, error) {
	if as.repo != nil {
		return as.repo.GetByUsername(ctx, username)
	}

	query := `
		SELECT id, username, password_hash, role, created_at, last_login, is_active
		FROM admin_users
		WHERE username = $1
	`
	admin := &models.AdminUser{}
	err := as.pool.QueryRow(ctx, query, username).Scan(
		&admin.ID, &admin.Username, &admin.PasswordHash, &admin.Role,
		&admin.CreatedAt, &admin.LastLogin, &admin.IsActive,
	)
	if err != nil {
		return nil, err
	}
	return admin, nil
}

// recordAttempt appends a login attempt. Failures are logged, never surfaced:
// an attempt that cannot be recorded must not fail the login itself.
func (as *AdminService) recordAttempt(ctx context.Context, sourceIP, username string, success bool) {
	attempt := &models.LoginAttempt{
		ID:          uuid.New(),
		IPAddress:   sourceIP,
		Username:    username,
		Success:     success,
		AttemptedAt: time.Now(),
	}

	var err error
	if as.attempts != nil {
		err = as.attempts.Record(ctx, attempt)
	} else if as.pool != nil {
		_, err = as.pool.Exec(ctx, `
			INSERT INTO login_attempts (id, ip_address, username, success, attempted_at)
			VALUES ($1, $2, $3, $4, $5)
		`, attempt.ID, attempt.IPAddress, attempt.Username, attempt.Success, attempt.AttemptedAt)
	}
	if err != nil {
		log.Error().Err(err).Str("ip", sourceIP).Msg("failed to record login attempt")
	}
}
