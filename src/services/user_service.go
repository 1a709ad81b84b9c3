package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/souqops/marketplace-admin/src/models"
)

// UserService manages marketplace accounts and upgrade requests through the
// back office. Every mutation records exactly one audit entry.
type UserService struct {
	pool  *pgxpool.Pool
	audit *AuditService
}

// NewUserService creates a new user service
func NewUserService(pool *pgxpool.Pool, audit *AuditService) *UserService {
	return &UserService{pool: pool, audit: audit}
}

// ListUsers returns marketplace users, newest first, paginated
func (us *UserService) ListUsers(ctx context.Context, limit, offset int) ([]*models.User, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}

	rows, err := us.pool.Query(ctx, `
		SELECT id, username, email, role, is_active, registration_ip, created_at
		FROM users
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2
	`, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	defer rows.Close()

	var users []*models.User
	for rows.Next() {
		u := &models.User{}
		if err := rows.Scan(&u.ID, &u.Username, &u.Email, &u.Role, &u.IsActive, &u.RegistrationIP, &u.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

// UpdateUser changes a user's role and/or active flag
func (us *UserService) UpdateUser(ctx context.Context, userID uuid.UUID, role string, active bool, actor string) error {
	tag, err := us.pool.Exec(ctx, `
		UPDATE users SET role = $1, is_active = $2 WHERE id = $3
	`, role, active, userID)
	if err != nil {
		return fmt.Errorf("failed to update user: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}

	us.audit.Record(actor, models.AuditActionUpdateUser, models.AuditDetails{
		{Key: "user_id", Value: userID.String()},
		{Key: "role", Value: role},
		{Key: "active", Value: fmt.Sprintf("%t", active)},
	})
	return nil
}

// DeleteUser removes a marketplace account
func (us *UserService) DeleteUser(ctx context.Context, userID uuid.UUID, actor string) error {
	tag, err := us.pool.Exec(ctx, `DELETE FROM users WHERE id = $1`, userID)
	if err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}

	us.audit.Record(actor, models.AuditActionDeleteUser, models.AuditDetails{
		{Key: "user_id", Value: userID.String()},
	})
	return nil
}

// ListUpgradeRequests returns upgrade requests with the given status, oldest
// first so the queue is worked in arrival order
func (us *UserService) ListUpgradeRequests(ctx context.Context, status string) ([]*models.UpgradeRequest, error) {
	if status == "" {
		status = models.RequestStatusPending
	}

	rows, err := us.pool.Query(ctx, `
		SELECT r.id, r.user_id, u.username, r.requested_role, r.status, r.created_at, r.decided_at, COALESCE(r.decided_by, '')
		FROM upgrade_requests r
		JOIN users u ON u.id = r.user_id
		WHERE r.status = $1
		ORDER BY r.created_at ASC
	`, status)
	if err != nil {
		return nil, fmt.Errorf("failed to list upgrade requests: %w", err)
	}
	defer rows.Close()

	var requests []*models.UpgradeRequest
	for rows.Next() {
		r := &models.UpgradeRequest{}
		if err := rows.Scan(&r.ID, &r.UserID, &r.Username, &r.RequestedRole, &r.Status, &r.CreatedAt, &r.DecidedAt, &r.DecidedBy); err != nil {
			return nil, fmt.Errorf("failed to scan upgrade request: %w", err)
		}
		requests = append(requests, r)
	}
	return requests, rows.Err()
}

// DecideUpgradeRequest approves or rejects a pending upgrade request. An
// approval also applies the requested role to the user, in one transaction.
func (us *UserService) DecideUpgradeRequest(ctx context.Context, requestID uuid.UUID, approve bool, actor string) error {
	tx, err := us.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var userID uuid.UUID
	var requestedRole string
	err = tx.QueryRow(ctx, `
		SELECT user_id, requested_role FROM upgrade_requests
		WHERE id = $1 AND status = $2
		FOR UPDATE
	`, requestID, models.RequestStatusPending).Scan(&userID, &requestedRole)
	if err != nil {
		return ErrNotFound
	}

	status := models.RequestStatusRejected
	action := models.AuditActionRejectUpgrade
	if approve {
		status = models.RequestStatusApproved
		action = models.AuditActionApproveUpgrade
		if _, err := tx.Exec(ctx, `UPDATE users SET role = $1 WHERE id = $2`, requestedRole, userID); err != nil {
			return fmt.Errorf("failed to apply role: %w", err)
		}
	}

	now := time.Now()
	if _, err := tx.Exec(ctx, `
		UPDATE upgrade_requests SET status = $1, decided_at = $2, decided_by = $3 WHERE id = $4
	`, status, now, actor, requestID); err != nil {
		return fmt.Errorf("failed to update upgrade request: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit decision: %w", err)
	}

	us.audit.Record(actor, action, models.AuditDetails{
		{Key: "request_id", Value: requestID.String()},
		{Key: "user_id", Value: userID.String()},
		{Key: "requested_role", Value: requestedRole},
	})
	return nil
}

// DashboardStats aggregates entity counts for the console landing page
type DashboardStats struct {
	TotalUsers      int       `json:"total_users"`
	TotalProviders  int       `json:"total_providers"`
	TotalMedia      int       `json:"total_media"`
	NewUsers24h     int       `json:"new_users_24h"`
	PendingUpgrades int       `json:"pending_upgrades"`
	Timestamp       time.Time `json:"timestamp"`
}

// GetDashboardStats computes the console landing-page counters
func (us *UserService) GetDashboardStats(ctx context.Context) (*DashboardStats, error) {
	stats := &DashboardStats{Timestamp: time.Now()}

	err := us.pool.QueryRow(ctx, `
		SELECT COUNT(*),
		       COUNT(*) FILTER (WHERE role = 'provider'),
		       COUNT(*) FILTER (WHERE role = 'media'),
		       COUNT(*) FILTER (WHERE created_at > NOW() - INTERVAL '24 hours')
		FROM users
	`).Scan(&stats.TotalUsers, &stats.TotalProviders, &stats.TotalMedia, &stats.NewUsers24h)
	if err != nil {
		return nil, fmt.Errorf("failed to compute user stats: %w", err)
	}

	err = us.pool.QueryRow(ctx, `
		SELECT COUNT(*) FROM upgrade_requests WHERE status = 'pending'
	`).Scan(&stats.PendingUpgrades)
	if err != nil {
		return nil, fmt.Errorf("failed to count pending upgrades: %w", err)
	}

	return stats, nil
}
