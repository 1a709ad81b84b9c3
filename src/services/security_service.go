package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/souqops/marketplace-admin/src/models"
	"github.com/souqops/marketplace-admin/src/repositories"
)

// SecurityService owns the blocked-IP set and the login-attempt read side.
// Blocklist membership is kept in memory so the check at the front of the
// request pipeline is an O(1) map lookup; the store stays the source of
// truth and the set is loaded from it at startup (fail-closed: a load
// failure prevents startup).
type SecurityService struct {
	pool     *pgxpool.Pool
	blocks   repositories.BlockedIPRepository
	attempts repositories.LoginAttemptRepository
	audit    *AuditService

	mu      sync.RWMutex
	blocked map[string]struct{}
}

// NewSecurityService creates a new security service
func NewSecurityService(pool *pgxpool.Pool, audit *AuditService) *SecurityService {
	return &SecurityService{
		pool:    pool,
		audit:   audit,
		blocked: make(map[string]struct{}),
	}
}

// NewSecurityServiceWithRepos creates a new security service with repositories (for testing)
func NewSecurityServiceWithRepos(blocks repositories.BlockedIPRepository, attempts repositories.LoginAttemptRepository, audit *AuditService) *SecurityService {
	return &SecurityService{
		blocks:   blocks,
		attempts: attempts,
		audit:    audit,
		blocked:  make(map[string]struct{}),
	}
}

// LoadBlocklist populates the in-memory set from the store. Called once at
// startup; the process must not serve traffic if this fails.
func (s *SecurityService) LoadBlocklist(ctx context.Context) error {
	var entries []*models.BlockedIP
	var err error

	if s.blocks != nil {
		entries, err = s.blocks.All(ctx)
	} else {
		entries, err = s.allBlockedFromPool(ctx)
	}
	if err != nil {
		return fmt.Errorf("%w: could not load blocklist: %v", ErrStoreUnavailable, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.blocked = make(map[string]struct{}, len(entries))
	for _, e := range entries {
		s.blocked[e.IPAddress] = struct{}{}
	}
	return nil
}

// IsBlocked reports whether the IP is on the blocklist. O(1), safe for
// concurrent use; invoked on every inbound request before credential checks.
func (s *SecurityService) IsBlocked(ip string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.blocked[ip]
	return ok
}

// BlockIP adds an IP to the blocklist. The upsert is idempotent — blocking an
// already-blocked IP succeeds and overwrites reason/actor (last writer wins).
// Every call produces exactly one audit entry.
func (s *SecurityService) BlockIP(ctx context.Context, ip, reason, actor string) error {
	if ip == "" {
		return fmt.Errorf("%w: ip is required", ErrValidation)
	}

	block := &models.BlockedIP{
		IPAddress: ip,
		Reason:    reason,
		BlockedBy: actor,
		BlockedAt: time.Now(),
	}

	var err error
	if s.blocks != nil {
		err = s.blocks.Upsert(ctx, block)
	} else {
		_, err = s.pool.Exec(ctx, `
			INSERT INTO blocked_ips (ip_address, reason, blocked_by, blocked_at)
			VALUES ($1, $2, $3, $4)
			ON CONFLICT (ip_address) DO UPDATE SET
				reason = EXCLUDED.reason,
				blocked_by = EXCLUDED.blocked_by
		`, block.IPAddress, block.Reason, block.BlockedBy, block.BlockedAt)
	}
	if err != nil {
		return fmt.Errorf("failed to block ip: %w", err)
	}

	s.mu.Lock()
	s.blocked[ip] = struct{}{}
	s.mu.Unlock()

	s.audit.Record(actor, models.AuditActionBlockIP, models.AuditDetails{
		{Key: "ip", Value: ip},
		{Key: "reason", Value: reason},
	})
	return nil
}

// ListLoginAttempts returns recent login attempts, newest first
func (s *SecurityService) ListLoginAttempts(ctx context.Context, limit int) ([]*models.LoginAttempt, error) {
	if limit <= 0 || limit > 500 {
		limit = 200
	}

	if s.attempts != nil {
		return s.attempts.ListRecent(ctx, limit)
	}

	rows, err := s.pool.Query(ctx, `
		SELECT id, ip_address, username, success, attempted_at
		FROM login_attempts
		ORDER BY attempted_at DESC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query login attempts: %w", err)
	}
	defer rows.Close()

	var attempts []*models.LoginAttempt
	for rows.Next() {
		a := &models.LoginAttempt{}
		if err := rows.Scan(&a.ID, &a.IPAddress, &a.Username, &a.Success, &a.AttemptedAt); err != nil {
			return nil, fmt.Errorf("failed to scan login attempt: %w", err)
		}
		attempts = append(attempts, a)
	}
	return attempts, rows.Err()
}

// Stats summarizes login activity and the blocklist size
func (s *SecurityService) Stats(ctx context.Context) (*models.SecurityStats, error) {
	var total, successful, failed, blockedCount int
	var err error

	if s.attempts != nil {
		total, successful, failed, err = s.attempts.Stats(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to compute attempt stats: %w", err)
		}
		blockedCount, err = s.blocks.Count(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to count blocked ips: %w", err)
		}
	} else {
		err = s.pool.QueryRow(ctx, `
			SELECT COUNT(*),
			       COUNT(*) FILTER (WHERE success),
			       COUNT(*) FILTER (WHERE NOT success)
			FROM login_attempts
		`).Scan(&total, &successful, &failed)
		if err != nil {
			return nil, fmt.Errorf("failed to compute attempt stats: %w", err)
		}
		if err := s.pool.QueryRow(ctx, `SELECT COUNT(*) FROM blocked_ips`).Scan(&blockedCount); err != nil {
			return nil, fmt.Errorf("failed to count blocked ips: %w", err)
		}
	}

	return &models.SecurityStats{
		TotalAttempts: total,
		Successful:    successful,
		Failed:        failed,
		BlockedIPs:    blockedCount,
	}, nil
}

// PurgeOldAttempts deletes attempts older than the retention window
func (s *SecurityService) PurgeOldAttempts(ctx context.Context, retention time.Duration) (int64, error) {
	cutoff := time.Now().Add(-retention)

	if s.attempts != nil {
		return s.attempts.DeleteOlderThan(ctx, cutoff)
	}

	tag, err := s.pool.Exec(ctx, `DELETE FROM login_attempts WHERE attempted_at < $1`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to purge login attempts: %w", err)
	}
	return tag.RowsAffected(), nil
}

func (s *SecurityService) allBlockedFromPool(ctx context.Context) ([]*models.BlockedIP, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT ip_address, reason, blocked_by, blocked_at
		FROM blocked_ips
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []*models.BlockedIP
	for rows.Next() {
		b := &models.BlockedIP{}
		if err := rows.Scan(&b.IPAddress, &b.Reason, &b.BlockedBy, &b.BlockedAt); err != nil {
			return nil, err
		}
		entries = append(entries, b)
	}
	return entries, rows.Err()
}
