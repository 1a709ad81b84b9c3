package services

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/souqops/marketplace-admin/src/config"
	"github.com/souqops/marketplace-admin/src/models"
	"github.com/souqops/marketplace-admin/src/repositories"
)

// AnomalyService derives suspicious-activity signals from account
// registrations and login-attempt history. Both heuristics are pure read-side
// computations: nothing is mutated and every invocation recomputes from the
// store. Results are deterministically ordered (primary key descending,
// IP ascending as tiebreaker) so repeated calls over the same data agree.
type AnomalyService struct {
	pool          *pgxpool.Pool
	registrations repositories.RegistrationRepository
	attempts      repositories.LoginAttemptRepository
	policy        config.SecurityPolicy
}

// NewAnomalyService creates a new anomaly service
func NewAnomalyService(pool *pgxpool.Pool, policy config.SecurityPolicy) *AnomalyService {
	return &AnomalyService{pool: pool, policy: policy}
}

// NewAnomalyServiceWithRepos creates a new anomaly service with repositories (for testing)
func NewAnomalyServiceWithRepos(registrations repositories.RegistrationRepository, attempts repositories.LoginAttemptRepository, policy config.SecurityPolicy) *AnomalyService {
	return &AnomalyService{registrations: registrations, attempts: attempts, policy: policy}
}

// DetectSharedIPs flags source addresses that registered more distinct
// accounts than the configured threshold. Empty history yields an empty
// slice, not an error.
func (s *AnomalyService) DetectSharedIPs(ctx context.Context) ([]models.SuspiciousIP, error) {
	regs, err := s.fetchRegistrations(ctx)
	if err != nil {
		return nil, err
	}
	return groupSharedIPs(regs, s.policy.SharedIPThreshold), nil
}

// DetectFailedLoginClusters flags source addresses whose failed login
// attempts inside the trailing window reach the configured threshold.
// Successful attempts never count toward a cluster.
func (s *AnomalyService) DetectFailedLoginClusters(ctx context.Context) ([]models.FailedLoginCluster, error) {
	since := time.Now().Add(-s.policy.FailedLoginWindow)
	attempts, err := s.fetchAttemptsSince(ctx, since)
	if err != nil {
		return nil, err
	}
	return clusterFailedLogins(attempts, s.policy.FailedLoginThreshold), nil
}

// groupSharedIPs is the pure core of the shared-IP heuristic
func groupSharedIPs(regs []models.AccountRegistration, threshold int) []models.SuspiciousIP {
	if threshold < 1 {
		threshold = 1
	}

	type group struct {
		usernames []string
		emails    []string
	}
	byIP := make(map[string]*group)
	for _, r := range regs {
		if r.IPAddress == "" {
			continue
		}
		g, ok := byIP[r.IPAddress]
		if !ok {
			g = &group{}
			byIP[r.IPAddress] = g
		}
		g.usernames = append(g.usernames, r.Username)
		g.emails = append(g.emails, r.Email)
	}

	result := make([]models.SuspiciousIP, 0)
	for ip, g := range byIP {
		if len(g.usernames) <= threshold {
			continue
		}
		sort.Strings(g.usernames)
		sort.Strings(g.emails)
		result = append(result, models.SuspiciousIP{
			IPAddress:    ip,
			AccountCount: len(g.usernames),
			Usernames:    g.usernames,
			Emails:       g.emails,
		})
	}

	sort.Slice(result, func(i, j int) bool {
		if result[i].AccountCount != result[j].AccountCount {
			return result[i].AccountCount > result[j].AccountCount
		}
		return result[i].IPAddress < result[j].IPAddress
	})
	return result
}

// clusterFailedLogins is the pure core of the brute-force heuristic
func clusterFailedLogins(attempts []*models.LoginAttempt, threshold int) []models.FailedLoginCluster {
	if threshold < 1 {
		threshold = 1
	}

	type cluster struct {
		count int
		last  time.Time
	}
	byIP := make(map[string]*cluster)
	for _, a := range attempts {
		if a.Success {
			continue
		}
		c, ok := byIP[a.IPAddress]
		if !ok {
			c = &cluster{}
			byIP[a.IPAddress] = c
		}
		c.count++
		if a.AttemptedAt.After(c.last) {
			c.last = a.AttemptedAt
		}
	}

	result := make([]models.FailedLoginCluster, 0)
	for ip, c := range byIP {
		if c.count < threshold {
			continue
		}
		result = append(result, models.FailedLoginCluster{
			IPAddress:      ip,
			FailedAttempts: c.count,
			LastAttempt:    c.last,
		})
	}

	sort.Slice(result, func(i, j int) bool {
		if result[i].FailedAttempts != result[j].FailedAttempts {
			return result[i].FailedAttempts > result[j].FailedAttempts
		}
		return result[i].IPAddress < result[j].IPAddress
	})
	return result
}

func (s *AnomalyService) fetchRegistrations(ctx context.Context) ([]models.AccountRegistration, error) {
	if s.registrations != nil {
		return s.registrations.Registrations(ctx)
	}

	rows, err := s.pool.Query(ctx, `
		SELECT username, email, registration_ip, created_at
		FROM users
		WHERE registration_ip <> ''
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query registrations: %w", err)
	}
	defer rows.Close()

	var regs []models.AccountRegistration
	for rows.Next() {
		var r models.AccountRegistration
		if err := rows.Scan(&r.Username, &r.Email, &r.IPAddress, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan registration: %w", err)
		}
		regs = append(regs, r)
	}
	return regs, rows.Err()
}

func (s *AnomalyService) fetchAttemptsSince(ctx context.Context, since time.Time) ([]*models.LoginAttempt, error) {
	if s.attempts != nil {
		return s.attempts.ListSince(ctx, since)
	}

	rows, err := s.pool.Query(ctx, `
		SELECT id, ip_address, username, success, attempted_at
		FROM login_attempts
		WHERE attempted_at >= $1
	`, since)
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
