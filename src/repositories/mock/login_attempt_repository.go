package mock

import (
	"context"
	"time"

	"github.com/souqops/marketplace-admin/src/models"
	"github.com/souqops/marketplace-admin/src/repositories"
)

// LoginAttemptRepository is a mock implementation of repositories.LoginAttemptRepository
type LoginAttemptRepository struct {
	RecordFunc          func(ctx context.Context, attempt *models.LoginAttempt) error
	ListRecentFunc      func(ctx context.Context, limit int) ([]*models.LoginAttempt, error)
	ListSinceFunc       func(ctx context.Context, since time.Time) ([]*models.LoginAttempt, error)
	StatsFunc           func(ctx context.Context) (total, successful, failed int, err error)
	DeleteOlderThanFunc func(ctx context.Context, cutoff time.Time) (int64, error)

	Calls map[string][]interface{}
}

// NewLoginAttemptRepository creates a new mock login attempt repository
func NewLoginAttemptRepository() *LoginAttemptRepository {
	return &LoginAttemptRepository{
		Calls: make(map[string][]interface{}),
	}
}

func (m *LoginAttemptRepository) Record(ctx context.Context, attempt *models.LoginAttempt) error {
	m.Calls["Record"] = append(m.Calls["Record"], attempt)
	if m.RecordFunc != nil {
		return m.RecordFunc(ctx, attempt)
	}
	return nil
}

func (m *LoginAttemptRepository) ListRecent(ctx context.Context, limit int) ([]*models.LoginAttempt, error) {
	m.Calls["ListRecent"] = append(m.Calls["ListRecent"], limit)
	if m.ListRecentFunc != nil {
		return m.ListRecentFunc(ctx, limit)
	}
	return nil, nil
}

func (m *LoginAttemptRepository) ListSince(ctx context.Context, since time.Time) ([]*models.LoginAttempt, error) {
	m.Calls["ListSince"] = append(m.Calls["ListSince"], since)
	if m.ListSinceFunc != nil {
		return m.ListSinceFunc(ctx, since)
	}
	return nil, nil
}

func (m *LoginAttemptRepository) Stats(ctx context.Context) (total, successful, failed int, err error) {
	m.Calls["Stats"] = append(m.Calls["Stats"], nil)
	if m.StatsFunc != nil {
		return m.StatsFunc(ctx)
	}
	return 0, 0, 0, nil
}

func (m *LoginAttemptRepository) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	m.Calls["DeleteOlderThan"] = append(m.Calls["DeleteOlderThan"], cutoff)
	if m.DeleteOlderThanFunc != nil {
		return m.DeleteOlderThanFunc(ctx, cutoff)
	}
	return 0, nil
}

// Ensure LoginAttemptRepository implements the interface
var _ repositories.LoginAttemptRepository = (*LoginAttemptRepository)(nil)
