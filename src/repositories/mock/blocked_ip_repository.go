package mock

import (
	"context"

	"github.com/souqops/marketplace-admin/src/models"
	"github.com/souqops/marketplace-admin/src/repositories"
)

// BlockedIPRepository is a mock implementation of repositories.BlockedIPRepository
type BlockedIPRepository struct {
	UpsertFunc func(ctx context.Context, block *models.BlockedIP) error
	AllFunc    func(ctx context.Context) ([]*models.BlockedIP, error)
	CountFunc  func(ctx context.Context) (int, error)

	Calls map[string][]interface{}
}

// NewBlockedIPRepository creates a new mock blocked IP repository
func NewBlockedIPRepository() *BlockedIPRepository {
	return &BlockedIPRepository{
		Calls: make(map[string][]interface{}),
	}
}

func (m *BlockedIPRepository) Upsert(ctx context.Context, block *models.BlockedIP) error {
	m.Calls["Upsert"] = append(m.Calls["Upsert"], block)
	if m.UpsertFunc != nil {
		return m.UpsertFunc(ctx, block)
	}
	return nil
}

func (m *BlockedIPRepository) All(ctx context.Context) ([]*models.BlockedIP, error) {
	m.Calls["All"] = append(m.Calls["All"], nil)
	if m.AllFunc != nil {
		return m.AllFunc(ctx)
	}
	return nil, nil
}

func (m *BlockedIPRepository) Count(ctx context.Context) (int, error) {
	m.Calls["Count"] = append(m.Calls["Count"], nil)
	if m.CountFunc != nil {
		return m.CountFunc(ctx)
	}
	return 0, nil
}

// Ensure BlockedIPRepository implements the interface
var _ repositories.BlockedIPRepository = (*BlockedIPRepository)(nil)
