package mock

import (
	"context"

	"github.com/souqops/marketplace-admin/src/models"
	"github.com/souqops/marketplace-admin/src/repositories"
)

// AuditRepository is a mock implementation of repositories.AuditRepository
type AuditRepository struct {
	InsertFunc func(ctx context.Context, entry *models.AuditEntry) error
	ListFunc   func(ctx context.Context, limit, offset int) ([]*models.AuditEntry, error)

	Calls map[string][]interface{}
}

// NewAuditRepository creates a new mock audit repository
func NewAuditRepository() *AuditRepository {
	return &AuditRepository{
		Calls: make(map[string][]interface{}),
	}
}

func (m *AuditRepository) Insert(ctx context.Context, entry *models.AuditEntry) error {
	m.Calls["Insert"] = append(m.Calls["Insert"], entry)
	if m.InsertFunc != nil {
		return m.InsertFunc(ctx, entry)
	}
	return nil
}

func (m *AuditRepository) List(ctx context.Context, limit, offset int) ([]*models.AuditEntry, error) {
	m.Calls["List"] = append(m.Calls["List"], limit)
	if m.ListFunc != nil {
		return m.ListFunc(ctx, limit, offset)
	}
	return nil, nil
}

// Ensure AuditRepository implements the interface
var _ repositories.AuditRepository = (*AuditRepository)(nil)
