package mock

import (
	"context"

	"github.com/souqops/marketplace-admin/src/models"
	"github.com/souqops/marketplace-admin/src/repositories"
)

// RegistrationRepository is a mock implementation of repositories.RegistrationRepository
type RegistrationRepository struct {
	RegistrationsFunc func(ctx context.Context) ([]models.AccountRegistration, error)

	Calls map[string][]interface{}
}

// NewRegistrationRepository creates a new mock registration repository
func NewRegistrationRepository() *RegistrationRepository {
	return &RegistrationRepository{
		Calls: make(map[string][]interface{}),
	}
}

func (m *RegistrationRepository) Registrations(ctx context.Context) ([]models.AccountRegistration, error) {
	m.Calls["Registrations"] = append(m.Calls["Registrations"], nil)
	if m.RegistrationsFunc != nil {
		return m.RegistrationsFunc(ctx)
	}
	return nil, nil
}

// Ensure RegistrationRepository implements the interface
var _ repositories.RegistrationRepository = (*RegistrationRepository)(nil)
