package store

import (
	"context"

	"github.com/learningeconomy/consentflow/internal/contract/models"
	id "github.com/learningeconomy/consentflow/pkg/domain"
)

// Error Contract:
// All store methods follow this error pattern:
// - Return sentinel.ErrNotFound when the requested contract does not exist
// - Return nil for successful operations
// - Return wrapped errors with context for infrastructure failures
type Store interface {
	Save(ctx context.Context, contract *models.Contract) error
	FindByURI(ctx context.Context, uri id.ContractURI) (*models.Contract, error)
	ListByOwner(ctx context.Context, ownerID id.ProfileID) ([]*models.Contract, error)
}
