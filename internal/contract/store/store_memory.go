package store

import (
	"context"
	"sync"

	"github.com/learningeconomy/consentflow/internal/contract/models"
	"github.com/learningeconomy/consentflow/internal/sentinel"
	id "github.com/learningeconomy/consentflow/pkg/domain"
)

// InMemoryStore stores contracts in memory for tests and local development.
type InMemoryStore struct {
	mu        sync.RWMutex
	contracts map[id.ContractURI]*models.Contract
}

// New constructs an empty in-memory contract store.
func New() *InMemoryStore {
	return &InMemoryStore{contracts: make(map[id.ContractURI]*models.Contract)}
}

func (s *InMemoryStore) Save(_ context.Context, contract *models.Contract) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	copyContract := *contract
	s.contracts[contract.URI] = &copyContract
	return nil
}

func (s *InMemoryStore) FindByURI(_ context.Context, uri id.ContractURI) (*models.Contract, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	contract, ok := s.contracts[uri]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	copyContract := *contract
	return &copyContract, nil
}

func (s *InMemoryStore) ListByOwner(_ context.Context, ownerID id.ProfileID) ([]*models.Contract, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var owned []*models.Contract
	for _, contract := range s.contracts {
		if contract.OwnerID == ownerID {
			copyContract := *contract
			owned = append(owned, &copyContract)
		}
	}
	return owned, nil
}
