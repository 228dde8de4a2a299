package store

import (
	"context"
	"sync"
	"time"

	"github.com/learningeconomy/consentflow/internal/consent/models"
	"github.com/learningeconomy/consentflow/internal/sentinel"
	id "github.com/learningeconomy/consentflow/pkg/domain"
)

// InMemoryStore stores consent records in memory for tests and local
// development. Records are indexed by consent URI; the profile+contract
// lookup scans, which is fine at test scale.
type InMemoryStore struct {
	mu      sync.RWMutex
	records map[id.ConsentURI]*models.Record
}

// New constructs an empty in-memory consent store.
func New() *InMemoryStore {
	return &InMemoryStore{records: make(map[id.ConsentURI]*models.Record)}
}

func (s *InMemoryStore) Save(_ context.Context, consent *models.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	copyRecord := cloneRecord(consent)
	s.records[consent.URI] = copyRecord
	return nil
}

func (s *InMemoryStore) FindByURI(_ context.Context, uri id.ConsentURI) (*models.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	record, ok := s.records[uri]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return cloneRecord(record), nil
}

func (s *InMemoryStore) FindByProfileAndContract(_ context.Context, profileID id.ProfileID, contractURI id.ContractURI) (*models.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var newest *models.Record
	for _, record := range s.records {
		if record.ProfileID != profileID || record.ContractURI != contractURI {
			continue
		}
		if record.IsWithdrawn() {
			continue
		}
		if newest == nil || record.GrantedAt.After(newest.GrantedAt) {
			newest = record
		}
	}
	if newest == nil {
		return nil, sentinel.ErrNotFound
	}
	return cloneRecord(newest), nil
}

func (s *InMemoryStore) ListByProfile(_ context.Context, profileID id.ProfileID) ([]*models.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var owned []*models.Record
	for _, record := range s.records {
		if record.ProfileID == profileID {
			owned = append(owned, cloneRecord(record))
		}
	}
	return owned, nil
}

func (s *InMemoryStore) Update(_ context.Context, consent *models.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.records[consent.URI]; !ok {
		return sentinel.ErrNotFound
	}
	s.records[consent.URI] = cloneRecord(consent)
	return nil
}

func (s *InMemoryStore) WithdrawByURI(_ context.Context, profileID id.ProfileID, uri id.ConsentURI, withdrawnAt time.Time) (*models.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	record, ok := s.records[uri]
	if !ok || record.ProfileID != profileID {
		// Ownership mismatch is indistinguishable from absence on purpose.
		return nil, sentinel.ErrNotFound
	}
	record.Status = models.StatusWithdrawn
	record.WithdrawnAt = &withdrawnAt
	record.UpdatedAt = withdrawnAt
	return cloneRecord(record), nil
}

// cloneRecord deep-copies a record so callers never alias store memory.
func cloneRecord(r *models.Record) *models.Record {
	out := *r
	out.Terms = cloneTerms(r.Terms)
	return &out
}

func cloneTerms(t models.Terms) models.Terms {
	out := t
	if t.Read.Categories != nil {
		out.Read.Categories = make(map[string]models.CategoryShare, len(t.Read.Categories))
		for k, v := range t.Read.Categories {
			share := v
			share.Shared = append([]string(nil), v.Shared...)
			out.Read.Categories[k] = share
		}
	}
	if t.Read.Personal != nil {
		out.Read.Personal = make(map[string]string, len(t.Read.Personal))
		for k, v := range t.Read.Personal {
			out.Read.Personal[k] = v
		}
	}
	if t.Write.Categories != nil {
		out.Write.Categories = make(map[string]bool, len(t.Write.Categories))
		for k, v := range t.Write.Categories {
			out.Write.Categories[k] = v
		}
	}
	if t.Write.Personal != nil {
		out.Write.Personal = make(map[string]bool, len(t.Write.Personal))
		for k, v := range t.Write.Personal {
			out.Write.Personal[k] = v
		}
	}
	out.DeniedWriters = append([]string(nil), t.DeniedWriters...)
	return out
}
