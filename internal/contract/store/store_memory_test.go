package store

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/learningeconomy/consentflow/internal/contract/models"
	"github.com/learningeconomy/consentflow/internal/sentinel"
	id "github.com/learningeconomy/consentflow/pkg/domain"
)

func newTestContract(t *testing.T, uri string, owner id.ProfileID) *models.Contract {
	t.Helper()
	c, err := models.NewContract(
		id.ContractURI(uri),
		"Test Contract",
		owner,
		models.AccessSchema{Categories: map[string]models.CategoryTerm{"Achievement": {Required: true}}},
		models.AccessSchema{},
		time.Now(),
	)
	require.NoError(t, err)
	return c
}

func TestInMemoryStore_SaveAndFind(t *testing.T) {
	s := New()
	owner := id.ProfileID(uuid.New())
	contract := newTestContract(t, "lc:network/contracts/a", owner)

	require.NoError(t, s.Save(context.Background(), contract))

	found, err := s.FindByURI(context.Background(), contract.URI)
	require.NoError(t, err)
	assert.Equal(t, contract.URI, found.URI)
	assert.Equal(t, owner, found.OwnerID)
}

func TestInMemoryStore_FindMissing(t *testing.T) {
	s := New()
	_, err := s.FindByURI(context.Background(), id.ContractURI("lc:network/contracts/nope"))
	assert.ErrorIs(t, err, sentinel.ErrNotFound)
}

// Saved contracts must not alias caller memory: mutating the input after Save
// or the output after FindByURI must not affect stored state.
func TestInMemoryStore_DefensiveCopies(t *testing.T) {
	s := New()
	contract := newTestContract(t, "lc:network/contracts/b", id.ProfileID(uuid.New()))
	require.NoError(t, s.Save(context.Background(), contract))

	contract.Name = "changed after save"

	found, err := s.FindByURI(context.Background(), contract.URI)
	require.NoError(t, err)
	assert.Equal(t, "Test Contract", found.Name)

	found.Name = "changed after find"
	again, err := s.FindByURI(context.Background(), contract.URI)
	require.NoError(t, err)
	assert.Equal(t, "Test Contract", again.Name)
}

func TestInMemoryStore_SaveOverwritesByURI(t *testing.T) {
	s := New()
	owner := id.ProfileID(uuid.New())
	first := newTestContract(t, "lc:network/contracts/c", owner)
	require.NoError(t, s.Save(context.Background(), first))

	updated := *first
	updated.Name = "Renamed"
	require.NoError(t, s.Save(context.Background(), &updated))

	found, err := s.FindByURI(context.Background(), first.URI)
	require.NoError(t, err)
	assert.Equal(t, "Renamed", found.Name)

	owned, err := s.ListByOwner(context.Background(), owner)
	require.NoError(t, err)
	assert.Len(t, owned, 1)
}

func TestInMemoryStore_ListByOwnerFilters(t *testing.T) {
	s := New()
	ownerA := id.ProfileID(uuid.New())
	ownerB := id.ProfileID(uuid.New())
	require.NoError(t, s.Save(context.Background(), newTestContract(t, "lc:network/contracts/a1", ownerA)))
	require.NoError(t, s.Save(context.Background(), newTestContract(t, "lc:network/contracts/a2", ownerA)))
	require.NoError(t, s.Save(context.Background(), newTestContract(t, "lc:network/contracts/b1", ownerB)))

	owned, err := s.ListByOwner(context.Background(), ownerA)
	require.NoError(t, err)
	assert.Len(t, owned, 2)
}
