//go:build integration

package store_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"github.com/learningeconomy/consentflow/internal/contract/models"
	"github.com/learningeconomy/consentflow/internal/contract/store"
	"github.com/learningeconomy/consentflow/internal/sentinel"
	"github.com/learningeconomy/consentflow/pkg/testutil/containers"
	id "github.com/learningeconomy/consentflow/pkg/domain"
)

type PostgresStoreSuite struct {
	suite.Suite
	postgres *containers.PostgresContainer
	store    *store.PostgresStore
}

func TestPostgresStoreSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(PostgresStoreSuite))
}

func (s *PostgresStoreSuite) SetupSuite() {
	mgr := containers.GetManager()
	s.postgres = mgr.GetPostgres(s.T())
	s.store = store.NewPostgres(s.postgres.DB)
}

func (s *PostgresStoreSuite) SetupTest() {
	s.Require().NoError(s.postgres.TruncateTables(context.Background(), "contracts"))
}

func (s *PostgresStoreSuite) newContract(uri string) *models.Contract {
	read := models.AccessSchema{
		Categories: map[string]models.CategoryTerm{
			"Achievement": {Required: true},
			"Skill":       {},
		},
	}
	write := models.AccessSchema{
		Categories: map[string]models.CategoryTerm{"ID": {}},
	}
	contract, err := models.NewContract(
		id.ContractURI(uri), "Achievement Sync", id.ProfileID(uuid.New()),
		read, write, time.Now().UTC().Truncate(time.Millisecond),
	)
	s.Require().NoError(err)
	contract.NeedsGuardianConsent = true
	contract.RedirectURL = "https://example.com/done"
	return contract
}

func (s *PostgresStoreSuite) TestSaveAndFind() {
	ctx := context.Background()
	contract := s.newContract("lc:network/contracts/" + uuid.NewString())

	s.Require().NoError(s.store.Save(ctx, contract))

	found, err := s.store.FindByURI(ctx, contract.URI)
	s.Require().NoError(err)
	s.Equal(contract.Name, found.Name)
	s.Equal(contract.OwnerID, found.OwnerID)
	s.True(found.NeedsGuardianConsent)
	s.Equal("https://example.com/done", found.RedirectURL)

	// JSONB schemas round-trip intact.
	s.Require().Contains(found.Read.Categories, "Achievement")
	s.True(found.Read.Categories["Achievement"].Required)
	s.Contains(found.Write.Categories, "ID")
}

func (s *PostgresStoreSuite) TestFindMissing() {
	_, err := s.store.FindByURI(context.Background(), "lc:network/contracts/missing")
	s.Require().Error(err)
	s.True(errors.Is(err, sentinel.ErrNotFound))
}

func (s *PostgresStoreSuite) TestUpsertByURI() {
	ctx := context.Background()
	contract := s.newContract("lc:network/contracts/" + uuid.NewString())
	s.Require().NoError(s.store.Save(ctx, contract))

	contract.Name = "Achievement Sync v2"
	contract.NeedsGuardianConsent = false
	s.Require().NoError(s.store.Save(ctx, contract))

	found, err := s.store.FindByURI(ctx, contract.URI)
	s.Require().NoError(err)
	s.Equal("Achievement Sync v2", found.Name)
	s.False(found.NeedsGuardianConsent)
}

func (s *PostgresStoreSuite) TestListByOwner() {
	ctx := context.Background()
	owner := id.ProfileID(uuid.New())

	for i := 0; i < 3; i++ {
		contract := s.newContract("lc:network/contracts/" + uuid.NewString())
		contract.OwnerID = owner
		s.Require().NoError(s.store.Save(ctx, contract))
	}
	other := s.newContract("lc:network/contracts/" + uuid.NewString())
	s.Require().NoError(s.store.Save(ctx, other))

	listed, err := s.store.ListByOwner(ctx, owner)
	s.Require().NoError(err)
	s.Len(listed, 3)
	for _, c := range listed {
		s.Equal(owner, c.OwnerID)
	}
}

func (s *PostgresStoreSuite) TestExpiryRoundTrip() {
	ctx := context.Background()
	contract := s.newContract("lc:network/contracts/" + uuid.NewString())
	expires := time.Now().Add(24 * time.Hour).UTC().Truncate(time.Millisecond)
	contract.ExpiresAt = &expires

	s.Require().NoError(s.store.Save(ctx, contract))

	found, err := s.store.FindByURI(ctx, contract.URI)
	s.Require().NoError(err)
	s.Require().NotNil(found.ExpiresAt)
	s.WithinDuration(expires, *found.ExpiresAt, time.Second)
}
