//go:build integration

package store_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"github.com/learningeconomy/consentflow/internal/consent/models"
	"github.com/learningeconomy/consentflow/internal/consent/store"
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
	s.Require().NoError(s.postgres.TruncateTables(context.Background(), "consents"))
}

func (s *PostgresStoreSuite) newRecord(profileID id.ProfileID, contractURI id.ContractURI, grantedAt time.Time) *models.Record {
	terms := models.Terms{
		Read: models.ReadTerms{
			Categories: map[string]models.CategoryShare{
				"Achievement": {Sharing: true, ShareAll: true},
			},
		},
		Write: models.WriteTerms{Categories: map[string]bool{"ID": true}},
	}
	record, err := models.NewRecord(
		id.ConsentURI("lc:network/consents/"+uuid.NewString()),
		contractURI, profileID, terms,
		grantedAt.UTC().Truncate(time.Millisecond), nil, false,
	)
	s.Require().NoError(err)
	return record
}

func (s *PostgresStoreSuite) TestSaveAndFind() {
	ctx := context.Background()
	record := s.newRecord(id.ProfileID(uuid.New()), "lc:network/contracts/c1", time.Now())

	s.Require().NoError(s.store.Save(ctx, record))

	found, err := s.store.FindByURI(ctx, record.URI)
	s.Require().NoError(err)
	s.Equal(record.ContractURI, found.ContractURI)
	s.Equal(record.ProfileID, found.ProfileID)
	s.Equal(models.StatusActive, found.Status)

	// Terms survive the JSONB round trip.
	s.Require().Contains(found.Terms.Read.Categories, "Achievement")
	s.True(found.Terms.Read.Categories["Achievement"].ShareAll)
	s.True(found.Terms.Write.Categories["ID"])
}

func (s *PostgresStoreSuite) TestFindByProfileAndContract_NewestNonWithdrawn() {
	ctx := context.Background()
	profileID := id.ProfileID(uuid.New())
	contractURI := id.ContractURI("lc:network/contracts/c1")

	older := s.newRecord(profileID, contractURI, time.Now().Add(-2*time.Hour))
	newer := s.newRecord(profileID, contractURI, time.Now().Add(-time.Hour))
	s.Require().NoError(s.store.Save(ctx, older))
	s.Require().NoError(s.store.Save(ctx, newer))

	found, err := s.store.FindByProfileAndContract(ctx, profileID, contractURI)
	s.Require().NoError(err)
	s.Equal(newer.URI, found.URI)

	// Withdrawing the newest exposes the older grant.
	_, err = s.store.WithdrawByURI(ctx, profileID, newer.URI, time.Now())
	s.Require().NoError(err)

	found, err = s.store.FindByProfileAndContract(ctx, profileID, contractURI)
	s.Require().NoError(err)
	s.Equal(older.URI, found.URI)
}

func (s *PostgresStoreSuite) TestWithdrawScopedToOwner() {
	ctx := context.Background()
	owner := id.ProfileID(uuid.New())
	record := s.newRecord(owner, "lc:network/contracts/c1", time.Now())
	s.Require().NoError(s.store.Save(ctx, record))

	_, err := s.store.WithdrawByURI(ctx, id.ProfileID(uuid.New()), record.URI, time.Now())
	s.True(errors.Is(err, sentinel.ErrNotFound), "foreign profile must not see the record")

	withdrawn, err := s.store.WithdrawByURI(ctx, owner, record.URI, time.Now())
	s.Require().NoError(err)
	s.NotNil(withdrawn.WithdrawnAt)
	s.Equal(models.StatusWithdrawn, withdrawn.Status)
}

func (s *PostgresStoreSuite) TestUpdateMissing() {
	ctx := context.Background()
	record := s.newRecord(id.ProfileID(uuid.New()), "lc:network/contracts/c1", time.Now())

	err := s.store.Update(ctx, record)
	s.True(errors.Is(err, sentinel.ErrNotFound))
}

func (s *PostgresStoreSuite) TestListByProfile() {
	ctx := context.Background()
	profileID := id.ProfileID(uuid.New())

	for i := 0; i < 3; i++ {
		record := s.newRecord(profileID, id.ContractURI("lc:network/contracts/"+uuid.NewString()), time.Now().Add(-time.Duration(i)*time.Hour))
		s.Require().NoError(s.store.Save(ctx, record))
	}
	other := s.newRecord(id.ProfileID(uuid.New()), "lc:network/contracts/other", time.Now())
	s.Require().NoError(s.store.Save(ctx, other))

	listed, err := s.store.ListByProfile(ctx, profileID)
	s.Require().NoError(err)
	s.Require().Len(listed, 3)
	// Newest grant first.
	for i := 1; i < len(listed); i++ {
		s.True(listed[i-1].GrantedAt.After(listed[i].GrantedAt))
	}
}
