package service

// Unit tests for the consent service.
//
// These tests enforce:
// - domain error code mapping at the service boundary
// - terms-vs-schema validation (narrowing only, required categories enforced)
// - withdrawal visibility: ActiveRecord must reflect a withdrawal immediately
// - ownership scoping: foreign consent URIs read as absent

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"github.com/learningeconomy/consentflow/internal/audit"
	"github.com/learningeconomy/consentflow/internal/consent/models"
	"github.com/learningeconomy/consentflow/internal/consent/service/mocks"
	contractmodels "github.com/learningeconomy/consentflow/internal/contract/models"
	"github.com/learningeconomy/consentflow/internal/sentinel"
	id "github.com/learningeconomy/consentflow/pkg/domain"
	dErrors "github.com/learningeconomy/consentflow/pkg/domain-errors"
)

type ServiceSuite struct {
	suite.Suite
	ctrl          *gomock.Controller
	mockStore     *mocks.MockStore
	mockContracts *mocks.MockContracts
	auditStore    *audit.InMemoryStore
	service       *Service
	profileID     id.ProfileID
	contract      *contractmodels.Contract
}

func (s *ServiceSuite) SetupTest() {
	s.ctrl = gomock.NewController(s.T())
	s.mockStore = mocks.NewMockStore(s.ctrl)
	s.mockContracts = mocks.NewMockContracts(s.ctrl)
	s.auditStore = audit.NewInMemoryStore()
	s.service = NewService(
		s.mockStore,
		s.mockContracts,
		audit.NewPublisher(s.auditStore),
		slog.New(slog.NewTextHandler(io.Discard, nil)),
		WithConsentTTL(365*24*time.Hour),
	)
	s.profileID = id.ProfileID(uuid.New())

	contract, err := contractmodels.NewContract(
		id.ContractURI("lc:network/contracts/scholarship"),
		"Scholarship Application",
		id.ProfileID(uuid.New()),
		contractmodels.AccessSchema{Categories: map[string]contractmodels.CategoryTerm{
			"Achievement": {Required: true, DefaultEnabled: true},
			"Skill":       {},
		}},
		contractmodels.AccessSchema{Categories: map[string]contractmodels.CategoryTerm{
			"ID": {},
		}},
		time.Now().Add(-time.Hour),
	)
	require.NoError(s.T(), err)
	s.contract = contract
}

func (s *ServiceSuite) TearDownTest() {
	s.ctrl.Finish()
}

func TestServiceSuite(t *testing.T) {
	suite.Run(t, new(ServiceSuite))
}

func conformingTerms() models.Terms {
	return models.Terms{
		Read: models.ReadTerms{Categories: map[string]models.CategoryShare{
			"Achievement": {Sharing: true, ShareAll: true},
		}},
		Write: models.WriteTerms{Categories: map[string]bool{"ID": true}},
	}
}

func (s *ServiceSuite) grantRequest() *models.GrantRequest {
	return &models.GrantRequest{
		ContractURI: s.contract.URI.String(),
		Terms:       conformingTerms(),
	}
}

// =============================================================================
// Grant
// =============================================================================

func (s *ServiceSuite) TestGrant_ValidationErrors() {
	s.T().Run("missing profile returns CodeUnauthorized", func(t *testing.T) {
		_, err := s.service.Grant(context.Background(), id.ProfileID{}, s.grantRequest())
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeUnauthorized))
	})

	s.T().Run("missing contract URI returns CodeBadRequest", func(t *testing.T) {
		req := s.grantRequest()
		req.ContractURI = ""
		_, err := s.service.Grant(context.Background(), s.profileID, req)
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeBadRequest))
	})
}

// TestGrant_TermsMustNarrowContract verifies terms naming categories outside
// the contract schema are rejected with CodeTermsViolation.
func (s *ServiceSuite) TestGrant_TermsMustNarrowContract() {
	s.mockContracts.EXPECT().Fetch(gomock.Any(), s.contract.URI).Return(s.contract, nil)

	req := s.grantRequest()
	req.Terms.Read.Categories["Medical"] = models.CategoryShare{Sharing: true}

	_, err := s.service.Grant(context.Background(), s.profileID, req)
	require.Error(s.T(), err)
	assert.True(s.T(), dErrors.HasCode(err, dErrors.CodeTermsViolation))
	assert.Contains(s.T(), err.Error(), "Medical")
}

// TestGrant_RequiredCategoryEnforced verifies a grant that disables a
// required category is rejected.
func (s *ServiceSuite) TestGrant_RequiredCategoryEnforced() {
	s.mockContracts.EXPECT().Fetch(gomock.Any(), s.contract.URI).Return(s.contract, nil)

	req := s.grantRequest()
	req.Terms.Read.Categories["Achievement"] = models.CategoryShare{Sharing: false}

	_, err := s.service.Grant(context.Background(), s.profileID, req)
	require.Error(s.T(), err)
	assert.True(s.T(), dErrors.HasCode(err, dErrors.CodeTermsViolation))
}

// TestGrant_NewRecord verifies a fresh grant persists an active record with a
// computed expiry and emits a consent_granted audit event.
func (s *ServiceSuite) TestGrant_NewRecord() {
	s.mockContracts.EXPECT().Fetch(gomock.Any(), s.contract.URI).Return(s.contract, nil)
	s.mockStore.EXPECT().FindByProfileAndContract(gomock.Any(), s.profileID, s.contract.URI).Return(nil, sentinel.ErrNotFound)

	var saved *models.Record
	s.mockStore.EXPECT().Save(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, r *models.Record) error {
			saved = r
			return nil
		})

	record, err := s.service.Grant(context.Background(), s.profileID, s.grantRequest())
	require.NoError(s.T(), err)
	require.NotNil(s.T(), saved)
	assert.Equal(s.T(), models.StatusActive, record.Status)
	assert.Equal(s.T(), s.profileID, record.ProfileID)
	require.NotNil(s.T(), record.ExpiresAt)
	assert.True(s.T(), record.ExpiresAt.After(time.Now().Add(364*24*time.Hour)))

	events, err := s.auditStore.ListByProfile(context.Background(), s.profileID.String())
	require.NoError(s.T(), err)
	require.Len(s.T(), events, 1)
	assert.Equal(s.T(), audit.ActionConsentGranted, events[0].Action)
}

// TestGrant_OneTimeHasNoExpiry verifies one-time shares are not bounded by
// the TTL; they are consumed by use, not by the clock.
func (s *ServiceSuite) TestGrant_OneTimeHasNoExpiry() {
	s.mockContracts.EXPECT().Fetch(gomock.Any(), s.contract.URI).Return(s.contract, nil)
	s.mockStore.EXPECT().FindByProfileAndContract(gomock.Any(), s.profileID, s.contract.URI).Return(nil, sentinel.ErrNotFound)
	s.mockStore.EXPECT().Save(gomock.Any(), gomock.Any()).Return(nil)

	req := s.grantRequest()
	req.OneTime = true

	record, err := s.service.Grant(context.Background(), s.profileID, req)
	require.NoError(s.T(), err)
	assert.True(s.T(), record.OneTime)
	assert.Nil(s.T(), record.ExpiresAt)
}

// TestGrant_RefreshesExistingRecord verifies re-granting a live consent
// updates the existing record in place instead of creating a duplicate.
func (s *ServiceSuite) TestGrant_RefreshesExistingRecord() {
	existing, err := models.NewRecord(
		id.ConsentURI("lc:network/consents/existing"),
		s.contract.URI, s.profileID, conformingTerms(),
		time.Now().Add(-time.Hour), nil, false,
	)
	require.NoError(s.T(), err)

	s.mockContracts.EXPECT().Fetch(gomock.Any(), s.contract.URI).Return(s.contract, nil)
	s.mockStore.EXPECT().FindByProfileAndContract(gomock.Any(), s.profileID, s.contract.URI).Return(existing, nil)

	var updated *models.Record
	s.mockStore.EXPECT().Update(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, r *models.Record) error {
			updated = r
			return nil
		})

	record, err := s.service.Grant(context.Background(), s.profileID, s.grantRequest())
	require.NoError(s.T(), err)
	require.NotNil(s.T(), updated)
	assert.Equal(s.T(), existing.URI, record.URI, "grant must reuse the live record's URI")
	assert.Equal(s.T(), models.StatusActive, record.Status)
	assert.Nil(s.T(), record.WithdrawnAt)
}

// =============================================================================
// UpdateTerms
// =============================================================================

// TestUpdateTerms_WithdrawnRecord verifies terms of a withdrawn consent are
// frozen.
func (s *ServiceSuite) TestUpdateTerms_WithdrawnRecord() {
	withdrawnAt := time.Now().Add(-time.Minute)
	record, err := models.NewRecord(
		id.ConsentURI("lc:network/consents/w"),
		s.contract.URI, s.profileID, conformingTerms(),
		time.Now().Add(-time.Hour), nil, false,
	)
	require.NoError(s.T(), err)
	record.Status = models.StatusWithdrawn
	record.WithdrawnAt = &withdrawnAt

	s.mockStore.EXPECT().FindByURI(gomock.Any(), record.URI).Return(record, nil)

	_, err = s.service.UpdateTerms(context.Background(), s.profileID, record.URI, &models.UpdateTermsRequest{Terms: conformingTerms()})
	require.Error(s.T(), err)
	assert.True(s.T(), dErrors.HasCode(err, dErrors.CodeInvalidConsent))
}

// TestUpdateTerms_ForeignRecordReadsAsAbsent verifies ownership scoping:
// another profile's consent URI must return CodeNotFound, not CodeForbidden,
// so record existence cannot be probed.
func (s *ServiceSuite) TestUpdateTerms_ForeignRecordReadsAsAbsent() {
	other := id.ProfileID(uuid.New())
	record, err := models.NewRecord(
		id.ConsentURI("lc:network/consents/foreign"),
		s.contract.URI, other, conformingTerms(),
		time.Now().Add(-time.Hour), nil, false,
	)
	require.NoError(s.T(), err)

	s.mockStore.EXPECT().FindByURI(gomock.Any(), record.URI).Return(record, nil)

	_, err = s.service.UpdateTerms(context.Background(), s.profileID, record.URI, &models.UpdateTermsRequest{Terms: conformingTerms()})
	require.Error(s.T(), err)
	assert.True(s.T(), dErrors.HasCode(err, dErrors.CodeNotFound))
}

// TestUpdateTerms_RevalidatesAgainstSchema verifies replacement terms go
// through the same schema check as a fresh grant.
func (s *ServiceSuite) TestUpdateTerms_RevalidatesAgainstSchema() {
	record, err := models.NewRecord(
		id.ConsentURI("lc:network/consents/u"),
		s.contract.URI, s.profileID, conformingTerms(),
		time.Now().Add(-time.Hour), nil, false,
	)
	require.NoError(s.T(), err)

	s.mockStore.EXPECT().FindByURI(gomock.Any(), record.URI).Return(record, nil)
	s.mockContracts.EXPECT().Fetch(gomock.Any(), s.contract.URI).Return(s.contract, nil)

	bad := conformingTerms()
	bad.Write.Categories["Unknown"] = true

	_, err = s.service.UpdateTerms(context.Background(), s.profileID, record.URI, &models.UpdateTermsRequest{Terms: bad})
	require.Error(s.T(), err)
	assert.True(s.T(), dErrors.HasCode(err, dErrors.CodeTermsViolation))
}

// =============================================================================
// Withdraw / ActiveRecord
// =============================================================================

// TestWithdraw_Idempotent verifies withdrawing twice is a no-op the second
// time, with no extra audit event.
func (s *ServiceSuite) TestWithdraw_Idempotent() {
	withdrawnAt := time.Now().Add(-time.Minute)
	record, err := models.NewRecord(
		id.ConsentURI("lc:network/consents/done"),
		s.contract.URI, s.profileID, conformingTerms(),
		time.Now().Add(-time.Hour), nil, false,
	)
	require.NoError(s.T(), err)
	record.Status = models.StatusWithdrawn
	record.WithdrawnAt = &withdrawnAt

	s.mockStore.EXPECT().FindByURI(gomock.Any(), record.URI).Return(record, nil)

	got, err := s.service.Withdraw(context.Background(), s.profileID, record.URI)
	require.NoError(s.T(), err)
	assert.True(s.T(), got.IsWithdrawn())

	events, err := s.auditStore.ListByProfile(context.Background(), s.profileID.String())
	require.NoError(s.T(), err)
	assert.Empty(s.T(), events, "no audit event expected for idempotent withdraw")
}

// TestActiveRecord_WithdrawnIsNil verifies a withdrawn record never counts as
// consent: standing is derived from the record, not cached.
func (s *ServiceSuite) TestActiveRecord_WithdrawnIsNil() {
	withdrawnAt := time.Now()
	record, err := models.NewRecord(
		id.ConsentURI("lc:network/consents/x"),
		s.contract.URI, s.profileID, conformingTerms(),
		time.Now().Add(-time.Hour), nil, false,
	)
	require.NoError(s.T(), err)
	record.Status = models.StatusWithdrawn
	record.WithdrawnAt = &withdrawnAt

	s.mockStore.EXPECT().FindByProfileAndContract(gomock.Any(), s.profileID, s.contract.URI).Return(record, nil)

	got, err := s.service.ActiveRecord(context.Background(), s.profileID, s.contract.URI)
	require.NoError(s.T(), err)
	assert.Nil(s.T(), got)
}

// TestActiveRecord_ExpiredIsNil verifies expiry is enforced at read time.
func (s *ServiceSuite) TestActiveRecord_ExpiredIsNil() {
	expiry := time.Now().Add(-time.Minute)
	record, err := models.NewRecord(
		id.ConsentURI("lc:network/consents/old"),
		s.contract.URI, s.profileID, conformingTerms(),
		time.Now().Add(-time.Hour), &expiry, false,
	)
	require.NoError(s.T(), err)

	s.mockStore.EXPECT().FindByProfileAndContract(gomock.Any(), s.profileID, s.contract.URI).Return(record, nil)

	got, err := s.service.ActiveRecord(context.Background(), s.profileID, s.contract.URI)
	require.NoError(s.T(), err)
	assert.Nil(s.T(), got)
}

// TestActiveRecord_MissingIsNilNotError verifies absence of consent is a
// normal answer, not an error.
func (s *ServiceSuite) TestActiveRecord_MissingIsNilNotError() {
	s.mockStore.EXPECT().FindByProfileAndContract(gomock.Any(), s.profileID, s.contract.URI).Return(nil, sentinel.ErrNotFound)

	got, err := s.service.ActiveRecord(context.Background(), s.profileID, s.contract.URI)
	require.NoError(s.T(), err)
	assert.Nil(s.T(), got)
}

// =============================================================================
// Contact verification
// =============================================================================

type recordingVerifier struct {
	contacts []string
}

func (v *recordingVerifier) AutoVerify(_ context.Context, _ id.ProfileID, contact string) bool {
	v.contacts = append(v.contacts, contact)
	return true
}

// TestGrant_AutoVerifiesSharedContacts verifies a grant that shares contact
// fields dispatches verification for exactly those fields.
func (s *ServiceSuite) TestGrant_AutoVerifiesSharedContacts() {
	verifier := &recordingVerifier{}
	svc := NewService(
		s.mockStore,
		s.mockContracts,
		audit.NewPublisher(s.auditStore),
		slog.New(slog.NewTextHandler(io.Discard, nil)),
		WithVerifier(verifier),
	)

	s.mockContracts.EXPECT().Fetch(gomock.Any(), s.contract.URI).Return(s.contract, nil)
	s.mockStore.EXPECT().FindByProfileAndContract(gomock.Any(), s.profileID, s.contract.URI).Return(nil, sentinel.ErrNotFound)
	s.mockStore.EXPECT().Save(gomock.Any(), gomock.Any()).Return(nil)

	req := s.grantRequest()
	req.Terms.Read.Personal = map[string]string{
		"Email":       "learner@example.com",
		"PhoneNumber": "+15550100",
		"Name":        "Sam Learner",
	}

	_, err := svc.Grant(context.Background(), s.profileID, req)
	require.NoError(s.T(), err)
	assert.ElementsMatch(s.T(), []string{"learner@example.com", "+15550100"}, verifier.contacts)
}

// TestGrant_NoVerifierConfigured verifies grants work without a verifier.
func (s *ServiceSuite) TestGrant_NoVerifierConfigured() {
	s.mockContracts.EXPECT().Fetch(gomock.Any(), s.contract.URI).Return(s.contract, nil)
	s.mockStore.EXPECT().FindByProfileAndContract(gomock.Any(), s.profileID, s.contract.URI).Return(nil, sentinel.ErrNotFound)
	s.mockStore.EXPECT().Save(gomock.Any(), gomock.Any()).Return(nil)

	req := s.grantRequest()
	req.Terms.Read.Personal = map[string]string{"Email": "learner@example.com"}

	_, err := s.service.Grant(context.Background(), s.profileID, req)
	require.NoError(s.T(), err)
}
