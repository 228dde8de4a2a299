package service

// Unit tests for the contract service.
//
// These tests enforce the service error contract (sentinel -> domain error code
// mapping), expiry handling, and singleflight de-duplication of concurrent
// fetches. Happy-path persistence behavior is covered by the store tests and
// the integration suite.

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"github.com/learningeconomy/consentflow/internal/contract/models"
	"github.com/learningeconomy/consentflow/internal/contract/service/mocks"
	"github.com/learningeconomy/consentflow/internal/sentinel"
	"github.com/learningeconomy/consentflow/pkg/domain"
	dErrors "github.com/learningeconomy/consentflow/pkg/domain-errors"
)

type ServiceSuite struct {
	suite.Suite
	ctrl      *gomock.Controller
	mockStore *mocks.MockStore
	service   *Service
}

func (s *ServiceSuite) SetupTest() {
	s.ctrl = gomock.NewController(s.T())
	s.mockStore = mocks.NewMockStore(s.ctrl)
	s.service = NewService(
		s.mockStore,
		slog.New(slog.NewTextHandler(io.Discard, nil)),
	)
}

func (s *ServiceSuite) TearDownTest() {
	s.ctrl.Finish()
}

func TestServiceSuite(t *testing.T) {
	suite.Run(t, new(ServiceSuite))
}

func testContract(uri string) *models.Contract {
	c, err := models.NewContract(
		domain.ContractURI(uri),
		"Scholarship Application",
		domain.ProfileID(uuid.New()),
		models.AccessSchema{Categories: map[string]models.CategoryTerm{
			"Achievement": {Required: true, DefaultEnabled: true},
		}},
		models.AccessSchema{Categories: map[string]models.CategoryTerm{
			"ID": {},
		}},
		time.Now().Add(-time.Hour),
	)
	if err != nil {
		panic(err)
	}
	return c
}

// TestFetch_EmptyURI verifies the service rejects blank URIs before touching
// the store. Invariant: an empty URI maps to CodeInvalidInput.
func (s *ServiceSuite) TestFetch_EmptyURI() {
	_, err := s.service.Fetch(context.Background(), domain.ContractURI(""))
	require.Error(s.T(), err)
	assert.True(s.T(), dErrors.HasCode(err, dErrors.CodeInvalidInput))
}

// TestFetch_NotFoundMapping verifies sentinel.ErrNotFound from the store is
// mapped to CodeNotFound at the service boundary.
func (s *ServiceSuite) TestFetch_NotFoundMapping() {
	uri := domain.ContractURI("lc:network/contracts/missing")
	s.mockStore.EXPECT().FindByURI(gomock.Any(), uri).Return(nil, sentinel.ErrNotFound)

	_, err := s.service.Fetch(context.Background(), uri)
	require.Error(s.T(), err)
	assert.True(s.T(), dErrors.HasCode(err, dErrors.CodeNotFound))
}

// TestFetch_StoreFailureMapping verifies unexpected store errors surface as
// CodeInternal with the cause preserved for errors.Is.
func (s *ServiceSuite) TestFetch_StoreFailureMapping() {
	uri := domain.ContractURI("lc:network/contracts/broken")
	cause := errors.New("connection reset")
	s.mockStore.EXPECT().FindByURI(gomock.Any(), uri).Return(nil, cause)

	_, err := s.service.Fetch(context.Background(), uri)
	require.Error(s.T(), err)
	assert.True(s.T(), dErrors.HasCode(err, dErrors.CodeInternal))
	assert.True(s.T(), errors.Is(err, cause))
}

// TestFetch_ExpiredContract verifies a lapsed contract is treated as not
// found: the resolver must not present a consent flow for a dead contract.
func (s *ServiceSuite) TestFetch_ExpiredContract() {
	uri := domain.ContractURI("lc:network/contracts/expired")
	contract := testContract(string(uri))
	past := time.Now().Add(-24 * time.Hour)
	contract.ExpiresAt = &past
	s.mockStore.EXPECT().FindByURI(gomock.Any(), uri).Return(contract, nil)

	_, err := s.service.Fetch(context.Background(), uri)
	require.Error(s.T(), err)
	assert.True(s.T(), dErrors.HasCode(err, dErrors.CodeNotFound))
}

// TestFetch_ReturnsCopy verifies callers cannot mutate each other's result
// through the shared singleflight value.
func (s *ServiceSuite) TestFetch_ReturnsCopy() {
	uri := domain.ContractURI("lc:network/contracts/copy")
	contract := testContract(string(uri))
	s.mockStore.EXPECT().FindByURI(gomock.Any(), uri).Return(contract, nil).Times(2)

	first, err := s.service.Fetch(context.Background(), uri)
	require.NoError(s.T(), err)
	first.Name = "mutated"

	second, err := s.service.Fetch(context.Background(), uri)
	require.NoError(s.T(), err)
	assert.Equal(s.T(), "Scholarship Application", second.Name)
}

// TestFetch_Singleflight verifies concurrent fetches for one URI collapse
// into a single store call while every caller still receives the contract.
func TestFetch_Singleflight(t *testing.T) {
	uri := domain.ContractURI("lc:network/contracts/hot")
	contract := testContract(string(uri))

	var calls atomic.Int64
	release := make(chan struct{})
	store := &slowStore{
		find: func(ctx context.Context, u domain.ContractURI) (*models.Contract, error) {
			calls.Add(1)
			<-release
			return contract, nil
		},
	}
	svc := NewService(store, slog.New(slog.NewTextHandler(io.Discard, nil)))

	const workers = 8
	var wg sync.WaitGroup
	results := make([]*models.Contract, workers)
	errs := make([]error, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], errs[i] = svc.Fetch(context.Background(), uri)
		}(i)
	}

	// Give every goroutine a chance to join the in-flight call.
	time.Sleep(50 * time.Millisecond)
	close(release)
	wg.Wait()

	assert.Equal(t, int64(1), calls.Load(), "concurrent fetches must share one store call")
	for i := 0; i < workers; i++ {
		require.NoError(t, errs[i])
		assert.Equal(t, uri, results[i].URI)
	}
}

// TestRegister_NilContract verifies the invariant check on Register.
func (s *ServiceSuite) TestRegister_NilContract() {
	err := s.service.Register(context.Background(), nil)
	require.Error(s.T(), err)
	assert.True(s.T(), dErrors.HasCode(err, dErrors.CodeInvalidInput))
}

// TestListByOwner_MissingProfile verifies the auth guard on ListByOwner.
func (s *ServiceSuite) TestListByOwner_MissingProfile() {
	_, err := s.service.ListByOwner(context.Background(), domain.ProfileID{})
	require.Error(s.T(), err)
	assert.True(s.T(), dErrors.HasCode(err, dErrors.CodeUnauthorized))
}

type slowStore struct {
	find func(context.Context, domain.ContractURI) (*models.Contract, error)
}

func (s *slowStore) Save(context.Context, *models.Contract) error { return nil }

func (s *slowStore) FindByURI(ctx context.Context, uri domain.ContractURI) (*models.Contract, error) {
	return s.find(ctx, uri)
}

func (s *slowStore) ListByOwner(context.Context, domain.ProfileID) ([]*models.Contract, error) {
	return nil, nil
}
