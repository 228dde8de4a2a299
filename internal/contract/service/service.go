// Package service implements contract resolution with request de-duplication.
package service

//go:generate mockgen -source=service.go -destination=mocks/mocks.go -package=mocks Store

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/learningeconomy/consentflow/internal/contract/metrics"
	"github.com/learningeconomy/consentflow/internal/contract/models"
	"github.com/learningeconomy/consentflow/internal/contract/tracer"
	"github.com/learningeconomy/consentflow/internal/sentinel"
	"github.com/learningeconomy/consentflow/pkg/domain"
	dErrors "github.com/learningeconomy/consentflow/pkg/domain-errors"
)

// Store defines the persistence interface for contracts.
// Error Contract:
// - FindByURI returns sentinel.ErrNotFound when no contract exists for the URI
// - Other methods return nil on success or wrapped errors on failure
type Store interface {
	Save(ctx context.Context, contract *models.Contract) error
	FindByURI(ctx context.Context, uri domain.ContractURI) (*models.Contract, error)
	ListByOwner(ctx context.Context, ownerID domain.ProfileID) ([]*models.Contract, error)
}

type Option func(*Service)

// Service resolves contract details for the consent flow.
// Concurrent fetches for the same URI are collapsed into a single store call.
type Service struct {
	store   Store
	group   singleflight.Group
	tracer  tracer.Tracer
	metrics *metrics.Metrics
	logger  *slog.Logger
}

func NewService(store Store, logger *slog.Logger, opts ...Option) *Service {
	svc := &Service{
		store:  store,
		tracer: tracer.NewNoop(),
		logger: logger,
	}
	for _, opt := range opts {
		opt(svc)
	}
	if svc.logger == nil {
		svc.logger = slog.Default()
	}
	return svc
}

// WithMetrics sets the metrics instance for the service
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

// WithTracer sets the tracer used for contract fetch spans.
func WithTracer(t tracer.Tracer) Option {
	return func(s *Service) {
		if t != nil {
			s.tracer = t
		}
	}
}

// Fetch resolves a contract by URI.
//
// Returns CodeNotFound when no contract exists and CodeInvalidInput when the
// URI is empty. Concurrent callers requesting the same URI share one store
// round-trip; each caller receives its own copy of the result.
func (s *Service) Fetch(ctx context.Context, uri domain.ContractURI) (*models.Contract, error) {
	if uri.IsEmpty() {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "contract uri must not be empty")
	}

	ctx, span := s.tracer.Start(ctx, tracer.SpanContractFetch,
		tracer.String(tracer.AttrContractURI, uri.String()),
	)

	start := time.Now()
	v, err, shared := s.group.Do(uri.String(), func() (any, error) {
		return s.store.FindByURI(ctx, uri)
	})
	span.SetAttributes(tracer.Bool(tracer.AttrShared, shared))
	s.observeFetch(err, time.Since(start))

	if err != nil {
		span.End(err)
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, fmt.Sprintf("contract not found: %s", uri))
		}
		return nil, dErrors.Wrap(dErrors.CodeInternal, "failed to fetch contract", err)
	}
	span.End(nil)

	contract := v.(*models.Contract)
	if contract.IsExpired(time.Now()) {
		s.logger.WarnContext(ctx, "contract_expired",
			"contract_uri", uri.String(),
			"expires_at", contract.ExpiresAt,
		)
		return nil, dErrors.New(dErrors.CodeNotFound, fmt.Sprintf("contract expired: %s", uri))
	}

	// Copy so callers sharing a singleflight result can't alias each other.
	out := *contract
	return &out, nil
}

// Register stores a new or updated contract definition.
func (s *Service) Register(ctx context.Context, contract *models.Contract) error {
	if contract == nil {
		return dErrors.New(dErrors.CodeInvalidInput, "contract must not be nil")
	}
	if err := s.store.Save(ctx, contract); err != nil {
		return dErrors.Wrap(dErrors.CodeInternal, "failed to save contract", err)
	}
	s.logger.InfoContext(ctx, "contract_registered",
		"contract_uri", contract.URI.String(),
		"owner_id", contract.OwnerID.String(),
		"needs_guardian_consent", contract.NeedsGuardianConsent,
	)
	return nil
}

// ListByOwner returns all contracts owned by the given profile.
func (s *Service) ListByOwner(ctx context.Context, ownerID domain.ProfileID) ([]*models.Contract, error) {
	if ownerID.IsNil() {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "missing profile context")
	}

	ctx, span := s.tracer.Start(ctx, tracer.SpanContractList)
	contracts, err := s.store.ListByOwner(ctx, ownerID)
	span.End(err)
	if err != nil {
		return nil, dErrors.Wrap(dErrors.CodeInternal, "failed to list contracts", err)
	}
	return contracts, nil
}

func (s *Service) observeFetch(err error, elapsed time.Duration) {
	if s.metrics == nil {
		return
	}
	outcome := "ok"
	switch {
	case err == nil:
	case errors.Is(err, sentinel.ErrNotFound):
		outcome = "not_found"
	default:
		outcome = "error"
	}
	s.metrics.IncrementFetches(outcome)
	s.metrics.ObserveFetchLatency(elapsed)
}
