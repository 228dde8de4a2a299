// Package service implements the consent lifecycle: granting terms against a
// contract, updating them, withdrawing, and answering consent checks.
package service

//go:generate mockgen -source=service.go -destination=mocks/mocks.go -package=mocks Store,Contracts

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/learningeconomy/consentflow/internal/audit"
	"github.com/learningeconomy/consentflow/internal/consent/metrics"
	"github.com/learningeconomy/consentflow/internal/consent/models"
	contractmodels "github.com/learningeconomy/consentflow/internal/contract/models"
	"github.com/learningeconomy/consentflow/internal/sentinel"
	id "github.com/learningeconomy/consentflow/pkg/domain"
	dErrors "github.com/learningeconomy/consentflow/pkg/domain-errors"
)

// Store defines the persistence interface for consent records.
// Error Contract:
// - FindByURI and FindByProfileAndContract return sentinel.ErrNotFound when no record exists
// - Other methods return nil on success or wrapped errors on failure
type Store interface {
	Save(ctx context.Context, consent *models.Record) error
	FindByURI(ctx context.Context, uri id.ConsentURI) (*models.Record, error)
	FindByProfileAndContract(ctx context.Context, profileID id.ProfileID, contractURI id.ContractURI) (*models.Record, error)
	ListByProfile(ctx context.Context, profileID id.ProfileID) ([]*models.Record, error)
	Update(ctx context.Context, consent *models.Record) error
	WithdrawByURI(ctx context.Context, profileID id.ProfileID, uri id.ConsentURI, withdrawnAt time.Time) (*models.Record, error)
}

// Contracts resolves contract definitions so terms can be validated against
// the schema they answer.
type Contracts interface {
	Fetch(ctx context.Context, uri id.ContractURI) (*contractmodels.Contract, error)
}

// Verifier kicks off best-effort contact verification. Implementations must
// never fail the grant; the return value only reports whether a verification
// was dispatched.
type Verifier interface {
	AutoVerify(ctx context.Context, profileID id.ProfileID, contact string) bool
}

type Option func(*Service)

const defaultConsentTTL = 365 * 24 * time.Hour // 1 year

// Service persists consent decisions and enforces lifecycle rules.
type Service struct {
	store      Store
	contracts  Contracts
	auditor    *audit.Publisher
	verifier   Verifier
	metrics    *metrics.Metrics
	logger     *slog.Logger
	consentTTL time.Duration
}

func NewService(store Store, contracts Contracts, auditor *audit.Publisher, logger *slog.Logger, opts ...Option) *Service {
	svc := &Service{
		store:      store,
		contracts:  contracts,
		auditor:    auditor,
		logger:     logger,
		consentTTL: defaultConsentTTL,
	}
	for _, opt := range opts {
		opt(svc)
	}
	if svc.consentTTL <= 0 {
		svc.consentTTL = defaultConsentTTL
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

// WithVerifier enables contact auto-verification on grants that share
// personal contact fields.
func WithVerifier(v Verifier) Option {
	return func(s *Service) {
		s.verifier = v
	}
}

// WithConsentTTL configures the default time-to-live for granted consents.
// If not set or set to zero/negative, defaults to 1 year.
func WithConsentTTL(ttl time.Duration) Option {
	return func(s *Service) {
		if ttl > 0 {
			s.consentTTL = ttl
		}
	}
}

// Grant records a profile's consent to a contract under the given terms.
//
// The terms must be a lawful answer to the contract schema: unknown categories
// and disabled required categories are rejected with CodeTermsViolation. If a
// non-withdrawn record already exists for the pair, Grant refreshes it in
// place rather than creating a duplicate.
func (s *Service) Grant(ctx context.Context, profileID id.ProfileID, req *models.GrantRequest) (*models.Record, error) {
	if profileID.IsNil() {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "missing profile context")
	}
	req.Normalize()
	if err := req.Validate(); err != nil {
		return nil, dErrors.Wrap(dErrors.CodeBadRequest, "invalid grant request", err)
	}

	contractURI, err := id.ParseContractURI(req.ContractURI)
	if err != nil {
		return nil, dErrors.Wrap(dErrors.CodeInvalidInput, "invalid contract URI", err)
	}
	contract, err := s.contracts.Fetch(ctx, contractURI)
	if err != nil {
		return nil, err
	}
	if err := s.checkTerms(ctx, contract, req.Terms); err != nil {
		return nil, err
	}

	now := time.Now()
	duration := models.ShareDuration{OneTime: req.OneTime, Custom: req.Duration}
	expiry := duration.ExpiryFrom(now, s.consentTTL)

	existing, err := s.store.FindByProfileAndContract(ctx, profileID, contractURI)
	if err != nil && !errors.Is(err, sentinel.ErrNotFound) {
		return nil, dErrors.Wrap(dErrors.CodeInternal, "failed to read consent", err)
	}

	// Refresh the live record instead of stacking duplicates. History is
	// carried by the audit stream.
	if err == nil && existing != nil {
		updated := *existing
		updated.Terms = req.Terms
		updated.OneTime = req.OneTime
		updated.GrantedAt = now
		updated.UpdatedAt = now
		updated.ExpiresAt = expiry
		updated.Status = models.StatusActive
		updated.WithdrawnAt = nil
		if err := s.store.Update(ctx, &updated); err != nil {
			return nil, dErrors.Wrap(dErrors.CodeInternal, "failed to renew consent", err)
		}
		s.emitAudit(ctx, audit.Event{
			ProfileID:   profileID.String(),
			ContractURI: contractURI.String(),
			ConsentURI:  updated.URI.String(),
			Action:      audit.ActionConsentGranted,
			Decision:    audit.DecisionGranted,
			Reason:      audit.ReasonUserInitiated,
			Timestamp:   now,
		})
		s.observeGrant(req.OneTime, false)
		s.autoVerifyContacts(ctx, profileID, req.Terms)
		return &updated, nil
	}

	record, err := models.NewRecord(newConsentURI(), contractURI, profileID, req.Terms, now, expiry, req.OneTime)
	if err != nil {
		return nil, err
	}
	if err := s.store.Save(ctx, record); err != nil {
		return nil, dErrors.Wrap(dErrors.CodeInternal, "failed to save consent", err)
	}
	s.emitAudit(ctx, audit.Event{
		ProfileID:   profileID.String(),
		ContractURI: contractURI.String(),
		ConsentURI:  record.URI.String(),
		Action:      audit.ActionConsentGranted,
		Decision:    audit.DecisionGranted,
		Reason:      audit.ReasonUserInitiated,
		Timestamp:   now,
	})
	s.observeGrant(req.OneTime, true)
	s.logger.InfoContext(ctx, "consent_granted",
		"profile_id", profileID.String(),
		"contract_uri", contractURI.String(),
		"consent_uri", record.URI.String(),
		"one_time", req.OneTime,
	)
	s.autoVerifyContacts(ctx, profileID, req.Terms)
	return record, nil
}

// autoVerifyContacts dispatches verification for contact fields the grant
// shares. Best-effort only; the grant has already been persisted.
func (s *Service) autoVerifyContacts(ctx context.Context, profileID id.ProfileID, terms models.Terms) {
	if s.verifier == nil {
		return
	}
	for field, value := range terms.Read.Personal {
		if value == "" {
			continue
		}
		lower := strings.ToLower(field)
		if strings.Contains(lower, "email") || strings.Contains(lower, "phone") {
			s.verifier.AutoVerify(ctx, profileID, value)
		}
	}
}

// UpdateTerms replaces the terms of an existing consent record.
//
// The record must belong to the calling profile and must not be withdrawn.
// New terms are validated against the contract schema just like a fresh grant.
func (s *Service) UpdateTerms(ctx context.Context, profileID id.ProfileID, uri id.ConsentURI, req *models.UpdateTermsRequest) (*models.Record, error) {
	if profileID.IsNil() {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "missing profile context")
	}
	if uri.IsEmpty() {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "consent URI must not be empty")
	}
	req.Normalize()
	if err := req.Validate(); err != nil {
		return nil, dErrors.Wrap(dErrors.CodeBadRequest, "invalid terms request", err)
	}

	record, err := s.store.FindByURI(ctx, uri)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, fmt.Sprintf("consent not found: %s", uri))
		}
		return nil, dErrors.Wrap(dErrors.CodeInternal, "failed to read consent", err)
	}
	if record.ProfileID != profileID {
		// Ownership mismatch reads as absence so consent URIs can't be probed.
		return nil, dErrors.New(dErrors.CodeNotFound, fmt.Sprintf("consent not found: %s", uri))
	}
	if record.IsWithdrawn() {
		return nil, dErrors.New(dErrors.CodeInvalidConsent, "cannot update terms of withdrawn consent")
	}

	contract, err := s.contracts.Fetch(ctx, record.ContractURI)
	if err != nil {
		return nil, err
	}
	if err := s.checkTerms(ctx, contract, req.Terms); err != nil {
		return nil, err
	}

	now := time.Now()
	record.Terms = req.Terms
	record.UpdatedAt = now
	if err := s.store.Update(ctx, record); err != nil {
		return nil, dErrors.Wrap(dErrors.CodeInternal, "failed to update terms", err)
	}
	s.emitAudit(ctx, audit.Event{
		ProfileID:   profileID.String(),
		ContractURI: record.ContractURI.String(),
		ConsentURI:  record.URI.String(),
		Action:      audit.ActionTermsUpdated,
		Decision:    audit.DecisionGranted,
		Reason:      audit.ReasonUserInitiated,
		Timestamp:   now,
	})
	if s.metrics != nil {
		s.metrics.IncrementTermsUpdates()
	}
	return record, nil
}

// Withdraw revokes a consent record. Withdrawing an already-withdrawn record
// is a no-op that returns the record unchanged.
func (s *Service) Withdraw(ctx context.Context, profileID id.ProfileID, uri id.ConsentURI) (*models.Record, error) {
	if profileID.IsNil() {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "missing profile context")
	}
	if uri.IsEmpty() {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "consent URI must not be empty")
	}

	existing, err := s.store.FindByURI(ctx, uri)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, fmt.Sprintf("consent not found: %s", uri))
		}
		return nil, dErrors.Wrap(dErrors.CodeInternal, "failed to read consent", err)
	}
	if existing.ProfileID != profileID {
		return nil, dErrors.New(dErrors.CodeNotFound, fmt.Sprintf("consent not found: %s", uri))
	}
	if existing.IsWithdrawn() {
		return existing, nil
	}

	now := time.Now()
	record, err := s.store.WithdrawByURI(ctx, profileID, uri, now)
	if err != nil {
		return nil, dErrors.Wrap(dErrors.CodeInternal, "failed to withdraw consent", err)
	}
	s.emitAudit(ctx, audit.Event{
		ProfileID:   profileID.String(),
		ContractURI: record.ContractURI.String(),
		ConsentURI:  record.URI.String(),
		Action:      audit.ActionConsentWithdrawn,
		Decision:    audit.DecisionWithdrawn,
		Reason:      audit.ReasonUserInitiated,
		Timestamp:   now,
	})
	if s.metrics != nil {
		s.metrics.IncrementWithdrawals()
		s.metrics.DecrementActiveConsents()
	}
	s.logger.InfoContext(ctx, "consent_withdrawn",
		"profile_id", profileID.String(),
		"consent_uri", uri.String(),
	)
	return record, nil
}

// List returns all consent records for a profile with derived statuses.
func (s *Service) List(ctx context.Context, profileID id.ProfileID) (*models.ListResponse, error) {
	if profileID.IsNil() {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "missing profile context")
	}

	records, err := s.store.ListByProfile(ctx, profileID)
	if err != nil {
		return nil, dErrors.Wrap(dErrors.CodeInternal, "failed to list consents", err)
	}

	now := time.Now()
	var result []*models.ConsentWithStatus
	for _, record := range records {
		result = append(result, &models.ConsentWithStatus{
			URI:         record.URI.String(),
			ContractURI: record.ContractURI.String(),
			Terms:       record.Terms,
			Status:      record.ComputeStatus(now),
			OneTime:     record.OneTime,
			GrantedAt:   record.GrantedAt,
			UpdatedAt:   record.UpdatedAt,
			ExpiresAt:   record.ExpiresAt,
			WithdrawnAt: record.WithdrawnAt,
		})
	}
	return &models.ListResponse{Consents: result}, nil
}

// ActiveRecord returns the profile's live consent for the contract, or nil
// when none exists. Withdrawn and expired records never count.
//
// Consent standing is always derived from records at call time, never cached,
// so a withdrawal is visible to the very next check.
func (s *Service) ActiveRecord(ctx context.Context, profileID id.ProfileID, contractURI id.ContractURI) (*models.Record, error) {
	if profileID.IsNil() {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "missing profile context")
	}
	record, err := s.store.FindByProfileAndContract(ctx, profileID, contractURI)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, nil
		}
		return nil, dErrors.Wrap(dErrors.CodeInternal, "failed to read consent", err)
	}
	if !record.IsActive(time.Now()) {
		return nil, nil
	}
	return record, nil
}

func (s *Service) checkTerms(ctx context.Context, contract *contractmodels.Contract, terms models.Terms) error {
	violations := models.ValidateTermsAgainst(contract, terms)
	if len(violations) == 0 {
		return nil
	}
	if s.metrics != nil {
		s.metrics.IncrementTermsRejected()
	}
	msgs := make([]string, len(violations))
	for i, v := range violations {
		msgs[i] = v.String()
	}
	s.logger.WarnContext(ctx, "terms_rejected",
		"contract_uri", contract.URI.String(),
		"violations", msgs,
	)
	return dErrors.New(dErrors.CodeTermsViolation, "terms do not satisfy contract: "+strings.Join(msgs, "; "))
}

func (s *Service) emitAudit(ctx context.Context, event audit.Event) {
	if s.auditor == nil {
		return
	}
	_ = s.auditor.Emit(ctx, event)
}

func (s *Service) observeGrant(oneTime, fresh bool) {
	if s.metrics == nil {
		return
	}
	mode := "standard"
	if oneTime {
		mode = "one_time"
	}
	s.metrics.IncrementGrants(mode)
	if fresh {
		s.metrics.IncrementActiveConsents()
	}
}

func newConsentURI() id.ConsentURI {
	return id.ConsentURI(fmt.Sprintf("lc:network/consents/%s", uuid.New().String()))
}
