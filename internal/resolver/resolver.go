// Package resolver decides which consent flow to present for a contract,
// given the profile's consent history.
//
// The decision table, evaluated top to bottom, first match wins:
//
//	needsGuardianConsent AND not consented  -> guardian flow (full-screen)
//	contract resolved (any other case)      -> standard flow, post-consent iff consented
//	contract unresolved                     -> no flow; log and return (fail-soft)
//
// Guardian consent strictly overrides prior consent state on the not-consented
// side: a guardian-gated contract must never show the standard adult consent
// UI to a minor account, because the guardian flow re-verifies consent
// freshness itself.
package resolver

import (
	"context"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/learningeconomy/consentflow/internal/audit"
	consentmodels "github.com/learningeconomy/consentflow/internal/consent/models"
	"github.com/learningeconomy/consentflow/internal/policy"
	"github.com/learningeconomy/consentflow/internal/resolver/metrics"
	id "github.com/learningeconomy/consentflow/pkg/domain"
	dErrors "github.com/learningeconomy/consentflow/pkg/domain-errors"
)

type Option func(*Resolver)

// Resolver is the consent flow decision engine. One Resolver serves all
// profiles; the only per-call state is the resolution itself, except for the
// terms-update in-flight flag which is owned by the Resolver instance.
type Resolver struct {
	contracts ContractSource
	consents  ConsentSource
	presenter Presenter
	auditor   *audit.Publisher
	metrics   *metrics.Metrics
	logger    *slog.Logger

	// updatingTerms is a locally-owned in-flight indicator for UpdateTerms.
	// Downstream pending signals are not trusted; this flag is set before the
	// mutation and cleared on every exit path.
	updatingTerms atomic.Bool
}

func New(contracts ContractSource, consents ConsentSource, presenter Presenter, logger *slog.Logger, opts ...Option) *Resolver {
	r := &Resolver{
		contracts: contracts,
		consents:  consents,
		presenter: presenter,
		logger:    logger,
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.logger == nil {
		r.logger = slog.Default()
	}
	return r
}

// WithMetrics sets the metrics instance for the resolver
func WithMetrics(m *metrics.Metrics) Option {
	return func(r *Resolver) {
		r.metrics = m
	}
}

// WithAuditor sets the audit publisher for flow decisions.
func WithAuditor(a *audit.Publisher) Option {
	return func(r *Resolver) {
		r.auditor = a
	}
}

// Resolve computes the consent standing for a contract.
//
// When req.Contract is supplied the fetch is skipped entirely. When neither a
// contract nor a resolvable URI is available, Resolve returns a Resolution
// with a nil Contract rather than an error; downstream actions treat that as
// a no-op.
//
// HasConsented is recomputed from the consent store on every call. It is
// true iff a non-withdrawn live record matches the contract URI.
func (r *Resolver) Resolve(ctx context.Context, profileID id.ProfileID, req ResolveRequest) (*Resolution, error) {
	contract := req.Contract
	if contract == nil && !req.ContractURI.IsEmpty() {
		fetched, err := r.contracts.Fetch(ctx, req.ContractURI)
		switch {
		case err == nil:
			contract = fetched
		case dErrors.HasCode(err, dErrors.CodeNotFound):
			// Unresolved contract is a supported state, not an error.
			r.logger.WarnContext(ctx, "contract_unresolved",
				"contract_uri", req.ContractURI.String(),
			)
		default:
			return nil, err
		}
	}

	resolution := &Resolution{Contract: contract}
	if contract == nil {
		return resolution, nil
	}

	record, err := r.consents.ActiveRecord(ctx, profileID, contract.URI)
	if err != nil {
		return nil, err
	}
	resolution.HasConsented = record != nil
	resolution.Consented = record
	return resolution, nil
}

// OpenConsentFlow resolves the contract and presents exactly one flow.
//
// A missing contract is handled as a logged no-op, never a failure: deep
// links race contract propagation and the user pressing a dead button beats
// the app crashing. Presenter failures do propagate; they are abnormal.
func (r *Resolver) OpenConsentFlow(ctx context.Context, profileID id.ProfileID, req ResolveRequest, opts OpenOptions) (*Outcome, error) {
	resolution, err := r.Resolve(ctx, profileID, req)
	if err != nil {
		return nil, err
	}

	if resolution.Contract == nil {
		r.logger.WarnContext(ctx, "consent_flow_skipped",
			"reason", "contract_unresolved",
			"contract_uri", req.ContractURI.String(),
			"profile_id", profileID.String(),
		)
		if r.metrics != nil {
			r.metrics.IncrementNoops()
		}
		return &Outcome{Presented: false}, nil
	}

	contract := resolution.Contract
	presentation := Presentation{
		Contract:          contract,
		HideProfileButton: opts.HideProfileButton,
		App:               opts.App,
	}

	// A guardian gate marks the contract as a minor-context action; route it
	// like a child profile with the current consent standing.
	needsGuardian := contract.NeedsGuardianConsent &&
		policy.Route(id.ProfileTypeChild, resolution.HasConsented, false) == policy.ActGuardianPermission

	if needsGuardian {
		presentation.Kind = FlowGuardian
		presentation.FullScreen = true
	} else {
		presentation.Kind = FlowStandard
		presentation.IsPostConsent = resolution.HasConsented
		if resolution.Consented != nil {
			presentation.ConsentedURI = resolution.Consented.URI
		}
	}

	if err := r.presenter.Present(ctx, presentation); err != nil {
		return nil, dErrors.Wrap(dErrors.CodeInternal, "failed to present consent flow", err)
	}

	r.recordPresentation(ctx, profileID, contract.URI, presentation)
	return &Outcome{Presented: true, Kind: presentation.Kind}, nil
}

// UpdateTerms mutates previously granted consent terms.
//
// The in-flight flag is set for exactly the duration of the call and cleared
// on both success and failure, so observers never see a stuck pending state.
// The underlying error propagates to the caller after the flag is cleared.
func (r *Resolver) UpdateTerms(ctx context.Context, profileID id.ProfileID, uri id.ConsentURI, req *consentmodels.UpdateTermsRequest) (record *consentmodels.Record, err error) {
	r.updatingTerms.Store(true)
	defer r.updatingTerms.Store(false)

	record, err = r.consents.UpdateTerms(ctx, profileID, uri, req)
	if err != nil {
		return nil, err
	}
	if r.metrics != nil {
		r.metrics.IncrementTermsUpdates()
	}
	return record, nil
}

// UpdatingTerms reports whether a terms update is in flight on this resolver.
func (r *Resolver) UpdatingTerms() bool {
	return r.updatingTerms.Load()
}

func (r *Resolver) recordPresentation(ctx context.Context, profileID id.ProfileID, contractURI id.ContractURI, p Presentation) {
	if r.metrics != nil {
		r.metrics.IncrementPresented(string(p.Kind))
	}
	r.logger.InfoContext(ctx, "consent_flow_presented",
		"flow", string(p.Kind),
		"contract_uri", contractURI.String(),
		"profile_id", profileID.String(),
		"post_consent", p.IsPostConsent,
	)
	if r.auditor == nil {
		return
	}
	action := audit.ActionFlowPresented
	reason := audit.ReasonUserInitiated
	if p.Kind == FlowGuardian {
		action = audit.ActionGuardianRequested
		reason = audit.ReasonGuardianRequired
	}
	_ = r.auditor.Emit(ctx, audit.Event{
		ProfileID:   profileID.String(),
		ContractURI: contractURI.String(),
		Action:      action,
		Reason:      reason,
		Timestamp:   time.Now(),
	})
}
