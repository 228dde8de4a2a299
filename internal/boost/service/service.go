// Package service fans boost issuance out across recipients.
package service

//go:generate mockgen -source=service.go -destination=mocks/mocks.go -package=mocks Issuer

import (
	"context"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/learningeconomy/consentflow/internal/boost/models"
	id "github.com/learningeconomy/consentflow/pkg/domain"
	dErrors "github.com/learningeconomy/consentflow/pkg/domain-errors"
)

// Issuer performs a single credential issuance.
type Issuer interface {
	IssueCredential(ctx context.Context, boostURI id.BoostURI, recipient id.ProfileID) (credentialURI string, err error)
}

type Option func(*Service)

const (
	defaultConcurrency  = 8
	defaultIssueTimeout = 30 * time.Second
)

// Service issues boosts to recipients in parallel.
//
// Per-recipient issuances are independent: one recipient failing never stops
// the others. The fan-out is flat, with no sequential awaits per recipient.
type Service struct {
	issuer      Issuer
	logger      *slog.Logger
	concurrency int
	timeout     time.Duration
}

func NewService(issuer Issuer, logger *slog.Logger, opts ...Option) *Service {
	svc := &Service{
		issuer:      issuer,
		logger:      logger,
		concurrency: defaultConcurrency,
		timeout:     defaultIssueTimeout,
	}
	for _, opt := range opts {
		opt(svc)
	}
	if svc.concurrency <= 0 {
		svc.concurrency = defaultConcurrency
	}
	if svc.logger == nil {
		svc.logger = slog.Default()
	}
	return svc
}

// WithConcurrency bounds how many issuances run at once.
func WithConcurrency(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.concurrency = n
		}
	}
}

// WithTimeout bounds the whole fan-out.
func WithTimeout(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.timeout = d
		}
	}
}

// IssueToRecipients issues the boost to every recipient concurrently and
// reports per-recipient outcomes. Each goroutine writes only its own result
// slot, so no locking is needed around the results slice.
//
// The only error returned is for an invalid request or a cancelled context;
// individual issuance failures land in the per-recipient results.
func (s *Service) IssueToRecipients(ctx context.Context, req *models.IssueRequest) (*models.IssueResponse, error) {
	if req == nil {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "issue request must not be nil")
	}
	boostURI, err := id.ParseBoostURI(req.BoostURI)
	if err != nil {
		return nil, dErrors.Wrap(dErrors.CodeInvalidInput, "invalid boost URI", err)
	}
	if len(req.Recipients) == 0 {
		return nil, dErrors.New(dErrors.CodeBadRequest, "recipients must not be empty")
	}

	recipients := make([]id.ProfileID, len(req.Recipients))
	for i, raw := range req.Recipients {
		profileID, err := id.ParseProfileID(raw)
		if err != nil {
			return nil, dErrors.Wrap(dErrors.CodeInvalidInput, "invalid recipient profile ID", err)
		}
		recipients[i] = profileID
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	results := make([]models.RecipientResult, len(recipients))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)

	for i, recipient := range recipients {
		g.Go(func() error {
			results[i] = s.issueOne(ctx, boostURI, recipient)
			return nil
		})
	}
	// Goroutines never return errors, so Wait only fails on a cancelled
	// context surfacing through issueOne results.
	if err := g.Wait(); err != nil {
		return nil, dErrors.Wrap(dErrors.CodeInternal, "issuance fan-out failed", err)
	}

	resp := &models.IssueResponse{BoostURI: boostURI.String(), Results: results}
	for _, r := range results {
		if r.Succeeded() {
			resp.Issued++
		} else {
			resp.Failed++
		}
	}
	s.logger.InfoContext(ctx, "boost_issued",
		"boost_uri", boostURI.String(),
		"recipients", len(recipients),
		"issued", resp.Issued,
		"failed", resp.Failed,
	)
	return resp, nil
}

func (s *Service) issueOne(ctx context.Context, boostURI id.BoostURI, recipient id.ProfileID) models.RecipientResult {
	result := models.RecipientResult{ProfileID: recipient}
	credentialURI, err := s.issuer.IssueCredential(ctx, boostURI, recipient)
	if err != nil {
		s.logger.WarnContext(ctx, "issuance_failed",
			"boost_uri", boostURI.String(),
			"recipient", recipient.String(),
			"error", err,
		)
		result.Error = err.Error()
		return result
	}
	result.CredentialURI = credentialURI
	return result
}
