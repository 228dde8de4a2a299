package resolver

//go:generate mockgen -source=ports.go -destination=mocks/mocks.go -package=mocks ContractSource,ConsentSource,Presenter

import (
	"context"

	consentmodels "github.com/learningeconomy/consentflow/internal/consent/models"
	contractmodels "github.com/learningeconomy/consentflow/internal/contract/models"
	id "github.com/learningeconomy/consentflow/pkg/domain"
)

// ContractSource resolves contract definitions.
// Error Contract:
// - Fetch returns a CodeNotFound domain error when the URI resolves to nothing
type ContractSource interface {
	Fetch(ctx context.Context, uri id.ContractURI) (*contractmodels.Contract, error)
}

// ConsentSource answers consent-standing queries and carries terms updates.
//
// ActiveRecord returns (nil, nil) when no live consent exists; withdrawn and
// expired records never surface here.
type ConsentSource interface {
	ActiveRecord(ctx context.Context, profileID id.ProfileID, contractURI id.ContractURI) (*consentmodels.Record, error)
	UpdateTerms(ctx context.Context, profileID id.ProfileID, uri id.ConsentURI, req *consentmodels.UpdateTermsRequest) (*consentmodels.Record, error)
}

// Presenter mounts a consent flow. Implementations own placement and
// stacking; the resolver only decides WHICH flow to show.
type Presenter interface {
	Present(ctx context.Context, p Presentation) error
}
