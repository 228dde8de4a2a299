package resolver

import (
	consentmodels "github.com/learningeconomy/consentflow/internal/consent/models"
	contractmodels "github.com/learningeconomy/consentflow/internal/contract/models"
	id "github.com/learningeconomy/consentflow/pkg/domain"
)

// FlowKind names the consent UI flow selected by the resolver.
type FlowKind string

const (
	// FlowGuardian is the full-screen guardian/game consent flow shown when a
	// contract requires guardian approval and no consent exists yet.
	FlowGuardian FlowKind = "guardian"
	// FlowStandard is the regular consent flow. When consent already exists
	// it opens in post-consent mode (reviewing/syncing, not first grant).
	FlowStandard FlowKind = "standard"
)

// AppRef is optional app-listing context forwarded unchanged into the
// presented flow. The resolver never inspects it.
type AppRef struct {
	ID   string `json:"id,omitempty"`
	Name string `json:"name,omitempty"`
	URL  string `json:"url,omitempty"`
}

// ResolveRequest identifies the contract to resolve. When Contract is
// supplied the URI is ignored and no fetch happens.
type ResolveRequest struct {
	Contract    *contractmodels.Contract
	ContractURI id.ContractURI
	App         *AppRef
}

// Resolution is the resolver's answer: the contract (possibly nil when it
// could not be resolved), the derived consent standing, and the matching
// consent record when one exists.
//
// HasConsented is true iff a non-withdrawn, non-expired consent record exists
// for the contract URI. It is derived on every call, never cached.
type Resolution struct {
	Contract     *contractmodels.Contract
	HasConsented bool
	Consented    *consentmodels.Record
}

// Presentation describes the single flow a Present call should mount.
type Presentation struct {
	Kind              FlowKind
	Contract          *contractmodels.Contract
	IsPostConsent     bool
	HideProfileButton bool
	FullScreen        bool
	App               *AppRef
	ConsentedURI      id.ConsentURI
}

// OpenOptions tunes how the selected flow is presented.
type OpenOptions struct {
	HideProfileButton bool
	App               *AppRef
}

// Outcome reports what OpenConsentFlow did. Presented is false when the
// contract could not be resolved and the call became a logged no-op.
type Outcome struct {
	Presented bool
	Kind      FlowKind
}
