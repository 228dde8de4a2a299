package models

import (
	"time"

	id "github.com/learningeconomy/consentflow/pkg/domain"
	dErrors "github.com/learningeconomy/consentflow/pkg/domain-errors"
)

// CategoryTerm describes how a single credential category participates in a
// contract: whether the consenter must share it and whether it is pre-enabled
// in the consent UI.
type CategoryTerm struct {
	Required       bool `json:"required"`
	DefaultEnabled bool `json:"defaultEnabled,omitempty"`
}

// AccessSchema declares the categories a contract wants to read or write.
// Anonymize applies to the read side only.
type AccessSchema struct {
	Anonymize  bool                    `json:"anonymize,omitempty"`
	Categories map[string]CategoryTerm `json:"categories"`
	Personal   map[string]CategoryTerm `json:"personal,omitempty"`
}

// Contract is a declarative record of what categories of personal/credential
// data a requester may read or write, optionally requiring guardian approval.
//
// A contract is immutable for the duration of a resolution session: the read
// path never mutates contract content. Authoring happens upstream.
type Contract struct {
	URI                  id.ContractURI `json:"uri"`
	Name                 string         `json:"name"`
	Subtitle             string         `json:"subtitle,omitempty"`
	Description          string         `json:"description,omitempty"`
	ReasonForAccessing   string         `json:"reasonForAccessing,omitempty"`
	Image                string         `json:"image,omitempty"`
	OwnerID              id.ProfileID   `json:"ownerId"`
	NeedsGuardianConsent bool           `json:"needsGuardianConsent,omitempty"`
	RedirectURL          string         `json:"redirectUrl,omitempty"`
	Read                 AccessSchema   `json:"read"`
	Write                AccessSchema   `json:"write"`
	CreatedAt            time.Time      `json:"createdAt"`
	UpdatedAt            time.Time      `json:"updatedAt"`
	ExpiresAt            *time.Time     `json:"expiresAt,omitempty"`
}

// NewContract creates a Contract with domain invariant checks.
func NewContract(uri id.ContractURI, name string, ownerID id.ProfileID, read, write AccessSchema, createdAt time.Time) (*Contract, error) {
	if uri.IsEmpty() {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "contract URI required")
	}
	if name == "" {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "contract name required")
	}
	if ownerID.IsNil() {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "contract owner required")
	}
	if createdAt.IsZero() {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "creation time required")
	}
	return &Contract{
		URI:       uri,
		Name:      name,
		OwnerID:   ownerID,
		Read:      read,
		Write:     write,
		CreatedAt: createdAt,
		UpdatedAt: createdAt,
	}, nil
}

// IsExpired reports whether the contract itself has lapsed.
func (c Contract) IsExpired(now time.Time) bool {
	return c.ExpiresAt != nil && c.ExpiresAt.Before(now)
}

// RequiredReadCategories lists the read categories a consenter cannot opt out of.
func (c Contract) RequiredReadCategories() []string {
	return requiredCategories(c.Read)
}

// RequiredWriteCategories lists the write categories a consenter cannot opt out of.
func (c Contract) RequiredWriteCategories() []string {
	return requiredCategories(c.Write)
}

func requiredCategories(schema AccessSchema) []string {
	var required []string
	for name, term := range schema.Categories {
		if term.Required {
			required = append(required, name)
		}
	}
	return required
}
