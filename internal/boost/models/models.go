// Package models defines boost (issuable credential) shapes.
package models

import (
	"time"

	id "github.com/learningeconomy/consentflow/pkg/domain"
	dErrors "github.com/learningeconomy/consentflow/pkg/domain-errors"
)

// Boost is an issuable credential template: badge, ID, membership and so on.
type Boost struct {
	URI       id.BoostURI `json:"uri"`
	Name      string      `json:"name"`
	Category  string      `json:"category"`
	IssuerID  id.ProfileID `json:"issuerId"`
	CreatedAt time.Time   `json:"createdAt"`
}

// NewBoost creates a Boost with domain invariant checks.
func NewBoost(uri id.BoostURI, name, category string, issuerID id.ProfileID, createdAt time.Time) (*Boost, error) {
	if uri.IsEmpty() {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "boost URI required")
	}
	if name == "" {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "boost name required")
	}
	if issuerID.IsNil() {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "boost issuer required")
	}
	return &Boost{
		URI:       uri,
		Name:      name,
		Category:  category,
		IssuerID:  issuerID,
		CreatedAt: createdAt,
	}, nil
}

// IssueRequest asks for a boost to be issued to a set of recipients.
type IssueRequest struct {
	BoostURI   string   `json:"boostUri"`
	Recipients []string `json:"recipients"`
}

// RecipientResult reports the outcome of issuance for one recipient.
type RecipientResult struct {
	ProfileID     id.ProfileID `json:"profileId"`
	CredentialURI string       `json:"credentialUri,omitempty"`
	Error         string       `json:"error,omitempty"`
}

// Succeeded reports whether this recipient received a credential.
func (r RecipientResult) Succeeded() bool {
	return r.Error == ""
}

// IssueResponse summarizes a fan-out issuance.
type IssueResponse struct {
	BoostURI string            `json:"boostUri"`
	Results  []RecipientResult `json:"results"`
	Issued   int               `json:"issued"`
	Failed   int               `json:"failed"`
}
