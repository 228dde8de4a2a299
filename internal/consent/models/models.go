package models

import (
	"time"

	contractmodels "github.com/learningeconomy/consentflow/internal/contract/models"
	id "github.com/learningeconomy/consentflow/pkg/domain"
	dErrors "github.com/learningeconomy/consentflow/pkg/domain-errors"
)

// Record captures a profile's standing consent to a contract.
//
// # Scoping Invariant
//
// A Record is ALWAYS scoped by (ProfileID, ContractURI). A profile holds at
// most one non-withdrawn record per contract; withdrawn records are retained
// for history and a fresh grant creates a new record.
//
// Security implications:
//   - A consent URI alone is NOT sufficient to authorize access to a record
//   - All mutations MUST include ProfileID to prevent cross-profile access
//   - The store layer enforces this by requiring ProfileID in its queries
type Record struct {
	URI         id.ConsentURI
	ContractURI id.ContractURI
	ProfileID   id.ProfileID
	Terms       Terms
	Status      Status
	OneTime     bool
	GrantedAt   time.Time
	UpdatedAt   time.Time
	ExpiresAt   *time.Time
	WithdrawnAt *time.Time
}

// NewRecord creates a Record with domain invariant checks.
func NewRecord(uri id.ConsentURI, contractURI id.ContractURI, profileID id.ProfileID, terms Terms, grantedAt time.Time, expiresAt *time.Time, oneTime bool) (*Record, error) {
	if uri.IsEmpty() {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "consent URI required")
	}
	if contractURI.IsEmpty() {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "contract URI required")
	}
	if profileID.IsNil() {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "profile ID required")
	}
	if grantedAt.IsZero() {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "grant time required")
	}
	if expiresAt != nil && expiresAt.Before(grantedAt) {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "expiry must be after grant time")
	}
	return &Record{
		URI:         uri,
		ContractURI: contractURI,
		ProfileID:   profileID,
		Terms:       terms,
		Status:      StatusActive,
		OneTime:     oneTime,
		GrantedAt:   grantedAt,
		UpdatedAt:   grantedAt,
		ExpiresAt:   expiresAt,
	}, nil
}

// IsActive returns true when the consent currently authorizes data access.
func (c Record) IsActive(now time.Time) bool {
	if c.Status == StatusWithdrawn || c.WithdrawnAt != nil {
		return false
	}
	if c.ExpiresAt != nil && c.ExpiresAt.Before(now) {
		return false
	}
	return true
}

// IsWithdrawn returns true when the consenter has revoked this record.
func (c Record) IsWithdrawn() bool {
	return c.Status == StatusWithdrawn || c.WithdrawnAt != nil
}

// ComputeStatus derives the externally visible status at a point in time.
// Withdrawal wins over expiry.
func (c Record) ComputeStatus(now time.Time) Status {
	if c.IsWithdrawn() {
		return StatusWithdrawn
	}
	if c.ExpiresAt != nil && c.ExpiresAt.Before(now) {
		return StatusExpired
	}
	return StatusActive
}

// ValidateTermsAgainst checks that terms form a lawful answer to the
// contract's access schema. Terms may only narrow a contract:
//   - every category named in the terms must exist in the contract schema
//   - every category the contract marks required must be enabled
//
// Returns the full list of violations so the caller can surface all problems
// at once instead of one per round-trip.
func ValidateTermsAgainst(contract *contractmodels.Contract, terms Terms) []TermsViolation {
	var violations []TermsViolation

	for category := range terms.Read.Categories {
		if _, ok := contract.Read.Categories[category]; !ok {
			violations = append(violations, TermsViolation{
				Field:    fieldRead,
				Category: category,
				Reason:   "category not offered by contract",
			})
		}
	}
	for category, term := range contract.Read.Categories {
		if term.Required && !terms.SharesCategory(category) {
			violations = append(violations, TermsViolation{
				Field:    fieldRead,
				Category: category,
				Reason:   "required category must be shared",
			})
		}
	}

	for category := range terms.Write.Categories {
		if _, ok := contract.Write.Categories[category]; !ok {
			violations = append(violations, TermsViolation{
				Field:    fieldWrite,
				Category: category,
				Reason:   "category not offered by contract",
			})
		}
	}
	for category, term := range contract.Write.Categories {
		if term.Required && !terms.AllowsWrite(category) {
			violations = append(violations, TermsViolation{
				Field:    fieldWrite,
				Category: category,
				Reason:   "required category must accept writes",
			})
		}
	}

	return violations
}
