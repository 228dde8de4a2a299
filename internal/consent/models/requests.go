package models

import (
	"fmt"
	"time"

	"github.com/learningeconomy/consentflow/internal/sentinel"
)

// GrantRequest asks the service to record consent to a contract.
type GrantRequest struct {
	ContractURI string        `json:"contractUri"`
	Terms       Terms         `json:"terms"`
	OneTime     bool          `json:"oneTime,omitempty"`
	Duration    time.Duration `json:"duration,omitempty"`
}

// Normalize applies business defaults and sanitizes inputs.
func (r *GrantRequest) Normalize() {
	if r == nil {
		return
	}
	if r.Terms.Read.Categories == nil {
		r.Terms.Read.Categories = map[string]CategoryShare{}
	}
	if r.Terms.Write.Categories == nil {
		r.Terms.Write.Categories = map[string]bool{}
	}
	if r.Duration < 0 {
		r.Duration = 0
	}
}

// Validate checks that the request is well-formed.
func (r *GrantRequest) Validate() error {
	if r == nil {
		return fmt.Errorf("request is required: %w", sentinel.ErrInvalidInput)
	}
	if r.ContractURI == "" {
		return fmt.Errorf("contract URI is required: %w", sentinel.ErrInvalidInput)
	}
	return nil
}

// UpdateTermsRequest replaces the terms of an existing consent record.
type UpdateTermsRequest struct {
	Terms Terms `json:"terms"`
}

// Normalize applies business defaults and sanitizes inputs.
func (r *UpdateTermsRequest) Normalize() {
	if r == nil {
		return
	}
	if r.Terms.Read.Categories == nil {
		r.Terms.Read.Categories = map[string]CategoryShare{}
	}
	if r.Terms.Write.Categories == nil {
		r.Terms.Write.Categories = map[string]bool{}
	}
}

// Validate checks that the request is well-formed.
func (r *UpdateTermsRequest) Validate() error {
	if r == nil {
		return fmt.Errorf("request is required: %w", sentinel.ErrInvalidInput)
	}
	return nil
}

// ConsentWithStatus pairs a record with its derived lifecycle status.
type ConsentWithStatus struct {
	URI         string     `json:"uri"`
	ContractURI string     `json:"contractUri"`
	Terms       Terms      `json:"terms"`
	Status      Status     `json:"status"`
	OneTime     bool       `json:"oneTime,omitempty"`
	GrantedAt   time.Time  `json:"grantedAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
	ExpiresAt   *time.Time `json:"expiresAt,omitempty"`
	WithdrawnAt *time.Time `json:"withdrawnAt,omitempty"`
}

// ListResponse is returned by LIST consent queries.
type ListResponse struct {
	Consents []*ConsentWithStatus `json:"consents"`
}
