package models

import (
	"fmt"
	"time"
)

// Status represents the lifecycle state of a consent record.
type Status string

const (
	StatusActive    Status = "active"
	StatusExpired   Status = "expired"
	StatusWithdrawn Status = "withdrawn"
)

// IsValid checks if the status is one of the supported enum values.
func (s Status) IsValid() bool {
	return s == StatusActive || s == StatusExpired || s == StatusWithdrawn
}

// CategoryShare captures the consenter's decision for one read category.
// Shared lists explicit credential URIs when ShareAll is false.
type CategoryShare struct {
	Sharing    bool       `json:"sharing"`
	ShareAll   bool       `json:"shareAll,omitempty"`
	Shared     []string   `json:"shared,omitempty"`
	ShareUntil *time.Time `json:"shareUntil,omitempty"`
}

// ReadTerms records which categories and personal fields the consenter agreed
// to expose to the contract owner.
type ReadTerms struct {
	Anonymize  bool                     `json:"anonymize,omitempty"`
	Categories map[string]CategoryShare `json:"categories"`
	Personal   map[string]string        `json:"personal,omitempty"`
}

// WriteTerms records which categories and personal fields the contract owner
// may write into the consenter's wallet.
type WriteTerms struct {
	Categories map[string]bool `json:"categories"`
	Personal   map[string]bool `json:"personal,omitempty"`
}

// Terms is the consenter's answer to a contract's access schema. Terms may
// only narrow a contract, never widen it.
type Terms struct {
	Read          ReadTerms  `json:"read"`
	Write         WriteTerms `json:"write"`
	DeniedWriters []string   `json:"deniedWriters,omitempty"`
}

// SharesCategory reports whether the terms expose the given read category.
func (t Terms) SharesCategory(category string) bool {
	share, ok := t.Read.Categories[category]
	return ok && share.Sharing
}

// AllowsWrite reports whether the terms permit writes to the given category.
func (t Terms) AllowsWrite(category string) bool {
	return t.Write.Categories[category]
}

// ShareDuration bounds how long a consent grant remains valid.
// OneTime grants are consumed by a single data access. A zero Custom duration
// means the caller accepts the service default TTL.
type ShareDuration struct {
	OneTime bool          `json:"oneTime,omitempty"`
	Custom  time.Duration `json:"custom,omitempty"`
}

// ExpiryFrom computes the expiry timestamp for a grant made at the given
// time, falling back to defaultTTL when no custom duration is set.
// One-time shares carry no time-based expiry.
func (d ShareDuration) ExpiryFrom(grantedAt time.Time, defaultTTL time.Duration) *time.Time {
	if d.OneTime {
		return nil
	}
	ttl := d.Custom
	if ttl <= 0 {
		ttl = defaultTTL
	}
	if ttl <= 0 {
		return nil
	}
	expiry := grantedAt.Add(ttl)
	return &expiry
}

// termsField identifies a side of the access schema in validation errors.
type termsField string

const (
	fieldRead  termsField = "read"
	fieldWrite termsField = "write"
)

// TermsViolation describes a single way the terms diverge from the contract.
type TermsViolation struct {
	Field    termsField
	Category string
	Reason   string
}

func (v TermsViolation) String() string {
	return fmt.Sprintf("%s.%s: %s", v.Field, v.Category, v.Reason)
}
