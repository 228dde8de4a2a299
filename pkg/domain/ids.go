// Package domain provides type-safe identifiers to prevent mixing up IDs at compile time.
package domain

import (
	"strings"

	"github.com/google/uuid"

	dErrors "github.com/learningeconomy/consentflow/pkg/domain-errors"
)

// ProfileID identifies a wallet profile (the acting user).
type ProfileID uuid.UUID

// ContractURI is the opaque key of a consent contract. It is distinct from
// ConsentURI: a contract describes what may be shared, a consent records that a
// specific profile agreed to it.
type ContractURI string

// ConsentURI identifies a consent record itself.
type ConsentURI string

// BoostURI identifies an issuable credential template.
type BoostURI string

// Parse functions - use at trust boundaries (handlers, API inputs).

func ParseProfileID(s string) (ProfileID, error) {
	if s == "" {
		return ProfileID(uuid.Nil), dErrors.New(dErrors.CodeInvalidInput, "profile ID cannot be empty")
	}
	id, err := uuid.Parse(s)
	if err != nil {
		return ProfileID(uuid.Nil), dErrors.New(dErrors.CodeInvalidInput, "invalid profile ID format")
	}
	return ProfileID(id), nil
}

func ParseContractURI(s string) (ContractURI, error) {
	uri, err := parseURI(s, "contract URI")
	return ContractURI(uri), err
}

func ParseConsentURI(s string) (ConsentURI, error) {
	uri, err := parseURI(s, "consent URI")
	return ConsentURI(uri), err
}

func ParseBoostURI(s string) (BoostURI, error) {
	uri, err := parseURI(s, "boost URI")
	return BoostURI(uri), err
}

// String methods - for logging and debugging.

func (id ProfileID) String() string    { return uuid.UUID(id).String() }
func (u ContractURI) String() string   { return string(u) }
func (u ConsentURI) String() string    { return string(u) }
func (u BoostURI) String() string      { return string(u) }

// IsNil checks - used for service-layer validation.

func (id ProfileID) IsNil() bool    { return uuid.UUID(id) == uuid.Nil }
func (u ContractURI) IsEmpty() bool { return u == "" }
func (u ConsentURI) IsEmpty() bool  { return u == "" }
func (u BoostURI) IsEmpty() bool    { return u == "" }

// parseURI validates opaque URI keys. URIs are treated as opaque identifiers:
// the upstream network mints them, this service only requires them to be
// non-blank and free of whitespace.
func parseURI(s, label string) (string, error) {
	if strings.TrimSpace(s) == "" {
		return "", dErrors.New(dErrors.CodeInvalidInput, label+" cannot be empty")
	}
	if strings.ContainsAny(s, " \t\n") {
		return "", dErrors.New(dErrors.CodeInvalidInput, "invalid "+label+" format")
	}
	return s, nil
}
