package audit

import (
	"context"

	pkgerrors "github.com/learningeconomy/consentflow/pkg/domain-errors"
)

var (
	// ErrNotFound keeps storage-specific 404s consistent across implementations.
	ErrNotFound = pkgerrors.New(pkgerrors.CodeNotFound, "record not found")
)

type Store interface {
	Append(ctx context.Context, event Event) error
	ListByProfile(ctx context.Context, profileID string) ([]Event, error)
}
