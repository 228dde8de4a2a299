package store

import (
	"context"
	"time"

	"github.com/learningeconomy/consentflow/internal/consent/models"
	id "github.com/learningeconomy/consentflow/pkg/domain"
)

// Store defines the persistence interface for consent records.
//
// Error Contract:
// - FindByURI and FindByProfileAndContract return sentinel.ErrNotFound when
//   no matching record exists
// - Other methods return nil on success or wrapped errors on failure
type Store interface {
	Save(ctx context.Context, consent *models.Record) error
	FindByURI(ctx context.Context, uri id.ConsentURI) (*models.Record, error)
	// FindByProfileAndContract returns the newest non-withdrawn record for the
	// pair, or sentinel.ErrNotFound.
	FindByProfileAndContract(ctx context.Context, profileID id.ProfileID, contractURI id.ContractURI) (*models.Record, error)
	ListByProfile(ctx context.Context, profileID id.ProfileID) ([]*models.Record, error)
	Update(ctx context.Context, consent *models.Record) error
	WithdrawByURI(ctx context.Context, profileID id.ProfileID, uri id.ConsentURI, withdrawnAt time.Time) (*models.Record, error)
}
