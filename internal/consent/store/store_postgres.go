package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/learningeconomy/consentflow/internal/consent/models"
	"github.com/learningeconomy/consentflow/internal/sentinel"
	id "github.com/learningeconomy/consentflow/pkg/domain"
)

// PostgresStore persists consent records in PostgreSQL. Terms are stored as
// JSONB; lifecycle fields are columns so store queries can filter on them.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgres constructs a PostgreSQL-backed consent store.
func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Save(ctx context.Context, consent *models.Record) error {
	if consent == nil {
		return fmt.Errorf("consent record is required")
	}
	termsJSON, err := json.Marshal(consent.Terms)
	if err != nil {
		return fmt.Errorf("encode terms: %w", err)
	}

	query := `
		INSERT INTO consents (
			uri, contract_uri, profile_id, terms, status, one_time,
			granted_at, updated_at, expires_at, withdrawn_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (uri) DO UPDATE SET
			terms = EXCLUDED.terms,
			status = EXCLUDED.status,
			one_time = EXCLUDED.one_time,
			updated_at = EXCLUDED.updated_at,
			expires_at = EXCLUDED.expires_at,
			withdrawn_at = EXCLUDED.withdrawn_at
	`
	_, err = s.db.ExecContext(ctx, query,
		string(consent.URI),
		string(consent.ContractURI),
		uuid.UUID(consent.ProfileID),
		termsJSON,
		string(consent.Status),
		consent.OneTime,
		consent.GrantedAt,
		consent.UpdatedAt,
		consent.ExpiresAt,
		consent.WithdrawnAt,
	)
	if err != nil {
		return fmt.Errorf("save consent: %w", err)
	}
	return nil
}

func (s *PostgresStore) FindByURI(ctx context.Context, uri id.ConsentURI) (*models.Record, error) {
	query := consentSelect + ` WHERE uri = $1`
	record, err := scanConsent(s.db.QueryRowContext(ctx, query, string(uri)))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("find consent: %w", err)
	}
	return record, nil
}

func (s *PostgresStore) FindByProfileAndContract(ctx context.Context, profileID id.ProfileID, contractURI id.ContractURI) (*models.Record, error) {
	query := consentSelect + `
		WHERE profile_id = $1 AND contract_uri = $2 AND withdrawn_at IS NULL
		ORDER BY granted_at DESC
		LIMIT 1
	`
	record, err := scanConsent(s.db.QueryRowContext(ctx, query, uuid.UUID(profileID), string(contractURI)))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("find consent by contract: %w", err)
	}
	return record, nil
}

func (s *PostgresStore) ListByProfile(ctx context.Context, profileID id.ProfileID) ([]*models.Record, error) {
	query := consentSelect + ` WHERE profile_id = $1 ORDER BY granted_at DESC`
	rows, err := s.db.QueryContext(ctx, query, uuid.UUID(profileID))
	if err != nil {
		return nil, fmt.Errorf("list consents: %w", err)
	}
	defer rows.Close()

	var records []*models.Record
	for rows.Next() {
		record, err := scanConsent(rows)
		if err != nil {
			return nil, fmt.Errorf("scan consent: %w", err)
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate consents: %w", err)
	}
	return records, nil
}

func (s *PostgresStore) Update(ctx context.Context, consent *models.Record) error {
	termsJSON, err := json.Marshal(consent.Terms)
	if err != nil {
		return fmt.Errorf("encode terms: %w", err)
	}
	query := `
		UPDATE consents
		SET terms = $1, status = $2, one_time = $3, updated_at = $4,
		    expires_at = $5, withdrawn_at = $6
		WHERE uri = $7 AND profile_id = $8
	`
	result, err := s.db.ExecContext(ctx, query,
		termsJSON,
		string(consent.Status),
		consent.OneTime,
		consent.UpdatedAt,
		consent.ExpiresAt,
		consent.WithdrawnAt,
		string(consent.URI),
		uuid.UUID(consent.ProfileID),
	)
	if err != nil {
		return fmt.Errorf("update consent: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("update consent: %w", err)
	}
	if affected == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

func (s *PostgresStore) WithdrawByURI(ctx context.Context, profileID id.ProfileID, uri id.ConsentURI, withdrawnAt time.Time) (*models.Record, error) {
	query := `
		UPDATE consents
		SET status = $1, withdrawn_at = $2, updated_at = $2
		WHERE uri = $3 AND profile_id = $4
		RETURNING uri, contract_uri, profile_id, terms, status, one_time,
		          granted_at, updated_at, expires_at, withdrawn_at
	`
	record, err := scanConsent(s.db.QueryRowContext(ctx, query,
		string(models.StatusWithdrawn),
		withdrawnAt,
		string(uri),
		uuid.UUID(profileID),
	))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("withdraw consent: %w", err)
	}
	return record, nil
}

const consentSelect = `
	SELECT uri, contract_uri, profile_id, terms, status, one_time,
	       granted_at, updated_at, expires_at, withdrawn_at
	FROM consents`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanConsent(row rowScanner) (*models.Record, error) {
	var (
		record      models.Record
		uri         string
		contractURI string
		profileID   uuid.UUID
		termsJSON   []byte
		status      string
		grantedAt   time.Time
		updatedAt   time.Time
		expiresAt   sql.NullTime
		withdrawnAt sql.NullTime
	)
	err := row.Scan(
		&uri,
		&contractURI,
		&profileID,
		&termsJSON,
		&status,
		&record.OneTime,
		&grantedAt,
		&updatedAt,
		&expiresAt,
		&withdrawnAt,
	)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(termsJSON, &record.Terms); err != nil {
		return nil, fmt.Errorf("decode terms: %w", err)
	}
	record.URI = id.ConsentURI(uri)
	record.ContractURI = id.ContractURI(contractURI)
	record.ProfileID = id.ProfileID(profileID)
	record.Status = models.Status(status)
	record.GrantedAt = grantedAt
	record.UpdatedAt = updatedAt
	if expiresAt.Valid {
		record.ExpiresAt = &expiresAt.Time
	}
	if withdrawnAt.Valid {
		record.WithdrawnAt = &withdrawnAt.Time
	}
	return &record, nil
}
