package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/learningeconomy/consentflow/internal/contract/models"
	"github.com/learningeconomy/consentflow/internal/sentinel"
	id "github.com/learningeconomy/consentflow/pkg/domain"
)

// PostgresStore persists contracts in PostgreSQL. Access schemas are stored
// as JSONB so category shapes can evolve without migrations.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgres constructs a PostgreSQL-backed contract store.
func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Save(ctx context.Context, contract *models.Contract) error {
	if contract == nil {
		return fmt.Errorf("contract is required")
	}
	readJSON, err := json.Marshal(contract.Read)
	if err != nil {
		return fmt.Errorf("encode read schema: %w", err)
	}
	writeJSON, err := json.Marshal(contract.Write)
	if err != nil {
		return fmt.Errorf("encode write schema: %w", err)
	}

	query := `
		INSERT INTO contracts (
			uri, name, subtitle, description, reason_for_accessing, image,
			owner_id, needs_guardian_consent, redirect_url,
			read_schema, write_schema, created_at, updated_at, expires_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		ON CONFLICT (uri) DO UPDATE SET
			name = EXCLUDED.name,
			subtitle = EXCLUDED.subtitle,
			description = EXCLUDED.description,
			reason_for_accessing = EXCLUDED.reason_for_accessing,
			image = EXCLUDED.image,
			needs_guardian_consent = EXCLUDED.needs_guardian_consent,
			redirect_url = EXCLUDED.redirect_url,
			read_schema = EXCLUDED.read_schema,
			write_schema = EXCLUDED.write_schema,
			updated_at = EXCLUDED.updated_at,
			expires_at = EXCLUDED.expires_at
	`
	_, err = s.db.ExecContext(ctx, query,
		string(contract.URI),
		contract.Name,
		contract.Subtitle,
		contract.Description,
		contract.ReasonForAccessing,
		contract.Image,
		uuid.UUID(contract.OwnerID),
		contract.NeedsGuardianConsent,
		contract.RedirectURL,
		readJSON,
		writeJSON,
		contract.CreatedAt,
		contract.UpdatedAt,
		contract.ExpiresAt,
	)
	if err != nil {
		return fmt.Errorf("save contract: %w", err)
	}
	return nil
}

func (s *PostgresStore) FindByURI(ctx context.Context, uri id.ContractURI) (*models.Contract, error) {
	query := `
		SELECT uri, name, subtitle, description, reason_for_accessing, image,
		       owner_id, needs_guardian_consent, redirect_url,
		       read_schema, write_schema, created_at, updated_at, expires_at
		FROM contracts
		WHERE uri = $1
	`
	contract, err := scanContract(s.db.QueryRowContext(ctx, query, string(uri)))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("find contract: %w", err)
	}
	return contract, nil
}

func (s *PostgresStore) ListByOwner(ctx context.Context, ownerID id.ProfileID) ([]*models.Contract, error) {
	query := `
		SELECT uri, name, subtitle, description, reason_for_accessing, image,
		       owner_id, needs_guardian_consent, redirect_url,
		       read_schema, write_schema, created_at, updated_at, expires_at
		FROM contracts
		WHERE owner_id = $1
		ORDER BY created_at
	`
	rows, err := s.db.QueryContext(ctx, query, uuid.UUID(ownerID))
	if err != nil {
		return nil, fmt.Errorf("list contracts: %w", err)
	}
	defer rows.Close()

	var contracts []*models.Contract
	for rows.Next() {
		contract, err := scanContract(rows)
		if err != nil {
			return nil, fmt.Errorf("scan contract: %w", err)
		}
		contracts = append(contracts, contract)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate contracts: %w", err)
	}
	return contracts, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanContract(row rowScanner) (*models.Contract, error) {
	var (
		contract   models.Contract
		uri        string
		ownerID    uuid.UUID
		readJSON   []byte
		writeJSON  []byte
		createdAt  time.Time
		updatedAt  time.Time
		expiresAt  sql.NullTime
	)
	err := row.Scan(
		&uri,
		&contract.Name,
		&contract.Subtitle,
		&contract.Description,
		&contract.ReasonForAccessing,
		&contract.Image,
		&ownerID,
		&contract.NeedsGuardianConsent,
		&contract.RedirectURL,
		&readJSON,
		&writeJSON,
		&createdAt,
		&updatedAt,
		&expiresAt,
	)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(readJSON, &contract.Read); err != nil {
		return nil, fmt.Errorf("decode read schema: %w", err)
	}
	if err := json.Unmarshal(writeJSON, &contract.Write); err != nil {
		return nil, fmt.Errorf("decode write schema: %w", err)
	}
	contract.URI = id.ContractURI(uri)
	contract.OwnerID = id.ProfileID(ownerID)
	contract.CreatedAt = createdAt
	contract.UpdatedAt = updatedAt
	if expiresAt.Valid {
		contract.ExpiresAt = &expiresAt.Time
	}
	return &contract, nil
}
