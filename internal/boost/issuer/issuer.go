// Package issuer provides the local credential issuer used when no upstream
// network issuer is configured.
package issuer

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/learningeconomy/consentflow/internal/audit"
	id "github.com/learningeconomy/consentflow/pkg/domain"
)

// Local mints credential URIs in-process and records each issuance on the
// audit trail. The minted URI is the durable claim handle; the credential
// payload itself is assembled by the wallet on claim.
type Local struct {
	auditor *audit.Publisher
	logger  *slog.Logger
}

// New constructs a local issuer. auditor may be nil.
func New(auditor *audit.Publisher, logger *slog.Logger) *Local {
	if logger == nil {
		logger = slog.Default()
	}
	return &Local{auditor: auditor, logger: logger}
}

func (l *Local) IssueCredential(ctx context.Context, boostURI id.BoostURI, recipient id.ProfileID) (string, error) {
	credentialURI := "lc:network/credentials/" + uuid.NewString()

	l.logger.InfoContext(ctx, "credential_issued",
		"boost_uri", boostURI.String(),
		"recipient", recipient.String(),
		"credential_uri", credentialURI,
	)
	if l.auditor != nil {
		_ = l.auditor.Emit(ctx, audit.Event{
			Timestamp: time.Now(),
			ProfileID: recipient.String(),
			Action:    audit.ActionCredentialIssued,
			Reason:    audit.ReasonUserInitiated,
		})
	}
	return credentialURI, nil
}
