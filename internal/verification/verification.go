// Package verification runs best-effort contact verification in the
// background of consent flows.
//
// Verification is never allowed to block or fail the primary flow: failures
// are logged and swallowed, and repeat attempts are throttled per contact.
package verification

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/learningeconomy/consentflow/internal/throttle"
	id "github.com/learningeconomy/consentflow/pkg/domain"
)

// Sender delivers a verification challenge to a contact address.
type Sender interface {
	SendVerification(ctx context.Context, contact string) error
}

// Service drives throttled, best-effort verification.
type Service struct {
	throttle *throttle.Throttle
	sender   Sender
	logger   *slog.Logger
}

func NewService(th *throttle.Throttle, sender Sender, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{throttle: th, sender: sender, logger: logger}
}

// AutoVerify sends a verification challenge for the contact unless one was
// sent within the throttle window. It never returns an error; the primary
// consent flow must not stall on verification problems. The returned flag
// reports whether a send was attempted.
func (s *Service) AutoVerify(ctx context.Context, profileID id.ProfileID, contact string) bool {
	if contact == "" {
		return false
	}
	key := fmt.Sprintf("verify:%s:%s", profileID.String(), contact)
	ran, err := s.throttle.Do(ctx, key, func(ctx context.Context) error {
		return s.sender.SendVerification(ctx, contact)
	})
	if err != nil {
		s.logger.WarnContext(ctx, "auto_verification_failed",
			"profile_id", profileID.String(),
			"error", err,
		)
	}
	return ran
}
