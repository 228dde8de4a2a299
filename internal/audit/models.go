package audit

import "time"

// Event is emitted from domain logic to capture key consent actions. Keep it
// transport-agnostic so stores and sinks can fan out.
type Event struct {
	Timestamp   time.Time `json:"timestamp"`
	ProfileID   string    `json:"profile_id"`
	ContractURI string    `json:"contract_uri,omitempty"`
	ConsentURI  string    `json:"consent_uri,omitempty"`
	Action      string    `json:"action"`
	Decision    string    `json:"decision,omitempty"`
	Reason      string    `json:"reason,omitempty"`
}

// Audit event actions.
const (
	ActionConsentGranted     = "consent_granted"
	ActionConsentWithdrawn   = "consent_withdrawn"
	ActionTermsUpdated       = "terms_updated"
	ActionGuardianRequested  = "guardian_permission_requested"
	ActionFlowPresented      = "flow_presented"
	ActionConsentCheckPassed = "consent_check_passed"
	ActionConsentCheckFailed = "consent_check_failed"
	ActionCredentialIssued   = "credential_issued"
)

// Audit event decisions.
const (
	DecisionGranted   = "granted"
	DecisionWithdrawn = "withdrawn"
	DecisionUpdated   = "updated"
	DecisionDenied    = "denied"
)

// Audit event reasons.
const (
	ReasonUserInitiated    = "user_initiated"
	ReasonGuardianRequired = "guardian_required"
)
