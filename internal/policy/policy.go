// Package policy centralizes the guardian-branch authorization rule that
// every consent-adjacent call site must consult.
//
// The rule used to live inline at each call site. It is one function here so
// a change to the policy is a change in exactly one place.
package policy

import (
	id "github.com/learningeconomy/consentflow/pkg/domain"
)

// Action is the outcome of routing a consent-adjacent operation.
type Action string

const (
	// ActDirect proceeds with the requested share, consent, or issuance.
	ActDirect Action = "direct"
	// ActGuardianPermission routes to "get permission from an adult":
	// forward-to-parent or parent sign-in instead of the direct action.
	ActGuardianPermission Action = "guardian_permission"
)

// CanActDirectly reports whether the acting profile may perform a
// consent-adjacent operation without guardian involvement.
//
// A child profile that has not yet consented must go through a guardian
// unless the operation explicitly bypasses parental consent. Everyone else
// acts directly.
func CanActDirectly(profileType id.ProfileType, hasConsented, bypassGuardian bool) bool {
	if !profileType.IsChild() {
		return true
	}
	return hasConsented || bypassGuardian
}

// Route maps a profile and consent standing onto the action to take.
func Route(profileType id.ProfileType, hasConsented, bypassGuardian bool) Action {
	if CanActDirectly(profileType, hasConsented, bypassGuardian) {
		return ActDirect
	}
	return ActGuardianPermission
}
