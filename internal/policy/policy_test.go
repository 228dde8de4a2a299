package policy

import (
	"testing"

	"github.com/stretchr/testify/assert"

	id "github.com/learningeconomy/consentflow/pkg/domain"
)

// Full truth table for the guardian branch. Only a child without consent and
// without an explicit bypass is routed to guardian permission.
func TestRoute(t *testing.T) {
	tests := []struct {
		name           string
		profileType    id.ProfileType
		hasConsented   bool
		bypassGuardian bool
		want           Action
	}{
		{"adult acts directly", id.ProfileTypeAdult, false, false, ActDirect},
		{"adult with consent acts directly", id.ProfileTypeAdult, true, false, ActDirect},
		{"child without consent needs guardian", id.ProfileTypeChild, false, false, ActGuardianPermission},
		{"child with consent acts directly", id.ProfileTypeChild, true, false, ActDirect},
		{"child with bypass acts directly", id.ProfileTypeChild, false, true, ActDirect},
		{"child with consent and bypass acts directly", id.ProfileTypeChild, true, true, ActDirect},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Route(tt.profileType, tt.hasConsented, tt.bypassGuardian))
			assert.Equal(t, tt.want == ActDirect, CanActDirectly(tt.profileType, tt.hasConsented, tt.bypassGuardian))
		})
	}
}
