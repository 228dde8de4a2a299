package domainerrors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWrap_PreservesExistingCode(t *testing.T) {
	inner := New(CodeMissingConsent, "no consent on file")
	wrapped := Wrap(CodeInternal, "resolver failed", inner)

	assert.True(t, HasCode(wrapped, CodeMissingConsent), "wrapping must not overwrite the original domain code")
	assert.False(t, HasCode(wrapped, CodeInternal))
}

func TestWrap_AssignsCodeToPlainErrors(t *testing.T) {
	wrapped := Wrap(CodeInternal, "store failed", errors.New("connection refused"))
	assert.True(t, HasCode(wrapped, CodeInternal))
}

func TestHasCode_UnwrapsChains(t *testing.T) {
	inner := New(CodeInvalidConsent, "consent withdrawn")
	chained := fmt.Errorf("checking consent: %w", inner)

	assert.True(t, HasCode(chained, CodeInvalidConsent))
	assert.False(t, HasCode(chained, CodeNotFound))
	assert.False(t, HasCode(nil, CodeNotFound))
}

func TestError_MessageFallsBackToCode(t *testing.T) {
	err := New(CodeGuardianRequired, "")
	require.EqualError(t, err, string(CodeGuardianRequired))
}

func TestIs_MatchesByCode(t *testing.T) {
	a := New(CodeConflict, "duplicate consent")
	b := New(CodeConflict, "different message")
	assert.True(t, errors.Is(a, b))
}
