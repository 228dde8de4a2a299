package domain

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "github.com/learningeconomy/consentflow/pkg/domain-errors"
)

func TestParseProfileID(t *testing.T) {
	t.Run("valid UUID parses", func(t *testing.T) {
		raw := uuid.New().String()
		id, err := ParseProfileID(raw)
		require.NoError(t, err)
		assert.Equal(t, raw, id.String())
		assert.False(t, id.IsNil())
	})

	t.Run("empty string is invalid input", func(t *testing.T) {
		_, err := ParseProfileID("")
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})

	t.Run("malformed UUID is invalid input", func(t *testing.T) {
		_, err := ParseProfileID("not-a-uuid")
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})

	t.Run("nil UUID parses but reports IsNil", func(t *testing.T) {
		id, err := ParseProfileID(uuid.Nil.String())
		require.NoError(t, err)
		assert.True(t, id.IsNil())
	})
}

func TestParseContractURI(t *testing.T) {
	t.Run("opaque URI passes through", func(t *testing.T) {
		uri, err := ParseContractURI("lc:network:contracts/abc123")
		require.NoError(t, err)
		assert.Equal(t, "lc:network:contracts/abc123", uri.String())
	})

	t.Run("blank URI rejected", func(t *testing.T) {
		_, err := ParseContractURI("   ")
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})

	t.Run("embedded whitespace rejected", func(t *testing.T) {
		_, err := ParseContractURI("lc:network contracts")
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})
}

func TestProfileTypeForBirthDate(t *testing.T) {
	birthDate := time.Date(2000, 1, 15, 0, 0, 0, 0, time.UTC)

	t.Run("exactly 18th birthday is adult", func(t *testing.T) {
		now := time.Date(2018, 1, 15, 0, 0, 0, 0, time.UTC)
		assert.Equal(t, ProfileTypeAdult, ProfileTypeForBirthDate(birthDate, now))
	})

	t.Run("day before 18th birthday is child", func(t *testing.T) {
		now := time.Date(2018, 1, 14, 23, 59, 59, 0, time.UTC)
		assert.Equal(t, ProfileTypeChild, ProfileTypeForBirthDate(birthDate, now))
	})

	t.Run("leap-day birth date resolves on Mar 1 of non-leap year", func(t *testing.T) {
		leapBirth := time.Date(2004, 2, 29, 0, 0, 0, 0, time.UTC)
		mar1 := time.Date(2022, 3, 1, 0, 0, 0, 0, time.UTC)
		assert.Equal(t, ProfileTypeAdult, ProfileTypeForBirthDate(leapBirth, mar1))
		feb28 := time.Date(2022, 2, 28, 0, 0, 0, 0, time.UTC)
		assert.Equal(t, ProfileTypeChild, ProfileTypeForBirthDate(leapBirth, feb28))
	})
}
