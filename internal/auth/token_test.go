package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIssueAndVerify(t *testing.T) {
	tokens := NewTokens("test-secret", time.Hour)

	signed, err := tokens.Issue("user-123")
	require.NoError(t, err)
	require.NotEmpty(t, signed)

	userID, err := tokens.Verify(signed)
	require.NoError(t, err)
	assert.Equal(t, "user-123", userID)
}

func TestVerifyExpired(t *testing.T) {
	tokens := NewTokens("test-secret", -time.Minute)

	signed, err := tokens.Issue("user-123")
	require.NoError(t, err)

	_, err = tokens.Verify(signed)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerifyWrongSecret(t *testing.T) {
	signed, err := NewTokens("secret-a", time.Hour).Issue("user-123")
	require.NoError(t, err)

	_, err = NewTokens("secret-b", time.Hour).Verify(signed)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerifyGarbage(t *testing.T) {
	tokens := NewTokens("test-secret", time.Hour)

	for _, tok := range []string{"", "not-a-token", "a.b.c"} {
		if _, err := tokens.Verify(tok); err == nil {
			t.Fatalf("expected error for token %q", tok)
		}
	}
}
