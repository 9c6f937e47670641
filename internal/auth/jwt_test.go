package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret-key-at-least-32-chars-long"

func TestIssueAndVerify(t *testing.T) {
	s := NewTokenService(testSecret, time.Hour)

	token, err := s.Issue(42)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	userID, err := s.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, uint(42), userID)
}

func TestVerifyExpiredToken(t *testing.T) {
	s := NewTokenService(testSecret, -time.Minute)

	token, err := s.Issue(42)
	require.NoError(t, err)

	_, err = s.Verify(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerifyWrongSecret(t *testing.T) {
	issuer := NewTokenService(testSecret, time.Hour)
	verifier := NewTokenService("another-secret-also-32-chars-long!!", time.Hour)

	token, err := issuer.Issue(7)
	require.NoError(t, err)

	_, err = verifier.Verify(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerifyGarbage(t *testing.T) {
	s := NewTokenService(testSecret, time.Hour)

	for _, tokenStr := range []string{"", "not-a-token", "a.b.c"} {
		_, err := s.Verify(tokenStr)
		assert.ErrorIs(t, err, ErrInvalidToken, "token %q", tokenStr)
	}
}
