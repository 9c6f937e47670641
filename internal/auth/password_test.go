package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashAndCheckPassword(t *testing.T) {
	digest, err := HashPassword("Secret123")
	require.NoError(t, err)
	assert.NotEqual(t, "Secret123", digest)

	assert.True(t, CheckPassword("Secret123", digest))
	assert.False(t, CheckPassword("wrong", digest))
}

func TestHashPasswordEmpty(t *testing.T) {
	_, err := HashPassword("")
	assert.Error(t, err)
}

func TestHashPasswordSalted(t *testing.T) {
	a, err := HashPassword("Secret123")
	require.NoError(t, err)
	b, err := HashPassword("Secret123")
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
}
