package util

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashPassword(t *testing.T) {
	hash, err := HashPassword("shaken2024")
	require.NoError(t, err)
	assert.NotEmpty(t, hash)
	assert.NotEqual(t, "shaken2024", hash)

	// Same password hashes to a different value each time (random salt)
	hash2, err := HashPassword("shaken2024")
	require.NoError(t, err)
	assert.NotEqual(t, hash, hash2)
}

func TestVerifyPassword(t *testing.T) {
	hash, err := HashPassword("shaken2024")
	require.NoError(t, err)

	assert.True(t, VerifyPassword(hash, "shaken2024"))
	assert.False(t, VerifyPassword(hash, "wrong-password"))
	assert.False(t, VerifyPassword(hash, ""))
}

func TestIsHashed(t *testing.T) {
	hash, err := HashPassword("shaken2024")
	require.NoError(t, err)

	assert.True(t, IsHashed(hash))
	assert.False(t, IsHashed("shaken2024"))
	assert.False(t, IsHashed(""))
}
