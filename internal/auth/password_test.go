package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestHashAndCompare(t *testing.T) {
	hashed, err := HashPassword("s3cret", bcrypt.MinCost)
	require.NoError(t, err)
	assert.NotEqual(t, "s3cret", hashed)
	assert.True(t, isBcryptHash(hashed))

	assert.NoError(t, ComparePassword(hashed, "s3cret"))
	assert.ErrorIs(t, ComparePassword(hashed, "wrong"), ErrPasswordMismatch)
}

func TestHashPasswordClampsCost(t *testing.T) {
	hashed, err := HashPassword("pw", 99)
	require.NoError(t, err)
	cost, err := bcrypt.Cost([]byte(hashed))
	require.NoError(t, err)
	assert.Equal(t, bcrypt.DefaultCost, cost)
}

func TestComparePasswordLegacyPlaintext(t *testing.T) {
	assert.NoError(t, ComparePassword("plain-old", "plain-old"))
	assert.ErrorIs(t, ComparePassword("plain-old", "plain-ol"), ErrPasswordMismatch)
	assert.ErrorIs(t, ComparePassword("", "x"), ErrPasswordMismatch)
}

func TestConstantTimeEqual(t *testing.T) {
	assert.True(t, ConstantTimeEqual("admin", "admin"))
	assert.False(t, ConstantTimeEqual("admin", "Admin"))
}
