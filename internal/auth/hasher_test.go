package auth_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/odyssey-erp/gatehouse/internal/auth"
)

func TestBcryptHasherRoundTrip(t *testing.T) {
	h := auth.NewBcryptHasher(bcrypt.MinCost)

	first, err := h.Hash("secret123")
	require.NoError(t, err)
	second, err := h.Hash("secret123")
	require.NoError(t, err)
	assert.NotEqual(t, first, second, "hashes must be salted")

	ok, err := h.Compare("secret123", first)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = h.Compare("secret124", first)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestBcryptHasherMalformedHash(t *testing.T) {
	h := auth.NewBcryptHasher(bcrypt.MinCost)

	ok, err := h.Compare("secret123", "not-a-hash")
	assert.False(t, ok)
	assert.Error(t, err)
}

func TestBcryptHasherCost(t *testing.T) {
	assert.Equal(t, auth.DefaultCost, auth.NewBcryptHasher(0).Cost())
	assert.Equal(t, auth.DefaultCost, auth.NewBcryptHasher(99).Cost())
	assert.Equal(t, bcrypt.MinCost, auth.NewBcryptHasher(bcrypt.MinCost).Cost())

	hashed, err := auth.NewBcryptHasher(5).Hash("secret123")
	require.NoError(t, err)
	cost, err := bcrypt.Cost([]byte(hashed))
	require.NoError(t, err)
	assert.Equal(t, 5, cost)
}
