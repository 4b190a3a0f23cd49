package identity

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestPurpose: Validates the Argon2id round trip: a hashed password verifies, a wrong one does not, and the hash is salted.
// Scope: Unit Test
// Security: Credential Storage (OWASP password storage)
// Expected: Verify(password) is true, Verify(other) is false, two hashes of the same password differ.
func TestIdentity_Hasher_RoundTrip(t *testing.T) {
	hasher := DefaultHasher()

	hash, err := hasher.Hash("correct horse battery staple")
	require.NoError(t, err)
	assert.Contains(t, hash, "$argon2id$")

	ok, err := hasher.Verify("correct horse battery staple", hash)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = hasher.Verify("Tr0ub4dor&3", hash)
	require.NoError(t, err)
	assert.False(t, ok)

	again, err := hasher.Hash("correct horse battery staple")
	require.NoError(t, err)
	assert.NotEqual(t, hash, again, "salts must differ per hash")
}

func TestIdentity_Hasher_RejectsMalformedHash(t *testing.T) {
	hasher := DefaultHasher()

	for _, bad := range []string{"", "plaintext", "$argon2id$v=19$m=65536", "$bcrypt$x$y$z$w"} {
		_, err := hasher.Verify("anything", bad)
		assert.Error(t, err, "hash %q should be rejected", bad)
	}
}
