package security

import (
	"strings"
	"testing"

	"github.com/storefrontlabs/storefront-backend/pkg/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testPasswordConfig() config.PasswordConfig {
	return config.PasswordConfig{
		ArgonMemoryKB:    8192,
		ArgonTime:        1,
		ArgonParallelism: 1,
		ArgonSaltLen:     16,
		ArgonKeyLen:      32,
	}
}

func TestHashAndVerifyRoundTrip(t *testing.T) {
	encoded, err := HashPassword("hunter2hunter2", testPasswordConfig())
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(encoded, "$argon2id$v=19$"))

	ok, err := VerifyPassword("hunter2hunter2", encoded)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestVerifyRejectsWrongPassword(t *testing.T) {
	encoded, err := HashPassword("hunter2hunter2", testPasswordConfig())
	require.NoError(t, err)

	ok, err := VerifyPassword("not-the-password", encoded)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestHashesAreSalted(t *testing.T) {
	first, err := HashPassword("hunter2hunter2", testPasswordConfig())
	require.NoError(t, err)
	second, err := HashPassword("hunter2hunter2", testPasswordConfig())
	require.NoError(t, err)
	assert.NotEqual(t, first, second)
}

func TestHashRejectsEmptyPassword(t *testing.T) {
	_, err := HashPassword("", testPasswordConfig())
	require.Error(t, err)
}

func TestVerifyRejectsMalformedHash(t *testing.T) {
	cases := []string{
		"",
		"plaintext",
		"$argon2i$v=19$m=8192,t=1,p=1$c2FsdA$aGFzaA",
		"$argon2id$v=19$m=8192,t=1,p=1$not-base64!$aGFzaA",
		"$argon2id$v=19$m=bad,t=1,p=1$c2FsdA$aGFzaA",
	}
	for _, encoded := range cases {
		_, err := VerifyPassword("whatever", encoded)
		assert.ErrorIs(t, err, ErrInvalidHash, "hash %q", encoded)
	}
}

func TestParamsAreClampedIntoSaneRange(t *testing.T) {
	params := paramsFromConfig(config.PasswordConfig{})
	assert.GreaterOrEqual(t, params.Memory, uint32(8))
	assert.GreaterOrEqual(t, params.Time, uint32(1))
	assert.GreaterOrEqual(t, params.Parallelism, uint8(1))
	assert.GreaterOrEqual(t, params.SaltLen, uint32(8))
	assert.GreaterOrEqual(t, params.KeyLen, uint32(16))
}
