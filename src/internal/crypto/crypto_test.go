package crypto

import (
	"encoding/hex"
	"letterdesk-admin-svc/src/internal/models"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateToken(t *testing.T) {
	tc := New(Config{Secret: "test-secret"})

	token, err := tc.GenerateToken(32)
	require.NoError(t, err)
	assert.Len(t, token, 64)

	raw, err := hex.DecodeString(token)
	require.NoError(t, err)
	assert.Len(t, raw, 32)

	other, err := tc.GenerateToken(32)
	require.NoError(t, err)
	assert.NotEqual(t, token, other)
}

func TestGenerateTokenDefaultSize(t *testing.T) {
	tc := New(Config{Secret: "test-secret"})

	token, err := tc.GenerateToken(0)
	require.NoError(t, err)
	assert.Len(t, token, DefaultTokenSize*2)
}

func TestHashIsDeterministicAndOneWay(t *testing.T) {
	tc := New(Config{Secret: "test-secret"})

	h1 := tc.Hash("some-raw-token")
	h2 := tc.Hash("some-raw-token")
	assert.Equal(t, h1, h2)
	assert.Len(t, h1, 64)
	assert.NotEqual(t, h1, tc.Hash("some-raw-tokem"))
	assert.NotContains(t, h1, "some-raw-token")
}

func TestSignVerifyRoundTrip(t *testing.T) {
	tc := New(Config{Secret: "test-secret"})

	sig, err := tc.Sign("raw-token")
	require.NoError(t, err)

	ok, err := tc.Verify("raw-token", sig)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestVerifyRejectsTamperedSignature(t *testing.T) {
	tc := New(Config{Secret: "test-secret"})

	sig, err := tc.Sign("raw-token")
	require.NoError(t, err)

	// Flip a single hex character anywhere in the signature.
	for i := 0; i < len(sig); i += 16 {
		tampered := []byte(sig)
		if tampered[i] == 'a' {
			tampered[i] = 'b'
		} else {
			tampered[i] = 'a'
		}
		ok, err := tc.Verify("raw-token", string(tampered))
		require.NoError(t, err)
		assert.False(t, ok, "tampered signature at index %d must not verify", i)
	}
}

func TestVerifyRejectsWrongToken(t *testing.T) {
	tc := New(Config{Secret: "test-secret"})

	sig, err := tc.Sign("raw-token")
	require.NoError(t, err)

	ok, err := tc.Verify("other-token", sig)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestVerifyRejectsNonHexSignature(t *testing.T) {
	tc := New(Config{Secret: "test-secret"})

	ok, err := tc.Verify("raw-token", "not-hex!!")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestDifferentSecretsProduceDifferentSignatures(t *testing.T) {
	a := New(Config{Secret: "secret-a"})
	b := New(Config{Secret: "secret-b"})

	sigA, err := a.Sign("raw-token")
	require.NoError(t, err)

	ok, err := b.Verify("raw-token", sigA)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestMissingSecretFailsClosed(t *testing.T) {
	tc := New(Config{})
	assert.False(t, tc.Configured())

	_, err := tc.Sign("raw-token")
	assert.ErrorIs(t, err, models.ErrMissingSecret)

	ok, err := tc.Verify("raw-token", "deadbeef")
	assert.ErrorIs(t, err, models.ErrMissingSecret)
	assert.False(t, ok)
}
