package bulkcrypto

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDeriveSessionKey_IsRandomPerCall(t *testing.T) {
	k1, err := DeriveSessionKey()
	require.NoError(t, err)
	k2, err := DeriveSessionKey()
	require.NoError(t, err)
	assert.NotEqual(t, k1, k2)
	assert.NotZero(t, k1)
}

func TestDerivePassphraseKey_SameInputsSameOutput(t *testing.T) {
	salt := []byte("0123456789abcdef")
	a := derivePassphraseKey("my-passphrase", salt, 1000)
	b := derivePassphraseKey("my-passphrase", salt, 1000)
	assert.Equal(t, a, b)

	c := derivePassphraseKey("different", salt, 1000)
	assert.NotEqual(t, a, c)
}
