package crypto

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testParams = Params{N: 1 << 10, R: 8, P: 1}

func TestEncryptDecrypt(t *testing.T) {
	plaintext := []byte(`{"solana_wallet_public":"abc"}`)

	file, err := Encrypt(plaintext, []byte("dev"), testParams)
	require.NoError(t, err)
	assert.Equal(t, 1<<10, file.N)
	assert.NotContains(t, file.CipherText, "solana_wallet_public")

	out, err := Decrypt(file, []byte("dev"))
	require.NoError(t, err)
	assert.Equal(t, plaintext, out)
}

func TestDecryptWrongPassword(t *testing.T) {
	file, err := Encrypt([]byte("secret"), []byte("right"), testParams)
	require.NoError(t, err)

	_, err = Decrypt(file, []byte("wrong"))
	assert.ErrorIs(t, err, ErrInvalidPassword)
}

func TestEmptyPassword(t *testing.T) {
	_, err := Encrypt([]byte("secret"), nil, testParams)
	assert.ErrorIs(t, err, ErrEmptyPassword)
}

func TestEncryptUsesFreshNonce(t *testing.T) {
	a, err := Encrypt([]byte("same"), []byte("pw"), testParams)
	require.NoError(t, err)
	b, err := Encrypt([]byte("same"), []byte("pw"), testParams)
	require.NoError(t, err)

	assert.NotEqual(t, a.Nonce, b.Nonce)
	assert.NotEqual(t, a.CipherText, b.CipherText)
}

func TestSealerKeepsSaltAcrossWrites(t *testing.T) {
	s, err := NewSealer([]byte("pw"), testParams)
	require.NoError(t, err)

	first, err := s.Seal([]byte("v1"))
	require.NoError(t, err)
	second, err := s.Seal([]byte("v2"))
	require.NoError(t, err)
	assert.Equal(t, first.Salt, second.Salt)

	reopened, plaintext, err := OpenSealer(second, []byte("pw"))
	require.NoError(t, err)
	assert.Equal(t, []byte("v2"), plaintext)

	third, err := reopened.Seal([]byte("v3"))
	require.NoError(t, err)
	out, err := Decrypt(third, []byte("pw"))
	require.NoError(t, err)
	assert.Equal(t, []byte("v3"), out)
}
