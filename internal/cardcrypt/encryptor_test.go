package cardcrypt

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewEncryptor_KeyLength(t *testing.T) {
	for _, n := range []int{16, 24, 32} {
		_, err := NewEncryptor(bytes.Repeat([]byte("k"), n))
		assert.NoError(t, err, "key length %d", n)
	}
	for _, n := range []int{0, 15, 17, 31, 33} {
		_, err := NewEncryptor(bytes.Repeat([]byte("k"), n))
		assert.ErrorIs(t, err, ErrInvalidKeyLength, "key length %d", n)
	}
}

func TestEncryptor_RoundTrip(t *testing.T) {
	enc, err := NewEncryptor([]byte("0123456789abcdef0123456789abcdef"))
	require.NoError(t, err)

	number := "4111111111111111"
	first, err := enc.Encrypt(number)
	require.NoError(t, err)
	second, err := enc.Encrypt(number)
	require.NoError(t, err)

	assert.NotEqual(t, first, second, "random IV should make ciphertexts differ")
	assert.NotContains(t, first, number)

	plain, err := enc.Decrypt(first)
	require.NoError(t, err)
	assert.Equal(t, number, plain)
}

func TestEncryptor_BlockAlignedInput(t *testing.T) {
	enc, err := NewEncryptor([]byte("0123456789abcdef"))
	require.NoError(t, err)

	in := strings.Repeat("1", 32)
	ct, err := enc.Encrypt(in)
	require.NoError(t, err)
	out, err := enc.Decrypt(ct)
	require.NoError(t, err)
	assert.Equal(t, in, out)
}

func TestEncryptor_Errors(t *testing.T) {
	enc, err := NewEncryptor([]byte("0123456789abcdef"))
	require.NoError(t, err)

	_, err = enc.Encrypt("")
	assert.ErrorIs(t, err, ErrEmptyInput)

	_, err = enc.Decrypt("")
	assert.ErrorIs(t, err, ErrEmptyInput)

	_, err = enc.Decrypt("%%%not-base64%%%")
	assert.ErrorIs(t, err, ErrMalformedCiphertext)

	_, err = enc.Decrypt("c2hvcnQ=")
	assert.ErrorIs(t, err, ErrMalformedCiphertext)

	other, err := NewEncryptor([]byte("fedcba9876543210"))
	require.NoError(t, err)
	ct, err := enc.Encrypt("4111111111111111")
	require.NoError(t, err)
	if plain, err := other.Decrypt(ct); err == nil {
		assert.NotEqual(t, "4111111111111111", plain)
	}
}
