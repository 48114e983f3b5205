package crypt

import (
	"testing"

	"github.com/gicsdb/gics/errs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSealOpenRoundTrip(t *testing.T) {
	salt, err := RandomSalt()
	require.NoError(t, err)
	fileNonce, err := RandomFileNonce()
	require.NoError(t, err)

	key := DeriveKey("hunter2", salt, 1000)
	nonce := SectionNonce(key, fileNonce, 20, 3)

	plaintext := []byte("compressed stream section payload")
	ciphertext, err := Seal(key, nonce, plaintext)
	require.NoError(t, err)
	assert.NotEqual(t, plaintext, ciphertext)

	decrypted, err := Open(key, nonce, ciphertext)
	require.NoError(t, err)
	assert.Equal(t, plaintext, decrypted)
}

func TestOpenRejectsTamperedCiphertext(t *testing.T) {
	salt, _ := RandomSalt()
	fileNonce, _ := RandomFileNonce()
	key := DeriveKey("hunter2", salt, 1000)
	nonce := SectionNonce(key, fileNonce, 20, 3)

	ciphertext, err := Seal(key, nonce, []byte("some payload"))
	require.NoError(t, err)
	ciphertext[0] ^= 0xFF

	_, err = Open(key, nonce, ciphertext)
	require.Error(t, err)
	var ge *errs.Error
	require.ErrorAs(t, err, &ge)
	assert.Equal(t, errs.KindIntegrity, ge.Kind)
}

func TestSectionNonceDeterministic(t *testing.T) {
	var fileNonce [FileNonceSize]byte
	for i := range fileNonce {
		fileNonce[i] = byte(i)
	}
	key := DeriveKey("pw", [SaltSize]byte{1}, 1000)

	n1 := SectionNonce(key, fileNonce, format_streamValue, 5)
	n2 := SectionNonce(key, fileNonce, format_streamValue, 5)
	assert.Equal(t, n1, n2)

	n3 := SectionNonce(key, fileNonce, format_streamValue, 6)
	assert.NotEqual(t, n1, n3)

	n4 := SectionNonce(key, fileNonce, format_streamTime, 5)
	assert.NotEqual(t, n1, n4)
}

const (
	format_streamValue = 20
	format_streamTime   = 10
)

func TestVerifyPasswordConstantTime(t *testing.T) {
	key := DeriveKey("correct-horse", [SaltSize]byte{9}, 1000)
	verify := AuthVerifier(key)

	wrongKey := DeriveKey("wrong-password", [SaltSize]byte{9}, 1000)
	wrongVerify := AuthVerifier(wrongKey)

	assert.True(t, VerifyPassword(verify, verify))
	assert.False(t, VerifyPassword(wrongVerify, verify))
}

func TestDeriveKeyDeterministic(t *testing.T) {
	salt, _ := RandomSalt()
	k1 := DeriveKey("pw", salt, 2000)
	k2 := DeriveKey("pw", salt, 2000)
	assert.Equal(t, k1, k2)

	k3 := DeriveKey("other", salt, 2000)
	assert.NotEqual(t, k1, k3)
}
