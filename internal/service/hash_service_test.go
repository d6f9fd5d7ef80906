package service

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestArgon2HashService_HashAndVerify(t *testing.T) {
	svc := NewArgon2HashService()

	credential := "a3f1c9d2e8b74456aa10cc934477de21"
	hash, err := svc.Hash(credential)
	require.NoError(t, err)
	assert.NotEmpty(t, hash)

	// Format check
	assert.True(t, strings.HasPrefix(hash, "$argon2id$v="), "hash should start with $argon2id$v=")

	match, err := svc.Verify(credential, hash)
	require.NoError(t, err)
	assert.True(t, match, "correct credential should verify")
}

func TestArgon2HashService_VerifyWrongCredential(t *testing.T) {
	svc := NewArgon2HashService()

	hash, err := svc.Hash("correct-credential")
	require.NoError(t, err)

	match, err := svc.Verify("wrong-credential", hash)
	require.NoError(t, err)
	assert.False(t, match, "wrong credential should not verify")
}

func TestArgon2HashService_UniqueSalts(t *testing.T) {
	svc := NewArgon2HashService()

	hash1, err := svc.Hash("same-credential")
	require.NoError(t, err)

	hash2, err := svc.Hash("same-credential")
	require.NoError(t, err)

	assert.NotEqual(t, hash1, hash2, "same credential should produce different hashes (different salts)")
}

func TestArgon2HashService_MalformedHash(t *testing.T) {
	svc := NewArgon2HashService()

	_, err := svc.Verify("anything", "$bcrypt$not-argon2")
	assert.Error(t, err)

	_, err = svc.Verify("anything", "plain-garbage")
	assert.Error(t, err)
}
