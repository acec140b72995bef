package cryptox

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestEncryptDecryptSecret(t *testing.T) {
	ResetMasterKeyForTesting()
	t.Cleanup(ResetMasterKeyForTesting)
	t.Setenv(MasterKeyEnv, "test-master-key")

	secret := []byte("scope-signing-secret")

	sealed, err := EncryptSecret(secret)
	require.NoError(t, err)
	require.NotContains(t, string(sealed), string(secret))

	opened, err := DecryptSecret(sealed)
	require.NoError(t, err)
	require.Equal(t, secret, opened)

	t.Run("nonce differs per call", func(t *testing.T) {
		again, err := EncryptSecret(secret)
		require.NoError(t, err)
		require.NotEqual(t, sealed, again)
	})

	t.Run("tampered ciphertext fails", func(t *testing.T) {
		bad := append([]byte(nil), sealed...)
		bad[len(bad)-1] ^= 0xff
		_, err := DecryptSecret(bad)
		require.Error(t, err)
	})

	t.Run("short ciphertext fails", func(t *testing.T) {
		_, err := DecryptSecret([]byte("short"))
		require.ErrorIs(t, err, ErrCiphertextTooShort)
	})
}

func TestMasterKeyFromFile(t *testing.T) {
	ResetMasterKeyForTesting()
	t.Cleanup(ResetMasterKeyForTesting)

	path := filepath.Join(t.TempDir(), "master.key")
	require.NoError(t, os.WriteFile(path, []byte("file-key\n"), 0o600))
	SetMasterKeyPath(path)

	sealed, err := EncryptSecret([]byte("s"))
	require.NoError(t, err)

	// Same material through the env var derives the same key.
	ResetMasterKeyForTesting()
	t.Setenv(MasterKeyEnv, "file-key")
	opened, err := DecryptSecret(sealed)
	require.NoError(t, err)
	require.Equal(t, []byte("s"), opened)

	t.Run("different key cannot open", func(t *testing.T) {
		ResetMasterKeyForTesting()
		t.Setenv(MasterKeyEnv, "other-key")
		_, err := DecryptSecret(sealed)
		require.Error(t, err)
	})
}

func TestMasterKeyMissingFile(t *testing.T) {
	ResetMasterKeyForTesting()
	t.Cleanup(ResetMasterKeyForTesting)

	SetMasterKeyPath(filepath.Join(t.TempDir(), "absent.key"))
	_, err := EncryptSecret([]byte("s"))
	require.Error(t, err)
}
