package encryption_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/superherotang/clip/internal/encryption"
)

func newTestCipher(t *testing.T) *encryption.Cipher {
	t.Helper()
	c, err := encryption.New("test-passphrase")
	require.NoError(t, err)
	return c
}

func TestNew_EmptyPassphrase(t *testing.T) {
	_, err := encryption.New("")
	assert.Error(t, err)
}

func TestCipher_RoundTrip(t *testing.T) {
	c := newTestCipher(t)

	cases := []string{
		"hello",
		"",
		"{looks like json",
		"[1,2,3]",
		"multi\nline\ncontent with unicode: 你好",
	}
	for _, plaintext := range cases {
		ciphertext, err := c.Encrypt(plaintext)
		require.NoError(t, err)
		assert.Equal(t, plaintext, c.Decrypt(ciphertext), "round trip of %q", plaintext)
	}
}

func TestCipher_EncryptIsNotPlaintext(t *testing.T) {
	c := newTestCipher(t)

	ciphertext, err := c.Encrypt("secret note")
	require.NoError(t, err)
	assert.NotEqual(t, "secret note", ciphertext)

	// Nonces are random, so encrypting twice differs.
	second, err := c.Encrypt("secret note")
	require.NoError(t, err)
	assert.NotEqual(t, ciphertext, second)
}

func TestCipher_DecryptPassthrough(t *testing.T) {
	c := newTestCipher(t)

	// Legacy plaintext and file paths are not valid ciphertext and must
	// come back unchanged.
	assert.Equal(t, "plain old note", c.Decrypt("plain old note"))
	assert.Equal(t, "/uploads/3/abc.png", c.Decrypt("/uploads/3/abc.png"))
	assert.Equal(t, "", c.Decrypt(""))
}

func TestCipher_DecryptTamperedPassthrough(t *testing.T) {
	c := newTestCipher(t)

	ciphertext, err := c.Encrypt("hello")
	require.NoError(t, err)

	// Flip one byte of the base64 text; authentication fails and the
	// input comes back unchanged.
	tampered := []byte(ciphertext)
	if tampered[len(tampered)-3] == 'A' {
		tampered[len(tampered)-3] = 'B'
	} else {
		tampered[len(tampered)-3] = 'A'
	}
	assert.Equal(t, string(tampered), c.Decrypt(string(tampered)))
}

func TestCipher_DecryptWrongKeyPassthrough(t *testing.T) {
	c := newTestCipher(t)
	other, err := encryption.New("different-passphrase")
	require.NoError(t, err)

	ciphertext, err := c.Encrypt("hello")
	require.NoError(t, err)
	assert.Equal(t, ciphertext, other.Decrypt(ciphertext))
}

func TestCipher_ObjectRoundTrip(t *testing.T) {
	c := newTestCipher(t)

	meta := map[string]any{
		"originalName": "report.pdf",
		"mimeType":     "application/pdf",
		"size":         float64(10240),
	}
	ciphertext, err := c.EncryptObject(meta)
	require.NoError(t, err)

	var out map[string]any
	require.True(t, c.DecryptObject(ciphertext, &out))
	assert.Equal(t, meta, out)
}

func TestCipher_DecryptObjectLegacyPlainJSON(t *testing.T) {
	c := newTestCipher(t)

	// Metadata written before encryption was introduced is plain JSON.
	var out map[string]any
	require.True(t, c.DecryptObject(`{"originalName":"a.txt","size":12}`, &out))
	assert.Equal(t, "a.txt", out["originalName"])
	assert.Equal(t, float64(12), out["size"])

	var list []any
	require.True(t, c.DecryptObject(`[1,2]`, &list))
	assert.Len(t, list, 2)
}

func TestCipher_DecryptObjectGarbage(t *testing.T) {
	c := newTestCipher(t)

	var out map[string]any
	assert.False(t, c.DecryptObject("", &out))
	assert.False(t, c.DecryptObject("not json at all", &out))
	assert.False(t, c.DecryptObject("{broken", &out))
}
