// Package encryption provides the at-rest cipher for clipboard content.
//
// The service went from storing plaintext to storing ciphertext without
// a migration, so every read path has to tolerate both encodings:
// Decrypt returns its input unchanged whenever the input is not valid
// ciphertext. File and image items route their clear storage paths
// through the same helper and rely on this passthrough.
package encryption

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strings"
)

// Cipher encrypts and decrypts text payloads with AES-256-GCM. The key
// is derived from a single process-wide passphrase; there is no
// per-record key management.
type Cipher struct {
	aead cipher.AEAD
}

// New derives the AES key from the passphrase (SHA-256) and builds the
// AEAD. The passphrase comes from configuration and is read-only after
// startup.
func New(passphrase string) (*Cipher, error) {
	if passphrase == "" {
		return nil, fmt.Errorf("encryption passphrase cannot be empty")
	}
	key := sha256.Sum256([]byte(passphrase))
	block, err := aes.NewCipher(key[:])
	if err != nil {
		return nil, fmt.Errorf("failed to create cipher: %w", err)
	}
	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("failed to create GCM: %w", err)
	}
	return &Cipher{aead: aead}, nil
}

// Encrypt seals the plaintext with a fresh random nonce and returns
// base64(nonce || ciphertext).
func (c *Cipher) Encrypt(plaintext string) (string, error) {
	nonce := make([]byte, c.aead.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return "", fmt.Errorf("failed to generate nonce: %w", err)
	}
	sealed := c.aead.Seal(nonce, nonce, []byte(plaintext), nil)
	return base64.StdEncoding.EncodeToString(sealed), nil
}

// Decrypt attempts to open s as ciphertext. On any failure — not
// base64, too short, authentication failure — it returns s unchanged.
// Content written before encryption was introduced, and the clear
// storage paths of file/image items, round-trip safely this way.
func (c *Cipher) Decrypt(s string) string {
	raw, err := base64.StdEncoding.DecodeString(s)
	if err != nil || len(raw) < c.aead.NonceSize() {
		return s
	}
	nonce, sealed := raw[:c.aead.NonceSize()], raw[c.aead.NonceSize():]
	plain, err := c.aead.Open(nil, nonce, sealed, nil)
	if err != nil {
		return s
	}
	return string(plain)
}

// EncryptObject JSON-serializes v and encrypts the result.
func (c *Cipher) EncryptObject(v any) (string, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("failed to marshal object: %w", err)
	}
	return c.Encrypt(string(data))
}

// DecryptObject decodes s into out, handling both encrypted and legacy
// plain-JSON input. If the decrypted text looks like JSON it is parsed;
// otherwise the raw input is parsed directly. Returns false — never an
// error — when neither form parses.
func (c *Cipher) DecryptObject(s string, out any) bool {
	if s == "" {
		return false
	}
	decrypted := c.Decrypt(s)
	if strings.HasPrefix(decrypted, "{") || strings.HasPrefix(decrypted, "[") {
		return json.Unmarshal([]byte(decrypted), out) == nil
	}
	return json.Unmarshal([]byte(s), out) == nil
}
