// Package fieldcipher seals single PII strings at rest.
//
// Ciphertext format: "enc:v1:" + base64url(nonce | sealed), where sealed is the
// XChaCha20-Poly1305 output over the plaintext. The marker prefix is what makes
// Encrypt idempotent and lets Decrypt pass legacy cleartext through untouched.
package fieldcipher

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/chacha20poly1305"
)

// Prefix marks a value as ciphertext.
const Prefix = "enc:v1:"

// Unavailable is shown in place of a field whose ciphertext cannot be opened.
const Unavailable = "[unavailable: decryption failed]"

// KeySize is the required key length in bytes.
const KeySize = chacha20poly1305.KeySize

// ErrDecrypt reports a well-formed ciphertext that failed authentication,
// typically a key mismatch.
var ErrDecrypt = errors.New("field decryption failed")

var encoding = base64.RawURLEncoding

// Cipher encrypts and decrypts individual field values. It is safe for
// concurrent use.
type Cipher struct {
	aead interface {
		NonceSize() int
		Seal(dst, nonce, plaintext, additionalData []byte) []byte
		Open(dst, nonce, ciphertext, additionalData []byte) ([]byte, error)
	}
}

// New builds a Cipher from a raw 32-byte key.
func New(key []byte) (*Cipher, error) {
	if len(key) != KeySize {
		return nil, fmt.Errorf("field cipher key must be %d bytes, got %d", KeySize, len(key))
	}
	aead, err := chacha20poly1305.NewX(key)
	if err != nil {
		return nil, fmt.Errorf("init field cipher: %w", err)
	}
	return &Cipher{aead: aead}, nil
}

// NewFromBase64 builds a Cipher from a standard or URL-safe base64 key.
func NewFromBase64(encoded string) (*Cipher, error) {
	key, err := DecodeKey(encoded)
	if err != nil {
		return nil, err
	}
	return New(key)
}

// DecodeKey parses a base64 key and checks its length.
func DecodeKey(encoded string) ([]byte, error) {
	encoded = strings.TrimSpace(encoded)
	if encoded == "" {
		return nil, errors.New("field cipher key is empty")
	}
	for _, enc := range []*base64.Encoding{base64.StdEncoding, base64.URLEncoding, base64.RawStdEncoding, base64.RawURLEncoding} {
		if key, err := enc.DecodeString(encoded); err == nil {
			if len(key) != KeySize {
				return nil, fmt.Errorf("field cipher key must decode to %d bytes, got %d", KeySize, len(key))
			}
			return key, nil
		}
	}
	return nil, errors.New("field cipher key is not valid base64")
}

// IsEncrypted reports whether v carries the ciphertext marker.
func IsEncrypted(v string) bool {
	return strings.HasPrefix(v, Prefix)
}

// Encrypt seals plaintext. Empty input and values already carrying the marker
// are returned unchanged.
func (c *Cipher) Encrypt(plaintext string) (string, error) {
	if plaintext == "" || IsEncrypted(plaintext) {
		return plaintext, nil
	}
	nonce := make([]byte, c.aead.NonceSize(), c.aead.NonceSize()+len(plaintext)+chacha20poly1305.Overhead)
	if _, err := rand.Read(nonce); err != nil {
		return "", fmt.Errorf("generate nonce: %w", err)
	}
	sealed := c.aead.Seal(nonce, nonce, []byte(plaintext), nil)
	return Prefix + encoding.EncodeToString(sealed), nil
}

// Decrypt opens a value produced by Encrypt. Values without the marker, or
// whose body is not decodable ciphertext, are returned unchanged so legacy
// cleartext rows keep working. Authentication failure returns ErrDecrypt.
func (c *Cipher) Decrypt(v string) (string, error) {
	if !IsEncrypted(v) {
		return v, nil
	}
	raw, err := encoding.DecodeString(strings.TrimPrefix(v, Prefix))
	if err != nil || len(raw) < c.aead.NonceSize()+chacha20poly1305.Overhead {
		return v, nil
	}
	nonce, sealed := raw[:c.aead.NonceSize()], raw[c.aead.NonceSize():]
	plain, err := c.aead.Open(nil, nonce, sealed, nil)
	if err != nil {
		return "", ErrDecrypt
	}
	return string(plain), nil
}
