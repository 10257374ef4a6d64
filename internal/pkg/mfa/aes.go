package mfa

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/binary"
	"errors"
	"fmt"
)

var (
	ErrEncryptorNotConfigured       = errors.New("mfa: encryptor not configured")
	ErrPlaintextEmpty               = errors.New("mfa: plaintext is empty")
	ErrInvalidKeyLength             = errors.New("mfa: invalid key length")
	ErrCiphertextTooShort           = errors.New("mfa: ciphertext too short")
	ErrUnsupportedCiphertextVersion = errors.New("mfa: unsupported ciphertext version")
	// ErrDecryptFailed covers a wrong key, a wrong scope and tampering alike.
	ErrDecryptFailed    = errors.New("mfa: decrypt failed")
	ErrMissingStaticKey = errors.New("mfa: missing static key")
)

// Sealed layout: version (1 byte) | nonce (12 bytes) | ciphertext+tag.
const (
	sealVersion byte = 1
	aesKeyLen        = 32
	nonceLen         = 12
	headerLen        = 1 + nonceLen
)

// AESGCMEncryptor seals secrets with AES-256-GCM. The scope is bound as
// additional data, so a sealed value copied to another account or purpose
// fails to open.
type AESGCMEncryptor struct {
	keys KeyProvider
}

func NewAESGCMEncryptor(keys KeyProvider) *AESGCMEncryptor {
	return &AESGCMEncryptor{keys: keys}
}

func (e *AESGCMEncryptor) Encrypt(plaintext []byte, scope Scope) ([]byte, error) {
	if len(plaintext) == 0 {
		return nil, ErrPlaintextEmpty
	}

	gcm, err := e.aead(scope)
	if err != nil {
		return nil, err
	}

	out := make([]byte, headerLen, headerLen+len(plaintext)+gcm.Overhead())
	out[0] = sealVersion
	nonce := out[1:headerLen]
	if _, err := rand.Read(nonce); err != nil {
		return nil, fmt.Errorf("mfa: nonce: %w", err)
	}

	return gcm.Seal(out, nonce, plaintext, scope.additionalData()), nil
}

func (e *AESGCMEncryptor) Decrypt(sealed []byte, scope Scope) ([]byte, error) {
	if len(sealed) <= headerLen {
		return nil, ErrCiphertextTooShort
	}
	if sealed[0] != sealVersion {
		return nil, fmt.Errorf("%w: %d", ErrUnsupportedCiphertextVersion, sealed[0])
	}

	gcm, err := e.aead(scope)
	if err != nil {
		return nil, err
	}

	plain, err := gcm.Open(nil, sealed[1:headerLen], sealed[headerLen:], scope.additionalData())
	if err != nil {
		return nil, ErrDecryptFailed
	}
	return plain, nil
}

func (e *AESGCMEncryptor) aead(scope Scope) (cipher.AEAD, error) {
	if e == nil || e.keys == nil {
		return nil, ErrEncryptorNotConfigured
	}

	key, err := e.keys.Key(scope)
	if err != nil {
		return nil, fmt.Errorf("mfa: key: %w", err)
	}
	if len(key) != aesKeyLen {
		return nil, fmt.Errorf("%w: got %d bytes, want %d", ErrInvalidKeyLength, len(key), aesKeyLen)
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("mfa: cipher: %w", err)
	}
	return cipher.NewGCM(block)
}

// additionalData is purpose | 0x00 | big-endian account ID.
func (s Scope) additionalData() []byte {
	ad := make([]byte, 0, len(s.Purpose)+1+8)
	ad = append(ad, string(s.Purpose)...)
	ad = append(ad, 0)
	return binary.BigEndian.AppendUint64(ad, uint64(s.AccountID))
}

// StaticKeyProvider returns the same key for every scope.
type StaticKeyProvider struct {
	KeyBytes []byte
}

// Key returns a copy of the static key.
func (p StaticKeyProvider) Key(Scope) ([]byte, error) {
	if len(p.KeyBytes) == 0 {
		return nil, ErrMissingStaticKey
	}
	return append([]byte(nil), p.KeyBytes...), nil
}
