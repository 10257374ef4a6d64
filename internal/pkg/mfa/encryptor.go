package mfa

// Encryptor seals and opens MFA secrets at rest.
type Encryptor interface {
	// Encrypt returns ciphertext for the given plaintext and scope.
	Encrypt(plaintext []byte, scope Scope) (ciphertext []byte, err error)
	// Decrypt returns plaintext for the given ciphertext and scope.
	Decrypt(ciphertext []byte, scope Scope) (plaintext []byte, err error)
}

// KeyProvider provides raw AES keys.
// For AES-256-GCM, keys must be 32 bytes.
type KeyProvider interface {
	// Key returns the raw AES key to use for this scope.
	Key(scope Scope) ([]byte, error)
}

// PlainEncryptor stores secrets unsealed. It is selected when no sealing key
// is configured.
type PlainEncryptor struct{}

// Encrypt returns a copy of plaintext.
func (PlainEncryptor) Encrypt(plaintext []byte, _ Scope) ([]byte, error) {
	if len(plaintext) == 0 {
		return nil, ErrPlaintextEmpty
	}
	return append([]byte(nil), plaintext...), nil
}

// Decrypt returns a copy of ciphertext.
func (PlainEncryptor) Decrypt(ciphertext []byte, _ Scope) ([]byte, error) {
	return append([]byte(nil), ciphertext...), nil
}
