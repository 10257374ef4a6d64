package hash

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnknownAlgorithm indicates an unsupported hashing algorithm name.
var ErrUnknownAlgorithm = errors.New("hash: unknown algorithm")

const (
	// AlgorithmArgon2id selects Argon2id.
	AlgorithmArgon2id = "argon2id"
	// AlgorithmBcrypt selects bcrypt.
	AlgorithmBcrypt = "bcrypt"
)

// Hash is a one-way hasher with verification.
type Hash interface {
	// Hash returns the encoded hash of str.
	Hash(str string) ([]byte, error)
	// Verify reports whether str matches hashed.
	Verify(hashed, str string) bool
}

// Options configures NewFromAlgorithm.
type Options struct {
	Pepper      string
	BcryptCost  int
	Argon2Limit int
}

// NewFromAlgorithm builds a slow secret hasher by name.
func NewFromAlgorithm(name string, opts Options) (Hash, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case AlgorithmArgon2id, "":
		h := NewArgon2id(opts.Pepper)
		if opts.Argon2Limit > 0 {
			h = h.WithConcurrency(opts.Argon2Limit)
		}
		return h, nil
	case AlgorithmBcrypt:
		return NewBcrypt(opts.BcryptCost, opts.Pepper), nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownAlgorithm, name)
	}
}
