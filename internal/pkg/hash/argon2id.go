package hash

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/argon2"
)

var errMalformedPHC = errors.New("hash: malformed argon2id string")

// argon2Params are the cost parameters encoded in a PHC string.
type argon2Params struct {
	memory      uint32 // KiB
	iterations  uint32
	parallelism uint8
}

// Argon2id hashes secrets into PHC strings of the form
// $argon2id$v=19$m=<KiB>,t=<iterations>,p=<lanes>$<salt>$<key>.
//
// Each computation allocates the configured memory, so concurrent
// computations are bounded by a semaphore.
type Argon2id struct {
	params    argon2Params
	saltLen   int
	keyLen    uint32
	pepper    string
	maxMemory uint32
	sema      chan struct{}
}

// NewArgon2id returns a hasher using 32 MiB, 3 passes and 2 lanes.
func NewArgon2id(pepper string) *Argon2id {
	p := argon2Params{memory: 32 * 1024, iterations: 3, parallelism: 2}
	return &Argon2id{
		params:    p,
		saltLen:   16,
		keyLen:    32,
		pepper:    pepper,
		maxMemory: 4 * p.memory,
		sema:      make(chan struct{}, 2),
	}
}

// WithConcurrency returns a copy limited to n parallel computations.
// n <= 0 disables the limiter.
func (a *Argon2id) WithConcurrency(n int) *Argon2id {
	cp := *a
	cp.sema = nil
	if n > 0 {
		cp.sema = make(chan struct{}, n)
	}
	return &cp
}

func (a *Argon2id) derive(str string, salt []byte, p argon2Params, keyLen uint32) []byte {
	if a.sema != nil {
		a.sema <- struct{}{}
		defer func() { <-a.sema }()
	}
	return argon2.IDKey([]byte(str+a.pepper), salt, p.iterations, p.memory, p.parallelism, keyLen)
}

func (a *Argon2id) Hash(str string) ([]byte, error) {
	salt := make([]byte, a.saltLen)
	if _, err := rand.Read(salt); err != nil {
		return nil, fmt.Errorf("hash: salt: %w", err)
	}

	key := a.derive(str, salt, a.params, a.keyLen)
	return []byte(formatPHC(a.params, salt, key)), nil
}

// Verify rejects hashes whose memory cost exceeds four times the configured
// one, so a tampered row cannot make verification allocate without bound.
func (a *Argon2id) Verify(hashed, str string) bool {
	if hashed == "" || str == "" {
		return false
	}

	p, salt, key, err := parsePHC(hashed)
	if err != nil || p.memory > a.maxMemory {
		return false
	}

	return subtle.ConstantTimeCompare(key, a.derive(str, salt, p, uint32(len(key)))) == 1
}

func formatPHC(p argon2Params, salt, key []byte) string {
	return fmt.Sprintf("$argon2id$v=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2.Version, p.memory, p.iterations, p.parallelism,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(key),
	)
}

func parsePHC(s string) (p argon2Params, salt, key []byte, err error) {
	parts := strings.Split(s, "$")
	if len(parts) != 6 || parts[0] != "" || parts[1] != "argon2id" {
		return p, nil, nil, errMalformedPHC
	}

	var version int
	if _, err := fmt.Sscanf(parts[2], "v=%d", &version); err != nil || version != argon2.Version {
		return p, nil, nil, errMalformedPHC
	}

	if _, err := fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d", &p.memory, &p.iterations, &p.parallelism); err != nil {
		return p, nil, nil, errMalformedPHC
	}
	if p.memory == 0 || p.iterations == 0 || p.parallelism == 0 {
		return p, nil, nil, errMalformedPHC
	}

	if salt, err = base64.RawStdEncoding.DecodeString(parts[4]); err != nil {
		return p, nil, nil, errMalformedPHC
	}
	if key, err = base64.RawStdEncoding.DecodeString(parts[5]); err != nil || len(key) == 0 {
		return p, nil, nil, errMalformedPHC
	}

	return p, salt, key, nil
}
