package mfa

import (
	"crypto/rand"
	"math/big"
	"strings"
)

// RecoveryCodeGenerator generates MFA recovery codes.
type RecoveryCodeGenerator interface {
	// Generate returns one recovery code or an error if the random source fails.
	Generate() (string, error)
}

// alphabet has 62 symbols; a 16-symbol code carries about 95 bits of entropy.
const alphabet = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz"

const (
	groupSize  = 4
	groupCount = 4
)

// RecoveryCode generates cryptographically secure recovery codes formatted as
//
//	XXXX-XXXX-XXXX-XXXX
//
// Each X is selected uniformly at random from alphabet.
type RecoveryCode struct{}

// NewRecoveryCode returns a new RecoveryCode generator.
func NewRecoveryCode() *RecoveryCode {
	return &RecoveryCode{}
}

// Generate produces a single recovery code.
func (rc *RecoveryCode) Generate() (string, error) {
	var sb strings.Builder
	sb.Grow(groupCount*groupSize + groupCount - 1)

	limit := big.NewInt(int64(len(alphabet)))
	for g := 0; g < groupCount; g++ {
		if g > 0 {
			sb.WriteByte('-')
		}
		for i := 0; i < groupSize; i++ {
			n, err := rand.Int(rand.Reader, limit)
			if err != nil {
				return "", err
			}
			sb.WriteByte(alphabet[n.Int64()])
		}
	}

	return sb.String(), nil
}
