package otp

import (
	"crypto/rand"
	"encoding/base32"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/pquerna/otp"
	"github.com/pquerna/otp/totp"
)

// SecretSize is the raw shared secret length in bytes (RFC 4226 recommendation).
const SecretSize = 20

// ErrInvalidSecret is returned when a raw secret has the wrong length.
var ErrInvalidSecret = errors.New("otp: invalid secret length")

var b32 = base32.StdEncoding.WithPadding(base32.NoPadding)

// OTP defines the contract for TOTP operations on raw secrets.
type OTP interface {
	// Generate creates a fresh raw secret and its provisioning URI for an account name.
	Generate(accountName string) (secret []byte, uri string, err error)
	// Validate checks whether a code is valid for the secret at the given time.
	Validate(code string, secret []byte, at time.Time) bool
	// GenerateCode creates a TOTP code for the given secret and time.
	GenerateCode(secret []byte, at time.Time) (string, error)
	// Window is how long an accepted code stays acceptable.
	Window() time.Duration
}

// TOTP implements OTP using the Time-based One-Time Password algorithm.
type TOTP struct {
	issuer string
	period uint
	skew   uint
	digits otp.Digits
	rand   io.Reader
}

// NewTOTP constructs a TOTP instance with sensible defaults.
//
// If digits is not 6 or 8, it falls back to 6 digits. If period is 0, it uses
// the common 30-second period. A skew of 0 accepts the current period only.
func NewTOTP(issuer string, period, skew uint, digits otp.Digits) *TOTP {
	if digits != otp.DigitsSix && digits != otp.DigitsEight {
		digits = otp.DigitsSix
	}

	if period == 0 {
		period = 30
	}

	return &TOTP{
		issuer: issuer,
		period: period,
		skew:   skew,
		digits: digits,
		rand:   rand.Reader,
	}
}

// Generate creates a raw secret and provisioning URI for an account name.
func (o *TOTP) Generate(accountName string) ([]byte, string, error) {
	secret := make([]byte, SecretSize)
	if _, err := io.ReadFull(o.rand, secret); err != nil {
		return nil, "", fmt.Errorf("otp: read random secret: %w", err)
	}

	key, err := totp.Generate(totp.GenerateOpts{
		Issuer:      o.issuer,
		AccountName: accountName,
		Period:      o.period,
		Secret:      secret,
		Digits:      o.digits,
		Algorithm:   otp.AlgorithmSHA1,
	})
	if err != nil {
		return nil, "", err
	}

	return secret, key.URL(), nil
}

// Validate checks whether a code is valid at the given time.
func (o *TOTP) Validate(code string, secret []byte, at time.Time) bool {
	if len(secret) != SecretSize {
		return false
	}

	rv, err := totp.ValidateCustom(code, b32.EncodeToString(secret), at, o.opts())

	return rv && err == nil
}

// GenerateCode creates a TOTP code for the given secret and time.
func (o *TOTP) GenerateCode(secret []byte, at time.Time) (string, error) {
	if len(secret) != SecretSize {
		return "", ErrInvalidSecret
	}

	return totp.GenerateCodeCustom(b32.EncodeToString(secret), at, o.opts())
}

// Window returns period * (2*skew + 1).
func (o *TOTP) Window() time.Duration {
	return time.Duration(o.period*(2*o.skew+1)) * time.Second
}

func (o *TOTP) opts() totp.ValidateOpts {
	return totp.ValidateOpts{
		Period:    o.period,
		Skew:      o.skew,
		Digits:    o.digits,
		Algorithm: otp.AlgorithmSHA1,
	}
}
