package entity

import "fmt"

// TwoFactorRecord is the two-factor view of an account.
//
// Secret and RecoveryCodeHash are nil when the column is NULL.
type TwoFactorRecord struct {
	AccountID        int64
	Username         string
	Secret           *string
	RecoveryCodeHash *string
	Enabled          bool
}

// State derives the lifecycle state. A stored recovery hash alone marks the
// account as enrolled.
func (r TwoFactorRecord) State() TwoFactorState {
	switch {
	case r.Secret == nil:
		return TwoFactorUnenrolled
	case r.RecoveryCodeHash == nil:
		return TwoFactorProvisioned
	default:
		return TwoFactorEnrolled
	}
}

// TwoFactorPatch is a full replacement of the credential columns, applied only
// while the stored columns still equal PrevSecret and PrevRecoveryCodeHash.
type TwoFactorPatch struct {
	Secret           *string
	RecoveryCodeHash *string
	Enabled          bool

	PrevSecret           *string
	PrevRecoveryCodeHash *string
}

// Validate checks the column invariants of the target state.
func (p TwoFactorPatch) Validate() error {
	if p.RecoveryCodeHash != nil && p.Secret == nil {
		return fmt.Errorf("%w: recovery hash without secret", ErrInvariantViolation)
	}
	if p.Enabled && p.RecoveryCodeHash == nil {
		return fmt.Errorf("%w: enabled without recovery hash", ErrInvariantViolation)
	}
	if (p.Secret != nil && *p.Secret == "") || (p.RecoveryCodeHash != nil && *p.RecoveryCodeHash == "") {
		return ErrEmptyCredentialData
	}
	return nil
}

// Provision stores a new secret. Only an unenrolled record may be provisioned.
func (r TwoFactorRecord) Provision(secret string) (TwoFactorPatch, error) {
	if r.State() != TwoFactorUnenrolled {
		return TwoFactorPatch{}, ErrAlreadyProvisioned
	}

	p := TwoFactorPatch{
		Secret:               &secret,
		PrevSecret:           r.Secret,
		PrevRecoveryCodeHash: r.RecoveryCodeHash,
	}
	return p, p.Validate()
}

// Enroll stores the recovery hash and enables two-factor in one write.
func (r TwoFactorRecord) Enroll(recoveryCodeHash string) (TwoFactorPatch, error) {
	switch r.State() {
	case TwoFactorUnenrolled:
		return TwoFactorPatch{}, ErrNotProvisioned
	case TwoFactorEnrolled:
		return TwoFactorPatch{}, ErrAlreadyEnrolled
	}

	p := TwoFactorPatch{
		Secret:               r.Secret,
		RecoveryCodeHash:     &recoveryCodeHash,
		Enabled:              true,
		PrevSecret:           r.Secret,
		PrevRecoveryCodeHash: r.RecoveryCodeHash,
	}
	return p, p.Validate()
}

// Clear removes the secret and recovery hash and disables two-factor.
func (r TwoFactorRecord) Clear() (TwoFactorPatch, error) {
	if r.State() == TwoFactorUnenrolled {
		return TwoFactorPatch{}, ErrNotProvisioned
	}

	return TwoFactorPatch{
		PrevSecret:           r.Secret,
		PrevRecoveryCodeHash: r.RecoveryCodeHash,
	}, nil
}
