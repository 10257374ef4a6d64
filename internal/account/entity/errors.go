package entity

import "errors"

var (
	ErrAccountNotFound     = errors.New("account: not found")
	ErrAlreadyProvisioned  = errors.New("account: two factor already provisioned")
	ErrAlreadyEnrolled     = errors.New("account: two factor already enrolled")
	ErrNotProvisioned      = errors.New("account: two factor not provisioned")
	ErrInvalidCode         = errors.New("account: invalid two factor code")
	ErrStateConflict       = errors.New("account: two factor state changed concurrently")
	ErrInvariantViolation  = errors.New("account: two factor invariant violated")
	ErrEmptyCredentialData = errors.New("account: empty credential value")
)
