package usecase

import (
	"github.com/u22n/platform/internal/account/entity"
	"github.com/u22n/platform/internal/pkg/goerror"
)

const (
	msgAccountNotFound     = "User not found"
	msgAlreadyProvisioned  = "Two Factor Authentication (2FA) is already set up for this account"
	msgNotProvisioned      = "Two Factor Authentication (2FA) is not set up for this account"
	msgAlreadyEnrolled     = "Two Factor Authentication (2FA) has already been verified with this account, please disable then re-enable Two Factor Authentication (2FA) if you want to see your recovery codes again."
	msgInvalidCode         = "Invalid Two Factor Authentication (2FA) code"
	msgInvalidRecoveryCode = "Invalid Two Factor Authentication (2FA) recovery code"
	msgStateConflict       = "Two Factor Authentication (2FA) settings changed by another request, please try again"

	msgDisableNotProvisioned = "2FA is not set up for this account"
	msgDisableInvalidCode    = "Invalid 2FA code"
)

func errAccountNotFound() error {
	return goerror.NewBusinessCause(entity.ErrAccountNotFound, msgAccountNotFound, goerror.CodeNotFound)
}

func errAlreadyProvisioned() error {
	return goerror.NewBusinessCause(entity.ErrAlreadyProvisioned, msgAlreadyProvisioned, goerror.CodeConflict)
}

func errNotProvisioned() error {
	return goerror.NewBusinessCause(entity.ErrNotProvisioned, msgNotProvisioned, goerror.CodeBadRequest)
}

func errDisableNotProvisioned() error {
	return goerror.NewBusinessCause(entity.ErrNotProvisioned, msgDisableNotProvisioned, goerror.CodeBadRequest)
}

func errAlreadyEnrolled() error {
	return goerror.NewBusinessCause(entity.ErrAlreadyEnrolled, msgAlreadyEnrolled, goerror.CodeConflict)
}

func errInvalidCode() error {
	return goerror.NewBusinessCause(entity.ErrInvalidCode, msgInvalidCode, goerror.CodeUnauthorized)
}

func errDisableInvalidCode() error {
	return goerror.NewBusinessCause(entity.ErrInvalidCode, msgDisableInvalidCode, goerror.CodeUnauthorized)
}

func errInvalidRecoveryCode() error {
	return goerror.NewBusinessCause(entity.ErrInvalidCode, msgInvalidRecoveryCode, goerror.CodeUnauthorized)
}

func errStateConflict() error {
	return goerror.NewBusinessCause(entity.ErrStateConflict, msgStateConflict, goerror.CodeConflict)
}
