package usecase

import (
	"context"
	"log/slog"

	"github.com/u22n/platform/internal/account/entity"
	"github.com/u22n/platform/internal/pkg/goerror"
)

type TwoFactorVerifyInput struct {
	AccountID int64 `validate:"required,gt=0"`
	Code      string
}

type TwoFactorVerifyOutput struct {
	RecoveryCode string
}

// TwoFactorVerify confirms the provisioned secret with a TOTP code, enables
// two-factor and reveals the recovery code. The recovery code is returned
// exactly once; only its hash is stored.
func (s *Usecase) TwoFactorVerify(ctx context.Context, in TwoFactorVerifyInput) (_ *TwoFactorVerifyOutput, err error) {
	ctx, span := s.startSpan(ctx, "TwoFactorVerify", in.AccountID)
	defer span.End()
	defer func() { s.record(ctx, "verify", err) }()

	if err := s.validator.Validate(in); err != nil {
		return nil, goerror.NewInvalidInput(err)
	}

	unlock, err := s.lockAccount(ctx, in.AccountID)
	if err != nil {
		return nil, err
	}
	defer unlock()

	rec, err := s.getTwoFactor(ctx, in.AccountID)
	if err != nil {
		return nil, err
	}

	switch rec.State() {
	case entity.TwoFactorUnenrolled:
		slog.WarnContext(ctx, "two factor not provisioned", "account_id", rec.AccountID)
		return nil, errNotProvisioned()
	case entity.TwoFactorEnrolled:
		slog.WarnContext(ctx, "two factor already enrolled", "account_id", rec.AccountID)
		return nil, errAlreadyEnrolled()
	}

	if err := s.checkTOTP(ctx, rec, in.Code, errInvalidCode); err != nil {
		return nil, err
	}
	secret := *rec.Secret

	recoveryCode, err := s.mfaRecoveryCode.Generate()
	if err != nil {
		slog.ErrorContext(ctx, "failed to generate recovery code", "account_id", rec.AccountID, "error", err)
		return nil, goerror.NewServer(err)
	}

	recoveryHash, err := s.hash.Hash(recoveryCode)
	if err != nil {
		slog.ErrorContext(ctx, "failed to hash recovery code", "account_id", rec.AccountID, "error", err)
		return nil, goerror.NewServer(err)
	}

	patch, err := rec.Enroll(string(recoveryHash))
	if err != nil {
		slog.ErrorContext(ctx, "failed to build two factor enrollment", "account_id", rec.AccountID, "error", err)
		return nil, goerror.NewServer(err)
	}

	if err := s.saveTwoFactor(ctx, rec.AccountID, patch); err != nil {
		return nil, err
	}

	s.burnTOTP(ctx, rec.AccountID, secret, in.Code)
	s.publishEnabled(ctx, rec.AccountID)

	return &TwoFactorVerifyOutput{RecoveryCode: recoveryCode}, nil
}
