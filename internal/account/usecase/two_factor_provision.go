package usecase

import (
	"context"
	"log/slog"

	"github.com/u22n/platform/internal/account/entity"
	"github.com/u22n/platform/internal/pkg/goerror"
)

type TwoFactorProvisionInput struct {
	AccountID int64 `validate:"required,gt=0"`
}

type TwoFactorProvisionOutput struct {
	URI string
}

// TwoFactorProvision stores a fresh TOTP secret for an unenrolled account and
// returns its otpauth URI.
func (s *Usecase) TwoFactorProvision(ctx context.Context, in TwoFactorProvisionInput) (_ *TwoFactorProvisionOutput, err error) {
	ctx, span := s.startSpan(ctx, "TwoFactorProvision", in.AccountID)
	defer span.End()
	defer func() { s.record(ctx, "provision", err) }()

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

	if rec.State() != entity.TwoFactorUnenrolled {
		slog.WarnContext(ctx, "two factor already provisioned", "account_id", rec.AccountID)
		return nil, errAlreadyProvisioned()
	}

	secret, uri, err := s.totp.Generate(rec.Username)
	if err != nil {
		slog.ErrorContext(ctx, "failed to generate totp secret", "account_id", rec.AccountID, "error", err)
		return nil, goerror.NewServer(err)
	}

	stored, err := s.sealSecret(ctx, rec.AccountID, secret)
	if err != nil {
		return nil, err
	}

	patch, err := rec.Provision(stored)
	if err != nil {
		slog.ErrorContext(ctx, "failed to build two factor provision", "account_id", rec.AccountID, "error", err)
		return nil, goerror.NewServer(err)
	}

	if err := s.saveTwoFactor(ctx, rec.AccountID, patch); err != nil {
		return nil, err
	}

	return &TwoFactorProvisionOutput{URI: uri}, nil
}
