package usecase

import (
	"context"
	"log/slog"

	"github.com/u22n/platform/internal/account/entity"
	"github.com/u22n/platform/internal/pkg/goerror"
	"github.com/u22n/platform/internal/shared/event"
)

type TwoFactorDisableInput struct {
	AccountID int64 `validate:"required,gt=0"`
	Code      string
}

func (s *Usecase) TwoFactorDisable(ctx context.Context, in TwoFactorDisableInput) (err error) {
	ctx, span := s.startSpan(ctx, "TwoFactorDisable", in.AccountID)
	defer span.End()
	defer func() { s.record(ctx, "disable", err) }()

	if err := s.validator.Validate(in); err != nil {
		return goerror.NewInvalidInput(err)
	}

	unlock, err := s.lockAccount(ctx, in.AccountID)
	if err != nil {
		return err
	}
	defer unlock()

	rec, err := s.getTwoFactor(ctx, in.AccountID)
	if err != nil {
		return err
	}

	if rec.State() == entity.TwoFactorUnenrolled {
		slog.WarnContext(ctx, "two factor not provisioned", "account_id", rec.AccountID)
		return errDisableNotProvisioned()
	}

	if err := s.checkTOTP(ctx, rec, in.Code, errDisableInvalidCode); err != nil {
		return err
	}
	secret := *rec.Secret

	if err := s.clearTwoFactor(ctx, rec); err != nil {
		return err
	}

	s.burnTOTP(ctx, rec.AccountID, secret, in.Code)

	if rec.Enabled {
		s.publishDisabled(ctx, rec.AccountID, event.TwoFactorDisabledReasonDisable)
	}

	return nil
}

func (s *Usecase) clearTwoFactor(ctx context.Context, rec *entity.TwoFactorRecord) error {
	patch, err := rec.Clear()
	if err != nil {
		slog.ErrorContext(ctx, "failed to build two factor clear", "account_id", rec.AccountID, "error", err)
		return goerror.NewServer(err)
	}

	return s.saveTwoFactor(ctx, rec.AccountID, patch)
}
