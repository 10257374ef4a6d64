package usecase

import (
	"context"
	"log/slog"
	"strings"

	"github.com/u22n/platform/internal/account/entity"
	"github.com/u22n/platform/internal/pkg/goerror"
	"github.com/u22n/platform/internal/shared/event"
)

type TwoFactorRecoverInput struct {
	AccountID    int64 `validate:"required,gt=0"`
	RecoveryCode string
}

// TwoFactorRecover turns two-factor off with the recovery code issued at
// enrollment. The code is single use because its hash is cleared.
func (s *Usecase) TwoFactorRecover(ctx context.Context, in TwoFactorRecoverInput) (err error) {
	ctx, span := s.startSpan(ctx, "TwoFactorRecover", in.AccountID)
	defer span.End()
	defer func() { s.record(ctx, "recover", err) }()

	in.RecoveryCode = strings.TrimSpace(in.RecoveryCode)
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
		return errNotProvisioned()
	}

	if err := s.checkRecoveryCode(ctx, rec, in.RecoveryCode); err != nil {
		return err
	}

	if err := s.clearTwoFactor(ctx, rec); err != nil {
		return err
	}

	s.publishDisabled(ctx, rec.AccountID, event.TwoFactorDisabledReasonRecovery)

	return nil
}
