package usecase

import (
	"context"

	"github.com/u22n/platform/internal/account/entity"
	"github.com/u22n/platform/internal/pkg/goerror"
)

type TwoFactorStatusInput struct {
	AccountID int64 `validate:"required,gt=0"`
}

type TwoFactorStatusOutput struct {
	State   entity.TwoFactorState
	Enabled bool
}

func (s *Usecase) TwoFactorStatus(ctx context.Context, in TwoFactorStatusInput) (_ *TwoFactorStatusOutput, err error) {
	ctx, span := s.startSpan(ctx, "TwoFactorStatus", in.AccountID)
	defer span.End()
	defer func() { s.record(ctx, "status", err) }()

	if err := s.validator.Validate(in); err != nil {
		return nil, goerror.NewInvalidInput(err)
	}

	rec, err := s.getTwoFactor(ctx, in.AccountID)
	if err != nil {
		return nil, err
	}

	return &TwoFactorStatusOutput{State: rec.State(), Enabled: rec.Enabled}, nil
}
