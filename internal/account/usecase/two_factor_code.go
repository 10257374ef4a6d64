package usecase

import (
	"context"
	"encoding/hex"
	"log/slog"

	"github.com/u22n/platform/internal/account/entity"
	"github.com/u22n/platform/internal/pkg/goerror"
	"github.com/u22n/platform/internal/pkg/mfa"
)

type totpCodeFormat struct {
	Code string `validate:"required,otpcode"`
}

type recoveryCodeFormat struct {
	Code string `json:"recovery_code" validate:"required,recoverycode"`
}

// sealSecret encodes a raw secret for the two_factor_secret column.
func (s *Usecase) sealSecret(ctx context.Context, accountID int64, secret []byte) (string, error) {
	sealed, err := s.mfaEncryptor.Encrypt(secret, mfa.Scope{
		AccountID: accountID,
		Purpose:   mfa.PurposeOTPSeed,
	})
	if err != nil {
		slog.ErrorContext(ctx, "failed to seal totp secret", "account_id", accountID, "error", err)
		return "", goerror.NewServer(err)
	}
	return hex.EncodeToString(sealed), nil
}

func (s *Usecase) openSecret(ctx context.Context, rec *entity.TwoFactorRecord) ([]byte, error) {
	sealed, err := hex.DecodeString(*rec.Secret)
	if err != nil {
		slog.ErrorContext(ctx, "stored totp secret is not hex", "account_id", rec.AccountID, "error", err)
		return nil, goerror.NewServer(err)
	}

	secret, err := s.mfaEncryptor.Decrypt(sealed, mfa.Scope{
		AccountID: rec.AccountID,
		Purpose:   mfa.PurposeOTPSeed,
	})
	if err != nil {
		slog.ErrorContext(ctx, "failed to open totp secret", "account_id", rec.AccountID, "error", err)
		return nil, goerror.NewServer(err)
	}
	return secret, nil
}

// checkTOTP validates code against the stored secret. invalid builds the
// error returned for a wrong, malformed or already used code. The code is not
// burned here; see burnTOTP.
func (s *Usecase) checkTOTP(ctx context.Context, rec *entity.TwoFactorRecord, code string, invalid func() error) error {
	if err := s.validator.Validate(totpCodeFormat{Code: code}); err != nil {
		slog.WarnContext(ctx, "malformed totp code", "account_id", rec.AccountID)
		return invalid()
	}

	secret, err := s.openSecret(ctx, rec)
	if err != nil {
		return err
	}

	if !s.totp.Validate(code, secret, s.clock.Now()) {
		slog.WarnContext(ctx, "invalid totp code", "account_id", rec.AccountID)
		return invalid()
	}

	if !s.cfg.GetBool("mfa.replay_guard") {
		return nil
	}

	used, err := s.repoCache.CodeUsed(ctx, rec.AccountID, *rec.Secret, code)
	if err != nil {
		slog.ErrorContext(ctx, "failed to cache check totp code", "account_id", rec.AccountID, "error", err)
		return goerror.NewServer(err)
	}
	if used {
		slog.WarnContext(ctx, "totp code replayed", "account_id", rec.AccountID)
		return invalid()
	}

	return nil
}

// burnTOTP marks code as used for the rest of its acceptance window. It must
// run only after the state change the code authorized has been stored, while
// the account lock is still held. secret is the column value checkTOTP saw.
func (s *Usecase) burnTOTP(ctx context.Context, accountID int64, secret, code string) {
	if !s.cfg.GetBool("mfa.replay_guard") {
		return
	}

	fresh, err := s.repoCache.MarkCodeUsed(ctx, accountID, secret, code, s.totp.Window())
	if err != nil {
		slog.WarnContext(ctx, "failed to cache mark totp code used", "account_id", accountID, "error", err)
		return
	}
	if !fresh {
		slog.WarnContext(ctx, "totp code already marked used", "account_id", accountID)
	}
}

func (s *Usecase) checkRecoveryCode(ctx context.Context, rec *entity.TwoFactorRecord, code string) error {
	if rec.RecoveryCodeHash == nil {
		slog.WarnContext(ctx, "recovery code used before enrollment", "account_id", rec.AccountID)
		return errInvalidRecoveryCode()
	}

	if err := s.validator.Validate(recoveryCodeFormat{Code: code}); err != nil {
		slog.WarnContext(ctx, "malformed recovery code", "account_id", rec.AccountID)
		return errInvalidRecoveryCode()
	}

	if !s.hash.Verify(*rec.RecoveryCodeHash, code) {
		slog.WarnContext(ctx, "invalid recovery code", "account_id", rec.AccountID)
		return errInvalidRecoveryCode()
	}

	return nil
}
