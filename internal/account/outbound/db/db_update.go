package db

import (
	"context"

	"github.com/u22n/platform/internal/account/entity"
	"github.com/u22n/platform/internal/pkg/goerror"
)

// The first write for an account has no credential row yet, so it upserts.
// The DO UPDATE branch keeps the same compare-and-set guard.
const queryUpsertTwoFactorFromEmpty = `
INSERT INTO account_credentials (account_id, two_factor_secret, recovery_code_hash, two_factor_enabled, updated_at)
VALUES ($1, $2, $3, $4, now())
ON CONFLICT (account_id) DO UPDATE SET
	two_factor_secret = EXCLUDED.two_factor_secret,
	recovery_code_hash = EXCLUDED.recovery_code_hash,
	two_factor_enabled = EXCLUDED.two_factor_enabled,
	updated_at = EXCLUDED.updated_at
WHERE account_credentials.two_factor_secret IS NULL
	AND account_credentials.recovery_code_hash IS NULL`

const queryUpdateTwoFactor = `
UPDATE account_credentials SET
	two_factor_secret = $2,
	recovery_code_hash = $3,
	two_factor_enabled = $4,
	updated_at = now()
WHERE account_id = $1
	AND two_factor_secret IS NOT DISTINCT FROM $5::text
	AND recovery_code_hash IS NOT DISTINCT FROM $6::text`

// UpdateTwoFactor applies p only if the stored columns still match the
// previous values carried by p. A mismatch returns goerror.ErrConflict.
func (s *DB) UpdateTwoFactor(ctx context.Context, accountID int64, p entity.TwoFactorPatch) (err error) {
	ctx, span := s.startSpan(ctx, "UpdateTwoFactor")
	defer func() { s.endSpan(span, err) }()

	if err = p.Validate(); err != nil {
		return err
	}

	var rows int64
	if p.PrevSecret == nil && p.PrevRecoveryCodeHash == nil {
		tag, execErr := s.conn.Exec(ctx, queryUpsertTwoFactorFromEmpty,
			accountID, p.Secret, p.RecoveryCodeHash, p.Enabled)
		if execErr != nil {
			return s.mapError(execErr)
		}
		rows = tag.RowsAffected()
	} else {
		tag, execErr := s.conn.Exec(ctx, queryUpdateTwoFactor,
			accountID, p.Secret, p.RecoveryCodeHash, p.Enabled, p.PrevSecret, p.PrevRecoveryCodeHash)
		if execErr != nil {
			return s.mapError(execErr)
		}
		rows = tag.RowsAffected()
	}

	if rows == 0 {
		return goerror.ErrConflict
	}

	return nil
}
