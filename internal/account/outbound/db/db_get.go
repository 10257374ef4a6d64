package db

import (
	"context"

	"github.com/u22n/platform/internal/account/entity"
)

const queryGetTwoFactor = `
SELECT a.id, a.username, c.two_factor_secret, c.recovery_code_hash, COALESCE(c.two_factor_enabled, FALSE)
FROM accounts a
LEFT JOIN account_credentials c ON c.account_id = a.id
WHERE a.id = $1`

func (s *DB) GetTwoFactor(ctx context.Context, accountID int64) (_ *entity.TwoFactorRecord, err error) {
	ctx, span := s.startSpan(ctx, "GetTwoFactor")
	defer func() { s.endSpan(span, err) }()

	var rec entity.TwoFactorRecord
	err = s.conn.QueryRow(ctx, queryGetTwoFactor, accountID).Scan(
		&rec.AccountID,
		&rec.Username,
		&rec.Secret,
		&rec.RecoveryCodeHash,
		&rec.Enabled,
	)
	if err != nil {
		return nil, s.mapError(err)
	}

	return &rec, nil
}
