package app

import (
	"log/slog"
	"os"

	"github.com/u22n/platform/internal/account"
)

func (a *App) initModules() {
	if a.config.GetBool("modules.account.enabled") {
		if err := account.New(account.Dependency{
			DBConn:          a.dbConn,
			CacheConn:       a.cacheConn,
			Goroutine:       a.goroutine,
			Router:          a.router,
			Locker:          a.locker,
			Messaging:       a.messaging,
			Config:          a.config,
			Instrument:      a.ins,
			UID:             a.uid,
			HMAC:            a.hmac,
			SecretHash:      a.secretHash,
			MFAEncryptor:    a.mfaEncryptor,
			MFARecoveryCode: a.mfaRecoveryCode,
			Clock:           a.clock,
			Totp:            a.totp,
			Validator:       a.validator,
		}); err != nil {
			slog.Error("failed to init module account", "error", err)
			os.Exit(1)
		}
	}
}
