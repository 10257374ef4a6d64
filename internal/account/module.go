package account

import (
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/u22n/platform/internal/account/inbound"
	"github.com/u22n/platform/internal/account/outbound/cache"
	"github.com/u22n/platform/internal/account/outbound/db"
	"github.com/u22n/platform/internal/account/outbound/mq"
	"github.com/u22n/platform/internal/account/usecase"
	"github.com/u22n/platform/internal/pkg/clock"
	"github.com/u22n/platform/internal/pkg/config"
	"github.com/u22n/platform/internal/pkg/goroutine"
	"github.com/u22n/platform/internal/pkg/hash"
	"github.com/u22n/platform/internal/pkg/instrument"
	"github.com/u22n/platform/internal/pkg/lock"
	"github.com/u22n/platform/internal/pkg/messaging"
	"github.com/u22n/platform/internal/pkg/mfa"
	"github.com/u22n/platform/internal/pkg/otp"
	"github.com/u22n/platform/internal/pkg/router"
	"github.com/u22n/platform/internal/pkg/uid"
	"github.com/u22n/platform/internal/pkg/validator"
)

type Dependency struct {
	DBConn          *pgxpool.Pool              `validate:"required"`
	CacheConn       *redis.Client              `validate:"required"`
	Goroutine       *goroutine.Manager         `validate:"required"`
	Router          *router.Router             `validate:"required"`
	Locker          lock.Locker                `validate:"required"`
	Messaging       messaging.Messaging        `validate:"required"`
	Config          config.Config              `validate:"required"`
	Instrument      instrument.Instrumentation `validate:"required"`
	UID             uid.NumberID               `validate:"required"`
	HMAC            hash.Hash                  `validate:"required"`
	SecretHash      hash.Hash                  `validate:"required"`
	MFAEncryptor    mfa.Encryptor              `validate:"required"`
	MFARecoveryCode mfa.RecoveryCodeGenerator  `validate:"required"`
	Clock           clock.Clocker              `validate:"required"`
	Totp            otp.OTP                    `validate:"required"`
	Validator       validator.Validator        `validate:"required"`
}

func New(dep Dependency) error {
	if err := dep.Validator.Validate(dep); err != nil {
		return err
	}

	repoDB := db.NewDB(dep.DBConn, dep.Instrument)
	repoCache := cache.NewCache(dep.CacheConn, dep.HMAC, dep.Instrument)
	repoMsg := mq.NewMessaging(dep.Messaging, dep.Instrument)

	uc := usecase.New(usecase.Dependency{
		RepoDB:          repoDB,
		RepoCache:       repoCache,
		RepoMessaging:   repoMsg,
		Locker:          dep.Locker,
		Validator:       dep.Validator,
		Config:          dep.Config,
		Hash:            dep.SecretHash,
		MFAEncryptor:    dep.MFAEncryptor,
		MFARecoveryCode: dep.MFARecoveryCode,
		UID:             dep.UID,
		Totp:            dep.Totp,
		Clock:           dep.Clock,
		Instrument:      dep.Instrument,
		Goroutine:       dep.Goroutine,
	})

	inbound.RegisterHTTPEndpoint(dep.Router, uc)

	return nil
}
