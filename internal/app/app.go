package app

import (
	"context"
	"net/http"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/u22n/platform/internal/pkg/clock"
	"github.com/u22n/platform/internal/pkg/config"
	"github.com/u22n/platform/internal/pkg/goroutine"
	"github.com/u22n/platform/internal/pkg/hash"
	"github.com/u22n/platform/internal/pkg/instrument"
	"github.com/u22n/platform/internal/pkg/jwt"
	"github.com/u22n/platform/internal/pkg/lock"
	"github.com/u22n/platform/internal/pkg/messaging"
	"github.com/u22n/platform/internal/pkg/mfa"
	"github.com/u22n/platform/internal/pkg/otp"
	"github.com/u22n/platform/internal/pkg/router"
	"github.com/u22n/platform/internal/pkg/uid"
	"github.com/u22n/platform/internal/pkg/validator"
)

// App wires dependencies and manages service lifecycle.
type App struct {
	ctx    context.Context
	cancel context.CancelFunc

	// configuration
	config config.Config
	ins    instrument.Instrumentation

	// libraries
	goroutine       *goroutine.Manager
	validator       validator.Validator
	clock           clock.Clocker
	hmac            hash.Hash
	secretHash      hash.Hash
	uid             uid.NumberID
	uuid            uid.StringID
	totp            otp.OTP
	jwt             jwt.JWT
	mfaEncryptor    mfa.Encryptor
	mfaRecoveryCode mfa.RecoveryCodeGenerator

	// resources
	dbConn    *pgxpool.Pool
	cacheConn *redis.Client
	locker    lock.Locker
	messaging messaging.Messaging

	// server
	router     *router.Router
	httpServer *http.Server

	// closers run in reverse registration order on Stop
	closers []closer
}

type closer struct {
	name string
	fn   func(context.Context) error
}

// onClose registers fn to release a resource that was just initialized.
func (a *App) onClose(name string, fn func(context.Context) error) {
	a.closers = append(a.closers, closer{name: name, fn: fn})
}

// New initializes the application with default wiring and returns an App instance.
// Any failure is logged and terminates the process.
func New() *App {
	ctx, cancel := context.WithCancel(context.Background())
	app := &App{
		ctx:    ctx,
		cancel: cancel,
	}

	for _, step := range []func(){
		app.initConfig,
		app.initInstrument,
		app.initLibraries,
		app.initJWT,
		app.initDatabase,
		app.initCache,
		app.initMessaging,
		app.initHTTPServer,
		app.initModules,
	} {
		step()
	}

	return app
}
