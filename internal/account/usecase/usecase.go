package usecase

import (
	"context"
	"errors"
	"log/slog"
	"strconv"
	"time"

	"github.com/u22n/platform/internal/account/entity"
	"github.com/u22n/platform/internal/pkg/clock"
	"github.com/u22n/platform/internal/pkg/config"
	"github.com/u22n/platform/internal/pkg/goerror"
	"github.com/u22n/platform/internal/pkg/goroutine"
	"github.com/u22n/platform/internal/pkg/hash"
	"github.com/u22n/platform/internal/pkg/instrument"
	"github.com/u22n/platform/internal/pkg/lock"
	"github.com/u22n/platform/internal/pkg/mfa"
	"github.com/u22n/platform/internal/pkg/otp"
	"github.com/u22n/platform/internal/pkg/uid"
	"github.com/u22n/platform/internal/pkg/validator"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	metricnoop "go.opentelemetry.io/otel/metric/noop"
	"go.opentelemetry.io/otel/trace"
)

const defaultLockTTL = 10 * time.Second

type TwoFactorEnabledEvent struct {
	EventID    int64
	AccountID  int64
	OccurredAt time.Time
}

type TwoFactorDisabledEvent struct {
	EventID    int64
	AccountID  int64
	Reason     string
	OccurredAt time.Time
}

type repoMessaging interface {
	PublishTwoFactorEnabled(ctx context.Context, msg TwoFactorEnabledEvent) error
	PublishTwoFactorDisabled(ctx context.Context, msg TwoFactorDisabledEvent) error
}

type repoDB interface {
	GetTwoFactor(ctx context.Context, accountID int64) (*entity.TwoFactorRecord, error)
	UpdateTwoFactor(ctx context.Context, accountID int64, p entity.TwoFactorPatch) error
}

type repoCache interface {
	CodeUsed(ctx context.Context, accountID int64, secret, code string) (bool, error)
	MarkCodeUsed(ctx context.Context, accountID int64, secret, code string, ttl time.Duration) (bool, error)
}

type Usecase struct {
	repoDB          repoDB
	repoCache       repoCache
	repoMessaging   repoMessaging
	locker          lock.Locker
	validator       validator.Validator
	cfg             config.Config
	hash            hash.Hash
	mfaEncryptor    mfa.Encryptor
	mfaRecoveryCode mfa.RecoveryCodeGenerator
	uid             uid.NumberID
	totp            otp.OTP
	clock           clock.Clocker
	ins             instrument.Instrumentation
	goroutine       *goroutine.Manager
	opCounter       metric.Int64Counter
}

type Dependency struct {
	RepoDB          repoDB
	RepoCache       repoCache
	RepoMessaging   repoMessaging
	Locker          lock.Locker
	Validator       validator.Validator
	Config          config.Config
	Hash            hash.Hash
	MFAEncryptor    mfa.Encryptor
	MFARecoveryCode mfa.RecoveryCodeGenerator
	UID             uid.NumberID
	Totp            otp.OTP
	Clock           clock.Clocker
	Instrument      instrument.Instrumentation
	Goroutine       *goroutine.Manager
}

func New(dep Dependency) *Usecase {
	var counter metric.Int64Counter = metricnoop.Int64Counter{}
	c, err := dep.Instrument.Meter("account.usecase").Int64Counter(
		"account.two_factor.operations",
		metric.WithDescription("Two-factor lifecycle operations by result"),
	)
	if err != nil {
		slog.Error("failed to create two factor operations counter", "error", err)
	} else {
		counter = c
	}

	return &Usecase{
		repoDB:          dep.RepoDB,
		repoCache:       dep.RepoCache,
		repoMessaging:   dep.RepoMessaging,
		locker:          dep.Locker,
		validator:       dep.Validator,
		cfg:             dep.Config,
		hash:            dep.Hash,
		mfaEncryptor:    dep.MFAEncryptor,
		mfaRecoveryCode: dep.MFARecoveryCode,
		uid:             dep.UID,
		totp:            dep.Totp,
		clock:           dep.Clock,
		ins:             dep.Instrument,
		goroutine:       dep.Goroutine,
		opCounter:       counter,
	}
}

func (s *Usecase) startSpan(ctx context.Context, name string, accountID int64) (context.Context, trace.Span) {
	return s.ins.Tracer("account.usecase").Start(ctx, name,
		trace.WithAttributes(attribute.Int64("account.id", accountID)))
}

func (s *Usecase) record(ctx context.Context, op string, err error) {
	s.opCounter.Add(ctx, 1, metric.WithAttributes(
		attribute.String("operation", op),
		attribute.String("result", outcome(err)),
	))
}

func outcome(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, entity.ErrAccountNotFound):
		return "not_found"
	case errors.Is(err, entity.ErrAlreadyProvisioned):
		return "already_provisioned"
	case errors.Is(err, entity.ErrAlreadyEnrolled):
		return "already_enrolled"
	case errors.Is(err, entity.ErrNotProvisioned):
		return "not_provisioned"
	case errors.Is(err, entity.ErrInvalidCode):
		return "invalid_code"
	case errors.Is(err, entity.ErrStateConflict):
		return "state_conflict"
	default:
		if typ, ok := goerror.TypeOf(err); ok && typ == goerror.TypeValidation {
			return "invalid_input"
		}
		return "error"
	}
}

// lockAccount serializes lifecycle calls for one account. The returned func
// releases the lease.
func (s *Usecase) lockAccount(ctx context.Context, accountID int64) (func(), error) {
	ttl := s.cfg.GetSecond("modules.account.lock_ttl_seconds")
	if ttl <= 0 {
		ttl = defaultLockTTL
	}

	release, err := s.locker.Obtain(ctx, "account:2fa:"+strconv.FormatInt(accountID, 10), ttl)
	if errors.Is(err, lock.ErrNotObtained) {
		slog.WarnContext(ctx, "two factor lock is busy", "account_id", accountID)
		return nil, errStateConflict()
	}
	if err != nil {
		slog.ErrorContext(ctx, "failed to obtain two factor lock", "account_id", accountID, "error", err)
		return nil, goerror.NewServer(err)
	}

	return func() {
		if err := release(context.WithoutCancel(ctx)); err != nil {
			slog.WarnContext(ctx, "failed to release two factor lock", "account_id", accountID, "error", err)
		}
	}, nil
}

func (s *Usecase) getTwoFactor(ctx context.Context, accountID int64) (*entity.TwoFactorRecord, error) {
	rec, err := s.repoDB.GetTwoFactor(ctx, accountID)
	if errors.Is(err, goerror.ErrNotFound) {
		slog.WarnContext(ctx, "account not found", "account_id", accountID)
		return nil, errAccountNotFound()
	}
	if err != nil {
		slog.ErrorContext(ctx, "failed to repo get two factor", "account_id", accountID, "error", err)
		return nil, goerror.NewServer(err)
	}
	return rec, nil
}

func (s *Usecase) saveTwoFactor(ctx context.Context, accountID int64, p entity.TwoFactorPatch) error {
	err := s.repoDB.UpdateTwoFactor(ctx, accountID, p)
	if errors.Is(err, goerror.ErrConflict) {
		slog.WarnContext(ctx, "two factor state changed before write", "account_id", accountID)
		return errStateConflict()
	}
	if errors.Is(err, goerror.ErrNotFound) {
		slog.WarnContext(ctx, "account removed before write", "account_id", accountID)
		return errAccountNotFound()
	}
	if err != nil {
		slog.ErrorContext(ctx, "failed to repo update two factor", "account_id", accountID, "error", err)
		return goerror.NewServer(err)
	}
	return nil
}

func (s *Usecase) publishEnabled(ctx context.Context, accountID int64) {
	ev := TwoFactorEnabledEvent{
		EventID:    s.uid.Generate(),
		AccountID:  accountID,
		OccurredAt: s.clock.Now(),
	}

	s.dispatch(ctx, func(ctx context.Context) {
		if err := s.repoMessaging.PublishTwoFactorEnabled(ctx, ev); err != nil {
			slog.ErrorContext(ctx, "failed to publish two factor enabled", "account_id", accountID, "error", err)
		}
	})
}

func (s *Usecase) publishDisabled(ctx context.Context, accountID int64, reason string) {
	ev := TwoFactorDisabledEvent{
		EventID:    s.uid.Generate(),
		AccountID:  accountID,
		Reason:     reason,
		OccurredAt: s.clock.Now(),
	}

	s.dispatch(ctx, func(ctx context.Context) {
		if err := s.repoMessaging.PublishTwoFactorDisabled(ctx, ev); err != nil {
			slog.ErrorContext(ctx, "failed to publish two factor disabled", "account_id", accountID, "reason", reason, "error", err)
		}
	})
}

// dispatch runs publish in the background, or inline when the pool is full.
// A closed pool means shutdown is underway and the event is dropped.
func (s *Usecase) dispatch(ctx context.Context, publish func(ctx context.Context)) {
	ctx = context.WithoutCancel(ctx)

	err := s.goroutine.Go(ctx, func(ctx context.Context) error {
		publish(ctx)
		return nil
	})
	if errors.Is(err, goroutine.ErrLimitReached) {
		publish(ctx)
	}
}
