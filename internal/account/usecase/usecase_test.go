package usecase

import (
	"context"
	"encoding/hex"
	"fmt"
	"strconv"
	"sync"
	"testing"
	"time"

	pqotp "github.com/pquerna/otp"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/u22n/platform/internal/account/entity"
	"github.com/u22n/platform/internal/pkg/clock"
	"github.com/u22n/platform/internal/pkg/config"
	"github.com/u22n/platform/internal/pkg/goerror"
	"github.com/u22n/platform/internal/pkg/goroutine"
	"github.com/u22n/platform/internal/pkg/hash"
	"github.com/u22n/platform/internal/pkg/instrument"
	"github.com/u22n/platform/internal/pkg/mfa"
	"github.com/u22n/platform/internal/pkg/otp"
	"github.com/u22n/platform/internal/pkg/uid"
	"github.com/u22n/platform/internal/pkg/validator"
)

// fakeStore applies patches with the same compare-and-set rule as the SQL store.
type fakeStore struct {
	mu      sync.Mutex
	recs    map[int64]entity.TwoFactorRecord
	updates int

	// failUpdates is consumed one entry per UpdateTwoFactor call.
	failUpdates []error
}

func (f *fakeStore) failNextUpdate(err error) {
	f.mu.Lock()
	f.failUpdates = append(f.failUpdates, err)
	f.mu.Unlock()
}

func newFakeStore() *fakeStore {
	return &fakeStore{recs: map[int64]entity.TwoFactorRecord{}}
}

func (f *fakeStore) add(id int64, username string) {
	f.mu.Lock()
	f.recs[id] = entity.TwoFactorRecord{AccountID: id, Username: username}
	f.mu.Unlock()
}

func (f *fakeStore) get(id int64) entity.TwoFactorRecord {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.recs[id]
}

func (f *fakeStore) GetTwoFactor(_ context.Context, id int64) (*entity.TwoFactorRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	rec, ok := f.recs[id]
	if !ok {
		return nil, goerror.ErrNotFound
	}
	return &rec, nil
}

func (f *fakeStore) UpdateTwoFactor(_ context.Context, id int64, p entity.TwoFactorPatch) error {
	if err := p.Validate(); err != nil {
		return err
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	if len(f.failUpdates) > 0 {
		err := f.failUpdates[0]
		f.failUpdates = f.failUpdates[1:]
		return err
	}

	rec, ok := f.recs[id]
	if !ok {
		return goerror.ErrNotFound
	}
	if !samePtr(rec.Secret, p.PrevSecret) || !samePtr(rec.RecoveryCodeHash, p.PrevRecoveryCodeHash) {
		return goerror.ErrConflict
	}

	rec.Secret = p.Secret
	rec.RecoveryCodeHash = p.RecoveryCodeHash
	rec.Enabled = p.Enabled
	f.recs[id] = rec
	f.updates++
	return nil
}

func samePtr(a, b *string) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

type fakeCache struct {
	mu   sync.Mutex
	used map[string]time.Duration
}

func usedKey(accountID int64, secret, code string) string {
	return strconv.FormatInt(accountID, 10) + ":" + secret + ":" + code
}

func (c *fakeCache) CodeUsed(_ context.Context, accountID int64, secret, code string) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	_, ok := c.used[usedKey(accountID, secret, code)]
	return ok, nil
}

func (c *fakeCache) MarkCodeUsed(_ context.Context, accountID int64, secret, code string, ttl time.Duration) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	key := usedKey(accountID, secret, code)
	if _, ok := c.used[key]; ok {
		return false, nil
	}
	c.used[key] = ttl
	return true, nil
}

type fakeLocker struct {
	mu   sync.Mutex
	keys []string
	err  error
}

func (l *fakeLocker) Obtain(_ context.Context, key string, _ time.Duration) (func(context.Context) error, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.err != nil {
		return nil, l.err
	}
	l.keys = append(l.keys, key)
	return func(context.Context) error { return nil }, nil
}

type fakePublisher struct {
	mu       sync.Mutex
	enabled  []TwoFactorEnabledEvent
	disabled []TwoFactorDisabledEvent
	err      error
}

func (p *fakePublisher) PublishTwoFactorEnabled(_ context.Context, msg TwoFactorEnabledEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.enabled = append(p.enabled, msg)
	return p.err
}

func (p *fakePublisher) PublishTwoFactorDisabled(_ context.Context, msg TwoFactorDisabledEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.disabled = append(p.disabled, msg)
	return p.err
}

type mockRepoDB struct {
	mock.Mock
}

func (m *mockRepoDB) GetTwoFactor(ctx context.Context, accountID int64) (*entity.TwoFactorRecord, error) {
	args := m.Called(ctx, accountID)
	rec, _ := args.Get(0).(*entity.TwoFactorRecord)
	return rec, args.Error(1)
}

func (m *mockRepoDB) UpdateTwoFactor(ctx context.Context, accountID int64, p entity.TwoFactorPatch) error {
	return m.Called(ctx, accountID, p).Error(0)
}

type fixture struct {
	uc     *Usecase
	store  *fakeStore
	cache  *fakeCache
	pub    *fakePublisher
	locker *fakeLocker
	clock  *clock.Manual
	totp   *otp.TOTP
	gr     *goroutine.Manager
}

type fixtureOptions struct {
	replayGuard bool
	encryptor   mfa.Encryptor
	repoDB      repoDB
}

type fixtureOption func(*fixtureOptions)

func withReplayGuard() fixtureOption {
	return func(o *fixtureOptions) { o.replayGuard = true }
}

func withEncryptor(e mfa.Encryptor) fixtureOption {
	return func(o *fixtureOptions) { o.encryptor = e }
}

func withRepoDB(r repoDB) fixtureOption {
	return func(o *fixtureOptions) { o.repoDB = r }
}

func newFixture(t *testing.T, opts ...fixtureOption) *fixture {
	t.Helper()

	o := fixtureOptions{encryptor: mfa.PlainEncryptor{}}
	for _, opt := range opts {
		opt(&o)
	}

	cfg, err := config.NewViperFromBytes("yaml", []byte(fmt.Sprintf(
		"mfa:\n  replay_guard: %t\nmodules:\n  account:\n    lock_ttl_seconds: 5\n", o.replayGuard)))
	require.NoError(t, err)

	v, err := validator.NewV10Validator()
	require.NoError(t, err)

	sf, err := uid.NewSnowflakeWithNode(1)
	require.NoError(t, err)

	f := &fixture{
		store:  newFakeStore(),
		cache:  &fakeCache{used: map[string]time.Duration{}},
		pub:    &fakePublisher{},
		locker: &fakeLocker{},
		clock:  clock.NewManual(time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)),
		totp:   otp.NewTOTP("UnInbox.com", 30, 1, pqotp.DigitsSix),
		gr:     goroutine.NewManager(10),
	}
	f.store.add(1, "alice")
	f.store.add(2, "bob")

	var db repoDB = f.store
	if o.repoDB != nil {
		db = o.repoDB
	}

	f.uc = New(Dependency{
		RepoDB:          db,
		RepoCache:       f.cache,
		RepoMessaging:   f.pub,
		Locker:          f.locker,
		Validator:       v,
		Config:          cfg,
		Hash:            hash.NewArgon2id("pepper"),
		MFAEncryptor:    o.encryptor,
		MFARecoveryCode: mfa.NewRecoveryCode(),
		UID:             sf,
		Totp:            f.totp,
		Clock:           f.clock,
		Instrument:      instrument.NewNoop(),
		Goroutine:       f.gr,
	})

	return f
}

// code returns the TOTP code for the stored secret of id at the fixture time
// shifted by offset.
func (f *fixture) code(t *testing.T, id int64, offset time.Duration) string {
	t.Helper()

	rec := f.store.get(id)
	require.NotNil(t, rec.Secret)

	secret, err := f.uc.openSecret(context.Background(), &rec)
	require.NoError(t, err)

	code, err := f.totp.GenerateCode(secret, f.clock.Now().Add(offset))
	require.NoError(t, err)
	return code
}

// nextCode advances the clock until the account's current code differs from prev.
func (f *fixture) nextCode(t *testing.T, id int64, prev string) string {
	t.Helper()

	for {
		f.clock.Advance(30 * time.Second)
		if next := f.code(t, id, 0); next != prev {
			return next
		}
	}
}

func (f *fixture) rawSecretHex(t *testing.T, id int64) string {
	t.Helper()

	rec := f.store.get(id)
	secret, err := f.uc.openSecret(context.Background(), &rec)
	require.NoError(t, err)
	return hex.EncodeToString(secret)
}

func errMsg(t *testing.T, err error) string {
	t.Helper()

	var gerr *goerror.Error
	require.ErrorAs(t, err, &gerr)
	return gerr.Msg()
}

func requireCode(t *testing.T, err error, code goerror.Code) {
	t.Helper()

	var gerr *goerror.Error
	require.ErrorAs(t, err, &gerr)
	require.Equal(t, code, gerr.Code(), gerr.String())
}
