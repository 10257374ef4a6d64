package db

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"github.com/u22n/platform/internal/account/entity"
	"github.com/u22n/platform/internal/pkg/goerror"
	"github.com/u22n/platform/internal/pkg/instrument"
)

func setupTestDatabase(t *testing.T) *pgxpool.Pool {
	t.Helper()

	if testing.Short() {
		t.Skip("skipping postgres container test in short mode")
	}

	ctx := context.Background()
	ctr, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithInitScripts(filepath.Join("..", "..", "..", "..", "migrations", "0001_account_credentials.sql")),
		postgres.WithDatabase("platform"),
		postgres.WithUsername("platform"),
		postgres.WithPassword("pwd"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second)),
	)
	testcontainers.CleanupContainer(t, ctr)
	require.NoError(t, err)

	connString, err := ctr.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	pool, err := pgxpool.New(ctx, connString)
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	_, err = pool.Exec(ctx, `INSERT INTO accounts (id, username) VALUES (1, 'alice'), (2, 'bob')`)
	require.NoError(t, err)

	return pool
}

func TestDB_TwoFactorLifecycle(t *testing.T) {
	ctx := context.Background()
	s := NewDB(setupTestDatabase(t), instrument.NewNoop())

	require.NoError(t, s.Ping(ctx))

	rec, err := s.GetTwoFactor(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, "alice", rec.Username)
	assert.Equal(t, entity.TwoFactorUnenrolled, rec.State())
	assert.False(t, rec.Enabled)

	p, err := rec.Provision("5ec2e7")
	require.NoError(t, err)
	require.NoError(t, s.UpdateTwoFactor(ctx, 1, p))

	// same stale patch again loses the compare-and-set
	assert.ErrorIs(t, s.UpdateTwoFactor(ctx, 1, p), goerror.ErrConflict)

	rec, err = s.GetTwoFactor(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, entity.TwoFactorProvisioned, rec.State())
	assert.Equal(t, "5ec2e7", *rec.Secret)

	p, err = rec.Enroll("$argon2id$hash")
	require.NoError(t, err)
	require.NoError(t, s.UpdateTwoFactor(ctx, 1, p))

	rec, err = s.GetTwoFactor(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, entity.TwoFactorEnrolled, rec.State())
	assert.True(t, rec.Enabled)

	p, err = rec.Clear()
	require.NoError(t, err)
	require.NoError(t, s.UpdateTwoFactor(ctx, 1, p))

	rec, err = s.GetTwoFactor(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, entity.TwoFactorUnenrolled, rec.State())
	assert.Nil(t, rec.RecoveryCodeHash)
	assert.False(t, rec.Enabled)

	// the cleared row can be provisioned again through the upsert path
	p, err = rec.Provision("0ff1ce")
	require.NoError(t, err)
	require.NoError(t, s.UpdateTwoFactor(ctx, 1, p))
}

func TestDB_UpdateTwoFactor_StaleSecret(t *testing.T) {
	ctx := context.Background()
	s := NewDB(setupTestDatabase(t), instrument.NewNoop())

	rec, err := s.GetTwoFactor(ctx, 2)
	require.NoError(t, err)
	p, err := rec.Provision("aaaa")
	require.NoError(t, err)
	require.NoError(t, s.UpdateTwoFactor(ctx, 2, p))

	stale := entity.TwoFactorRecord{AccountID: 2, Secret: new(string)}
	*stale.Secret = "bbbb"
	p, err = stale.Enroll("hash")
	require.NoError(t, err)
	assert.ErrorIs(t, s.UpdateTwoFactor(ctx, 2, p), goerror.ErrConflict)

	rec, err = s.GetTwoFactor(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, entity.TwoFactorProvisioned, rec.State())
}

func TestDB_NotFound(t *testing.T) {
	ctx := context.Background()
	s := NewDB(setupTestDatabase(t), instrument.NewNoop())

	_, err := s.GetTwoFactor(ctx, 404)
	assert.ErrorIs(t, err, goerror.ErrNotFound)

	p, err := entity.TwoFactorRecord{AccountID: 404}.Provision("aaaa")
	require.NoError(t, err)
	assert.ErrorIs(t, s.UpdateTwoFactor(ctx, 404, p), goerror.ErrNotFound)
}

func TestDB_UpdateTwoFactor_InvalidPatch(t *testing.T) {
	s := NewDB(nil, instrument.NewNoop())

	h := "hash"
	err := s.UpdateTwoFactor(context.Background(), 1, entity.TwoFactorPatch{RecoveryCodeHash: &h})
	assert.ErrorIs(t, err, entity.ErrInvariantViolation)
}
