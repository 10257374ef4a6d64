package entity

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }

func TestTwoFactorRecord_State(t *testing.T) {
	tests := []struct {
		name string
		rec  TwoFactorRecord
		want TwoFactorState
	}{
		{name: "unenrolled", rec: TwoFactorRecord{}, want: TwoFactorUnenrolled},
		{name: "provisioned", rec: TwoFactorRecord{Secret: strPtr("aa")}, want: TwoFactorProvisioned},
		{name: "enrolled", rec: TwoFactorRecord{Secret: strPtr("aa"), RecoveryCodeHash: strPtr("h"), Enabled: true}, want: TwoFactorEnrolled},
		{name: "hash presence alone is enrolled", rec: TwoFactorRecord{Secret: strPtr("aa"), RecoveryCodeHash: strPtr("h")}, want: TwoFactorEnrolled},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.rec.State())
		})
	}

	assert.Equal(t, "unenrolled", TwoFactorUnenrolled.String())
	assert.Equal(t, "provisioned", TwoFactorProvisioned.String())
	assert.Equal(t, "enrolled", TwoFactorEnrolled.String())
}

func TestTwoFactorRecord_Provision(t *testing.T) {
	p, err := TwoFactorRecord{AccountID: 1}.Provision("abcd")
	require.NoError(t, err)
	assert.Equal(t, "abcd", *p.Secret)
	assert.Nil(t, p.RecoveryCodeHash)
	assert.False(t, p.Enabled)
	assert.Nil(t, p.PrevSecret)

	_, err = TwoFactorRecord{Secret: strPtr("aa")}.Provision("abcd")
	assert.ErrorIs(t, err, ErrAlreadyProvisioned)

	_, err = TwoFactorRecord{}.Provision("")
	assert.ErrorIs(t, err, ErrEmptyCredentialData)
}

func TestTwoFactorRecord_Enroll(t *testing.T) {
	rec := TwoFactorRecord{Secret: strPtr("aa")}

	p, err := rec.Enroll("hash")
	require.NoError(t, err)
	assert.True(t, p.Enabled)
	assert.Equal(t, "aa", *p.Secret)
	assert.Equal(t, "hash", *p.RecoveryCodeHash)
	assert.Equal(t, "aa", *p.PrevSecret)
	assert.Nil(t, p.PrevRecoveryCodeHash)

	_, err = TwoFactorRecord{}.Enroll("hash")
	assert.ErrorIs(t, err, ErrNotProvisioned)

	_, err = TwoFactorRecord{Secret: strPtr("aa"), RecoveryCodeHash: strPtr("h")}.Enroll("hash")
	assert.ErrorIs(t, err, ErrAlreadyEnrolled)
}

func TestTwoFactorRecord_Clear(t *testing.T) {
	rec := TwoFactorRecord{Secret: strPtr("aa"), RecoveryCodeHash: strPtr("h"), Enabled: true}

	p, err := rec.Clear()
	require.NoError(t, err)
	assert.Nil(t, p.Secret)
	assert.Nil(t, p.RecoveryCodeHash)
	assert.False(t, p.Enabled)
	assert.Equal(t, "aa", *p.PrevSecret)
	assert.Equal(t, "h", *p.PrevRecoveryCodeHash)
	assert.NoError(t, p.Validate())

	_, err = TwoFactorRecord{}.Clear()
	assert.ErrorIs(t, err, ErrNotProvisioned)
}

func TestTwoFactorPatch_Validate(t *testing.T) {
	assert.ErrorIs(t, TwoFactorPatch{RecoveryCodeHash: strPtr("h")}.Validate(), ErrInvariantViolation)
	assert.ErrorIs(t, TwoFactorPatch{Secret: strPtr("aa"), Enabled: true}.Validate(), ErrInvariantViolation)
	assert.NoError(t, TwoFactorPatch{}.Validate())
}
