package hash

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestArgon2id(t *testing.T) {
	h := NewArgon2id("pepper")

	hashed, err := h.Hash("AbCd-EfGh-IjKl-MnOp")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(hashed), "$argon2id$v=19$m=32768,t=3,p=2$"))

	assert.True(t, h.Verify(string(hashed), "AbCd-EfGh-IjKl-MnOp"))
	assert.False(t, h.Verify(string(hashed), "AbCd-EfGh-IjKl-MnOq"))
	assert.False(t, NewArgon2id("other").Verify(string(hashed), "AbCd-EfGh-IjKl-MnOp"))
	assert.False(t, h.Verify("", "AbCd-EfGh-IjKl-MnOp"))
	assert.False(t, h.Verify(string(hashed), ""))
}

func TestArgon2id_SaltedHashesDiffer(t *testing.T) {
	h := NewArgon2id("")

	h1, err := h.Hash("same")
	require.NoError(t, err)
	h2, err := h.Hash("same")
	require.NoError(t, err)

	assert.NotEqual(t, string(h1), string(h2))
}

func TestArgon2id_VerifyRejectsMalformed(t *testing.T) {
	h := NewArgon2id("")

	tests := []struct {
		name   string
		hashed string
	}{
		{name: "not enough parts", hashed: "$argon2id$v=19$abc"},
		{name: "other algorithm", hashed: "$argon2i$v=19$m=32768,t=3,p=2$c2FsdA$aGFzaA"},
		{name: "wrong version", hashed: "$argon2id$v=1$m=32768,t=3,p=2$c2FsdA$aGFzaA"},
		{name: "bad params", hashed: "$argon2id$v=19$m=x,t=3,p=2$c2FsdA$aGFzaA"},
		{name: "memory too large", hashed: "$argon2id$v=19$m=999999999,t=3,p=2$c2FsdA$aGFzaA"},
		{name: "bad salt", hashed: "$argon2id$v=19$m=32768,t=3,p=2$!!!$aGFzaA"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.False(t, h.Verify(tt.hashed, "secret"))
		})
	}
}

func TestBcrypt(t *testing.T) {
	h := NewBcrypt(bcrypt.MinCost, "pepper")

	hashed, err := h.Hash("recovery")
	require.NoError(t, err)

	assert.True(t, h.Verify(string(hashed), "recovery"))
	assert.False(t, h.Verify(string(hashed), "recoverY"))
	assert.False(t, h.Verify("", "recovery"))
	assert.False(t, NewBcrypt(bcrypt.MinCost, "other").Verify(string(hashed), "recovery"))
}

func TestBcrypt_CostFallback(t *testing.T) {
	assert.Equal(t, bcrypt.DefaultCost, NewBcrypt(0, "").cost)
	assert.Equal(t, bcrypt.DefaultCost, NewBcrypt(bcrypt.MaxCost+1, "").cost)
	assert.Equal(t, bcrypt.MinCost, NewBcrypt(bcrypt.MinCost, "").cost)
}

func TestHMACSHA256(t *testing.T) {
	h := NewHMACSHA256("secret")

	d1, err := h.Hash("1:123456")
	require.NoError(t, err)
	d2, err := h.Hash("1:123456")
	require.NoError(t, err)

	assert.Equal(t, d1, d2)
	assert.Len(t, d1, 64)
	assert.True(t, h.Verify(string(d1), "1:123456"))
	assert.False(t, h.Verify(string(d1), "2:123456"))
}

func TestNewFromAlgorithm(t *testing.T) {
	h, err := NewFromAlgorithm("argon2id", Options{Argon2Limit: 4})
	require.NoError(t, err)
	assert.IsType(t, &Argon2id{}, h)
	assert.Equal(t, 4, cap(h.(*Argon2id).sema))

	h, err = NewFromAlgorithm("", Options{})
	require.NoError(t, err)
	assert.IsType(t, &Argon2id{}, h)

	h, err = NewFromAlgorithm(" BCRYPT ", Options{BcryptCost: bcrypt.MinCost})
	require.NoError(t, err)
	assert.IsType(t, &Bcrypt{}, h)

	_, err = NewFromAlgorithm("md5", Options{})
	assert.ErrorIs(t, err, ErrUnknownAlgorithm)
}
