package uid

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUUID_Generate(t *testing.T) {
	g := NewUUID()

	id := g.Generate()
	parsed, err := uuid.Parse(id)
	require.NoError(t, err)
	assert.Equal(t, uuid.Version(7), parsed.Version())
	assert.NotEqual(t, id, g.Generate())
}

func TestSnowflake_Generate(t *testing.T) {
	g, err := NewSnowflakeWithNode(1)
	require.NoError(t, err)

	prev := g.Generate()
	for range 100 {
		next := g.Generate()
		assert.Greater(t, next, prev)
		prev = next
	}
}

func TestNewSnowflakeWithNode_OutOfRange(t *testing.T) {
	_, err := NewSnowflakeWithNode(1 << 20)
	assert.Error(t, err)
}
