package uid

import (
	"crypto/sha256"
	"encoding/binary"
	"errors"
	"os"
	"strings"

	"github.com/bwmarrin/snowflake"
)

// ErrStableNodeIdentityUnavailable indicates no stable node identity is available.
var ErrStableNodeIdentityUnavailable = errors.New("uid: cannot determine stable node identity (machine-id/hostname unavailable)")

// Snowflake generates 63-bit time-ordered numeric IDs.
type Snowflake struct {
	node *snowflake.Node
}

// NewSnowflake derives the node number from the machine identity.
func NewSnowflake() (*Snowflake, error) {
	src, err := machineIDOrHostname()
	if err != nil {
		return nil, err
	}

	sum := sha256.Sum256([]byte(src))
	nodeID := int64(binary.BigEndian.Uint16(sum[:2])) % (1 << snowflake.NodeBits)

	return NewSnowflakeWithNode(nodeID)
}

// NewSnowflakeWithNode builds a generator for an explicit node number.
func NewSnowflakeWithNode(nodeID int64) (*Snowflake, error) {
	node, err := snowflake.NewNode(nodeID)
	if err != nil {
		return nil, err
	}

	return &Snowflake{node: node}, nil
}

// Generate returns the next ID.
func (s *Snowflake) Generate() int64 {
	return s.node.Generate().Int64()
}

func machineIDOrHostname() (string, error) {
	if b, err := os.ReadFile("/etc/machine-id"); err == nil {
		if s := strings.TrimSpace(string(b)); s != "" {
			return s, nil
		}
	}

	if h, err := os.Hostname(); err == nil {
		if h = strings.TrimSpace(h); h != "" {
			return h, nil
		}
	}

	return "", ErrStableNodeIdentityUnavailable
}
