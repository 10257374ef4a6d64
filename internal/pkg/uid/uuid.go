package uid

import "github.com/google/uuid"

// UUID generates time-ordered (v7) UUID strings, used for correlation IDs
// and JWT token IDs.
type UUID struct{}

// NewUUID returns a UUID generator.
func NewUUID() *UUID {
	return &UUID{}
}

// Generate returns a v7 UUID, or a random v4 one if the v7 source fails.
func (*UUID) Generate() string {
	if id, err := uuid.NewV7(); err == nil {
		return id.String()
	}

	return uuid.NewString()
}
