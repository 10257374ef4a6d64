package config

import (
	"io"
	"time"
)

// Config reads typed values by dotted key. Missing keys yield the zero value.
type Config interface {
	io.Closer

	// GetSecond reads an integer number of seconds.
	GetSecond(key string) time.Duration
	// GetMinute reads an integer number of minutes.
	GetMinute(key string) time.Duration

	GetInt(key string) int
	GetInt32(key string) int32
	GetUint(key string) uint
	GetFloat64(key string) float64
	GetBool(key string) bool
	GetString(key string) string

	// GetBinary reads a base64 encoded value. Invalid input yields nil.
	GetBinary(key string) []byte

	// GetArray reads a comma separated list, e.g. "a,b,c".
	GetArray(key string) []string
}
