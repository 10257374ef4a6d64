// Package uid generates unique identifiers: time-ordered UUIDs for
// correlation and snowflake numbers for events.
package uid

// NumberID generates numeric identifiers.
type NumberID interface {
	Generate() int64
}

// StringID generates string identifiers.
type StringID interface {
	Generate() string
}
