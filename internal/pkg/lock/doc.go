// Package lock provides short-lived mutual exclusion leases backed by Redis.
//
// A lease is identified by a random token so only its holder can release it,
// and it expires on its own if the holder dies.
package lock
