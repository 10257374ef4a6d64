// Package hash provides helpers for hashing and verifying secrets.
//
// Slow hashers (Argon2id, bcrypt) protect low-volume secrets such as recovery
// codes: store only the encoded hash and verify submitted plaintext against it.
// HMACSHA256 is a fast keyed digest for lookup keys that must not reveal their
// input.
package hash
