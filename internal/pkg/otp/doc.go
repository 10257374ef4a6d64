// Package otp provides helpers for generating and validating time-based
// one-time passwords (TOTP) against raw shared secrets.
//
// Secrets are handled as raw bytes; the base32 form only appears inside the
// provisioning URI handed to authenticator apps.
package otp
