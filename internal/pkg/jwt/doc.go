// Package jwt issues and verifies the HS512 bearer tokens that identify the
// calling account, and carries verified claims through a request context.
package jwt
