// Package validator checks structs against their `validate` tags and reports
// failures keyed by json field name. It also registers the otpcode and
// recoverycode rules used for two-factor input.
package validator
