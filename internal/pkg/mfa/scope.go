package mfa

// Purpose identifies the MFA encryption purpose.
type Purpose string

// PurposeOTPSeed scopes encryption to TOTP shared secrets.
const PurposeOTPSeed Purpose = "otp_seed"

// Scope binds encryption to an account and purpose.
// It is used as AAD (Additional Authenticated Data) in AES-GCM.
type Scope struct {
	AccountID int64
	Purpose   Purpose
}
