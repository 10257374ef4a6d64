package inbound

type TwoFactorStatusResponse struct {
	State   string `json:"state" example:"enrolled"`
	Enabled bool   `json:"enabled" example:"true"`
}

type TwoFactorProvisionResponse struct {
	URI string `json:"uri" example:"otpauth://totp/UnInbox.com:alice?issuer=UnInbox.com&secret=JBSWY3DPEHPK3PXP"`
}

func (TwoFactorProvisionResponse) Message() string {
	return "Scan the code with your authenticator app, then verify it with a code."
}

type TwoFactorVerifyRequest struct {
	Code string `json:"code"`
}

type TwoFactorVerifyResponse struct {
	RecoveryCode string `json:"recovery_code" example:"a1B2-c3D4-e5F6-g7H8"`
}

func (TwoFactorVerifyResponse) Message() string {
	return "Two Factor Authentication (2FA) enabled. Store the recovery code safely, it will not be shown again."
}

type TwoFactorDisableRequest struct {
	Code string `json:"code"`
}

type TwoFactorRecoverRequest struct {
	RecoveryCode string `json:"recovery_code"`
}
