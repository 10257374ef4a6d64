package entity

// TwoFactorState is the lifecycle state derived from the stored credential columns.
type TwoFactorState int16

const (
	// TwoFactorUnenrolled means no shared secret is stored.
	TwoFactorUnenrolled TwoFactorState = iota
	// TwoFactorProvisioned means a secret is stored but was never verified.
	TwoFactorProvisioned
	// TwoFactorEnrolled means the secret was verified and a recovery code issued.
	TwoFactorEnrolled
)

func (s TwoFactorState) String() string {
	switch s {
	case TwoFactorProvisioned:
		return "provisioned"
	case TwoFactorEnrolled:
		return "enrolled"
	default:
		return "unenrolled"
	}
}
