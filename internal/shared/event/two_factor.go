package event

import "time"

const TwoFactorEnabledDestination string = "account.two_factor.enabled"
const TwoFactorDisabledDestination string = "account.two_factor.disabled"

// Reasons carried by TwoFactorDisabledMessage.
const (
	TwoFactorDisabledReasonDisable  string = "disable"
	TwoFactorDisabledReasonRecovery string = "recovery"
)

type TwoFactorEnabledMessage struct {
	EventID    int64     `json:"event_id,string"`
	AccountID  int64     `json:"account_id,string"`
	OccurredAt time.Time `json:"occurred_at"`
}

type TwoFactorDisabledMessage struct {
	EventID    int64     `json:"event_id,string"`
	AccountID  int64     `json:"account_id,string"`
	Reason     string    `json:"reason"`
	OccurredAt time.Time `json:"occurred_at"`
}
