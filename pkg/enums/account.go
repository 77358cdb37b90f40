package enums

import "fmt"

// PartnerAccountStatus maps to the partner_account_status enum in Postgres.
type PartnerAccountStatus string

const (
	AccountNotConnected PartnerAccountStatus = "not_connected"
	AccountPending      PartnerAccountStatus = "pending"
	AccountActive       PartnerAccountStatus = "active"
	AccountDisconnected PartnerAccountStatus = "disconnected"
	AccountError        PartnerAccountStatus = "error"
)

var validPartnerAccountStatuses = []PartnerAccountStatus{
	AccountNotConnected,
	AccountPending,
	AccountActive,
	AccountDisconnected,
	AccountError,
}

// IsValid reports whether the value matches the canonical partner_account_status enum.
func (s PartnerAccountStatus) IsValid() bool {
	for _, candidate := range validPartnerAccountStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// ParsePartnerAccountStatus converts raw input into PartnerAccountStatus.
func ParsePartnerAccountStatus(value string) (PartnerAccountStatus, error) {
	for _, candidate := range validPartnerAccountStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid partner account status %q", value)
}
