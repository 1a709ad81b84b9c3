package models

import "time"

// SuspiciousIP is a source address linked to more distinct marketplace
// accounts than the configured threshold allows
type SuspiciousIP struct {
	IPAddress    string   `json:"ip_address"`
	AccountCount int      `json:"account_count"`
	Usernames    []string `json:"usernames"`
	Emails       []string `json:"emails"`
}

// FailedLoginCluster is a source address with an anomalous concentration of
// failed login attempts inside the trailing analysis window
type FailedLoginCluster struct {
	IPAddress      string    `json:"ip_address"`
	FailedAttempts int       `json:"failed_attempts"`
	LastAttempt    time.Time `json:"last_attempt"`
}

// SecurityStats summarizes login activity for the security dashboard
type SecurityStats struct {
	TotalAttempts int `json:"total_attempts"`
	Successful    int `json:"successful"`
	Failed        int `json:"failed"`
	BlockedIPs    int `json:"blocked_ips"`
}
