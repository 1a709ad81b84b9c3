package models

import "time"

// BlockedIP is a permanently blocked source address. A block stays in place
// until it is lifted by a manual store edit; there is no unblock endpoint.
type BlockedIP struct {
	IPAddress string    `json:"ip_address"`
	Reason    string    `json:"reason"`
	BlockedBy string    `json:"blocked_by"`
	BlockedAt time.Time `json:"blocked_at"`
}
