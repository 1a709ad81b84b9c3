package models

import (
	"bytes"
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// AuditField is one key/value pair in an audit details payload
type AuditField struct {
	Key   string
	Value string
}

// AuditDetails is an order-preserving key/value payload attached to an audit
// entry. It marshals to a JSON object with keys in insertion order, so the
// console renders details in the order the action recorded them.
type AuditDetails []AuditField

// MarshalJSON encodes the details as a JSON object, preserving field order
func (d AuditDetails) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, f := range d {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(f.Key)
		if err != nil {
			return nil, err
		}
		val, err := json.Marshal(f.Value)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// AuditEntry is an immutable record of one privileged action
type AuditEntry struct {
	ID            uuid.UUID       `json:"id"`
	AdminUsername string          `json:"admin_username"`
	Action        string          `json:"action"`
	Details       json.RawMessage `json:"details"`
	Timestamp     time.Time       `json:"timestamp"`
}

// Audit action names recorded by the back office
const (
	AuditActionBlockIP        = "block_ip"
	AuditActionCreateAdmin    = "create_admin"
	AuditActionUpdateRole     = "update_admin_role"
	AuditActionDisableAdmin   = "disable_admin"
	AuditActionUpdateUser     = "update_user"
	AuditActionDeleteUser     = "delete_user"
	AuditActionApproveUpgrade = "approve_upgrade_request"
	AuditActionRejectUpgrade  = "reject_upgrade_request"
)
