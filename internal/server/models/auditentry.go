package models

import "time"

// Audit action kinds. The set is closed; new actions require a new constant.
const (
	ActionRegister     = "REGISTER"
	ActionLogin        = "LOGIN"
	ActionGuestLogin   = "GUEST_LOGIN"
	ActionUploadFile   = "UPLOAD_FILE"
	ActionDownloadFile = "DOWNLOAD_FILE"
)

// AuditEntry is an immutable fact about a security-relevant action.
// Entries are append-only: never updated, never deleted. Ordering is by
// timestamp, ties broken by insertion order.
type AuditEntry struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	Action    string    `json:"action"`
	IPAddress string    `json:"ipAddress"`
	CreatedAt time.Time `json:"timestamp"`
}
