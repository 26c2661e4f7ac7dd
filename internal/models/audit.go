package models

import "time"

// AuditEvent is one row of the audit_events table.
type AuditEvent struct {
	ID            int64             `json:"id"`
	Timestamp     time.Time         `json:"timestamp"`
	Category      string            `json:"category"`
	EventType     string            `json:"eventType"`
	UserID        string            `json:"userId,omitempty"`
	Email         string            `json:"email,omitempty"`
	IP            string            `json:"ip"`
	UserAgent     string            `json:"userAgent,omitempty"`
	Success       bool              `json:"success"`
	FailureReason string            `json:"failureReason,omitempty"`
	Details       map[string]string `json:"details,omitempty"`
}
