package models

import "time"

// AuditEntry is an append-only record of a session lifecycle transition.
// Entries are never mutated or deleted by this service.
type AuditEntry struct {
	SessionID string            `bson:"session_id,omitempty" json:"session_id,omitempty"`
	UserID    string            `bson:"user_id,omitempty" json:"user_id,omitempty"`
	Email     string            `bson:"email,omitempty" json:"email,omitempty"`
	Event     string            `bson:"event" json:"event"`
	IPAddress string            `bson:"ip_address,omitempty" json:"ip_address,omitempty"`
	UserAgent string            `bson:"user_agent,omitempty" json:"user_agent,omitempty"`
	Metadata  map[string]string `bson:"metadata,omitempty" json:"metadata,omitempty"`
	CreatedAt time.Time         `bson:"created_at" json:"created_at"`
}

// Audit event constants
const (
	EventLogin       = "login"
	EventLogout      = "logout"
	EventExpired     = "expired"
	EventRevoked     = "revoked"
	EventInvalidated = "invalidated"
)

// Invalidation reason constants, carried in AuditEntry.Metadata["reason"]
const (
	ReasonInvalidSignature = "invalid-signature"
	ReasonSessionNotFound  = "session-not-found"
	ReasonRevoked          = "revoked"
	ReasonIdleTimeout      = "idle-timeout"
	ReasonAbsoluteTimeout  = "absolute-timeout"
)
