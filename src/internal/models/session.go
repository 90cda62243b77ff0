package models

import "time"

// AdminSession is the persisted server-side session row. The raw token is
// never stored; only its SHA-256 digest is kept as the lookup key.
type AdminSession struct {
	SessionID    string     `bson:"session_id" json:"sessionId"`
	UserID       string     `bson:"user_id" json:"userId"`
	Email        string     `bson:"email" json:"email"`
	TokenHash    string     `bson:"session_token_hash" json:"-"`
	CreatedAt    time.Time  `bson:"created_at" json:"createdAt"`
	LastActivity time.Time  `bson:"last_activity" json:"lastActivity"`
	ExpiresAt    time.Time  `bson:"expires_at" json:"expiresAt"`
	RevokedAt    *time.Time `bson:"revoked_at,omitempty" json:"revokedAt,omitempty"`
	IPAddress    string     `bson:"ip_address,omitempty" json:"ipAddress,omitempty"`
	UserAgent    string     `bson:"user_agent,omitempty" json:"userAgent,omitempty"`
}

// IsRevoked checks if the session was explicitly invalidated.
func (s *AdminSession) IsRevoked() bool {
	return s.RevokedAt != nil
}

// RequestMeta carries client attribution recorded on every lifecycle transition.
type RequestMeta struct {
	IPAddress string
	UserAgent string
}
