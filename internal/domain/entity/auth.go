package entity

import (
	"time"

	"github.com/google/uuid"
)

// RefreshToken is the server-side record of one issued refresh credential.
// A record is usable iff it is not revoked and ExpiresAt is in the future.
// Revoked only ever moves from false to true; records are never deleted.
type RefreshToken struct {
	ID         uuid.UUID  // The unique ID for this record.
	UserID     uuid.UUID  // Owner of the session.
	TokenHash  string     // SHA-256 hex of the raw token; the unique lookup key.
	ExpiresAt  time.Time  // Stored expiry, checked in addition to the signed one.
	Revoked    bool       // Set on rotation or logout.
	RevokedAt  *time.Time // When Revoked flipped.
	ReplacedBy *uuid.UUID // Successor issued by rotation, nil for logout.
	CreatedAt  time.Time
}

// UsableAt reports whether the token may be exchanged at the given instant.
func (t *RefreshToken) UsableAt(now time.Time) bool {
	return t != nil && !t.Revoked && t.ExpiresAt.After(now)
}

// Identity is the authenticated principal attached to a request by the auth gate.
type Identity struct {
	UserID uuid.UUID
	Email  string
}

// SessionInfo describes one active session for display.
type SessionInfo struct {
	ID        uuid.UUID `json:"id"`
	CreatedAt time.Time `json:"createdAt"`
	ExpiresAt time.Time `json:"expiresAt"`
}
