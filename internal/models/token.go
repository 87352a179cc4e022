package models

import "time"

// RefreshToken is one persisted refresh session. Tokens rotate: a
// successful refresh revokes the presented row and inserts a
// replacement, so a token value is redeemable at most once.
type RefreshToken struct {
	ID        string     `db:"id" json:"id"`
	UserID    string     `db:"user_id" json:"user_id"`
	Token     string     `db:"token" json:"token"`
	ExpiresAt time.Time  `db:"expires_at" json:"expires_at"`
	CreatedAt time.Time  `db:"created_at" json:"created_at"`
	Revoked   bool       `db:"revoked" json:"revoked"`
	RevokedAt *time.Time `db:"revoked_at" json:"revoked_at,omitempty"`
	IPAddress string     `db:"ip_address" json:"ip_address"`
	UserAgent string     `db:"user_agent" json:"user_agent"`
}

// Usable reports whether the token can still be redeemed at the given
// instant. Revocation is permanent.
func (t *RefreshToken) Usable(now time.Time) bool {
	return !t.Revoked && t.RevokedAt == nil && now.Before(t.ExpiresAt)
}
