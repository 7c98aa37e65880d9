package domain

import "time"

// Session is a server-side login issued on top of an identity-provider token.
// It lets a user list and revoke their logins independently of token expiry.
type Session struct {
	ID        string            `json:"id"`
	UserID    string            `json:"user_id"`
	Role      string            `json:"role,omitempty"`
	ExpiresAt time.Time         `json:"expires_at"`
	CreatedAt time.Time         `json:"created_at"`
	Metadata  map[string]string `json:"metadata,omitempty"`
}

// NewSession opens a session for user lasting ttl from now.
func NewSession(id string, user *User, now time.Time, ttl time.Duration) *Session {
	return &Session{
		ID:        id,
		UserID:    user.ID,
		Role:      user.Role,
		CreatedAt: now,
		ExpiresAt: now.Add(ttl),
	}
}

func (s *Session) IsExpired(at time.Time) bool {
	return s == nil || !s.ExpiresAt.After(at)
}

// OwnedBy reports whether the session belongs to userID.
func (s *Session) OwnedBy(userID string) bool {
	return s != nil && userID != "" && s.UserID == userID
}

// Remaining is the lifetime left at the given instant, never negative.
func (s *Session) Remaining(at time.Time) time.Duration {
	if s.IsExpired(at) {
		return 0
	}
	return s.ExpiresAt.Sub(at)
}
