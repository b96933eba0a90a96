package model

import "time"

// Session is the externally visible projection of the authenticated
// account. It carries every account field except the credential
// digest, which must never leave the account store.
type Session struct {
	AccountID      string      `json:"accountId"`
	DisplayName    string      `json:"displayName"`
	EmailKey       string      `json:"email"`
	CreatedAt      time.Time   `json:"createdAt"`
	LastLoginAt    *time.Time  `json:"lastLoginAt,omitempty"`
	Preferences    Preferences `json:"preferences"`
	LastActivityAt time.Time   `json:"lastActivityAt"`
}

// NewSession projects an account into a session with the given
// activity timestamp.
func NewSession(account *Account, now time.Time) *Session {
	return &Session{
		AccountID:      account.ID,
		DisplayName:    account.DisplayName,
		EmailKey:       account.EmailKey,
		CreatedAt:      account.CreatedAt,
		LastLoginAt:    account.LastLoginAt,
		Preferences:    account.Preferences.Clone(),
		LastActivityAt: now,
	}
}

// IdleFor reports how long the session has been without activity.
func (s *Session) IdleFor(now time.Time) time.Duration {
	return now.Sub(s.LastActivityAt)
}
