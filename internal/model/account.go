package model

import "time"

// Account is the stored representation of a registered user.
// EmailKey is the trimmed, lower-cased email and is unique across
// all accounts; it is the lookup key everywhere.
type Account struct {
	ID               string      `json:"id"`
	DisplayName      string      `json:"displayName"`
	EmailKey         string      `json:"email"`
	CredentialDigest string      `json:"credentialDigest"`
	CreatedAt        time.Time   `json:"createdAt"`
	LastLoginAt      *time.Time  `json:"lastLoginAt,omitempty"`
	Preferences      Preferences `json:"preferences"`
}

// Preferences maps named settings to values. Updates are shallow
// merges: keys present in the update overwrite, all others are kept.
type Preferences map[string]any

// DefaultPreferences returns the preferences assigned at registration.
func DefaultPreferences() Preferences {
	return Preferences{
		"theme":           "dark",
		"defaultLanguage": "en-US",
		"autoSave":        true,
	}
}

// Clone returns an independent copy of the preferences map.
func (p Preferences) Clone() Preferences {
	out := make(Preferences, len(p))
	for k, v := range p {
		out[k] = v
	}
	return out
}

// Merge applies partial on top of p and returns the result.
// Neither input is modified.
func (p Preferences) Merge(partial Preferences) Preferences {
	out := p.Clone()
	for k, v := range partial {
		out[k] = v
	}
	return out
}
