package account

// Storage keys owned by the account store.
const (
	// usersKey holds the JSON array of all registered accounts.
	usersKey = "users"

	// sessionKey holds the JSON projection of the active session.
	sessionKey = "currentUser"

	// tempPrefix tags transient per-session values. Everything under
	// it is swept on logout.
	tempPrefix = "temp_"
)
