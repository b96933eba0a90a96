package account

import (
	"regexp"
	"strings"

	"github.com/voxnote/voxnote/internal/model"
)

// emailPattern accepts the usual local@domain.tld shape and nothing
// fancier; addresses are normalized before matching.
var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

const (
	minNameLength     = 2
	minPasswordLength = 6
)

// normalizeEmail trims and lower-cases an email address into the
// emailKey form used for lookups and uniqueness.
func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// validateName returns the trimmed display name.
func validateName(name string) (string, error) {
	trimmed := strings.TrimSpace(name)
	if len(trimmed) < minNameLength {
		return "", &model.ValidationError{
			Field:  "name",
			Reason: "display name must be at least 2 characters",
		}
	}
	return trimmed, nil
}

// validateEmail returns the normalized emailKey.
func validateEmail(email string) (string, error) {
	key := normalizeEmail(email)
	if !emailPattern.MatchString(key) {
		return "", &model.ValidationError{
			Field:  "email",
			Reason: "email address is not valid",
		}
	}
	return key, nil
}

func validatePassword(field, password string) error {
	if len(password) < minPasswordLength {
		reason := "password must be at least 6 characters"
		if field != "password" {
			reason = "new password must be at least 6 characters"
		}
		return &model.ValidationError{Field: field, Reason: reason}
	}
	return nil
}

func validateLoginPassword(password string) error {
	if password == "" {
		return &model.ValidationError{
			Field:  "password",
			Reason: "password is required",
		}
	}
	return nil
}
