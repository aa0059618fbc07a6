// Package validation provides input validation utilities
package validation

import (
	"errors"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

var (
	usernamePattern = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)
	emailPattern    = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)
	specialPattern  = regexp.MustCompile(`[!@#$%^&*()_+\-=\[\]{};':"\\|,.<>\/?]`)
)

const (
	minPasswordLen = 12
	maxPasswordLen = 128
)

// ValidatePassword checks if a password meets security requirements
func ValidatePassword(password string) error {
	if utf8.RuneCountInString(password) < minPasswordLen {
		return errors.New("password must be at least 12 characters long")
	}
	if len(password) > maxPasswordLen {
		return errors.New("password must not exceed 128 characters")
	}

	var hasUpper, hasLower, hasDigit bool
	for _, r := range password {
		switch {
		case unicode.IsUpper(r):
			hasUpper = true
		case unicode.IsLower(r):
			hasLower = true
		case unicode.IsDigit(r):
			hasDigit = true
		}
	}
	if !hasUpper {
		return errors.New("password must contain at least one uppercase letter")
	}
	if !hasLower {
		return errors.New("password must contain at least one lowercase letter")
	}
	if !hasDigit {
		return errors.New("password must contain at least one digit")
	}
	if !specialPattern.MatchString(password) {
		return errors.New("password must contain at least one special character (!@#$%^&*)")
	}
	return nil
}

// ValidateUsername checks if a username meets requirements
func ValidateUsername(username string) error {
	if len(username) < 3 {
		return errors.New("username must be at least 3 characters long")
	}
	if len(username) > 30 {
		return errors.New("username must not exceed 30 characters")
	}
	if !usernamePattern.MatchString(username) {
		return errors.New("username can only contain letters, numbers, underscores, and hyphens")
	}
	first, last := username[0], username[len(username)-1]
	if first == '_' || first == '-' || last == '_' || last == '-' {
		return errors.New("username cannot start or end with underscore or hyphen")
	}
	return nil
}

// ValidateEmail checks basic email format
func ValidateEmail(email string) error {
	if len(email) > 254 {
		return errors.New("email must not exceed 254 characters")
	}
	if !emailPattern.MatchString(email) {
		return errors.New("invalid email format")
	}
	return nil
}

// NormalizeEmail trims and lowercases an address before lookup or storage.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
