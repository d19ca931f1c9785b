package validation

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

var (
	emailRegex    = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)
	usernameRegex = regexp.MustCompile(`^[a-zA-Z0-9_\-]+$`)
)

// Field length limits
const (
	MinUsernameLength = 3
	MaxUsernameLength = 32
	MinPasswordLength = 8
	MaxWordLength     = 16 // characters in one vocabulary entry
	MaxMeaningLength  = 500
)

// ValidationError represents a validation error
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidateUsername checks a login name
func ValidateUsername(username string) error {
	username = strings.TrimSpace(username)
	if username == "" {
		return ValidationError{Field: "username", Message: "username is required"}
	}
	if len(username) < MinUsernameLength || len(username) > MaxUsernameLength {
		return ValidationError{Field: "username", Message: fmt.Sprintf("username must be %d-%d characters", MinUsernameLength, MaxUsernameLength)}
	}
	if !usernameRegex.MatchString(username) {
		return ValidationError{Field: "username", Message: "username may only contain letters, digits, '_' and '-'"}
	}
	return nil
}

// ValidateEmail checks an email address. Email is optional; it is only used
// to send session reports.
func ValidateEmail(email string) error {
	email = strings.TrimSpace(email)
	if email == "" {
		return nil
	}
	if !emailRegex.MatchString(email) {
		return ValidationError{Field: "email", Message: "invalid email format"}
	}
	return nil
}

// ValidatePassword checks if a password meets requirements
func ValidatePassword(password string) error {
	if password == "" {
		return ValidationError{Field: "password", Message: "password is required"}
	}
	if len(password) < MinPasswordLength {
		return ValidationError{Field: "password", Message: fmt.Sprintf("password must be at least %d characters", MinPasswordLength)}
	}
	return nil
}

// ValidateHanzi checks that a word's written form is non-empty Chinese text
func ValidateHanzi(field, text string) error {
	text = strings.TrimSpace(text)
	if text == "" {
		return ValidationError{Field: field, Message: field + " is required"}
	}
	if utf8.RuneCountInString(text) > MaxWordLength {
		return ValidationError{Field: field, Message: fmt.Sprintf("%s must be at most %d characters", field, MaxWordLength)}
	}
	for _, r := range text {
		if !unicode.Is(unicode.Han, r) {
			return ValidationError{Field: field, Message: fmt.Sprintf("%s must contain only Chinese characters", field)}
		}
	}
	return nil
}

// ValidateMeaning checks a "/" separated list of English meanings
func ValidateMeaning(meaning string) error {
	if len(meaning) > MaxMeaningLength {
		return ValidationError{Field: "meaning", Message: fmt.Sprintf("meaning must be at most %d characters", MaxMeaningLength)}
	}
	return nil
}
