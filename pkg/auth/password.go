package auth

import (
	"errors"
	"fmt"
	"strings"
	"unicode"

	"golang.org/x/crypto/bcrypt"
)

const (
	DefaultBcryptCost = 12
	MinPasswordLen    = 8
	MaxPasswordLen    = 72 // bcrypt ignores bytes past 72
)

// BcryptCost is the work factor used by HashPassword. Tests lower it to
// bcrypt.MinCost.
var BcryptCost = DefaultBcryptCost

// PasswordValidationError keeps the failed rules for logging. Error() stays generic.
type PasswordValidationError struct {
	Errors []string
}

func (e *PasswordValidationError) Error() string {
	return "invalid password"
}

// blockedPasswords are rejected regardless of composition. Compared lower-cased.
var blockedPasswords = map[string]struct{}{
	"password123!": {}, "passw0rd!": {}, "p@ssw0rd": {}, "p@ssword1": {},
	"qwerty123!": {}, "welcome1!": {}, "letmein1!": {}, "changeme1!": {},
	"budget2024!": {}, "finance123!": {}, "money123!": {}, "admin123!": {},
}

type passwordRule struct {
	message string
	ok      func(password string) bool
}

func containsRune(pred func(rune) bool) func(string) bool {
	return func(s string) bool { return strings.IndexFunc(s, pred) >= 0 }
}

var passwordRules = []passwordRule{
	{fmt.Sprintf("must be at least %d characters", MinPasswordLen), func(s string) bool { return len(s) >= MinPasswordLen }},
	{fmt.Sprintf("must be at most %d bytes", MaxPasswordLen), func(s string) bool { return len(s) <= MaxPasswordLen }},
	{"must contain an uppercase letter", containsRune(unicode.IsUpper)},
	{"must contain a lowercase letter", containsRune(unicode.IsLower)},
	{"must contain a digit", containsRune(unicode.IsDigit)},
	{"must contain a symbol", containsRune(func(r rune) bool { return unicode.IsPunct(r) || unicode.IsSymbol(r) })},
	{"is on the blocked password list", func(s string) bool {
		_, blocked := blockedPasswords[strings.ToLower(s)]
		return !blocked
	}},
}

// HashPassword returns the bcrypt hash stored in users.pw_hash.
func HashPassword(password string) (string, error) {
	if password == "" {
		return "", errors.New("password cannot be empty")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), BcryptCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hash), nil
}

// ComparePassword returns nil when password matches hash.
func ComparePassword(hash, password string) error {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
}

// DummyCompare burns roughly the same time as a real ComparePassword so
// unknown usernames are not distinguishable by latency.
func DummyCompare(password string) {
	_ = bcrypt.CompareHashAndPassword(dummyHash, []byte(password))
}

var dummyHash, _ = bcrypt.GenerateFromPassword([]byte("finance-fusion-dummy"), DefaultBcryptCost)

// ValidatePassword applies every rule and reports all that failed.
func ValidatePassword(password string) error {
	var failed []string
	for _, rule := range passwordRules {
		if !rule.ok(password) {
			failed = append(failed, rule.message)
		}
	}
	if len(failed) > 0 {
		return &PasswordValidationError{Errors: failed}
	}
	return nil
}
