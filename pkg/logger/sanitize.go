package logger

import (
	"log/slog"
	"net/url"
	"strings"
)

// SanitizedUsername keeps the first and last character, e.g. "a***e".
func SanitizedUsername(username string) string {
	r := []rune(username)
	switch len(r) {
	case 0:
		return ""
	case 1, 2:
		return strings.Repeat("*", len(r))
	}
	return string(r[0]) + strings.Repeat("*", len(r)-2) + string(r[len(r)-1])
}

// RedactedAttr hides value in production and passes it through elsewhere.
func RedactedAttr(key, value, env string) slog.Attr {
	if env == "production" {
		return slog.String(key, "[REDACTED]")
	}
	return slog.String(key, value)
}

var sensitiveParams = map[string]bool{
	"password": true,
	"token":    true,
	"secret":   true,
	"code":     true,
	"otp":      true,
	"username": true,
}

// SanitizeQueryString reports whether rawQuery carries a sensitive parameter
// and should be dropped from request logs.
func SanitizeQueryString(rawQuery string) bool {
	if rawQuery == "" {
		return false
	}
	values, err := url.ParseQuery(rawQuery)
	if err != nil {
		return true
	}
	for key := range values {
		if sensitiveParams[strings.ToLower(key)] {
			return true
		}
	}
	return false
}
