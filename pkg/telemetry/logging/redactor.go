package logging

import (
	"log/slog"
	"regexp"
	"strings"
)

// Redactor scrubs credentials and customer PII from log fields before
// they are written. The gateway relays bearer tokens, shipping API keys
// and OTP phone numbers on every request, so raw log output would
// otherwise be full of material that must not persist.
type Redactor struct {
	patterns []redactPattern
}

// redactPattern contains a compiled regex and replacement string.
type redactPattern struct {
	name        string
	regex       *regexp.Regexp
	replacement string
}

// Built-in pattern names.
const (
	PatternBearerToken = "bearer_token"
	PatternAPIKey      = "api_key"
	PatternEmail       = "email"
	PatternPhone       = "phone"
	PatternPassword    = "password"
)

// NewRedactor creates a Redactor with the built-in pattern set.
func NewRedactor() *Redactor {
	defaults := []struct {
		name        string
		regex       string
		replacement string
	}{
		// Authorization headers relayed to the app backend.
		{PatternBearerToken, `Bearer\s+[a-zA-Z0-9\-._~+/]+=*`, "Bearer ***"},

		// Shipping/messaging API keys in key:value or key=value form.
		{PatternAPIKey, `(?i)(api[-_]?key|hmac[-_]?secret)["':=\s]+[a-zA-Z0-9\-._]+`, "$1: ***"},

		// Email addresses, keeping the domain for debugging.
		{PatternEmail, `[a-zA-Z0-9._%+-]+@([a-zA-Z0-9.-]+\.[a-zA-Z]{2,})`, "***@$1"},

		// Customer phone numbers in OTP payloads (international form).
		{PatternPhone, `\+?\d{8,15}\b`, "***"},

		// Generic password fields.
		{PatternPassword, `(?i)(password|passwd|pwd)[:=]\s*\S+`, "$1: ***"},
	}

	r := &Redactor{patterns: make([]redactPattern, 0, len(defaults))}
	for _, p := range defaults {
		r.patterns = append(r.patterns, redactPattern{
			name:        p.name,
			regex:       regexp.MustCompile(p.regex),
			replacement: p.replacement,
		})
	}
	return r
}

// RedactString redacts credentials and PII from a string value.
func (r *Redactor) RedactString(value string) string {
	if value == "" {
		return value
	}

	redacted := value
	for _, pattern := range r.patterns {
		redacted = pattern.regex.ReplaceAllString(redacted, pattern.replacement)
	}
	return redacted
}

// RedactAttr redacts a single slog attribute. Attributes whose key names
// sensitive material are replaced wholesale; other string values run
// through the pattern set.
func (r *Redactor) RedactAttr(a slog.Attr) slog.Attr {
	if isSensitiveKey(a.Key) {
		return slog.String(a.Key, redactValue(a.Value.String()))
	}
	if a.Value.Kind() == slog.KindString {
		return slog.String(a.Key, r.RedactString(a.Value.String()))
	}
	return a
}

// isSensitiveKey checks if a key name indicates sensitive data.
func isSensitiveKey(key string) bool {
	lowerKey := strings.ToLower(key)

	sensitiveKeys := []string{
		"password", "passwd", "pwd",
		"secret", "token", "api_key", "apikey",
		"authorization", "hmac",
	}

	for _, sensitive := range sensitiveKeys {
		if strings.Contains(lowerKey, sensitive) {
			return true
		}
	}
	return false
}

// redactValue redacts a sensitive value, keeping a short prefix so logs
// stay correlatable without exposing the credential.
func redactValue(v string) string {
	if len(v) <= 4 {
		return "***"
	}
	return v[:4] + "***"
}
