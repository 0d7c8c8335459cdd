package gateway

import (
	"log/slog"
	"net/http"
	"regexp"

	"lentera-hq/gateway/pkg/gateway/types"
)

// GenericInternalMessage is the fixed string every sanitized failure
// carries. It is deliberately information-free.
const GenericInternalMessage = "An internal system error occurred."

// Sanitizer prevents internal or upstream implementation detail from
// reaching the client while preserving actionable client-facing messages.
// It is idempotent: sanitizing an already-sanitized envelope changes
// nothing, so it can safely run on every exit path.
type Sanitizer struct {
	detectors []*regexp.Regexp
}

// NewSanitizer builds a sanitizer with the default sensitive-content
// detectors. The pattern set is fixed in one place so every endpoint hides
// the same things; per-route drift in what counts as sensitive is exactly
// the failure mode this component exists to end.
func NewSanitizer() *Sanitizer {
	return &Sanitizer{
		detectors: []*regexp.Regexp{
			// Database error codes and engine names.
			regexp.MustCompile(`(?i)SQLSTATE`),
			regexp.MustCompile(`(?i)\b(mysql|mariadb|postgres|postgresql|sqlite|mongodb)\b`),
			regexp.MustCompile(`(?i)ORA-\d{5}`),

			// Connection strings and connection failures.
			regexp.MustCompile(`(?i)(connection refused|could not connect|connect ECONNREFUSED)`),
			regexp.MustCompile(`(?i)[a-z]+://[^@\s]+:[^@\s]+@`), // scheme://user:pass@
			regexp.MustCompile(`(?i)(dsn|connection string)\s*[:=]`),

			// Authentication internals.
			regexp.MustCompile(`(?i)access denied for user`),
			regexp.MustCompile(`(?i)password authentication failed`),

			// Stack-trace shaped lines, any runtime.
			regexp.MustCompile(`\bat .+:\d+:\d+`),
			regexp.MustCompile(`(?m)^\s+at [\w$.<>]+ ?\(`),
			regexp.MustCompile(`goroutine \d+ \[`),
			regexp.MustCompile(`(?m)^\s*(Error|Exception|Traceback)\s*:`),

			// Filesystem paths that reveal deployment layout.
			regexp.MustCompile(`(?i)(/var/www/|/home/[a-z0-9_-]+/|[A-Z]:\\)`),
		},
	}
}

// Sensitive reports whether any detector matches the given text.
func (s *Sanitizer) Sensitive(text string) bool {
	for _, re := range s.detectors {
		if re.MatchString(text) {
			return true
		}
	}
	return false
}

// SanitizeUpstreamFailure converts a non-2xx upstream result into the
// client envelope and status.
//
// Rules, in order:
//   - status >= 500, or any sensitive pattern anywhere in the payload:
//     the entire message is replaced with the generic string and the
//     original payload is logged server-side only.
//   - 401/403: UNAUTHORIZED with the upstream's own message (auth errors
//     are client-actionable).
//   - 422 with field errors: VALIDATION_ERROR, structured errors forwarded.
//   - other 4xx: CLIENT_ERROR, upstream message passed through unchanged,
//     original status preserved.
func (s *Sanitizer) SanitizeUpstreamFailure(d *Descriptor, status int, rawBody []byte, parsed any) (*types.Envelope, int) {
	if status >= 500 || s.Sensitive(string(rawBody)) {
		slog.Error("sanitized upstream failure",
			"endpoint", d.Name,
			"upstream", d.Upstream,
			"upstream_status", status,
			"body", string(rawBody),
		)
		return types.Fail(types.CodeInternalError, GenericInternalMessage), http.StatusInternalServerError
	}

	message := "request rejected by upstream"
	var fields map[string][]string

	if obj, ok := parsed.(map[string]any); ok {
		if msg, ok := obj["message"].(string); ok && msg != "" {
			message = msg
		}
		if errs, ok := obj["errors"].(map[string]any); ok {
			fields = fieldErrors(errs)
		}
	}

	// Belt and braces: the message itself might be the leak even when the
	// rest of the payload is clean.
	if s.Sensitive(message) {
		slog.Error("sanitized upstream failure message",
			"endpoint", d.Name,
			"upstream", d.Upstream,
			"upstream_status", status,
			"body", string(rawBody),
		)
		return types.Fail(types.CodeInternalError, GenericInternalMessage), http.StatusInternalServerError
	}

	switch {
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return types.Fail(types.CodeUnauthorized, message), http.StatusUnauthorized

	case status == http.StatusUnprocessableEntity:
		return types.FailValidation(message, fields), http.StatusUnprocessableEntity

	default:
		env := types.Fail(types.CodeClientError, message)
		env.Errors = fields
		return env, status
	}
}

// SanitizeEnvelope re-runs the detectors over an envelope that is about to
// leave the boundary. Idempotent by construction: the generic replacement
// message matches no detector.
func (s *Sanitizer) SanitizeEnvelope(env *types.Envelope) *types.Envelope {
	if env.Success {
		return env
	}
	if s.Sensitive(env.Message) {
		return types.Fail(types.CodeInternalError, GenericInternalMessage)
	}
	return env
}
