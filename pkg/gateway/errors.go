package gateway

import (
	"errors"
	"fmt"
	"strings"

	"lentera-hq/gateway/pkg/gateway/types"
	"lentera-hq/gateway/pkg/upstream"
)

// AuthError indicates a missing or malformed bearer credential on the
// inbound request. Resolved locally; no upstream call is made.
type AuthError struct {
	// Reason describes what was wrong with the credential.
	Reason string
}

// Error implements the error interface.
func (e *AuthError) Error() string {
	return fmt.Sprintf("unauthorized: %s", e.Reason)
}

// ValidationError indicates the inbound body failed the descriptor's field
// checks. Resolved locally; no upstream call is made.
type ValidationError struct {
	// Fields maps field names to what was wrong with each.
	Fields map[string][]string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	names := make([]string, 0, len(e.Fields))
	for name := range e.Fields {
		names = append(names, name)
	}
	return fmt.Sprintf("validation failed for field(s): %s", strings.Join(names, ", "))
}

// Message builds the client-facing message naming the offending fields.
func (e *ValidationError) Message() string {
	parts := make([]string, 0, len(e.Fields))
	for name, problems := range e.Fields {
		for _, p := range problems {
			parts = append(parts, fmt.Sprintf("field %s %s", name, p))
		}
	}
	// Deterministic enough for a message; the structured map carries detail.
	if len(parts) == 1 {
		return parts[0]
	}
	return strings.Join(parts, "; ")
}

// envelopeForError maps pipeline errors to client envelopes. Local
// validation and auth failures keep their own messages; network-level
// failures get fixed safe messages because the raw cause was already
// logged where it happened.
func envelopeForError(err error) *types.Envelope {
	var authErr *AuthError
	if errors.As(err, &authErr) {
		return types.Fail(types.CodeUnauthorized, "missing or invalid bearer token")
	}

	var valErr *ValidationError
	if errors.As(err, &valErr) {
		return types.FailValidation(valErr.Message(), valErr.Fields)
	}

	var timeoutErr *upstream.TimeoutError
	if errors.As(err, &timeoutErr) {
		return types.Fail(types.CodeTimeout, "upstream request timed out")
	}

	var connErr *upstream.ConnectionError
	if errors.As(err, &connErr) {
		return types.Fail(types.CodeConnectionFailed, "could not reach upstream service")
	}

	var cfgErr *upstream.ConfigError
	if errors.As(err, &cfgErr) {
		return types.Fail(types.CodeConfigError, "gateway is not configured for this endpoint")
	}

	return types.Fail(types.CodeInternalError, GenericInternalMessage)
}
