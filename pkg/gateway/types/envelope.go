package types

import "net/http"

// Envelope is the canonical response shape returned to the browser by every
// gateway endpoint.
type Envelope struct {
	// Success is true only when the upstream call completed and returned a
	// recognized success shape.
	Success bool `json:"success"`

	// Message is a human-readable status, always present.
	Message string `json:"message"`

	// Data is the normalized payload. List endpoints always carry an array
	// here, detail endpoints an object, failures null.
	Data any `json:"data"`

	// Pagination is forwarded verbatim when the upstream supplies it and
	// omitted otherwise. The gateway never fabricates pagination values.
	Pagination any `json:"pagination,omitempty"`

	// Code is a machine-readable error classification, present on failures.
	Code string `json:"code,omitempty"`

	// Warning carries a non-fatal note on responses that succeeded despite
	// a known upstream quirk.
	Warning string `json:"warning,omitempty"`

	// Errors carries structured field-level validation errors when the
	// upstream (or the gateway's own validator) provides them.
	Errors map[string][]string `json:"errors,omitempty"`
}

// Error classification codes.
const (
	// CodeUnauthorized indicates a missing or malformed bearer credential (401).
	CodeUnauthorized = "UNAUTHORIZED"

	// CodeValidationError indicates a client-fixable request problem (400/422).
	CodeValidationError = "VALIDATION_ERROR"

	// CodeUpstreamError indicates a malformed or unrecognizable upstream
	// response (502).
	CodeUpstreamError = "UPSTREAM_ERROR"

	// CodeConnectionFailed indicates a network-level failure reaching the
	// upstream (503).
	CodeConnectionFailed = "CONNECTION_FAILED"

	// CodeTimeout indicates the upstream call exceeded its deadline (504).
	CodeTimeout = "TIMEOUT"

	// CodeInternalError indicates a sanitized internal failure or a detected
	// sensitive-content leak (500).
	CodeInternalError = "INTERNAL_ERROR"

	// CodeClientError indicates a generic 4xx passed through from the
	// upstream unchanged.
	CodeClientError = "CLIENT_ERROR"

	// CodeConfigError indicates missing gateway configuration (API key,
	// base URL) detected before any network call (500).
	CodeConfigError = "CONFIG_ERROR"
)

// OK returns a success envelope with the given message and payload.
func OK(message string, data any) *Envelope {
	return &Envelope{Success: true, Message: message, Data: data}
}

// OKList returns a success envelope whose data is guaranteed non-nil array.
// Used by fail-silent search endpoints where an empty list and a failed
// lookup are deliberately indistinguishable.
func OKList(data []any) *Envelope {
	if data == nil {
		data = []any{}
	}
	return &Envelope{Success: true, Message: "ok", Data: data}
}

// Fail returns a failure envelope with the given classification code.
func Fail(code, message string) *Envelope {
	return &Envelope{Success: false, Message: message, Code: code}
}

// FailValidation returns a 400-class failure naming the offending fields.
func FailValidation(message string, fieldErrors map[string][]string) *Envelope {
	return &Envelope{
		Success: false,
		Message: message,
		Code:    CodeValidationError,
		Errors:  fieldErrors,
	}
}

// HTTPStatus maps an error classification code to its HTTP status.
// CodeClientError defaults to 400; callers holding the original upstream
// status should prefer it for that code.
func HTTPStatus(code string) int {
	switch code {
	case CodeUnauthorized:
		return http.StatusUnauthorized
	case CodeValidationError:
		return http.StatusBadRequest
	case CodeUpstreamError:
		return http.StatusBadGateway
	case CodeConnectionFailed:
		return http.StatusServiceUnavailable
	case CodeTimeout:
		return http.StatusGatewayTimeout
	case CodeClientError:
		return http.StatusBadRequest
	case CodeInternalError, CodeConfigError:
		return http.StatusInternalServerError
	case "":
		return http.StatusOK
	default:
		return http.StatusInternalServerError
	}
}
