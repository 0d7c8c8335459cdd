package gateway

import (
	"net/http"
	"strconv"
	"strings"
)

// CheckAuth enforces the descriptor's bearer requirement. The token itself
// is opaque: the gateway only verifies the "Bearer " framing and relays the
// header verbatim. Returns an AuthError without touching the network.
func CheckAuth(d *Descriptor, r *http.Request) error {
	if !d.RequireAuth {
		return nil
	}

	auth := r.Header.Get("Authorization")
	if auth == "" {
		return &AuthError{Reason: "Authorization header is missing"}
	}
	if !strings.HasPrefix(auth, "Bearer ") {
		return &AuthError{Reason: "Authorization header is not a bearer token"}
	}
	if strings.TrimSpace(strings.TrimPrefix(auth, "Bearer ")) == "" {
		return &AuthError{Reason: "bearer token is empty"}
	}
	return nil
}

// CheckBody runs the descriptor's field specs against the parsed inbound
// body. Pure check: collects every problem instead of stopping at the
// first, so the client can fix the request in one round trip.
func CheckBody(d *Descriptor, body map[string]any) error {
	if len(d.Fields) == 0 {
		return nil
	}

	problems := make(map[string][]string)

	for _, f := range d.Fields {
		value, present := body[f.Name]
		if !present || value == nil {
			if f.Required {
				problems[f.Name] = append(problems[f.Name], "is required")
			}
			continue
		}

		if msg := checkKind(f.Kind, value); msg != "" {
			problems[f.Name] = append(problems[f.Name], msg)
		}
	}

	if len(problems) > 0 {
		return &ValidationError{Fields: problems}
	}
	return nil
}

// checkKind validates a single value against a field kind. Returns an
// empty string when the value is acceptable.
func checkKind(kind string, value any) string {
	switch kind {
	case KindString:
		s, ok := value.(string)
		if !ok {
			return "must be a string"
		}
		if strings.TrimSpace(s) == "" {
			return "must not be empty"
		}

	case KindNumber, KindInteger:
		// Upstream payloads are loosely typed: accept JSON numbers and
		// numeric strings alike. Coercion to a strict type happens in the
		// request builder, not here.
		switch v := value.(type) {
		case float64:
		case string:
			if _, err := strconv.ParseFloat(strings.TrimSpace(v), 64); err != nil {
				return "must be numeric"
			}
		default:
			return "must be numeric"
		}

	case KindPhone:
		s, ok := value.(string)
		if !ok {
			return "must be a phone number string"
		}
		if !isPhone(s) {
			return "must be a valid phone number"
		}
	}
	return ""
}

// isPhone accepts digit strings of plausible length, optionally prefixed
// with +. No carrier validation; the messaging upstream owns that.
func isPhone(s string) bool {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "+")
	if len(s) < 6 || len(s) > 20 {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
