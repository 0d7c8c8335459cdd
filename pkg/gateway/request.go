package gateway

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"lentera-hq/gateway/pkg/upstream"
)

// ExpandPath substitutes {param} placeholders in an upstream path template
// from the inbound route parameters. Unresolved placeholders are an error:
// a half-expanded path must never be sent upstream.
func ExpandPath(template string, params map[string]string) (string, error) {
	expanded := template
	for name, value := range params {
		expanded = strings.ReplaceAll(expanded, "{"+name+"}", url.PathEscape(value))
	}
	if i := strings.IndexByte(expanded, '{'); i >= 0 {
		return "", fmt.Errorf("unresolved path placeholder in %q", template)
	}
	return expanded, nil
}

// CoerceBody applies the descriptor's field kinds to the parsed inbound
// body, producing the loosely-typed-to-strictly-typed mapping upstreams
// require: integer kinds become int64 (payment amounts arrive as string or
// number), strings are trimmed. Fields without a spec pass through as-is.
func CoerceBody(d *Descriptor, body map[string]any) (map[string]any, error) {
	if body == nil {
		return nil, nil
	}

	out := make(map[string]any, len(body))
	for k, v := range body {
		out[k] = v
	}

	for _, f := range d.Fields {
		value, present := out[f.Name]
		if !present || value == nil {
			continue
		}

		switch f.Kind {
		case KindString, KindPhone:
			if s, ok := value.(string); ok {
				out[f.Name] = strings.TrimSpace(s)
			}

		case KindInteger:
			n, err := toInt64(value)
			if err != nil {
				return nil, &ValidationError{Fields: map[string][]string{
					f.Name: {"must be an integer"},
				}}
			}
			out[f.Name] = n
		}
	}

	return out, nil
}

// toInt64 converts the JSON-decoded forms an amount can arrive in.
func toInt64(value any) (int64, error) {
	switch v := value.(type) {
	case float64:
		if v != math.Trunc(v) {
			return 0, fmt.Errorf("not an integer: %v", v)
		}
		return int64(v), nil
	case string:
		return strconv.ParseInt(strings.TrimSpace(v), 10, 64)
	case int64:
		return v, nil
	default:
		return 0, fmt.Errorf("not numeric: %T", value)
	}
}

// BuildRequest composes the outbound request exactly as the upstream's
// documented contract expects it: method, joined URL, encoding, credential
// headers, and (for the messaging provider) HMAC signature headers.
//
// now is injected so the signing step stays testable.
func BuildRequest(d *Descriptor, def *upstream.Definition, inbound *http.Request,
	params map[string]string, body map[string]any, now time.Time) (*http.Request, error) {

	path, err := ExpandPath(d.UpstreamPath, params)
	if err != nil {
		return nil, err
	}
	target := def.URL(path)

	var req *http.Request

	switch d.Encoding {
	case EncodingQuery:
		req, err = http.NewRequest(d.UpstreamMethod, target, nil)
		if err != nil {
			return nil, err
		}
		// Forward the inbound query string verbatim; the upstream owns the
		// parameter vocabulary.
		req.URL.RawQuery = inbound.URL.RawQuery

	case EncodingForm:
		form := url.Values{}
		for field, param := range d.FormParams {
			value, present := body[field]
			if !present || value == nil {
				continue
			}
			form.Set(param, stringify(value))
		}
		req, err = http.NewRequest(d.UpstreamMethod, target, strings.NewReader(form.Encode()))
		if err != nil {
			return nil, err
		}
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	case EncodingJSON:
		var reader *bytes.Reader
		if body != nil {
			payload, err := json.Marshal(body)
			if err != nil {
				return nil, fmt.Errorf("failed to encode upstream body: %w", err)
			}
			reader = bytes.NewReader(payload)
		} else {
			reader = bytes.NewReader(nil)
		}
		req, err = http.NewRequest(d.UpstreamMethod, target, reader)
		if err != nil {
			return nil, err
		}
		req.Header.Set("Content-Type", "application/json")

	default:
		return nil, fmt.Errorf("descriptor %q: unknown encoding %q", d.Name, d.Encoding)
	}

	req.Header.Set("Accept", "application/json")
	def.ApplyAuth(req, inbound.Header.Get("Authorization"))

	if def.HMACSecret != "" {
		upstream.SignRequest(req, def.HMACSecret, now)
	}

	return req, nil
}

// stringify renders a body value as a form parameter. Integers must not
// pick up an exponent or decimal point on the wire.
func stringify(value any) string {
	switch v := value.(type) {
	case string:
		return v
	case float64:
		if v == math.Trunc(v) {
			return strconv.FormatInt(int64(v), 10)
		}
		return strconv.FormatFloat(v, 'f', -1, 64)
	case int64:
		return strconv.FormatInt(v, 10)
	case bool:
		return strconv.FormatBool(v)
	default:
		return fmt.Sprintf("%v", v)
	}
}
