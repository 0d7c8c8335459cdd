package gateway

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"lentera-hq/gateway/pkg/gateway/types"
	"lentera-hq/gateway/pkg/upstream"
)

// IsHTML reports whether an upstream body is an HTML document rather than
// JSON. A reverse proxy in front of a dead upstream answers with an error
// page; that is an outage signal, not a parse bug, and is classified
// separately so operators can tell the two apart.
func IsHTML(body []byte) bool {
	trimmed := strings.TrimSpace(string(body))
	if len(trimmed) > 64 {
		trimmed = trimmed[:64]
	}
	lower := strings.ToLower(trimmed)
	return strings.HasPrefix(lower, "<!doctype") || strings.HasPrefix(lower, "<html")
}

// ParseBody decodes an upstream body, text first. It never assumes valid
// JSON: HTML and garbage each produce a distinct error the caller maps to
// an UPSTREAM_ERROR envelope (or swallows, for fail-silent endpoints).
func ParseBody(body []byte) (any, error) {
	if IsHTML(body) {
		return nil, errHTMLBody
	}
	if len(strings.TrimSpace(string(body))) == 0 {
		return nil, nil
	}

	var v any
	if err := json.Unmarshal(body, &v); err != nil {
		return nil, fmt.Errorf("%w: %v", errInvalidJSON, err)
	}
	return v, nil
}

var (
	errHTMLBody    = errors.New("upstream returned non-JSON (HTML) content")
	errInvalidJSON = errors.New("invalid upstream response")
)

// EnvelopeForParseError maps a ParseBody failure to the client envelope.
// The message never carries a fragment of the offending body, not even the
// character the JSON decoder tripped on.
func EnvelopeForParseError(err error) *types.Envelope {
	if errors.Is(err, errHTMLBody) {
		return types.Fail(types.CodeUpstreamError, errHTMLBody.Error())
	}
	return types.Fail(types.CodeUpstreamError, errInvalidJSON.Error())
}

// NormalizeSuccess converts a recognized 2xx upstream payload into the
// canonical envelope, per the descriptor's declared shape.
//
// List reconciliation runs in priority order:
//  1. bare array                -> wrapped as data
//  2. object with .success     -> used as-is, data defaulting to []
//  3. object with .data        -> wrapped, non-array coerced to one element
//  4. anything else            -> success with empty data (fail open; a
//     read endpoint showing nothing beats a read endpoint showing an error)
//
// Pagination is forwarded verbatim whenever present and never synthesized.
func NormalizeSuccess(d *Descriptor, raw any) *types.Envelope {
	if reshape := upstream.ForUpstream(d.Upstream); reshape != nil {
		raw = reshape(raw)
	}

	switch d.Shape {
	case ShapeList:
		return normalizeList(raw)
	case ShapeDetail:
		return normalizeDetail(raw)
	default:
		return normalizeRaw(raw)
	}
}

func normalizeList(raw any) *types.Envelope {
	// Priority 1: bare array.
	if arr, ok := raw.([]any); ok {
		return &types.Envelope{Success: true, Message: "ok", Data: arr}
	}

	obj, ok := raw.(map[string]any)
	if !ok {
		// Priority 4: unrecognized scalar or null.
		return types.OKList(nil)
	}

	// Priority 2: upstream already speaks the envelope.
	if successVal, defined := obj["success"]; defined {
		env := envelopeFromObject(obj)
		env.Success, _ = successVal.(bool)
		if env.Data == nil {
			env.Data = []any{}
		} else if _, isArr := env.Data.([]any); !isArr {
			env.Data = []any{env.Data}
		}
		return env
	}

	// Priority 3: wrapped data.
	if dataVal, defined := obj["data"]; defined {
		env := envelopeFromObject(obj)
		env.Success = true
		switch v := dataVal.(type) {
		case []any:
			env.Data = v
		case nil:
			env.Data = []any{}
		default:
			env.Data = []any{v}
		}
		return env
	}

	// Priority 4: fail open to empty for reads.
	return types.OKList(nil)
}

func normalizeDetail(raw any) *types.Envelope {
	obj, ok := raw.(map[string]any)
	if !ok {
		// A bare value on a detail endpoint is preserved under data.
		return &types.Envelope{Success: true, Message: "ok", Data: raw}
	}

	if successVal, defined := obj["success"]; defined {
		env := envelopeFromObject(obj)
		env.Success, _ = successVal.(bool)
		return env
	}

	if _, defined := obj["data"]; defined {
		env := envelopeFromObject(obj)
		env.Success = true
		return env
	}

	// The object itself is the resource.
	return &types.Envelope{Success: true, Message: "ok", Data: obj}
}

func normalizeRaw(raw any) *types.Envelope {
	return &types.Envelope{Success: true, Message: "ok", Data: raw}
}

// envelopeFromObject lifts the recognized envelope keys out of an upstream
// object: message, data, pagination, field errors. Unknown keys are
// dropped; the gateway's contract is the canonical envelope, not a union
// of every upstream's extras.
func envelopeFromObject(obj map[string]any) *types.Envelope {
	env := &types.Envelope{Message: "ok"}

	if msg, ok := obj["message"].(string); ok && msg != "" {
		env.Message = msg
	}
	if data, defined := obj["data"]; defined {
		env.Data = data
	}
	if pag, defined := obj["pagination"]; defined && pag != nil {
		env.Pagination = pag
	}
	if errs, ok := obj["errors"].(map[string]any); ok {
		env.Errors = fieldErrors(errs)
	}

	return env
}

// fieldErrors converts the upstream's loosely-typed errors object into the
// canonical map[string][]string.
func fieldErrors(raw map[string]any) map[string][]string {
	out := make(map[string][]string, len(raw))
	for field, v := range raw {
		switch vv := v.(type) {
		case string:
			out[field] = []string{vv}
		case []any:
			msgs := make([]string, 0, len(vv))
			for _, item := range vv {
				if s, ok := item.(string); ok {
					msgs = append(msgs, s)
				}
			}
			if len(msgs) > 0 {
				out[field] = msgs
			}
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}
