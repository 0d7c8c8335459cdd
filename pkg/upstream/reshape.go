package upstream

// Reshape rewrites a parsed upstream payload into a shape the generic
// normalizer understands, hiding provider-specific envelopes. It receives
// the decoded JSON value and returns the value to normalize; hooks must
// not fabricate data, only unwrap it.
type Reshape func(v any) any

// ForUpstream returns the reshape hook for a named upstream, or nil when
// the upstream already speaks a shape the normalizer handles directly.
func ForUpstream(name string) Reshape {
	switch name {
	case NameShippingV1:
		return reshapeShippingV1
	case NameShippingV2:
		return reshapeShippingV2
	default:
		return nil
	}
}

// reshapeShippingV1 unwraps the first-generation shipping provider's
// envelope:
//
//	{"rajaongkir": {"status": {"code": 200, "description": "OK"}, "results": [...]}}
//
// into {"success": bool, "message": string, "data": [...]} so the standard
// list reconciliation applies.
func reshapeShippingV1(v any) any {
	obj, ok := v.(map[string]any)
	if !ok {
		return v
	}
	inner, ok := obj["rajaongkir"].(map[string]any)
	if !ok {
		return v
	}

	out := map[string]any{"success": true}

	if status, ok := inner["status"].(map[string]any); ok {
		if code, ok := status["code"].(float64); ok && code != 200 {
			out["success"] = false
		}
		if desc, ok := status["description"].(string); ok {
			out["message"] = desc
		}
	}
	if results, ok := inner["results"]; ok {
		out["data"] = results
	}

	return out
}

// reshapeShippingV2 handles the second-generation provider's
// {"data": [...], "meta": {...}} envelope. The generic .data rule already
// unwraps it; this hook only lifts the provider's meta block into the
// canonical pagination slot when it carries paging keys.
func reshapeShippingV2(v any) any {
	obj, ok := v.(map[string]any)
	if !ok {
		return v
	}
	meta, ok := obj["meta"].(map[string]any)
	if !ok {
		return v
	}
	if _, hasPage := meta["page"]; !hasPage {
		return v
	}

	if _, exists := obj["pagination"]; !exists {
		obj["pagination"] = meta
	}
	return obj
}
