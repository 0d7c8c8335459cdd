package gateway

import (
	"bytes"
	"net/http"

	"lentera-hq/gateway/pkg/gateway/types"
)

// benignFieldErrorMarker is the exact error string one backend write
// endpoint emits in a 500 response after the write has in fact completed.
// TODO(backend): remove this shim and CoerceBenignFieldError once the
// upstream fixes the unset-variable bug in its approval handler.
var benignFieldErrorMarker = []byte("Undefined variable $field")

// IsBenignFieldError reports whether a 500 body carries the known benign
// marker. Deliberately narrow: exact status, exact substring. Do not
// generalize this predicate to other endpoints or other error strings.
func IsBenignFieldError(status int, body []byte) bool {
	return status == http.StatusInternalServerError &&
		bytes.Contains(body, benignFieldErrorMarker)
}

// BenignFieldErrorEnvelope is the success-with-warning response the
// workaround substitutes for the broken 500.
func BenignFieldErrorEnvelope() *types.Envelope {
	env := types.OK("ok", nil)
	env.Warning = "upstream reported an error after completing the operation; the result was saved"
	return env
}
