package gateway

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"lentera-hq/gateway/pkg/gateway/types"
)

// WriteJSON writes env to w with the given HTTP status. Encoding failures
// are logged but not surfaced; the status line has already been sent.
func WriteJSON(w http.ResponseWriter, status int, env *types.Envelope) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(env); err != nil {
		slog.Error("Failed to encode response envelope", "error", err)
	}
}
