package httpx

import (
	"encoding/json"
	"net/http"
)

// WriteJSON renders v with the given status code. Every response is marked
// uncacheable: pairing codes and instance state must never be served stale.
func WriteJSON(w http.ResponseWriter, code int, v any) {
	NoCache(w)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

// NoCache marks the response uncacheable for HTTP/1.0 and newer
// intermediaries alike.
func NoCache(w http.ResponseWriter) {
	w.Header().Set("Cache-Control", "no-store")
	w.Header().Set("Pragma", "no-cache")
}
