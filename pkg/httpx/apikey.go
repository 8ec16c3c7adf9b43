package httpx

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"github.com/aussiebroadwan/chatbridge/pkg/cryptox"
	"github.com/aussiebroadwan/chatbridge/pkg/slogx"
)

// APIKeyConfig carries the boundary credential. Either the raw key or its
// Argon2id PHC hash may be configured; when both are empty the guard is
// disabled and RequireAPIKey passes every request through.
type APIKeyConfig struct {
	Key     string
	KeyHash string
}

// Enabled reports whether any credential is configured.
func (c APIKeyConfig) Enabled() bool {
	return c.Key != "" || c.KeyHash != ""
}

// RequireAPIKey rejects requests that don't present the configured API key in
// the X-API-Key header or as a bearer token.
func RequireAPIKey(cfg APIKeyConfig) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !cfg.Enabled() {
				next.ServeHTTP(w, r)
				return
			}

			ctx := r.Context()
			log := slogx.FromContext(ctx)

			presented := r.Header.Get("X-API-Key")
			if presented == "" {
				if authz := r.Header.Get("Authorization"); strings.HasPrefix(authz, "Bearer ") {
					presented = strings.TrimSpace(strings.TrimPrefix(authz, "Bearer"))
				}
			}
			if presented == "" {
				writeAPIKeyError(w, "missing api key")
				return
			}

			if !verifyAPIKey(cfg, presented) {
				log.Warn("api key rejected", "remote_addr", r.RemoteAddr)
				writeAPIKeyError(w, "invalid api key")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func verifyAPIKey(cfg APIKeyConfig, presented string) bool {
	if cfg.Key != "" {
		return subtle.ConstantTimeCompare([]byte(cfg.Key), []byte(presented)) == 1
	}
	return cryptox.VerifyAPIKey(presented, cfg.KeyHash) == nil
}

func writeAPIKeyError(w http.ResponseWriter, msg string) {
	w.Header().Set("WWW-Authenticate", `Bearer error="invalid_token"`)
	WriteJSON(w, http.StatusUnauthorized, map[string]any{
		"success": false,
		"message": msg,
	})
}
