package middleware

import (
	"net/http"
	"strings"
)

// CORS allows the configured frontend origins. Multiple origins are
// comma-separated; "*" allows everything.
func CORS(origins string) func(http.Handler) http.Handler {
	allowed := strings.Split(origins, ",")
	for i := range allowed {
		allowed[i] = strings.TrimSpace(allowed[i])
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			reqOrigin := r.Header.Get("Origin")
			if origin, ok := matchOrigin(reqOrigin, allowed); ok {
				w.Header().Set("Access-Control-Allow-Origin", origin)
			}
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusNoContent)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func matchOrigin(reqOrigin string, allowed []string) (string, bool) {
	for _, a := range allowed {
		if a == "*" {
			return "*", true
		}
		if a != "" && a == reqOrigin {
			return reqOrigin, true
		}
	}
	if len(allowed) > 0 && allowed[0] != "" {
		return allowed[0], true
	}
	return "", false
}
