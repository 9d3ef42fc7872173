package middleware

import (
	"net/http"
	"strconv"

	"github.com/datum-redsoft/expense-reports/internal"
)

// UserContext records the acting user from the X-User-ID header so handlers
// can default missing identity fields. No authentication happens here; the
// backend enforces access on every call.
func UserContext(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if raw := r.Header.Get("X-User-ID"); raw != "" {
			if userID, err := strconv.ParseInt(raw, 10, 64); err == nil && userID > 0 {
				r = r.WithContext(internal.ContextWithUserID(r.Context(), userID))
			}
		}
		next.ServeHTTP(w, r)
	})
}
