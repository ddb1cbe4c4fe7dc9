package middleware

import "net/http"

// Options answers any OPTIONS request with 200. Real CORS preflights are
// handled before this runs; this covers OPTIONS without a requested method.
func Options(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}
