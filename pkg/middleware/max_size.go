package middleware

import (
	"fmt"
	"net/http"

	apperrors "fitstudio/pkg/errors"
	httputil "fitstudio/pkg/http"
)

// MaxRequestSize rejects bodies that declare a length above limit and caps the
// rest with http.MaxBytesReader.
func MaxRequestSize(limit int64) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.ContentLength > limit {
				_ = httputil.WriteError(w, apperrors.New(
					apperrors.CodeInvalidInput,
					fmt.Sprintf("request body exceeds %d bytes", limit),
					http.StatusRequestEntityTooLarge,
				))
				return
			}

			r.Body = http.MaxBytesReader(w, r.Body, limit)
			next.ServeHTTP(w, r)
		})
	}
}
