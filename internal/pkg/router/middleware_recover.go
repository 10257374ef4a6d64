package router

import (
	"log/slog"
	"net/http"
	"runtime/debug"

	"github.com/u22n/platform/internal/pkg/stacktrace"
)

// middlewareRecoverer turns a handler panic into a 500 response.
// http.ErrAbortHandler is re-raised so net/http can abort the connection.
func middlewareRecoverer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			rvr := recover()
			if rvr == nil {
				return
			}
			//nolint:errorlint // sentinel is compared by identity in net/http too
			if rvr == http.ErrAbortHandler {
				panic(rvr)
			}

			var stack any = string(debug.Stack())
			if frames := stacktrace.Internal(0); len(frames) > 0 {
				stack = frames
			}
			slog.ErrorContext(r.Context(), "recovered from handler panic",
				"method", r.Method,
				"path", r.URL.Path,
				"panic", rvr,
				"stack", stack,
			)

			writeJSON(w, errorResponse{Message: "Internal server error"}, http.StatusInternalServerError)
		}()

		next.ServeHTTP(w, r)
	})
}
