package middleware

import (
	"fmt"
	"net/http"
	"runtime/debug"

	"go.uber.org/zap"

	"cranks.com.au/web/internal/observability"
)

// Recover turns a panic in a handler into the error page rendered by
// fallback. Nothing is written when the handler had already started the
// response. http.ErrAbortHandler is re-raised.
func Recover(fallback http.HandlerFunc) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			rec := NewResponseRecorder(w)
			defer func() {
				v := recover()
				if v == nil {
					return
				}
				if v == http.ErrAbortHandler {
					panic(v)
				}
				observability.FromContext(r.Context()).Error("panic while serving request",
					zap.String("panic", fmt.Sprint(v)),
					zap.ByteString("stack", debug.Stack()),
					zap.String("path", r.URL.Path),
				)
				if rec.Started() {
					return
				}
				if fallback == nil {
					http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
					return
				}
				fallback(w, r)
			}()
			next.ServeHTTP(rec, r)
		})
	}
}
