package security

import (
	"net/http"

	"github.com/noah-isme/ngepos/internal/common"
)

// DefaultBodyLimit caps request bodies when BodyLimit.Max is unset.
const DefaultBodyLimit int64 = 64 << 10

// BodyLimit rejects oversized requests with 413 before they reach a handler.
type BodyLimit struct {
	Max int64
}

// Middleware enforces the limit on declared lengths and wraps the body so
// chunked uploads are cut off too.
func (b BodyLimit) Middleware(next http.Handler) http.Handler {
	limit := b.Max
	if limit <= 0 {
		limit = DefaultBodyLimit
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.ContentLength > limit {
			common.JSONError(w, http.StatusRequestEntityTooLarge, "PAYLOAD_TOO_LARGE", "request body too large", nil)
			return
		}
		if r.Body != nil {
			r.Body = http.MaxBytesReader(w, r.Body, limit)
		}
		next.ServeHTTP(w, r)
	})
}
