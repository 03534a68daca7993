// Package middleware contains shared Gin middleware used by the HTTP layer.
//
// This file validates the Idempotency-Key request header and stashes the key
// for handlers. Replay detection needs the hotel and session from the body,
// so it happens in the event service, not here.
package middleware

import (
	"net/http"
	"regexp"
	"strings"

	"github.com/gin-gonic/gin"
)

// HeaderIdempotencyKey is the request header carrying an idempotency key.
const HeaderIdempotencyKey = "Idempotency-Key"

const ctxKeyIdemKey = "idem.key"

var defaultKeyPattern = regexp.MustCompile(`^[A-Za-z0-9._~\-:]+$`)

// GetIdempotencyKey returns the key stored by IdempotencyValidator.
func GetIdempotencyKey(c *gin.Context) (string, bool) {
	s := asString(c.Value(ctxKeyIdemKey))
	return s, s != ""
}

// IdempotencyOptions configures IdempotencyValidator.
type IdempotencyOptions struct {
	// MaxLen caps the key length. Values <= 0 default to 128, the column size.
	MaxLen int
	// Pattern restricts allowed characters; nil means ^[A-Za-z0-9._~\-:]+$.
	Pattern *regexp.Regexp
}

// IdempotencyValidator checks the Idempotency-Key header when present and
// answers 400 for malformed keys. Requests without the header pass through.
func IdempotencyValidator(opts IdempotencyOptions) gin.HandlerFunc {
	maxLen := opts.MaxLen
	if maxLen <= 0 {
		maxLen = 128
	}
	pat := opts.Pattern
	if pat == nil {
		pat = defaultKeyPattern
	}

	return func(c *gin.Context) {
		key := strings.TrimSpace(c.GetHeader(HeaderIdempotencyKey))
		if key == "" {
			c.Next()
			return
		}
		if len(key) > maxLen || !pat.MatchString(key) {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
				"ok":         false,
				"request_id": c.Writer.Header().Get(requestIDHeader),
				"code":       "bad_idempotency_key",
				"error":      "invalid Idempotency-Key",
			})
			return
		}
		c.Set(ctxKeyIdemKey, key)
		c.Next()
	}
}
