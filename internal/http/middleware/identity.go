// Package middleware contains shared Gin middleware used by the HTTP layer.
//
// This file resolves the acting user for each request. The service runs
// single-tenant inside the store network: POS terminals and the back-office
// UI identify their operator with an X-User-ID header instead of a full
// authentication stack. The middleware validates the header, falls back to a
// configured default identity, and stashes the result in the Gin context so
// downstream components (rate limiter, access logger, handlers) agree on who
// the request belongs to.
package middleware

import (
	"net/http"
	"regexp"
	"strings"

	"github.com/gin-gonic/gin"
)

// HeaderUserID is the request header POS clients use to convey the acting
// user. The value keys notification ownership, per-user rate limiting, and
// cache invalidation, so it must be stable per terminal or operator.
const HeaderUserID = "X-User-ID"

// ctxKeyUserID is the Gin context key under which the resolved identity is
// stored. Referenced via UserIDFrom rather than directly.
const ctxKeyUserID = "userID"

// maxUserIDLen matches the column width of notification ownership rows.
const maxUserIDLen = 64

// userIDPattern accepts terminal and operator identifiers: letters, digits,
// and common separators (till:3, ops@hq, register.2). Anything else is
// rejected rather than attributed to the wrong identity.
var userIDPattern = regexp.MustCompile(`^[A-Za-z0-9._~\-:@]+$`)

// Identity returns a middleware that resolves the acting user and stores it
// in the Gin context.
//
// Resolution order:
//  1. X-User-ID header (trimmed), when present and well-formed.
//  2. fallbackUser, when the header is absent.
//
// A header that is present but malformed (too long, disallowed characters)
// is a client error: the request is rejected with 400 rather than silently
// attributed to the wrong identity.
func Identity(fallbackUser string) gin.HandlerFunc {
	return func(c *gin.Context) {
		uid := strings.TrimSpace(c.GetHeader(HeaderUserID))
		if uid == "" {
			uid = fallbackUser
		} else if len(uid) > maxUserIDLen || !userIDPattern.MatchString(uid) {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
				"request_id": c.Writer.Header().Get("X-Request-ID"),
				"code":       "bad_user_id",
				"message":    "invalid X-User-ID header",
			})
			return
		}
		if uid != "" {
			c.Set(ctxKeyUserID, uid)
		}
		c.Next()
	}
}

// UserIDFrom returns the identity resolved by Identity(), or the empty
// string when the middleware has not run and no fallback applies.
func UserIDFrom(c *gin.Context) string {
	if v, ok := c.Get(ctxKeyUserID); ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}
