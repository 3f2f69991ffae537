package auth

import (
	"crypto/subtle"
	"strings"

	"github.com/google/uuid"
)

const (
	// CSRFCookieName holds the token the client echoes back in CSRFHeaderName.
	CSRFCookieName = "csrftoken"
	CSRFHeaderName = "X-CSRFToken"
	// SessionCookieName carries the signed session JWT.
	SessionCookieName = "session"
)

// NewCSRFToken returns a random 32 character token.
func NewCSRFToken() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")
}

// CSRFMatches implements the double-submit check.
func CSRFMatches(cookieValue, headerValue string) bool {
	cookieValue = strings.TrimSpace(cookieValue)
	headerValue = strings.TrimSpace(headerValue)
	if cookieValue == "" || headerValue == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(cookieValue), []byte(headerValue)) == 1
}
