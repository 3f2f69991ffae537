package api

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"payroll/internal/auth"
	"payroll/internal/entity"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

const (
	currentUserContextKey = "current-user"
	loginRoute            = "/api/auth/login"
)

// RequestUser is the authenticated account attached to the request context.
type RequestUser struct {
	ID       uint
	Username string
	Role     string
}

// IsAdmin reports whether the user may manage other accounts.
func (u *RequestUser) IsAdmin() bool {
	if u == nil {
		return false
	}
	return u.Role == entity.UserRoleAdmin
}

// CanAccess reports whether the user may read data belonging to userID.
func (u *RequestUser) CanAccess(userID uint) bool {
	if u == nil {
		return false
	}
	return u.IsAdmin() || u.ID == userID
}

// sessionToken prefers the session cookie and falls back to a Bearer header.
func sessionToken(c *gin.Context) string {
	if cookie, err := c.Cookie(auth.SessionCookieName); err == nil && strings.TrimSpace(cookie) != "" {
		return strings.TrimSpace(cookie)
	}
	parts := strings.SplitN(strings.TrimSpace(c.GetHeader("Authorization")), " ", 2)
	if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
		return strings.TrimSpace(parts[1])
	}
	return ""
}

// AuthMiddleware resolves the session JWT to an active user.
func (h *HTTPHandler) AuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := sessionToken(c)
		if tokenString == "" {
			abortWithError(c, http.StatusUnauthorized, ErrCodeUnauthorized, "authentication required")
			return
		}

		claims, err := h.authManager.Parse(tokenString)
		if errors.Is(err, auth.ErrSessionExpired) {
			abortWithError(c, http.StatusUnauthorized, ErrCodeSessionExpired, "session expired, please log in again")
			return
		}
		if err != nil {
			logrus.WithError(err).Warn("failed to parse session token")
			abortWithError(c, http.StatusUnauthorized, ErrCodeUnauthorized, "session is invalid")
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		user, err := h.repo.GetUserByID(ctx, claims.UserID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				abortWithError(c, http.StatusUnauthorized, ErrCodeUserNotFound, "user not found")
				return
			}
			logrus.WithError(err).WithField("user_id", claims.UserID).Error("failed to load user")
			abortWithError(c, http.StatusInternalServerError, ErrCodeInternalError, "failed to verify user")
			return
		}

		if !user.IsActive {
			abortWithError(c, http.StatusForbidden, ErrCodeUserDisabled, "account is disabled")
			return
		}

		c.Set(currentUserContextKey, &RequestUser{
			ID:       user.ID,
			Username: user.Username,
			Role:     user.Role,
		})
		c.Next()
	}
}

// RequireAdmin guards admin only routes.
func (h *HTTPHandler) RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		user := CurrentUser(c)
		if user == nil || !user.IsAdmin() {
			abortWithError(c, http.StatusForbidden, ErrCodeForbidden, "admin privileges required")
			return
		}
		c.Next()
	}
}

// CSRFMiddleware enforces the double submit check on unsafe methods. When
// a valid session cookie is present the header must also match the token
// issued with that session. Login is exempt since no session exists yet.
func (h *HTTPHandler) CSRFMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		switch c.Request.Method {
		case http.MethodGet, http.MethodHead, http.MethodOptions:
			c.Next()
			return
		}
		if c.FullPath() == loginRoute {
			c.Next()
			return
		}
		header := c.GetHeader(auth.CSRFHeaderName)
		cookie, _ := c.Cookie(auth.CSRFCookieName)
		ok := auth.CSRFMatches(cookie, header)
		if ok {
			if token := sessionToken(c); token != "" {
				if claims, err := h.authManager.Parse(token); err == nil {
					ok = claims.CSRFValid(header)
				}
			}
		}
		if !ok {
			logrus.WithFields(logrus.Fields{
				"path":       c.Request.URL.Path,
				"request_id": c.GetString(requestIDKey),
			}).Warn("csrf token mismatch")
			abortWithError(c, http.StatusForbidden, ErrCodeCSRFFailed, "CSRF verification failed")
			return
		}
		c.Next()
	}
}

// CurrentUser returns the authenticated user of the request, if any.
func CurrentUser(c *gin.Context) *RequestUser {
	value, exists := c.Get(currentUserContextKey)
	if !exists {
		return nil
	}
	user, ok := value.(*RequestUser)
	if !ok {
		return nil
	}
	return user
}
