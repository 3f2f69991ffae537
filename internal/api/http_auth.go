package api

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"payroll/internal/auth"
	"payroll/internal/entity"
	"payroll/internal/entity/converter"
	"payroll/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

const (
	adminRedirect     = "/admin"
	dashboardRedirect = "/dashboard"
)

func (h *HTTPHandler) setCookie(c *gin.Context, name, value string, maxAge int, httpOnly bool) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(name, value, maxAge, "/", "", h.cfg.CookieSecure, httpOnly)
}

// issueCSRF sets a fresh csrftoken cookie readable by the client.
func (h *HTTPHandler) issueCSRF(c *gin.Context) string {
	token := auth.NewCSRFToken()
	h.setCookie(c, auth.CSRFCookieName, token, int((365 * 24 * time.Hour).Seconds()), false)
	return token
}

// CSRF hands out the double submit token.
func (h *HTTPHandler) CSRF(c *gin.Context) {
	token, err := c.Cookie(auth.CSRFCookieName)
	if err != nil || strings.TrimSpace(token) == "" {
		token = h.issueCSRF(c)
	}
	c.Header(auth.CSRFHeaderName, token)
	c.JSON(http.StatusOK, entity.MutationResponse{Success: true})
}

func (h *HTTPHandler) Login(c *gin.Context) {
	if h.repo == nil {
		ServiceUnavailable(c, "user repository not available")
		return
	}

	var req entity.AuthLoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, ErrCodeInvalidRequest, "username and password are required")
		return
	}

	username := strings.TrimSpace(req.Username)
	password := strings.TrimSpace(req.Password)
	if username == "" || password == "" {
		BadRequest(c, ErrCodeInvalidRequest, "username and password are required")
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	user, err := h.repo.GetUserByUsername(ctx, username)
	if err != nil {
		logrus.WithError(err).WithField("username", username).Warn("login attempt failed")
		ErrorResponse(c, http.StatusUnauthorized, ErrCodeInvalidCredentials, "invalid username or password")
		return
	}

	if err := auth.VerifyPassword(user.PasswordHash, password); err != nil {
		logrus.WithError(err).WithField("username", username).Warn("password verification failed")
		ErrorResponse(c, http.StatusUnauthorized, ErrCodeInvalidCredentials, "invalid username or password")
		return
	}

	if !user.IsActive {
		ErrorResponse(c, http.StatusForbidden, ErrCodeUserDisabled, "account is disabled")
		return
	}
	if user.EmailPending {
		ErrorResponse(c, http.StatusForbidden, ErrCodeEmailNotVerified, "Email not verified. Please check your inbox.")
		return
	}

	session, err := h.authManager.Issue(user)
	if err != nil {
		logrus.WithError(err).Error("failed to issue session")
		InternalError(c, "failed to create session")
		return
	}

	maxAge := int(h.authManager.TTL().Seconds())
	h.setCookie(c, auth.SessionCookieName, session.Token, maxAge, true)
	h.setCookie(c, auth.CSRFCookieName, session.CSRF, maxAge, false)

	redirect := dashboardRedirect
	if user.Role == entity.UserRoleAdmin {
		redirect = adminRedirect
	}

	logrus.WithFields(logrus.Fields{
		"user_id":    user.ID,
		"request_id": RequestID(c),
	}).Info("user logged in")

	c.JSON(http.StatusOK, entity.AuthResponse{
		Success:   true,
		Redirect:  redirect,
		ExpiresAt: session.ExpiresAt,
		User:      converter.UserToView(user, h.publicURL),
	})
}

// Register signs up an employee account. The account can log in once the
// emailed verification link has been opened.
func (h *HTTPHandler) Register(c *gin.Context) {
	if !h.cfg.RegistrationEnabled {
		NotFound(c, ErrCodeNotFound, "registration is disabled")
		return
	}

	var req entity.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, entity.MutationResponse{Success: false, Error: bindingMessage(err)})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()

	result, err := h.signup.Register(ctx, req, func(token string) string {
		return requestBaseURL(c) + "/api/auth/verify-email/" + token
	})
	switch {
	case errors.Is(err, service.ErrDuplicateUser):
		c.JSON(http.StatusBadRequest, entity.MutationResponse{Success: false, Error: duplicateUserMessage})
		return
	case errors.Is(err, auth.ErrPasswordTooShort):
		c.JSON(http.StatusBadRequest, entity.MutationResponse{Success: false, Error: err.Error()})
		return
	case err != nil:
		logrus.WithError(err).WithField("request_id", RequestID(c)).Error("registration failed")
		c.JSON(http.StatusInternalServerError, entity.MutationResponse{Success: false, Error: "registration failed"})
		return
	}

	resp := entity.RegisterResponse{
		Success: true,
		Message: "Registration successful! Please check your email to verify your account.",
	}
	if result.MailErr != nil {
		logrus.WithError(result.MailErr).WithField("user_id", result.User.ID).Warn("failed to send verification mail")
		msg := result.MailErr.Error()
		resp.EmailError = &msg
	}
	h.metrics.IncRegistration()
	c.JSON(http.StatusCreated, resp)
}

// VerifyEmail consumes the token of a verification link.
func (h *HTTPHandler) VerifyEmail(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	user, err := h.signup.Verify(ctx, c.Param("token"))
	switch {
	case errors.Is(err, service.ErrVerificationInvalid):
		c.JSON(http.StatusNotFound, entity.VerifyEmailResponse{Status: entity.VerificationInvalid})
	case errors.Is(err, service.ErrVerificationExpired):
		c.JSON(http.StatusGone, entity.VerifyEmailResponse{Status: entity.VerificationExpired, Email: user.Email})
	case err != nil:
		logrus.WithError(err).Error("email verification failed")
		InternalError(c, "failed to verify email")
	default:
		c.JSON(http.StatusOK, entity.VerifyEmailResponse{Success: true, Status: entity.VerificationSuccess, Email: user.Email})
	}
}

// requestBaseURL is the scheme and host the client used to reach us.
func requestBaseURL(c *gin.Context) string {
	scheme := "http"
	if c.Request.TLS != nil {
		scheme = "https"
	}
	if proto := c.GetHeader("X-Forwarded-Proto"); proto != "" {
		scheme = strings.ToLower(strings.TrimSpace(strings.Split(proto, ",")[0]))
	}
	return scheme + "://" + c.Request.Host
}

// Logout clears the session cookie. It does not require a valid session.
func (h *HTTPHandler) Logout(c *gin.Context) {
	h.setCookie(c, auth.SessionCookieName, "", -1, true)
	c.JSON(http.StatusOK, entity.MutationResponse{Success: true})
}

func (h *HTTPHandler) Me(c *gin.Context) {
	user := CurrentUser(c)
	if user == nil {
		Unauthorized(c, "authentication required")
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	dbUser, err := h.repo.GetUserByID(ctx, user.ID)
	if err != nil {
		logrus.WithError(err).WithField("user_id", user.ID).Error("failed to load user profile")
		InternalError(c, "failed to load profile")
		return
	}

	view := converter.UserToView(dbUser, h.publicURL)
	c.JSON(http.StatusOK, entity.UserMutationResponse{Success: true, User: &view})
}
