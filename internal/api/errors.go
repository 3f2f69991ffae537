package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Error codes returned next to the human readable message.
const (
	// generic
	ErrCodeInvalidRequest     = "ERR_INVALID_REQUEST"
	ErrCodeUnauthorized       = "ERR_UNAUTHORIZED"
	ErrCodeForbidden          = "ERR_FORBIDDEN"
	ErrCodeNotFound           = "ERR_NOT_FOUND"
	ErrCodeInternalError      = "ERR_INTERNAL_ERROR"
	ErrCodeServiceUnavailable = "ERR_SERVICE_UNAVAILABLE"

	// auth
	ErrCodeInvalidCredentials = "ERR_INVALID_CREDENTIALS"
	ErrCodeUserDisabled       = "ERR_USER_DISABLED"
	ErrCodeSessionExpired     = "ERR_SESSION_EXPIRED"
	ErrCodeCSRFFailed         = "ERR_CSRF_FAILED"
	ErrCodeEmailNotVerified   = "ERR_EMAIL_NOT_VERIFIED"

	// resources
	ErrCodeUserNotFound     = "ERR_USER_NOT_FOUND"
	ErrCodeRecordNotFound   = "ERR_RECORD_NOT_FOUND"
	ErrCodeDuplicateUser    = "ERR_DUPLICATE_USER"
	ErrCodeInvalidUpload    = "ERR_INVALID_UPLOAD"
	ErrCodeInvalidStatus    = "ERR_INVALID_STATUS"
	ErrCodeMissingField     = "ERR_MISSING_FIELD"
	ErrCodeCannotDeleteSelf = "ERR_CANNOT_DELETE_SELF"
)

// APIError is the failure envelope. Success is always false so clients can
// treat every response uniformly.
type APIError struct {
	Success bool   `json:"success"`
	Code    string `json:"code"`
	Message string `json:"error"`
	Details any    `json:"details,omitempty"`
}

func newAPIError(code, message string, details any) APIError {
	return APIError{Success: false, Code: code, Message: message, Details: details}
}

// ErrorResponse writes a failure envelope.
func ErrorResponse(c *gin.Context, status int, code string, message string) {
	c.JSON(status, newAPIError(code, message, nil))
}

// ErrorResponseWithDetails writes a failure envelope with extra context.
func ErrorResponseWithDetails(c *gin.Context, status int, code string, message string, details any) {
	c.JSON(status, newAPIError(code, message, details))
}

// abortWithError stops the middleware chain.
func abortWithError(c *gin.Context, status int, code string, message string) {
	c.AbortWithStatusJSON(status, newAPIError(code, message, nil))
}

func BadRequest(c *gin.Context, code string, message string) {
	ErrorResponse(c, http.StatusBadRequest, code, message)
}

func Unauthorized(c *gin.Context, message string) {
	ErrorResponse(c, http.StatusUnauthorized, ErrCodeUnauthorized, message)
}

func Forbidden(c *gin.Context, message string) {
	ErrorResponse(c, http.StatusForbidden, ErrCodeForbidden, message)
}

func NotFound(c *gin.Context, code string, message string) {
	ErrorResponse(c, http.StatusNotFound, code, message)
}

func InternalError(c *gin.Context, message string) {
	ErrorResponse(c, http.StatusInternalServerError, ErrCodeInternalError, message)
}

func ServiceUnavailable(c *gin.Context, message string) {
	ErrorResponse(c, http.StatusServiceUnavailable, ErrCodeServiceUnavailable, message)
}

// MissingField reports a required field that was left empty.
func MissingField(c *gin.Context, field string) {
	ErrorResponseWithDetails(c, http.StatusBadRequest, ErrCodeMissingField, field+" is required", gin.H{"field": field})
}

func InvalidPayload(c *gin.Context) {
	ErrorResponse(c, http.StatusBadRequest, ErrCodeInvalidRequest, "invalid request payload")
}
