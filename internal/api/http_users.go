package api

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"payroll/internal/auth"
	"payroll/internal/entity"
	"payroll/internal/entity/converter"
	"payroll/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

const duplicateUserMessage = "Username or email already exists"

// multipartOverhead leaves room for boundaries and headers around the file.
const multipartOverhead = 64 * 1024

func parseUserID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(strings.TrimSpace(c.Param("id")), 10, 64)
	if err != nil || id == 0 {
		BadRequest(c, ErrCodeInvalidRequest, "invalid user id")
		return 0, false
	}
	return uint(id), true
}

func (h *HTTPHandler) ListUsers(c *gin.Context) {
	if h.repo == nil {
		ServiceUnavailable(c, "user repository not available")
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	users, err := h.repo.ListUsers(ctx)
	if err != nil {
		logrus.WithError(err).Error("failed to list users")
		InternalError(c, "failed to load users")
		return
	}

	c.JSON(http.StatusOK, entity.UserListResponse{Users: converter.UsersToViews(users, h.publicURL)})
}

func (h *HTTPHandler) CreateUser(c *gin.Context) {
	var req entity.UserCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, ErrCodeInvalidRequest, bindingMessage(err))
		return
	}

	username := strings.TrimSpace(req.Username)
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if username == "" || email == "" {
		BadRequest(c, ErrCodeInvalidRequest, "username and email are required")
		return
	}

	role := sanitizeRole(req.Role)
	if role == "" {
		role = entity.UserRoleUser
	}

	hash, err := auth.HashPassword(req.Password)
	if errors.Is(err, auth.ErrPasswordTooShort) {
		BadRequest(c, ErrCodeInvalidRequest, err.Error())
		return
	}
	if err != nil {
		logrus.WithError(err).Error("failed to hash password for new user")
		InternalError(c, "failed to create user")
		return
	}

	user := &entity.DbUser{
		Username:              username,
		Email:                 email,
		PasswordHash:          hash,
		FullName:              strings.TrimSpace(req.FullName),
		Role:                  role,
		IsActive:              true,
		Department:            strings.TrimSpace(req.Department),
		Position:              strings.TrimSpace(req.Position),
		Phone:                 strings.TrimSpace(req.Phone),
		EmergencyContactName:  strings.TrimSpace(req.EmergencyContactName),
		EmergencyContactPhone: strings.TrimSpace(req.EmergencyContactPhone),
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	if err := h.repo.CreateUser(ctx, user); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			BadRequest(c, ErrCodeDuplicateUser, duplicateUserMessage)
			return
		}
		logrus.WithError(err).Error("failed to create user")
		InternalError(c, "failed to create user")
		return
	}

	logrus.WithFields(logrus.Fields{
		"user_id":    user.ID,
		"created_by": CurrentUser(c).ID,
	}).Info("user created")

	view := converter.UserToView(user, h.publicURL)
	c.JSON(http.StatusCreated, entity.UserMutationResponse{Success: true, User: &view})
}

func (h *HTTPHandler) UpdateUser(c *gin.Context) {
	id, ok := parseUserID(c)
	if !ok {
		return
	}

	var req entity.UserUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, ErrCodeInvalidRequest, bindingMessage(err))
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	dbUser, err := h.repo.GetUserByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			NotFound(c, ErrCodeUserNotFound, "user not found")
			return
		}
		logrus.WithError(err).Error("failed to load user for update")
		InternalError(c, "failed to update user")
		return
	}

	updates, msg := buildUserUpdates(req)
	if msg != "" {
		BadRequest(c, ErrCodeInvalidRequest, msg)
		return
	}

	if updates.IsEmpty() {
		view := converter.UserToView(dbUser, h.publicURL)
		c.JSON(http.StatusOK, entity.UserMutationResponse{Success: true, User: &view})
		return
	}

	if err := h.repo.UpdateUser(ctx, dbUser.ID, updates); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			BadRequest(c, ErrCodeDuplicateUser, duplicateUserMessage)
			return
		}
		logrus.WithError(err).Error("failed to update user")
		InternalError(c, "failed to update user")
		return
	}

	updated, err := h.repo.GetUserByID(ctx, dbUser.ID)
	if err != nil {
		logrus.WithError(err).Error("failed to reload user after update")
		InternalError(c, "failed to load updated user")
		return
	}

	view := converter.UserToView(updated, h.publicURL)
	c.JSON(http.StatusOK, entity.UserMutationResponse{Success: true, User: &view})
}

// buildUserUpdates trims the request into repository updates. A non empty
// message means the request is invalid.
func buildUserUpdates(req entity.UserUpdateRequest) (entity.UserUpdates, string) {
	var updates entity.UserUpdates
	trimmed := func(value *string) *string {
		if value == nil {
			return nil
		}
		v := strings.TrimSpace(*value)
		return &v
	}

	if req.Username != nil {
		updates.Username = trimmed(req.Username)
		if *updates.Username == "" {
			return entity.UserUpdates{}, "username must not be empty"
		}
	}
	if req.Email != nil {
		email := strings.ToLower(strings.TrimSpace(*req.Email))
		if email == "" {
			return entity.UserUpdates{}, "email must not be empty"
		}
		updates.Email = &email
	}
	if req.Role != nil {
		role := sanitizeRole(*req.Role)
		if role == "" {
			return entity.UserUpdates{}, "invalid role"
		}
		updates.Role = &role
	}
	if req.Password != nil {
		password := strings.TrimSpace(*req.Password)
		if password != "" {
			hash, err := auth.HashPassword(password)
			if errors.Is(err, auth.ErrPasswordTooShort) {
				return entity.UserUpdates{}, err.Error()
			}
			if err != nil {
				logrus.WithError(err).Error("failed to hash password for update")
				return entity.UserUpdates{}, "failed to hash password"
			}
			updates.PasswordHash = &hash
		}
	}
	updates.FullName = trimmed(req.FullName)
	updates.IsActive = req.IsActive
	updates.Department = trimmed(req.Department)
	updates.Position = trimmed(req.Position)
	updates.Phone = trimmed(req.Phone)
	updates.EmergencyContactName = trimmed(req.EmergencyContactName)
	updates.EmergencyContactPhone = trimmed(req.EmergencyContactPhone)
	return updates, ""
}

func (h *HTTPHandler) DeleteUser(c *gin.Context) {
	requestUser := CurrentUser(c)
	id, ok := parseUserID(c)
	if !ok {
		return
	}

	if requestUser.ID == id {
		BadRequest(c, ErrCodeCannotDeleteSelf, "cannot delete current user")
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	dbUser, err := h.repo.GetUserByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			NotFound(c, ErrCodeUserNotFound, "user not found")
			return
		}
		logrus.WithError(err).Error("failed to load user for deletion")
		InternalError(c, "failed to delete user")
		return
	}

	if err := h.repo.DeleteUser(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			NotFound(c, ErrCodeUserNotFound, "user not found")
			return
		}
		logrus.WithError(err).Error("failed to delete user")
		InternalError(c, "failed to delete user")
		return
	}
	h.pictures.Remove(ctx, dbUser.ProfilePicture)

	c.JSON(http.StatusOK, entity.MutationResponse{Success: true})
}

// UploadPicture accepts a multipart "profile_picture" for the user itself or
// for any user when called by an admin.
func (h *HTTPHandler) UploadPicture(c *gin.Context) {
	id, ok := parseUserID(c)
	if !ok {
		return
	}
	if !CurrentUser(c).CanAccess(id) {
		Forbidden(c, "not allowed to change this user")
		return
	}

	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.pictures.MaxBytes()+multipartOverhead)
	fileHeader, err := c.FormFile("profile_picture")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			BadRequest(c, ErrCodeInvalidUpload, service.ErrFileTooLarge.Error())
			return
		}
		BadRequest(c, ErrCodeInvalidUpload, service.ErrNoFile.Error())
		return
	}
	if fileHeader.Size > h.pictures.MaxBytes() {
		BadRequest(c, ErrCodeInvalidUpload, service.ErrFileTooLarge.Error())
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		logrus.WithError(err).Error("failed to open uploaded picture")
		InternalError(c, "failed to read upload")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, h.pictures.MaxBytes()+1))
	if err != nil {
		logrus.WithError(err).Error("failed to read uploaded picture")
		InternalError(c, "failed to read upload")
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 30*time.Second)
	defer cancel()

	key, err := h.pictures.Upload(ctx, id, data)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrNoFile), errors.Is(err, service.ErrInvalidFileType), errors.Is(err, service.ErrFileTooLarge):
			BadRequest(c, ErrCodeInvalidUpload, err.Error())
		case errors.Is(err, service.ErrUserNotFound):
			NotFound(c, ErrCodeUserNotFound, "user not found")
		default:
			logrus.WithError(err).WithField("user_id", id).Error("failed to upload profile picture")
			InternalError(c, "failed to upload picture")
		}
		return
	}

	c.JSON(http.StatusOK, entity.PictureUploadResponse{Success: true, ProfilePicture: h.publicURL(key)})
}

func sanitizeRole(role string) string {
	switch strings.ToLower(strings.TrimSpace(role)) {
	case entity.UserRoleAdmin:
		return entity.UserRoleAdmin
	case entity.UserRoleUser:
		return entity.UserRoleUser
	default:
		return ""
	}
}
