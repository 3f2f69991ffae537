package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"payroll/internal/auth"
	"payroll/internal/config"
	"payroll/internal/entity"
	"payroll/internal/model/memory"
	"payroll/internal/storage"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testServer struct {
	router  *gin.Engine
	repo    *memory.Repository
	metrics *HTTPMetrics
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	repo := memory.NewRepository()
	current := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	repo.SetClock(func() time.Time {
		current = current.Add(time.Second)
		return current
	})

	store, err := storage.NewLocalStorage(t.TempDir())
	require.NoError(t, err)

	cfg := config.Config{
		JWTSecret:            "test-secret",
		JWTIssuer:            "payroll-test",
		JWTExpirationMinutes: 60,
		StoragePublicBaseURL: "/media",
		UploadMaxBytes:       4096,
		RegistrationEnabled:  true,
		VerificationTTLHours: 24,
	}
	metrics := NewHTTPMetrics(prometheus.NewRegistry())
	handler, err := NewHTTPHandler(cfg, repo, store, metrics)
	require.NoError(t, err)

	r := gin.New()
	r.Use(RequestIDMiddleware())
	r.Use(metrics.Middleware())
	handler.RegisterRoutes(r)
	return &testServer{router: r, repo: repo, metrics: metrics}
}

func (s *testServer) addUser(t *testing.T, username, role string) *entity.DbUser {
	t.Helper()
	hash, err := auth.HashPassword("secret123")
	require.NoError(t, err)
	user := &entity.DbUser{
		Username:     username,
		Email:        username + "@example.com",
		PasswordHash: hash,
		FullName:     strings.ToUpper(username[:1]) + username[1:],
		Role:         role,
		IsActive:     true,
	}
	require.NoError(t, s.repo.CreateUser(context.Background(), user))
	return user
}

// browser keeps cookies between requests and echoes the CSRF token.
type browser struct {
	server  *testServer
	cookies map[string]*http.Cookie
}

func (s *testServer) browser() *browser {
	return &browser{server: s, cookies: map[string]*http.Cookie{}}
}

func (b *browser) do(method, path string, body io.Reader, contentType string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, body)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	for _, cookie := range b.cookies {
		req.AddCookie(cookie)
	}
	if token, ok := b.cookies[auth.CSRFCookieName]; ok {
		req.Header.Set(auth.CSRFHeaderName, token.Value)
	}
	rec := httptest.NewRecorder()
	b.server.router.ServeHTTP(rec, req)
	for _, cookie := range rec.Result().Cookies() {
		if cookie.MaxAge < 0 {
			delete(b.cookies, cookie.Name)
			continue
		}
		b.cookies[cookie.Name] = cookie
	}
	return rec
}

func (b *browser) json(method, path string, payload any) *httptest.ResponseRecorder {
	var body io.Reader
	if payload != nil {
		raw, _ := json.Marshal(payload)
		body = bytes.NewReader(raw)
	}
	return b.do(method, path, body, "application/json")
}

func (b *browser) login(t *testing.T, username string) entity.AuthResponse {
	t.Helper()
	rec := b.json(http.MethodPost, "/api/auth/login", gin.H{"username": username, "password": "secret123"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var resp entity.AuthResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}

func TestLoginRedirectsByRole(t *testing.T) {
	s := newTestServer(t)
	s.addUser(t, "admin", entity.UserRoleAdmin)
	s.addUser(t, "andi", entity.UserRoleUser)

	tests := []struct {
		username string
		redirect string
	}{
		{username: "admin", redirect: "/admin"},
		{username: "andi", redirect: "/dashboard"},
	}
	for _, tt := range tests {
		t.Run(tt.username, func(t *testing.T) {
			b := s.browser()
			resp := b.login(t, tt.username)
			assert.True(t, resp.Success)
			assert.Equal(t, tt.redirect, resp.Redirect)
			assert.Equal(t, tt.username, resp.User.Username)
			assert.Contains(t, b.cookies, auth.SessionCookieName)
			assert.Contains(t, b.cookies, auth.CSRFCookieName)
			assert.True(t, b.cookies[auth.SessionCookieName].HttpOnly)
		})
	}
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	s := newTestServer(t)
	s.addUser(t, "andi", entity.UserRoleUser)

	rec := s.browser().json(http.MethodPost, "/api/auth/login", gin.H{"username": "andi", "password": "wrong"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	resp := decode[APIError](t, rec)
	assert.False(t, resp.Success)
	assert.Equal(t, ErrCodeInvalidCredentials, resp.Code)
}

func TestLoginRejectsDisabledUser(t *testing.T) {
	s := newTestServer(t)
	user := s.addUser(t, "andi", entity.UserRoleUser)
	inactive := false
	require.NoError(t, s.repo.UpdateUser(context.Background(), user.ID, entity.UserUpdates{IsActive: &inactive}))

	rec := s.browser().json(http.MethodPost, "/api/auth/login", gin.H{"username": "andi", "password": "secret123"})
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestCSRFTokenEndpointAndEnforcement(t *testing.T) {
	s := newTestServer(t)
	admin := s.addUser(t, "admin", entity.UserRoleAdmin)
	b := s.browser()

	rec := b.do(http.MethodGet, "/api/auth/csrf", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, b.cookies, auth.CSRFCookieName)
	assert.Len(t, b.cookies[auth.CSRFCookieName].Value, 32)

	b.login(t, "admin")

	req := httptest.NewRequest(http.MethodPost, "/api/payroll/1/upsert", strings.NewReader(`{"month":"2024-01"}`))
	req.Header.Set("Content-Type", "application/json")
	req.AddCookie(b.cookies[auth.SessionCookieName])
	req.AddCookie(&http.Cookie{Name: auth.CSRFCookieName, Value: "cookie-token"})
	req.Header.Set(auth.CSRFHeaderName, "header-token")
	rec = httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, ErrCodeCSRFFailed, decode[APIError](t, rec).Code)

	records, err := s.repo.ListPayrollRecords(context.Background(), admin.ID)
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestCSRFTokenIsBoundToSession(t *testing.T) {
	s := newTestServer(t)
	s.addUser(t, "admin", entity.UserRoleAdmin)
	b := s.browser()

	rec := b.do(http.MethodGet, "/api/auth/csrf", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	anonymous := b.cookies[auth.CSRFCookieName].Value

	b.login(t, "admin")
	issued := b.cookies[auth.CSRFCookieName].Value
	assert.NotEqual(t, anonymous, issued, "login rotates the csrf token")

	// Cookie and header agree but were not issued with this session.
	req := httptest.NewRequest(http.MethodPost, "/api/payroll/1/upsert", strings.NewReader(`{"month":"2024-01"}`))
	req.Header.Set("Content-Type", "application/json")
	req.AddCookie(b.cookies[auth.SessionCookieName])
	req.AddCookie(&http.Cookie{Name: auth.CSRFCookieName, Value: anonymous})
	req.Header.Set(auth.CSRFHeaderName, anonymous)
	rec = httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, ErrCodeCSRFFailed, decode[APIError](t, rec).Code)

	rec = b.json(http.MethodPost, "/api/payroll/1/upsert", gin.H{"month": "2024-01", "base_salary": 1000})
	assert.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
}

func TestInvalidSessionCookie(t *testing.T) {
	s := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/api/auth/me", nil)
	req.AddCookie(&http.Cookie{Name: auth.SessionCookieName, Value: "garbage"})
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, ErrCodeUnauthorized, decode[APIError](t, rec).Code)
}

func TestUnauthenticatedRequestsAreRejected(t *testing.T) {
	s := newTestServer(t)

	for _, path := range []string{"/api/users", "/api/auth/me", "/api/payroll/me"} {
		rec := s.browser().do(http.MethodGet, path, nil, "")
		assert.Equal(t, http.StatusUnauthorized, rec.Code, path)
	}
}

func TestNonAdminCannotManage(t *testing.T) {
	s := newTestServer(t)
	s.addUser(t, "andi", entity.UserRoleUser)
	b := s.browser()
	b.login(t, "andi")

	assert.Equal(t, http.StatusForbidden, b.do(http.MethodGet, "/api/users", nil, "").Code)
	assert.Equal(t, http.StatusForbidden, b.json(http.MethodPost, "/api/users/create", gin.H{"username": "x"}).Code)
	assert.Equal(t, http.StatusForbidden, b.json(http.MethodPost, "/api/payroll/1/upsert", gin.H{"month": "2024-01"}).Code)
}

func TestAdminUserLifecycle(t *testing.T) {
	s := newTestServer(t)
	admin := s.addUser(t, "admin", entity.UserRoleAdmin)
	b := s.browser()
	b.login(t, "admin")

	rec := b.json(http.MethodPost, "/api/users/create", gin.H{
		"username":   "sari",
		"email":      "Sari@Example.com",
		"password":   "sari-pass",
		"full_name":  "Sari Dewi",
		"department": "Finance",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	created := decode[entity.UserMutationResponse](t, rec)
	require.True(t, created.Success)
	require.NotNil(t, created.User)
	assert.Equal(t, entity.UserRoleUser, created.User.Role)
	assert.Equal(t, "sari@example.com", created.User.Email)
	assert.Nil(t, created.User.ProfilePicture)

	rec = b.json(http.MethodPost, "/api/users/create", gin.H{"username": "sari", "email": "other@example.com", "password": "another"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	dup := decode[APIError](t, rec)
	assert.False(t, dup.Success)
	assert.Equal(t, duplicateUserMessage, dup.Message)

	rec = b.json(http.MethodPost, "/api/users/create", gin.H{"username": "budi", "email": "not-an-email", "password": "secret"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	id := created.User.ID
	rec = b.json(http.MethodPut, "/api/users/"+itoa(id)+"/update", gin.H{"position": "Analyst", "role": "admin"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	updated := decode[entity.UserMutationResponse](t, rec)
	assert.Equal(t, "Analyst", updated.User.Position)
	assert.Equal(t, "Finance", updated.User.Department)
	assert.Equal(t, entity.UserRoleAdmin, updated.User.Role)

	rec = b.json(http.MethodPut, "/api/users/999/update", gin.H{"position": "Ghost"})
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = b.json(http.MethodDelete, "/api/users/"+itoa(admin.ID)+"/delete", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, ErrCodeCannotDeleteSelf, decode[APIError](t, rec).Code)

	rec = b.json(http.MethodDelete, "/api/users/"+itoa(id)+"/delete", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, decode[entity.MutationResponse](t, rec).Success)

	rec = b.do(http.MethodGet, "/api/payroll/"+itoa(id)+"/history", nil, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestPayrollUpsertAndHistory(t *testing.T) {
	s := newTestServer(t)
	s.addUser(t, "admin", entity.UserRoleAdmin)
	andi := s.addUser(t, "andi", entity.UserRoleUser)
	b := s.browser()
	b.login(t, "admin")
	base := "/api/payroll/" + itoa(andi.ID)

	rec := b.json(http.MethodPost, base+"/upsert", gin.H{
		"month":       "2024-01",
		"base_salary": "5,000,000",
		"allowances":  200000,
		"deductions":  "100000",
		"notes":       "January",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	first := decode[entity.PayrollUpsertResponse](t, rec)
	require.True(t, first.Success)
	assert.True(t, first.Record.NetSalary.Equal(decimal.NewFromInt(5100000)), first.Record.NetSalary.String())
	assert.Equal(t, entity.PayrollStatusPending, first.Record.Status)

	rec = b.json(http.MethodPost, base+"/upsert", gin.H{"month": "2024-02", "base_salary": 5000000, "status": "transferred"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	// Re-save January without status: the stored status survives.
	rec = b.json(http.MethodPost, base+"/upsert", gin.H{"month": "2024-01", "base_salary": 6000000, "status": "in_progress"})
	require.Equal(t, http.StatusOK, rec.Code)
	rec = b.json(http.MethodPost, base+"/upsert", gin.H{"month": "2024-01", "base_salary": 6000000})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, entity.PayrollStatusInProgress, decode[entity.PayrollUpsertResponse](t, rec).Record.Status)

	tests := []struct {
		name    string
		payload gin.H
		status  int
		message string
	}{
		{name: "invalid status", payload: gin.H{"month": "2024-03", "status": "paid"}, status: http.StatusBadRequest, message: "Invalid status"},
		{name: "missing month", payload: gin.H{"base_salary": 1}, status: http.StatusBadRequest, message: "month is required (YYYY-MM)"},
		{name: "bad month", payload: gin.H{"month": "03/2024"}, status: http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := b.json(http.MethodPost, base+"/upsert", tt.payload)
			assert.Equal(t, tt.status, rec.Code)
			resp := decode[APIError](t, rec)
			assert.False(t, resp.Success)
			if tt.message != "" {
				assert.Equal(t, tt.message, resp.Message)
			}
		})
	}

	rec = b.json(http.MethodPost, "/api/payroll/999/upsert", gin.H{"month": "2024-01"})
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = b.do(http.MethodGet, base+"/history", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	history := decode[entity.PayrollHistoryResponse](t, rec).PayrollHistory
	require.Len(t, history, 2)
	assert.Equal(t, "2024-01", history[0].Month)
	assert.Equal(t, "2024-02", history[1].Month)

	rec = b.do(http.MethodGet, "/api/users", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	users := decode[entity.UserListResponse](t, rec).Users
	require.Len(t, users, 2)
	assert.Len(t, users[1].PayrollHistory, 2)

	assert.Equal(t, float64(2), testutil.ToFloat64(s.metrics.upserts.WithLabelValues(entity.PayrollStatusInProgress)))
}

func TestPayrollMeAndSlipAccess(t *testing.T) {
	s := newTestServer(t)
	s.addUser(t, "admin", entity.UserRoleAdmin)
	andi := s.addUser(t, "andi", entity.UserRoleUser)
	budi := s.addUser(t, "budi", entity.UserRoleUser)

	admin := s.browser()
	admin.login(t, "admin")
	rec := admin.json(http.MethodPost, "/api/payroll/"+itoa(andi.ID)+"/upsert", gin.H{"month": "2024-01", "base_salary": 5000000})
	require.Equal(t, http.StatusOK, rec.Code)

	user := s.browser()
	user.login(t, "andi")

	rec = user.do(http.MethodGet, "/api/payroll/me", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[entity.PayrollHistoryResponse](t, rec).PayrollHistory, 1)

	rec = user.do(http.MethodGet, "/api/payroll/"+itoa(andi.ID)+"/pdf?month=2024-01", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/pdf", rec.Header().Get("Content-Type"))
	assert.Equal(t, `inline; filename="slip-gaji-andi-2024-01.pdf"`, rec.Header().Get("Content-Disposition"))
	assert.True(t, bytes.HasPrefix(rec.Body.Bytes(), []byte("%PDF-")))

	rec = user.do(http.MethodGet, "/api/payroll/"+itoa(budi.ID)+"/pdf?month=2024-01", nil, "")
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = user.do(http.MethodGet, "/api/payroll/"+itoa(andi.ID)+"/pdf", nil, "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = admin.do(http.MethodGet, "/api/payroll/"+itoa(andi.ID)+"/pdf?month=2023-12", nil, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, ErrCodeRecordNotFound, decode[APIError](t, rec).Code)
}

var pngHeader = []byte{0x89, 'P', 'N', 'G', 0x0d, 0x0a, 0x1a, 0x0a, 0, 0, 0, 0x0d, 'I', 'H', 'D', 'R'}

func multipartPicture(t *testing.T, field string, data []byte) (io.Reader, string) {
	t.Helper()
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	part, err := writer.CreateFormFile(field, "avatar.png")
	require.NoError(t, err)
	_, err = part.Write(data)
	require.NoError(t, err)
	require.NoError(t, writer.Close())
	return &buf, writer.FormDataContentType()
}

func TestUploadPicture(t *testing.T) {
	s := newTestServer(t)
	s.addUser(t, "admin", entity.UserRoleAdmin)
	andi := s.addUser(t, "andi", entity.UserRoleUser)
	budi := s.addUser(t, "budi", entity.UserRoleUser)
	b := s.browser()
	b.login(t, "andi")

	body, contentType := multipartPicture(t, "profile_picture", pngHeader)
	rec := b.do(http.MethodPost, "/api/users/"+itoa(andi.ID)+"/upload-picture", body, contentType)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	resp := decode[entity.PictureUploadResponse](t, rec)
	assert.True(t, resp.Success)
	assert.True(t, strings.HasPrefix(resp.ProfilePicture, "/media/profile_pictures/user_"+itoa(andi.ID)+"_"), resp.ProfilePicture)
	assert.True(t, strings.HasSuffix(resp.ProfilePicture, ".png"))

	tests := []struct {
		name   string
		target uint
		field  string
		data   []byte
		status int
	}{
		{name: "text file", target: andi.ID, field: "profile_picture", data: []byte("plain text"), status: http.StatusBadRequest},
		{name: "wrong field", target: andi.ID, field: "avatar", data: pngHeader, status: http.StatusBadRequest},
		{name: "too large", target: andi.ID, field: "profile_picture", data: append(append([]byte{}, pngHeader...), make([]byte, 5000)...), status: http.StatusBadRequest},
		{name: "other user", target: budi.ID, field: "profile_picture", data: pngHeader, status: http.StatusForbidden},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			body, contentType := multipartPicture(t, tt.field, tt.data)
			rec := b.do(http.MethodPost, "/api/users/"+itoa(tt.target)+"/upload-picture", body, contentType)
			assert.Equal(t, tt.status, rec.Code, rec.Body.String())
			assert.False(t, decode[APIError](t, rec).Success)
		})
	}
}

func TestLogoutClearsSession(t *testing.T) {
	s := newTestServer(t)
	s.addUser(t, "andi", entity.UserRoleUser)
	b := s.browser()
	b.login(t, "andi")

	require.Equal(t, http.StatusOK, b.do(http.MethodGet, "/api/auth/me", nil, "").Code)
	require.Equal(t, http.StatusOK, b.json(http.MethodPost, "/api/auth/logout", nil).Code)
	assert.NotContains(t, b.cookies, auth.SessionCookieName)
	assert.Equal(t, http.StatusUnauthorized, b.do(http.MethodGet, "/api/auth/me", nil, "").Code)
}

func TestRequestIDIsEchoed(t *testing.T) {
	s := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set(RequestIDHeader, "abc-123")
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	assert.Equal(t, "abc-123", rec.Header().Get(RequestIDHeader))

	rec = httptest.NewRecorder()
	s.router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Len(t, rec.Header().Get(RequestIDHeader), 36)
}

func TestHTTPMetricsNilSafe(t *testing.T) {
	var m *HTTPMetrics
	m.IncUpsert("pending")
	NewHTTPMetrics(nil).IncUpsert("pending")
}

func itoa(id uint) string {
	return strconv.FormatUint(uint64(id), 10)
}

func TestRegisterAndVerifyEmail(t *testing.T) {
	s := newTestServer(t)
	s.addUser(t, "admin", entity.UserRoleAdmin)
	b := s.browser()
	require.Equal(t, http.StatusOK, b.do(http.MethodGet, "/api/auth/csrf", nil, "").Code)

	rec := b.json(http.MethodPost, "/api/auth/register", gin.H{
		"username":  "rina",
		"email":     "Rina@Example.com",
		"password":  "secret123",
		"full_name": "Rina Putri",
		"role":      "admin",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	resp := decode[entity.RegisterResponse](t, rec)
	assert.True(t, resp.Success)
	assert.Nil(t, resp.EmailError)
	assert.Equal(t, float64(1), testutil.ToFloat64(s.metrics.signups))

	stored, err := s.repo.GetUserByUsername(context.Background(), "rina")
	require.NoError(t, err)
	assert.Equal(t, entity.UserRoleUser, stored.Role, "sign up never grants admin")
	assert.Equal(t, "rina@example.com", stored.Email)
	assert.True(t, stored.EmailPending)
	require.NotNil(t, stored.VerificationToken)

	rec = b.json(http.MethodPost, "/api/auth/login", gin.H{"username": "rina", "password": "secret123"})
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, ErrCodeEmailNotVerified, decode[APIError](t, rec).Code)

	rec = b.do(http.MethodGet, "/api/auth/verify-email/not-a-token", nil, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, entity.VerificationInvalid, decode[entity.VerifyEmailResponse](t, rec).Status)

	rec = b.do(http.MethodGet, "/api/auth/verify-email/"+*stored.VerificationToken, nil, "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	verified := decode[entity.VerifyEmailResponse](t, rec)
	assert.True(t, verified.Success)
	assert.Equal(t, "rina@example.com", verified.Email)

	// The token is single use.
	rec = b.do(http.MethodGet, "/api/auth/verify-email/"+*stored.VerificationToken, nil, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	login := b.login(t, "rina")
	assert.Equal(t, "/dashboard", login.Redirect)
	assert.True(t, login.User.EmailVerified)
}

func TestRegisterRejectsDuplicatesAndBadInput(t *testing.T) {
	s := newTestServer(t)
	s.addUser(t, "andi", entity.UserRoleUser)
	b := s.browser()
	require.Equal(t, http.StatusOK, b.do(http.MethodGet, "/api/auth/csrf", nil, "").Code)

	tests := []struct {
		name    string
		payload gin.H
	}{
		{name: "duplicate username", payload: gin.H{"username": "andi", "email": "new@example.com", "password": "secret123"}},
		{name: "duplicate email", payload: gin.H{"username": "new", "email": "ANDI@example.com", "password": "secret123"}},
		{name: "bad email", payload: gin.H{"username": "new", "email": "nope", "password": "secret123"}},
		{name: "short password", payload: gin.H{"username": "new", "email": "new@example.com", "password": "123"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := b.json(http.MethodPost, "/api/auth/register", tt.payload)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
			resp := decode[entity.MutationResponse](t, rec)
			assert.False(t, resp.Success)
			assert.NotEmpty(t, resp.Error)
		})
	}

	count, err := s.repo.CountUsers(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}
