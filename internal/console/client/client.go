// Package client is the console's typed adapter over the payroll REST API.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"

	"payroll/internal/console/domain"
)

const (
	csrfCookieName = "csrftoken"
	csrfHeaderName = "X-CSRFToken"
)

// Client keeps the session and CSRF cookies in a jar between calls.
type Client struct {
	baseURL *url.URL
	http    *http.Client
}

// New creates a client for baseURL. httpClient may be nil; its cookie jar is
// replaced when missing.
func New(baseURL string, httpClient *http.Client) (*Client, error) {
	parsed, err := url.Parse(strings.TrimRight(strings.TrimSpace(baseURL), "/"))
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}
	if parsed.Scheme == "" || parsed.Host == "" {
		return nil, fmt.Errorf("base url %q must be absolute", baseURL)
	}
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	if httpClient.Jar == nil {
		jar, err := cookiejar.New(nil)
		if err != nil {
			return nil, fmt.Errorf("cookie jar: %w", err)
		}
		httpClient.Jar = jar
	}
	return &Client{baseURL: parsed, http: httpClient}, nil
}

// URL resolves an API path against the base url.
func (c *Client) URL(path string) string {
	return c.baseURL.String() + path
}

func (c *Client) csrfToken() string {
	for _, cookie := range c.http.Jar.Cookies(c.baseURL) {
		if cookie.Name == csrfCookieName {
			return cookie.Value
		}
	}
	return ""
}

// envelope is the shared shape of every JSON response.
type envelope struct {
	Success *bool  `json:"success"`
	Error   string `json:"error"`
	Message string `json:"message"`
}

func (e envelope) message() string {
	if e.Error != "" {
		return e.Error
	}
	return e.Message
}

// do sends one request and decodes the JSON body into out when non nil.
// A non 2xx status or success:false becomes *domain.BackendError.
func (c *Client) do(ctx context.Context, method, path string, body io.Reader, contentType string, out any) error {
	req, err := http.NewRequestWithContext(ctx, method, c.URL(path), body)
	if err != nil {
		return &domain.NetworkError{Op: method + " " + path, Err: err}
	}
	req.Header.Set("Accept", "application/json")
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if method != http.MethodGet {
		if token := c.csrfToken(); token != "" {
			req.Header.Set(csrfHeaderName, token)
		}
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return &domain.NetworkError{Op: method + " " + path, Err: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return &domain.NetworkError{Op: "read " + path, Err: err}
	}

	var env envelope
	envErr := json.Unmarshal(raw, &env)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &domain.BackendError{StatusCode: resp.StatusCode, Message: env.message()}
	}
	if envErr != nil {
		return &domain.NetworkError{Op: "decode " + path, Err: envErr}
	}
	if env.Success != nil && !*env.Success {
		return &domain.BackendError{StatusCode: resp.StatusCode, Message: env.message()}
	}
	if out != nil {
		if err := json.Unmarshal(raw, out); err != nil {
			return &domain.NetworkError{Op: "decode " + path, Err: err}
		}
	}
	return nil
}

func (c *Client) doJSON(ctx context.Context, method, path string, payload any, out any) error {
	var body io.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("encode %s: %w", path, err)
		}
		body = bytes.NewReader(raw)
	}
	return c.do(ctx, method, path, body, "application/json", out)
}

// Login obtains a CSRF cookie and then a session cookie.
func (c *Client) Login(ctx context.Context, username, password string) (domain.User, error) {
	if err := c.do(ctx, http.MethodGet, "/api/auth/csrf", nil, "", nil); err != nil {
		return domain.User{}, err
	}
	var resp struct {
		User domain.User `json:"user"`
	}
	err := c.doJSON(ctx, http.MethodPost, "/api/auth/login", map[string]string{
		"username": username,
		"password": password,
	}, &resp)
	if err != nil {
		return domain.User{}, err
	}
	return resp.User, nil
}

// Logout drops the server session.
func (c *Client) Logout(ctx context.Context) error {
	return c.doJSON(ctx, http.MethodPost, "/api/auth/logout", nil, nil)
}

// ListUsers returns every user with a newest first payroll history.
func (c *Client) ListUsers(ctx context.Context) ([]domain.User, error) {
	var resp struct {
		Users []domain.User `json:"users"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/users", nil, "", &resp); err != nil {
		return nil, err
	}
	if resp.Users == nil {
		return nil, &domain.NetworkError{Op: "decode /api/users", Err: errors.New("missing users field")}
	}
	for i := range resp.Users {
		resp.Users[i].PayrollHistory = domain.NormalizeHistory(resp.Users[i].PayrollHistory)
	}
	return resp.Users, nil
}

// History returns one user's records, newest first.
func (c *Client) History(ctx context.Context, userID uint) ([]domain.PayrollRecord, error) {
	var resp struct {
		PayrollHistory []domain.PayrollRecord `json:"payroll_history"`
	}
	if err := c.do(ctx, http.MethodGet, fmt.Sprintf("/api/payroll/%d/history", userID), nil, "", &resp); err != nil {
		return nil, err
	}
	return domain.NormalizeHistory(resp.PayrollHistory), nil
}

// Upsert creates or replaces the record of in.Month.
func (c *Client) Upsert(ctx context.Context, userID uint, in domain.PayrollUpsert) (domain.PayrollRecord, error) {
	var resp struct {
		Record domain.PayrollRecord `json:"record"`
	}
	if err := c.doJSON(ctx, http.MethodPost, fmt.Sprintf("/api/payroll/%d/upsert", userID), in, &resp); err != nil {
		return domain.PayrollRecord{}, err
	}
	return resp.Record, nil
}

func (c *Client) CreateUser(ctx context.Context, in domain.UserInput) (domain.User, error) {
	var resp struct {
		User domain.User `json:"user"`
	}
	if err := c.doJSON(ctx, http.MethodPost, "/api/users/create", in, &resp); err != nil {
		return domain.User{}, err
	}
	return resp.User, nil
}

func (c *Client) UpdateUser(ctx context.Context, userID uint, in domain.UserInput) (domain.User, error) {
	var resp struct {
		User domain.User `json:"user"`
	}
	if err := c.doJSON(ctx, http.MethodPut, fmt.Sprintf("/api/users/%d/update", userID), in, &resp); err != nil {
		return domain.User{}, err
	}
	return resp.User, nil
}

func (c *Client) DeleteUser(ctx context.Context, userID uint) error {
	return c.doJSON(ctx, http.MethodDelete, fmt.Sprintf("/api/users/%d/delete", userID), nil, nil)
}

// UploadPicture sends data as the multipart field profile_picture and
// returns the new picture url.
func (c *Client) UploadPicture(ctx context.Context, userID uint, filename string, data io.Reader) (string, error) {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	part, err := writer.CreateFormFile("profile_picture", filename)
	if err != nil {
		return "", fmt.Errorf("build upload: %w", err)
	}
	if _, err := io.Copy(part, data); err != nil {
		return "", fmt.Errorf("read picture: %w", err)
	}
	if err := writer.Close(); err != nil {
		return "", fmt.Errorf("build upload: %w", err)
	}

	var resp struct {
		ProfilePicture string `json:"profile_picture"`
	}
	path := fmt.Sprintf("/api/users/%d/upload-picture", userID)
	if err := c.do(ctx, http.MethodPost, path, &buf, writer.FormDataContentType(), &resp); err != nil {
		return "", err
	}
	return resp.ProfilePicture, nil
}

// PDFURL is the document link of a slip; it is opened, not fetched as JSON.
func (c *Client) PDFURL(userID uint, month string) string {
	return c.URL(fmt.Sprintf("/api/payroll/%d/pdf?month=%s", userID, url.QueryEscape(month)))
}

// DownloadSlip streams the slip PDF into w.
func (c *Client) DownloadSlip(ctx context.Context, userID uint, month string, w io.Writer) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.PDFURL(userID, month), nil)
	if err != nil {
		return &domain.NetworkError{Op: "pdf", Err: err}
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return &domain.NetworkError{Op: "pdf", Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		var env envelope
		raw, _ := io.ReadAll(resp.Body)
		_ = json.Unmarshal(raw, &env)
		if resp.StatusCode == http.StatusNotFound {
			return &domain.NotFoundError{Resource: "payroll slip", Message: env.message()}
		}
		return &domain.BackendError{StatusCode: resp.StatusCode, Message: env.message()}
	}
	if _, err := io.Copy(w, resp.Body); err != nil {
		return &domain.NetworkError{Op: "pdf", Err: err}
	}
	return nil
}
