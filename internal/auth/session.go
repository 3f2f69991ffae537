package auth

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"payroll/internal/entity"

	"github.com/golang-jwt/jwt/v5"
)

const (
	defaultSessionTTL = 24 * time.Hour
	defaultIssuer     = "payroll"
)

var (
	ErrSessionExpired = errors.New("session expired")
	ErrSessionInvalid = errors.New("session invalid")
)

// Claims is the payload of the session cookie. CSRF is the token issued
// together with the session; unsafe requests must echo it.
type Claims struct {
	UserID   uint   `json:"uid"`
	Username string `json:"username"`
	Role     string `json:"role"`
	CSRF     string `json:"csrf"`
	jwt.RegisteredClaims
}

// CSRFValid reports whether header carries the token bound to the session.
func (c *Claims) CSRFValid(header string) bool {
	if c == nil {
		return false
	}
	return CSRFMatches(c.CSRF, header)
}

// Session is handed to the client on login.
type Session struct {
	Token     string
	CSRF      string
	ExpiresAt time.Time
}

// Manager issues and validates session cookies.
type Manager struct {
	secret []byte
	issuer string
	ttl    time.Duration
	now    func() time.Time
}

func NewManager(secret, issuer string, ttl time.Duration) (*Manager, error) {
	secret = strings.TrimSpace(secret)
	if secret == "" {
		return nil, errors.New("jwt secret must not be empty")
	}
	if ttl <= 0 {
		ttl = defaultSessionTTL
	}
	issuer = strings.TrimSpace(issuer)
	if issuer == "" {
		issuer = defaultIssuer
	}
	return &Manager{secret: []byte(secret), issuer: issuer, ttl: ttl, now: time.Now}, nil
}

// TTL is the lifetime of a session and of its cookie.
func (m *Manager) TTL() time.Duration { return m.ttl }

// Issue starts a session for user with a fresh CSRF token, so every login
// rotates the token.
func (m *Manager) Issue(user *entity.DbUser) (Session, error) {
	if user == nil || user.ID == 0 {
		return Session{}, errors.New("session requires a persisted user")
	}
	now := m.now().UTC()
	csrf := NewCSRFToken()
	claims := Claims{
		UserID:   user.ID,
		Username: user.Username,
		Role:     user.Role,
		CSRF:     csrf,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatUint(uint64(user.ID), 10),
			Issuer:    m.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
	if err != nil {
		return Session{}, fmt.Errorf("sign session: %w", err)
	}
	return Session{Token: signed, CSRF: csrf, ExpiresAt: claims.ExpiresAt.Time}, nil
}

// Parse validates a session cookie. Failures wrap ErrSessionExpired or
// ErrSessionInvalid.
func (m *Manager) Parse(token string) (*Claims, error) {
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(m.issuer),
		jwt.WithTimeFunc(m.now),
	)
	claims := &Claims{}
	parsed, err := parser.ParseWithClaims(token, claims, func(*jwt.Token) (interface{}, error) {
		return m.secret, nil
	})
	switch {
	case errors.Is(err, jwt.ErrTokenExpired):
		return nil, fmt.Errorf("%w: %v", ErrSessionExpired, err)
	case err != nil:
		return nil, fmt.Errorf("%w: %v", ErrSessionInvalid, err)
	case !parsed.Valid || claims.UserID == 0:
		return nil, ErrSessionInvalid
	}
	return claims, nil
}
