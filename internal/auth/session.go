package auth

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/zfogg/blogicum/internal/models"
)

const (
	// SessionCookieName is the cookie carrying the signed session token
	SessionCookieName = "sessionid"
	// SessionTTL is how long a login lasts
	SessionTTL = 14 * 24 * time.Hour
)

// ErrInvalidSession is returned for missing, expired or tampered sessions
var ErrInvalidSession = errors.New("invalid session")

// Claims is the payload of a session token
type Claims struct {
	UserID         uint `json:"user_id"`
	SessionVersion int  `json:"sv"`
	jwt.RegisteredClaims
}

// SessionManager issues and verifies session cookies signed with HS256
type SessionManager struct {
	secret []byte
	secure bool
	ttl    time.Duration
	now    func() time.Time
}

// NewSessionManager creates a session manager. secure marks cookies HTTPS-only.
func NewSessionManager(secret []byte, secure bool) *SessionManager {
	return &SessionManager{
		secret: secret,
		secure: secure,
		ttl:    SessionTTL,
		now:    time.Now,
	}
}

// Issue signs a session token for user
func (m *SessionManager) Issue(user *models.User) (string, time.Time, error) {
	now := m.now()
	expiresAt := now.Add(m.ttl)

	claims := Claims{
		UserID:         user.ID,
		SessionVersion: user.SessionVersion,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(m.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to sign token: %w", err)
	}

	return signed, expiresAt, nil
}

// Parse verifies a session token and returns its claims
func (m *SessionManager) Parse(tokenString string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return m.secret, nil
	}, jwt.WithTimeFunc(m.now), jwt.WithExpirationRequired())
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSession, err)
	}

	if !token.Valid || claims.UserID == 0 {
		return nil, ErrInvalidSession
	}

	return claims, nil
}

// Login issues a session for user and sets it as a cookie
func (m *SessionManager) Login(w http.ResponseWriter, user *models.User) error {
	token, expiresAt, err := m.Issue(user)
	if err != nil {
		return err
	}

	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    token,
		Path:     "/",
		Expires:  expiresAt,
		MaxAge:   int(m.ttl.Seconds()),
		HttpOnly: true,
		Secure:   m.secure,
		SameSite: http.SameSiteLaxMode,
	})
	return nil
}

// Logout clears the session cookie
func (m *SessionManager) Logout(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   m.secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// FromRequest returns the claims of the request's session cookie
func (m *SessionManager) FromRequest(r *http.Request) (*Claims, error) {
	cookie, err := r.Cookie(SessionCookieName)
	if err != nil || cookie.Value == "" {
		return nil, ErrInvalidSession
	}
	return m.Parse(cookie.Value)
}

// Matches reports whether claims still describe user's current session version
func (c *Claims) Matches(user *models.User) bool {
	return user != nil && c.UserID == user.ID && c.SessionVersion == user.SessionVersion
}
