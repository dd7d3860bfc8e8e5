package middleware

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/duality-2/SilkRoad/configs"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

const sessionKey = "session_id"

var ErrNoSession = errors.New("no session in token")

// SessionAuth issues and verifies the bearer tokens that carry a visitor's
// session id in the "sid" claim.
type SessionAuth struct {
	secret   []byte
	issuer   string
	audience string
	ttl      time.Duration
	now      func() time.Time
}

func NewSessionAuth(cfg configs.Config) *SessionAuth {
	ttl := cfg.Security.TTL
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &SessionAuth{
		secret:   []byte(cfg.Security.JWTSecret),
		issuer:   cfg.Security.Issuer,
		audience: cfg.Security.Audience,
		ttl:      ttl,
		now:      time.Now,
	}
}

// Issue signs a token for sid. It returns the token and its lifetime.
func (a *SessionAuth) Issue(sid string) (string, time.Duration, error) {
	now := a.now()
	claims := jwt.MapClaims{
		"iss": a.issuer,
		"aud": a.audience,
		"iat": now.Unix(),
		"nbf": now.Unix(),
		"exp": now.Add(a.ttl).Unix(),
		"sid": sid,
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(a.secret)
	if err != nil {
		return "", 0, err
	}
	return signed, a.ttl, nil
}

// Parse verifies raw and returns its session id.
func (a *SessionAuth) Parse(raw string) (string, error) {
	token, err := jwt.Parse(raw, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return a.secret, nil
	},
		jwt.WithLeeway(30*time.Second), // small clock skew
		jwt.WithIssuer(a.issuer),
		jwt.WithAudience(a.audience),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(a.now),
	)
	if err != nil {
		return "", err
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return "", ErrNoSession
	}
	sid, _ := claims["sid"].(string)
	if sid == "" {
		return "", ErrNoSession
	}
	return sid, nil
}

// Require rejects requests without a valid session token and stores the
// session id for SessionID.
func (a *SessionAuth) Require() gin.HandlerFunc {
	return func(c *gin.Context) {
		auth := c.GetHeader("Authorization")
		if !strings.HasPrefix(auth, "Bearer ") {
			unauth(c, "invalid_request", "missing bearer token")
			return
		}

		sid, err := a.Parse(strings.TrimPrefix(auth, "Bearer "))
		if err != nil {
			unauth(c, "invalid_token", "invalid session token")
			return
		}

		c.Set(sessionKey, sid)
		c.Next()
	}
}

// SessionID returns the id stored by Require.
func SessionID(c *gin.Context) string {
	return c.GetString(sessionKey)
}

func unauth(c *gin.Context, code, desc string) {
	c.Header("WWW-Authenticate", `Bearer error="`+code+`", error_description="`+desc+`"`)
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": code, "error_description": desc})
}
