// Package auth issues and verifies access tokens and tracks revoked ones.
package auth

import (
	"errors"
	"fmt"
	"time"

	"inkpost/internal/models"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const (
	Issuer   = "inkpost-api"
	Audience = "inkpost-client"
)

// ErrInvalidToken is returned for any token that fails verification.
var ErrInvalidToken = errors.New("invalid or expired token")

// Claims is the verified content of an access token.
type Claims struct {
	UserID    string
	Username  string
	Role      models.Role
	JTI       string
	ExpiresAt time.Time
}

// Actor returns the principal the token authenticates.
func (c *Claims) Actor() models.Actor {
	return models.Actor{ID: c.UserID, Role: c.Role}
}

// TokenManager signs and verifies HS256 access tokens.
type TokenManager struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewTokenManager returns a manager signing with secret; tokens live for ttl.
func NewTokenManager(secret string, ttl time.Duration) *TokenManager {
	return &TokenManager{secret: []byte(secret), ttl: ttl, now: time.Now}
}

// Issue returns a signed token for user.
func (m *TokenManager) Issue(user *models.User) (string, error) {
	if len(m.secret) == 0 {
		return "", fmt.Errorf("JWT secret not configured")
	}

	now := m.now()
	claims := jwt.MapClaims{
		"sub":      user.ID,
		"username": user.Username,
		"role":     user.Role.String(),
		"iss":      Issuer,
		"aud":      Audience,
		"exp":      now.Add(m.ttl).Unix(),
		"iat":      now.Unix(),
		"nbf":      now.Unix(),
		"jti":      uuid.NewString(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(m.secret)
}

// Parse verifies tokenString and returns its claims.
func (m *TokenManager) Parse(tokenString string) (*Claims, error) {
	token, err := jwt.Parse(tokenString, func(_ *jwt.Token) (any, error) {
		return m.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(Issuer),
		jwt.WithAudience(Audience),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(m.now),
	)
	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, ErrInvalidToken
	}
	sub, err := claims.GetSubject()
	if err != nil || sub == "" {
		return nil, ErrInvalidToken
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return nil, ErrInvalidToken
	}

	out := &Claims{UserID: sub, ExpiresAt: exp.Time}
	if role, ok := claims["role"].(string); ok {
		out.Role = models.ParseRole(role)
	} else {
		out.Role = models.RoleMember
	}
	out.Username, _ = claims["username"].(string)
	out.JTI, _ = claims["jti"].(string)
	return out, nil
}
