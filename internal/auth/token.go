// Package auth holds the session token codec and the role tier policy.
package auth

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"wikiadmin/internal/models"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// ErrInvalidToken covers bad signatures, malformed payloads and expiry.
var ErrInvalidToken = errors.New("invalid token")

// DefaultTTL is the lifetime of an issued session token.
const DefaultTTL = 7 * 24 * time.Hour

// Claims is the payload of a session token. Role and IsAdmin are for display
// only; authorization always re-reads the account from storage.
type Claims struct {
	ID       uint        `json:"id"`
	Username string      `json:"username"`
	Role     models.Role `json:"role"`
	IsAdmin  bool        `json:"isAdmin"`
	jwt.RegisteredClaims
}

// Identity is what a token is issued for.
type Identity struct {
	ID       uint
	Username string
	Role     models.Role
}

// Codec signs and verifies HS256 session tokens. It never touches storage.
type Codec struct {
	secret   []byte
	issuer   string
	audience string
	ttl      time.Duration
	now      func() time.Time
}

// NewCodec builds a codec. A non-positive ttl falls back to DefaultTTL.
func NewCodec(secret, issuer, audience string, ttl time.Duration) *Codec {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Codec{
		secret:   []byte(secret),
		issuer:   issuer,
		audience: audience,
		ttl:      ttl,
		now:      time.Now,
	}
}

// TTL returns the lifetime of issued tokens.
func (c *Codec) TTL() time.Duration {
	return c.ttl
}

// Issue signs a token for id. extra claims are merged in but cannot override
// the reserved ones.
func (c *Codec) Issue(id Identity, extra map[string]any) (string, *Claims, error) {
	if len(c.secret) == 0 {
		return "", nil, fmt.Errorf("JWT secret not configured")
	}

	now := c.now()
	claims := &Claims{
		ID:       id.ID,
		Username: id.Username,
		Role:     id.Role,
		IsAdmin:  id.Role.IsAdmin(),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatUint(uint64(id.ID), 10),
			Issuer:    c.issuer,
			Audience:  jwt.ClaimStrings{c.audience},
			ExpiresAt: jwt.NewNumericDate(now.Add(c.ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ID:        generateJTI(now),
		},
	}

	var token *jwt.Token
	if len(extra) == 0 {
		token = jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	} else {
		token = jwt.NewWithClaims(jwt.SigningMethodHS256, mergeClaims(claims, extra))
	}

	signed, err := token.SignedString(c.secret)
	if err != nil {
		return "", nil, err
	}
	return signed, claims, nil
}

// Decode verifies signature, expiry, issuer and audience.
func (c *Codec) Decode(tokenString string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (any, error) {
		return c.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(c.issuer),
		jwt.WithAudience(c.audience),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(c.now),
	)
	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}

	sub, err := strconv.ParseUint(claims.Subject, 10, 32)
	if err != nil || uint(sub) != claims.ID || claims.ID == 0 {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

func mergeClaims(claims *Claims, extra map[string]any) jwt.MapClaims {
	out := jwt.MapClaims{}
	for k, v := range extra {
		out[k] = v
	}
	out["id"] = claims.ID
	out["username"] = claims.Username
	out["role"] = claims.Role
	out["isAdmin"] = claims.IsAdmin
	out["sub"] = claims.Subject
	out["iss"] = claims.Issuer
	out["aud"] = claims.Audience
	out["exp"] = claims.ExpiresAt.Unix()
	out["iat"] = claims.IssuedAt.Unix()
	out["nbf"] = claims.NotBefore.Unix()
	out["jti"] = claims.RegisteredClaims.ID
	return out
}

// generateJTI creates a unique JWT ID so individual tokens can be revoked.
func generateJTI(now time.Time) string {
	return fmt.Sprintf("%d-%s", now.Unix(), uuid.New().String()[:8])
}
