// Package token issues and validates the HS256 access and refresh JWTs.
package token

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	id "ishemalink/pkg/domain"
	dErrors "ishemalink/pkg/domain-errors"
)

// Type distinguishes access from refresh tokens so one cannot stand in for the other.
type Type string

const (
	TypeAccess  Type = "access"
	TypeRefresh Type = "refresh"
)

// Claims are the JWT claims for both token types. The caller's role is not
// embedded; it is reloaded on every request.
type Claims struct {
	UserID    string `json:"user_id"`
	TokenType Type   `json:"token_type"`
	jwt.RegisteredClaims
}

// ParsedUserID returns the subject as a typed ID.
func (c *Claims) ParsedUserID() (id.UserID, error) {
	return id.ParseUserID(c.UserID)
}

// ExpiresAtTime returns the expiry or the zero time.
func (c *Claims) ExpiresAtTime() time.Time {
	if c.ExpiresAt == nil {
		return time.Time{}
	}
	return c.ExpiresAt.Time
}

// Issued is a signed token with its jti and expiry.
type Issued struct {
	Token     string
	JTI       string
	ExpiresAt time.Time
}

// Service handles JWT creation and validation.
type Service struct {
	signingKey []byte
	issuer     string
	accessTTL  time.Duration
	refreshTTL time.Duration
}

func NewService(signingKey, issuer string, accessTTL, refreshTTL time.Duration) *Service {
	return &Service{
		signingKey: []byte(signingKey),
		issuer:     issuer,
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
	}
}

func (s *Service) IssueAccess(userID id.UserID, now time.Time) (Issued, error) {
	return s.issue(userID, TypeAccess, now, s.accessTTL)
}

func (s *Service) IssueRefresh(userID id.UserID, now time.Time) (Issued, error) {
	return s.issue(userID, TypeRefresh, now, s.refreshTTL)
}

func (s *Service) issue(userID id.UserID, typ Type, now time.Time, ttl time.Duration) (Issued, error) {
	jti := uuid.NewString()
	expiresAt := now.Add(ttl)
	newToken := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		UserID:    userID.String(),
		TokenType: typ,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID.String(),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			Issuer:    s.issuer,
			ID:        jti,
		},
	})

	signed, err := newToken.SignedString(s.signingKey)
	if err != nil {
		return Issued{}, err
	}
	return Issued{Token: signed, JTI: jti, ExpiresAt: expiresAt}, nil
}

// Validate parses tokenString and checks signature, expiry, issuer and type.
// Every failure is CodeUnauthorized.
func (s *Service) Validate(tokenString string, want Type) (*Claims, error) {
	parsed, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrTokenUnverifiable
		}
		return s.signingKey, nil
	}, jwt.WithIssuer(s.issuer), jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, dErrors.New(dErrors.CodeUnauthorized, "token has expired")
		}
		return nil, dErrors.New(dErrors.CodeUnauthorized, "invalid token")
	}

	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "invalid token claims")
	}
	if claims.TokenType != want {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "wrong token type")
	}
	if claims.ID == "" {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "token is missing jti")
	}
	return claims, nil
}

func (s *Service) AccessTTL() time.Duration  { return s.accessTTL }
func (s *Service) RefreshTTL() time.Duration { return s.refreshTTL }
