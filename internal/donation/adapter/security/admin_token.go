package security

import (
	"errors"
	"time"

	apperrors "vitamend-data/internal/shared/errors"

	"github.com/golang-jwt/jwt/v5"
)

// RoleAdmin is the only role accepted by the protected bridge routes.
const RoleAdmin = "admin"

// AdminClaims are carried by bridge admin tokens.
type AdminClaims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// TokenService signs and validates short-lived HS256 admin tokens.
type TokenService struct {
	secretKey []byte
	issuer    string
	ttl       time.Duration
	now       func() time.Time
}

// NewTokenService creates a token service. The secret must not be empty.
func NewTokenService(secret, issuer string, ttl time.Duration) (*TokenService, error) {
	if secret == "" {
		return nil, errors.New("jwt secret key cannot be empty")
	}
	if issuer == "" {
		issuer = "vitamend-bridge"
	}
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &TokenService{
		secretKey: []byte(secret),
		issuer:    issuer,
		ttl:       ttl,
		now:       time.Now,
	}, nil
}

// Sign issues an admin token for subject.
func (s *TokenService) Sign(subject string) (string, error) {
	now := s.now()
	claims := &AdminClaims{
		Role: RoleAdmin,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			Issuer:    s.issuer,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secretKey)
}

// Validate parses tokenString and checks signature, expiry, issuer and role.
func (s *TokenService) Validate(tokenString string) (*AdminClaims, error) {
	if tokenString == "" {
		return nil, apperrors.ErrInvalidToken
	}

	token, err := jwt.ParseWithClaims(tokenString, &AdminClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, apperrors.ErrInvalidToken
		}
		return s.secretKey, nil
	}, jwt.WithIssuer(s.issuer), jwt.WithTimeFunc(s.now))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, apperrors.ErrTokenExpired
		}
		return nil, apperrors.ErrInvalidToken
	}

	claims, ok := token.Claims.(*AdminClaims)
	if !ok || !token.Valid {
		return nil, apperrors.ErrInvalidToken
	}
	if claims.Role != RoleAdmin {
		return nil, apperrors.ErrUnauthorized
	}
	return claims, nil
}
