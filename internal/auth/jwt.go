package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/lorrc/complaint-desk-backend/internal/core/domain"
)

// Claims defines the structured data we store in the JWT. Identity is
// minted by the platform's account service; this service only verifies it.
type Claims struct {
	UserID      string      `json:"user_id"`
	Role        domain.Role `json:"role"`
	DisplayName string      `json:"display_name"`
	jwt.RegisteredClaims
}

type TokenManager struct {
	secretKey []byte
	ttl       time.Duration
}

func NewTokenManager(secret string, ttl time.Duration) *TokenManager {
	return &TokenManager{secretKey: []byte(secret), ttl: ttl}
}

// GenerateToken creates a new JWT access token.
func (tm *TokenManager) GenerateToken(userID string, role domain.Role, displayName string) (string, error) {
	if !role.IsValid() {
		return "", errors.New("invalid role")
	}
	expirationTime := time.Now().Add(tm.ttl)
	claims := &Claims{
		UserID:      userID,
		Role:        role,
		DisplayName: displayName,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(expirationTime),
			Subject:   userID,
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(tm.secretKey)
}

// ValidateToken parses and validates the token string.
func (tm *TokenManager) ValidateToken(tokenString string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return tm.secretKey, nil
	})

	if err != nil {
		return nil, err
	}

	if !token.Valid {
		return nil, errors.New("invalid token")
	}

	if !claims.Role.IsValid() {
		return nil, errors.New("unknown role in token")
	}

	return claims, nil
}
