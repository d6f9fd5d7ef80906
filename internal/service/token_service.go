package service

import (
	"fmt"

	"experience-gift-fulfillment/internal/core/ports"

	"github.com/golang-jwt/jwt/v5"
)

// JWTTokenService implements ports.TokenService using HS256 JWT. Ops tokens
// are minted out-of-band by the platform's internal tooling with the shared
// ops secret; this service only validates.
type JWTTokenService struct {
	secret []byte
}

// NewJWTTokenService creates a new JWT token service.
func NewJWTTokenService(secret string) *JWTTokenService {
	return &JWTTokenService{secret: []byte(secret)}
}

// Validate parses and validates a bearer token, returning the claims.
func (s *JWTTokenService) Validate(tokenString string) (*ports.OpsClaims, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("parsing token: %w", err)
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("invalid token claims")
	}

	sub, ok := claims["sub"].(string)
	if !ok || sub == "" {
		return nil, fmt.Errorf("missing subject claim")
	}

	return &ports.OpsClaims{Subject: sub}, nil
}
