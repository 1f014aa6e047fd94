package services

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"rigworks-backend/internal/models"
)

type Claims struct {
	UserID   int64  `json:"user_id"`
	Username string `json:"username"`
	Role     string `json:"role"`
	jwt.RegisteredClaims
}

// JWTService issues and validates the bearer tokens the API runs on.
type JWTService struct {
	secret   []byte
	lifetime time.Duration
	clock    Clock
}

func NewJWTService(secret string, lifetime time.Duration, clock Clock) *JWTService {
	return &JWTService{secret: []byte(secret), lifetime: lifetime, clock: clock}
}

func (s *JWTService) GenerateToken(account *models.PlayerAccount) (string, error) {
	now := s.clock.Now()
	claims := Claims{
		UserID:   account.ID,
		Username: account.Username,
		Role:     account.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.lifetime)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}

func (s *JWTService) ValidateToken(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("invalid token: %v", err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("invalid token claims")
	}
	return claims, nil
}
