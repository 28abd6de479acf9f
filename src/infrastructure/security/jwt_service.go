package security

import (
	"errors"
	"fmt"
	"time"

	domainErrors "go-wa-dispatch/src/domain/errors"

	"github.com/golang-jwt/jwt/v4"
)

const (
	Access  = "access"
	Refresh = "refresh"
)

type AppToken struct {
	Token          string
	TokenType      string
	ExpirationTime time.Time
}

type Claims struct {
	Subject string `json:"sub"`
	Type    string `json:"type"`
	jwt.RegisteredClaims
}

type JWTConfig struct {
	AccessSecret  string
	RefreshSecret string
	AccessTTL     time.Duration
	RefreshTTL    time.Duration
}

type IJWTService interface {
	GenerateJWTToken(subject string, tokenType string) (*AppToken, error)
	GetClaimsAndVerifyToken(tokenString string, tokenType string) (jwt.MapClaims, error)
}

type JWTService struct {
	Config JWTConfig
}

func NewJWTService(config JWTConfig) IJWTService {
	return &JWTService{Config: config}
}

func (s *JWTService) secret(tokenType string) (string, time.Duration, error) {
	switch tokenType {
	case Access:
		return s.Config.AccessSecret, s.Config.AccessTTL, nil
	case Refresh:
		return s.Config.RefreshSecret, s.Config.RefreshTTL, nil
	}
	return "", 0, fmt.Errorf("invalid token type %q", tokenType)
}

func (s *JWTService) GenerateJWTToken(subject string, tokenType string) (*AppToken, error) {
	secret, ttl, err := s.secret(tokenType)
	if err != nil {
		return nil, err
	}
	if secret == "" {
		return nil, fmt.Errorf("%s token secret is not configured", tokenType)
	}

	now := time.Now()
	expiration := now.Add(ttl)
	claims := &Claims{
		Subject: subject,
		Type:    tokenType,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(expiration),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	if err != nil {
		return nil, err
	}
	return &AppToken{
		Token:          signed,
		TokenType:      tokenType,
		ExpirationTime: expiration,
	}, nil
}

// GetClaimsAndVerifyToken checks the signature, expiry and type of a token.
func (s *JWTService) GetClaimsAndVerifyToken(tokenString string, tokenType string) (jwt.MapClaims, error) {
	secret, _, err := s.secret(tokenType)
	if err != nil {
		return nil, err
	}
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(secret), nil
	})
	if err != nil {
		return nil, domainErrors.NewAppError(err, domainErrors.NotAuthenticated)
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return nil, domainErrors.NewAppError(errors.New("invalid token"), domainErrors.NotAuthenticated)
	}
	if claims["type"] != tokenType {
		return nil, domainErrors.NewAppError(errors.New("token type mismatch"), domainErrors.NotAuthenticated)
	}
	return claims, nil
}
