package auth

import (
	"crypto/subtle"
	"errors"
	"time"

	domainErrors "go-wa-dispatch/src/domain/errors"
	logger "go-wa-dispatch/src/infrastructure/logger"
	"go-wa-dispatch/src/infrastructure/security"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

type IAuthUseCase interface {
	Login(username, password string) (*AuthTokens, error)
	AccessTokenByRefreshToken(refreshToken string) (*AuthTokens, error)
}

// AdminCredentials identify the single operator account. PasswordHash is a
// bcrypt hash.
type AdminCredentials struct {
	Username     string
	PasswordHash string
}

type AuthUseCase struct {
	Admin      AdminCredentials
	JWTService security.IJWTService
	Logger     *logger.Logger
}

func NewAuthUseCase(admin AdminCredentials, jwtService security.IJWTService, loggerInstance *logger.Logger) IAuthUseCase {
	return &AuthUseCase{
		Admin:      admin,
		JWTService: jwtService,
		Logger:     loggerInstance,
	}
}

type AuthTokens struct {
	Username                  string
	AccessToken               string
	RefreshToken              string
	ExpirationAccessDateTime  time.Time
	ExpirationRefreshDateTime time.Time
}

var errBadCredentials = errors.New("username or password does not match")

func (s *AuthUseCase) Login(username, password string) (*AuthTokens, error) {
	s.Logger.Info("Admin login attempt", zap.String("username", username))

	if s.Admin.Username == "" || s.Admin.PasswordHash == "" {
		s.Logger.Warn("Login rejected: admin credentials are not configured")
		return nil, domainErrors.NewAppError(errBadCredentials, domainErrors.NotAuthenticated)
	}
	userMatches := subtle.ConstantTimeCompare([]byte(username), []byte(s.Admin.Username)) == 1
	if !checkPasswordHash(password, s.Admin.PasswordHash) || !userMatches {
		s.Logger.Warn("Login failed: invalid credentials", zap.String("username", username))
		return nil, domainErrors.NewAppError(errBadCredentials, domainErrors.NotAuthenticated)
	}

	accessToken, err := s.JWTService.GenerateJWTToken(s.Admin.Username, security.Access)
	if err != nil {
		s.Logger.Error("Error generating access token", zap.Error(err))
		return nil, err
	}
	refreshToken, err := s.JWTService.GenerateJWTToken(s.Admin.Username, security.Refresh)
	if err != nil {
		s.Logger.Error("Error generating refresh token", zap.Error(err))
		return nil, err
	}

	s.Logger.Info("Admin login successful", zap.String("username", username))
	return &AuthTokens{
		Username:                  s.Admin.Username,
		AccessToken:               accessToken.Token,
		RefreshToken:              refreshToken.Token,
		ExpirationAccessDateTime:  accessToken.ExpirationTime,
		ExpirationRefreshDateTime: refreshToken.ExpirationTime,
	}, nil
}

func (s *AuthUseCase) AccessTokenByRefreshToken(refreshToken string) (*AuthTokens, error) {
	s.Logger.Info("Refreshing access token")
	claimsMap, err := s.JWTService.GetClaimsAndVerifyToken(refreshToken, security.Refresh)
	if err != nil {
		s.Logger.Error("Error verifying refresh token", zap.Error(err))
		return nil, err
	}
	subject, _ := claimsMap["sub"].(string)
	if subject != s.Admin.Username {
		s.Logger.Warn("Refresh token subject is not the configured admin", zap.String("subject", subject))
		return nil, domainErrors.NewAppErrorWithType(domainErrors.NotAuthenticated)
	}

	accessToken, err := s.JWTService.GenerateJWTToken(subject, security.Access)
	if err != nil {
		s.Logger.Error("Error generating new access token", zap.Error(err))
		return nil, err
	}

	var refreshExpiration time.Time
	if exp, ok := claimsMap["exp"].(float64); ok {
		refreshExpiration = time.Unix(int64(exp), 0)
	}

	s.Logger.Info("Access token refreshed successfully", zap.String("username", subject))
	return &AuthTokens{
		Username:                  subject,
		AccessToken:               accessToken.Token,
		ExpirationAccessDateTime:  accessToken.ExpirationTime,
		RefreshToken:              refreshToken,
		ExpirationRefreshDateTime: refreshExpiration,
	}, nil
}

func checkPasswordHash(password, hash string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	return err == nil
}
