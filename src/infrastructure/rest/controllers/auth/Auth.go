package auth

import (
	"net/http"

	useCaseAuth "go-wa-dispatch/src/application/usecases/auth"
	domainErrors "go-wa-dispatch/src/domain/errors"
	logger "go-wa-dispatch/src/infrastructure/logger"
	"go-wa-dispatch/src/infrastructure/rest/controllers"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type IAuthController interface {
	Login(ctx *gin.Context)
	GetAccessTokenByRefreshToken(ctx *gin.Context)
}

type AuthController struct {
	authUseCase useCaseAuth.IAuthUseCase
	Logger      *logger.Logger
}

func NewAuthController(authUsecase useCaseAuth.IAuthUseCase, loggerInstance *logger.Logger) IAuthController {
	return &AuthController{
		authUseCase: authUsecase,
		Logger:      loggerInstance,
	}
}

func (c *AuthController) Login(ctx *gin.Context) {
	c.Logger.Info("Admin login request")
	var request LoginRequest
	if err := controllers.BindJSON(ctx, &request); err != nil {
		c.Logger.Error("Error binding JSON for login", zap.Error(err))
		appError := domainErrors.NewAppError(err, domainErrors.ValidationError)
		_ = ctx.Error(appError)
		return
	}

	authTokens, err := c.authUseCase.Login(request.Username, request.Password)
	if err != nil {
		c.Logger.Error("Login failed", zap.Error(err), zap.String("username", request.Username))
		_ = ctx.Error(err)
		return
	}

	c.Logger.Info("Login successful", zap.String("username", authTokens.Username))
	ctx.JSON(http.StatusOK, toLoginResponse(authTokens))
}

func (c *AuthController) GetAccessTokenByRefreshToken(ctx *gin.Context) {
	c.Logger.Info("Token refresh request")
	var request AccessTokenRequest
	if err := controllers.BindJSON(ctx, &request); err != nil {
		c.Logger.Error("Error binding JSON for token refresh", zap.Error(err))
		appError := domainErrors.NewAppError(err, domainErrors.ValidationError)
		_ = ctx.Error(appError)
		return
	}

	authTokens, err := c.authUseCase.AccessTokenByRefreshToken(request.RefreshToken)
	if err != nil {
		c.Logger.Error("Token refresh failed", zap.Error(err))
		_ = ctx.Error(err)
		return
	}

	c.Logger.Info("Token refresh successful", zap.String("username", authTokens.Username))
	ctx.JSON(http.StatusOK, toLoginResponse(authTokens))
}

func toLoginResponse(authTokens *useCaseAuth.AuthTokens) LoginResponse {
	return LoginResponse{
		Data: UserData{UserName: authTokens.Username},
		Security: SecurityData{
			JWTAccessToken:            authTokens.AccessToken,
			JWTRefreshToken:           authTokens.RefreshToken,
			ExpirationAccessDateTime:  authTokens.ExpirationAccessDateTime,
			ExpirationRefreshDateTime: authTokens.ExpirationRefreshDateTime,
		},
	}
}
