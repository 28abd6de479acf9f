package middlewares

import (
	"net/http"
	"strings"

	logger "go-wa-dispatch/src/infrastructure/logger"
	"go-wa-dispatch/src/infrastructure/security"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const SubjectKey = "subject"

// AuthJWTMiddleware requires a valid access token in the Authorization
// header and stores its subject in the context.
func AuthJWTMiddleware(jwtService security.IJWTService, loggerInstance *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := c.GetHeader("Authorization")
		if tokenString == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Token not provided"})
			return
		}
		tokenString = strings.TrimSpace(strings.TrimPrefix(tokenString, "Bearer "))

		claims, err := jwtService.GetClaimsAndVerifyToken(tokenString, security.Access)
		if err != nil {
			loggerInstance.Warn("Rejected access token", zap.String("path", c.FullPath()), zap.Error(err))
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid token"})
			return
		}

		subject, ok := claims["sub"].(string)
		if !ok || subject == "" {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Invalid token claims"})
			return
		}

		c.Set(SubjectKey, subject)
		c.Next()
	}
}
