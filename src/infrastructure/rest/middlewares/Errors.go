package middlewares

import (
	"errors"
	"net/http"

	domainErrors "go-wa-dispatch/src/domain/errors"

	"github.com/gin-gonic/gin"
)

var statusByType = map[string]int{
	domainErrors.NotFound:         http.StatusNotFound,
	domainErrors.ValidationError:  http.StatusBadRequest,
	domainErrors.RepositoryError:  http.StatusInternalServerError,
	domainErrors.NotAuthenticated: http.StatusUnauthorized,
	domainErrors.NotAuthorized:    http.StatusForbidden,
	domainErrors.UnknownError:     http.StatusInternalServerError,
}

// ErrorHandler renders the last error attached to the context. Repository
// and unknown failures are not echoed back to the client.
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 || c.Writer.Written() {
			return
		}
		err := c.Errors.Last().Err

		var appErr *domainErrors.AppError
		if !errors.As(err, &appErr) {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal Server Error"})
			return
		}
		status, ok := statusByType[appErr.Type]
		if !ok {
			status = http.StatusInternalServerError
		}
		if status == http.StatusInternalServerError {
			c.JSON(status, gin.H{"error": "Internal Server Error"})
			return
		}
		c.JSON(status, gin.H{"error": appErr.Error()})
	}
}
