package middlewares

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	domainErrors "go-wa-dispatch/src/domain/errors"
	logger "go-wa-dispatch/src/infrastructure/logger"
	"go-wa-dispatch/src/infrastructure/security"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v4"
	"github.com/stretchr/testify/assert"
)

type mockJWTService struct {
	verifyFn func(string, string) (jwt.MapClaims, error)
}

func (m *mockJWTService) GenerateJWTToken(subject string, tokenType string) (*security.AppToken, error) {
	return nil, nil
}

func (m *mockJWTService) GetClaimsAndVerifyToken(tokenString string, tokenType string) (jwt.MapClaims, error) {
	return m.verifyFn(tokenString, tokenType)
}

func TestErrorHandler(t *testing.T) {
	gin.SetMode(gin.TestMode)
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantBody   string
	}{
		{"not found", domainErrors.NewAppErrorWithType(domainErrors.NotFound), http.StatusNotFound, `{"error":"record not found"}`},
		{"validation", domainErrors.NewAppError(errors.New("phone is required"), domainErrors.ValidationError), http.StatusBadRequest, `{"error":"phone is required"}`},
		{"unauthenticated", domainErrors.NewAppErrorWithType(domainErrors.NotAuthenticated), http.StatusUnauthorized, `{"error":"not Authenticated"}`},
		{"repository details hidden", domainErrors.NewAppError(errors.New("dial tcp: refused"), domainErrors.RepositoryError), http.StatusInternalServerError, `{"error":"Internal Server Error"}`},
		{"plain error", errors.New("boom"), http.StatusInternalServerError, `{"error":"Internal Server Error"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := gin.New()
			router.Use(ErrorHandler())
			router.GET("/", func(c *gin.Context) { _ = c.Error(tt.err) })

			w := httptest.NewRecorder()
			router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

			assert.Equal(t, tt.wantStatus, w.Code)
			assert.JSONEq(t, tt.wantBody, w.Body.String())
		})
	}
}

func TestErrorHandler_NoErrorPassesThrough(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(ErrorHandler())
	router.GET("/", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "ok"}) })

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestAuthJWTMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	jwtService := &mockJWTService{verifyFn: func(token string, tokenType string) (jwt.MapClaims, error) {
		switch token {
		case "good":
			return jwt.MapClaims{"sub": "admin", "type": tokenType}, nil
		case "nosub":
			return jwt.MapClaims{"type": tokenType}, nil
		}
		return nil, domainErrors.NewAppErrorWithType(domainErrors.NotAuthenticated)
	}}

	tests := []struct {
		name       string
		header     string
		wantStatus int
	}{
		{"missing header", "", http.StatusUnauthorized},
		{"invalid token", "Bearer bad", http.StatusUnauthorized},
		{"missing subject", "Bearer nosub", http.StatusForbidden},
		{"valid token", "Bearer good", http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := gin.New()
			router.Use(AuthJWTMiddleware(jwtService, logger.NewNopLogger()))
			router.GET("/", func(c *gin.Context) {
				c.String(http.StatusOK, c.GetString(SubjectKey))
			})

			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			assert.Equal(t, tt.wantStatus, w.Code)
			if tt.wantStatus == http.StatusOK {
				assert.Equal(t, "admin", w.Body.String())
			}
		})
	}
}
