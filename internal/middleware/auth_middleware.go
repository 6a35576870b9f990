package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/smartsecretaria/secretaria/internal/pkg/auth"
)

// Context keys set by JWTAuth
const (
	UserIDKey   = "userID"
	UsernameKey = "username"
)

// Token error codes and messages in the shape the front-end expects
const (
	TokenNotValidCode      = "token_not_valid"
	NotAuthenticatedCode   = "not_authenticated"
	NotAuthenticatedDetail = "As credenciais de autenticação não foram fornecidas."
	TokenNotValidDetail    = "O token informado não é válido para qualquer tipo de token"
)

// AuthMiddleware for authentication
type AuthMiddleware struct {
	jwtService *auth.JWTService
}

// NewAuthMiddleware creates a new AuthMiddleware
func NewAuthMiddleware(jwtService *auth.JWTService) *AuthMiddleware {
	return &AuthMiddleware{jwtService: jwtService}
}

// JWTAuth middleware for JWT token validation
func (m *AuthMiddleware) JWTAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"detail": NotAuthenticatedDetail,
				"code":   NotAuthenticatedCode,
			})
			return
		}

		tokenString, err := auth.ExtractBearerToken(authHeader)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"detail": "Cabeçalho de autorização deve conter dois valores delimitados por espaço",
				"code":   "bad_authorization_header",
			})
			return
		}

		claims, err := m.jwtService.ValidateAndExtractClaims(tokenString)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"detail": TokenNotValidDetail,
				"code":   TokenNotValidCode,
			})
			return
		}

		c.Set(UserIDKey, claims.UserID)
		c.Set(UsernameKey, claims.Username)

		c.Next()
	}
}

// Username returns the authenticated username, or "" outside JWTAuth
func Username(c *gin.Context) string {
	return c.GetString(UsernameKey)
}
