package middleware

import (
	"net/http"
	"strings"

	"firebase.google.com/go/v4/auth"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Context keys populated by VerifyToken for downstream handlers.
const (
	ContextUserID     = "authUID"
	ContextUserClaims = "authClaims"
)

// errorBody mirrors the api package's error envelope. Defined locally to
// avoid an import cycle with internal/api.
type errorBody struct {
	OK      bool   `json:"ok"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

// AuthMiddleware verifies Firebase ID tokens on protected routes.
type AuthMiddleware struct {
	authClient *auth.Client
	logger     *zap.Logger
}

// NewAuthMiddleware creates the middleware. The auth client must be
// initialized before any protected route is served.
func NewAuthMiddleware(authClient *auth.Client, logger *zap.Logger) *AuthMiddleware {
	if authClient == nil {
		panic("Firebase Auth client is not initialized for AuthMiddleware")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuthMiddleware{authClient: authClient, logger: logger}
}

// VerifyToken validates the Authorization bearer token and stores the
// caller's uid and decoded claims in the Gin context.
func (m *AuthMiddleware) VerifyToken() gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, errorBody{
				Code:    "unauthenticated",
				Message: "Login required",
			})
			return
		}

		parts := strings.Split(header, " ")
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, errorBody{
				Code:    "unauthenticated",
				Message: "Authorization header format must be 'Bearer {token}'",
			})
			return
		}

		token, err := m.authClient.VerifyIDToken(c.Request.Context(), parts[1])
		if err != nil {
			m.logger.Warn("failed to verify ID token", zap.Error(err))
			c.AbortWithStatusJSON(http.StatusUnauthorized, errorBody{
				Code:    "unauthenticated",
				Message: "Invalid or expired authentication token",
			})
			return
		}

		c.Set(ContextUserID, token.UID)
		c.Set(ContextUserClaims, token.Claims)
		c.Next()
	}
}
