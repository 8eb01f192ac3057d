package middleware

import (
	"errors"
	"net/http"
	"strings"

	"learningcenter/pkg/logger"
	"learningcenter/pkg/response"
	"learningcenter/pkg/security"

	"github.com/gin-gonic/gin"
)

const (
	ContextUserID = "userId"
	ContextRoles  = "roles"
)

type TokenValidator interface {
	ValidateAccessToken(token string) (*security.Claims, error)
}

type AuthMiddleware struct {
	tokens TokenValidator
	log    *logger.Logger
}

func NewAuthMiddleware(tokens TokenValidator, log *logger.Logger) *AuthMiddleware {
	return &AuthMiddleware{tokens: tokens, log: log.With("middleware", "auth")}
}

// RequireAuth accepts a bearer access token and stores its subject and roles on the
// gin context.
func (am *AuthMiddleware) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := bearerToken(c.GetHeader("Authorization"))
		if !ok {
			response.RespondError(c, http.StatusUnauthorized, "unauthorized", errors.New("authorization header is required"))
			return
		}
		claims, err := am.tokens.ValidateAccessToken(token)
		if err != nil {
			am.log.Debug("access token rejected", "error", err)
			response.RespondError(c, http.StatusUnauthorized, "unauthorized", errors.New("invalid or expired token"))
			return
		}
		c.Set(ContextUserID, claims.Subject)
		c.Set(ContextRoles, claims.Roles)
		c.Next()
	}
}

// RequireRoles must run after RequireAuth.
func (am *AuthMiddleware) RequireRoles(roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims := security.Claims{Roles: c.GetStringSlice(ContextRoles)}
		if !claims.HasAnyRole(roles...) {
			response.RespondError(c, http.StatusForbidden, "forbidden", errors.New("insufficient role"))
			return
		}
		c.Next()
	}
}

func bearerToken(header string) (string, bool) {
	parts := strings.Fields(header)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", false
	}
	return parts[1], true
}
