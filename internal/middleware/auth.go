package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/medrex/clinical-api/internal/handler"
	"github.com/medrex/clinical-api/internal/model"
)

// Context keys set by the guard for downstream handlers.
const (
	ContextUser   = "user"
	ContextUserID = "user_id"
)

// TokenValidator resolves a raw credential to a live identity.
type TokenValidator interface {
	ValidateToken(ctx context.Context, token string) (*model.User, error)
}

type AuthMiddleware struct {
	validator  TokenValidator
	cookieName string
}

func NewAuthMiddleware(validator TokenValidator, cookieName string) *AuthMiddleware {
	return &AuthMiddleware{validator: validator, cookieName: cookieName}
}

// Authenticate extracts the bearer credential from the Authorization header
// or the session cookie, verifies it, and attaches the resolved identity to
// the request context. It fails closed: no handler runs unauthenticated.
func (m *AuthMiddleware) Authenticate() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := m.extractToken(c)
		if token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, handler.NewFailResponse("you are not logged in"))
			return
		}

		user, err := m.validator.ValidateToken(c.Request.Context(), token)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, handler.NewFailResponse("invalid or expired token"))
			return
		}

		c.Set(ContextUser, user)
		c.Set(ContextUserID, user.ID)
		c.Next()
	}
}

// RequireRole layers a role check over an already-authenticated request.
// Insufficient role is forbidden, not unauthorized.
func (m *AuthMiddleware) RequireRole(roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := CurrentUser(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, handler.NewFailResponse("you are not logged in"))
			return
		}

		for _, role := range roles {
			if user.Role == role {
				c.Next()
				return
			}
		}
		c.AbortWithStatusJSON(http.StatusForbidden, handler.NewFailResponse("you do not have permission to perform this action"))
	}
}

func (m *AuthMiddleware) extractToken(c *gin.Context) string {
	authHeader := c.GetHeader("Authorization")
	if authHeader != "" {
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) == 2 && parts[0] == "Bearer" {
			return parts[1]
		}
		return ""
	}

	if cookie, err := c.Cookie(m.cookieName); err == nil {
		return cookie
	}
	return ""
}

// CurrentUser returns the identity the guard attached to the request.
func CurrentUser(c *gin.Context) (*model.User, bool) {
	v, exists := c.Get(ContextUser)
	if !exists {
		return nil, false
	}
	user, ok := v.(*model.User)
	return user, ok
}

// CurrentUserID returns the authenticated identity's id.
func CurrentUserID(c *gin.Context) (primitive.ObjectID, bool) {
	v, exists := c.Get(ContextUserID)
	if !exists {
		return primitive.NilObjectID, false
	}
	id, ok := v.(primitive.ObjectID)
	return id, ok
}
