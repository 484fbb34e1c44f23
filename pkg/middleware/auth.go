package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/weiawesome/wes-estate/pkg/jwt"
	"github.com/weiawesome/wes-estate/pkg/log"
	"github.com/weiawesome/wes-estate/pkg/response"
)

const (
	UserIDKey     = log.FieldUserID
	EmailKey      = log.FieldUserEmail
	AuthHeaderKey = "Authorization"
	BearerPrefix  = "Bearer "

	msgNotAuthorized = "Not authorized to access this route"
)

// TokenValidator validates a bearer token.
type TokenValidator interface {
	Validate(token string) (*jwt.Claims, error)
}

// UserLookup resolves the user a token was issued for. Tokens of deleted
// users are rejected.
type UserLookup interface {
	LookupEmail(ctx context.Context, userID string) (string, error)
}

// AuthMiddleware validates JWT tokens locally.
type AuthMiddleware struct {
	tokens TokenValidator
	users  UserLookup
}

// NewAuthMiddleware creates a new auth middleware. users may be nil, in which
// case the token claims are trusted as-is.
func NewAuthMiddleware(tokens TokenValidator, users UserLookup) *AuthMiddleware {
	return &AuthMiddleware{tokens: tokens, users: users}
}

// RequireAuth returns a Gin middleware that validates JWT tokens.
func (m *AuthMiddleware) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader(AuthHeaderKey)
		if !strings.HasPrefix(authHeader, BearerPrefix) {
			response.Abort(c, http.StatusUnauthorized, msgNotAuthorized)
			return
		}

		token := strings.TrimSpace(strings.TrimPrefix(authHeader, BearerPrefix))
		if token == "" {
			response.Abort(c, http.StatusUnauthorized, msgNotAuthorized)
			return
		}

		claims, err := m.tokens.Validate(token)
		if err != nil {
			l := log.Ctx(c.Request.Context())
			l.Debug().Err(err).Msg("rejected bearer token")
			response.Abort(c, http.StatusUnauthorized, msgNotAuthorized)
			return
		}

		email := claims.Email
		if m.users != nil {
			email, err = m.users.LookupEmail(c.Request.Context(), claims.UserID)
			if err != nil {
				response.Abort(c, http.StatusUnauthorized, msgNotAuthorized)
				return
			}
		}

		c.Set(UserIDKey, claims.UserID)
		c.Set(EmailKey, email)
		c.Request = c.Request.WithContext(log.WithUser(c.Request.Context(), claims.UserID, email))

		c.Next()
	}
}

// GetUserID extracts user ID from Gin context.
func GetUserID(c *gin.Context) string {
	return c.GetString(UserIDKey)
}

// GetEmail extracts email from Gin context.
func GetEmail(c *gin.Context) string {
	return c.GetString(EmailKey)
}
