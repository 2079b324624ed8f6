package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"

	"forge-service/internal/core/domain"
	"forge-service/internal/core/services"
)

const (
	userKey   = "user"
	claimsKey = "token_claims"
)

// Authenticator resolves a bearer token to its user.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (*domain.User, *services.TokenClaims, error)
}

// Authenticate loads the user behind a bearer token when one is sent.
// Requests without a token continue as guests; an invalid token is rejected.
func Authenticate(auth Authenticator) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			c.Next()
			return
		}

		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || strings.TrimSpace(token) == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": domain.ErrInvalidToken.Error()})
			return
		}

		user, claims, err := auth.Authenticate(c.Request.Context(), strings.TrimSpace(token))
		if err != nil {
			log.WithError(err).WithField("request_id", c.GetString(requestIDKey)).Debug("token rejected")
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": domain.ErrInvalidToken.Error()})
			return
		}

		c.Set(userKey, user)
		c.Set(claimsKey, claims)
		c.Next()
	}
}

// RequireAuth rejects guests.
func RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if CurrentUser(c) == nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": domain.ErrUnauthenticated.Error()})
			return
		}
		c.Next()
	}
}

// RequireAbility rejects tokens that were not issued with ability. Tokens
// without any abilities are unrestricted.
func RequireAbility(ability string) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, _ := c.Get(claimsKey)
		if tc, ok := claims.(*services.TokenClaims); ok && !tc.Can(ability) {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"message": domain.ErrForbidden.Error()})
			return
		}
		c.Next()
	}
}

// CurrentUser returns the authenticated user or nil for guests.
func CurrentUser(c *gin.Context) *domain.User {
	v, ok := c.Get(userKey)
	if !ok {
		return nil
	}
	user, _ := v.(*domain.User)
	return user
}
