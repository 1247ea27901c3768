package middleware

import (
	"errors"
	"net/http"

	"github.com/SuhaniChatterjee/medstock-wise/internal/auth"
	"github.com/SuhaniChatterjee/medstock-wise/internal/domain"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

const identityKey = "identity"

// RequireAuth resolves the bearer token and stores the caller on the context.
func RequireAuth(provider auth.IdentityProvider) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized: missing authorization header"})
			return
		}

		identity, err := provider.Verify(c.Request.Context(), header)
		if err != nil {
			if !errors.Is(err, domain.ErrUnauthorized) {
				log.Error().Err(err).Msg("auth: identity provider failed")
			}
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized: " + err.Error()})
			return
		}

		c.Set(identityKey, identity)
		c.Request = c.Request.WithContext(auth.WithIdentity(c.Request.Context(), identity))
		c.Next()
	}
}

// RequireRole rejects callers without one of roles. Admins always pass.
func RequireRole(roles ...domain.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !auth.HasRole(Identity(c), roles...) {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": domain.ErrForbidden.Error()})
			return
		}
		c.Next()
	}
}

// Identity returns the caller set by RequireAuth.
func Identity(c *gin.Context) *domain.Identity {
	if v, ok := c.Get(identityKey); ok {
		if id, ok := v.(*domain.Identity); ok {
			return id
		}
	}
	return nil
}
