package middleware

import (
	"context"
	"strings"

	"sentra/backend/internal/api/response"
	"sentra/backend/internal/apperr"
	"sentra/backend/internal/auth"
	"sentra/backend/internal/lifecycle"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const claimsKey = "claims"

type Authenticator interface {
	Authenticate(ctx context.Context, raw string) (*auth.Claims, error)
}

// Authenticate requires a valid, unrevoked bearer token. With allowQuery a
// token in the "token" query parameter is accepted too, for WebSocket
// handshakes where browsers cannot set headers.
func Authenticate(authn Authenticator, allowQuery bool, log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := bearerToken(c.GetHeader("Authorization"))
		if raw == "" && allowQuery {
			raw = c.Query("token")
		}
		if raw == "" {
			response.Error(c, log, apperr.Unauthenticated("Authorization token required"))
			return
		}

		claims, err := authn.Authenticate(c.Request.Context(), raw)
		if err != nil {
			response.Error(c, log, err)
			return
		}
		c.Set(claimsKey, claims)
		c.Next()
	}
}

func bearerToken(header string) string {
	scheme, token, ok := strings.Cut(strings.TrimSpace(header), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}

// ClaimsFrom returns the claims stored by Authenticate.
func ClaimsFrom(c *gin.Context) (*auth.Claims, bool) {
	v, ok := c.Get(claimsKey)
	if !ok {
		return nil, false
	}
	claims, ok := v.(*auth.Claims)
	return claims, ok && claims != nil
}

// IdentityFrom returns the verified caller identity.
func IdentityFrom(c *gin.Context) (lifecycle.Identity, bool) {
	claims, ok := ClaimsFrom(c)
	if !ok {
		return lifecycle.Identity{}, false
	}
	return claims.Identity(), true
}
