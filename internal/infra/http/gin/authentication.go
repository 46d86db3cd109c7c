package ginserver

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	gin "github.com/gin-gonic/gin"

	"stayfinder/internal/app/policies"
	"stayfinder/internal/app/services/auth"
	domainauth "stayfinder/internal/domain/auth"
	domainuser "stayfinder/internal/domain/user"
)

const principalContextKey = "stayfinder.principal"

type principal struct {
	ID        domainuser.ID
	Email     string
	FirstName string
	LastName  string
	Role      domainuser.Role
	Token     string
	CreatedAt time.Time
	LastLogin time.Time
}

func (p principal) policy() policies.Principal {
	return policies.Principal{UserID: p.ID, Role: p.Role}
}

// AuthMiddleware resolves the bearer token into a principal when one is
// presented. It never rejects; route handlers decide whether auth is required.
type AuthMiddleware struct {
	Service *auth.Service
	Logger  *slog.Logger
}

func (m AuthMiddleware) Handle(c *gin.Context) {
	token := extractBearerToken(c.GetHeader("Authorization"))
	if token == "" || m.Service == nil {
		c.Next()
		return
	}
	resolved, err := m.Service.ResolveToken(c.Request.Context(), token)
	if err != nil {
		if !errors.Is(err, domainauth.ErrSessionNotFound) && m.Logger != nil {
			m.Logger.Debug("token validation failed", "error", err)
		}
		c.Next()
		return
	}
	u := resolved.User
	setPrincipal(c, principal{
		ID:        u.ID,
		Email:     u.Email,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Role:      u.Role,
		Token:     token,
		CreatedAt: u.CreatedAt,
		LastLogin: u.LastLogin,
	})
	c.Next()
}

func setPrincipal(c *gin.Context, p principal) {
	c.Set(principalContextKey, p)
}

func currentPrincipal(c *gin.Context) (principal, bool) {
	val, exists := c.Get(principalContextKey)
	if !exists {
		return principal{}, false
	}
	p, ok := val.(principal)
	return p, ok
}

func requireAuth(c *gin.Context) (principal, bool) {
	p, ok := currentPrincipal(c)
	if !ok {
		respondErrorMessage(c, http.StatusUnauthorized, "authentication required")
		return principal{}, false
	}
	return p, true
}

func extractBearerToken(header string) string {
	if header == "" {
		return ""
	}
	if !strings.HasPrefix(strings.ToLower(header), "bearer ") {
		return ""
	}
	return strings.TrimSpace(header[7:])
}
