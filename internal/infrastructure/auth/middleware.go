package auth

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const agentIDContextKey = "auth_agent_id"

// Middleware enforces agent bearer tokens and stores the acting agent
// id on the gin context.
func (s *TokenService) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := bearerToken(c.GetHeader("Authorization"))
		if tokenString == "" {
			abortUnauthorized(c, "missing bearer token")
			return
		}
		claims, err := s.Verify(tokenString)
		if err != nil {
			abortUnauthorized(c, "invalid token")
			return
		}
		c.Set(agentIDContextKey, claims.AgentID)
		c.Next()
	}
}

// AgentID returns the authenticated agent id set by Middleware.
func AgentID(c *gin.Context) (uuid.UUID, bool) {
	value, ok := c.Get(agentIDContextKey)
	if !ok {
		return uuid.Nil, false
	}
	agentID, ok := value.(uuid.UUID)
	return agentID, ok
}

func bearerToken(header string) string {
	if header == "" {
		return ""
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}

func abortUnauthorized(c *gin.Context, message string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
		"error": message,
	})
}
