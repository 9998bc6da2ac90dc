package middlewares

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/Leganyst/golf-club/internal/auth"
)

// Ключи контекста gin.
const (
	CtxMemberID = "member_id"
	CtxRole     = "role"
)

// TokenParser проверяет bearer-токен.
type TokenParser interface {
	ParseValidate(token string) (*auth.Claims, error)
}

func unauthorized(c *gin.Context, msg string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
		"error": msg,
		"code":  "AUTHENTICATION_REQUIRED",
	})
}

func JWTAuth(p TokenParser) gin.HandlerFunc {
	return func(c *gin.Context) {
		h := c.GetHeader("Authorization")
		if !strings.HasPrefix(h, "Bearer ") {
			unauthorized(c, "Invalid authorization format. Expected 'Bearer <token>'")
			return
		}
		claims, err := p.ParseValidate(strings.TrimPrefix(h, "Bearer "))
		if err != nil {
			unauthorized(c, "Invalid or expired token")
			return
		}
		id, err := claims.MemberID()
		if err != nil {
			unauthorized(c, "Invalid or expired token")
			return
		}
		c.Set(CtxMemberID, id)
		c.Set(CtxRole, claims.Role)
		c.Next()
	}
}

func RequireRole(roles ...string) gin.HandlerFunc {
	allowed := map[string]struct{}{}
	for _, r := range roles {
		allowed[r] = struct{}{}
	}
	return func(c *gin.Context) {
		role := c.GetString(CtxRole)
		if _, ok := allowed[role]; !ok {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
				"error": "insufficient role",
				"code":  "FORBIDDEN",
			})
			return
		}
		c.Next()
	}
}

// MemberID — участник, прошедший JWTAuth.
func MemberID(c *gin.Context) int64 {
	return c.GetInt64(CtxMemberID)
}
