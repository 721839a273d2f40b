package middleware

import (
	"net/http"
	"strings"

	"gas_marketplace/pkg/response"
	"gas_marketplace/pkg/utils"

	"github.com/gin-gonic/gin"
)

// 上下文键
const (
	CtxAccountID = "accountID"
	CtxActor     = "actor"
)

// AuthMiddleware JWT认证中间件
func AuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			response.Error(c, http.StatusUnauthorized, response.ErrTokenInvalid, "Authorization header is required")
			c.Abort()
			return
		}

		// 检查格式 "Bearer <token>"
		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			response.Error(c, http.StatusUnauthorized, response.ErrTokenInvalid, "Invalid authorization header format")
			c.Abort()
			return
		}

		claims, err := utils.ParseToken(parts[1])
		if err != nil {
			response.Error(c, http.StatusUnauthorized, response.ErrTokenInvalid, "Invalid or expired token")
			c.Abort()
			return
		}

		c.Set(CtxAccountID, claims.AccountID)
		c.Set(CtxActor, claims.Actor)

		c.Next()
	}
}

// RequireActor 角色门禁：token 的 actor 必须是指定角色之一
func RequireActor(actors ...string) gin.HandlerFunc {
	allowed := make(map[string]struct{}, len(actors))
	for _, a := range actors {
		allowed[a] = struct{}{}
	}

	return func(c *gin.Context) {
		actor := c.GetString(CtxActor)
		if actor == "" {
			response.Error(c, http.StatusUnauthorized, response.ErrNoPermission, "Unauthorized")
			c.Abort()
			return
		}

		if _, ok := allowed[actor]; !ok {
			response.Error(c, http.StatusForbidden, response.ErrNoPermission, "Insufficient role for this operation")
			c.Abort()
			return
		}

		c.Next()
	}
}

// AccountID 从上下文取当前账号ID
func AccountID(c *gin.Context) string {
	return c.GetString(CtxAccountID)
}

// Actor 从上下文取当前账号角色
func Actor(c *gin.Context) string {
	return c.GetString(CtxActor)
}
