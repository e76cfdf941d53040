package api

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

const identityKey = "identity"

// Identity 是从 Bearer JWT 中解出的调用方身份
type Identity struct {
	UserID string `json:"userId"`
	Email  string `json:"email,omitempty"`
}

// AuthMiddleware 校验 Authorization: Bearer <jwt>（HS256）。
// 令牌由外部身份服务签发，这里只验签不签发。
func AuthMiddleware(secret []byte) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		raw, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || strings.TrimSpace(raw) == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Not authenticated"})
			return
		}

		token, err := jwt.Parse(raw, func(t *jwt.Token) (interface{}, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, jwt.ErrSignatureInvalid
			}
			return secret, nil
		})
		if err != nil || !token.Valid {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Not authenticated"})
			return
		}

		identity := Identity{}
		if claims, ok := token.Claims.(jwt.MapClaims); ok {
			if sub, ok := claims["sub"].(string); ok {
				identity.UserID = sub
			}
			if email, ok := claims["email"].(string); ok {
				identity.Email = email
			}
		}
		c.Set(identityKey, identity)
		c.Next()
	}
}

// Me 回显当前认证身份
func Me(c *gin.Context) {
	identity, ok := c.Get(identityKey)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Not authenticated"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "user": identity})
}
