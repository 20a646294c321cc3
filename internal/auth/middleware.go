package auth

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gofrs/uuid"
	"github.com/golang-jwt/jwt/v5"

	"taskflow/internal/model"
)

const contextKey = "auth.context"

type claims struct {
	UserID   string `json:"id"`
	Role     string `json:"role"`
	TenantID string `json:"company_id"`
	jwt.RegisteredClaims
}

// Middleware validates the bearer token and stores the caller Context on
// the request. Token issuing lives in the identity service; this side only
// verifies signatures.
func Middleware(secret []byte) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "No token provided."})
			return
		}

		raw := strings.TrimPrefix(header, "Bearer ")
		parsed, err := jwt.ParseWithClaims(raw, &claims{}, func(t *jwt.Token) (interface{}, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
			}
			return secret, nil
		})
		if err != nil || !parsed.Valid {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "Invalid token."})
			return
		}

		cl, ok := parsed.Claims.(*claims)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "Invalid token."})
			return
		}

		userID, err := uuid.FromString(cl.UserID)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "Invalid token."})
			return
		}

		actor := Context{
			UserID:   userID,
			Role:     model.Role(cl.Role),
			TenantID: uuid.FromStringOrNil(cl.TenantID),
		}
		c.Set(contextKey, actor)
		c.Next()
	}
}

// FromGin returns the caller Context stored by Middleware.
func FromGin(c *gin.Context) (Context, bool) {
	v, ok := c.Get(contextKey)
	if !ok {
		return Context{}, false
	}
	actor, ok := v.(Context)
	return actor, ok
}
