package middleware

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

// UploadedByKey is the gin context key holding the caller's identity.
const UploadedByKey = "uploaded_by"

// Identity reads an optional bearer token and records who is calling. With an
// empty secret every request passes anonymously. A token that is present but
// invalid is rejected.
func Identity(secret string) gin.HandlerFunc {
	jwtKey := []byte(secret)
	return func(c *gin.Context) {
		if len(jwtKey) == 0 {
			c.Next()
			return
		}
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.Next()
			return
		}

		tokenString := strings.TrimPrefix(authHeader, "Bearer ")
		if tokenString == authHeader {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Bearer token malformed"})
			return
		}

		token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
			}
			return jwtKey, nil
		})
		if err != nil || !token.Valid {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired token"})
			return
		}

		if claims, ok := token.Claims.(jwt.MapClaims); ok {
			if who := identityFromClaims(claims); who != "" {
				c.Set(UploadedByKey, who)
			}
		}
		c.Next()
	}
}

func identityFromClaims(claims jwt.MapClaims) string {
	for _, key := range []string{"name", "email", "sub"} {
		if v, ok := claims[key].(string); ok && strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
	}
	return ""
}

// UploadedBy returns the caller recorded by Identity, falling back to the
// X-Uploaded-By header for anonymous clients.
func UploadedBy(c *gin.Context) string {
	if v := c.GetString(UploadedByKey); v != "" {
		return v
	}
	return strings.TrimSpace(c.GetHeader("X-Uploaded-By"))
}
