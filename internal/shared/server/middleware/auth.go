package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"placement-backend/internal/shared/auth"
	"placement-backend/internal/shared/server/respond"
)

const (
	userIDKey      = "userId"
	userEmailKey   = "userEmail"
	userNameKey    = "userName"
	userPictureKey = "userPicture"
	isGuestKey     = "isGuest"

	guestHeader = "X-Guest-Id"
	guestPrefix = "guest:"
)

var publicPrefixes = []string{
	"/api/v1/auth/google/",
	"/api/v1/health",
	"/metrics",
}

// Auth validates JWTs or guest headers and stores identity in context.
func Auth(env string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		if isPublic(c.Request.URL.Path) {
			c.Next()
			return
		}

		authHeader := strings.TrimSpace(c.GetHeader("Authorization"))
		if authHeader != "" {
			token, ok := strings.CutPrefix(authHeader, "Bearer ")
			token = strings.TrimSpace(token)
			if !ok || token == "" {
				unauthorized(c, "missing or invalid token")
				return
			}
			claims, err := auth.VerifyJWT(token)
			if err != nil {
				unauthorized(c, "missing or invalid token")
				return
			}

			c.Set(userIDKey, claims.Sub)
			if claims.Email != "" {
				c.Set(userEmailKey, claims.Email)
			}
			if claims.Name != "" {
				c.Set(userNameKey, claims.Name)
			}
			if claims.Picture != "" {
				c.Set(userPictureKey, claims.Picture)
			}
			c.Set(isGuestKey, false)
			c.Next()
			return
		}

		guestID := strings.TrimSpace(c.GetHeader(guestHeader))
		if guestID == "" {
			unauthorized(c, "Missing identity")
			return
		}
		c.Set(userIDKey, guestPrefix+guestID)
		c.Set(isGuestKey, true)
		c.Next()
	}
}

func isPublic(path string) bool {
	for _, p := range publicPrefixes {
		if strings.HasPrefix(path, p) {
			return true
		}
	}
	return false
}

func unauthorized(c *gin.Context, msg string) {
	respond.Error(c, http.StatusUnauthorized, respond.CodeUnauthorized, msg, nil)
}

// UserIDFromContext fetches the user ID set by the auth middleware.
func UserIDFromContext(c *gin.Context) string {
	return stringFromContext(c, userIDKey)
}

// UserEmailFromContext fetches the user email set by the auth middleware.
func UserEmailFromContext(c *gin.Context) string {
	return stringFromContext(c, userEmailKey)
}

// UserNameFromContext fetches the user name set by the auth middleware.
func UserNameFromContext(c *gin.Context) string {
	return stringFromContext(c, userNameKey)
}

// UserPictureFromContext fetches the user picture set by the auth middleware.
func UserPictureFromContext(c *gin.Context) string {
	return stringFromContext(c, userPictureKey)
}

// IsGuestFromContext reports whether the caller identified with the guest header.
func IsGuestFromContext(c *gin.Context) bool {
	if c == nil {
		return false
	}
	return c.GetBool(isGuestKey)
}

func stringFromContext(c *gin.Context, key string) string {
	if c == nil {
		return ""
	}
	return c.GetString(key)
}
