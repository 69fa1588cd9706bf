package handler

import (
	"log"
	"time"

	"github.com/gin-gonic/gin"

	"giftshop/internal/auth"
	"giftshop/pkg/response"
)

const userIDKey = "verified_user_id"

// AuthMiddleware runs the identity verifier on the X-Init-Data header
// and stows the trusted user id in the request context. Handlers below
// it never look at the raw credential.
func AuthMiddleware(verifier *auth.Verifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		credential := c.GetHeader("X-Init-Data")
		if credential == "" {
			response.Error(c, response.CodeInvalidCredential, "missing credential")
			c.Abort()
			return
		}

		userID, err := verifier.Verify(credential)
		if err != nil {
			response.Error(c, response.CodeInvalidCredential, "invalid credential")
			c.Abort()
			return
		}

		c.Set(userIDKey, userID)
		c.Next()
	}
}

// verifiedUser returns the id the auth middleware stored.
func verifiedUser(c *gin.Context) string {
	return c.GetString(userIDKey)
}

// LoggerMiddleware logs one line per request.
func LoggerMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		query := c.Request.URL.RawQuery

		c.Next()

		latency := time.Since(start)
		status := c.Writer.Status()

		if query != "" {
			path = path + "?" + query
		}

		log.Printf("[HTTP] %d | %13v | %15s | %-7s %s",
			status,
			latency,
			c.ClientIP(),
			c.Request.Method,
			path,
		)
	}
}

// RecoveryMiddleware keeps a panicking handler from taking the process
// down.
func RecoveryMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if err := recover(); err != nil {
				log.Printf("[PANIC] %v", err)
				c.AbortWithStatusJSON(500, gin.H{
					"code":    500,
					"message": "internal server error",
				})
			}
		}()
		c.Next()
	}
}

// CORSMiddleware allows the web-app frontend to call from any origin.
func CORSMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Origin, Content-Type, Authorization, X-Init-Data")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	}
}
