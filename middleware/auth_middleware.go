package middleware

import (
	"crypto/subtle"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"pageperf/api/utils"
)

// Context keys set by AuthRequired.
const (
	AnalystIDKey    = "analyst_id"
	AnalystEmailKey = "analyst_email"
)

// TokenCookie is the cookie carrying an analyst session token.
const TokenCookie = "jwt_token"

// AuthRequired admits requests carrying the shared API key in X-API-KEY, or a valid
// session token in the jwt_token cookie or the Authorization header.
func AuthRequired(tokens *utils.TokenManager, apiKey string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if key := c.GetHeader("X-API-KEY"); apiKey != "" && key != "" &&
			subtle.ConstantTimeCompare([]byte(key), []byte(apiKey)) == 1 {
			c.Next()
			return
		}

		tokenString, err := c.Cookie(TokenCookie)
		if err != nil || tokenString == "" {
			tokenString = utils.BearerToken(c.GetHeader("Authorization"))
			if tokenString == "" {
				slog.Debug("auth: no token in cookie or header", "path", c.FullPath())
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized: No token provided"})
				return
			}
		}

		claims, err := tokens.ValidateJWT(tokenString)
		if err != nil {
			slog.Info("auth: invalid token", "error", err)
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized: Invalid or expired token"})
			return
		}

		c.Set(AnalystIDKey, claims.AnalystID)
		c.Set(AnalystEmailKey, claims.Email)
		c.Next()
	}
}
