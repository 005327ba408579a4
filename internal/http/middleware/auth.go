package middleware

import (
	"crypto/subtle"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"github.com/solforge-games/solforge-backend/internal/platform/apierr"
	"github.com/solforge-games/solforge-backend/internal/platform/ctxutil"
	"github.com/solforge-games/solforge-backend/internal/platform/logger"
)

// AuthMiddleware admits two kinds of callers: player sessions carrying
// a wallet-bound JWT, and trusted game servers presenting the shared
// API key.
type AuthMiddleware struct {
	log        *logger.Logger
	jwtSecret  []byte
	gameAPIKey string
}

func NewAuthMiddleware(log *logger.Logger, jwtSecret, gameAPIKey string) *AuthMiddleware {
	return &AuthMiddleware{
		log:        log.With("Middleware", "AuthMiddleware"),
		jwtSecret:  []byte(jwtSecret),
		gameAPIKey: gameAPIKey,
	}
}

// RequireSession validates the bearer token and attaches the caller's
// wallet to the request context.
func (am *AuthMiddleware) RequireSession() gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := extractBearerToken(c)
		if tokenString == "" {
			abortUnauthorized(c, "missing or invalid token")
			return
		}
		if len(am.jwtSecret) == 0 {
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
				"error": gin.H{"message": "session auth not configured", "code": apierr.CodeConfigurationError},
			})
			return
		}

		claims := jwt.MapClaims{}
		token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
			}
			return am.jwtSecret, nil
		})
		if err != nil || !token.Valid {
			abortUnauthorized(c, "missing or invalid token")
			return
		}

		wallet, _ := claims["wallet"].(string)
		if wallet == "" {
			wallet, _ = claims["sub"].(string)
		}
		if strings.TrimSpace(wallet) == "" {
			abortUnauthorized(c, "token carries no wallet")
			return
		}

		ctx := ctxutil.WithCallerData(c.Request.Context(), &ctxutil.CallerData{Wallet: wallet})
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

// RequireGameKey admits only callers holding the shared game-server
// API key.
func (am *AuthMiddleware) RequireGameKey() gin.HandlerFunc {
	return func(c *gin.Context) {
		if am.gameAPIKey == "" {
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
				"error": gin.H{"message": "game server auth not configured", "code": apierr.CodeConfigurationError},
			})
			return
		}
		key := strings.TrimSpace(c.GetHeader("X-Api-Key"))
		if key == "" || subtle.ConstantTimeCompare([]byte(key), []byte(am.gameAPIKey)) != 1 {
			abortUnauthorized(c, "invalid api key")
			return
		}
		ctx := ctxutil.WithCallerData(c.Request.Context(), &ctxutil.CallerData{GameServer: true})
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

func extractBearerToken(c *gin.Context) string {
	authHeader := c.GetHeader("Authorization")
	if len(authHeader) > 7 && strings.EqualFold(authHeader[:7], "Bearer ") {
		return authHeader[7:]
	}
	return ""
}

func abortUnauthorized(c *gin.Context, msg string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
		"error": gin.H{"message": msg, "code": apierr.CodeUnauthorized},
	})
}
