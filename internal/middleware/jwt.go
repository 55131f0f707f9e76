package middleware

import (
	"log"
	"net/http"
	"strings"

	"techshop_back_end/internal/cache"
	"techshop_back_end/internal/utils"

	"github.com/gin-gonic/gin"
)

// Context keys set once a bearer token is accepted.
const (
	KeyUserID = "user_id"
	KeyEmail  = "email"
	KeyRole   = "role"
	KeyClaims = "claims"
)

func bearerToken(c *gin.Context) (string, bool) {
	parts := strings.Fields(c.GetHeader("Authorization"))
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", false
	}
	return parts[1], true
}

// authenticate parses the bearer token and rejects revoked ones.
func authenticate(c *gin.Context, secret []byte, tokens *cache.Cache) (*utils.Claims, string) {
	raw, ok := bearerToken(c)
	if !ok {
		return nil, "Token ausente"
	}
	claims, err := utils.ParseJWT(secret, raw)
	if err != nil {
		log.Printf("❌ JWT rejected: %v", err)
		return nil, "Token inválido"
	}
	if tokens != nil && tokens.IsTokenBlacklisted(c.Request.Context(), claims.ID) {
		return nil, "Sessão encerrada"
	}
	return claims, ""
}

func setClaims(c *gin.Context, claims *utils.Claims) {
	c.Set(KeyUserID, claims.UserID)
	c.Set(KeyEmail, claims.Email)
	c.Set(KeyRole, claims.Role)
	c.Set(KeyClaims, claims)
}

// AuthRequired aborts with 401 unless a valid, non-revoked bearer token is sent.
func AuthRequired(secret []byte, tokens *cache.Cache) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, reason := authenticate(c, secret, tokens)
		if claims == nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": reason})
			return
		}
		setClaims(c, claims)
		c.Next()
	}
}

// OptionalAuth attaches the customer when a valid token is present and
// lets anonymous requests through.
func OptionalAuth(secret []byte, tokens *cache.Cache) gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := bearerToken(c); ok {
			if claims, _ := authenticate(c, secret, tokens); claims != nil {
				setClaims(c, claims)
			}
		}
		c.Next()
	}
}

// ClaimsFrom returns the claims set by AuthRequired or OptionalAuth.
func ClaimsFrom(c *gin.Context) *utils.Claims {
	v, ok := c.Get(KeyClaims)
	if !ok {
		return nil
	}
	claims, _ := v.(*utils.Claims)
	return claims
}
