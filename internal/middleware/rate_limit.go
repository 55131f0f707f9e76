package middleware

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"

	"techshop_back_end/internal/cache"
	"techshop_back_end/internal/repository"

	"github.com/gin-gonic/gin"
)

const (
	APIWindow  = time.Minute
	CartWindow = time.Minute
)

// limit counts one hit under key and aborts with 429 once max is exceeded.
// Redis errors let the request through.
func limit(c *gin.Context, limiter *cache.Cache, key string, max int, window time.Duration, message string) bool {
	n, err := limiter.IncrementRateLimit(c.Request.Context(), key, window)
	if err != nil {
		log.Printf("⚠️ Rate limit %s: %v", key, err)
		return true
	}

	c.Header("X-RateLimit-Limit", fmt.Sprintf("%d", max))
	remaining := int64(max) - n
	if remaining < 0 {
		remaining = 0
	}
	c.Header("X-RateLimit-Remaining", fmt.Sprintf("%d", remaining))

	if n > int64(max) {
		retry := limiter.TTL(c.Request.Context(), key)
		c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
			"error":       message,
			"retry_after": int(retry.Seconds()),
		})
		return false
	}
	return true
}

// APIRateLimit caps requests per client IP.
func APIRateLimit(limiter *cache.Cache, max int) gin.HandlerFunc {
	return func(c *gin.Context) {
		if limiter == nil || max <= 0 {
			c.Next()
			return
		}
		if limit(c, limiter, "api_requests:"+c.ClientIP(), max, APIWindow, "Muitas requisições. Tente novamente em 1 minuto") {
			c.Next()
		}
	}
}

// CartRateLimit caps cart writes per cart, so one browser cannot flood Redis.
func CartRateLimit(limiter *cache.Cache, max int) gin.HandlerFunc {
	return func(c *gin.Context) {
		if limiter == nil || max <= 0 || c.Request.Method == http.MethodGet {
			c.Next()
			return
		}
		if limit(c, limiter, "cart_writes:"+CartKey(c), max, CartWindow, "Muitas alterações no carrinho. Aguarde um momento") {
			c.Next()
		}
	}
}

// MaxLoginBody bounds the sign-in payload read by LoginRateLimit.
const MaxLoginBody = 8 << 10

// LoginRateLimit locks an email after repeated failed sign-ins. Failures
// are the 401 answers of the login handler; a 200 clears the counter.
func LoginRateLimit(limiter *cache.Cache) gin.HandlerFunc {
	return func(c *gin.Context) {
		if limiter == nil {
			c.Next()
			return
		}

		body, err := io.ReadAll(http.MaxBytesReader(c.Writer, c.Request.Body, MaxLoginBody))
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			c.AbortWithStatusJSON(http.StatusRequestEntityTooLarge, gin.H{"error": "Dados inválidos"})
			return
		}
		if err != nil {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Dados inválidos"})
			return
		}
		c.Request.Body = io.NopCloser(bytes.NewReader(body))

		var input struct {
			Email string `json:"email"`
		}
		if json.Unmarshal(body, &input) != nil || input.Email == "" {
			c.Next()
			return
		}
		email := repository.NormalizeEmail(input.Email)
		ctx := c.Request.Context()

		if limiter.LoginLocked(ctx, email) {
			retry := limiter.LoginRetryAfter(ctx, email)
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error":       fmt.Sprintf("Muitas tentativas. Tente novamente em %d minutos", int(retry.Minutes())+1),
				"retry_after": int(retry.Seconds()),
			})
			return
		}

		c.Next()

		switch c.Writer.Status() {
		case http.StatusUnauthorized:
			locked, err := limiter.RecordLoginFailure(ctx, email)
			if err != nil {
				log.Printf("⚠️ Login failure count for %s: %v", email, err)
			} else if locked {
				log.Printf("🔒 Login locked for %s", email)
			}
		case http.StatusOK:
			limiter.ResetLoginFailures(ctx, email)
		}
	}
}
