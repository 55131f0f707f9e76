package middleware

import (
	"log"
	"net/http"

	"techshop_back_end/internal/config"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/sessions"
)

const (
	CartSessionName = "techshop_cart"
	KeyCartSession  = "cart_session"
	cartSessionID   = "cart_id"
	cartSessionAge  = 86400 * 30
)

// NewSessionStore signs the cart cookie with SESSION_SECRET.
func NewSessionStore(cfg *config.Config) *sessions.CookieStore {
	store := sessions.NewCookieStore([]byte(cfg.SessionSecret))
	store.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   cartSessionAge,
		HttpOnly: true,
		Secure:   cfg.SecureCookies,
		SameSite: http.SameSiteLaxMode,
	}
	return store
}

// CartSession gives every browser a stable anonymous id, issued on first
// visit and kept in a signed cookie.
func CartSession(store sessions.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		session, err := store.Get(c.Request, CartSessionName)
		if err != nil {
			// tampered or rotated secret: start a fresh session
			log.Printf("⚠️ Cart session reset: %v", err)
		}

		id, _ := session.Values[cartSessionID].(string)
		if id == "" {
			id = uuid.NewString()
			session.Values[cartSessionID] = id
			if err := session.Save(c.Request, c.Writer); err != nil {
				log.Printf("❌ Cart session save: %v", err)
				c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Erro ao iniciar sessão"})
				return
			}
		}

		c.Set(KeyCartSession, id)
		c.Next()
	}
}

// CartKey is the namespace of the caller's cart: the signed-in customer's
// id when there is one, the browser session otherwise.
func CartKey(c *gin.Context) string {
	if userID := c.GetString(KeyUserID); userID != "" {
		return "user:" + userID
	}
	if sid := c.GetString(KeyCartSession); sid != "" {
		return "session:" + sid
	}
	return "ip:" + c.ClientIP()
}

// SessionCartKey is the browser-session cart, regardless of sign-in.
func SessionCartKey(c *gin.Context) string {
	if sid := c.GetString(KeyCartSession); sid != "" {
		return "session:" + sid
	}
	return ""
}
