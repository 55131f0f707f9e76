package user

import (
	"context"
	"log"
	"net/http"
	"slices"
	"time"

	"techshop_back_end/internal/cart"
	"techshop_back_end/internal/middleware"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

const (
	wsPingInterval = 30 * time.Second
	wsWriteTimeout = 10 * time.Second
)

type cartMessage struct {
	Type    string `json:"type"`
	Message string `json:"message,omitempty"`
	CartView
}

func (h *Cart) upgrader() websocket.Upgrader {
	return websocket.Upgrader{
		CheckOrigin: func(r *http.Request) bool {
			origin := r.Header.Get("Origin")
			return origin == "" || slices.Contains(h.origins, "*") || slices.Contains(h.origins, origin)
		},
	}
}

// GET /api/cart/ws pushes the cart to every open tab of the same session
// whenever one of them changes it.
func (h *Cart) WebSocket(c *gin.Context) {
	key := middleware.CartKey(c)

	up := h.upgrader()
	conn, err := up.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Printf("❌ WebSocket upgrade: %v", err)
		return
	}
	defer conn.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pubsub := h.events.Subscribe(ctx, key)
	defer pubsub.Close()
	ch := pubsub.Channel()

	// the client only sends control frames; a read error means it left
	go func() {
		defer cancel()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	send := func(msgType, text string) bool {
		items, err := h.carts.Snapshot(ctx, key)
		if err != nil {
			log.Printf("⚠️ Cart snapshot %s: %v", key, err)
			return true
		}
		_ = conn.SetWriteDeadline(time.Now().Add(wsWriteTimeout))
		if err := conn.WriteJSON(cartMessage{Type: msgType, Message: text, CartView: viewOf(items)}); err != nil {
			log.Printf("❌ WebSocket send: %v", err)
			return false
		}
		return true
	}

	if !send("connected", "Sincronização do carrinho ativada") {
		return
	}

	ticker := time.NewTicker(wsPingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			if msg.Payload != cart.EventUpdated && msg.Payload != cart.EventCleared {
				continue
			}
			if !send("cart_updated", "") {
				return
			}
		case <-ticker.C:
			_ = conn.SetWriteDeadline(time.Now().Add(wsWriteTimeout))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
