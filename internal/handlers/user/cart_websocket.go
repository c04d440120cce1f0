package user

import (
	"context"
	"log"
	"net/http"
	"time"

	"giftbox_back_end/internal/database"
	"giftbox_back_end/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// L'origine est déjà filtrée par le middleware CORS en amont.
	CheckOrigin: func(r *http.Request) bool { return true },
}

const (
	wsPingInterval = 30 * time.Second
	wsWriteTimeout = 10 * time.Second
)

// CartWebSocket pousse le panier résolu à chaque mutation. Le serveur
// s'abonne au canal Redis cart:<user> alimenté par les handlers du
// panier, ce qui synchronise tous les onglets ouverts.
func CartWebSocket(c *gin.Context) {
	userID, exists := c.Get("user_id")
	if !exists || userID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Non autorisé"})
		return
	}

	if database.Redis == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Synchronisation du panier indisponible"})
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Printf("❌ Upgrade websocket échoué: %v", err)
		return
	}
	defer conn.Close()

	ctx, cancel := context.WithCancel(c.Request.Context())
	defer cancel()

	sub := database.Redis.Subscribe(ctx, "cart:"+userID.(string))
	defer sub.Close()

	// Draine les messages entrants pour détecter la fermeture côté client.
	go func() {
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				cancel()
				return
			}
		}
	}()

	pushCart := func() bool {
		view, _, err := service.LoadCart(userID.(string))
		if err != nil {
			log.Printf("⚠️ Panier irrésolvable pour le websocket: %v", err)
			return true
		}
		conn.SetWriteDeadline(time.Now().Add(wsWriteTimeout))
		return conn.WriteJSON(view) == nil
	}

	// État initial à la connexion.
	if !pushCart() {
		return
	}

	ping := time.NewTicker(wsPingInterval)
	defer ping.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case _, ok := <-sub.Channel():
			if !ok {
				return
			}
			if !pushCart() {
				return
			}
		case <-ping.C:
			conn.SetWriteDeadline(time.Now().Add(wsWriteTimeout))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
