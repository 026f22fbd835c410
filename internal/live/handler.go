package live

import (
	"log"
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/vigia/backend/internal/auth"
)

// Handler upgrades dashboard feed connections
type Handler struct {
	hub            *Hub
	jwtService     *auth.JWTService
	allowedOrigins []string
}

func NewHandler(hub *Hub, jwtService *auth.JWTService, allowedOrigins []string) *Handler {
	return &Handler{
		hub:            hub,
		jwtService:     jwtService,
		allowedOrigins: allowedOrigins,
	}
}

// HandleFeed authenticates and upgrades a feed subscriber. Browsers
// cannot set headers on WebSocket dials, so the token travels in the
// query string.
func (h *Handler) HandleFeed(c *gin.Context) {
	token := c.Query("token")
	if token == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "message": "Token não fornecido."})
		return
	}

	claims, err := h.jwtService.ValidateToken(token)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "message": "Token inválido ou expirado."})
		return
	}

	upgrader := websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     h.checkOrigin,
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Printf("[FEED] Upgrade failed: %v", err)
		return
	}

	client := NewClient(h.hub, conn, claims.Username)
	h.hub.register <- client

	go client.WritePump()
	go client.ReadPump()
}

func (h *Handler) checkOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}

	u, err := url.Parse(origin)
	if err != nil {
		return false
	}

	for _, allowed := range h.allowedOrigins {
		if allowed == "*" || allowed == origin {
			return true
		}
		if au, err := url.Parse(allowed); err == nil && au.Host == u.Host {
			return true
		}
	}
	return false
}
