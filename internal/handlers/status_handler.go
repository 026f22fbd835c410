package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/vigia/backend/internal/gateway"
)

// StatusSource exposes the bridge connection snapshot
type StatusSource interface {
	Status() gateway.Status
	Ready() bool
}

type StatusHandler struct {
	bridge StatusSource
	gw     gateway.Gateway
}

func NewStatusHandler(bridge StatusSource, gw gateway.Gateway) *StatusHandler {
	return &StatusHandler{bridge: bridge, gw: gw}
}

// GetStatus returns the WhatsApp connection state
func (h *StatusHandler) GetStatus(c *gin.Context) {
	s := h.bridge.Status()
	c.JSON(http.StatusOK, gin.H{"status": s.Status, "ready": s.Ready})
}

// GetQRCode returns the pairing QR code while the client is disconnected
func (h *StatusHandler) GetQRCode(c *gin.Context) {
	s := h.bridge.Status()
	switch {
	case s.QR != "" && s.Status != "Conectado":
		c.JSON(http.StatusOK, gin.H{"qr": s.QR})
	case s.Status == "Conectado":
		c.JSON(http.StatusOK, gin.H{"qr": nil, "message": "WhatsApp já conectado."})
	default:
		c.JSON(http.StatusNotFound, gin.H{"qr": nil, "error": "QR Code não disponível ou WhatsApp já conectado."})
	}
}

// ListMyGroups lists the groups the bot participates in, with its admin
// status in each.
func (h *StatusHandler) ListMyGroups(c *gin.Context) {
	if !h.gw.Ready() {
		Fail(c, http.StatusServiceUnavailable, "Cliente WhatsApp não está conectado ou pronto.")
		return
	}

	groups, err := h.gw.ListGroups(c.Request.Context())
	if err != nil {
		Fail(c, http.StatusInternalServerError, "Erro ao buscar lista de grupos.")
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "grupos": groups})
}
