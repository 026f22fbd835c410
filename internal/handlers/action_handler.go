package handlers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/vigia/backend/internal/gateway"
	"github.com/vigia/backend/internal/models"
	"github.com/vigia/backend/internal/moderator"
)

// ActionHandler exposes the manual moderation actions of the panel
type ActionHandler struct {
	engine *moderator.Engine
}

func NewActionHandler(engine *moderator.Engine) *ActionHandler {
	return &ActionHandler{engine: engine}
}

// MuteUser asks the group admins to mute a user
func (h *ActionHandler) MuteUser(c *gin.Context) {
	var req models.TargetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		Fail(c, http.StatusBadRequest, "Dados insuficientes ou cliente WhatsApp não pronto.")
		return
	}

	if err := h.engine.RequestMute(c.Request.Context(), req.UserID, req.GroupID); err != nil {
		if err == gateway.ErrNotReady {
			Fail(c, http.StatusBadRequest, "Dados insuficientes ou cliente WhatsApp não pronto.")
			return
		}
		Fail(c, http.StatusInternalServerError, "Erro ao processar solicitação de silenciamento.")
		return
	}

	OK(c, fmt.Sprintf("Notificação para silenciar %s enviada aos admins do grupo.", req.UserID), nil)
}

// KickUser removes a user from a group through the bot
func (h *ActionHandler) KickUser(c *gin.Context) {
	var req models.TargetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		Fail(c, http.StatusBadRequest, "Dados insuficientes ou cliente WhatsApp não pronto.")
		return
	}

	if err := h.engine.KickUser(c.Request.Context(), req.UserID, req.GroupID); err != nil {
		switch err {
		case gateway.ErrNotReady:
			Fail(c, http.StatusBadRequest, "Dados insuficientes ou cliente WhatsApp não pronto.")
		case moderator.ErrNoPermission:
			Fail(c, http.StatusForbidden, "Bot não é admin no grupo. Notificando admins.")
		default:
			Fail(c, http.StatusInternalServerError, "Erro ao processar expulsão.")
		}
		return
	}

	OK(c, fmt.Sprintf("Usuário %s expulso do grupo.", req.UserID), nil)
}
