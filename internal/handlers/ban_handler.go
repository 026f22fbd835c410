package handlers

import (
	"fmt"
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"
	"github.com/vigia/backend/internal/models"
	"github.com/vigia/backend/internal/moderator"
	"github.com/vigia/backend/internal/repository"
	"github.com/vigia/backend/internal/rules"
)

type BanHandler struct {
	rules  *rules.Store
	engine *moderator.Engine
}

func NewBanHandler(rules *rules.Store, engine *moderator.Engine) *BanHandler {
	return &BanHandler{rules: rules, engine: engine}
}

// ListBanned returns the banned user ids
func (h *BanHandler) ListBanned(c *gin.Context) {
	c.JSON(http.StatusOK, h.rules.BannedUsers())
}

// BanUser adds a user to the ban set. When a group id is supplied the
// engine also tries to remove the user right away; that removal is
// best-effort and never fails the ban.
func (h *BanHandler) BanUser(c *gin.Context) {
	var req models.BanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		Fail(c, http.StatusBadRequest, "ID do usuário é obrigatório.")
		return
	}

	if err := h.rules.Ban(req.UserID); err != nil {
		Fail(c, http.StatusInternalServerError, "Erro ao salvar banimento.")
		return
	}

	if req.GroupID != "" {
		h.engine.RemoveBanned(c.Request.Context(), req.UserID, req.GroupID)
	}

	OK(c, fmt.Sprintf("Usuário %s banido.", req.UserID), nil)
}

// UnbanUser removes a user from the ban set
func (h *BanHandler) UnbanUser(c *gin.Context) {
	userID, err := url.PathUnescape(c.Param("usuarioId"))
	if err != nil {
		userID = c.Param("usuarioId")
	}

	if err := h.rules.Unban(userID); err != nil {
		if err == repository.ErrNotFound {
			Fail(c, http.StatusNotFound, "Usuário não encontrado na lista de banidos.")
			return
		}
		Fail(c, http.StatusInternalServerError, "Erro ao remover banimento.")
		return
	}

	OK(c, fmt.Sprintf("Banimento do usuário %s removido.", userID), nil)
}
