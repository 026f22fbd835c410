package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/vigia/backend/internal/models"
	"github.com/vigia/backend/internal/rules"
)

type ConfigHandler struct {
	rules *rules.Store
}

func NewConfigHandler(rules *rules.Store) *ConfigHandler {
	return &ConfigHandler{rules: rules}
}

// GetConfig returns the moderation settings
func (h *ConfigHandler) GetConfig(c *gin.Context) {
	c.JSON(http.StatusOK, h.rules.Settings())
}

// UpdateConfig replaces the moderation settings
func (h *ConfigHandler) UpdateConfig(c *gin.Context) {
	var req models.UpdateSettingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		Fail(c, http.StatusBadRequest, "Formato de configuração inválido.")
		return
	}

	settings := models.Settings{Limite: *req.Limite, Acao: *req.Acao}
	if err := h.rules.UpdateSettings(settings); err != nil {
		Fail(c, http.StatusBadRequest, "Formato de configuração inválido.")
		return
	}

	OK(c, "Configurações salvas.", gin.H{"configuracoes": h.rules.Settings()})
}
