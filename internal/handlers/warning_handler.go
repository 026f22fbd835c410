package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/vigia/backend/internal/models"
	"github.com/vigia/backend/internal/moderator"
	"github.com/vigia/backend/internal/repository"
)

type WarningHandler struct {
	warnings *repository.WarningRepository
	engine   *moderator.Engine
}

func NewWarningHandler(warnings *repository.WarningRepository, engine *moderator.Engine) *WarningHandler {
	return &WarningHandler{warnings: warnings, engine: engine}
}

// ListWarnings returns the full warning ledger
func (h *WarningHandler) ListWarnings(c *gin.Context) {
	warnings, err := h.warnings.List()
	if err != nil {
		Fail(c, http.StatusInternalServerError, "Erro ao carregar advertências.")
		return
	}
	c.JSON(http.StatusOK, warnings)
}

// ApplyWarning records a warning on the operator's behalf. It goes through
// the same pipeline as automatic warnings, including escalation.
func (h *WarningHandler) ApplyWarning(c *gin.Context) {
	var req models.ApplyWarningRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		Fail(c, http.StatusBadRequest, "Dados insuficientes para advertência.")
		return
	}

	w := req.Advertencia
	if w.UserID == "" || w.GroupID == "" || w.Message == "" {
		Fail(c, http.StatusBadRequest, "Dados insuficientes para advertência.")
		return
	}
	if w.UserName == "" {
		w.UserName = "N/A"
	}
	if w.GroupName == "" {
		w.GroupName = "N/A"
	}
	if w.Reason == "" {
		w.Reason = "Manual (Painel)"
	}

	if _, err := h.engine.RecordWarning(c.Request.Context(), moderator.WarningInput{
		UserID:    w.UserID,
		UserName:  w.UserName,
		GroupID:   w.GroupID,
		GroupName: w.GroupName,
		Message:   w.Message,
		Reason:    w.Reason,
	}); err != nil {
		Fail(c, http.StatusInternalServerError, "Erro ao aplicar advertência.")
		return
	}

	OK(c, "Advertência aplicada manualmente.", nil)
}

// DeleteWarning clears one pair's warning record
func (h *WarningHandler) DeleteWarning(c *gin.Context) {
	userID := c.Query("usuarioId")
	groupID := c.Query("grupoId")
	if userID == "" || groupID == "" {
		Fail(c, http.StatusBadRequest, "usuarioId e grupoId são obrigatórios.")
		return
	}

	if err := h.warnings.Delete(userID, groupID); err != nil {
		if err == repository.ErrNotFound {
			Fail(c, http.StatusNotFound, "Advertência não encontrada.")
			return
		}
		Fail(c, http.StatusInternalServerError, "Erro ao remover advertência.")
		return
	}

	OK(c, "Advertências removidas.", nil)
}
