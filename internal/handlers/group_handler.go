package handlers

import (
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"
	"github.com/vigia/backend/internal/models"
	"github.com/vigia/backend/internal/repository"
	"github.com/vigia/backend/internal/rules"
)

type GroupHandler struct {
	rules *rules.Store
}

func NewGroupHandler(rules *rules.Store) *GroupHandler {
	return &GroupHandler{rules: rules}
}

// ListGroups returns the authorized group references
func (h *GroupHandler) ListGroups(c *gin.Context) {
	c.JSON(http.StatusOK, h.rules.AuthorizedGroups())
}

// AddGroup authorizes a group by id or name
func (h *GroupHandler) AddGroup(c *gin.Context) {
	var req models.AddGroupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		Fail(c, http.StatusBadRequest, "Nome/ID do grupo é obrigatório.")
		return
	}

	if err := h.rules.AddGroup(req.Grupo); err != nil {
		if err == repository.ErrDuplicate {
			Fail(c, http.StatusBadRequest, "Grupo já autorizado.")
			return
		}
		Fail(c, http.StatusInternalServerError, "Erro ao salvar grupo.")
		return
	}

	OK(c, "Grupo adicionado.", gin.H{"grupos": h.rules.AuthorizedGroups()})
}

// RemoveGroup revokes a group's authorization
func (h *GroupHandler) RemoveGroup(c *gin.Context) {
	groupRef, err := url.PathUnescape(c.Param("grupoId"))
	if err != nil {
		groupRef = c.Param("grupoId")
	}

	if err := h.rules.RemoveGroup(groupRef); err != nil {
		if err == repository.ErrNotFound {
			Fail(c, http.StatusNotFound, "Grupo não encontrado.")
			return
		}
		Fail(c, http.StatusInternalServerError, "Erro ao remover grupo.")
		return
	}

	OK(c, "Grupo removido.", gin.H{"grupos": h.rules.AuthorizedGroups()})
}
