package handlers

import (
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"
	"github.com/vigia/backend/internal/models"
	"github.com/vigia/backend/internal/repository"
	"github.com/vigia/backend/internal/rules"
)

// WordHandler serves both word lists; the sensitive routes only differ in
// the stored kind and the response key.
type WordHandler struct {
	rules *rules.Store
}

func NewWordHandler(rules *rules.Store) *WordHandler {
	return &WordHandler{rules: rules}
}

// ListForbidden returns the forbidden word list
func (h *WordHandler) ListForbidden(c *gin.Context) {
	c.JSON(http.StatusOK, h.rules.ForbiddenWords())
}

// AddForbidden appends a word to the forbidden list
func (h *WordHandler) AddForbidden(c *gin.Context) {
	h.addWord(c, models.WordForbidden, "Palavra proibida adicionada.", "palavras", h.rules.ForbiddenWords)
}

// RemoveForbidden drops a word from the forbidden list
func (h *WordHandler) RemoveForbidden(c *gin.Context) {
	h.removeWord(c, models.WordForbidden, "Palavra proibida removida.", "palavras", h.rules.ForbiddenWords)
}

// ListSensitive returns the sensitive word list
func (h *WordHandler) ListSensitive(c *gin.Context) {
	c.JSON(http.StatusOK, h.rules.SensitiveWords())
}

// AddSensitive appends a word to the sensitive list
func (h *WordHandler) AddSensitive(c *gin.Context) {
	h.addWord(c, models.WordSensitive, "Palavra sensível adicionada.", "palavrasSensiveis", h.rules.SensitiveWords)
}

// RemoveSensitive drops a word from the sensitive list
func (h *WordHandler) RemoveSensitive(c *gin.Context) {
	h.removeWord(c, models.WordSensitive, "Palavra sensível removida.", "palavrasSensiveis", h.rules.SensitiveWords)
}

func (h *WordHandler) addWord(c *gin.Context, kind, message, key string, list func() []string) {
	var req models.AddWordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		Fail(c, http.StatusBadRequest, "Palavra inválida ou já existe.")
		return
	}

	if err := h.rules.AddWord(kind, req.Palavra); err != nil {
		if err == repository.ErrDuplicate {
			Fail(c, http.StatusBadRequest, "Palavra inválida ou já existe.")
			return
		}
		Fail(c, http.StatusInternalServerError, "Erro ao salvar palavra.")
		return
	}

	OK(c, message, gin.H{key: list()})
}

func (h *WordHandler) removeWord(c *gin.Context, kind, message, key string, list func() []string) {
	word, err := url.PathUnescape(c.Param("palavra"))
	if err != nil {
		word = c.Param("palavra")
	}

	if err := h.rules.RemoveWord(kind, word); err != nil {
		if err == repository.ErrNotFound {
			Fail(c, http.StatusNotFound, "Palavra não encontrada.")
			return
		}
		Fail(c, http.StatusInternalServerError, "Erro ao remover palavra.")
		return
	}

	OK(c, message, gin.H{key: list()})
}
