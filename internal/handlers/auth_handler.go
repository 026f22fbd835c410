package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/vigia/backend/internal/auth"
	"github.com/vigia/backend/internal/models"
	"github.com/vigia/backend/internal/repository"
)

type AuthHandler struct {
	userRepo   *repository.UserRepository
	jwtService *auth.JWTService
}

func NewAuthHandler(userRepo *repository.UserRepository, jwtService *auth.JWTService) *AuthHandler {
	return &AuthHandler{
		userRepo:   userRepo,
		jwtService: jwtService,
	}
}

// Login authenticates a panel operator and issues a JWT
func (h *AuthHandler) Login(c *gin.Context) {
	var req models.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		Fail(c, http.StatusBadRequest, "Usuário e senha são obrigatórios.")
		return
	}

	user, err := h.userRepo.GetByUsername(req.Usuario)
	if err != nil {
		Fail(c, http.StatusUnauthorized, "Credenciais inválidas")
		return
	}

	if err := auth.CheckPassword(user.PasswordHash, req.Senha); err != nil {
		Fail(c, http.StatusUnauthorized, "Credenciais inválidas")
		return
	}

	token, err := h.jwtService.GenerateToken(user.ID, user.Username)
	if err != nil {
		Fail(c, http.StatusInternalServerError, "Falha ao gerar token.")
		return
	}

	c.JSON(http.StatusOK, models.LoginResponse{Success: true, Token: token})
}
