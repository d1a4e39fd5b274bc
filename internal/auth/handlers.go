package auth

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
)

// RegisterRequest representa a requisição de cadastro de vendedor.
type RegisterRequest struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Phone    string `json:"phone" binding:"required"`
	Password string `json:"password" binding:"required,min=6"`
}

// LoginRequest representa a requisição de login.
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// IntegrationsRequest representa a atualização das credenciais de integração.
type IntegrationsRequest struct {
	WhatsappSecret   string `json:"whatsappSecret"`
	WhatsappAccount  string `json:"whatsappAccount"`
	MercadopagoToken string `json:"mercadopagoToken"`
}

// Handler contém os handlers HTTP de autenticação.
type Handler struct {
	useCase *UseCase
}

// NewHandler cria uma nova instância de Handler.
func NewHandler(useCase *UseCase) *Handler {
	return &Handler{useCase: useCase}
}

// Register cadastra um novo vendedor.
func (h *Handler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	seller, token, err := h.useCase.Register(c.Request.Context(), req.Name, req.Email, req.Phone, req.Password)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"seller": seller, "token": token})
}

// Login autentica um vendedor.
func (h *Handler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	seller, token, err := h.useCase.Login(c.Request.Context(), req.Email, req.Password)
	if errors.Is(err, ErrInvalidCredentials) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"seller": seller, "token": token})
}

// Me devolve o vendedor da sessão atual.
func (h *Handler) Me(c *gin.Context) {
	seller, err := h.useCase.Me(c.Request.Context())
	if err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, seller)
}

// UpdateIntegrations grava as credenciais de integração do vendedor.
func (h *Handler) UpdateIntegrations(c *gin.Context) {
	var req IntegrationsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	err := h.useCase.UpdateIntegrations(c.Request.Context(), req.WhatsappSecret, req.WhatsappAccount, req.MercadopagoToken)
	if err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"result": "success"})
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, ErrUnauthenticated):
		return http.StatusUnauthorized
	case errors.Is(err, ErrSellerNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}
