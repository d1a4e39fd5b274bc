package payment

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/revendazap/backend/internal/auth"
)

// CreatePixRequest representa a requisição de criação de cobrança PIX.
type CreatePixRequest struct {
	Amount      decimal.Decimal `json:"amount" binding:"required"`
	Description string          `json:"description" binding:"required"`
	Customer    struct {
		Name  string `json:"name" binding:"required"`
		Email string `json:"email" binding:"required,email"`
	} `json:"customer" binding:"required"`
}

// Handler contém os handlers HTTP de pagamentos.
type Handler struct {
	useCase *UseCase
}

// NewHandler cria uma nova instância de Handler.
func NewHandler(useCase *UseCase) *Handler {
	return &Handler{useCase: useCase}
}

// CreatePix cria uma cobrança PIX para o vendedor da sessão.
func (h *Handler) CreatePix(c *gin.Context) {
	var req CreatePixRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	charge, err := h.useCase.CreateCharge(c.Request.Context(), req.Amount, req.Description, req.Customer.Name, req.Customer.Email)
	if err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, charge)
}

// Webhook recebe as notificações assíncronas de status do gateway. O
// vendedor vem da URL configurada no provedor, não de sessão.
func (h *Handler) Webhook(c *gin.Context) {
	var payload WebhookPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.useCase.HandleWebhook(c.Request.Context(), c.Param("sellerID"), payload); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"result": "success"})
}

func statusFor(err error) int {
	var gatewayErr *GatewayError
	switch {
	case errors.Is(err, auth.ErrUnauthenticated):
		return http.StatusUnauthorized
	case errors.Is(err, ErrTokenNotConfigured):
		return http.StatusUnprocessableEntity
	case errors.As(err, &gatewayErr):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
