package customers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/revendazap/backend/internal/auth"
)

// CustomerRequest representa o corpo de criação/edição de cliente.
type CustomerRequest struct {
	Name  string `json:"name" binding:"required"`
	Email string `json:"email" binding:"required,email"`
	Phone string `json:"phone" binding:"required"`
}

// Handler contém os handlers HTTP de clientes.
type Handler struct {
	useCase *UseCase
}

// NewHandler cria uma nova instância de Handler.
func NewHandler(useCase *UseCase) *Handler {
	return &Handler{useCase: useCase}
}

// List devolve os clientes do vendedor.
func (h *Handler) List(c *gin.Context) {
	customers, err := h.useCase.List(c.Request.Context())
	if err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, customers)
}

// Create cadastra um cliente.
func (h *Handler) Create(c *gin.Context) {
	var req CustomerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	customer, err := h.useCase.Create(c.Request.Context(), req.Name, req.Email, req.Phone)
	if err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, customer)
}

// Update sobrescreve os dados de um cliente.
func (h *Handler) Update(c *gin.Context) {
	var req CustomerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	customer, err := h.useCase.Update(c.Request.Context(), c.Param("id"), req.Name, req.Email, req.Phone)
	if err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, customer)
}

// Delete remove um cliente.
func (h *Handler) Delete(c *gin.Context) {
	if err := h.useCase.Delete(c.Request.Context(), c.Param("id")); err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"result": "success"})
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, auth.ErrUnauthenticated):
		return http.StatusUnauthorized
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}
