package catalog

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/revendazap/backend/internal/auth"
)

// AppRequest representa o corpo de criação/edição de aplicativo.
type AppRequest struct {
	Name  string          `json:"name" binding:"required"`
	Price decimal.Decimal `json:"price" binding:"required"`
}

// AddCodesRequest representa o lote de códigos a ingerir.
type AddCodesRequest struct {
	Codes []string `json:"codes" binding:"required,min=1"`
}

// Handler contém os handlers HTTP do catálogo.
type Handler struct {
	useCase *UseCase
}

// NewHandler cria uma nova instância de Handler.
func NewHandler(useCase *UseCase) *Handler {
	return &Handler{useCase: useCase}
}

// ListApps devolve os aplicativos do vendedor.
func (h *Handler) ListApps(c *gin.Context) {
	apps, err := h.useCase.ListApps(c.Request.Context())
	if err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, apps)
}

// CreateApp cadastra um aplicativo.
func (h *Handler) CreateApp(c *gin.Context) {
	var req AppRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	app, err := h.useCase.CreateApp(c.Request.Context(), req.Name, req.Price)
	if err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, app)
}

// UpdateApp sobrescreve nome e preço de um aplicativo.
func (h *Handler) UpdateApp(c *gin.Context) {
	var req AppRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	app, err := h.useCase.UpdateApp(c.Request.Context(), c.Param("id"), req.Name, req.Price)
	if err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, app)
}

// DeleteApp remove um aplicativo.
func (h *Handler) DeleteApp(c *gin.Context) {
	if err := h.useCase.DeleteApp(c.Request.Context(), c.Param("id")); err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"result": "success"})
}

// AddCodes ingere um lote de códigos para um aplicativo e devolve o
// particionamento do lote.
func (h *Handler) AddCodes(c *gin.Context) {
	var req AddCodesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := h.useCase.AddCodes(c.Request.Context(), c.Param("id"), req.Codes)
	if err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, result)
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, auth.ErrUnauthenticated):
		return http.StatusUnauthorized
	case errors.Is(err, ErrAppNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}
