package sales

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/revendazap/backend/internal/auth"
	"github.com/revendazap/backend/internal/catalog"
	"github.com/revendazap/backend/internal/customers"
)

// SaleItemRequest representa um item na criação de venda.
type SaleItemRequest struct {
	AppID    string          `json:"appId" binding:"required"`
	Quantity int             `json:"quantity" binding:"required,gt=0"`
	Price    decimal.Decimal `json:"price" binding:"required"`
}

// CreateSaleRequest representa a requisição para criar uma venda.
type CreateSaleRequest struct {
	CustomerID string            `json:"customerId" binding:"required"`
	Items      []SaleItemRequest `json:"items" binding:"required,min=1,dive"`
	PaymentID  string            `json:"paymentId"`
}

// UpdateSaleRequest representa a edição direta de uma venda.
type UpdateSaleRequest struct {
	CustomerID *string          `json:"customerId"`
	TotalPrice *decimal.Decimal `json:"totalPrice"`
	Status     *string          `json:"status" binding:"omitempty,oneof=pending confirmed cancelled"`
}

// Handler contém os handlers HTTP de vendas.
type Handler struct {
	useCase *UseCase
	tracer  trace.Tracer
}

// NewHandler cria uma nova instância de Handler.
func NewHandler(useCase *UseCase, tracer trace.Tracer) *Handler {
	return &Handler{
		useCase: useCase,
		tracer:  tracer,
	}
}

// List devolve as vendas do vendedor.
func (h *Handler) List(c *gin.Context) {
	sales, err := h.useCase.List(c.Request.Context())
	if err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, sales)
}

// Create registra uma venda pendente.
func (h *Handler) Create(c *gin.Context) {
	ctx, span := h.tracer.Start(c.Request.Context(), "create_sale")
	defer span.End()

	var req CreateSaleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		span.RecordError(err)
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	span.SetAttributes(
		attribute.String("customer_id", req.CustomerID),
		attribute.Int("item_count", len(req.Items)),
	)

	items := make([]NewSaleItem, 0, len(req.Items))
	for _, item := range req.Items {
		items = append(items, NewSaleItem{
			AppID:    item.AppID,
			Quantity: item.Quantity,
			Price:    item.Price,
		})
	}

	sale, err := h.useCase.Create(ctx, req.CustomerID, items, req.PaymentID)
	if err != nil {
		span.RecordError(err)
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}

	span.SetAttributes(attribute.String("sale_id", sale.ID))
	c.JSON(http.StatusCreated, sale)
}

// Confirm aloca os códigos da venda e a marca como confirmada.
func (h *Handler) Confirm(c *gin.Context) {
	ctx, span := h.tracer.Start(c.Request.Context(), "confirm_sale")
	defer span.End()

	saleID := c.Param("id")
	span.SetAttributes(attribute.String("sale_id", saleID))

	sale, err := h.useCase.Confirm(ctx, saleID)
	if err != nil {
		span.RecordError(err)
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, sale)
}

// Update sobrescreve cliente, total e/ou status de uma venda.
func (h *Handler) Update(c *gin.Context) {
	var req UpdateSaleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	sale, err := h.useCase.Update(c.Request.Context(), c.Param("id"), UpdateSaleInput{
		CustomerID: req.CustomerID,
		TotalPrice: req.TotalPrice,
		Status:     req.Status,
	})
	if err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, sale)
}

// Delete remove uma venda.
func (h *Handler) Delete(c *gin.Context) {
	if err := h.useCase.Delete(c.Request.Context(), c.Param("id")); err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"result": "success"})
}

// Resend reenvia a mensagem de códigos de uma venda confirmada.
func (h *Handler) Resend(c *gin.Context) {
	delivered, err := h.useCase.ResendOrderCodes(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"delivered": delivered})
}

func statusFor(err error) int {
	var insufficient *InsufficientCodesError
	switch {
	case errors.Is(err, auth.ErrUnauthenticated):
		return http.StatusUnauthorized
	case errors.Is(err, ErrNotFound),
		errors.Is(err, customers.ErrNotFound),
		errors.Is(err, catalog.ErrAppNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrAlreadyConfirmed):
		return http.StatusConflict
	case errors.As(err, &insufficient),
		errors.Is(err, ErrNoItems),
		errors.Is(err, ErrInvalidQuantity),
		errors.Is(err, ErrNoCodesToResend):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}
