package payment

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/revendazap/backend/internal/auth"
	"github.com/revendazap/backend/internal/sales"
)

// ErrTokenNotConfigured indica que o vendedor não cadastrou o token do
// Mercado Pago.
var ErrTokenNotConfigured = errors.New("token do Mercado Pago não configurado")

// TokenSource fornece o token de acesso do gateway por vendedor.
type TokenSource interface {
	MercadoPagoToken(ctx context.Context, sellerID string) (string, error)
}

// SaleUpdater aplica o status reportado pelo gateway à venda correspondente.
type SaleUpdater interface {
	UpdatePaymentStatus(ctx context.Context, sellerID, paymentID, paymentStatus, saleStatus string) error
}

// WebhookPayload é a notificação assíncrona de status enviada pelo gateway.
type WebhookPayload struct {
	Action string `json:"action"`
	Data   struct {
		ID     json.Number `json:"id"`
		Status string      `json:"status"`
	} `json:"data"`
}

// UseCase contém a lógica de negócio de pagamentos.
type UseCase struct {
	client *Client
	tokens TokenSource
	sales  SaleUpdater
	logger *zap.Logger
}

// NewUseCase cria uma nova instância de UseCase.
func NewUseCase(client *Client, tokens TokenSource, saleUpdater SaleUpdater, logger *zap.Logger) *UseCase {
	return &UseCase{
		client: client,
		tokens: tokens,
		sales:  saleUpdater,
		logger: logger,
	}
}

// CreateCharge cria uma cobrança PIX para o vendedor da sessão. Falhas do
// gateway se propagam ao chamador.
func (uc *UseCase) CreateCharge(ctx context.Context, amount decimal.Decimal, description, payerName, payerEmail string) (*PixCharge, error) {
	sellerID, err := auth.SellerID(ctx)
	if err != nil {
		return nil, err
	}

	token, err := uc.tokens.MercadoPagoToken(ctx, sellerID)
	if err != nil {
		return nil, fmt.Errorf("failed to get gateway token: %w", err)
	}
	if token == "" {
		return nil, ErrTokenNotConfigured
	}

	uc.logger.Info("creating pix payment",
		zap.String("seller_id", sellerID),
		zap.String("amount", amount.String()),
		zap.String("payer_email", payerEmail))

	return uc.client.CreatePixCharge(ctx, token, amount, description, payerName, payerEmail)
}

// HandleWebhook processa a notificação de status do gateway: approved marca
// a venda como confirmada, qualquer outro status a mantém pendente. Payloads
// inválidos e pagamentos desconhecidos são logados e ignorados para que o
// provedor não fique reentregando a notificação.
func (uc *UseCase) HandleWebhook(ctx context.Context, sellerID string, payload WebhookPayload) error {
	paymentID := payload.Data.ID.String()
	status := ""
	if payload.Action == "payment.updated" {
		status = payload.Data.Status
	}

	if paymentID == "" || status == "" {
		uc.logger.Warn("invalid webhook data",
			zap.String("seller_id", sellerID),
			zap.String("action", payload.Action))
		return nil
	}

	saleStatus := sales.StatusPending
	if status == sales.PaymentApproved {
		saleStatus = sales.StatusConfirmed
	}

	err := uc.sales.UpdatePaymentStatus(ctx, sellerID, paymentID, status, saleStatus)
	if errors.Is(err, sales.ErrNotFound) {
		uc.logger.Warn("webhook for unknown payment",
			zap.String("seller_id", sellerID),
			zap.String("payment_id", paymentID))
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to update payment status: %w", err)
	}

	uc.logger.Info("payment status updated",
		zap.String("seller_id", sellerID),
		zap.String("payment_id", paymentID),
		zap.String("status", status))
	return nil
}
