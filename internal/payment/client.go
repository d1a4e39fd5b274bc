package payment

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/go-resty/resty/v2"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// PixCharge é o resultado da criação de uma cobrança PIX: o código escaneável
// e o identificador do pagamento no provedor.
type PixCharge struct {
	PixCode   string `json:"pixCode"`
	PaymentID string `json:"paymentId"`
}

// GatewayError indica resposta de erro do gateway de pagamento. Falhas de
// pagamento sempre se propagam ao chamador: sem cobrança criada, a venda não
// pode ser apresentada como paga.
type GatewayError struct {
	StatusCode int
	Message    string
}

func (e *GatewayError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("erro ao gerar pagamento PIX (status %d)", e.StatusCode)
}

// Client chama a API de pagamentos do Mercado Pago.
type Client struct {
	http   *resty.Client
	logger *zap.Logger
}

// NewClient cria uma nova instância de Client.
func NewClient(apiURL string, logger *zap.Logger) *Client {
	return &Client{
		http:   resty.New().SetBaseURL(apiURL),
		logger: logger,
	}
}

type paymentRequest struct {
	TransactionAmount float64 `json:"transaction_amount"`
	Description       string  `json:"description"`
	PaymentMethodID   string  `json:"payment_method_id"`
	Payer             payer   `json:"payer"`
}

type payer struct {
	Email     string `json:"email"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

type paymentResponse struct {
	ID                 json.Number `json:"id"`
	Status             string      `json:"status"`
	Message            string      `json:"message"`
	PointOfInteraction struct {
		TransactionData struct {
			QRCodeBase64 string `json:"qr_code_base64"`
		} `json:"transaction_data"`
	} `json:"point_of_interaction"`
}

// CreatePixCharge cria uma cobrança PIX no valor informado e devolve o
// código escaneável e o id do pagamento no provedor.
func (c *Client) CreatePixCharge(ctx context.Context, accessToken string, amount decimal.Decimal, description, payerName, payerEmail string) (*PixCharge, error) {
	var result paymentResponse

	resp, err := c.http.R().
		SetContext(ctx).
		SetAuthToken(accessToken).
		SetHeader("X-Idempotency-Key", uuid.New().String()).
		SetBody(paymentRequest{
			TransactionAmount: amount.InexactFloat64(),
			Description:       description,
			PaymentMethodID:   "pix",
			Payer: payer{
				Email:     payerEmail,
				FirstName: payerName,
			},
		}).
		SetResult(&result).
		SetError(&result).
		Post("/v1/payments")
	if err != nil {
		return nil, fmt.Errorf("failed to call payment gateway: %w", err)
	}

	if !resp.IsSuccess() {
		c.logger.Error("mercado pago payment error",
			zap.Int("status", resp.StatusCode()),
			zap.String("message", result.Message))
		return nil, &GatewayError{StatusCode: resp.StatusCode(), Message: result.Message}
	}

	charge := &PixCharge{
		PixCode:   result.PointOfInteraction.TransactionData.QRCodeBase64,
		PaymentID: result.ID.String(),
	}

	c.logger.Info("pix payment created",
		zap.String("payment_id", charge.PaymentID),
		zap.String("status", result.Status))

	return charge, nil
}
