package notification

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"

	"github.com/go-resty/resty/v2"
	"github.com/ttacon/libphonenumber"
	"go.uber.org/zap"

	"github.com/revendazap/backend/internal/catalog"
	"github.com/revendazap/backend/internal/customers"
	"github.com/revendazap/backend/internal/sales"
)

// defaultRegion é a região usada para interpretar números sem código de país.
const defaultRegion = "BR"

var nonDigits = regexp.MustCompile(`\D`)

// CredentialsSource fornece as credenciais de WhatsApp do vendedor.
type CredentialsSource interface {
	WhatsAppCredentials(ctx context.Context, sellerID string) (secret, account string, err error)
}

// WhatsAppClient envia mensagens de texto pela API de WhatsApp do provedor.
// Todos os envios são melhor esforço: falhas são logadas e o retorno apenas
// informa se a mensagem foi aceita.
type WhatsAppClient struct {
	http        *resty.Client
	credentials CredentialsSource
	logger      *zap.Logger
}

// NewWhatsAppClient cria uma nova instância de WhatsAppClient.
func NewWhatsAppClient(apiURL string, credentials CredentialsSource, logger *zap.Logger) *WhatsAppClient {
	client := resty.New().SetBaseURL(apiURL)
	return &WhatsAppClient{
		http:        client,
		credentials: credentials,
		logger:      logger,
	}
}

// sendResponse é o corpo devolvido pela API de envio.
type sendResponse struct {
	Success bool `json:"success"`
}

// SendText envia uma mensagem de texto para o telefone informado, usando as
// credenciais do vendedor. O número é normalizado para dígitos antes do envio.
func (c *WhatsAppClient) SendText(ctx context.Context, sellerID, phone, message string) bool {
	secret, account, err := c.credentials.WhatsAppCredentials(ctx, sellerID)
	if err != nil {
		c.logger.Warn("whatsapp credentials lookup failed",
			zap.String("seller_id", sellerID), zap.Error(err))
		return false
	}
	if secret == "" || account == "" {
		c.logger.Warn("whatsapp config missing", zap.String("seller_id", sellerID))
		return false
	}

	resp, err := c.http.R().
		SetContext(ctx).
		SetFormData(map[string]string{
			"secret":    secret,
			"account":   account,
			"priority":  "1",
			"recipient": NormalizePhone(phone),
			"type":      "text",
			"message":   message,
		}).
		Post("")
	if err != nil {
		c.logger.Warn("whatsapp send failed", zap.String("seller_id", sellerID), zap.Error(err))
		return false
	}

	// Corpo que não parseia nunca conta como entregue, mesmo com status 2xx.
	var result sendResponse
	if err := json.Unmarshal(resp.Body(), &result); err != nil {
		c.logger.Warn("failed to parse whatsapp response",
			zap.Int("status", resp.StatusCode()), zap.Error(err))
		return false
	}

	c.logger.Info("whatsapp message sent",
		zap.String("seller_id", sellerID),
		zap.Int("status", resp.StatusCode()),
		zap.Bool("success", result.Success))

	return resp.IsSuccess() || result.Success
}

// SendOrderConfirmation envia a mensagem de confirmação do pedido.
func (c *WhatsAppClient) SendOrderConfirmation(ctx context.Context, sale *sales.Sale, customer *customers.Customer, apps []catalog.App) bool {
	return c.SendText(ctx, sale.SellerID, customer.Phone, OrderConfirmationMessage(sale, customer, apps))
}

// SendOrderCodes envia a mensagem com os códigos alocados do pedido.
func (c *WhatsAppClient) SendOrderCodes(ctx context.Context, sale *sales.Sale, customer *customers.Customer, apps []catalog.App) bool {
	return c.SendText(ctx, sale.SellerID, customer.Phone, OrderCodesMessage(sale, customer, apps))
}

// NormalizePhone reduz o número a dígitos. Números reconhecidos pela região
// padrão ganham o código do país; os demais apenas perdem a formatação.
func NormalizePhone(phone string) string {
	parsed, err := libphonenumber.Parse(phone, defaultRegion)
	if err == nil && libphonenumber.IsValidNumber(parsed) {
		return fmt.Sprintf("%d%d", parsed.GetCountryCode(), parsed.GetNationalNumber())
	}
	return nonDigits.ReplaceAllString(phone, "")
}
