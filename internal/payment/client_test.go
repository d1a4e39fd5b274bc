package payment

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestCreatePixCharge(t *testing.T) {
	var received paymentRequest
	var authHeader, idempotencyKey string

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/payments", r.URL.Path)
		authHeader = r.Header.Get("Authorization")
		idempotencyKey = r.Header.Get("X-Idempotency-Key")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&received))

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`{
			"id": 123456789,
			"status": "pending",
			"point_of_interaction": {
				"transaction_data": {"qr_code_base64": "cGl4LWNvZGU="}
			}
		}`))
	}))
	defer server.Close()

	client := NewClient(server.URL, zap.NewNop())

	charge, err := client.CreatePixCharge(context.Background(), "TEST-TOKEN",
		decimal.NewFromFloat(29.90), "Venda #1", "João", "joao@example.com")

	require.NoError(t, err)
	assert.Equal(t, "123456789", charge.PaymentID)
	assert.Equal(t, "cGl4LWNvZGU=", charge.PixCode)
	assert.Equal(t, "Bearer TEST-TOKEN", authHeader)
	assert.NotEmpty(t, idempotencyKey)
	assert.Equal(t, 29.90, received.TransactionAmount)
	assert.Equal(t, "pix", received.PaymentMethodID)
	assert.Equal(t, "joao@example.com", received.Payer.Email)
	assert.Equal(t, "João", received.Payer.FirstName)
}

func TestCreatePixChargeGatewayError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"message": "invalid access token"}`))
	}))
	defer server.Close()

	client := NewClient(server.URL, zap.NewNop())

	charge, err := client.CreatePixCharge(context.Background(), "BAD-TOKEN",
		decimal.NewFromFloat(10), "Venda #1", "João", "joao@example.com")

	assert.Nil(t, charge)
	var gatewayErr *GatewayError
	require.True(t, errors.As(err, &gatewayErr))
	assert.Equal(t, http.StatusUnauthorized, gatewayErr.StatusCode)
	assert.Equal(t, "invalid access token", gatewayErr.Message)
}
