package notification

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/revendazap/backend/internal/catalog"
	"github.com/revendazap/backend/internal/customers"
	"github.com/revendazap/backend/internal/sales"
)

func TestFormatCurrency(t *testing.T) {
	tests := []struct {
		value    float64
		expected string
	}{
		{29.9, "R$ 29,90"},
		{1234.56, "R$ 1.234,56"},
		{1234567.89, "R$ 1.234.567,89"},
		{0, "R$ 0,00"},
		{-99.5, "-R$ 99,50"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, FormatCurrency(decimal.NewFromFloat(tt.value)))
	}
}

func TestFormatDateTime(t *testing.T) {
	date := time.Date(2024, 3, 15, 18, 30, 0, 0, time.UTC)
	assert.Equal(t, "15/03/2024 18:30", FormatDateTime(date))
}

func TestOrderConfirmationMessage(t *testing.T) {
	sale := &sales.Sale{
		Date:       time.Date(2024, 3, 15, 18, 30, 0, 0, time.UTC),
		TotalPrice: decimal.NewFromFloat(74.80),
		Items: []sales.SaleItem{
			{AppID: "app-1", Quantity: 2, Price: decimal.NewFromFloat(29.90)},
			{AppID: "app-2", Quantity: 1, Price: decimal.NewFromFloat(15.00)},
		},
	}
	customer := &customers.Customer{Name: "João"}
	apps := []catalog.App{{ID: "app-1", Name: "Netflix"}}

	message := OrderConfirmationMessage(sale, customer, apps)

	assert.Contains(t, message, "Olá João!")
	assert.Contains(t, message, "15/03/2024 18:30")
	assert.Contains(t, message, "Netflix x2 - R$ 59,80")
	// Aplicativo fora do catálogo informado ganha o nome genérico.
	assert.Contains(t, message, "Aplicativo x1 - R$ 15,00")
	assert.Contains(t, message, "*Total: R$ 74,80*")
}

func TestOrderCodesMessage(t *testing.T) {
	sale := &sales.Sale{
		Items: []sales.SaleItem{
			{AppID: "app-1", Quantity: 2, Codes: []string{"NETF-0001", "NETF-0002"}},
		},
	}
	customer := &customers.Customer{Name: "Maria"}
	apps := []catalog.App{{ID: "app-1", Name: "Netflix"}}

	message := OrderCodesMessage(sale, customer, apps)

	assert.Contains(t, message, "Olá Maria!")
	assert.Contains(t, message, "Netflix x2")
	assert.Contains(t, message, "NETF-0001")
	assert.Contains(t, message, "NETF-0002")
}

func TestNormalizePhone(t *testing.T) {
	tests := []struct {
		name     string
		phone    string
		expected string
	}{
		{"celular brasileiro formatado", "(11) 99988-7766", "5511999887766"},
		{"celular com código do país", "+55 11 99988-7766", "5511999887766"},
		{"número inválido mantém só dígitos", "abc-123", "123"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, NormalizePhone(tt.phone))
		})
	}
}
