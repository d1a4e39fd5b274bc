package notification

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/revendazap/backend/internal/catalog"
	"github.com/revendazap/backend/internal/customers"
	"github.com/revendazap/backend/internal/sales"
)

// FormatCurrency formata um valor monetário no padrão brasileiro: R$ 1.234,56.
func FormatCurrency(value decimal.Decimal) string {
	fixed := value.StringFixed(2)

	negative := strings.HasPrefix(fixed, "-")
	fixed = strings.TrimPrefix(fixed, "-")

	parts := strings.SplitN(fixed, ".", 2)
	integer, cents := parts[0], parts[1]

	var grouped []string
	for len(integer) > 3 {
		grouped = append([]string{integer[len(integer)-3:]}, grouped...)
		integer = integer[:len(integer)-3]
	}
	grouped = append([]string{integer}, grouped...)

	sign := ""
	if negative {
		sign = "-"
	}
	return fmt.Sprintf("%sR$ %s,%s", sign, strings.Join(grouped, "."), cents)
}

// FormatDateTime formata data e hora no padrão brasileiro.
func FormatDateTime(t time.Time) string {
	return t.Format("02/01/2006 15:04")
}

func appName(apps []catalog.App, appID string) string {
	for _, app := range apps {
		if app.ID == appID {
			return app.Name
		}
	}
	return "Aplicativo"
}

// OrderConfirmationMessage monta a mensagem de confirmação do pedido enviada
// na criação da venda.
func OrderConfirmationMessage(sale *sales.Sale, customer *customers.Customer, apps []catalog.App) string {
	lines := make([]string, 0, len(sale.Items))
	for _, item := range sale.Items {
		subtotal := item.Price.Mul(decimal.NewFromInt(int64(item.Quantity)))
		lines = append(lines, fmt.Sprintf("%s x%d - %s", appName(apps, item.AppID), item.Quantity, FormatCurrency(subtotal)))
	}

	return fmt.Sprintf(`Olá %s! 🎉

Seu pedido foi confirmado com sucesso!

*Detalhes do Pedido:*
Data: %s
%s

*Total: %s*

Os códigos serão enviados em breve.

Agradecemos a preferência! 🙏`,
		customer.Name,
		FormatDateTime(sale.Date),
		strings.Join(lines, "\n"),
		FormatCurrency(sale.TotalPrice))
}

// OrderCodesMessage monta a mensagem de entrega de códigos, agrupados por
// aplicativo, enviada após a confirmação da venda.
func OrderCodesMessage(sale *sales.Sale, customer *customers.Customer, apps []catalog.App) string {
	blocks := make([]string, 0, len(sale.Items))
	for _, item := range sale.Items {
		block := fmt.Sprintf("%s x%d", appName(apps, item.AppID), item.Quantity)
		if len(item.Codes) > 0 {
			block += "\nCódigos:\n" + strings.Join(item.Codes, "\n")
		}
		blocks = append(blocks, block)
	}

	return fmt.Sprintf(`Olá %s! 🎉

Aqui estão os códigos do seu pedido:

%s

Aproveite! 🎮

Em caso de dúvidas, estamos à disposição.
Obrigado pela preferência! 🙏`,
		customer.Name,
		strings.Join(blocks, "\n\n"))
}
