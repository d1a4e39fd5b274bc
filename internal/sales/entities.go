package sales

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Status representa os possíveis status de uma venda.
// Transições de negócio: pending -> confirmed ou pending -> cancelled.
const (
	StatusPending   = "pending"
	StatusConfirmed = "confirmed"
	StatusCancelled = "cancelled"
)

// Status de pagamento reportados pelo gateway.
const (
	PaymentPending  = "pending"
	PaymentApproved = "approved"
	PaymentRejected = "rejected"
)

var (
	// ErrNotFound indica que a venda não existe ou pertence a outro vendedor.
	ErrNotFound = errors.New("venda não encontrada")
	// ErrAlreadyConfirmed indica tentativa de confirmar uma venda já confirmada.
	ErrAlreadyConfirmed = errors.New("venda já confirmada")
	// ErrNoItems indica uma venda sem itens.
	ErrNoItems = errors.New("venda sem itens")
	// ErrInvalidQuantity indica um item com quantidade menor que 1.
	ErrInvalidQuantity = errors.New("quantidade do item deve ser positiva")
	// ErrNoCodesToResend indica reenvio de códigos em uma venda sem códigos anexados.
	ErrNoCodesToResend = errors.New("esta venda não possui códigos para reenviar")
)

// InsufficientCodesError indica que o estoque de códigos não usados de um
// aplicativo é menor que a quantidade pedida na confirmação.
type InsufficientCodesError struct {
	AppID string
}

func (e *InsufficientCodesError) Error() string {
	return fmt.Sprintf("códigos insuficientes para o app %s", e.AppID)
}

// SaleItem representa um item de venda. Price é o preço unitário capturado
// no momento da venda e não é relido do catálogo depois. Codes fica vazio
// até a confirmação, quando recebe exatamente Quantity códigos.
type SaleItem struct {
	ID       string          `json:"-" db:"id"`
	AppID    string          `json:"appId" db:"app_id"`
	Quantity int             `json:"quantity" db:"quantity"`
	Price    decimal.Decimal `json:"price" db:"price"`
	Codes    []string        `json:"codes"`
}

// Sale representa uma venda com seus itens.
type Sale struct {
	ID            string          `json:"id" db:"id"`
	SellerID      string          `json:"userId" db:"seller_id"`
	CustomerID    string          `json:"customerId" db:"customer_id"`
	Items         []SaleItem      `json:"items"`
	TotalPrice    decimal.Decimal `json:"totalPrice" db:"total_price"`
	Date          time.Time       `json:"date" db:"date"`
	Status        string          `json:"status" db:"status"`
	PaymentID     string          `json:"paymentId,omitempty" db:"payment_id"`
	PaymentStatus string          `json:"paymentStatus,omitempty" db:"payment_status"`
}

// NewSale cria uma venda pendente com o total calculado como a soma de
// preço x quantidade dos itens.
func NewSale(sellerID, customerID string, items []SaleItem, paymentID string) (*Sale, error) {
	if len(items) == 0 {
		return nil, ErrNoItems
	}

	total := decimal.Zero
	for i := range items {
		if items[i].Quantity < 1 {
			return nil, ErrInvalidQuantity
		}
		items[i].ID = uuid.New().String()
		items[i].Codes = []string{}
		total = total.Add(items[i].Price.Mul(decimal.NewFromInt(int64(items[i].Quantity))))
	}

	sale := &Sale{
		ID:         uuid.New().String(),
		SellerID:   sellerID,
		CustomerID: customerID,
		Items:      items,
		TotalPrice: total,
		Date:       time.Now(),
		Status:     StatusPending,
		PaymentID:  paymentID,
	}
	if paymentID != "" {
		sale.PaymentStatus = PaymentPending
	}
	return sale, nil
}

// HasCodes informa se algum item da venda já possui códigos anexados.
func (s *Sale) HasCodes() bool {
	for _, item := range s.Items {
		if len(item.Codes) > 0 {
			return true
		}
	}
	return false
}
