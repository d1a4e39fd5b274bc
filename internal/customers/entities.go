package customers

import (
	"time"

	"github.com/google/uuid"
)

// Customer representa um cliente do vendedor.
type Customer struct {
	ID        string    `json:"id" db:"id"`
	SellerID  string    `json:"userId" db:"seller_id"`
	Name      string    `json:"name" db:"name"`
	Email     string    `json:"email" db:"email"`
	Phone     string    `json:"phone" db:"phone"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// NewCustomer cria uma nova instância de Customer.
func NewCustomer(sellerID, name, email, phone string) *Customer {
	return &Customer{
		ID:        uuid.New().String(),
		SellerID:  sellerID,
		Name:      name,
		Email:     email,
		Phone:     phone,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
}
