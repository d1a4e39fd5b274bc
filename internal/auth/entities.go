package auth

import (
	"time"

	"github.com/google/uuid"
)

// Seller representa a conta do revendedor dona de todos os registros.
type Seller struct {
	ID               string    `json:"id" db:"id"`
	Name             string    `json:"name" db:"name"`
	Email            string    `json:"email" db:"email"`
	Phone            string    `json:"phone" db:"phone"`
	PasswordHash     string    `json:"-" db:"password_hash"`
	WhatsappSecret   string    `json:"whatsappSecret,omitempty" db:"whatsapp_secret"`
	WhatsappAccount  string    `json:"whatsappAccount,omitempty" db:"whatsapp_account"`
	MercadopagoToken string    `json:"mercadopagoToken,omitempty" db:"mercadopago_token"`
	CreatedAt        time.Time `json:"created_at" db:"created_at"`
	UpdatedAt        time.Time `json:"updated_at" db:"updated_at"`
}

// NewSeller cria uma nova conta de vendedor.
func NewSeller(name, email, phone, passwordHash string) *Seller {
	return &Seller{
		ID:           uuid.New().String(),
		Name:         name,
		Email:        email,
		Phone:        phone,
		PasswordHash: passwordHash,
		CreatedAt:    time.Now(),
		UpdatedAt:    time.Now(),
	}
}
