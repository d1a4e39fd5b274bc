package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrSellerNotFound indica que o vendedor referenciado não existe.
var ErrSellerNotFound = errors.New("vendedor não encontrado")

// Repository define a interface para operações de banco de dados de vendedores.
type Repository interface {
	CreateSeller(ctx context.Context, seller *Seller) error
	GetSeller(ctx context.Context, sellerID string) (*Seller, error)
	GetSellerByEmail(ctx context.Context, email string) (*Seller, error)
	UpdateIntegrations(ctx context.Context, sellerID, whatsappSecret, whatsappAccount, mercadopagoToken string) error

	// WhatsAppCredentials e MercadoPagoToken alimentam os adaptadores de
	// notificação e pagamento sem expor o registro completo do vendedor.
	WhatsAppCredentials(ctx context.Context, sellerID string) (secret, account string, err error)
	MercadoPagoToken(ctx context.Context, sellerID string) (string, error)
}

// SellerRepository implementa Repository usando PostgreSQL.
type SellerRepository struct {
	db *pgxpool.Pool
}

// NewSellerRepository cria uma nova instância de SellerRepository.
func NewSellerRepository(db *pgxpool.Pool) Repository {
	return &SellerRepository{db: db}
}

func (r *SellerRepository) CreateSeller(ctx context.Context, seller *Seller) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO sellers (id, name, email, phone, password_hash, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, seller.ID, seller.Name, seller.Email, seller.Phone, seller.PasswordHash, seller.CreatedAt, seller.UpdatedAt)
	return err
}

func (r *SellerRepository) GetSeller(ctx context.Context, sellerID string) (*Seller, error) {
	return r.scanSeller(ctx, `
		SELECT id, name, email, phone, password_hash,
		       COALESCE(whatsapp_secret, ''), COALESCE(whatsapp_account, ''), COALESCE(mercadopago_token, ''),
		       created_at, updated_at
		FROM sellers WHERE id = $1
	`, sellerID)
}

func (r *SellerRepository) GetSellerByEmail(ctx context.Context, email string) (*Seller, error) {
	return r.scanSeller(ctx, `
		SELECT id, name, email, phone, password_hash,
		       COALESCE(whatsapp_secret, ''), COALESCE(whatsapp_account, ''), COALESCE(mercadopago_token, ''),
		       created_at, updated_at
		FROM sellers WHERE email = $1
	`, email)
}

func (r *SellerRepository) scanSeller(ctx context.Context, query string, arg any) (*Seller, error) {
	var s Seller
	err := r.db.QueryRow(ctx, query, arg).Scan(
		&s.ID, &s.Name, &s.Email, &s.Phone, &s.PasswordHash,
		&s.WhatsappSecret, &s.WhatsappAccount, &s.MercadopagoToken,
		&s.CreatedAt, &s.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrSellerNotFound
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *SellerRepository) UpdateIntegrations(ctx context.Context, sellerID, whatsappSecret, whatsappAccount, mercadopagoToken string) error {
	tag, err := r.db.Exec(ctx, `
		UPDATE sellers
		SET whatsapp_secret = $1, whatsapp_account = $2, mercadopago_token = $3, updated_at = NOW()
		WHERE id = $4
	`, whatsappSecret, whatsappAccount, mercadopagoToken, sellerID)
	if err != nil {
		return fmt.Errorf("failed to update integrations: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrSellerNotFound
	}
	return nil
}

func (r *SellerRepository) WhatsAppCredentials(ctx context.Context, sellerID string) (string, string, error) {
	var secret, account string
	err := r.db.QueryRow(ctx, `
		SELECT COALESCE(whatsapp_secret, ''), COALESCE(whatsapp_account, '')
		FROM sellers WHERE id = $1
	`, sellerID).Scan(&secret, &account)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", "", ErrSellerNotFound
	}
	if err != nil {
		return "", "", err
	}
	return secret, account, nil
}

func (r *SellerRepository) MercadoPagoToken(ctx context.Context, sellerID string) (string, error) {
	var token string
	err := r.db.QueryRow(ctx, `
		SELECT COALESCE(mercadopago_token, '') FROM sellers WHERE id = $1
	`, sellerID).Scan(&token)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", ErrSellerNotFound
	}
	if err != nil {
		return "", err
	}
	return token, nil
}
