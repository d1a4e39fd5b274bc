package auth

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// ErrInvalidCredentials indica email ou senha incorretos no login.
var ErrInvalidCredentials = errors.New("email ou senha inválidos")

// UseCase contém a lógica de negócio de contas de vendedor.
type UseCase struct {
	repository Repository
	logger     *zap.Logger
}

// NewUseCase cria uma nova instância de UseCase.
func NewUseCase(repository Repository, logger *zap.Logger) *UseCase {
	return &UseCase{
		repository: repository,
		logger:     logger,
	}
}

// Register cria a conta do vendedor e devolve um token de sessão.
func (uc *UseCase) Register(ctx context.Context, name, email, phone, password string) (*Seller, string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, "", fmt.Errorf("failed to hash password: %w", err)
	}

	seller := NewSeller(name, email, phone, string(hash))
	if err := uc.repository.CreateSeller(ctx, seller); err != nil {
		return nil, "", fmt.Errorf("failed to create seller: %w", err)
	}

	token, err := JwtGenerate(seller.ID)
	if err != nil {
		return nil, "", fmt.Errorf("failed to generate token: %w", err)
	}

	uc.logger.Info("seller registered", zap.String("seller_id", seller.ID))
	return seller, token, nil
}

// Login valida as credenciais e devolve um token de sessão.
func (uc *UseCase) Login(ctx context.Context, email, password string) (*Seller, string, error) {
	seller, err := uc.repository.GetSellerByEmail(ctx, email)
	if errors.Is(err, ErrSellerNotFound) {
		return nil, "", ErrInvalidCredentials
	}
	if err != nil {
		return nil, "", fmt.Errorf("failed to get seller: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(seller.PasswordHash), []byte(password)); err != nil {
		return nil, "", ErrInvalidCredentials
	}

	token, err := JwtGenerate(seller.ID)
	if err != nil {
		return nil, "", fmt.Errorf("failed to generate token: %w", err)
	}

	return seller, token, nil
}

// Me devolve o vendedor da sessão atual.
func (uc *UseCase) Me(ctx context.Context) (*Seller, error) {
	sellerID, err := SellerID(ctx)
	if err != nil {
		return nil, err
	}
	return uc.repository.GetSeller(ctx, sellerID)
}

// UpdateIntegrations grava as credenciais de WhatsApp e Mercado Pago do vendedor.
func (uc *UseCase) UpdateIntegrations(ctx context.Context, whatsappSecret, whatsappAccount, mercadopagoToken string) error {
	sellerID, err := SellerID(ctx)
	if err != nil {
		return err
	}
	return uc.repository.UpdateIntegrations(ctx, sellerID, whatsappSecret, whatsappAccount, mercadopagoToken)
}
