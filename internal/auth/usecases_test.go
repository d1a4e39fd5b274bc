package auth

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// MockRepository é um mock do Repository.
type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) CreateSeller(ctx context.Context, seller *Seller) error {
	args := m.Called(ctx, seller)
	return args.Error(0)
}

func (m *MockRepository) GetSeller(ctx context.Context, sellerID string) (*Seller, error) {
	args := m.Called(ctx, sellerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Seller), args.Error(1)
}

func (m *MockRepository) GetSellerByEmail(ctx context.Context, email string) (*Seller, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Seller), args.Error(1)
}

func (m *MockRepository) UpdateIntegrations(ctx context.Context, sellerID, whatsappSecret, whatsappAccount, mercadopagoToken string) error {
	args := m.Called(ctx, sellerID, whatsappSecret, whatsappAccount, mercadopagoToken)
	return args.Error(0)
}

func (m *MockRepository) WhatsAppCredentials(ctx context.Context, sellerID string) (string, string, error) {
	args := m.Called(ctx, sellerID)
	return args.String(0), args.String(1), args.Error(2)
}

func (m *MockRepository) MercadoPagoToken(ctx context.Context, sellerID string) (string, error) {
	args := m.Called(ctx, sellerID)
	return args.String(0), args.Error(1)
}

func TestRegister(t *testing.T) {
	repository := new(MockRepository)
	uc := NewUseCase(repository, zap.NewNop())
	ctx := context.Background()

	repository.On("CreateSeller", ctx, mock.AnythingOfType("*auth.Seller")).Return(nil)

	seller, token, err := uc.Register(ctx, "Maria", "maria@example.com", "11999887766", "s3nh4forte")

	require.NoError(t, err)
	assert.NotEmpty(t, seller.ID)
	assert.NotEmpty(t, token)
	// A senha nunca é armazenada em claro.
	assert.NotEqual(t, "s3nh4forte", seller.PasswordHash)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(seller.PasswordHash), []byte("s3nh4forte")))
	repository.AssertExpectations(t)
}

func TestLogin(t *testing.T) {
	repository := new(MockRepository)
	uc := NewUseCase(repository, zap.NewNop())
	ctx := context.Background()

	hash, err := bcrypt.GenerateFromPassword([]byte("s3nh4forte"), bcrypt.MinCost)
	require.NoError(t, err)
	seller := &Seller{ID: "seller-1", Email: "maria@example.com", PasswordHash: string(hash)}
	repository.On("GetSellerByEmail", ctx, "maria@example.com").Return(seller, nil)

	got, token, err := uc.Login(ctx, "maria@example.com", "s3nh4forte")

	require.NoError(t, err)
	assert.Equal(t, "seller-1", got.ID)
	assert.NotEmpty(t, token)
}

func TestLoginWrongPassword(t *testing.T) {
	repository := new(MockRepository)
	uc := NewUseCase(repository, zap.NewNop())
	ctx := context.Background()

	hash, _ := bcrypt.GenerateFromPassword([]byte("s3nh4forte"), bcrypt.MinCost)
	seller := &Seller{ID: "seller-1", PasswordHash: string(hash)}
	repository.On("GetSellerByEmail", ctx, "maria@example.com").Return(seller, nil)

	_, _, err := uc.Login(ctx, "maria@example.com", "errada")

	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestLoginUnknownEmail(t *testing.T) {
	repository := new(MockRepository)
	uc := NewUseCase(repository, zap.NewNop())
	ctx := context.Background()

	repository.On("GetSellerByEmail", ctx, "x@example.com").Return(nil, ErrSellerNotFound)

	_, _, err := uc.Login(ctx, "x@example.com", "qualquer")

	// Email desconhecido e senha errada são indistinguíveis para o chamador.
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestUpdateIntegrations(t *testing.T) {
	repository := new(MockRepository)
	uc := NewUseCase(repository, zap.NewNop())
	ctx := WithSeller(context.Background(), "seller-1")

	repository.On("UpdateIntegrations", ctx, "seller-1", "s3cret", "acc-1", "mp-token").Return(nil)

	err := uc.UpdateIntegrations(ctx, "s3cret", "acc-1", "mp-token")

	require.NoError(t, err)
	repository.AssertExpectations(t)
}
