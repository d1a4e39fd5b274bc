package customers

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/revendazap/backend/internal/auth"
)

// Observer recebe os clientes devolvidos pelas operações de escrita, para
// manter caches derivados em sincronia sem nova consulta.
type Observer interface {
	CustomerSaved(customer *Customer)
	CustomerDeleted(sellerID, customerID string)
}

// UseCase contém a lógica de negócio de clientes.
type UseCase struct {
	repository Repository
	observer   Observer
	logger     *zap.Logger
}

// NewUseCase cria uma nova instância de UseCase.
func NewUseCase(repository Repository, observer Observer, logger *zap.Logger) *UseCase {
	return &UseCase{
		repository: repository,
		observer:   observer,
		logger:     logger,
	}
}

// Create cadastra um cliente para o vendedor da sessão.
func (uc *UseCase) Create(ctx context.Context, name, email, phone string) (*Customer, error) {
	sellerID, err := auth.SellerID(ctx)
	if err != nil {
		return nil, err
	}

	customer := NewCustomer(sellerID, name, email, phone)
	if err := uc.repository.CreateCustomer(ctx, customer); err != nil {
		return nil, fmt.Errorf("failed to create customer: %w", err)
	}

	uc.observer.CustomerSaved(customer)
	uc.logger.Info("customer created",
		zap.String("seller_id", sellerID),
		zap.String("customer_id", customer.ID))
	return customer, nil
}

// Get busca um cliente do vendedor da sessão.
func (uc *UseCase) Get(ctx context.Context, customerID string) (*Customer, error) {
	sellerID, err := auth.SellerID(ctx)
	if err != nil {
		return nil, err
	}
	return uc.repository.GetCustomer(ctx, sellerID, customerID)
}

// List devolve todos os clientes do vendedor da sessão.
func (uc *UseCase) List(ctx context.Context) ([]Customer, error) {
	sellerID, err := auth.SellerID(ctx)
	if err != nil {
		return nil, err
	}
	return uc.repository.ListCustomers(ctx, sellerID)
}

// Update sobrescreve os dados cadastrais de um cliente.
func (uc *UseCase) Update(ctx context.Context, customerID, name, email, phone string) (*Customer, error) {
	sellerID, err := auth.SellerID(ctx)
	if err != nil {
		return nil, err
	}

	customer, err := uc.repository.GetCustomer(ctx, sellerID, customerID)
	if err != nil {
		return nil, err
	}

	customer.Name = name
	customer.Email = email
	customer.Phone = phone
	if err := uc.repository.UpdateCustomer(ctx, customer); err != nil {
		return nil, fmt.Errorf("failed to update customer: %w", err)
	}
	uc.observer.CustomerSaved(customer)
	return customer, nil
}

// Delete remove um cliente do vendedor da sessão.
func (uc *UseCase) Delete(ctx context.Context, customerID string) error {
	sellerID, err := auth.SellerID(ctx)
	if err != nil {
		return err
	}

	if err := uc.repository.DeleteCustomer(ctx, sellerID, customerID); err != nil {
		return err
	}

	uc.observer.CustomerDeleted(sellerID, customerID)
	uc.logger.Info("customer deleted",
		zap.String("seller_id", sellerID),
		zap.String("customer_id", customerID))
	return nil
}
