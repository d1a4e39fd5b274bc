package sales

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"

	"github.com/revendazap/backend/internal/auth"
	"github.com/revendazap/backend/internal/catalog"
	"github.com/revendazap/backend/internal/customers"
)

// notifyTimeout limita o tempo das notificações disparadas em segundo plano.
const notifyTimeout = 15 * time.Second

// CustomerGetter resolve o cliente referenciado por uma venda.
type CustomerGetter interface {
	GetCustomer(ctx context.Context, sellerID, customerID string) (*customers.Customer, error)
}

// AppSource resolve aplicativos do catálogo do vendedor: posse dos itens na
// criação da venda e nomes para as mensagens ao cliente.
type AppSource interface {
	GetApp(ctx context.Context, sellerID, appID string) (*catalog.App, error)
	ListApps(ctx context.Context, sellerID string) ([]catalog.App, error)
}

// Notifier envia as mensagens de confirmação e de entrega de códigos.
// Os envios são melhor esforço: o retorno indica apenas se a mensagem foi
// aceita pelo canal.
type Notifier interface {
	SendOrderConfirmation(ctx context.Context, sale *Sale, customer *customers.Customer, apps []catalog.App) bool
	SendOrderCodes(ctx context.Context, sale *Sale, customer *customers.Customer, apps []catalog.App) bool
}

// Observer recebe as vendas devolvidas pelas operações de escrita, para
// manter caches derivados em sincronia sem nova consulta.
type Observer interface {
	SaleSaved(sale *Sale)
	SaleConfirmed(sale *Sale)
	SaleDeleted(sellerID, saleID string)
}

// NewSaleItem representa um item na criação de venda. Price é o preço
// capturado pelo chamador no momento da montagem do pedido.
type NewSaleItem struct {
	AppID    string
	Quantity int
	Price    decimal.Decimal
}

// UpdateSaleInput carrega os campos editáveis de uma venda existente.
type UpdateSaleInput struct {
	CustomerID *string
	TotalPrice *decimal.Decimal
	Status     *string
}

// UseCase orquestra o ciclo de vida das vendas: criação pendente,
// confirmação com alocação de códigos, edição, exclusão e reenvio.
type UseCase struct {
	repository       Repository
	customers        CustomerGetter
	apps             AppSource
	notifier         Notifier
	observer         Observer
	logger           *zap.Logger
	confirmedCounter metric.Int64Counter
}

// NewUseCase cria uma nova instância de UseCase.
func NewUseCase(
	repository Repository,
	customerGetter CustomerGetter,
	appSource AppSource,
	notifier Notifier,
	observer Observer,
	logger *zap.Logger,
) *UseCase {
	meter := otel.Meter("sales")
	confirmedCounter, _ := meter.Int64Counter("sales_confirmed_total",
		metric.WithDescription("Total de vendas confirmadas"))

	return &UseCase{
		repository:       repository,
		customers:        customerGetter,
		apps:             appSource,
		notifier:         notifier,
		observer:         observer,
		logger:           logger,
		confirmedCounter: confirmedCounter,
	}
}

// Create registra uma venda pendente para o vendedor da sessão. O total é a
// soma de preço x quantidade dos itens. A mensagem de confirmação do pedido
// é disparada em segundo plano e nunca falha a operação.
func (uc *UseCase) Create(ctx context.Context, customerID string, items []NewSaleItem, paymentID string) (*Sale, error) {
	sellerID, err := auth.SellerID(ctx)
	if err != nil {
		return nil, err
	}

	customer, err := uc.customers.GetCustomer(ctx, sellerID, customerID)
	if err != nil {
		return nil, err
	}

	saleItems := make([]SaleItem, 0, len(items))
	for _, item := range items {
		// Cada item precisa referenciar um aplicativo do próprio vendedor.
		if _, err := uc.apps.GetApp(ctx, sellerID, item.AppID); err != nil {
			return nil, err
		}
		saleItems = append(saleItems, SaleItem{
			AppID:    item.AppID,
			Quantity: item.Quantity,
			Price:    item.Price,
		})
	}

	sale, err := NewSale(sellerID, customerID, saleItems, paymentID)
	if err != nil {
		return nil, err
	}

	if err := uc.repository.CreateSale(ctx, sale); err != nil {
		return nil, fmt.Errorf("failed to create sale: %w", err)
	}

	uc.observer.SaleSaved(sale)
	uc.logger.Info("sale created",
		zap.String("seller_id", sellerID),
		zap.String("sale_id", sale.ID),
		zap.String("customer_id", customerID),
		zap.String("total_price", sale.TotalPrice.String()))

	uc.notifyAsync(sale, customer, func(ctx context.Context, apps []catalog.App) bool {
		return uc.notifier.SendOrderConfirmation(ctx, sale, customer, apps)
	})

	return sale, nil
}

// Confirm aloca os códigos da venda em uma única transação: para cada item,
// na ordem, seleciona quantity códigos não usados do aplicativo, marca-os
// como usados, anexa-os ao item e decrementa o contador do aplicativo. Se
// algum item não tem estoque suficiente, a transação inteira é desfeita e
// nenhum código de nenhum item é consumido.
func (uc *UseCase) Confirm(ctx context.Context, saleID string) (*Sale, error) {
	sellerID, err := auth.SellerID(ctx)
	if err != nil {
		return nil, err
	}

	tx, err := uc.repository.BeginTx(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	sale, err := uc.repository.GetSaleForUpdate(ctx, tx, sellerID, saleID)
	if err != nil {
		return nil, err
	}

	if sale.Status == StatusConfirmed {
		return nil, ErrAlreadyConfirmed
	}

	for i := range sale.Items {
		item := &sale.Items[i]

		codes, err := uc.repository.SelectUnusedCodes(ctx, tx, sellerID, item.AppID, item.Quantity)
		if err != nil {
			return nil, fmt.Errorf("failed to select codes: %w", err)
		}
		if len(codes) < item.Quantity {
			uc.logger.Warn("insufficient codes",
				zap.String("sale_id", saleID),
				zap.String("app_id", item.AppID),
				zap.Int("requested", item.Quantity),
				zap.Int("available", len(codes)))
			return nil, &InsufficientCodesError{AppID: item.AppID}
		}

		codeIDs := make([]string, 0, len(codes))
		codeValues := make([]string, 0, len(codes))
		for _, c := range codes {
			codeIDs = append(codeIDs, c.ID)
			codeValues = append(codeValues, c.Code)
		}

		if err := uc.repository.MarkCodesUsed(ctx, tx, codeIDs); err != nil {
			return nil, err
		}
		if err := uc.repository.AttachCodes(ctx, tx, item.ID, codeIDs); err != nil {
			return nil, err
		}
		if err := uc.repository.DecrementAvailable(ctx, tx, sellerID, item.AppID, item.Quantity); err != nil {
			return nil, err
		}

		item.Codes = codeValues
	}

	if err := uc.repository.SetStatus(ctx, tx, saleID, StatusConfirmed); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit confirmation: %w", err)
	}

	sale.Status = StatusConfirmed
	uc.observer.SaleConfirmed(sale)
	uc.confirmedCounter.Add(ctx, 1)

	uc.logger.Info("sale confirmed",
		zap.String("seller_id", sellerID),
		zap.String("sale_id", saleID))

	customer, err := uc.customers.GetCustomer(ctx, sellerID, sale.CustomerID)
	if err != nil {
		// A venda já está confirmada; sem cliente não há para quem notificar.
		uc.logger.Warn("customer lookup failed after confirmation",
			zap.String("sale_id", saleID), zap.Error(err))
		return sale, nil
	}

	uc.notifyAsync(sale, customer, func(ctx context.Context, apps []catalog.App) bool {
		return uc.notifier.SendOrderCodes(ctx, sale, customer, apps)
	})

	return sale, nil
}

// Update sobrescreve cliente, total e/ou status de uma venda. É o caminho
// usado para cancelamento (status = cancelled); itens e códigos não são
// alterados.
func (uc *UseCase) Update(ctx context.Context, saleID string, input UpdateSaleInput) (*Sale, error) {
	sellerID, err := auth.SellerID(ctx)
	if err != nil {
		return nil, err
	}

	patch := SalePatch{
		CustomerID: input.CustomerID,
		Status:     input.Status,
	}
	if input.TotalPrice != nil {
		total := input.TotalPrice.String()
		patch.TotalPrice = &total
	}

	if err := uc.repository.UpdateSale(ctx, sellerID, saleID, patch); err != nil {
		return nil, err
	}

	sale, err := uc.repository.GetSale(ctx, sellerID, saleID)
	if err != nil {
		return nil, err
	}
	uc.observer.SaleSaved(sale)
	return sale, nil
}

// Delete remove uma venda. Códigos já alocados por ela não voltam ao
// estoque: exclusão não desfaz consumo.
func (uc *UseCase) Delete(ctx context.Context, saleID string) error {
	sellerID, err := auth.SellerID(ctx)
	if err != nil {
		return err
	}

	if err := uc.repository.DeleteSale(ctx, sellerID, saleID); err != nil {
		return err
	}

	uc.observer.SaleDeleted(sellerID, saleID)
	uc.logger.Info("sale deleted",
		zap.String("seller_id", sellerID),
		zap.String("sale_id", saleID))
	return nil
}

// List devolve as vendas do vendedor da sessão, mais recentes primeiro.
func (uc *UseCase) List(ctx context.Context) ([]Sale, error) {
	sellerID, err := auth.SellerID(ctx)
	if err != nil {
		return nil, err
	}
	return uc.repository.ListSales(ctx, sellerID)
}

// ResendOrderCodes reenvia a mensagem de códigos de uma venda que já possui
// códigos anexados. O retorno indica se o canal aceitou a mensagem.
func (uc *UseCase) ResendOrderCodes(ctx context.Context, saleID string) (bool, error) {
	sellerID, err := auth.SellerID(ctx)
	if err != nil {
		return false, err
	}

	sale, err := uc.repository.GetSale(ctx, sellerID, saleID)
	if err != nil {
		return false, err
	}
	if !sale.HasCodes() {
		return false, ErrNoCodesToResend
	}

	customer, err := uc.customers.GetCustomer(ctx, sellerID, sale.CustomerID)
	if err != nil {
		return false, err
	}
	apps, err := uc.apps.ListApps(ctx, sellerID)
	if err != nil {
		return false, err
	}

	return uc.notifier.SendOrderCodes(ctx, sale, customer, apps), nil
}

// notifyAsync dispara uma notificação em segundo plano com contexto próprio.
// Falhas são apenas logadas; o resultado jamais interfere na operação que a
// originou.
func (uc *UseCase) notifyAsync(sale *Sale, customer *customers.Customer, send func(ctx context.Context, apps []catalog.App) bool) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), notifyTimeout)
		defer cancel()

		apps, err := uc.apps.ListApps(ctx, sale.SellerID)
		if err != nil {
			uc.logger.Warn("notification skipped: failed to list apps",
				zap.String("sale_id", sale.ID), zap.Error(err))
			return
		}

		if delivered := send(ctx, apps); !delivered {
			uc.logger.Warn("notification not delivered",
				zap.String("sale_id", sale.ID),
				zap.String("customer_id", customer.ID))
		}
	}()
}
