package catalog

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/revendazap/backend/internal/auth"
)

// Observer recebe os objetos devolvidos pelas operações de escrita do
// catálogo, para manter caches derivados em sincronia sem nova consulta.
type Observer interface {
	AppSaved(app *App)
	AppDeleted(sellerID, appID string)
	CodesAdded(sellerID, appID string, codes []*Code)
}

// UseCase contém a lógica de negócio do catálogo de aplicativos.
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

// CreateApp cadastra um aplicativo para o vendedor da sessão.
func (uc *UseCase) CreateApp(ctx context.Context, name string, price decimal.Decimal) (*App, error) {
	sellerID, err := auth.SellerID(ctx)
	if err != nil {
		return nil, err
	}

	app := NewApp(sellerID, name, price)
	if err := uc.repository.CreateApp(ctx, app); err != nil {
		return nil, fmt.Errorf("failed to create app: %w", err)
	}

	uc.observer.AppSaved(app)
	uc.logger.Info("app created",
		zap.String("seller_id", sellerID),
		zap.String("app_id", app.ID))
	return app, nil
}

// ListApps devolve os aplicativos do vendedor da sessão.
func (uc *UseCase) ListApps(ctx context.Context) ([]App, error) {
	sellerID, err := auth.SellerID(ctx)
	if err != nil {
		return nil, err
	}
	return uc.repository.ListApps(ctx, sellerID)
}

// UpdateApp sobrescreve nome e preço de um aplicativo. O contador de códigos
// disponíveis nunca é editado diretamente por aqui.
func (uc *UseCase) UpdateApp(ctx context.Context, appID, name string, price decimal.Decimal) (*App, error) {
	sellerID, err := auth.SellerID(ctx)
	if err != nil {
		return nil, err
	}

	app, err := uc.repository.GetApp(ctx, sellerID, appID)
	if err != nil {
		return nil, err
	}

	app.Name = name
	app.Price = price
	if err := uc.repository.UpdateApp(ctx, app); err != nil {
		return nil, fmt.Errorf("failed to update app: %w", err)
	}
	uc.observer.AppSaved(app)
	return app, nil
}

// DeleteApp remove um aplicativo e, em cascata, seus códigos.
func (uc *UseCase) DeleteApp(ctx context.Context, appID string) error {
	sellerID, err := auth.SellerID(ctx)
	if err != nil {
		return err
	}

	if err := uc.repository.DeleteApp(ctx, sellerID, appID); err != nil {
		return err
	}

	uc.observer.AppDeleted(sellerID, appID)
	uc.logger.Info("app deleted",
		zap.String("seller_id", sellerID),
		zap.String("app_id", appID))
	return nil
}

// AddCodes ingere um lote de códigos para um aplicativo. O lote é
// particionado em códigos válidos, duplicados dentro do próprio lote e
// duplicados em relação ao estoque; apenas os válidos são persistidos e o
// contador codes_available é incrementado exatamente pela quantidade
// persistida. Reenviar o mesmo lote nunca insere códigos já presentes.
func (uc *UseCase) AddCodes(ctx context.Context, appID string, batch []string) (*BatchResult, error) {
	sellerID, err := auth.SellerID(ctx)
	if err != nil {
		return nil, err
	}

	// Garante posse do aplicativo antes de tocar no estoque.
	if _, err := uc.repository.GetApp(ctx, sellerID, appID); err != nil {
		return nil, err
	}

	inStore, err := uc.repository.ExistingCodes(ctx, batch)
	if err != nil {
		return nil, fmt.Errorf("failed to check existing codes: %w", err)
	}

	result := PartitionCodes(batch, inStore)

	if len(result.ValidCodes) > 0 {
		codes := make([]*Code, 0, len(result.ValidCodes))
		for _, code := range result.ValidCodes {
			codes = append(codes, NewCode(appID, code))
		}
		if err := uc.repository.AddCodes(ctx, appID, codes); err != nil {
			return nil, fmt.Errorf("failed to add codes: %w", err)
		}
		uc.observer.CodesAdded(sellerID, appID, codes)
	}

	uc.logger.Info("codes ingested",
		zap.String("seller_id", sellerID),
		zap.String("app_id", appID),
		zap.Int("valid", len(result.ValidCodes)),
		zap.Int("duplicates", len(result.Duplicates)),
		zap.Int("system_duplicates", len(result.SystemDuplicates)))

	return &result, nil
}

// ListCodes devolve todos os códigos dos aplicativos do vendedor.
func (uc *UseCase) ListCodes(ctx context.Context) ([]Code, error) {
	sellerID, err := auth.SellerID(ctx)
	if err != nil {
		return nil, err
	}
	return uc.repository.ListCodes(ctx, sellerID)
}
