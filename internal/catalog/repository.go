package catalog

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrAppNotFound indica que o aplicativo não existe ou pertence a outro vendedor.
var ErrAppNotFound = errors.New("aplicativo não encontrado")

// Repository define a interface para operações de banco de dados do catálogo.
type Repository interface {
	CreateApp(ctx context.Context, app *App) error
	GetApp(ctx context.Context, sellerID, appID string) (*App, error)
	ListApps(ctx context.Context, sellerID string) ([]App, error)
	UpdateApp(ctx context.Context, app *App) error
	DeleteApp(ctx context.Context, sellerID, appID string) error

	// ExistingCodes devolve quais dos códigos candidatos já existem em
	// qualquer aplicativo do estoque. A unicidade de código é global.
	ExistingCodes(ctx context.Context, candidates []string) (map[string]bool, error)

	// AddCodes persiste os códigos como não usados e incrementa o contador
	// codes_available do aplicativo na mesma transação.
	AddCodes(ctx context.Context, appID string, codes []*Code) error

	ListCodes(ctx context.Context, sellerID string) ([]Code, error)
}

// CatalogRepository implementa Repository usando PostgreSQL.
type CatalogRepository struct {
	db *pgxpool.Pool
}

// NewCatalogRepository cria uma nova instância de CatalogRepository.
func NewCatalogRepository(db *pgxpool.Pool) Repository {
	return &CatalogRepository{db: db}
}

func (r *CatalogRepository) CreateApp(ctx context.Context, app *App) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO apps (id, seller_id, name, price, codes_available, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, app.ID, app.SellerID, app.Name, app.Price, app.CodesAvailable, app.CreatedAt, app.UpdatedAt)
	return err
}

func (r *CatalogRepository) GetApp(ctx context.Context, sellerID, appID string) (*App, error) {
	var a App
	err := r.db.QueryRow(ctx, `
		SELECT id, seller_id, name, price, codes_available, created_at, updated_at
		FROM apps WHERE id = $1 AND seller_id = $2
	`, appID, sellerID).Scan(&a.ID, &a.SellerID, &a.Name, &a.Price, &a.CodesAvailable, &a.CreatedAt, &a.UpdatedAt)

	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrAppNotFound
	}
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *CatalogRepository) ListApps(ctx context.Context, sellerID string) ([]App, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, seller_id, name, price, codes_available, created_at, updated_at
		FROM apps WHERE seller_id = $1
		ORDER BY name
	`, sellerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	apps := []App{}
	for rows.Next() {
		var a App
		if err := rows.Scan(&a.ID, &a.SellerID, &a.Name, &a.Price, &a.CodesAvailable, &a.CreatedAt, &a.UpdatedAt); err != nil {
			return nil, err
		}
		apps = append(apps, a)
	}
	return apps, rows.Err()
}

func (r *CatalogRepository) UpdateApp(ctx context.Context, app *App) error {
	tag, err := r.db.Exec(ctx, `
		UPDATE apps
		SET name = $1, price = $2, updated_at = NOW()
		WHERE id = $3 AND seller_id = $4
	`, app.Name, app.Price, app.ID, app.SellerID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrAppNotFound
	}
	return nil
}

func (r *CatalogRepository) DeleteApp(ctx context.Context, sellerID, appID string) error {
	// O schema remove os códigos do aplicativo em cascata.
	tag, err := r.db.Exec(ctx, `
		DELETE FROM apps WHERE id = $1 AND seller_id = $2
	`, appID, sellerID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrAppNotFound
	}
	return nil
}

func (r *CatalogRepository) ExistingCodes(ctx context.Context, candidates []string) (map[string]bool, error) {
	existing := make(map[string]bool, len(candidates))
	if len(candidates) == 0 {
		return existing, nil
	}

	rows, err := r.db.Query(ctx, `
		SELECT code FROM codes WHERE code = ANY($1)
	`, candidates)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var code string
		if err := rows.Scan(&code); err != nil {
			return nil, err
		}
		existing[code] = true
	}
	return existing, rows.Err()
}

func (r *CatalogRepository) AddCodes(ctx context.Context, appID string, codes []*Code) error {
	if len(codes) == 0 {
		return nil
	}

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	for _, code := range codes {
		_, err := tx.Exec(ctx, `
			INSERT INTO codes (id, app_id, code, used)
			VALUES ($1, $2, $3, false)
		`, code.ID, code.AppID, code.Code)
		if err != nil {
			return fmt.Errorf("failed to insert code: %w", err)
		}
	}

	_, err = tx.Exec(ctx, `
		UPDATE apps
		SET codes_available = codes_available + $1, updated_at = NOW()
		WHERE id = $2
	`, len(codes), appID)
	if err != nil {
		return fmt.Errorf("failed to increment codes_available: %w", err)
	}

	return tx.Commit(ctx)
}

func (r *CatalogRepository) ListCodes(ctx context.Context, sellerID string) ([]Code, error) {
	rows, err := r.db.Query(ctx, `
		SELECT c.id, c.app_id, c.code, c.used
		FROM codes c
		JOIN apps a ON a.id = c.app_id
		WHERE a.seller_id = $1
	`, sellerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	codes := []Code{}
	for rows.Next() {
		var c Code
		if err := rows.Scan(&c.ID, &c.AppID, &c.Code, &c.Used); err != nil {
			return nil, err
		}
		codes = append(codes, c)
	}
	return codes, rows.Err()
}
