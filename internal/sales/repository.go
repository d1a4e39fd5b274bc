package sales

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// AllocatedCode é um código não usado selecionado durante a confirmação.
type AllocatedCode struct {
	ID   string
	Code string
}

// SalePatch carrega os campos sobrescritos por um update direto de venda.
// Itens e códigos nunca são tocados por esse caminho.
type SalePatch struct {
	CustomerID *string
	TotalPrice *string
	Status     *string
}

// Tx interface para transações.
type Tx interface {
	Commit() error
	Rollback() error
}

// Repository define a interface para operações de banco de dados de vendas.
// Os métodos que recebem Tx compõem a sequência de alocação de códigos da
// confirmação dentro de uma única transação.
type Repository interface {
	BeginTx(ctx context.Context) (Tx, error)

	CreateSale(ctx context.Context, sale *Sale) error
	GetSale(ctx context.Context, sellerID, saleID string) (*Sale, error)
	ListSales(ctx context.Context, sellerID string) ([]Sale, error)
	UpdateSale(ctx context.Context, sellerID, saleID string, patch SalePatch) error
	DeleteSale(ctx context.Context, sellerID, saleID string) error

	// GetSaleForUpdate carrega a venda com lock pessimista (FOR UPDATE) no
	// registro, bloqueando confirmações concorrentes da mesma venda.
	GetSaleForUpdate(ctx context.Context, tx Tx, sellerID, saleID string) (*Sale, error)

	// SelectUnusedCodes seleciona até limit códigos não usados do aplicativo
	// com FOR UPDATE SKIP LOCKED, de modo que confirmações concorrentes
	// nunca disputem o mesmo código. O join com apps restringe a seleção ao
	// estoque do vendedor informado.
	SelectUnusedCodes(ctx context.Context, tx Tx, sellerID, appID string, limit int) ([]AllocatedCode, error)

	MarkCodesUsed(ctx context.Context, tx Tx, codeIDs []string) error
	AttachCodes(ctx context.Context, tx Tx, saleItemID string, codeIDs []string) error
	DecrementAvailable(ctx context.Context, tx Tx, sellerID, appID string, quantity int) error
	SetStatus(ctx context.Context, tx Tx, saleID, status string) error

	// UpdatePaymentStatus é usado pelo webhook do gateway de pagamento.
	UpdatePaymentStatus(ctx context.Context, sellerID, paymentID, paymentStatus, saleStatus string) error
}

// SaleRepository implementa Repository usando PostgreSQL.
type SaleRepository struct {
	db *pgxpool.Pool
}

// NewSaleRepository cria uma nova instância de SaleRepository.
func NewSaleRepository(db *pgxpool.Pool) Repository {
	return &SaleRepository{db: db}
}

// PostgresTx implementa a interface Tx.
type PostgresTx struct {
	ctx context.Context
	tx  pgx.Tx
}

func (t *PostgresTx) Commit() error {
	return t.tx.Commit(t.ctx)
}

func (t *PostgresTx) Rollback() error {
	return t.tx.Rollback(t.ctx)
}

// BeginTx inicia uma nova transação.
func (r *SaleRepository) BeginTx(ctx context.Context) (Tx, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, err
	}
	return &PostgresTx{ctx: ctx, tx: tx}, nil
}

// querier abstrai pool e transação para as leituras compartilhadas.
type querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

func (r *SaleRepository) CreateSale(ctx context.Context, sale *Sale) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx, `
		INSERT INTO sales (id, seller_id, customer_id, total_price, date, status, payment_id, payment_status)
		VALUES ($1, $2, $3, $4, $5, $6, NULLIF($7, ''), NULLIF($8, ''))
	`, sale.ID, sale.SellerID, sale.CustomerID, sale.TotalPrice, sale.Date, sale.Status, sale.PaymentID, sale.PaymentStatus)
	if err != nil {
		return fmt.Errorf("failed to insert sale: %w", err)
	}

	for i, item := range sale.Items {
		_, err = tx.Exec(ctx, `
			INSERT INTO sale_items (id, sale_id, app_id, quantity, price, position)
			VALUES ($1, $2, $3, $4, $5, $6)
		`, item.ID, sale.ID, item.AppID, item.Quantity, item.Price, i)
		if err != nil {
			return fmt.Errorf("failed to insert sale item: %w", err)
		}
	}

	return tx.Commit(ctx)
}

func (r *SaleRepository) GetSale(ctx context.Context, sellerID, saleID string) (*Sale, error) {
	sale, err := r.scanSale(ctx, r.db, `
		SELECT id, seller_id, customer_id, total_price, date, status,
		       COALESCE(payment_id, ''), COALESCE(payment_status, '')
		FROM sales WHERE id = $1 AND seller_id = $2
	`, saleID, sellerID)
	if err != nil {
		return nil, err
	}
	if err := r.loadItems(ctx, r.db, sale); err != nil {
		return nil, err
	}
	return sale, nil
}

func (r *SaleRepository) GetSaleForUpdate(ctx context.Context, tx Tx, sellerID, saleID string) (*Sale, error) {
	pgTx := tx.(*PostgresTx).tx

	sale, err := r.scanSale(ctx, pgTx, `
		SELECT id, seller_id, customer_id, total_price, date, status,
		       COALESCE(payment_id, ''), COALESCE(payment_status, '')
		FROM sales WHERE id = $1 AND seller_id = $2
		FOR UPDATE
	`, saleID, sellerID)
	if err != nil {
		return nil, err
	}
	if err := r.loadItems(ctx, pgTx, sale); err != nil {
		return nil, err
	}
	return sale, nil
}

func (r *SaleRepository) scanSale(ctx context.Context, q querier, query string, args ...any) (*Sale, error) {
	var s Sale
	err := q.QueryRow(ctx, query, args...).Scan(
		&s.ID, &s.SellerID, &s.CustomerID, &s.TotalPrice, &s.Date, &s.Status,
		&s.PaymentID, &s.PaymentStatus,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// loadItems carrega os itens na ordem de criação e os códigos anexados a
// cada item, na ordem devolvida pela associação.
func (r *SaleRepository) loadItems(ctx context.Context, q querier, sale *Sale) error {
	rows, err := q.Query(ctx, `
		SELECT id, app_id, quantity, price
		FROM sale_items WHERE sale_id = $1
		ORDER BY position
	`, sale.ID)
	if err != nil {
		return err
	}
	defer rows.Close()

	sale.Items = []SaleItem{}
	for rows.Next() {
		var item SaleItem
		if err := rows.Scan(&item.ID, &item.AppID, &item.Quantity, &item.Price); err != nil {
			return err
		}
		item.Codes = []string{}
		sale.Items = append(sale.Items, item)
	}
	if err := rows.Err(); err != nil {
		return err
	}

	for i := range sale.Items {
		codeRows, err := q.Query(ctx, `
			SELECT c.code
			FROM sale_codes sc
			JOIN codes c ON c.id = sc.code_id
			WHERE sc.sale_item_id = $1
		`, sale.Items[i].ID)
		if err != nil {
			return err
		}
		for codeRows.Next() {
			var code string
			if err := codeRows.Scan(&code); err != nil {
				codeRows.Close()
				return err
			}
			sale.Items[i].Codes = append(sale.Items[i].Codes, code)
		}
		codeRows.Close()
		if err := codeRows.Err(); err != nil {
			return err
		}
	}
	return nil
}

func (r *SaleRepository) ListSales(ctx context.Context, sellerID string) ([]Sale, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, seller_id, customer_id, total_price, date, status,
		       COALESCE(payment_id, ''), COALESCE(payment_status, '')
		FROM sales WHERE seller_id = $1
		ORDER BY date DESC
	`, sellerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	sales := []Sale{}
	for rows.Next() {
		var s Sale
		err := rows.Scan(&s.ID, &s.SellerID, &s.CustomerID, &s.TotalPrice, &s.Date, &s.Status,
			&s.PaymentID, &s.PaymentStatus)
		if err != nil {
			return nil, err
		}
		sales = append(sales, s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range sales {
		if err := r.loadItems(ctx, r.db, &sales[i]); err != nil {
			return nil, err
		}
	}
	return sales, nil
}

func (r *SaleRepository) UpdateSale(ctx context.Context, sellerID, saleID string, patch SalePatch) error {
	tag, err := r.db.Exec(ctx, `
		UPDATE sales
		SET customer_id = COALESCE($1, customer_id),
		    total_price = COALESCE($2::numeric, total_price),
		    status = COALESCE($3, status)
		WHERE id = $4 AND seller_id = $5
	`, patch.CustomerID, patch.TotalPrice, patch.Status, saleID, sellerID)
	if err != nil {
		return fmt.Errorf("failed to update sale: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteSale remove a venda. Códigos já consumidos por ela permanecem
// marcados como usados; a exclusão não devolve estoque.
func (r *SaleRepository) DeleteSale(ctx context.Context, sellerID, saleID string) error {
	tag, err := r.db.Exec(ctx, `
		DELETE FROM sales WHERE id = $1 AND seller_id = $2
	`, saleID, sellerID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *SaleRepository) SelectUnusedCodes(ctx context.Context, tx Tx, sellerID, appID string, limit int) ([]AllocatedCode, error) {
	pgTx := tx.(*PostgresTx).tx

	rows, err := pgTx.Query(ctx, `
		SELECT c.id, c.code
		FROM codes c
		JOIN apps a ON a.id = c.app_id AND a.seller_id = $1
		WHERE c.app_id = $2 AND c.used = false
		LIMIT $3
		FOR UPDATE OF c SKIP LOCKED
	`, sellerID, appID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to select unused codes: %w", err)
	}
	defer rows.Close()

	codes := []AllocatedCode{}
	for rows.Next() {
		var c AllocatedCode
		if err := rows.Scan(&c.ID, &c.Code); err != nil {
			return nil, err
		}
		codes = append(codes, c)
	}
	return codes, rows.Err()
}

func (r *SaleRepository) MarkCodesUsed(ctx context.Context, tx Tx, codeIDs []string) error {
	pgTx := tx.(*PostgresTx).tx

	_, err := pgTx.Exec(ctx, `
		UPDATE codes SET used = true WHERE id = ANY($1)
	`, codeIDs)
	if err != nil {
		return fmt.Errorf("failed to mark codes used: %w", err)
	}
	return nil
}

func (r *SaleRepository) AttachCodes(ctx context.Context, tx Tx, saleItemID string, codeIDs []string) error {
	pgTx := tx.(*PostgresTx).tx

	for _, codeID := range codeIDs {
		_, err := pgTx.Exec(ctx, `
			INSERT INTO sale_codes (sale_item_id, code_id) VALUES ($1, $2)
		`, saleItemID, codeID)
		if err != nil {
			return fmt.Errorf("failed to attach code: %w", err)
		}
	}
	return nil
}

func (r *SaleRepository) DecrementAvailable(ctx context.Context, tx Tx, sellerID, appID string, quantity int) error {
	pgTx := tx.(*PostgresTx).tx

	_, err := pgTx.Exec(ctx, `
		UPDATE apps
		SET codes_available = codes_available - $1, updated_at = NOW()
		WHERE id = $2 AND seller_id = $3
	`, quantity, appID, sellerID)
	if err != nil {
		return fmt.Errorf("failed to decrement codes_available: %w", err)
	}
	return nil
}

func (r *SaleRepository) SetStatus(ctx context.Context, tx Tx, saleID, status string) error {
	pgTx := tx.(*PostgresTx).tx

	_, err := pgTx.Exec(ctx, `
		UPDATE sales SET status = $1 WHERE id = $2
	`, status, saleID)
	if err != nil {
		return fmt.Errorf("failed to set sale status: %w", err)
	}
	return nil
}

func (r *SaleRepository) UpdatePaymentStatus(ctx context.Context, sellerID, paymentID, paymentStatus, saleStatus string) error {
	tag, err := r.db.Exec(ctx, `
		UPDATE sales
		SET payment_status = $1, status = $2
		WHERE payment_id = $3 AND seller_id = $4
	`, paymentStatus, saleStatus, paymentID, sellerID)
	if err != nil {
		return fmt.Errorf("failed to update payment status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
