package customers

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrNotFound indica que o cliente não existe ou pertence a outro vendedor.
var ErrNotFound = errors.New("cliente não encontrado")

// Repository define a interface para operações de banco de dados de clientes.
// Toda consulta é filtrada pelo vendedor dono do registro.
type Repository interface {
	CreateCustomer(ctx context.Context, customer *Customer) error
	GetCustomer(ctx context.Context, sellerID, customerID string) (*Customer, error)
	ListCustomers(ctx context.Context, sellerID string) ([]Customer, error)
	UpdateCustomer(ctx context.Context, customer *Customer) error
	DeleteCustomer(ctx context.Context, sellerID, customerID string) error
}

// CustomerRepository implementa Repository usando PostgreSQL.
type CustomerRepository struct {
	db *pgxpool.Pool
}

// NewCustomerRepository cria uma nova instância de CustomerRepository.
func NewCustomerRepository(db *pgxpool.Pool) Repository {
	return &CustomerRepository{db: db}
}

func (r *CustomerRepository) CreateCustomer(ctx context.Context, customer *Customer) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO customers (id, seller_id, name, email, phone, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, customer.ID, customer.SellerID, customer.Name, customer.Email, customer.Phone, customer.CreatedAt, customer.UpdatedAt)
	return err
}

func (r *CustomerRepository) GetCustomer(ctx context.Context, sellerID, customerID string) (*Customer, error) {
	var c Customer
	err := r.db.QueryRow(ctx, `
		SELECT id, seller_id, name, email, phone, created_at, updated_at
		FROM customers WHERE id = $1 AND seller_id = $2
	`, customerID, sellerID).Scan(&c.ID, &c.SellerID, &c.Name, &c.Email, &c.Phone, &c.CreatedAt, &c.UpdatedAt)

	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *CustomerRepository) ListCustomers(ctx context.Context, sellerID string) ([]Customer, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, seller_id, name, email, phone, created_at, updated_at
		FROM customers WHERE seller_id = $1
		ORDER BY name
	`, sellerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	customers := []Customer{}
	for rows.Next() {
		var c Customer
		if err := rows.Scan(&c.ID, &c.SellerID, &c.Name, &c.Email, &c.Phone, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, err
		}
		customers = append(customers, c)
	}
	return customers, rows.Err()
}

func (r *CustomerRepository) UpdateCustomer(ctx context.Context, customer *Customer) error {
	tag, err := r.db.Exec(ctx, `
		UPDATE customers
		SET name = $1, email = $2, phone = $3, updated_at = NOW()
		WHERE id = $4 AND seller_id = $5
	`, customer.Name, customer.Email, customer.Phone, customer.ID, customer.SellerID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *CustomerRepository) DeleteCustomer(ctx context.Context, sellerID, customerID string) error {
	tag, err := r.db.Exec(ctx, `
		DELETE FROM customers WHERE id = $1 AND seller_id = $2
	`, customerID, sellerID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
