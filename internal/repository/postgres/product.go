package postgres

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/veracare/marketplace-api/internal/model"
	"github.com/veracare/marketplace-api/internal/repository"
)

type productRepository struct {
	db *sqlx.DB
}

func NewProductRepository(db *sqlx.DB) repository.ProductRepository {
	return &productRepository{db: db}
}

func (r *productRepository) Get(ctx context.Context, id uuid.UUID) (*model.Product, error) {
	query := `SELECT * FROM products WHERE id = $1 AND deleted_at IS NULL`
	var p model.Product
	if err := r.db.GetContext(ctx, &p, query, id); err != nil {
		return nil, fmt.Errorf("failed to get product: %w", err)
	}
	return &p, nil
}

func (r *productRepository) GetBySlug(ctx context.Context, slug string) (*model.Product, error) {
	query := `SELECT * FROM products WHERE slug = $1 AND deleted_at IS NULL`
	var p model.Product
	if err := r.db.GetContext(ctx, &p, query, slug); err != nil {
		return nil, fmt.Errorf("failed to get product by slug: %w", err)
	}
	return &p, nil
}

func (r *productRepository) List(ctx context.Context, filters *model.ProductFilters) ([]*model.Product, error) {
	conditions := []string{"deleted_at IS NULL"}
	var args []interface{}

	arg := func(v interface{}) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if filters.Category != "" {
		conditions = append(conditions, "category = "+arg(filters.Category))
	}
	if filters.MinPriceCents > 0 {
		conditions = append(conditions, "price_cents >= "+arg(filters.MinPriceCents))
	}
	if filters.MaxPriceCents > 0 {
		conditions = append(conditions, "price_cents <= "+arg(filters.MaxPriceCents))
	}

	order := "name ASC"
	switch filters.Sort {
	case "price_asc":
		order = "price_cents ASC"
	case "price_desc":
		order = "price_cents DESC"
	case "newest":
		order = "created_at DESC"
	}

	query := fmt.Sprintf(`SELECT * FROM products WHERE %s ORDER BY %s`,
		strings.Join(conditions, " AND "), order)

	var products []*model.Product
	if err := r.db.SelectContext(ctx, &products, query, args...); err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}
	return products, nil
}

type orderRepository struct {
	db *sqlx.DB
}

func NewOrderRepository(db *sqlx.DB) repository.OrderRepository {
	return &orderRepository{db: db}
}

func (r *orderRepository) Create(ctx context.Context, order *model.Order) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin tx: %w", err)
	}
	defer tx.Rollback()

	order.CreatedAt = time.Now()
	order.UpdatedAt = time.Now()

	query := `
		INSERT INTO orders (
			id, email, shipping_address, subtotal_cents, discount_cents,
			shipping_cents, tax_cents, total_cents, promo_code, status,
			created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`
	if _, err := tx.ExecContext(ctx, query,
		order.ID, order.Email, order.ShippingAddress, order.SubtotalCents,
		order.DiscountCents, order.ShippingCents, order.TaxCents, order.TotalCents,
		order.PromoCode, order.Status, order.CreatedAt, order.UpdatedAt,
	); err != nil {
		return fmt.Errorf("failed to create order: %w", err)
	}

	itemQuery := `
		INSERT INTO order_items (id, order_id, product_id, name, price_cents, quantity)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	for _, item := range order.Items {
		if _, err := tx.ExecContext(ctx, itemQuery,
			item.ID, order.ID, item.ProductID, item.Name, item.PriceCents, item.Quantity,
		); err != nil {
			return fmt.Errorf("failed to create order item: %w", err)
		}
	}

	return tx.Commit()
}

func (r *orderRepository) Get(ctx context.Context, id uuid.UUID) (*model.Order, error) {
	query := `SELECT * FROM orders WHERE id = $1 AND deleted_at IS NULL`
	var order model.Order
	if err := r.db.GetContext(ctx, &order, query, id); err != nil {
		return nil, fmt.Errorf("failed to get order: %w", err)
	}

	itemQuery := `SELECT * FROM order_items WHERE order_id = $1`
	if err := r.db.SelectContext(ctx, &order.Items, itemQuery, id); err != nil {
		return nil, fmt.Errorf("failed to get order items: %w", err)
	}
	return &order, nil
}

func (r *orderRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status model.OrderStatus) error {
	query := `UPDATE orders SET status = $1, updated_at = $2 WHERE id = $3`
	_, err := r.db.ExecContext(ctx, query, status, time.Now(), id)
	return err
}
