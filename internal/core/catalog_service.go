package core

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

// VariantInput describes one size/price/stock combination when creating or
// extending a product.
type VariantInput struct {
	Size  string
	SKU   string
	Price decimal.Decimal
	Stock int
}

// CatalogService manages products, their size variants, and variant stock.
// Quotes never touch stock; order finalization deducts it through
// ApplyOrderStockTx, atomically for all line items of one order.
type CatalogService interface {
	CreateProduct(ctx context.Context, code, name, description string, basePrice decimal.Decimal, variants []VariantInput) (*Product, error)
	GetProducts(ctx context.Context) ([]Product, error)
	GetProduct(ctx context.Context, productID int) (*Product, error)
	GetProductByCode(ctx context.Context, code string) (*Product, error)
	AddVariant(ctx context.Context, productID int, input VariantInput) (*ProductVariant, error)
	DeactivateProduct(ctx context.Context, productID int) error

	// ReceiveStock applies a positive stock delta to a variant (restock).
	ReceiveStock(ctx context.Context, variantID, qty int) (*ProductVariant, error)

	// ApplyOrderStockTx deducts stock for every line item of a finalized
	// order within the caller's transaction. Each variant row is locked
	// FOR UPDATE; any shortage aborts the whole set, so a sale never leaves
	// some variants decremented and others not. Lines without a variant
	// snapshot (variant-less products) are skipped.
	ApplyOrderStockTx(ctx context.Context, tx pgx.Tx, items []LineItem) error
}

type catalogService struct {
	pool *pgxpool.Pool
}

func NewCatalogService(pool *pgxpool.Pool) CatalogService {
	return &catalogService{pool: pool}
}

func (s *catalogService) CreateProduct(ctx context.Context, code, name, description string, basePrice decimal.Decimal, variants []VariantInput) (*Product, error) {
	code = strings.TrimSpace(code)
	if code == "" || strings.TrimSpace(name) == "" {
		return nil, fmt.Errorf("%w: product code and name are required", ErrInvalidInput)
	}
	if basePrice.IsNegative() {
		return nil, fmt.Errorf("%w: base price cannot be negative", ErrInvalidInput)
	}
	for _, v := range variants {
		if v.Price.IsNegative() || v.Stock < 0 {
			return nil, fmt.Errorf("%w: variant %s has negative price or stock", ErrInvalidInput, v.Size)
		}
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	var productID int
	err = tx.QueryRow(ctx, `
		INSERT INTO products (code, name, description, base_price)
		VALUES ($1, $2, $3, $4)
		RETURNING id
	`, code, name, description, basePrice).Scan(&productID)
	if err != nil {
		return nil, fmt.Errorf("failed to insert product: %w", err)
	}

	for _, v := range variants {
		_, err = tx.Exec(ctx, `
			INSERT INTO product_variants (product_id, size, sku, price, stock)
			VALUES ($1, $2, $3, $4, $5)
		`, productID, v.Size, v.SKU, v.Price, v.Stock)
		if err != nil {
			return nil, fmt.Errorf("failed to insert variant %s: %w", v.Size, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit product creation: %w", err)
	}

	return s.GetProduct(ctx, productID)
}

func (s *catalogService) GetProducts(ctx context.Context) ([]Product, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, code, name, description, base_price, is_active, created_at
		FROM products
		WHERE is_active = true
		ORDER BY code
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query products: %w", err)
	}
	defer rows.Close()

	var products []Product
	index := make(map[int]int)
	for rows.Next() {
		var p Product
		if err := rows.Scan(&p.ID, &p.Code, &p.Name, &p.Description, &p.BasePrice, &p.IsActive, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan product: %w", err)
		}
		index[p.ID] = len(products)
		products = append(products, p)
	}
	if len(products) == 0 {
		return nil, nil
	}

	vrows, err := s.pool.Query(ctx, `
		SELECT pv.id, pv.product_id, pv.size, pv.sku, pv.price, pv.stock
		FROM product_variants pv
		JOIN products p ON p.id = pv.product_id
		WHERE p.is_active = true
		ORDER BY pv.product_id, pv.id
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query variants: %w", err)
	}
	defer vrows.Close()

	for vrows.Next() {
		var v ProductVariant
		if err := vrows.Scan(&v.ID, &v.ProductID, &v.Size, &v.SKU, &v.Price, &v.Stock); err != nil {
			return nil, fmt.Errorf("failed to scan variant: %w", err)
		}
		if i, ok := index[v.ProductID]; ok {
			products[i].Variants = append(products[i].Variants, v)
		}
	}
	return products, nil
}

func (s *catalogService) GetProduct(ctx context.Context, productID int) (*Product, error) {
	return s.getProduct(ctx, "id = $1", productID)
}

func (s *catalogService) GetProductByCode(ctx context.Context, code string) (*Product, error) {
	return s.getProduct(ctx, "code = $1", code)
}

func (s *catalogService) getProduct(ctx context.Context, where string, arg any) (*Product, error) {
	var p Product
	err := s.pool.QueryRow(ctx, `
		SELECT id, code, name, description, base_price, is_active, created_at
		FROM products
		WHERE `+where, arg).Scan(&p.ID, &p.Code, &p.Name, &p.Description, &p.BasePrice, &p.IsActive, &p.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: product %v", ErrNotFound, arg)
		}
		return nil, fmt.Errorf("failed to fetch product %v: %w", arg, err)
	}

	rows, err := s.pool.Query(ctx, `
		SELECT id, product_id, size, sku, price, stock
		FROM product_variants
		WHERE product_id = $1
		ORDER BY id
	`, p.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to query variants for product %d: %w", p.ID, err)
	}
	defer rows.Close()

	for rows.Next() {
		var v ProductVariant
		if err := rows.Scan(&v.ID, &v.ProductID, &v.Size, &v.SKU, &v.Price, &v.Stock); err != nil {
			return nil, fmt.Errorf("failed to scan variant: %w", err)
		}
		p.Variants = append(p.Variants, v)
	}
	return &p, nil
}

func (s *catalogService) AddVariant(ctx context.Context, productID int, input VariantInput) (*ProductVariant, error) {
	if input.Price.IsNegative() || input.Stock < 0 {
		return nil, fmt.Errorf("%w: variant price and stock must be non-negative", ErrInvalidInput)
	}

	var v ProductVariant
	err := s.pool.QueryRow(ctx, `
		INSERT INTO product_variants (product_id, size, sku, price, stock)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, product_id, size, sku, price, stock
	`, productID, input.Size, input.SKU, input.Price, input.Stock).Scan(
		&v.ID, &v.ProductID, &v.Size, &v.SKU, &v.Price, &v.Stock,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to add variant to product %d: %w", productID, err)
	}
	return &v, nil
}

func (s *catalogService) DeactivateProduct(ctx context.Context, productID int) error {
	tag, err := s.pool.Exec(ctx, "UPDATE products SET is_active = false WHERE id = $1", productID)
	if err != nil {
		return fmt.Errorf("failed to deactivate product %d: %w", productID, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: product %d", ErrNotFound, productID)
	}
	return nil
}

func (s *catalogService) ReceiveStock(ctx context.Context, variantID, qty int) (*ProductVariant, error) {
	if qty <= 0 {
		return nil, fmt.Errorf("%w: receive quantity must be positive, got %d", ErrInvalidInput, qty)
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	variant, err := lockVariant(ctx, tx, variantID)
	if err != nil {
		return nil, err
	}

	adjusted, err := ApplyStockDelta(*variant, qty)
	if err != nil {
		return nil, err
	}

	if _, err := tx.Exec(ctx,
		"UPDATE product_variants SET stock = $1 WHERE id = $2",
		adjusted.Stock, adjusted.ID,
	); err != nil {
		return nil, fmt.Errorf("failed to update stock for variant %d: %w", variantID, err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit stock receipt: %w", err)
	}
	return &adjusted, nil
}

// ApplyOrderStockTx deducts stock for each order line within the caller's TX.
func (s *catalogService) ApplyOrderStockTx(ctx context.Context, tx pgx.Tx, items []LineItem) error {
	for _, item := range items {
		if item.Variant == nil {
			continue
		}

		variant, err := lockVariant(ctx, tx, item.Variant.VariantID)
		if err != nil {
			return err
		}

		adjusted, err := ApplyStockDelta(*variant, -item.Quantity)
		if err != nil {
			return fmt.Errorf("product %s size %s: %w", item.Product.Code, item.Variant.Size, err)
		}

		if _, err := tx.Exec(ctx,
			"UPDATE product_variants SET stock = $1 WHERE id = $2",
			adjusted.Stock, adjusted.ID,
		); err != nil {
			return fmt.Errorf("failed to deduct stock for variant %d: %w", adjusted.ID, err)
		}
	}
	return nil
}

// lockVariant fetches a variant row FOR UPDATE within tx.
func lockVariant(ctx context.Context, tx pgx.Tx, variantID int) (*ProductVariant, error) {
	var v ProductVariant
	err := tx.QueryRow(ctx, `
		SELECT id, product_id, size, sku, price, stock
		FROM product_variants
		WHERE id = $1
		FOR UPDATE
	`, variantID).Scan(&v.ID, &v.ProductID, &v.Size, &v.SKU, &v.Price, &v.Stock)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: variant %d", ErrNotFound, variantID)
		}
		return nil, fmt.Errorf("failed to lock variant %d: %w", variantID, err)
	}
	return &v, nil
}
