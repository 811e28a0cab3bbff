package core

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
)

// pgxQuerier is satisfied by both *pgxpool.Pool and pgx.Tx, enabling shared
// single-row query helpers.
type pgxQuerier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// pgxRowQuerier is satisfied by both *pgxpool.Pool and pgx.Tx (for Query).
type pgxRowQuerier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

// pgxReader combines both query shapes for helpers that need header and
// detail rows.
type pgxReader interface {
	pgxQuerier
	pgxRowQuerier
}

// fetchProduct loads a product with its variants, on the pool or within a TX.
func fetchProduct(ctx context.Context, db pgxReader, productID int) (*Product, error) {
	var p Product
	err := db.QueryRow(ctx, `
		SELECT id, code, name, description, base_price, is_active, created_at
		FROM products
		WHERE id = $1 AND is_active = true
	`, productID).Scan(&p.ID, &p.Code, &p.Name, &p.Description, &p.BasePrice, &p.IsActive, &p.CreatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, fmt.Errorf("%w: product %d", ErrNotFound, productID)
		}
		return nil, fmt.Errorf("failed to fetch product %d: %w", productID, err)
	}

	rows, err := db.Query(ctx, `
		SELECT id, product_id, size, sku, price, stock
		FROM product_variants
		WHERE product_id = $1
		ORDER BY id
	`, productID)
	if err != nil {
		return nil, fmt.Errorf("failed to query variants for product %d: %w", productID, err)
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

const lineItemColumns = `id, product_id, product_code, product_name, product_description,
	       variant_id, variant_size, variant_sku, stock_at_selection,
	       quantity, unit_price, discount_percent, subtotal, notes`

// fetchLineItems loads the ordered line items of a quote or order. table must
// be "quote_items" or "order_items"; parentCol the matching foreign key.
func fetchLineItems(ctx context.Context, q pgxRowQuerier, table, parentCol string, parentID int) ([]LineItem, error) {
	rows, err := q.Query(ctx, fmt.Sprintf(`
		SELECT %s
		FROM %s
		WHERE %s = $1
		ORDER BY position
	`, lineItemColumns, table, parentCol), parentID)
	if err != nil {
		return nil, fmt.Errorf("failed to query %s: %w", table, err)
	}
	defer rows.Close()

	var items []LineItem
	for rows.Next() {
		var (
			item             LineItem
			variantID        *int
			variantSize      *string
			variantSKU       *string
			stockAtSelection *int
		)
		if err := rows.Scan(
			&item.ID, &item.Product.ProductID, &item.Product.Code, &item.Product.Name, &item.Product.Description,
			&variantID, &variantSize, &variantSKU, &stockAtSelection,
			&item.Quantity, &item.UnitPrice, &item.DiscountPercent, &item.Subtotal, &item.Notes,
		); err != nil {
			return nil, fmt.Errorf("failed to scan %s row: %w", table, err)
		}
		if variantID != nil {
			item.Variant = &VariantSnapshot{VariantID: *variantID}
			if variantSize != nil {
				item.Variant.Size = *variantSize
			}
			if variantSKU != nil {
				item.Variant.SKU = *variantSKU
			}
			if stockAtSelection != nil {
				item.Variant.StockAtSelection = *stockAtSelection
			}
		}
		items = append(items, item)
	}
	return items, nil
}

// replaceLineItemsTx replaces the full item set of a quote or order within
// the caller's TX. Items are always written as a whole so positions stay
// contiguous and edits never partially apply.
func replaceLineItemsTx(ctx context.Context, tx pgx.Tx, table, parentCol string, parentID int, items []LineItem) error {
	if _, err := tx.Exec(ctx,
		fmt.Sprintf("DELETE FROM %s WHERE %s = $1", table, parentCol), parentID,
	); err != nil {
		return fmt.Errorf("failed to clear %s: %w", table, err)
	}

	for i, item := range items {
		var (
			variantID        *int
			variantSize      *string
			variantSKU       *string
			stockAtSelection *int
		)
		if item.Variant != nil {
			variantID = &item.Variant.VariantID
			variantSize = &item.Variant.Size
			variantSKU = &item.Variant.SKU
			stockAtSelection = &item.Variant.StockAtSelection
		}
		if _, err := tx.Exec(ctx, fmt.Sprintf(`
			INSERT INTO %s (%s, position, id, product_id, product_code, product_name, product_description,
			                variant_id, variant_size, variant_sku, stock_at_selection,
			                quantity, unit_price, discount_percent, subtotal, notes)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
		`, table, parentCol),
			parentID, i+1, item.ID,
			item.Product.ProductID, item.Product.Code, item.Product.Name, item.Product.Description,
			variantID, variantSize, variantSKU, stockAtSelection,
			item.Quantity, item.UnitPrice, item.DiscountPercent, item.Subtotal, item.Notes,
		); err != nil {
			return fmt.Errorf("failed to insert %s row %d: %w", table, i+1, err)
		}
	}
	return nil
}
