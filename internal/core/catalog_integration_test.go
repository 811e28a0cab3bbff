package core_test

import (
	"context"
	"errors"
	"testing"

	"publimar/internal/core"

	"github.com/shopspring/decimal"
)

func TestCatalogService_CreateProductWithVariants(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()
	catalog := core.NewCatalogService(pool)
	ctx := context.Background()

	product, err := catalog.CreateProduct(ctx, "FLG-01", "Club flag", "Sublimated polyester flag",
		decimal.NewFromInt(90),
		[]core.VariantInput{
			{Size: "60x90cm", SKU: "FLG-01-S", Price: decimal.NewFromInt(70), Stock: 40},
			{Size: "90x150cm", SKU: "FLG-01-L", Price: decimal.NewFromInt(110), Stock: 12},
		})
	if err != nil {
		t.Fatalf("CreateProduct failed: %v", err)
	}
	if len(product.Variants) != 2 {
		t.Fatalf("Expected 2 variants, got %d", len(product.Variants))
	}
	if product.Variants[1].Stock != 12 {
		t.Errorf("Expected stock 12 on large flag, got %d", product.Variants[1].Stock)
	}

	byCode, err := catalog.GetProductByCode(ctx, "FLG-01")
	if err != nil {
		t.Fatalf("GetProductByCode failed: %v", err)
	}
	if byCode.ID != product.ID {
		t.Errorf("Expected product %d, got %d", product.ID, byCode.ID)
	}

	// Validation.
	if _, err = catalog.CreateProduct(ctx, "", "Nameless", "", decimal.Zero, nil); !errors.Is(err, core.ErrInvalidInput) {
		t.Errorf("Expected ErrInvalidInput for missing code, got %v", err)
	}
	if _, err = catalog.CreateProduct(ctx, "BAD-01", "Bad", "", decimal.NewFromInt(-1), nil); !errors.Is(err, core.ErrInvalidInput) {
		t.Errorf("Expected ErrInvalidInput for negative price, got %v", err)
	}
}

func TestCatalogService_ReceiveStock(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()
	f := seedCatalog(t, pool)
	catalog := core.NewCatalogService(pool)
	ctx := context.Background()

	variant, err := catalog.ReceiveStock(ctx, f.banner2x1ID, 20)
	if err != nil {
		t.Fatalf("ReceiveStock failed: %v", err)
	}
	if variant.Stock != 28 {
		t.Errorf("Expected stock 28 after restock, got %d", variant.Stock)
	}

	if _, err = catalog.ReceiveStock(ctx, f.banner2x1ID, 0); !errors.Is(err, core.ErrInvalidInput) {
		t.Errorf("Expected ErrInvalidInput for zero receipt, got %v", err)
	}
	if _, err = catalog.ReceiveStock(ctx, f.banner2x1ID, -5); !errors.Is(err, core.ErrInvalidInput) {
		t.Errorf("Expected ErrInvalidInput for negative receipt, got %v", err)
	}
	if _, err = catalog.ReceiveStock(ctx, 99999, 5); !errors.Is(err, core.ErrNotFound) {
		t.Errorf("Expected ErrNotFound for unknown variant, got %v", err)
	}
}

func TestCatalogService_AddVariant(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()
	f := seedCatalog(t, pool)
	catalog := core.NewCatalogService(pool)
	ctx := context.Background()

	variant, err := catalog.AddVariant(ctx, f.bannerID, core.VariantInput{
		Size: "3x1m", SKU: "BAN-01-XL", Price: decimal.NewFromInt(250), Stock: 4,
	})
	if err != nil {
		t.Fatalf("AddVariant failed: %v", err)
	}
	if variant.ProductID != f.bannerID {
		t.Errorf("Expected variant on product %d, got %d", f.bannerID, variant.ProductID)
	}

	product, err := catalog.GetProduct(ctx, f.bannerID)
	if err != nil {
		t.Fatalf("GetProduct failed: %v", err)
	}
	if len(product.Variants) != 3 {
		t.Errorf("Expected 3 variants, got %d", len(product.Variants))
	}
}

func TestCatalogService_DeactivateProduct(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()
	f := seedCatalog(t, pool)
	catalog := core.NewCatalogService(pool)
	ctx := context.Background()

	if err := catalog.DeactivateProduct(ctx, f.stickerID); err != nil {
		t.Fatalf("DeactivateProduct failed: %v", err)
	}

	products, err := catalog.GetProducts(ctx)
	if err != nil {
		t.Fatalf("GetProducts failed: %v", err)
	}
	for _, p := range products {
		if p.ID == f.stickerID {
			t.Error("Deactivated product must not appear in the listing")
		}
	}

	if err := catalog.DeactivateProduct(ctx, 99999); !errors.Is(err, core.ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
}

func TestNumberingService_PerYearSequences(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()
	numbering := core.NewNumberingService(pool)
	ctx := context.Background()

	n1, err := numbering.NextNumber(ctx, core.DocTypeQuote, 2026)
	if err != nil {
		t.Fatalf("NextNumber failed: %v", err)
	}
	if n1 != "PRE-2026-00001" {
		t.Errorf("Expected PRE-2026-00001, got %s", n1)
	}

	n2, _ := numbering.NextNumber(ctx, core.DocTypeQuote, 2026)
	if n2 != "PRE-2026-00002" {
		t.Errorf("Expected PRE-2026-00002, got %s", n2)
	}

	// Each doc type and each year counts independently.
	n3, _ := numbering.NextNumber(ctx, core.DocTypeOrder, 2026)
	if n3 != "PED-2026-00001" {
		t.Errorf("Expected PED-2026-00001, got %s", n3)
	}
	n4, _ := numbering.NextNumber(ctx, core.DocTypeQuote, 2027)
	if n4 != "PRE-2027-00001" {
		t.Errorf("Expected PRE-2027-00001, got %s", n4)
	}
}
