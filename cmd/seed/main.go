// seed loads the starter catalog and demo client data. It upserts by natural
// key, so running it against a populated database is safe.
//
// Usage: go run ./cmd/seed
package main

import (
	"context"
	"log"

	"publimar/internal/db"

	"github.com/joho/godotenv"
)

func main() {
	_ = godotenv.Load()

	ctx := context.Background()
	pool, err := db.NewPool(ctx)
	if err != nil {
		log.Fatalf("Failed to connect: %v", err)
	}
	defer pool.Close()

	tx, err := pool.Begin(ctx)
	if err != nil {
		log.Fatalf("Failed to begin transaction: %v", err)
	}
	defer tx.Rollback(ctx)

	log.Println("Seeding clients...")
	_, err = tx.Exec(ctx, `
		INSERT INTO clients (name, email, phone, address, tax_id)
		SELECT v.name, v.email, v.phone, v.address, v.tax_id
		FROM (VALUES
		    ('Club Atlético Sur',   'secretaria@clubsur.com.ar', '+54 11 4555-0101', 'Av. Mitre 1450, Avellaneda', '30-65432109-7'),
		    ('Municipalidad de Lanús', 'compras@lanus.gob.ar',   '+54 11 4241-7000', 'Av. Hipólito Yrigoyen 3863, Lanús', '30-99914025-2'),
		    ('Ferretería El Tornillo', 'ventas@eltornillo.com',  '+54 11 4208-3322', 'Beltrán 820, Banfield', '20-28456701-3')
		) AS v(name, email, phone, address, tax_id)
		WHERE NOT EXISTS (SELECT 1 FROM clients c WHERE c.name = v.name);
	`)
	if err != nil {
		log.Fatalf("Failed to seed clients: %v", err)
	}

	log.Println("Seeding products...")
	_, err = tx.Exec(ctx, `
		INSERT INTO products (code, name, description, base_price)
		VALUES
		  ('BAN-01', 'Lona publicitaria', 'Lona frontlight impresa, terminación con ojales', 120),
		  ('PAS-01', 'Pasacalle',         'Pasacalle de tela con refuerzo en los extremos',   95),
		  ('BND-01', 'Bandera institucional', 'Bandera de poliéster con doble costura',      140),
		  ('STK-01', 'Plancha de stickers', 'Vinilo autoadhesivo troquelado, plancha A3',     15)
		ON CONFLICT (code) DO UPDATE
		  SET name = EXCLUDED.name,
		      description = EXCLUDED.description,
		      base_price = EXCLUDED.base_price;
	`)
	if err != nil {
		log.Fatalf("Failed to seed products: %v", err)
	}

	log.Println("Seeding product variants...")
	_, err = tx.Exec(ctx, `
		INSERT INTO product_variants (product_id, size, sku, price, stock)
		SELECT p.id, v.size, v.sku, v.price, v.stock
		FROM products p
		JOIN (VALUES
		    ('BAN-01', '1x1m', 'BAN-01-11', 100, 25),
		    ('BAN-01', '2x1m', 'BAN-01-21', 180, 12),
		    ('BAN-01', '3x2m', 'BAN-01-32', 320,  6),
		    ('PAS-01', '5x0.7m', 'PAS-01-57', 95, 10),
		    ('PAS-01', '8x0.7m', 'PAS-01-87', 130, 4),
		    ('BND-01', '0.9x1.5m', 'BND-01-ST', 140, 18),
		    ('BND-01', '1.5x2.5m', 'BND-01-LG', 260,  5)
		) AS v(code, size, sku, price, stock) ON v.code = p.code
		ON CONFLICT (product_id, size) DO UPDATE
		  SET sku = EXCLUDED.sku,
		      price = EXCLUDED.price;
	`)
	if err != nil {
		log.Fatalf("Failed to seed product variants: %v", err)
	}

	if err := tx.Commit(ctx); err != nil {
		log.Fatalf("Failed to commit: %v", err)
	}

	log.Println("Seed data loaded successfully.")
}
