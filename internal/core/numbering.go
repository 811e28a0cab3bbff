package core

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Document type codes for numbered business documents.
const (
	DocTypeQuote = "PRE" // presupuesto
	DocTypeOrder = "PED" // pedido
)

// NumberingService hands out gapless, per-year document numbers such as
// PRE-2026-00042. Numbers are assigned inside the caller's transaction so a
// rolled-back creation never burns a number.
type NumberingService interface {
	// NextNumberTx reserves the next number for docType/year within tx.
	NextNumberTx(ctx context.Context, tx pgx.Tx, docType string, year int) (string, error)
	// NextNumber reserves a number in its own transaction. Use for standalone calls.
	NextNumber(ctx context.Context, docType string, year int) (string, error)
}

type numberingService struct {
	pool *pgxpool.Pool
}

func NewNumberingService(pool *pgxpool.Pool) NumberingService {
	return &numberingService{pool: pool}
}

func (s *numberingService) NextNumberTx(ctx context.Context, tx pgx.Tx, docType string, year int) (string, error) {
	// Concurrency-safe gapless sequence: the upsert takes a row lock, so two
	// concurrent creations serialize and each gets a distinct number.
	var lastNumber int64
	err := tx.QueryRow(ctx, `
		INSERT INTO document_sequences (doc_type, year, last_number)
		VALUES ($1, $2, 1)
		ON CONFLICT (doc_type, year)
		DO UPDATE SET last_number = document_sequences.last_number + 1
		RETURNING last_number
	`, docType, year).Scan(&lastNumber)
	if err != nil {
		return "", fmt.Errorf("failed to generate %s sequence number: %w", docType, err)
	}
	return fmt.Sprintf("%s-%d-%05d", docType, year, lastNumber), nil
}

func (s *numberingService) NextNumber(ctx context.Context, docType string, year int) (string, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	number, err := s.NextNumberTx(ctx, tx, docType, year)
	if err != nil {
		return "", err
	}
	if err := tx.Commit(ctx); err != nil {
		return "", fmt.Errorf("failed to commit sequence reservation: %w", err)
	}
	return number, nil
}
