package core

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

// QuoteItemInput describes one line when creating a quote or order, or when
// adding an item to an existing document.
type QuoteItemInput struct {
	ProductID       int
	VariantID       *int
	Quantity        int
	DiscountPercent decimal.Decimal
	Notes           string
}

// CreateQuoteInput carries everything needed to create a DRAFT quote.
// TaxRatePercent nil means the default IVA rate.
type CreateQuoteInput struct {
	ClientID       int
	TaxRatePercent *decimal.Decimal
	ValidUntil     time.Time
	Items          []QuoteItemInput
}

// QuoteService manages quote persistence, item editing, and the quote status
// lifecycle. All derived fields (line subtotals, document totals) go through
// the pricing core; the database never holds a total the core did not compute.
type QuoteService interface {
	CreateQuote(ctx context.Context, input CreateQuoteInput, numbering NumberingService) (*Quote, error)
	GetQuote(ctx context.Context, quoteID int) (*Quote, error)
	GetQuoteByNumber(ctx context.Context, number string) (*Quote, error)
	// GetQuotes returns quote headers (no items or comments), newest first,
	// optionally filtered by status.
	GetQuotes(ctx context.Context, status *string) ([]Quote, error)

	// Item editing. Each call replaces the full item set and recomputes totals.
	AddQuoteItem(ctx context.Context, quoteID int, input QuoteItemInput) (*Quote, error)
	UpdateQuoteItem(ctx context.Context, quoteID int, itemID string, patch ItemPatch) (*Quote, error)
	RemoveQuoteItem(ctx context.Context, quoteID int, itemID string) (*Quote, error)
	SetTaxRate(ctx context.Context, quoteID int, taxRatePercent decimal.Decimal) (*Quote, error)

	// Operator lifecycle.
	MarkQuoteSent(ctx context.Context, quoteID int) (*Quote, error)
	ConfirmQuote(ctx context.Context, quoteID int) (*Quote, error)
	RejectQuote(ctx context.Context, quoteID int) (*Quote, error)
	ResetQuoteToDraft(ctx context.Context, quoteID int) (*Quote, error)

	// Client-facing lifecycle (reached through a shared link; more permissive).
	ClientConfirmQuote(ctx context.Context, quoteID int, comment string) (*Quote, error)
	ClientRejectQuote(ctx context.Context, quoteID int, comment string) (*Quote, error)

	AddQuoteComment(ctx context.Context, quoteID int, author, text string, isInternal bool) (*Quote, error)
}

type quoteService struct {
	pool *pgxpool.Pool
}

func NewQuoteService(pool *pgxpool.Pool) QuoteService {
	return &quoteService{pool: pool}
}

const quoteColumns = `id, number, client_id, client_name, client_email, client_phone,
	       client_address, client_tax_id, tax_rate_percent, subtotal, tax_amount, total,
	       status, valid_until, sent_at, confirmed_at, rejected_at, created_at`

func scanQuote(row pgx.Row) (*Quote, error) {
	var (
		q          Quote
		validUntil *time.Time
	)
	err := row.Scan(
		&q.ID, &q.Number, &q.Client.ClientID, &q.Client.Name, &q.Client.Email, &q.Client.Phone,
		&q.Client.Address, &q.Client.TaxID, &q.TaxRatePercent, &q.Subtotal, &q.TaxAmount, &q.Total,
		&q.Status, &validUntil, &q.SentAt, &q.ConfirmedAt, &q.RejectedAt, &q.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	if validUntil != nil {
		q.ValidUntil = *validUntil
	}
	return &q, nil
}

func (s *quoteService) CreateQuote(ctx context.Context, input CreateQuoteInput, numbering NumberingService) (*Quote, error) {
	if len(input.Items) == 0 {
		return nil, fmt.Errorf("%w: quote must have at least one item", ErrInvalidInput)
	}

	taxRate := DefaultTaxRatePercent
	if input.TaxRatePercent != nil {
		taxRate = *input.TaxRatePercent
	}
	if taxRate.IsNegative() {
		return nil, fmt.Errorf("%w: tax rate cannot be negative", ErrInvalidInput)
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	var client Client
	err = tx.QueryRow(ctx,
		"SELECT "+clientColumns+" FROM clients WHERE id = $1", input.ClientID,
	).Scan(&client.ID, &client.Name, &client.Email, &client.Phone, &client.Address, &client.TaxID, &client.IsActive, &client.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: client %d", ErrNotFound, input.ClientID)
		}
		return nil, fmt.Errorf("failed to resolve client %d: %w", input.ClientID, err)
	}

	var items []LineItem
	for i, in := range input.Items {
		product, err := fetchProduct(ctx, tx, in.ProductID)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", i+1, err)
		}
		items, _, err = AddItem(items, *product, in.VariantID, in.Quantity, in.DiscountPercent, in.Notes)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", i+1, err)
		}
	}

	now := time.Now()
	number, err := numbering.NextNumberTx(ctx, tx, DocTypeQuote, now.Year())
	if err != nil {
		return nil, err
	}

	quote := Quote{
		Number:         number,
		Client:         SnapshotClient(client),
		Items:          items,
		TaxRatePercent: taxRate,
		Status:         QuoteDraft,
		ValidUntil:     input.ValidUntil,
	}
	quote.Recalculate()

	var validUntil *time.Time
	if !quote.ValidUntil.IsZero() {
		validUntil = &quote.ValidUntil
	}

	var quoteID int
	err = tx.QueryRow(ctx, `
		INSERT INTO quotes (number, client_id, client_name, client_email, client_phone,
		                    client_address, client_tax_id, tax_rate_percent,
		                    subtotal, tax_amount, total, status, valid_until)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		RETURNING id
	`, quote.Number, quote.Client.ClientID, quote.Client.Name, quote.Client.Email, quote.Client.Phone,
		quote.Client.Address, quote.Client.TaxID, quote.TaxRatePercent,
		quote.Subtotal, quote.TaxAmount, quote.Total, quote.Status, validUntil,
	).Scan(&quoteID)
	if err != nil {
		return nil, fmt.Errorf("failed to insert quote: %w", err)
	}

	if err := replaceLineItemsTx(ctx, tx, "quote_items", "quote_id", quoteID, quote.Items); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit quote creation: %w", err)
	}

	return s.GetQuote(ctx, quoteID)
}

func (s *quoteService) GetQuote(ctx context.Context, quoteID int) (*Quote, error) {
	return s.fetchQuote(ctx, s.pool, quoteID)
}

func (s *quoteService) fetchQuote(ctx context.Context, db pgxReader, quoteID int) (*Quote, error) {
	q, err := scanQuote(db.QueryRow(ctx,
		"SELECT "+quoteColumns+" FROM quotes WHERE id = $1", quoteID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: quote %d", ErrNotFound, quoteID)
		}
		return nil, fmt.Errorf("failed to fetch quote %d: %w", quoteID, err)
	}

	q.Items, err = fetchLineItems(ctx, db, "quote_items", "quote_id", quoteID)
	if err != nil {
		return nil, err
	}

	q.Comments, err = fetchQuoteComments(ctx, db, quoteID)
	if err != nil {
		return nil, err
	}
	return q, nil
}

func (s *quoteService) GetQuoteByNumber(ctx context.Context, number string) (*Quote, error) {
	var quoteID int
	err := s.pool.QueryRow(ctx, "SELECT id FROM quotes WHERE number = $1", number).Scan(&quoteID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: quote %s", ErrNotFound, number)
		}
		return nil, fmt.Errorf("failed to lookup quote by number: %w", err)
	}
	return s.GetQuote(ctx, quoteID)
}

func (s *quoteService) GetQuotes(ctx context.Context, status *string) ([]Quote, error) {
	query := "SELECT " + quoteColumns + " FROM quotes"
	args := []any{}
	if status != nil {
		query += " WHERE status = $1"
		args = append(args, *status)
	}
	query += " ORDER BY id DESC"

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query quotes: %w", err)
	}
	defer rows.Close()

	var quotes []Quote
	for rows.Next() {
		q, err := scanQuote(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan quote: %w", err)
		}
		quotes = append(quotes, *q)
	}
	return quotes, nil
}

// editItems runs fn against the quote's current items under a row lock and
// persists the resulting item set and recomputed totals.
func (s *quoteService) editItems(ctx context.Context, quoteID int, fn func(tx pgx.Tx, q *Quote) error) (*Quote, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	q, err := lockQuote(ctx, tx, quoteID)
	if err != nil {
		return nil, err
	}

	q.Items, err = fetchLineItems(ctx, tx, "quote_items", "quote_id", quoteID)
	if err != nil {
		return nil, err
	}

	if err := fn(tx, q); err != nil {
		return nil, err
	}
	q.Recalculate()

	if err := replaceLineItemsTx(ctx, tx, "quote_items", "quote_id", quoteID, q.Items); err != nil {
		return nil, err
	}

	if _, err := tx.Exec(ctx, `
		UPDATE quotes
		SET tax_rate_percent = $1, subtotal = $2, tax_amount = $3, total = $4
		WHERE id = $5
	`, q.TaxRatePercent, q.Subtotal, q.TaxAmount, q.Total, quoteID); err != nil {
		return nil, fmt.Errorf("failed to update quote totals: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit quote edit: %w", err)
	}
	return s.GetQuote(ctx, quoteID)
}

func (s *quoteService) AddQuoteItem(ctx context.Context, quoteID int, input QuoteItemInput) (*Quote, error) {
	return s.editItems(ctx, quoteID, func(tx pgx.Tx, q *Quote) error {
		product, err := fetchProduct(ctx, tx, input.ProductID)
		if err != nil {
			return err
		}
		q.Items, _, err = AddItem(q.Items, *product, input.VariantID, input.Quantity, input.DiscountPercent, input.Notes)
		return err
	})
}

func (s *quoteService) UpdateQuoteItem(ctx context.Context, quoteID int, itemID string, patch ItemPatch) (*Quote, error) {
	return s.editItems(ctx, quoteID, func(tx pgx.Tx, q *Quote) error {
		var err error
		q.Items, err = UpdateItem(q.Items, itemID, patch)
		return err
	})
}

func (s *quoteService) RemoveQuoteItem(ctx context.Context, quoteID int, itemID string) (*Quote, error) {
	return s.editItems(ctx, quoteID, func(tx pgx.Tx, q *Quote) error {
		q.Items = RemoveItem(q.Items, itemID)
		return nil
	})
}

func (s *quoteService) SetTaxRate(ctx context.Context, quoteID int, taxRatePercent decimal.Decimal) (*Quote, error) {
	if taxRatePercent.IsNegative() {
		return nil, fmt.Errorf("%w: tax rate cannot be negative", ErrInvalidInput)
	}
	return s.editItems(ctx, quoteID, func(tx pgx.Tx, q *Quote) error {
		q.TaxRatePercent = taxRatePercent
		return nil
	})
}

// transition applies a pure state-machine operation under a row lock and
// persists the resulting status and timestamps.
func (s *quoteService) transition(ctx context.Context, quoteID int, op func(q *Quote) error) (*Quote, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	q, err := lockQuote(ctx, tx, quoteID)
	if err != nil {
		return nil, err
	}

	commentsBefore := len(q.Comments)
	if err := op(q); err != nil {
		return nil, err
	}

	if _, err := tx.Exec(ctx, `
		UPDATE quotes
		SET status = $1, sent_at = $2, confirmed_at = $3, rejected_at = $4
		WHERE id = $5
	`, q.Status, q.SentAt, q.ConfirmedAt, q.RejectedAt, quoteID); err != nil {
		return nil, fmt.Errorf("failed to update quote status: %w", err)
	}

	// Client-facing transitions may have appended a comment.
	for _, c := range q.Comments[commentsBefore:] {
		if _, err := tx.Exec(ctx, `
			INSERT INTO quote_comments (quote_id, author, body, is_internal, created_at)
			VALUES ($1, $2, $3, $4, $5)
		`, quoteID, c.Author, c.Text, c.IsInternal, c.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to insert quote comment: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit quote transition: %w", err)
	}
	return s.GetQuote(ctx, quoteID)
}

func (s *quoteService) MarkQuoteSent(ctx context.Context, quoteID int) (*Quote, error) {
	return s.transition(ctx, quoteID, func(q *Quote) error { return q.MarkSent(time.Now()) })
}

func (s *quoteService) ConfirmQuote(ctx context.Context, quoteID int) (*Quote, error) {
	return s.transition(ctx, quoteID, func(q *Quote) error { return q.Confirm(time.Now()) })
}

func (s *quoteService) RejectQuote(ctx context.Context, quoteID int) (*Quote, error) {
	return s.transition(ctx, quoteID, func(q *Quote) error { return q.Reject(time.Now()) })
}

func (s *quoteService) ResetQuoteToDraft(ctx context.Context, quoteID int) (*Quote, error) {
	return s.transition(ctx, quoteID, func(q *Quote) error {
		q.ResetToDraft()
		return nil
	})
}

func (s *quoteService) ClientConfirmQuote(ctx context.Context, quoteID int, comment string) (*Quote, error) {
	return s.transition(ctx, quoteID, func(q *Quote) error { return q.ClientConfirm(time.Now(), comment) })
}

func (s *quoteService) ClientRejectQuote(ctx context.Context, quoteID int, comment string) (*Quote, error) {
	return s.transition(ctx, quoteID, func(q *Quote) error { return q.ClientReject(time.Now(), comment) })
}

func (s *quoteService) AddQuoteComment(ctx context.Context, quoteID int, author, text string, isInternal bool) (*Quote, error) {
	if text == "" {
		return nil, fmt.Errorf("%w: comment text is required", ErrInvalidInput)
	}

	tag, err := s.pool.Exec(ctx, `
		INSERT INTO quote_comments (quote_id, author, body, is_internal)
		SELECT $1, $2, $3, $4 WHERE EXISTS (SELECT 1 FROM quotes WHERE id = $1)
	`, quoteID, author, text, isInternal)
	if err != nil {
		return nil, fmt.Errorf("failed to insert quote comment: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return nil, fmt.Errorf("%w: quote %d", ErrNotFound, quoteID)
	}
	return s.GetQuote(ctx, quoteID)
}

// lockQuote fetches a quote header FOR UPDATE within tx.
func lockQuote(ctx context.Context, tx pgx.Tx, quoteID int) (*Quote, error) {
	q, err := scanQuote(tx.QueryRow(ctx,
		"SELECT "+quoteColumns+" FROM quotes WHERE id = $1 FOR UPDATE", quoteID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: quote %d", ErrNotFound, quoteID)
		}
		return nil, fmt.Errorf("failed to lock quote %d: %w", quoteID, err)
	}
	return q, nil
}

func fetchQuoteComments(ctx context.Context, db pgxRowQuerier, quoteID int) ([]QuoteComment, error) {
	rows, err := db.Query(ctx, `
		SELECT id, author, body, is_internal, created_at
		FROM quote_comments
		WHERE quote_id = $1
		ORDER BY id
	`, quoteID)
	if err != nil {
		return nil, fmt.Errorf("failed to query quote comments: %w", err)
	}
	defer rows.Close()

	var comments []QuoteComment
	for rows.Next() {
		var c QuoteComment
		if err := rows.Scan(&c.ID, &c.Author, &c.Text, &c.IsInternal, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan quote comment: %w", err)
		}
		comments = append(comments, c)
	}
	return comments, nil
}
