package app

import (
	"context"

	"publimar/internal/core"
)

// ApplicationService is the single interface all UI adapters call. It
// decouples presentation from business logic. Implementations must contain
// no fmt.Println, no ANSI codes, and no display logic of any kind.
//
// Quote and order refs may be a numeric ID or a document number such as
// PRE-2026-00042 / PED-2026-00042.
type ApplicationService interface {
	// ── Clients ──────────────────────────────────────────────────────────────

	// ListClients returns all active clients.
	ListClients(ctx context.Context) (*ClientListResult, error)

	// GetClient returns a single client by ID, active or not.
	GetClient(ctx context.Context, clientID int) (*ClientResult, error)

	// CreateClient registers a new client.
	CreateClient(ctx context.Context, req ClientRequest) (*ClientResult, error)

	// UpdateClient updates the client registry. Snapshots already embedded in
	// quotes and orders are not touched.
	UpdateClient(ctx context.Context, clientID int, req ClientRequest) (*ClientResult, error)

	// DeactivateClient hides a client from listings without breaking the
	// documents that reference it.
	DeactivateClient(ctx context.Context, clientID int) error

	// ── Catalog ──────────────────────────────────────────────────────────────

	// ListProducts returns all active products with their variants.
	ListProducts(ctx context.Context) (*ProductListResult, error)

	// GetProduct returns a product by numeric ID or code.
	GetProduct(ctx context.Context, ref string) (*ProductResult, error)

	// CreateProduct registers a product, optionally with size variants.
	CreateProduct(ctx context.Context, req CreateProductRequest) (*ProductResult, error)

	// AddVariant adds a size variant to an existing product.
	AddVariant(ctx context.Context, productID int, req VariantRequest) (*core.ProductVariant, error)

	// DeactivateProduct hides a product from listings and new line items.
	DeactivateProduct(ctx context.Context, productID int) error

	// ReceiveStock records a restock of one variant.
	ReceiveStock(ctx context.Context, variantID, qty int) (*core.ProductVariant, error)

	// ── Quotes ───────────────────────────────────────────────────────────────

	// ListQuotes returns quote headers, optionally filtered by status.
	ListQuotes(ctx context.Context, status *string) (*QuoteListResult, error)

	// GetQuote returns a full quote with items and comments.
	GetQuote(ctx context.Context, ref string) (*QuoteResult, error)

	// CreateQuote creates a DRAFT quote with an assigned PRE number.
	CreateQuote(ctx context.Context, req CreateQuoteRequest) (*QuoteResult, error)

	// AddQuoteItem appends a line and recomputes totals.
	AddQuoteItem(ctx context.Context, ref string, line QuoteLineRequest) (*QuoteResult, error)

	// UpdateQuoteItem patches a line and recomputes totals.
	UpdateQuoteItem(ctx context.Context, ref, itemID string, patch core.ItemPatch) (*QuoteResult, error)

	// RemoveQuoteItem deletes a line and recomputes totals.
	RemoveQuoteItem(ctx context.Context, ref, itemID string) (*QuoteResult, error)

	// SetQuoteTaxRate overrides the quote's tax rate (e.g. exempt clients).
	SetQuoteTaxRate(ctx context.Context, ref, taxRatePercent string) (*QuoteResult, error)

	// SendQuote transitions DRAFT → SENT.
	SendQuote(ctx context.Context, ref string) (*QuoteResult, error)

	// ConfirmQuote is the operator-driven SENT → CONFIRMED transition.
	ConfirmQuote(ctx context.Context, ref string) (*QuoteResult, error)

	// RejectQuote is the operator-driven SENT → REJECTED transition.
	RejectQuote(ctx context.Context, ref string) (*QuoteResult, error)

	// ResetQuote returns a quote to DRAFT from any state for re-editing.
	ResetQuote(ctx context.Context, ref string) (*QuoteResult, error)

	// ClientConfirmQuote confirms on behalf of the client (shared-link flow),
	// optionally attaching a client comment.
	ClientConfirmQuote(ctx context.Context, ref, comment string) (*QuoteResult, error)

	// ClientRejectQuote rejects on behalf of the client (shared-link flow).
	ClientRejectQuote(ctx context.Context, ref, comment string) (*QuoteResult, error)

	// AddQuoteComment appends to the quote's comment thread.
	AddQuoteComment(ctx context.Context, ref, author, text string, isInternal bool) (*QuoteResult, error)

	// ── Orders ───────────────────────────────────────────────────────────────

	// ListOrders returns order headers, optionally filtered by status.
	ListOrders(ctx context.Context, status *string) (*OrderListResult, error)

	// GetOrder returns a full order with items and the payment ledger.
	GetOrder(ctx context.Context, ref string) (*OrderResult, error)

	// CreateOrder creates an IN_PROCESS order directly, deducting stock.
	CreateOrder(ctx context.Context, req CreateOrderRequest) (*OrderResult, error)

	// CreateOrderFromQuote derives an order from a quote, deducting stock.
	CreateOrderFromQuote(ctx context.Context, req OrderFromQuoteRequest) (*OrderResult, error)

	// CompleteOrder transitions IN_PROCESS → COMPLETED.
	CompleteOrder(ctx context.Context, ref string) (*OrderResult, error)

	// CancelOrder transitions IN_PROCESS → CANCELLED.
	CancelOrder(ctx context.Context, ref string) (*OrderResult, error)

	// RecordPayment appends a payment to the order's ledger.
	RecordPayment(ctx context.Context, ref string, req PaymentRequest) (*OrderResult, error)

	// ── Reports ──────────────────────────────────────────────────────────────

	// GetOutstandingOrders returns orders that still carry an unpaid balance.
	GetOutstandingOrders(ctx context.Context) ([]core.OutstandingOrder, error)

	// GetExpiredQuotes returns open quotes whose validity window has passed.
	GetExpiredQuotes(ctx context.Context) ([]core.ExpiredQuote, error)

	// GetSalesSummary aggregates order volume and collections for one year.
	GetSalesSummary(ctx context.Context, year int) (*core.SalesSummary, error)
}
